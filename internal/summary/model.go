package summary

// KindSummary aggregates one document kind.
type KindSummary struct {
	Kind         string  `json:"kind"`
	Slug         string  `json:"slug"`
	Count        int     `json:"count"`
	TotalBilled  float64 `json:"totalBilled"`
	Outstanding  float64 `json:"outstanding"`
	DisplayTotal string  `json:"displayTotal"`
}

// Overview is the dashboard payload.
type Overview struct {
	Kinds              []KindSummary `json:"kinds"`
	OutstandingTotal   float64       `json:"outstandingTotal"`
	OutstandingDisplay string        `json:"outstandingDisplay"`
	PaymentsThisMonth  float64       `json:"paymentsThisMonth"`
	PaymentsCount      int           `json:"paymentsCount"`
	OpenInvoices       int           `json:"openInvoices"`
	Clients            int           `json:"clients"`
	Vendors            int           `json:"vendors"`
	Items              int           `json:"items"`
}
