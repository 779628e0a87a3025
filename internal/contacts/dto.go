package contacts

type CreatePartyRequest struct {
	Name    string  `json:"name" validate:"required,max=200"`
	Email   *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone   *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	TaxID   *string `json:"taxId,omitempty" validate:"omitempty,max=50"`
	Address *string `json:"address,omitempty" validate:"omitempty,max=400"`
	City    *string `json:"city,omitempty" validate:"omitempty,max=100"`
	Country *string `json:"country,omitempty" validate:"omitempty,max=100"`
	Notes   *string `json:"notes,omitempty"`
}

type UpdatePartyRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	TaxID    *string `json:"taxId,omitempty" validate:"omitempty,max=50"`
	Address  *string `json:"address,omitempty" validate:"omitempty,max=400"`
	City     *string `json:"city,omitempty" validate:"omitempty,max=100"`
	Country  *string `json:"country,omitempty" validate:"omitempty,max=100"`
	Notes    *string `json:"notes,omitempty"`
	IsActive *bool   `json:"isActive,omitempty"`
}

type ListPartiesRequest struct {
	Type     PartyType
	Search   string
	IsActive *bool
	Limit    int `validate:"gte=0,lte=1000"`
	Offset   int `validate:"gte=0"`
}
