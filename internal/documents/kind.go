package documents

import (
	"github.com/ledgerline/ledgerline/internal/contacts"
	"github.com/ledgerline/ledgerline/internal/documents/calc"
)

// Kind identifies a billing document type. All kinds share the line-item and
// totals shape; the KindSpec table carries the per-kind differences instead
// of one module per type.
type Kind string

const (
	KindInvoice         Kind = "INVOICE"
	KindQuotation       Kind = "QUOTATION"
	KindPurchaseOrder   Kind = "PURCHASE_ORDER"
	KindProformaInvoice Kind = "PROFORMA_INVOICE"
	KindCreditNote      Kind = "CREDIT_NOTE"
	KindDebitNote       Kind = "DEBIT_NOTE"
	KindDeliveryChalan  Kind = "DELIVERY_CHALAN"
)

// KindSpec describes how the calculation engine and routing treat a kind.
type KindSpec struct {
	Kind        Kind
	Slug        string
	Prefix      string
	PartyType   contacts.PartyType
	PriceSource calc.PriceSource
	// TaxShipping marks kinds that carry document-level tax and shipping
	// adjustments. Only invoices do; everywhere else the grand total equals
	// the subtotal.
	TaxShipping bool
	// Payable marks kinds whose balance can be settled by payments.
	Payable bool
}

var kindSpecs = []KindSpec{
	{Kind: KindInvoice, Slug: "invoices", Prefix: "INV", PartyType: contacts.PartyClient, PriceSource: calc.SalesPrice, TaxShipping: true, Payable: true},
	{Kind: KindQuotation, Slug: "quotations", Prefix: "QT", PartyType: contacts.PartyClient, PriceSource: calc.SalesPrice},
	{Kind: KindPurchaseOrder, Slug: "purchase-orders", Prefix: "PO", PartyType: contacts.PartyVendor, PriceSource: calc.PurchasePrice},
	{Kind: KindProformaInvoice, Slug: "proforma-invoices", Prefix: "PI", PartyType: contacts.PartyClient, PriceSource: calc.SalesPrice},
	{Kind: KindCreditNote, Slug: "credit-notes", Prefix: "CN", PartyType: contacts.PartyClient, PriceSource: calc.SalesPrice},
	{Kind: KindDebitNote, Slug: "debit-notes", Prefix: "DN", PartyType: contacts.PartyVendor, PriceSource: calc.PurchasePrice},
	{Kind: KindDeliveryChalan, Slug: "delivery-chalans", Prefix: "DC", PartyType: contacts.PartyClient, PriceSource: calc.SalesPrice},
}

// Specs returns the full kind table in routing order.
func Specs() []KindSpec {
	out := make([]KindSpec, len(kindSpecs))
	copy(out, kindSpecs)
	return out
}

// Spec returns the spec for a kind.
func (k Kind) Spec() (KindSpec, bool) {
	for _, s := range kindSpecs {
		if s.Kind == k {
			return s, true
		}
	}
	return KindSpec{}, false
}

// Valid reports whether the kind is known.
func (k Kind) Valid() bool {
	_, ok := k.Spec()
	return ok
}
