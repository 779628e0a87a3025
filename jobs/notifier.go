package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ledgerline/ledgerline/internal/contacts"
	"github.com/ledgerline/ledgerline/internal/documents"
)

// IssueNotifier queues a confirmation email when a payable document is
// stored. Enqueue failures are logged, never surfaced: the document write
// already committed.
type IssueNotifier struct {
	client    *Client
	partyRepo contacts.Repository
	logger    *slog.Logger
}

func NewIssueNotifier(client *Client, partyRepo contacts.Repository, logger *slog.Logger) *IssueNotifier {
	return &IssueNotifier{client: client, partyRepo: partyRepo, logger: logger}
}

// DocumentIssued implements the issue hook for stored documents.
func (n *IssueNotifier) DocumentIssued(ctx context.Context, doc documents.Document) {
	if n == nil || n.client == nil {
		return
	}
	party, err := n.partyRepo.Get(ctx, doc.PartyID)
	if err != nil {
		n.logger.Warn("issue notification: load party", slog.Int64("party_id", doc.PartyID), slog.Any("error", err))
		return
	}
	if party.Email == nil || *party.Email == "" {
		return
	}
	payload := SendEmailPayload{
		To:      *party.Email,
		Subject: fmt.Sprintf("%s %s issued", kindLabel(doc.Kind), doc.DocNumber),
		Body:    fmt.Sprintf("Dear %s,\n\n%s %s for %.2f has been issued. Outstanding balance: %.2f.\n", party.Name, kindLabel(doc.Kind), doc.DocNumber, doc.GrandTotal, doc.Balance),
	}
	if _, err := n.client.EnqueueSendEmail(ctx, payload); err != nil {
		n.logger.Warn("issue notification: enqueue", slog.String("doc_number", doc.DocNumber), slog.Any("error", err))
	}
}

func kindLabel(k documents.Kind) string {
	switch k {
	case documents.KindInvoice:
		return "Invoice"
	case documents.KindQuotation:
		return "Quotation"
	case documents.KindPurchaseOrder:
		return "Purchase Order"
	case documents.KindProformaInvoice:
		return "Proforma Invoice"
	case documents.KindCreditNote:
		return "Credit Note"
	case documents.KindDebitNote:
		return "Debit Note"
	case documents.KindDeliveryChalan:
		return "Delivery Chalan"
	default:
		return string(k)
	}
}
