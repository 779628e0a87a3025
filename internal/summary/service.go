package summary

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ledgerline/ledgerline/internal/contacts"
	"github.com/ledgerline/ledgerline/internal/documents"
)

type Service struct {
	logger  *slog.Logger
	repo    Repository
	cache   *Cache
	group   singleflight.Group
	printer *message.Printer
}

func NewService(logger *slog.Logger, repo Repository, cache *Cache) *Service {
	return &Service{
		logger:  logger,
		repo:    repo,
		cache:   cache,
		printer: message.NewPrinter(language.English),
	}
}

// Overview builds the dashboard aggregates. Results are cached under the
// current cache version and concurrent misses collapse into one load.
func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	version, err := s.cache.Version(ctx)
	if err != nil {
		s.logger.Warn("summary cache version", slog.Any("error", err))
		version = 0
	}
	key := fmt.Sprintf("summary:overview:v%d", version)

	value, err, _ := s.group.Do(key, func() (interface{}, error) {
		var overview Overview
		err := s.cache.FetchJSON(ctx, key, &overview, func(ctx context.Context) (interface{}, error) {
			return s.load(ctx)
		})
		if err != nil {
			return nil, err
		}
		return &overview, nil
	})
	if err != nil {
		return nil, err
	}
	return value.(*Overview), nil
}

func (s *Service) load(ctx context.Context) (*Overview, error) {
	aggregates, err := s.repo.AggregateKinds(ctx)
	if err != nil {
		return nil, fmt.Errorf("aggregate documents: %w", err)
	}

	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	paid, paidCount, err := s.repo.PaymentsSince(ctx, monthStart)
	if err != nil {
		return nil, fmt.Errorf("aggregate payments: %w", err)
	}

	openInvoices, err := s.repo.CountOpenInvoices(ctx)
	if err != nil {
		return nil, err
	}
	clients, err := s.repo.CountParties(ctx, contacts.PartyClient)
	if err != nil {
		return nil, err
	}
	vendors, err := s.repo.CountParties(ctx, contacts.PartyVendor)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.CountItems(ctx)
	if err != nil {
		return nil, err
	}

	overview := Overview{
		PaymentsThisMonth: paid,
		PaymentsCount:     paidCount,
		OpenInvoices:      openInvoices,
		Clients:           clients,
		Vendors:           vendors,
		Items:             items,
	}
	for _, spec := range documents.Specs() {
		agg := aggregates[spec.Kind]
		ks := KindSummary{
			Kind:         string(spec.Kind),
			Slug:         spec.Slug,
			Count:        agg.Count,
			TotalBilled:  agg.TotalBilled,
			DisplayTotal: s.printer.Sprintf("%.2f", agg.TotalBilled),
		}
		if spec.Payable {
			ks.Outstanding = agg.Outstanding
			overview.OutstandingTotal += agg.Outstanding
		}
		overview.Kinds = append(overview.Kinds, ks)
	}
	overview.OutstandingDisplay = s.printer.Sprintf("%.2f", overview.OutstandingTotal)
	return &overview, nil
}
