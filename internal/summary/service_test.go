package summary

import (
	"context"
	"log/slog"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline/ledgerline/internal/contacts"
	"github.com/ledgerline/ledgerline/internal/documents"
)

type mockRepo struct {
	aggregates     map[documents.Kind]kindAggregate
	aggregateCalls int
	paid           float64
	paidCount      int
	openInvoices   int
	clients        int
	vendors        int
	items          int
}

func (m *mockRepo) AggregateKinds(ctx context.Context) (map[documents.Kind]kindAggregate, error) {
	m.aggregateCalls++
	return m.aggregates, nil
}

func (m *mockRepo) PaymentsSince(ctx context.Context, since time.Time) (float64, int, error) {
	return m.paid, m.paidCount, nil
}

func (m *mockRepo) CountOpenInvoices(ctx context.Context) (int, error) {
	return m.openInvoices, nil
}

func (m *mockRepo) CountParties(ctx context.Context, partyType contacts.PartyType) (int, error) {
	if partyType == contacts.PartyClient {
		return m.clients, nil
	}
	return m.vendors, nil
}

func (m *mockRepo) CountItems(ctx context.Context) (int, error) {
	return m.items, nil
}

func newTestService(t *testing.T, repo Repository) (*Service, *Cache) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	cache := NewCache(client, time.Minute)
	return NewService(slog.Default(), repo, cache), cache
}

func testRepo() *mockRepo {
	return &mockRepo{
		aggregates: map[documents.Kind]kindAggregate{
			documents.KindInvoice:   {Count: 4, TotalBilled: 12500.50, Outstanding: 3200.25},
			documents.KindQuotation: {Count: 2, TotalBilled: 900, Outstanding: 900},
		},
		paid:         1500.75,
		paidCount:    3,
		openInvoices: 2,
		clients:      5,
		vendors:      2,
		items:        10,
	}
}

func TestOverviewAggregates(t *testing.T) {
	repo := testRepo()
	service, _ := newTestService(t, repo)

	overview, err := service.Overview(context.Background())
	require.NoError(t, err)

	require.Len(t, overview.Kinds, len(documents.Specs()))
	require.Equal(t, "INVOICE", overview.Kinds[0].Kind)
	require.Equal(t, 4, overview.Kinds[0].Count)
	require.InDelta(t, 12500.50, overview.Kinds[0].TotalBilled, 0.001)
	require.Equal(t, "12,500.50", overview.Kinds[0].DisplayTotal)

	// Outstanding only accrues for payable kinds; the quotation balance
	// column is ignored.
	require.InDelta(t, 3200.25, overview.OutstandingTotal, 0.001)
	require.Equal(t, "3,200.25", overview.OutstandingDisplay)
	require.InDelta(t, 1500.75, overview.PaymentsThisMonth, 0.001)
	require.Equal(t, 3, overview.PaymentsCount)
	require.Equal(t, 2, overview.OpenInvoices)
	require.Equal(t, 5, overview.Clients)
	require.Equal(t, 2, overview.Vendors)
	require.Equal(t, 10, overview.Items)
}

func TestOverviewCachesUntilBump(t *testing.T) {
	repo := testRepo()
	service, cache := newTestService(t, repo)

	_, err := service.Overview(context.Background())
	require.NoError(t, err)
	_, err = service.Overview(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, repo.aggregateCalls)

	require.NoError(t, cache.Bump(context.Background()))
	_, err = service.Overview(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, repo.aggregateCalls)
}

func TestOverviewWithoutRedis(t *testing.T) {
	repo := testRepo()
	service := NewService(slog.Default(), repo, NewCache(nil, time.Minute))

	overview, err := service.Overview(context.Background())
	require.NoError(t, err)
	require.Equal(t, 4, overview.Kinds[0].Count)
	require.Equal(t, 1, repo.aggregateCalls)
}
