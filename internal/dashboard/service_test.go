package dashboard

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	mu        sync.Mutex
	today     int64
	month     int64
	revenue   float64
	recent    []RecentInvoice
	countCall int32

	sinceByCall []time.Time
}

func (m *mockRepository) CountInvoicesSince(_ context.Context, _ string, since time.Time) (int64, error) {
	atomic.AddInt32(&m.countCall, 1)
	m.mu.Lock()
	m.sinceByCall = append(m.sinceByCall, since)
	m.mu.Unlock()
	// The fixed clock pins "today" to the 15th, so a first-of-month
	// cutoff can only be the month boundary.
	if since.Day() == 1 {
		return m.month, nil
	}
	return m.today, nil
}

func (m *mockRepository) Owners(_ context.Context) ([]string, error) {
	return []string{"owner-1", "owner-2"}, nil
}

func (m *mockRepository) TotalRevenue(_ context.Context, _ string) (float64, error) {
	return m.revenue, nil
}

func (m *mockRepository) RecentInvoices(_ context.Context, _ string, limit int) ([]RecentInvoice, error) {
	if len(m.recent) > limit {
		return m.recent[:limit], nil
	}
	return m.recent, nil
}

func newTestService(t *testing.T, repo Repository) (*Service, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	svc := NewService(repo, NewCache(client, 10*time.Minute))
	svc.now = func() time.Time {
		return time.Date(2025, time.March, 15, 14, 30, 0, 0, time.UTC)
	}
	return svc, client
}

func TestStatsComputesBoundaries(t *testing.T) {
	repo := &mockRepository{today: 3, month: 12, revenue: 45678.5}
	svc, _ := newTestService(t, repo)

	stats, err := svc.Stats(context.Background(), "owner-1")
	require.NoError(t, err)
	assert.EqualValues(t, 12, stats.InvoicesThisMonth)
	assert.InDelta(t, 45678.5, stats.TotalRevenue, 1e-9)

	require.Len(t, repo.sinceByCall, 2)
	var sawMidnight, sawMonthStart bool
	for _, since := range repo.sinceByCall {
		if since.Equal(time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)) {
			sawMidnight = true
		}
		if since.Equal(time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)) {
			sawMonthStart = true
		}
	}
	assert.True(t, sawMidnight, "expected a count from local midnight")
	assert.True(t, sawMonthStart, "expected a count from the first of the month")
}

func TestStatsServedFromCache(t *testing.T) {
	repo := &mockRepository{today: 3, month: 12, revenue: 100}
	svc, _ := newTestService(t, repo)

	_, err := svc.Stats(context.Background(), "owner-1")
	require.NoError(t, err)
	calls := atomic.LoadInt32(&repo.countCall)

	_, err = svc.Stats(context.Background(), "owner-1")
	require.NoError(t, err)
	assert.Equal(t, calls, atomic.LoadInt32(&repo.countCall), "second request should not hit the repository")
}

func TestInvalidateForcesRecompute(t *testing.T) {
	repo := &mockRepository{today: 3}
	svc, _ := newTestService(t, repo)

	first, err := svc.Stats(context.Background(), "owner-1")
	require.NoError(t, err)
	assert.EqualValues(t, 3, first.InvoicesToday)

	repo.today = 4
	require.NoError(t, svc.Invalidate(context.Background()))

	second, err := svc.Stats(context.Background(), "owner-1")
	require.NoError(t, err)
	assert.EqualValues(t, 4, second.InvoicesToday)
}

func TestWarmPopulatesCache(t *testing.T) {
	repo := &mockRepository{today: 2, revenue: 500}
	svc, _ := newTestService(t, repo)

	require.NoError(t, svc.Warm(context.Background(), "owner-1"))
	calls := atomic.LoadInt32(&repo.countCall)

	stats, err := svc.Stats(context.Background(), "owner-1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.InvoicesToday)
	assert.Equal(t, calls, atomic.LoadInt32(&repo.countCall), "warmed dashboard should be served from cache")
}

func TestWarmAllSweepsEveryOwner(t *testing.T) {
	repo := &mockRepository{today: 1}
	svc, client := newTestService(t, repo)

	require.NoError(t, svc.WarmAll(context.Background()))

	keys, err := client.Keys(context.Background(), "dashboard:stats:*").Result()
	require.NoError(t, err)
	assert.Len(t, keys, 2)
}

func TestStatsScopedPerOwnerKey(t *testing.T) {
	repo := &mockRepository{today: 1}
	svc, client := newTestService(t, repo)

	_, err := svc.Stats(context.Background(), "owner-1")
	require.NoError(t, err)
	_, err = svc.Stats(context.Background(), "owner-2")
	require.NoError(t, err)

	keys, err := client.Keys(context.Background(), "dashboard:stats:*").Result()
	require.NoError(t, err)
	assert.Len(t, keys, 2)
}
