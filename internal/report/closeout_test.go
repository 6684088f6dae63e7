package report_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/barber-billing/internal/analytics"
	"github.com/noah-isme/barber-billing/internal/events"
	"github.com/noah-isme/barber-billing/internal/lock"
	"github.com/noah-isme/barber-billing/internal/obs"
	"github.com/noah-isme/barber-billing/internal/report"
	"github.com/noah-isme/barber-billing/internal/seed"
	"github.com/noah-isme/barber-billing/internal/transactions"
)

var now = time.Date(2024, 6, 3, 21, 0, 0, 0, time.UTC)

func newCloser(t *testing.T, txns ...transactions.Transaction) (*report.Closer, *events.Journal) {
	t.Helper()
	store := transactions.NewStore()
	require.NoError(t, store.Seed(txns))
	journal := events.NewJournal(10)
	return &report.Closer{
		Analytics: &analytics.Service{
			Store:    store,
			Catalog:  seed.Catalog(),
			Location: time.UTC,
			Now:      func() time.Time { return now },
			Logger:   zerolog.Nop(),
		},
		Bus:    &events.Bus{Store: journal},
		Logger: zerolog.Nop(),
	}, journal
}

func TestRunOnceSummarisesToday(t *testing.T) {
	obs.MustRegisterDomainMetrics("test_report", prometheus.NewRegistry())

	closer, journal := newCloser(t,
		transactions.Transaction{ID: "a", BarberID: "2", FinalAmount: 10000, Date: now.Add(-3 * time.Hour)},
		transactions.Transaction{ID: "b", BarberID: "2", FinalAmount: 20000, Date: now.Add(-2 * time.Hour)},
		transactions.Transaction{ID: "c", BarberID: "4", FinalAmount: 5000, Date: now.Add(-time.Hour)},
		transactions.Transaction{ID: "d", BarberID: "4", FinalAmount: 99000, Date: now.AddDate(0, 0, -1)},
	)

	closed, err := closer.RunOnce(context.Background())
	require.NoError(t, err)
	require.Equal(t, "2024-06-03", closed.Date)
	require.Equal(t, int64(35000), closed.TotalRevenue)
	require.Equal(t, 3, closed.TotalTransactions)
	require.Equal(t, int64(11667), closed.AverageTransaction)
	require.Equal(t, "Amit Singh", closed.TopBarber)
	require.Equal(t, float64(35000), testutil.ToFloat64(obs.RevenueToday))

	emitted := journal.Recent(events.TopicReportClosed)
	require.Len(t, emitted, 1)
	require.Equal(t, "2024-06-03", emitted[0].AggregateID)
	var payload report.Closed
	require.NoError(t, json.Unmarshal(emitted[0].Payload, &payload))
	require.Equal(t, closed.TotalRevenue, payload.TotalRevenue)
}

func TestRunOnceQuietDay(t *testing.T) {
	closer, _ := newCloser(t)
	closed, err := closer.RunOnce(context.Background())
	require.NoError(t, err)
	require.Zero(t, closed.TotalRevenue)
	require.Zero(t, closed.AverageTransaction)
	require.Empty(t, closed.TopBarber)
	require.Len(t, closed.Barbers, 5)
}

func TestSchedule(t *testing.T) {
	closer, _ := newCloser(t)

	sched, err := report.Schedule(closer, "", time.UTC, 0)
	require.NoError(t, err)
	require.Nil(t, sched)

	_, err = report.Schedule(closer, "not a cron", time.UTC, 0)
	require.Error(t, err)

	sched, err = report.Schedule(closer, "0 21 * * *", time.UTC, time.Second)
	require.NoError(t, err)
	require.Len(t, sched.Entries(), 1)
	<-sched.Stop().Done()
}

func TestRunScheduledOncePerDay(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	first, journal := newCloser(t)
	first.Lock = lock.Locker{R: client}
	second := *first

	require.NoError(t, first.RunScheduled(context.Background()))
	require.NoError(t, second.RunScheduled(context.Background()))
	require.Len(t, journal.Recent(events.TopicReportClosed), 1)
	require.True(t, mr.Exists("barber:lock:closeout:2024-06-03"))
}
