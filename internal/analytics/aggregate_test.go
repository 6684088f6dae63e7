package analytics_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/barber-billing/internal/analytics"
	"github.com/noah-isme/barber-billing/internal/seed"
	"github.com/noah-isme/barber-billing/internal/transactions"
)

func txn(id, barber string, amount int64, at time.Time, services ...string) transactions.Transaction {
	return transactions.Transaction{
		ID:          id,
		BarberID:    barber,
		ServiceIDs:  services,
		FinalAmount: amount,
		PaymentMode: transactions.PaymentCash,
		Date:        at,
	}
}

func TestDailyRevenueGroupsSameDay(t *testing.T) {
	day := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	txns := []transactions.Transaction{
		txn("a", "1", 10000, day.Add(9*time.Hour), "1"),
		txn("b", "1", 20000, day.Add(13*time.Hour), "2"),
		txn("c", "2", 5000, day.Add(18*time.Hour), "6"),
		txn("d", "2", 7000, day.AddDate(0, 0, -1).Add(10*time.Hour), "6"),
	}

	rows := analytics.DailyRevenue(txns, time.UTC)
	require.Equal(t, []analytics.DayRow{
		{Date: "2024-06-02", Revenue: 7000},
		{Date: "2024-06-03", Revenue: 35000},
	}, rows)
}

func TestDailyRevenueUsesLocation(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	late := time.Date(2024, 6, 3, 20, 0, 0, 0, time.UTC)
	rows := analytics.DailyRevenue([]transactions.Transaction{txn("a", "1", 100, late)}, ist)
	require.Equal(t, "2024-06-04", rows[0].Date)
}

func TestSummarizeEmptyAverageIsZero(t *testing.T) {
	sum := analytics.Summarize(nil)
	require.Zero(t, sum.TotalRevenue)
	require.Zero(t, sum.TotalTransactions)
	require.Zero(t, sum.AverageTransaction)
}

func TestSummarizeRoundsAverage(t *testing.T) {
	now := time.Now()
	sum := analytics.Summarize([]transactions.Transaction{
		txn("a", "1", 100, now),
		txn("b", "1", 100, now),
		txn("c", "1", 101, now),
	})
	require.Equal(t, int64(301), sum.TotalRevenue)
	require.Equal(t, 3, sum.TotalTransactions)
	require.Equal(t, int64(100), sum.AverageTransaction)
}

func TestBarberPerformanceListsIdleBarbers(t *testing.T) {
	now := time.Now()
	txns := []transactions.Transaction{
		txn("a", "3", 23000, now, "1", "2"),
		txn("b", "3", 5000, now, "6"),
		txn("c", "1", 8000, now, "2"),
	}

	rows := analytics.BarberPerformance(txns, seed.Barbers())
	require.Len(t, rows, 5)
	require.Equal(t, analytics.BarberRow{BarberID: "3", Name: "Suresh Patel", Revenue: 28000, Services: 3, Transactions: 2}, rows[0])
	require.Equal(t, "1", rows[1].BarberID)
	for _, row := range rows[2:] {
		require.Zero(t, row.Revenue)
		require.Zero(t, row.Transactions)
	}
	require.Equal(t, []string{"2", "4", "5"}, []string{rows[2].BarberID, rows[3].BarberID, rows[4].BarberID})
}

func TestServicePerformanceUsesCatalogPrice(t *testing.T) {
	now := time.Now()
	txns := []transactions.Transaction{
		txn("a", "1", 1, now, "2", "1"),
		txn("b", "1", 1, now, "1", "missing"),
		txn("c", "1", 1, now, "6"),
	}

	rows := analytics.ServicePerformance(txns, seed.Catalog())
	require.Equal(t, []analytics.ServiceRow{
		{Name: "Hair Cut", Count: 2, Revenue: 30000},
		{Name: "Beard Trim", Count: 1, Revenue: 8000},
		{Name: "Hair Wash", Count: 1, Revenue: 5000},
	}, rows)
	require.Len(t, analytics.TopServices(rows, 2), 2)
	require.Len(t, analytics.TopServices(rows, 0), 3)
}

func TestFilterAppliesEveryCriterion(t *testing.T) {
	day := time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)
	txns := []transactions.Transaction{
		txn("a", "1", 1, day, "1"),
		txn("b", "2", 1, day, "1"),
		txn("c", "1", 1, day, "2"),
		txn("d", "1", 1, day.AddDate(0, 0, -2), "1"),
	}
	c := analytics.Criteria{
		Range:     analytics.DateRange(analytics.PeriodDay, day, time.UTC),
		BarberID:  "1",
		ServiceID: "1",
	}

	got := analytics.Filter(txns, c)
	require.Len(t, got, 1)
	require.Equal(t, "a", got[0].ID)
	require.Len(t, analytics.Filter(txns, analytics.Criteria{}), 4)
}

func TestFilterKeepsBothBoundaries(t *testing.T) {
	rng := analytics.DateRange(analytics.PeriodDay, time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC), time.UTC)
	cases := []struct {
		name string
		at   time.Time
		keep bool
	}{
		{"before start", rng.From.Add(-time.Nanosecond), false},
		{"at start", rng.From, true},
		{"at end", rng.To, true},
		{"after end", rng.To.Add(time.Nanosecond), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := analytics.Filter([]transactions.Transaction{txn("a", "1", 1, tc.at, "1")}, analytics.Criteria{Range: rng})
			require.Equal(t, tc.keep, len(got) == 1)
			require.Equal(t, tc.keep, rng.Contains(tc.at))
		})
	}
	require.True(t, time.Date(2024, 6, 3, 23, 59, 59, 999999999, time.UTC).Equal(rng.To))
}

func TestAggregateEmptySelection(t *testing.T) {
	report := analytics.Aggregate(nil, seed.Catalog(), analytics.Criteria{}, time.UTC)
	require.Zero(t, report.Summary.AverageTransaction)
	require.Len(t, report.Barbers, 5)
	require.Empty(t, report.Services)
	require.Empty(t, report.Daily)
}
