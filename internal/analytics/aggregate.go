package analytics

import (
	"sort"
	"time"

	"github.com/noah-isme/barber-billing/internal/catalog"
	"github.com/noah-isme/barber-billing/internal/pricing"
	"github.com/noah-isme/barber-billing/internal/transactions"
)

// DayKeyLayout is the layout of daily revenue keys.
const DayKeyLayout = "2006-01-02"

// Criteria selects the working set of transactions. Empty ids match everything.
type Criteria struct {
	Range     Range  `json:"range"`
	BarberID  string `json:"barberId,omitempty"`
	ServiceID string `json:"serviceId,omitempty"`
}

// BarberRow is a barber's performance over the working set.
type BarberRow struct {
	BarberID     string        `json:"barberId" csv:"barber_id"`
	Name         string        `json:"name" csv:"name"`
	Revenue      pricing.Money `json:"revenue" csv:"revenue"`
	Services     int           `json:"services" csv:"services"`
	Transactions int           `json:"transactions" csv:"transactions"`
}

// ServiceRow is a service's performance over the working set.
type ServiceRow struct {
	Name    string        `json:"name" csv:"name"`
	Count   int           `json:"count" csv:"count"`
	Revenue pricing.Money `json:"revenue" csv:"revenue"`
}

// DayRow is the revenue of one calendar day.
type DayRow struct {
	Date    string        `json:"date" csv:"date"`
	Revenue pricing.Money `json:"revenue" csv:"revenue"`
}

// Summary holds headline totals of the working set.
type Summary struct {
	TotalRevenue       pricing.Money `json:"totalRevenue"`
	TotalTransactions  int           `json:"totalTransactions"`
	AverageTransaction pricing.Money `json:"averageTransaction"`
}

// Report bundles every aggregation for one set of criteria.
type Report struct {
	Criteria Criteria     `json:"criteria"`
	Summary  Summary      `json:"summary"`
	Barbers  []BarberRow  `json:"barbers"`
	Services []ServiceRow `json:"services"`
	Daily    []DayRow     `json:"daily"`
}

// Filter keeps transactions inside the range that match the barber and service criteria.
func Filter(txns []transactions.Transaction, c Criteria) []transactions.Transaction {
	out := make([]transactions.Transaction, 0, len(txns))
	for _, t := range txns {
		if !c.Range.Contains(t.Date) {
			continue
		}
		if c.BarberID != "" && t.BarberID != c.BarberID {
			continue
		}
		if c.ServiceID != "" && !t.HasService(c.ServiceID) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// BarberPerformance lists every barber, including those without transactions, by revenue descending.
// Ties keep catalog order.
func BarberPerformance(txns []transactions.Transaction, barbers []catalog.Barber) []BarberRow {
	rows := make([]BarberRow, len(barbers))
	idx := make(map[string]int, len(barbers))
	for i, b := range barbers {
		rows[i] = BarberRow{BarberID: b.ID, Name: b.Name}
		idx[b.ID] = i
	}
	for _, t := range txns {
		i, ok := idx[t.BarberID]
		if !ok {
			continue
		}
		rows[i].Revenue += t.FinalAmount
		rows[i].Services += len(t.ServiceIDs)
		rows[i].Transactions++
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Revenue > rows[j].Revenue })
	return rows
}

// ServicePerformance counts each service occurrence at its catalog price, keyed by name.
// Unknown services are skipped. Rows are ordered by count descending, ties by first appearance.
func ServicePerformance(txns []transactions.Transaction, cat *catalog.Catalog) []ServiceRow {
	rows := make([]ServiceRow, 0)
	idx := make(map[string]int)
	for _, t := range txns {
		for _, id := range t.ServiceIDs {
			svc, ok := cat.Service(id)
			if !ok {
				continue
			}
			i, seen := idx[svc.Name]
			if !seen {
				i = len(rows)
				idx[svc.Name] = i
				rows = append(rows, ServiceRow{Name: svc.Name})
			}
			rows[i].Count++
			rows[i].Revenue += svc.Price
		}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Count > rows[j].Count })
	return rows
}

// TopServices returns at most n rows. A non-positive n returns all rows.
func TopServices(rows []ServiceRow, n int) []ServiceRow {
	if n <= 0 || n >= len(rows) {
		return rows
	}
	return rows[:n]
}

// DailyRevenue sums final amounts per calendar day in loc, oldest day first.
func DailyRevenue(txns []transactions.Transaction, loc *time.Location) []DayRow {
	if loc == nil {
		loc = time.Local
	}
	totals := make(map[string]pricing.Money)
	for _, t := range txns {
		totals[t.Date.In(loc).Format(DayKeyLayout)] += t.FinalAmount
	}
	rows := make([]DayRow, 0, len(totals))
	for day, revenue := range totals {
		rows = append(rows, DayRow{Date: day, Revenue: revenue})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Date < rows[j].Date })
	return rows
}

// Summarize totals the working set. The average is zero for an empty set.
func Summarize(txns []transactions.Transaction) Summary {
	var total pricing.Money
	for _, t := range txns {
		total += t.FinalAmount
	}
	return Summary{
		TotalRevenue:       total,
		TotalTransactions:  len(txns),
		AverageTransaction: pricing.Ratio(total, len(txns)),
	}
}

// Aggregate filters txns by c and computes every aggregation over the result.
func Aggregate(txns []transactions.Transaction, cat *catalog.Catalog, c Criteria, loc *time.Location) Report {
	working := Filter(txns, c)
	return Report{
		Criteria: c,
		Summary:  Summarize(working),
		Barbers:  BarberPerformance(working, cat.Barbers()),
		Services: ServicePerformance(working, cat),
		Daily:    DailyRevenue(working, loc),
	}
}
