package seed

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/noah-isme/barber-billing/internal/catalog"
	"github.com/noah-isme/barber-billing/internal/pricing"
	"github.com/noah-isme/barber-billing/internal/transactions"
)

// Options controls demo transaction generation.
type Options struct {
	Count int
	Days  int
	Now   time.Time
	// Seed makes the output reproducible. Zero picks a random seed.
	Seed uint64
}

const (
	defaultCount       = 50
	defaultDays        = 30
	maxServicesPerBill = 4
	paytmThreshold     = 0.6
)

// Generate builds Count demo bills spread over the last Days days, newest first.
//
// Each bill draws up to four services (repeats collapse), a random barber and a random
// customer whose membership decides the discount. No manual adjustment is applied.
func Generate(cat *catalog.Catalog, opts Options) []transactions.Transaction {
	if opts.Count < 0 {
		opts.Count = 0
	}
	if opts.Days <= 0 {
		opts.Days = defaultDays
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	seed := opts.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	services := cat.Services()
	barbers := cat.Barbers()
	customers := cat.Customers()
	if len(services) == 0 || len(barbers) == 0 || len(customers) == 0 {
		return []transactions.Transaction{}
	}

	out := make([]transactions.Transaction, 0, opts.Count)
	for i := 0; i < opts.Count; i++ {
		date := opts.Now.AddDate(0, 0, -rng.IntN(opts.Days))
		customer := customers[rng.IntN(len(customers))]
		barber := barbers[rng.IntN(len(barbers))]

		picks := 1 + rng.IntN(maxServicesPerBill)
		chosen := make([]catalog.Service, 0, picks)
		seen := make(map[string]struct{}, picks)
		for j := 0; j < picks; j++ {
			svc := services[rng.IntN(len(services))]
			if _, dup := seen[svc.ID]; dup {
				continue
			}
			seen[svc.ID] = struct{}{}
			chosen = append(chosen, svc)
		}

		summary := pricing.Compute(catalog.Prices(chosen), customer.HasMembership, 0)
		mode := transactions.PaymentCash
		if rng.Float64() > paytmThreshold {
			mode = transactions.PaymentPaytm
		}

		out = append(out, transactions.Transaction{
			ID:                  fmt.Sprintf("txn_%d", i+1),
			CustomerID:          customer.ID,
			CustomerName:        customer.Name,
			CustomerPhone:       customer.Phone,
			BarberID:            barber.ID,
			BarberName:          barber.Name,
			ServiceIDs:          serviceIDs(chosen),
			ServiceNames:        catalog.Names(chosen),
			Subtotal:            summary.Subtotal,
			MembershipDiscount:  summary.Discount,
			FinalAmount:         summary.Total,
			PaymentMode:         mode,
			HasMembership:       customer.HasMembership,
			MembershipStartDate: customer.MembershipStartDate,
			Date:                date,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

// Default generates the standard demo dataset of 50 bills over 30 days.
func Default(cat *catalog.Catalog, now time.Time, seed uint64) []transactions.Transaction {
	return Generate(cat, Options{Count: defaultCount, Days: defaultDays, Now: now, Seed: seed})
}

func serviceIDs(services []catalog.Service) []string {
	out := make([]string, len(services))
	for i, svc := range services {
		out[i] = svc.ID
	}
	return out
}
