package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/barber-billing/internal/catalog"
	"github.com/noah-isme/barber-billing/internal/events"
	"github.com/noah-isme/barber-billing/internal/obs"
	"github.com/noah-isme/barber-billing/internal/transactions"
)

// Service validates billing forms and commits them as transactions.
type Service struct {
	Catalog *catalog.Catalog
	Store   *transactions.Store
	Bus     *events.Bus
	IDs     IDGenerator
	// Delay is waited before each commit to mimic a round trip.
	Delay  time.Duration
	Now    func() time.Time
	Logger zerolog.Logger
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Commit validates f and records a transaction built from it.
// On validation failure it returns a *ValidationError and the store is left untouched.
func (s *Service) Commit(ctx context.Context, f Form) (transactions.Transaction, error) {
	if s == nil || s.Catalog == nil || s.Store == nil || s.IDs == nil {
		return transactions.Transaction{}, errors.New("billing: service not configured")
	}
	if fields := Validate(f); len(fields) > 0 {
		obs.ObserveValidationFailure(fields.Fields()...)
		return transactions.Transaction{}, &ValidationError{Fields: fields}
	}
	mode, err := transactions.ParsePaymentMode(string(f.PaymentMode))
	if err != nil {
		return transactions.Transaction{}, err
	}
	if err := s.wait(ctx); err != nil {
		return transactions.Transaction{}, err
	}

	ids := f.Services()
	resolved := s.Catalog.Resolve(ids)
	summary := Quote(s.Catalog, f)
	barber, _ := s.Catalog.Barber(f.BarberID)

	txn := transactions.Transaction{
		ID:                 s.IDs.TransactionID(),
		CustomerID:         s.IDs.CustomerID(),
		CustomerName:       strings.TrimSpace(f.CustomerName),
		CustomerPhone:      f.CustomerPhone,
		BarberID:           f.BarberID,
		BarberName:         barber.Name,
		ServiceIDs:         ids,
		ServiceNames:       catalog.Names(resolved),
		Subtotal:           summary.Subtotal,
		MembershipDiscount: summary.Discount,
		ManualAdjustment:   summary.Adjustment,
		FinalAmount:        summary.Total,
		PaymentMode:        mode,
		HasMembership:      f.HasMembership,
		Date:               s.now(),
	}
	if f.HasMembership && f.MembershipStartDate != nil {
		start := *f.MembershipStartDate
		txn.MembershipStartDate = &start
	}
	if err := s.Store.Prepend(txn); err != nil {
		return transactions.Transaction{}, fmt.Errorf("billing: record transaction: %w", err)
	}

	if s.Bus != nil {
		if _, err := s.Bus.Emit(ctx, events.TopicTransactionCreated, txn.ID, txn); err != nil {
			obs.Logger(ctx, s.Logger).Warn().Err(err).Str("transaction_id", txn.ID).Msg("transaction event delivery failed")
		}
	}
	return txn, nil
}

// Submit commits the form and resets it on success. A failed submit leaves the form as entered.
func (s *Service) Submit(ctx context.Context, f *Form) (transactions.Transaction, error) {
	if f == nil {
		return transactions.Transaction{}, errors.New("billing: form is required")
	}
	txn, err := s.Commit(ctx, *f)
	if err != nil {
		return transactions.Transaction{}, err
	}
	f.Reset()
	return txn, nil
}

func (s *Service) wait(ctx context.Context) error {
	if s.Delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.Delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
