package billing_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/barber-billing/internal/billing"
	"github.com/noah-isme/barber-billing/internal/events"
	"github.com/noah-isme/barber-billing/internal/seed"
	"github.com/noah-isme/barber-billing/internal/transactions"
)

type seqIDs struct{ n int }

func (s *seqIDs) TransactionID() string {
	s.n++
	return fmt.Sprintf("txn_%d", s.n)
}

func (s *seqIDs) CustomerID() string { return fmt.Sprintf("cust_%d", s.n) }

var fixedNow = time.Date(2024, 6, 3, 11, 30, 0, 0, time.UTC)

func newService(t *testing.T) (*billing.Service, *transactions.Store, *events.Journal) {
	t.Helper()
	store := transactions.NewStore()
	journal := events.NewJournal(10)
	return &billing.Service{
		Catalog: seed.Catalog(),
		Store:   store,
		Bus:     &events.Bus{Store: journal},
		IDs:     &seqIDs{},
		Now:     func() time.Time { return fixedNow },
		Logger:  zerolog.Nop(),
	}, store, journal
}

func TestCommitBuildsTransaction(t *testing.T) {
	svc, store, journal := newService(t)
	start := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	f := billing.Form{
		CustomerName:        "  Arjun Mehta ",
		CustomerPhone:       "9876543210",
		SelectedServices:    []string{"1", "2"},
		BarberID:            "3",
		HasMembership:       true,
		MembershipStartDate: &start,
		PaymentMode:         transactions.PaymentPaytm,
		ManualAdjustment:    -5000,
	}

	txn, err := svc.Commit(context.Background(), f)
	require.NoError(t, err)
	require.Equal(t, "txn_1", txn.ID)
	require.Equal(t, "Arjun Mehta", txn.CustomerName)
	require.Equal(t, "Suresh Patel", txn.BarberName)
	require.Equal(t, []string{"Hair Cut", "Beard Trim"}, txn.ServiceNames)
	require.Equal(t, int64(23000), txn.Subtotal)
	require.Equal(t, int64(2300), txn.MembershipDiscount)
	require.Equal(t, int64(-5000), txn.ManualAdjustment)
	require.Equal(t, int64(15700), txn.FinalAmount)
	require.Equal(t, transactions.PaymentPaytm, txn.PaymentMode)
	require.Equal(t, fixedNow, txn.Date)
	require.Equal(t, &start, txn.MembershipStartDate)
	require.NoError(t, txn.CheckAmounts())

	stored, err := store.Get("txn_1")
	require.NoError(t, err)
	require.Equal(t, txn, stored)

	recorded := journal.Recent(events.TopicTransactionCreated)
	require.Len(t, recorded, 1)
	require.Equal(t, "txn_1", recorded[0].AggregateID)
}

func TestCommitPrependsNewestFirst(t *testing.T) {
	svc, store, _ := newService(t)
	for i := 0; i < 3; i++ {
		_, err := svc.Commit(context.Background(), validForm())
		require.NoError(t, err)
	}
	items := store.List()
	require.Equal(t, []string{"txn_3", "txn_2", "txn_1"}, []string{items[0].ID, items[1].ID, items[2].ID})
}

func TestCommitRejectsInvalidFormWithoutSideEffects(t *testing.T) {
	svc, store, journal := newService(t)
	f := validForm()
	f.CustomerPhone = "987654321"

	_, err := svc.Commit(context.Background(), f)
	var verr *billing.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "Phone number must be exactly 10 digits", verr.Fields[billing.FieldCustomerPhone])
	require.Zero(t, store.Len())
	require.Zero(t, store.Revision())
	require.Empty(t, journal.Recent(""))
}

func TestCommitDefaultsPaymentModeAndKeepsUnknownServices(t *testing.T) {
	svc, _, _ := newService(t)
	f := validForm()
	f.PaymentMode = ""
	f.SelectedServices = []string{"1", "ghost", "1"}

	txn, err := svc.Commit(context.Background(), f)
	require.NoError(t, err)
	require.Equal(t, transactions.PaymentCash, txn.PaymentMode)
	require.Equal(t, []string{"1", "ghost"}, txn.ServiceIDs)
	require.Equal(t, []string{"Hair Cut"}, txn.ServiceNames)
	require.Equal(t, int64(15000), txn.Subtotal)
	require.Nil(t, txn.MembershipStartDate)
}

func TestCommitRejectsUnknownPaymentMode(t *testing.T) {
	svc, store, _ := newService(t)
	f := validForm()
	f.PaymentMode = "Card"
	_, err := svc.Commit(context.Background(), f)
	require.ErrorIs(t, err, transactions.ErrInvalidPaymentMode)
	require.Zero(t, store.Len())
}

func TestSubmitResetsFormOnlyOnSuccess(t *testing.T) {
	svc, _, _ := newService(t)

	bad := validForm()
	bad.BarberID = ""
	_, err := svc.Submit(context.Background(), &bad)
	require.Error(t, err)
	require.Equal(t, "Arjun Mehta", bad.CustomerName)

	good := validForm()
	good.ManualAdjustment = 500
	_, err = svc.Submit(context.Background(), &good)
	require.NoError(t, err)
	require.Equal(t, billing.NewForm(), good)
}

func TestCommitDelayHonoursCancellation(t *testing.T) {
	svc, store, _ := newService(t)
	svc.Delay = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := svc.Commit(ctx, validForm())
	require.True(t, errors.Is(err, context.DeadlineExceeded))
	require.Zero(t, store.Len())
}

func TestCommitWithShortDelay(t *testing.T) {
	svc, store, _ := newService(t)
	svc.Delay = 5 * time.Millisecond
	_, err := svc.Commit(context.Background(), validForm())
	require.NoError(t, err)
	require.Equal(t, 1, store.Len())
}

type failingNotifier struct{}

func (failingNotifier) Notify(context.Context, events.Event) error { return errors.New("down") }

func TestCommitSurvivesNotifierFailure(t *testing.T) {
	var buf bytes.Buffer
	svc, store, _ := newService(t)
	svc.Logger = zerolog.New(&buf)
	svc.Bus.Notifiers = []events.Notifier{failingNotifier{}}
	txn, err := svc.Commit(context.Background(), validForm())
	require.NoError(t, err)
	require.Equal(t, 1, store.Len())
	require.Contains(t, buf.String(), `"level":"warn"`)
	require.Contains(t, buf.String(), txn.ID)
	require.Contains(t, buf.String(), "transaction event delivery failed")
}

func TestSnowflakeIDs(t *testing.T) {
	ids, err := billing.NewSnowflakeIDs(1)
	require.NoError(t, err)
	a, b := ids.TransactionID(), ids.TransactionID()
	require.NotEqual(t, a, b)
	require.Regexp(t, `^txn_\d+$`, a)
	require.Regexp(t, `^cust_[0-9a-f-]{36}$`, ids.CustomerID())

	_, err = billing.NewSnowflakeIDs(5000)
	require.Error(t, err)
}
