package transactions

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/noah-isme/barber-billing/internal/pricing"
)

// PaymentMode enumerates the accepted ways of settling a bill.
type PaymentMode string

const (
	PaymentCash  PaymentMode = "Cash"
	PaymentPaytm PaymentMode = "Paytm"
)

// ErrInvalidPaymentMode is returned when a payment mode cannot be parsed.
var ErrInvalidPaymentMode = errors.New("invalid payment mode")

// ParsePaymentMode parses a payment mode case-insensitively. Empty input yields Cash.
func ParsePaymentMode(raw string) (PaymentMode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "cash":
		return PaymentCash, nil
	case "paytm":
		return PaymentPaytm, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPaymentMode, raw)
	}
}

// Transaction is an immutable record of a completed bill.
//
// Customer fields are a snapshot taken from the billing form and do not reference the customer list.
type Transaction struct {
	ID                  string        `json:"id"`
	CustomerID          string        `json:"customerId"`
	CustomerName        string        `json:"customerName"`
	CustomerPhone       string        `json:"customerPhone"`
	BarberID            string        `json:"barberId"`
	BarberName          string        `json:"barberName"`
	ServiceIDs          []string      `json:"services"`
	ServiceNames        []string      `json:"serviceNames"`
	Subtotal            pricing.Money `json:"subtotal"`
	MembershipDiscount  pricing.Money `json:"membershipDiscount"`
	ManualAdjustment    pricing.Money `json:"manualAdjustment"`
	FinalAmount         pricing.Money `json:"finalAmount"`
	PaymentMode         PaymentMode   `json:"paymentMode"`
	HasMembership       bool          `json:"hasMembership"`
	MembershipStartDate *time.Time    `json:"membershipStartDate,omitempty"`
	Date                time.Time     `json:"date"`
}

// HasService reports whether the service id is on the bill.
func (t Transaction) HasService(id string) bool {
	for _, s := range t.ServiceIDs {
		if s == id {
			return true
		}
	}
	return false
}

// CheckAmounts verifies the discount and final amount against the subtotal and adjustment.
func (t Transaction) CheckAmounts() error {
	want := pricing.Compute([]pricing.Money{t.Subtotal}, t.HasMembership, t.ManualAdjustment)
	if t.MembershipDiscount != want.Discount {
		return fmt.Errorf("transaction %s: discount %d, expected %d", t.ID, t.MembershipDiscount, want.Discount)
	}
	if t.FinalAmount != want.Total {
		return fmt.Errorf("transaction %s: final amount %d, expected %d", t.ID, t.FinalAmount, want.Total)
	}
	return nil
}

func (t Transaction) clone() Transaction {
	t.ServiceIDs = append([]string(nil), t.ServiceIDs...)
	t.ServiceNames = append([]string(nil), t.ServiceNames...)
	if t.MembershipStartDate != nil {
		d := *t.MembershipStartDate
		t.MembershipStartDate = &d
	}
	return t
}

// Row is the flat CSV rendering of a transaction.
type Row struct {
	ID          string `csv:"id"`
	Date        string `csv:"date"`
	Customer    string `csv:"customer"`
	Phone       string `csv:"phone"`
	BarberID    string `csv:"barber_id"`
	Barber      string `csv:"barber"`
	Services    string `csv:"services"`
	Subtotal    string `csv:"subtotal"`
	Discount    string `csv:"membership_discount"`
	Adjustment  string `csv:"manual_adjustment"`
	FinalAmount string `csv:"final_amount"`
	PaymentMode string `csv:"payment_mode"`
	Membership  bool   `csv:"membership"`
}

// Row flattens the transaction for CSV output.
func (t Transaction) Row() Row {
	return Row{
		ID:          t.ID,
		Date:        t.Date.Format(time.RFC3339),
		Customer:    t.CustomerName,
		Phone:       t.CustomerPhone,
		BarberID:    t.BarberID,
		Barber:      t.BarberName,
		Services:    strings.Join(t.ServiceNames, ";"),
		Subtotal:    pricing.Format(t.Subtotal),
		Discount:    pricing.Format(t.MembershipDiscount),
		Adjustment:  pricing.Format(t.ManualAdjustment),
		FinalAmount: pricing.Format(t.FinalAmount),
		PaymentMode: string(t.PaymentMode),
		Membership:  t.HasMembership,
	}
}

// Rows flattens a list of transactions.
func Rows(txns []Transaction) []Row {
	out := make([]Row, len(txns))
	for i, t := range txns {
		out[i] = t.Row()
	}
	return out
}
