package billing

import (
	"time"

	"github.com/noah-isme/barber-billing/internal/catalog"
	"github.com/noah-isme/barber-billing/internal/pricing"
	"github.com/noah-isme/barber-billing/internal/transactions"
)

// Form is the state of the billing form between edits.
type Form struct {
	CustomerName        string                   `json:"customerName" validate:"notblank"`
	CustomerPhone       string                   `json:"customerPhone" validate:"notblank,digits10"`
	SelectedServices    []string                 `json:"services" validate:"min=1"`
	BarberID            string                   `json:"barberId" validate:"required"`
	HasMembership       bool                     `json:"hasMembership"`
	MembershipStartDate *time.Time               `json:"membershipStartDate,omitempty" validate:"required_if=HasMembership true"`
	PaymentMode         transactions.PaymentMode `json:"paymentMode"`
	ManualAdjustment    pricing.Money            `json:"manualAdjustment"`
}

// NewForm returns an empty form with default selections.
func NewForm() Form {
	return Form{PaymentMode: transactions.PaymentCash}
}

// Reset clears every field back to the defaults.
func (f *Form) Reset() {
	*f = NewForm()
}

// ToggleService selects id when absent and deselects it otherwise.
func (f *Form) ToggleService(id string) {
	for i, s := range f.SelectedServices {
		if s == id {
			f.SelectedServices = append(f.SelectedServices[:i:i], f.SelectedServices[i+1:]...)
			return
		}
	}
	f.SelectedServices = append(f.SelectedServices, id)
}

// Services returns the selection without repeats, in selection order.
func (f Form) Services() []string {
	out := make([]string, 0, len(f.SelectedServices))
	seen := make(map[string]struct{}, len(f.SelectedServices))
	for _, id := range f.SelectedServices {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Quote computes the live billing summary for the form. Unknown services are ignored.
func Quote(cat *catalog.Catalog, f Form) pricing.Summary {
	resolved := cat.Resolve(f.Services())
	return pricing.Compute(catalog.Prices(resolved), f.HasMembership, f.ManualAdjustment)
}
