package billing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/barber-billing/internal/billing"
)

func validForm() billing.Form {
	return billing.Form{
		CustomerName:     "Arjun Mehta",
		CustomerPhone:    "9876543210",
		SelectedServices: []string{"1", "2"},
		BarberID:         "1",
		PaymentMode:      "Cash",
	}
}

func TestValidatePhoneLength(t *testing.T) {
	cases := map[string]bool{
		"987654321":    false,
		"9876543210":   true,
		"98765432100":  false,
		"98765 43210":  false,
		"98765abcde":   false,
		" 9876543210":  false,
		"９８７６５４３２１０": false,
	}
	for phone, ok := range cases {
		f := validForm()
		f.CustomerPhone = phone
		errs := billing.Validate(f)
		if ok {
			require.Nil(t, errs, phone)
			continue
		}
		require.Equal(t, "Phone number must be exactly 10 digits", errs[billing.FieldCustomerPhone], phone)
	}
}

func TestValidateReportsEveryField(t *testing.T) {
	errs := billing.Validate(billing.Form{CustomerName: "   ", CustomerPhone: "  ", HasMembership: true})
	require.Equal(t, billing.FieldErrors{
		billing.FieldCustomerName:        "Customer name is required",
		billing.FieldCustomerPhone:       "Phone number is required",
		billing.FieldServices:            "Please select at least one service",
		billing.FieldBarberID:            "Please select a barber",
		billing.FieldMembershipStartDate: "Membership start date is required",
	}, errs)
	require.Equal(t, []string{"barberId", "customerName", "customerPhone", "membershipStartDate", "services"}, errs.Fields())
}

func TestValidateMembershipStartDate(t *testing.T) {
	f := validForm()
	f.HasMembership = true
	require.Contains(t, billing.Validate(f), billing.FieldMembershipStartDate)

	start := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	f.MembershipStartDate = &start
	require.Nil(t, billing.Validate(f))

	f.HasMembership = false
	f.MembershipStartDate = nil
	require.Nil(t, billing.Validate(f))
}

func TestValidateBarberOnlyRequiresSelection(t *testing.T) {
	f := validForm()
	f.BarberID = ""
	require.Equal(t, "Please select a barber", billing.Validate(f)[billing.FieldBarberID])

	f.BarberID = " "
	require.NotContains(t, billing.Validate(f), billing.FieldBarberID)
}

func TestValidateEmptyServiceList(t *testing.T) {
	f := validForm()
	f.SelectedServices = []string{}
	require.Equal(t, "Please select at least one service", billing.Validate(f)[billing.FieldServices])
}

func TestValidationErrorMessage(t *testing.T) {
	err := &billing.ValidationError{Fields: billing.FieldErrors{"services": "x", "barberId": "y"}}
	require.Equal(t, "billing form is invalid: barberId, services", err.Error())
}
