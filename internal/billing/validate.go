package billing

import (
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Field keys reported in FieldErrors.
const (
	FieldCustomerName        = "customerName"
	FieldCustomerPhone       = "customerPhone"
	FieldServices            = "services"
	FieldBarberID            = "barberId"
	FieldMembershipStartDate = "membershipStartDate"
)

// FieldErrors maps a form field to a human readable message.
type FieldErrors map[string]string

// Fields returns the failing field keys in sorted order.
func (fe FieldErrors) Fields() []string {
	out := make([]string, 0, len(fe))
	for k := range fe {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ValidationError is returned when a form cannot be committed.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	return "billing form is invalid: " + strings.Join(e.Fields.Fields(), ", ")
}

var messages = map[string]map[string]string{
	FieldCustomerName: {
		"notblank": "Customer name is required",
	},
	FieldCustomerPhone: {
		"notblank": "Phone number is required",
		"digits10": "Phone number must be exactly 10 digits",
	},
	FieldServices: {
		"min": "Please select at least one service",
	},
	FieldBarberID: {
		"required": "Please select a barber",
	},
	FieldMembershipStartDate: {
		"required_if": "Membership start date is required",
	},
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func formValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		_ = v.RegisterValidation("digits10", func(fl validator.FieldLevel) bool {
			return isTenDigits(fl.Field().String())
		})
		validate = v
	})
	return validate
}

// isTenDigits reports whether s is exactly ten ASCII digits with no surrounding space.
func isTenDigits(s string) bool {
	if len(s) != 10 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Validate checks the form and reports every failing field. It returns nil when the form is valid.
func Validate(f Form) FieldErrors {
	err := formValidator().Struct(f)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return FieldErrors{"form": err.Error()}
	}
	out := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		if _, seen := out[field]; seen {
			continue
		}
		msg, ok := messages[field][fe.Tag()]
		if !ok {
			msg = fe.Error()
		}
		out[field] = msg
	}
	return out
}
