package validation

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"example.com/storefront/services/orders/internal/domain"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Struct validates a params struct using its validation tags and translates
// the first failure into a domain validation error.
func Struct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &domain.ValidationError{
			Field:  strings.ToLower(fe.Field()),
			Reason: "failed " + fe.Tag() + " check",
		}
	}
	return &domain.ValidationError{Field: "params", Reason: err.Error()}
}
