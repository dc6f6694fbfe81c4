package service

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/petfood-ae/storefront/internal/core"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9]{9,15}$`)

// newCheckoutValidator returns a validator that reports fields by their JSON
// names and knows the "phone" and "emirate" tags
func newCheckoutValidator() *validator.Validate {
	validate := validator.New()

	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Registration only fails for empty tags or nil functions
	_ = validate.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	_ = validate.RegisterValidation("emirate", func(fl validator.FieldLevel) bool {
		return core.IsEmirate(fl.Field().String())
	})

	return validate
}

// validateCheckout trims the request, applies defaults and validates it.
// Emirates are canonicalized to their listed spelling.
func (s *StorefrontService) validateCheckout(req *CheckoutRequest) error {
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.ReplaceAll(strings.TrimSpace(req.Phone), " ", "")
	req.Address = strings.TrimSpace(req.Address)
	req.City = strings.TrimSpace(req.City)
	req.Emirate = strings.TrimSpace(req.Emirate)
	if req.PaymentMethod == "" {
		req.PaymentMethod = core.PaymentMethodCOD
	}

	if err := s.validate.Struct(req); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return fmt.Errorf("%w: %s", core.ErrValidation, formatValidationErrors(validationErrors))
		}
		return fmt.Errorf("failed to validate checkout: %w", err)
	}

	for _, e := range core.Emirates {
		if strings.EqualFold(e, req.Emirate) {
			req.Emirate = e
			break
		}
	}
	return nil
}

func formatValidationErrors(validationErrors validator.ValidationErrors) string {
	details := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		switch fe.Tag() {
		case "required":
			details = append(details, fe.Field()+" is required")
		case "email":
			details = append(details, fe.Field()+" must be a valid email address")
		case "phone":
			details = append(details, fe.Field()+" must be 9 to 15 digits")
		case "emirate":
			details = append(details, fe.Field()+" must be one of "+strings.Join(core.Emirates, ", "))
		case "oneof":
			details = append(details, fe.Field()+" must be one of "+strings.ReplaceAll(fe.Param(), " ", ", "))
		case "max":
			details = append(details, fe.Field()+" must be at most "+fe.Param()+" characters")
		default:
			details = append(details, fe.Field()+" is invalid")
		}
	}
	return strings.Join(details, "; ")
}
