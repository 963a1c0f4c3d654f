package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"elibrary/internal/platform/crypto"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON name so details match the request body.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	_ = validate.RegisterValidation("password_strength", validatePasswordStrength)
	_ = validate.RegisterValidation("notblank", validateNotBlank)
}

func validatePasswordStrength(fl validator.FieldLevel) bool {
	return PasswordStrong(fl.Field().String())
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// PasswordStrong reports whether password has at least 8 characters with an
// uppercase letter, a lowercase letter, a digit and a special character.
func PasswordStrong(password string) bool {
	return crypto.ValidatePasswordStrength(password) == nil
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Struct validates s against its `validate` tags. It returns nil when s is valid.
func Struct(s any) []FieldError {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: "", Message: err.Error()}}
	}

	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		param := fe.Param()

		var message string
		switch fe.Tag() {
		case "required", "notblank":
			message = fmt.Sprintf("%s is required", field)
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", field)
		case "min":
			message = fmt.Sprintf("%s must be at least %s characters", field, param)
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", field, param)
		case "password_strength":
			message = fmt.Sprintf("%s must be at least 8 characters with uppercase, lowercase, number, and special character", field)
		default:
			message = fmt.Sprintf("%s is invalid", field)
		}

		out = append(out, FieldError{
			Field:   field,
			Message: message,
		})
	}
	return out
}
