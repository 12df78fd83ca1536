// Package validation adapts go-playground/validator to echo and to the
// service's ValidationError type.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	apperrors "canvass/internal/errors"
)

// bcrypt ignores everything past 72 bytes.
const (
	minPasswordBytes = 8
	maxPasswordBytes = 72
)

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// New builds a CustomValidator with the strongpassword and emptyoremail rules
// registered and json tag names used in error messages.
func New() *CustomValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("strongpassword", strongPassword)
	_ = v.RegisterValidation("emptyoremail", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return strings.TrimSpace(s) == "" || v.Var(s, "email") == nil
	})
	return &CustomValidator{validator: v}
}

// Validate implements echo.Validator. The first failing field is reported as
// a *errors.ValidationError.
func (cv *CustomValidator) Validate(i interface{}) error {
	err := cv.validator.Struct(i)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return apperrors.NewValidationError(fe.Field(), reason(fe))
	}
	return apperrors.NewValidationError("", err.Error())
}

// ValidPassword reports whether password satisfies the strongpassword rule.
func ValidPassword(password string) bool {
	if len(password) < minPasswordBytes || len(password) > maxPasswordBytes {
		return false
	}
	var lower, upper, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r) || unicode.IsSpace(r):
			special = true
		}
	}
	return lower && upper && digit && special
}

func strongPassword(fl validator.FieldLevel) bool {
	return ValidPassword(fl.Field().String())
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email", "emptyoremail":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "strongpassword":
		return fmt.Sprintf("must be %d-%d bytes and contain lowercase, uppercase, digit and special characters",
			minPasswordBytes, maxPasswordBytes)
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
