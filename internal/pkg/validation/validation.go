package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"bondbook-backend/internal/domain"

	"github.com/go-playground/validator/v10"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Names: letters, spaces, hyphens, apostrophes and dots.
var nameRe = regexp.MustCompile(`^[\p{L}\s\-'.]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("person_name", func(fl validator.FieldLevel) bool {
		return IsValidName(fl.Field().String())
	})
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return IsValidPassword(fl.Field().String())
	})
	return v
}

func IsValidEmail(email string) bool {
	return emailRe.MatchString(email)
}

// IsValidPassword requires at least 8 characters with a letter, a digit and a
// punctuation or symbol character.
func IsValidPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	hasLetter, hasDigit, hasSpecial := false, false, false
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSpecial = true
		}
	}
	return hasLetter && hasDigit && hasSpecial
}

func IsValidName(name string) bool {
	name = strings.TrimSpace(name)
	return name != "" && nameRe.MatchString(name)
}

// Struct validates a request DTO by its `validate` tags and returns a
// domain validation error naming the first offending field.
func Struct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return domain.Validation("Invalid request body.")
	}
	return domain.Validation("%s", message(verrs[0]))
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required.", fe.Field())
	case "email":
		return "Invalid email format."
	case "password":
		return "Password must be at least 8 characters long and include a letter, a number and a special character."
	case "person_name":
		return "Name may only contain letters, spaces, hyphens, apostrophes and dots."
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s.", fe.Field(), fe.Param())
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s.", fe.Field(), fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s.", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s.", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s is invalid.", fe.Field())
}
