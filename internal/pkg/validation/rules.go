// Package validation holds the field rules shared by services and the
// gin binding engine.
package validation

import (
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Validation rule patterns
var (
	PassportPattern = regexp.MustCompile(`^[A-Z0-9]{5,15}$`)
	IATAPattern     = regexp.MustCompile(`^[A-Z]{3}$`)

	PasswordMinLength = 8
	PassportMaxLength = 30

	VoyageMinYear    = 2000
	VoyageMaxYear    = 2100
	VoyageOffresMax  = 5000
	ChatMaxFiles     = 10
	PelerinMatchSize = 10
)

var (
	once     sync.Once
	validate *validator.Validate
)

// Validator returns the shared validator with the custom tags registered.
func Validator() *validator.Validate {
	once.Do(func() {
		validate = validator.New()
		if err := Register(validate); err != nil {
			panic(err)
		}
	})
	return validate
}

// Register adds the "passport" and "iata" tags to v.
func Register(v *validator.Validate) error {
	if err := v.RegisterValidation("passport", func(fl validator.FieldLevel) bool {
		return PassportPattern.MatchString(fl.Field().String())
	}); err != nil {
		return err
	}
	return v.RegisterValidation("iata", func(fl validator.FieldLevel) bool {
		return IATAPattern.MatchString(fl.Field().String())
	})
}

// IsEmail checks an address with the validator's email rule.
func IsEmail(s string) bool {
	return Validator().Var(s, "required,email") == nil
}

// IsPassport checks an already upper-cased passport number.
func IsPassport(s string) bool {
	return Validator().Var(s, "passport") == nil
}

// IsIATA checks an already upper-cased airport code.
func IsIATA(s string) bool {
	return Validator().Var(s, "iata") == nil
}

// NormalizePassport trims and upper-cases a passport number.
func NormalizePassport(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
