// Package validate builds the request validator shared by all handlers.
package validate

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// emailPattern is the fixed address shape accepted for verification mail:
// local part, at-sign, dotted domain and a TLD of at least two letters.
var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// IsEmail reports whether s matches the accepted email pattern.
func IsEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// New returns a validator with the "mailaddr" tag registered. Field names in
// validation errors are taken from json tags.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// error is always nil: the tag name is not reserved
	_ = v.RegisterValidation("mailaddr", func(fl validator.FieldLevel) bool {
		return IsEmail(fl.Field().String())
	})

	return v
}
