package records

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// descriptorSlug is the slug the namespace descriptor would resolve as
const descriptorSlug = "_namespace"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("namespace", isNamespace); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("slug", isSlug); err != nil {
		panic(err)
	}
	return v
}

// isElement accepts a single visible path element: no separators, no NUL,
// no leading '.'. The leading '.' rule also rejects "." and "..".
func isElement(s string) bool {
	if s == "" || strings.ContainsAny(s, "/\\\x00") {
		return false
	}
	return s[0] != '.'
}

// isNamespace also rejects a leading '_', which keeps /_api and other
// reserved prefixes out of the namespace space
func isNamespace(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return isElement(s) && s[0] != '_'
}

// isSlug rejects only the descriptor itself among '_' names
func isSlug(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return isElement(s) && s != descriptorSlug
}

// ValidNamespace reports whether s may be used as a namespace directory
func ValidNamespace(s string) bool {
	return validate.Var(s, "required,namespace") == nil
}

// ValidSlug reports whether s may be used as a record slug
func ValidSlug(s string) bool {
	return validate.Var(s, "required,slug") == nil
}
