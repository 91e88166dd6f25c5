// Package validator runs the struct-tag form rules applied before any I/O
// and reports the first violation as an apperr.ValidationError.
package validator

import (
	"errors"
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/fekuna/superfume-sync/internal/apperr"
)

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		// Registration only fails on an empty tag or a nil func.
		_ = v.RegisterValidation("hasdigit", containsRune(unicode.IsDigit))
		_ = v.RegisterValidation("hasletter", containsRune(unicode.IsLetter))
		_ = v.RegisterValidation("personname", personName)
		_ = v.RegisterValidation("maildomain", mailDomain)
		validate = v
	})
	return validate
}

// Struct validates s against its `validate` tags.
func Struct(s any) error {
	err := instance().Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return apperr.Validation(fe.Field(), message(fe))
	}
	return apperr.Validation("input", err.Error())
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "min":
		if fe.Kind() == reflect.String {
			return "too short"
		}
		return "must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return "too long"
		}
		return "must be at most " + fe.Param()
	case "email", "maildomain":
		return "malformed address"
	case "number":
		return "digits only"
	case "hasdigit":
		return "needs a number"
	case "hasletter":
		return "needs a letter"
	case "personname":
		return "letters only"
	case "oneof":
		return "must be one of " + fe.Param()
	default:
		return "invalid"
	}
}

func containsRune(pred func(rune) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return strings.ContainsFunc(fl.Field().String(), pred)
	}
}

func personName(fl validator.FieldLevel) bool {
	for _, r := range fl.Field().String() {
		if !unicode.IsLetter(r) && r != ' ' {
			return false
		}
	}
	return true
}

// mailDomain requires a dotted domain; the email tag alone accepts
// addresses such as ana@superfume.
func mailDomain(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	at := strings.LastIndex(s, "@")
	if at < 0 {
		return false
	}
	domain := s[at+1:]
	dot := strings.LastIndex(domain, ".")
	return dot > 0 && dot < len(domain)-1
}
