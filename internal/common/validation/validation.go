// Package validation holds the shared validator instance and the wording
// used when a field fails a rule.
package validation

import (
	"errors"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// MaxDisplaySize is the largest page a caller may request.
const MaxDisplaySize = 500

// Validate is a shared validator instance. Field names reported in errors
// are the json (or query) names callers use.
var Validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get("json")
		if name == "" {
			name = fld.Tag.Get("query")
		}
		name = strings.SplitN(name, ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Rules registered here can't fail: the tags are static.
	_ = v.RegisterValidation("page", validatePage)
	_ = v.RegisterValidation("display_size", validateDisplaySize)

	return v
}

func validatePage(fl validator.FieldLevel) bool {
	n, err := strconv.Atoi(fl.Field().String())
	return err == nil && n > 0
}

func validateDisplaySize(fl validator.FieldLevel) bool {
	n, err := strconv.Atoi(fl.Field().String())
	return err == nil && n > 0 && n <= MaxDisplaySize
}

// FieldErrors extracts validator field errors from err.
func FieldErrors(err error) (validator.ValidationErrors, bool) {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// Field returns the caller-facing name of the failing field. Map and slice
// element suffixes are dropped so metadata[key] reports as metadata.
func Field(e validator.FieldError) string {
	name := e.Field()
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i]
	}
	return name
}

// IsMissing reports whether e is an absent required field.
func IsMissing(e validator.FieldError) bool {
	return e.Tag() == "required"
}

// Describe explains the rule e failed.
func Describe(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Must be a valid email address"
	case "url":
		return "Must be a valid URL format"
	case "min":
		if e.Kind() == reflect.String {
			return "Must have a size of at least " + e.Param()
		}
		return "Must be greater than or equal to " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return "Must be less than or equal to " + e.Param() + " characters length"
		}
		if e.Kind() == reflect.Map {
			return "Must have at most " + e.Param() + " entries"
		}
		return "Must be less than or equal to " + e.Param()
	case "len":
		return "Must be exactly " + e.Param() + " characters"
	case "oneof":
		return "Must be one of: " + strings.ReplaceAll(e.Param(), " ", ", ")
	case "numeric":
		return "Must be numeric"
	case "datetime":
		return "Must be an ISO-8601 date time"
	case "page":
		return "Must be a positive integer"
	case "display_size":
		return "Must be between 1 and " + strconv.Itoa(MaxDisplaySize)
	default:
		return "Invalid value"
	}
}
