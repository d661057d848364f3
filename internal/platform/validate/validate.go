// Package validate wraps go-playground/validator with the project's custom
// tags and turns its errors into field/reason pairs for API responses.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	instance = newValidator()
	nonSpace = regexp.MustCompile(`\S`)
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return nonSpace.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("yearmonth", func(fl validator.FieldLevel) bool {
		return YearMonth(fl.Field().String())
	})
	return v
}

// YearMonth reports whether s is a period in YYYY-MM form.
func YearMonth(s string) bool {
	_, err := time.Parse("2006-01", s)
	return err == nil
}

type Issue struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Error collects every failed rule of one Struct call.
type Error struct {
	Issues []Issue
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.Field+" "+issue.Reason)
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// Struct validates s against its validate tags. Rule failures come back as
// *Error; anything else (a nil or non-struct argument) is returned as is.
func Struct(s any) error {
	err := instance.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	out := &Error{Issues: make([]Issue, 0, len(fieldErrs))}
	for _, fe := range fieldErrs {
		out.Issues = append(out.Issues, Issue{Field: fieldPath(fe), Reason: reason(fe)})
	}
	sort.SliceStable(out.Issues, func(i, j int) bool {
		return out.Issues[i].Field < out.Issues[j].Field
	})
	return out
}

// Issues extracts the field issues from err, or nil when err is not a
// validation failure.
func Issues(err error) []Issue {
	var verr *Error
	if errors.As(err, &verr) {
		return verr.Issues
	}
	return nil
}

// fieldPath drops the root struct name from the namespace, leaving
// e.g. allowances[0].type.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "notblank":
		return "must not be blank"
	case "yearmonth":
		return "must be in YYYY-MM format"
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " long"
	case "min":
		if fe.Param() == "1" {
			return "must not be empty"
		}
		return "must be at least " + fe.Param() + " long"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of " + fe.Param()
	default:
		return fmt.Sprintf("failed %s", fe.Tag())
	}
}
