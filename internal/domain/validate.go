package domain

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate

	clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)
	weekdays     = map[string]struct{}{
		"monday": {}, "tuesday": {}, "wednesday": {}, "thursday": {},
		"friday": {}, "saturday": {}, "sunday": {},
	}
)

// FieldError describes one rejected PageData field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates PageData problems found at the editing boundary.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, field := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field.Field, field.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())

		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return field.Name
			}
			return name
		})

		_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
			return clockPattern.MatchString(fl.Field().String())
		})

		_ = v.RegisterValidation("weekday", func(fl validator.FieldLevel) bool {
			_, ok := weekdays[strings.ToLower(strings.TrimSpace(fl.Field().String()))]
			return ok
		})

		validateInst = v
	})
	return validateInst
}

// Validator exposes the shared validator so request payloads can reuse the custom tags.
func Validator() *validator.Validate {
	return validatorInstance()
}

// ValidatePageData checks PageData against its declared constraints.
func ValidatePageData(data PageData) error {
	err := validatorInstance().Struct(data)
	if err == nil {
		return nil
	}
	return convertValidationError(err)
}

func convertValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{
			Field:   trimNamespace(fe.Namespace()),
			Message: describeTag(fe),
		})
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].Field < fields[j].Field })
	return &ValidationError{Fields: fields}
}

func trimNamespace(ns string) string {
	if idx := strings.Index(ns, "."); idx >= 0 {
		return ns[idx+1:]
	}
	return ns
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return "must be at most " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "url":
		return "must be a valid URL"
	case "email":
		return "must be a valid email address"
	case "hexcolor":
		return "must be a hex color"
	case "oneof":
		return "must be one of " + fe.Param()
	case "clock":
		return "must use HH:MM"
	case "weekday":
		return "must be a weekday name"
	case "printascii":
		return "must be printable ASCII"
	case "excludesall":
		return "must not contain any of " + fe.Param()
	default:
		return "is invalid"
	}
}
