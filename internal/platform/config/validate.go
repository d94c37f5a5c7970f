package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ValidationError lists config fields (e.g. "Redis.DraftTTL") that are
// missing or out of range, and environment keys whose values did not parse.
type ValidationError struct {
	fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

func (e *ValidationError) Fields() []string {
	return append([]string(nil), e.fields...)
}

var (
	configValidatorOnce sync.Once
	configValidator     *validator.Validate
)

func structValidator() *validator.Validate {
	configValidatorOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterStructValidation(func(sl validator.StructLevel) {
			cfg := sl.Current().Interface().(Config)
			if cfg.Features.EnablePublishing && strings.TrimSpace(cfg.Storage.SitesBucket) == "" {
				sl.ReportError(cfg.Storage.SitesBucket, "Storage.SitesBucket", "SitesBucket", "required_for_publishing", "")
			}
		}, Config{})
		configValidator = v
	})
	return configValidator
}

func validate(cfg Config, invalidKeys []string) error {
	fields := append([]string(nil), invalidKeys...)

	err := structValidator().Struct(cfg)
	var verrs validator.ValidationErrors
	switch {
	case err == nil:
	case errors.As(err, &verrs):
		for _, fe := range verrs {
			fields = append(fields, strings.TrimPrefix(fe.Namespace(), "Config."))
		}
	default:
		return err
	}

	if len(fields) > 0 {
		return &ValidationError{fields: fields}
	}
	return nil
}
