package observability

import (
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/chairlinked/api/internal/platform/requestctx"
)

const defaultStringLimit = 256

// contactKeys are PageData fields that identify the business owner's customers
// or the owner personally. They are masked in event logs.
var contactKeys = map[string]struct{}{
	"email":   {},
	"phone":   {},
	"address": {},
}

// sanitizeString drops control characters and truncates to limit runes.
func sanitizeString(value string, limit int) string {
	if limit <= 0 {
		limit = defaultStringLimit
	}
	cleaned := make([]rune, 0, len(value))
	for _, r := range value {
		if unicode.IsControl(r) {
			continue
		}
		cleaned = append(cleaned, r)
		if len(cleaned) == limit {
			break
		}
	}
	return string(cleaned)
}

func SanitizeRoute(route string) string {
	if route == "" {
		return "/"
	}
	return sanitizeString(route, 180)
}

func SanitizeMethod(method string) string {
	return sanitizeString(method, 10)
}

func sanitizeAnnotations(a *requestctx.Annotations) []zap.Field {
	fields := a.Fields()
	for i, f := range fields {
		fields[i] = zap.String(f.Key, sanitizeString(f.String, 64))
	}
	return fields
}

// redactContact masks all but the last two characters of contact values.
func redactContact(key string, value any) any {
	if _, ok := contactKeys[strings.ToLower(key)]; !ok {
		return value
	}
	s, ok := value.(string)
	if !ok {
		return "[redacted]"
	}
	s = strings.TrimSpace(s)
	if len(s) <= 2 {
		return strings.Repeat("*", len(s))
	}
	return strings.Repeat("*", len(s)-2) + s[len(s)-2:]
}
