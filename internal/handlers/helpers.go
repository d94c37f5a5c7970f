package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/chairlinked/api/internal/domain"
	"github.com/chairlinked/api/internal/platform/auth"
	"github.com/chairlinked/api/internal/platform/requestctx"
	"github.com/chairlinked/api/internal/services"
)

const maxJSONRequestBody = 512 * 1024

var errExtraneousBody = errors.New("extraneous data")

func writeJSONResponse(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeHTMLResponse(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeCSSResponse(w http.ResponseWriter, css string) {
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(css))
}

// decodeJSONBody reads a single JSON document with unknown fields rejected.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, limit int64, dst any) error {
	if limit <= 0 {
		limit = maxJSONRequestBody
	}
	reader := http.MaxBytesReader(w, r.Body, limit)
	defer reader.Close()

	decoder := json.NewDecoder(reader)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return err
	}
	if decoder.More() {
		return errExtraneousBody
	}
	return nil
}

func invalidBodyMessage(err error) string {
	return fmt.Sprintf("invalid request body: %v", err)
}

// actorFromRequest returns the caller, or an anonymous actor when the request
// carries no identity.
func actorFromRequest(r *http.Request) services.Actor {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok || identity == nil {
		return services.Actor{}
	}
	return services.Actor{
		UID:   strings.TrimSpace(identity.UID),
		Admin: identity.Admin,
	}
}

func validationDetails(err error) map[string]any {
	var verr *domain.ValidationError
	if !errors.As(err, &verr) || len(verr.Fields) == 0 {
		return nil
	}
	return map[string]any{"fields": verr.Fields}
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func formatTimePointer(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}

func useAll(r chi.Router, mws []func(http.Handler) http.Handler) {
	for _, mw := range mws {
		if mw != nil {
			r.Use(mw)
		}
	}
}

var pathAnnotations = map[string]string{
	"demoID":    requestctx.KeyDemoID,
	"sessionID": requestctx.KeySessionID,
}

// pathID reads a route id and records it on the request log line.
func pathID(r *http.Request, name string) string {
	id := strings.TrimSpace(chi.URLParam(r, name))
	if key, ok := pathAnnotations[name]; ok {
		requestctx.Annotate(r.Context(), key, id)
	}
	return id
}
