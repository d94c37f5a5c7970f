package idempotency

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/chairlinked/api/internal/platform/auth"
)

var t0 = time.Date(2025, time.March, 3, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return t0 }

func saveDemo(key, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/demos/save", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	return req
}

func as(req *http.Request, uid string) *http.Request {
	return req.WithContext(auth.WithIdentity(req.Context(), &auth.Identity{UID: uid}))
}

// countingHandler answers 201 with a JSON body and counts calls.
func countingHandler(calls *int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"demo_id":"01HX","version":` + string(rune('0'+*calls)) + `}`))
	})
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body %q: %v", rr.Body.String(), err)
	}
	return body.Error
}

func TestMiddleware_WithoutKey(t *testing.T) {
	calls := 0
	optional := Middleware(NewMemoryStore(), WithClock(fixedClock))(countingHandler(&calls))
	for i := 0; i < 2; i++ {
		rr := httptest.NewRecorder()
		optional.ServeHTTP(rr, saveDemo("", `{"business_name":"Glow"}`))
		if rr.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", rr.Code)
		}
	}
	if calls != 2 {
		t.Fatalf("requests without a key must not be deduplicated, calls=%d", calls)
	}

	required := Middleware(NewMemoryStore(), WithRequiredKey())(countingHandler(&calls))
	rr := httptest.NewRecorder()
	required.ServeHTTP(rr, saveDemo("", `{}`))
	if rr.Code != http.StatusBadRequest || errorCode(t, rr) != "idempotency_key_required" {
		t.Fatalf("expected idempotency_key_required, got %d %s", rr.Code, rr.Body.String())
	}
}

func TestMiddleware_RejectsOversizedKey(t *testing.T) {
	calls := 0
	h := Middleware(NewMemoryStore())(countingHandler(&calls))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, saveDemo(strings.Repeat("k", maxKeyLength+1), `{}`))
	if rr.Code != http.StatusBadRequest || errorCode(t, rr) != "invalid_idempotency_key" || calls != 0 {
		t.Fatalf("unexpected response %d %s (calls=%d)", rr.Code, rr.Body.String(), calls)
	}
}

func TestMiddleware_OnlyGuardsConfiguredMethods(t *testing.T) {
	calls := 0
	h := Middleware(NewMemoryStore(), WithRequiredKey(), WithMethods("post"))(countingHandler(&calls))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/demos", nil))
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/api/v1/demos/01HX", nil))
	if calls != 2 {
		t.Fatalf("GET and DELETE should pass through, calls=%d", calls)
	}
}

func TestMiddleware_ReplaysFirstResponse(t *testing.T) {
	calls := 0
	h := Middleware(NewMemoryStore(), WithClock(fixedClock))(countingHandler(&calls))

	first := httptest.NewRecorder()
	h.ServeHTTP(first, as(saveDemo("save-1", `{"business_name":"Glow"}`), "uid-1"))
	again := httptest.NewRecorder()
	h.ServeHTTP(again, as(saveDemo("save-1", `{"business_name":"Glow"}`), "uid-1"))

	if calls != 1 {
		t.Fatalf("expected one handler call, got %d", calls)
	}
	if first.Header().Get(replayHeaderName) != "" {
		t.Fatalf("first response must not be marked as a replay")
	}
	if again.Header().Get(replayHeaderName) != "true" {
		t.Fatalf("expected replay header on the repeat")
	}
	if again.Code != http.StatusCreated || again.Body.String() != first.Body.String() {
		t.Fatalf("replay differs: %d %s vs %d %s", again.Code, again.Body.String(), first.Code, first.Body.String())
	}
	if again.Header().Get("Content-Type") != "application/json" {
		t.Fatalf("expected stored content type, got %q", again.Header().Get("Content-Type"))
	}
}

func TestMiddleware_KeysAreScopedPerCreator(t *testing.T) {
	calls := 0
	h := Middleware(NewMemoryStore(), WithClock(fixedClock))(countingHandler(&calls))
	for _, uid := range []string{"owner-a", "owner-b"} {
		h.ServeHTTP(httptest.NewRecorder(), as(saveDemo("shared", `{}`), uid))
	}
	if calls != 2 {
		t.Fatalf("each creator should get their own claim, calls=%d", calls)
	}
}

func TestMiddleware_Conflicts(t *testing.T) {
	store := NewMemoryStore()
	calls := 0
	h := Middleware(store, WithClock(fixedClock))(countingHandler(&calls))

	h.ServeHTTP(httptest.NewRecorder(), saveDemo("same-key", `{"business_name":"Glow"}`))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, saveDemo("same-key", `{"business_name":"Shine"}`))
	if rr.Code != http.StatusConflict || errorCode(t, rr) != "idempotency_key_conflict" {
		t.Fatalf("expected key conflict, got %d %s", rr.Code, rr.Body.String())
	}

	req := saveDemo("in-flight", `{"business_name":"Glow"}`)
	fp := fingerprintOf(req, []byte(`{"business_name":"Glow"}`), "anonymous")
	if prior, err := store.Claim(context.Background(), scopedKey("anonymous", "in-flight"), Entry{Fingerprint: fp, ClaimedAt: t0, ExpiresAt: t0.Add(time.Hour)}); err != nil || prior != nil {
		t.Fatalf("seed claim: %v %v", prior, err)
	}
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusConflict || errorCode(t, rr) != "idempotency_in_progress" {
		t.Fatalf("expected in-progress conflict, got %d %s", rr.Code, rr.Body.String())
	}
	if calls != 1 {
		t.Fatalf("conflicting requests must not reach the handler, calls=%d", calls)
	}
}

func TestMiddleware_ServerErrorsCanBeRetried(t *testing.T) {
	calls := 0
	h := Middleware(NewMemoryStore(), WithClock(fixedClock))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))

	first, second := httptest.NewRecorder(), httptest.NewRecorder()
	h.ServeHTTP(first, saveDemo("retry", `{}`))
	h.ServeHTTP(second, saveDemo("retry", `{}`))
	if first.Code != http.StatusServiceUnavailable || second.Code != http.StatusCreated || calls != 2 {
		t.Fatalf("unexpected %d then %d with %d calls", first.Code, second.Code, calls)
	}
}

func TestMiddleware_ExpiredClaimIsReplaced(t *testing.T) {
	now := t0
	calls := 0
	h := Middleware(NewMemoryStore(), WithTTL(time.Minute), WithClock(func() time.Time { return now }))(countingHandler(&calls))

	h.ServeHTTP(httptest.NewRecorder(), saveDemo("k", `{}`))
	now = now.Add(2 * time.Minute)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, saveDemo("k", `{}`))
	if calls != 2 || rr.Header().Get(replayHeaderName) != "" {
		t.Fatalf("expected a fresh run after expiry, calls=%d", calls)
	}
}

func TestMiddleware_FinishFailureDropsClaim(t *testing.T) {
	store := &stubStore{failFinish: true}
	var events []string
	log := func(_ context.Context, event string, _ map[string]any) { events = append(events, event) }

	calls := 0
	h := Middleware(store, WithClock(fixedClock), WithLogger(log))(countingHandler(&calls))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, saveDemo("fail-key", `{}`))

	if rr.Code != http.StatusCreated || rr.Body.Len() == 0 {
		t.Fatalf("handler response must still be delivered, got %d", rr.Code)
	}
	if !store.dropped {
		t.Fatalf("expected the claim to be dropped")
	}
	if len(events) != 1 || events[0] != "idempotency.save_failed" {
		t.Fatalf("unexpected events %v", events)
	}
}

func TestMiddleware_StoreUnavailable(t *testing.T) {
	calls := 0
	h := Middleware(&stubStore{failClaim: true})(countingHandler(&calls))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, saveDemo("k", `{}`))
	if rr.Code != http.StatusServiceUnavailable || errorCode(t, rr) != "idempotency_store_error" || calls != 0 {
		t.Fatalf("unexpected %d %s calls=%d", rr.Code, rr.Body.String(), calls)
	}
}

func TestMemoryStore_DropAndSweep(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_, _ = store.Claim(ctx, "old", Entry{Fingerprint: "fp", ClaimedAt: t0, ExpiresAt: t0.Add(time.Minute)})
	_, _ = store.Claim(ctx, "fresh", Entry{Fingerprint: "fp", ClaimedAt: t0, ExpiresAt: t0.Add(2 * time.Hour)})

	_ = store.Drop(ctx, "fresh", "someone-else")
	if store.Len() != 2 {
		t.Fatalf("drop with a foreign fingerprint must keep the entry")
	}

	removed, err := store.Sweep(ctx, t0.Add(time.Hour), 0)
	if err != nil || removed != 1 || store.Len() != 1 {
		t.Fatalf("sweep removed=%d len=%d err=%v", removed, store.Len(), err)
	}
}

func TestMemoryStore_FinishChecksFingerprint(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_, _ = store.Claim(ctx, "k", Entry{Fingerprint: "fp-1", ClaimedAt: t0, ExpiresAt: t0.Add(time.Hour)})

	err := store.Finish(ctx, "k", "fp-2", Response{Status: 200}, t0.Add(time.Hour))
	if !errors.Is(err, ErrFingerprintMismatch) {
		t.Fatalf("expected ErrFingerprintMismatch, got %v", err)
	}
}

func TestSweepEvery_StopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		SweepEvery(ctx, NewMemoryStore(), time.Millisecond, 10, nil)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("SweepEvery did not return after cancel")
	}
}

func TestStorableHeaderDropsHopByHop(t *testing.T) {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	h.Set("Content-Length", "12")
	h.Set("Connection", "close")
	h.Add("Location", "/api/v1/demos/01HX")

	got := storableHeader(h)
	if len(got) != 2 || got.Get("Location") == "" || got.Get("Content-Length") != "" {
		t.Fatalf("unexpected stored header %v", got)
	}
}

type stubStore struct {
	failClaim  bool
	failFinish bool
	dropped    bool
}

func (s *stubStore) Claim(context.Context, string, Entry) (*Entry, error) {
	if s.failClaim {
		return nil, errors.New("redis down")
	}
	return nil, nil
}

func (s *stubStore) Finish(context.Context, string, string, Response, time.Time) error {
	if s.failFinish {
		return errors.New("write failed")
	}
	return nil
}

func (s *stubStore) Drop(context.Context, string, string) error {
	s.dropped = true
	return nil
}
