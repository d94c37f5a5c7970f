package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	firebaseauth "firebase.google.com/go/v4/auth"

	"github.com/chairlinked/api/internal/domain"
	"github.com/chairlinked/api/internal/platform/auth"
	"github.com/chairlinked/api/internal/repositories/memory"
	"github.com/chairlinked/api/internal/services"
)

// uidVerifier treats the bearer token as the uid. Tokens prefixed with
// "admin:" carry the admin role.
type uidVerifier struct{}

func (uidVerifier) VerifyIDToken(_ context.Context, token string) (*firebaseauth.Token, error) {
	uid, admin := strings.CutPrefix(token, "admin:")
	claims := map[string]any{}
	if admin {
		claims["role"] = auth.RoleAdmin
	}
	return &firebaseauth.Token{UID: uid, Claims: claims}, nil
}

func testAuthenticator() *auth.Authenticator {
	return auth.NewAuthenticator(uidVerifier{})
}

func sequence(prefix string) func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func samplePage() domain.PageData {
	return domain.PageData{
		BusinessName: "Fade Lab",
		Industry:     "barber",
		Phone:        "555-0100",
		Hero:         domain.Hero{HeroTitle: "Sharp fades on Main Street"},
		Services:     []domain.ServiceItem{{Name: "Skin fade", Price: "$35"}},
	}
}

type serviceFixture struct {
	demos  services.DemoService
	editor services.EditorService
	now    time.Time
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	f := &serviceFixture{now: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
	clock := func() time.Time { return f.now }

	demos, err := services.NewDemoService(services.DemoServiceDeps{
		Repository:  memory.NewDemoRepository(),
		Clock:       clock,
		IDGenerator: sequence("demo"),
	})
	if err != nil {
		t.Fatalf("NewDemoService: %v", err)
	}
	editorSvc, err := services.NewEditorService(services.EditorServiceDeps{
		Drafts:      memory.NewDraftRepository(clock),
		Demos:       demos,
		Clock:       clock,
		IDGenerator: sequence("session"),
	})
	if err != nil {
		t.Fatalf("NewEditorService: %v", err)
	}
	f.demos = demos
	f.editor = editorSvc
	return f
}

func doRequest(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch v := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(v))
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
}
