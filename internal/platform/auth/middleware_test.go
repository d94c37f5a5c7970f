package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/stretchr/testify/require"
)

type stubTokenVerifier struct {
	token    *firebaseauth.Token
	err      error
	received string
}

func (s *stubTokenVerifier) VerifyIDToken(_ context.Context, idToken string) (*firebaseauth.Token, error) {
	s.received = idToken
	if s.err != nil {
		return nil, s.err
	}
	return s.token, nil
}

func bearer(token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/demos", nil)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	return req
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	code, _ := payload["error"].(string)
	return code
}

// capture records the identity a handler saw.
func capture(got **Identity) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got, _ = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestRequireFirebaseAuth_BuildsIdentity(t *testing.T) {
	token := &firebaseauth.Token{
		UID: "uid-123",
		Claims: map[string]any{
			"role":  []any{"owner", "Admin"},
			"email": " ria@fadelab.com ",
			"name":  "Ria",
		},
	}
	token.Firebase.SignInProvider = "google.com"
	verifier := &stubTokenVerifier{token: token}

	var got *Identity
	rec := httptest.NewRecorder()
	NewAuthenticator(verifier).RequireFirebaseAuth()(capture(&got)).ServeHTTP(rec, bearer("Bearer token-abc"))

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "token-abc", verifier.received)
	require.Equal(t, &Identity{UID: "uid-123", Email: "ria@fadelab.com", Name: "Ria", Admin: true, Provider: "google.com"}, got)
}

func TestRequireFirebaseAuth_Rejections(t *testing.T) {
	cases := []struct {
		name     string
		header   string
		verifier *stubTokenVerifier
		code     string
	}{
		{name: "no header", verifier: &stubTokenVerifier{}, code: "unauthenticated"},
		{name: "basic scheme", header: "Basic abc", verifier: &stubTokenVerifier{}, code: "unauthenticated"},
		{name: "blank bearer", header: "Bearer   ", verifier: &stubTokenVerifier{}, code: "unauthenticated"},
		{name: "expired", header: "Bearer t", verifier: &stubTokenVerifier{err: ErrTokenExpired}, code: "token_expired"},
		{name: "revoked", header: "Bearer t", verifier: &stubTokenVerifier{err: errors.Join(ErrTokenExpired, errors.New("revoked"))}, code: "token_expired"},
		{name: "bad signature", header: "Bearer t", verifier: &stubTokenVerifier{err: errors.New("signature mismatch")}, code: "invalid_token"},
		{name: "blank uid", header: "Bearer t", verifier: &stubTokenVerifier{token: &firebaseauth.Token{UID: "  "}}, code: "invalid_token"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := NewAuthenticator(tc.verifier).RequireFirebaseAuth()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
				t.Fatal("handler should not be called")
			}))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, bearer(tc.header))

			require.Equal(t, http.StatusUnauthorized, rec.Code)
			require.Equal(t, tc.code, errorCode(t, rec))
		})
	}
}

func TestOptionalFirebaseAuth(t *testing.T) {
	verifier := &stubTokenVerifier{token: &firebaseauth.Token{UID: "uid-9"}}
	handler := NewAuthenticator(verifier).OptionalFirebaseAuth()

	var got *Identity
	rec := httptest.NewRecorder()
	handler(capture(&got)).ServeHTTP(rec, bearer(""))
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Nil(t, got)

	handler(capture(&got)).ServeHTTP(httptest.NewRecorder(), bearer("Bearer good"))
	require.NotNil(t, got)
	require.Equal(t, "uid-9", got.UID)
	require.False(t, got.Admin)

	verifier.err = ErrTokenInvalid
	rec = httptest.NewRecorder()
	handler(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("a bad token must not fall back to anonymous")
	})).ServeHTTP(rec, bearer("Bearer stale"))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRoleClaimShapes(t *testing.T) {
	cases := []struct {
		claim any
		admin bool
	}{
		{claim: "admin", admin: true},
		{claim: " ADMIN ", admin: true},
		{claim: []string{"owner", "admin"}, admin: true},
		{claim: []any{"owner", 7}, admin: false},
		{claim: map[string]any{"admin": true}, admin: true},
		{claim: map[string]any{"admin": false, "owner": true}, admin: false},
		{claim: nil, admin: false},
	}
	for _, tc := range cases {
		require.Equal(t, tc.admin, claimGrants(tc.claim, RoleAdmin), "%#v", tc.claim)
	}

	verifier := &stubTokenVerifier{token: &firebaseauth.Token{
		UID:    "uid-1",
		Claims: map[string]any{"chairlinked_roles": map[string]any{"admin": true}, "role": "owner"},
	}}
	var got *Identity
	NewAuthenticator(verifier, WithRoleClaim("chairlinked_roles")).RequireFirebaseAuth()(capture(&got)).ServeHTTP(httptest.NewRecorder(), bearer("Bearer t"))
	require.True(t, got.Admin)
}

func TestIdentityContext(t *testing.T) {
	require.Empty(t, UID(context.Background()))
	_, ok := IdentityFromContext(WithIdentity(context.Background(), nil))
	require.False(t, ok)

	ctx := WithIdentity(context.Background(), &Identity{UID: "uid-4"})
	require.Equal(t, "uid-4", UID(ctx))
}
