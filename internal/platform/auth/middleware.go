package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	firebaseauth "firebase.google.com/go/v4/auth"

	"github.com/chairlinked/api/internal/platform/httpx"
)

const (
	defaultRoleClaim     = "role"
	defaultVerifyTimeout = 5 * time.Second
)

var (
	ErrTokenExpired = errors.New("auth: firebase id token expired")
	ErrTokenInvalid = errors.New("auth: firebase id token invalid")
)

// TokenVerifier is satisfied by FirebaseVerifier and by test stubs.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*firebaseauth.Token, error)
}

// Authenticator turns bearer ID tokens into creator identities.
type Authenticator struct {
	verifier  TokenVerifier
	roleClaim string
	timeout   time.Duration
}

type Option func(*Authenticator)

// WithRoleClaim names the custom claim checked for RoleAdmin.
func WithRoleClaim(claim string) Option {
	return func(a *Authenticator) {
		if claim = strings.TrimSpace(claim); claim != "" {
			a.roleClaim = claim
		}
	}
}

func NewAuthenticator(verifier TokenVerifier, opts ...Option) *Authenticator {
	a := &Authenticator{verifier: verifier, roleClaim: defaultRoleClaim, timeout: defaultVerifyTimeout}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// RequireFirebaseAuth answers 401 unless the request carries a valid token.
func (a *Authenticator) RequireFirebaseAuth() func(http.Handler) http.Handler {
	return a.middleware(true)
}

// OptionalFirebaseAuth lets anonymous requests through. A token that is
// present but fails verification is still a 401, so the editor learns its
// session expired instead of silently saving anonymously.
func (a *Authenticator) OptionalFirebaseAuth() func(http.Handler) http.Handler {
	return a.middleware(false)
}

func (a *Authenticator) middleware(required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			raw, ok := bearerToken(r.Header.Get("Authorization"))
			switch {
			case !ok && required:
				httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "authorization header missing or invalid", http.StatusUnauthorized))
				return
			case !ok:
				next.ServeHTTP(w, r)
				return
			}
			identity, err := a.authenticate(ctx, raw)
			if err != nil {
				if errors.Is(err, ErrTokenExpired) || firebaseauth.IsIDTokenExpired(err) {
					httpx.WriteError(ctx, w, httpx.NewError("token_expired", "firebase id token expired", http.StatusUnauthorized))
				} else {
					httpx.WriteError(ctx, w, httpx.NewError("invalid_token", "firebase id token invalid", http.StatusUnauthorized))
				}
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, identity)))
		})
	}
}

func (a *Authenticator) authenticate(ctx context.Context, raw string) (*Identity, error) {
	if a == nil || a.verifier == nil {
		return nil, errors.New("auth: verifier not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	token, err := a.verifier.VerifyIDToken(ctx, raw)
	if err != nil {
		return nil, err
	}
	if token == nil || strings.TrimSpace(token.UID) == "" {
		return nil, ErrTokenInvalid
	}
	return &Identity{
		UID:      token.UID,
		Email:    stringClaim(token.Claims, "email"),
		Name:     stringClaim(token.Claims, "name"),
		Admin:    claimGrants(token.Claims[a.roleClaim], RoleAdmin),
		Provider: token.Firebase.SignInProvider,
	}, nil
}

// claimGrants accepts a role claim written as a string, a list of strings or
// a map of role flags.
func claimGrants(claim any, role string) bool {
	matches := func(s string) bool { return strings.EqualFold(strings.TrimSpace(s), role) }
	switch v := claim.(type) {
	case string:
		return matches(v)
	case []string:
		for _, s := range v {
			if matches(s) {
				return true
			}
		}
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && matches(s) {
				return true
			}
		}
	case map[string]any:
		for name, flag := range v {
			if on, ok := flag.(bool); ok && on && matches(name) {
				return true
			}
		}
	}
	return false
}

func stringClaim(claims map[string]any, key string) string {
	v, _ := claims[key].(string)
	return strings.TrimSpace(v)
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
