package auth

import (
	"context"

	"github.com/chairlinked/api/internal/platform/requestctx"
)

// RoleAdmin in the role claim lets support staff manage any creator's demos.
const RoleAdmin = "admin"

// Identity is the signed-in creator behind a request.
type Identity struct {
	UID   string
	Email string
	Name  string
	Admin bool
	// Provider is the Firebase sign-in method, e.g. "google.com" or "password".
	Provider string
}

type identityKey struct{}

// WithIdentity stores identity and annotates the request log line with its uid.
func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	if identity != nil {
		requestctx.Annotate(ctx, requestctx.KeyUserID, identity.UID)
	}
	return context.WithValue(ctx, identityKey{}, identity)
}

func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(*Identity)
	return identity, ok && identity != nil
}

// UID is empty for anonymous requests.
func UID(ctx context.Context) string {
	if identity, ok := IdentityFromContext(ctx); ok {
		return identity.UID
	}
	return ""
}
