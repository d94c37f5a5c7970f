package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"github.com/chairlinked/api/internal/platform/config"
)

// firebaseTokenClient is the slice of the Admin SDK auth client used here.
type firebaseTokenClient interface {
	VerifyIDToken(ctx context.Context, idToken string) (*firebaseauth.Token, error)
	VerifyIDTokenAndCheckRevoked(ctx context.Context, idToken string) (*firebaseauth.Token, error)
}

// FirebaseVerifier checks creator ID tokens against the project's Firebase
// Auth tenant. FIREBASE_AUTH_EMULATOR_HOST is honoured by the SDK.
type FirebaseVerifier struct {
	client       firebaseTokenClient
	checkRevoked bool
	timeout      time.Duration
}

func NewFirebaseVerifier(ctx context.Context, cfg config.FirebaseConfig) (*FirebaseVerifier, error) {
	projectID := strings.TrimSpace(cfg.ProjectID)
	if projectID == "" {
		return nil, errors.New("auth: firebase project id is required")
	}
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("auth: firebase app for %s: %w", projectID, err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("auth: firebase auth client: %w", err)
	}
	return &FirebaseVerifier{client: client, checkRevoked: cfg.CheckRevoked, timeout: defaultVerifyTimeout}, nil
}

// VerifyIDToken checks signature, expiry and audience, and revocation when
// configured. A revoked session surfaces as an expired token to the caller.
func (v *FirebaseVerifier) VerifyIDToken(ctx context.Context, idToken string) (*firebaseauth.Token, error) {
	if v == nil || v.client == nil {
		return nil, errors.New("auth: firebase verifier not initialised")
	}
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	if !v.checkRevoked {
		return v.client.VerifyIDToken(ctx, idToken)
	}
	token, err := v.client.VerifyIDTokenAndCheckRevoked(ctx, idToken)
	if err != nil && firebaseauth.IsIDTokenRevoked(err) {
		return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
	}
	return token, err
}
