package auth

import (
	"context"
	"testing"

	firebaseauth "firebase.google.com/go/v4/auth"

	"github.com/chairlinked/api/internal/platform/config"
)

type recordingTokenClient struct {
	plain, revocation int
}

func (c *recordingTokenClient) VerifyIDToken(context.Context, string) (*firebaseauth.Token, error) {
	c.plain++
	return &firebaseauth.Token{UID: "owner-1"}, nil
}

func (c *recordingTokenClient) VerifyIDTokenAndCheckRevoked(context.Context, string) (*firebaseauth.Token, error) {
	c.revocation++
	return &firebaseauth.Token{UID: "owner-1"}, nil
}

func TestFirebaseVerifierRevocationCheckIsOptIn(t *testing.T) {
	client := &recordingTokenClient{}
	v := &FirebaseVerifier{client: client, timeout: defaultVerifyTimeout}
	if _, err := v.VerifyIDToken(context.Background(), "tok"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	v.checkRevoked = true
	token, err := v.VerifyIDToken(context.Background(), "tok")
	if err != nil || token.UID != "owner-1" {
		t.Fatalf("unexpected result %v %v", token, err)
	}
	if client.plain != 1 || client.revocation != 1 {
		t.Fatalf("expected one call each, got plain=%d revocation=%d", client.plain, client.revocation)
	}
}

func TestFirebaseVerifierRequiresProject(t *testing.T) {
	if _, err := NewFirebaseVerifier(context.Background(), config.FirebaseConfig{ProjectID: " "}); err == nil {
		t.Fatal("expected an error without a project id")
	}
	var v *FirebaseVerifier
	if _, err := v.VerifyIDToken(context.Background(), "tok"); err == nil {
		t.Fatal("expected an error from a nil verifier")
	}
}
