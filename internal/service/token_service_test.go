package service

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestTokenService_IssueAndVerify(t *testing.T) {
	tokenService := NewTokenService("test-secret", time.Hour)

	userID := uuid.New()
	token, err := tokenService.Issue(userID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	got, err := tokenService.Verify(token)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got != userID {
		t.Errorf("Expected user id %s, got %s", userID, got)
	}
}

func TestTokenService_RejectsExpired(t *testing.T) {
	tokenService := NewTokenService("test-secret", -time.Minute)

	token, err := tokenService.Issue(uuid.New())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if _, err := tokenService.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenService_RejectsWrongSecret(t *testing.T) {
	issuer := NewTokenService("secret-a", time.Hour)
	verifier := NewTokenService("secret-b", time.Hour)

	token, err := issuer.Issue(uuid.New())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if _, err := verifier.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenService_RejectsGarbage(t *testing.T) {
	tokenService := NewTokenService("test-secret", time.Hour)

	for _, token := range []string{"", "not-a-token", "aaa.bbb.ccc"} {
		if _, err := tokenService.Verify(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Expected ErrInvalidToken for %q, got %v", token, err)
		}
	}
}
