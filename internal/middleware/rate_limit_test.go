package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func TestRateLimiter_AllowWithinBurst(t *testing.T) {
	rl := NewRateLimiterWithConfig(60, 5)
	defer rl.Stop()

	userID := uuid.New()
	for i := 0; i < 5; i++ {
		if !rl.Allow(userID) {
			t.Fatalf("request %d within burst should be allowed", i+1)
		}
	}
}

func TestRateLimiter_BlocksAfterBurst(t *testing.T) {
	rl := NewRateLimiterWithConfig(1, 2)
	defer rl.Stop()

	userID := uuid.New()
	rl.Allow(userID)
	rl.Allow(userID)

	if rl.Allow(userID) {
		t.Error("request beyond burst should be rejected")
	}
}

func TestRateLimiter_UsersAreIndependent(t *testing.T) {
	rl := NewRateLimiterWithConfig(1, 1)
	defer rl.Stop()

	first := uuid.New()
	second := uuid.New()

	if !rl.Allow(first) {
		t.Fatal("first user's first request should be allowed")
	}
	if rl.Allow(first) {
		t.Error("first user should be exhausted")
	}
	if !rl.Allow(second) {
		t.Error("second user must not be affected by first user's limit")
	}
}

func TestRateLimiter_GetState(t *testing.T) {
	rl := NewRateLimiterWithConfig(60, 10)
	defer rl.Stop()

	userID := uuid.New()

	remaining, _ := rl.GetState(userID)
	if remaining != 10 {
		t.Errorf("expected full burst for unseen user, got %d", remaining)
	}

	rl.Allow(userID)
	remaining, _ = rl.GetState(userID)
	if remaining >= 10 {
		t.Errorf("expected remaining to drop after a request, got %d", remaining)
	}
}

func rateLimitedRequest(t *testing.T, rl *RateLimiter, userID uuid.UUID) (*httptest.ResponseRecorder, error) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if userID != uuid.Nil {
		ctx := context.WithValue(req.Context(), UserIDKey, userID)
		req = req.WithContext(ctx)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := RateLimitMiddleware(rl)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	return rec, handler(c)
}

func TestRateLimitMiddleware_SetsHeaders(t *testing.T) {
	rl := NewRateLimiterWithConfig(60, 10)
	defer rl.Stop()

	rec, err := rateLimitedRequest(t, rl, uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("X-RateLimit-Limit") == "" {
		t.Error("expected X-RateLimit-Limit header")
	}
	if rec.Header().Get("X-RateLimit-Remaining") == "" {
		t.Error("expected X-RateLimit-Remaining header")
	}
}

func TestRateLimitMiddleware_Returns429WhenExhausted(t *testing.T) {
	rl := NewRateLimiterWithConfig(1, 1)
	defer rl.Stop()

	userID := uuid.New()

	rec, err := rateLimitedRequest(t, rl, userID)
	if err != nil || rec.Code != http.StatusOK {
		t.Fatalf("first request should pass: code=%d err=%v", rec.Code, err)
	}

	rec, err = rateLimitedRequest(t, rl, userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}
}

func TestRateLimitMiddleware_SkipsUnauthenticated(t *testing.T) {
	rl := NewRateLimiterWithConfig(1, 1)
	defer rl.Stop()

	// Repeated anonymous requests are never rate limited
	for i := 0; i < 3; i++ {
		rec, err := rateLimitedRequest(t, rl, uuid.Nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Errorf("anonymous request %d should pass, got %d", i+1, rec.Code)
		}
	}
}
