package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"aitool-service/pkg/config"

	"github.com/labstack/echo/v4"
)

func rateLimitedHandler(t *testing.T, cfg config.RateLimitConfig) (echo.HandlerFunc, *echo.Echo) {
	t.Helper()
	e := echo.New()
	handler := RateLimitMiddleware(cfg)(func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"ok": true})
	})
	return handler, e
}

func rateLimitRequest(e *echo.Echo, handler echo.HandlerFunc, userID uint) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/tools/use", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", userID)
	handler(c)
	return rec
}

func TestRateLimitBlocksAtThreshold(t *testing.T) {
	handler, e := rateLimitedHandler(t, config.RateLimitConfig{Requests: 3, Window: time.Minute})

	for i := 0; i < 3; i++ {
		if rec := rateLimitRequest(e, handler, 1); rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200 under the limit", i+1, rec.Code)
		}
	}

	rec := rateLimitRequest(e, handler, 1)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429 over the limit", rec.Code)
	}
}

func TestRateLimitIsPerUser(t *testing.T) {
	handler, e := rateLimitedHandler(t, config.RateLimitConfig{Requests: 2, Window: time.Minute})

	rateLimitRequest(e, handler, 1)
	rateLimitRequest(e, handler, 1)
	if rec := rateLimitRequest(e, handler, 1); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("user 1: status = %d, want 429 after exhausting the limit", rec.Code)
	}

	if rec := rateLimitRequest(e, handler, 2); rec.Code != http.StatusOK {
		t.Errorf("user 2: status = %d, want 200: another user's volume must not count", rec.Code)
	}
}
