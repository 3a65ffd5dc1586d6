package middleware

import (
	"net/http"
	"strconv"

	"aitool-service/pkg/config"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// RateLimitMiddleware throttles requests per authenticated user. It runs
// after AuthMiddleware so the user ID is available; unauthenticated requests
// fall back to the client IP. The throttle is a short-horizon brake ahead of
// the abuse detector, which works on a longer window and suspends accounts.
func RateLimitMiddleware(cfg config.RateLimitConfig) echo.MiddlewareFunc {
	store := echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(cfg.Requests) / cfg.Window.Seconds()),
		Burst:     cfg.Requests,
		ExpiresIn: cfg.Window,
	})

	return echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			if userID, ok := c.Get("user_id").(uint); ok {
				return strconv.FormatUint(uint64(userID), 10), nil
			}
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusTooManyRequests, echo.Map{
				"error": "too many requests, please slow down",
			})
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return c.JSON(http.StatusTooManyRequests, echo.Map{
				"error": "too many requests, please slow down",
			})
		},
	})
}
