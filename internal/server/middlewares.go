package server

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"

	"github.com/tusharelectronics/storefront/internal/config"
)

const adminContextKey = "admin_username"

// AdminAuth checks HTTP basic credentials against ADMIN_USERNAME and the
// bcrypt hash in ADMIN_PASSWORD_HASH. Without a hash every request is
// refused. The username is put on the request context for the logs.
func (s *Server) AdminAuth() echo.MiddlewareFunc {
	return middleware.BasicAuthWithConfig(middleware.BasicAuthConfig{
		Realm: "admin",
		Validator: func(username, password string, c echo.Context) (bool, error) {
			if len(s.adminPasswordHash) == 0 {
				return false, nil
			}
			if subtle.ConstantTimeCompare([]byte(username), []byte(s.adminUsername)) != 1 {
				return false, nil
			}
			if err := bcrypt.CompareHashAndPassword(s.adminPasswordHash, []byte(password)); err != nil {
				return false, nil
			}

			c.Set(adminContextKey, username)
			ctx := context.WithValue(c.Request().Context(), config.CTX_KEY_ADMIN_USERNAME, username)
			c.SetRequest(c.Request().WithContext(ctx))
			return true, nil
		},
	})
}

// RateLimit throttles public form posts per client IP.
func (s *Server) RateLimit() echo.MiddlewareFunc {
	limit := rate.Limit(s.rateLimit)
	if s.rateLimit <= 0 {
		limit = rate.Inf
	}
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      limit,
			Burst:     max(1, int(s.rateLimit)*2),
			ExpiresIn: 3 * time.Minute,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			return c.JSON(http.StatusTooManyRequests, Res{Error: "RATE_LIMITED", Message: "Too many requests. Please slow down."})
		},
	})
}

// UploadBodyLimit caps admin request bodies at ten full-size images plus
// form fields.
func (s *Server) UploadBodyLimit() echo.MiddlewareFunc {
	kb := (s.maxUploadSize*10)/1024 + 1024
	return middleware.BodyLimit(fmt.Sprintf("%dK", kb))
}
