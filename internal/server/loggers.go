package server

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// skipper keeps health checks and image traffic out of the access log and traces.
func skipper(c echo.Context) bool {
	p := c.Request().URL.Path
	switch p {
	case "/api/health", "/favicon.ico", "/robots.txt":
		return true
	}
	return strings.HasPrefix(p, "/uploads/")
}

func requestArea(path string) string {
	switch {
	case strings.HasPrefix(path, "/api/v1/admin"):
		return "admin"
	case strings.HasPrefix(path, "/api/"):
		return "storefront"
	}
	return "site"
}

func NewEchoLogger(l *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:        true,
		LogURI:           true,
		LogRoutePath:     true,
		LogError:         true,
		HandleError:      true,
		LogRequestID:     true,
		LogRemoteIP:      true,
		LogMethod:        true,
		LogUserAgent:     true,
		LogLatency:       true,
		LogContentLength: true,
		LogResponseSize:  true,
		Skipper:          skipper,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			level, msg := slog.LevelInfo, "http_request"
			switch {
			case v.Status >= http.StatusInternalServerError || (v.Error != nil && v.Status < http.StatusBadRequest):
				level, msg = slog.LevelError, "http_request_failed"
			case v.Status >= http.StatusBadRequest:
				level, msg = slog.LevelWarn, "http_request_rejected"
			}

			attrs := []slog.Attr{
				slog.String("request_id", v.RequestID),
				slog.String("area", requestArea(v.URI)),
				slog.String("method", v.Method),
				slog.String("route", v.RoutePath),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Int64("latency_ms", v.Latency.Milliseconds()),
				slog.String("remote_ip", v.RemoteIP),
				slog.String("user_agent", v.UserAgent),
				slog.String("bytes_in", v.ContentLength),
				slog.Int64("bytes_out", v.ResponseSize),
			}
			if admin, ok := c.Get(adminContextKey).(string); ok {
				attrs = append(attrs, slog.String("admin", admin))
			}
			if v.Error != nil {
				attrs = append(attrs, slog.String("err", v.Error.Error()))
			}

			l.LogAttrs(c.Request().Context(), level, msg, attrs...)
			return nil
		},
	})
}
