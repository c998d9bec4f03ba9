package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/avaldez/poketeams/internal/auth"
	"github.com/avaldez/poketeams/pkg/logger"
)

const userIDContextKey = "user_id"

func ZapLoggerMiddleware(l *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			req := c.Request()
			res := c.Response()

			requestID := c.Response().Header().Get(echo.HeaderXRequestID)

			reqLogger := l.With(
				zap.String("request_id", requestID),
			)

			ctx := logger.WithLogger(req.Context(), reqLogger)
			c.SetRequest(req.WithContext(ctx))

			err := next(c)

			latency := time.Since(start)

			fields := []zap.Field{
				zap.String("method", req.Method),
				zap.String("uri", req.RequestURI),
				zap.String("remote_ip", c.RealIP()),
				zap.Int("status", res.Status),
				zap.Duration("latency", latency),
				zap.Int64("bytes_in", req.ContentLength),
				zap.Int64("bytes_out", res.Size),
			}

			if err != nil {
				fields = append(fields, zap.Error(err))
				reqLogger.Error("request failed", fields...)
			} else {
				reqLogger.Info("request completed", fields...)
			}

			return err
		}
	}
}

// AuthMiddleware verifies the bearer token and stores the authenticated
// user id on the echo context.
func AuthMiddleware(tokens *auth.TokenManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)

			tokenString, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || tokenString == "" {
				return c.JSON(http.StatusUnauthorized, response{
					Success: false,
					Message: "missing or malformed token",
				})
			}

			claims, err := tokens.Verify(tokenString)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, response{
					Success: false,
					Message: "invalid or expired token",
				})
			}

			c.Set(userIDContextKey, claims.UserID)

			return next(c)
		}
	}
}

func currentUserID(c echo.Context) int64 {
	if id, ok := c.Get(userIDContextKey).(int64); ok {
		return id
	}
	return 0
}
