package server

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/arakoo/atm/internal/application/services"
)

// authMiddleware validates the bearer token and exposes the caller's
// identity to downstream handlers via the echo context.
func (s *Server) authMiddleware(authService *services.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims, err := authService.ValidateToken(parts[1])
			if err != nil {
				s.logger.LogSecurityEvent("invalid_token", "", c.RealIP(), map[string]interface{}{
					"path": c.Request().URL.Path,
				})
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}

			c.Set("user", claims.UserID)
			c.Set("user_email", claims.Email)
			c.Set("identifier", claims.Identifier)

			return next(c)
		}
	}
}
