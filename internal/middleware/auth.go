package middleware

import (
	"net/http"

	"foodbridge/internal/models"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

// Claims is the payload the identity provider signs into bearer tokens.
type Claims struct {
	UserID string      `json:"id"`
	Email  string      `json:"email"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

// Authenticate validates the Authorization bearer token and copies the
// caller's identity into the echo context under "userID" and "userRole",
// which is what every handler reads.
func Authenticate(secret string) echo.MiddlewareFunc {
	jwtMiddleware := echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(secret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(Claims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "Invalid or expired token"})
		},
	})

	extract := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "Authorization token required"})
			}
			claims, ok := token.Claims.(*Claims)
			if !ok || claims.UserID == "" {
				return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "Invalid or expired token"})
			}
			c.Set("userID", claims.UserID)
			c.Set("userRole", string(claims.Role))
			return next(c)
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return jwtMiddleware(extract(next))
	}
}

// RequireRoles rejects authenticated callers whose role is not in the
// allowed set. Must run after Authenticate.
func RequireRoles(roles ...models.Role) echo.MiddlewareFunc {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get("userRole").(string)
			if _, ok := allowed[models.Role(role)]; !ok {
				return c.JSON(http.StatusForbidden, models.ErrorResponse{Message: "Access denied for this role"})
			}
			return next(c)
		}
	}
}
