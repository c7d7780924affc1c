package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Roles carried in the token's role claim
const (
	RoleOwner = "owner"
	RoleAdmin = "admin"
)

// AuthUser represents an authenticated user from JWT. SalonID is the salon
// the token is scoped to, if any.
type AuthUser struct {
	UserID  uuid.UUID  `json:"user_id"`
	Email   string     `json:"email"`
	Role    string     `json:"role"`
	SalonID *uuid.UUID `json:"salon_id,omitempty"`
}

func (u *AuthUser) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// contextKey is used for storing user in context
type contextKey string

const (
	userContextKey contextKey = "authenticated_user"
)

// JWTConfig holds the configuration for JWT middleware
type JWTConfig struct {
	Secret    string
	Logger    *zap.Logger
	SkipPaths []string // Paths to skip JWT validation
}

// Claims is the token payload issued by the account service
type Claims struct {
	Email   string `json:"email"`
	Role    string `json:"role"`
	SalonID string `json:"salon_id"`
	jwt.RegisteredClaims
}

// JWTMiddleware creates a middleware that validates HS256 bearer tokens
func JWTMiddleware(config JWTConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// Skip JWT validation for certain paths
			path := c.Request().URL.Path
			for _, skipPath := range config.SkipPaths {
				if strings.HasPrefix(path, skipPath) {
					return next(c)
				}
			}

			// Extract token from Authorization header
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				config.Logger.Warn("Missing authorization header",
					zap.String("path", path),
					zap.String("method", c.Request().Method))
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"error": "Authorization header required",
					"code":  "MISSING_AUTH_HEADER",
				})
			}

			// Check Bearer prefix
			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				config.Logger.Warn("Invalid authorization header format",
					zap.String("path", path))
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"error": "Invalid authorization header format. Expected: Bearer <token>",
					"code":  "INVALID_AUTH_FORMAT",
				})
			}

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
				// Verify signing method
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
				}
				return []byte(config.Secret), nil
			}, jwt.WithExpirationRequired())
			if err != nil || !token.Valid {
				config.Logger.Warn("JWT validation failed",
					zap.Error(err),
					zap.String("path", path))
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"error": "Invalid or expired token",
					"code":  "INVALID_TOKEN",
				})
			}

			authUser, err := userFromClaims(claims)
			if err != nil {
				config.Logger.Warn("Invalid JWT claims",
					zap.String("path", path),
					zap.Error(err))
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"error": "Invalid token claims",
					"code":  "INVALID_CLAIMS",
				})
			}

			// Store user in request context
			ctx := context.WithValue(c.Request().Context(), userContextKey, authUser)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Set("user_id", authUser.UserID.String())

			config.Logger.Debug("User authenticated successfully",
				zap.String("user_id", authUser.UserID.String()),
				zap.String("role", authUser.Role),
				zap.String("path", path))

			return next(c)
		}
	}
}

func userFromClaims(claims *Claims) (*AuthUser, error) {
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("subject is not a uuid: %w", err)
	}

	user := &AuthUser{UserID: userID, Email: claims.Email, Role: claims.Role}
	if user.Role == "" {
		user.Role = RoleOwner
	}
	if claims.SalonID != "" {
		salonID, err := uuid.Parse(claims.SalonID)
		if err != nil {
			return nil, fmt.Errorf("salon_id is not a uuid: %w", err)
		}
		user.SalonID = &salonID
	}
	return user, nil
}

// RequireRole rejects authenticated users without the role
func RequireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, err := GetUserFromContext(c)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"error": "Authentication required",
					"code":  "AUTH_REQUIRED",
				})
			}
			if user.Role != role {
				return c.JSON(http.StatusForbidden, echo.Map{
					"error": "Insufficient role",
					"code":  "FORBIDDEN",
				})
			}
			return next(c)
		}
	}
}

// RequireSalonAccess checks the :salonId path parameter against the token's
// salon scope. Admins may access every salon.
func RequireSalonAccess() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, err := GetUserFromContext(c)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"error": "Authentication required",
					"code":  "AUTH_REQUIRED",
				})
			}

			salonID, err := uuid.Parse(c.Param("salonId"))
			if err != nil {
				return c.JSON(http.StatusBadRequest, echo.Map{
					"error": "salonId must be a valid UUID",
					"code":  "INVALID_SALON_ID",
				})
			}

			if !user.IsAdmin() && (user.SalonID == nil || *user.SalonID != salonID) {
				return c.JSON(http.StatusForbidden, echo.Map{
					"error": "Salon not accessible",
					"code":  "FORBIDDEN",
				})
			}

			c.Set("salon_id", salonID)
			return next(c)
		}
	}
}

// GetUserFromContext extracts the authenticated user from the request context
func GetUserFromContext(c echo.Context) (*AuthUser, error) {
	user, ok := c.Request().Context().Value(userContextKey).(*AuthUser)
	if !ok || user == nil {
		return nil, fmt.Errorf("no authenticated user found in context")
	}
	return user, nil
}

// WithUser stores user in ctx the way JWTMiddleware does
func WithUser(ctx context.Context, user *AuthUser) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// GetSalonID returns the salon id validated by RequireSalonAccess
func GetSalonID(c echo.Context) (uuid.UUID, error) {
	salonID, ok := c.Get("salon_id").(uuid.UUID)
	if !ok {
		return uuid.Nil, fmt.Errorf("no salon id in context")
	}
	return salonID, nil
}
