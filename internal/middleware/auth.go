package middleware

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"marketplace/internal/actor"
	apperrors "marketplace/internal/errors"
	"marketplace/internal/models"
)

const tokenIssuer = "marketplace-api"

// JWTClaims represents the claims in the JWT
type JWTClaims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// UserLookup loads the account behind a token's subject.
type UserLookup interface {
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
}

// GenerateAccessToken signs an access token for user. The role claim is
// informational only; Authenticate reads the stored role on every request.
func GenerateAccessToken(user *models.User, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &JWTClaims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Subject:   fmt.Sprintf("%d", user.ID),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseAccessToken validates tokenString and returns its claims.
func ParseAccessToken(tokenString, secret string) (*JWTClaims, error) {
	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid access token")
	}
	return claims, nil
}

// Authenticate resolves the actor from a Bearer token when one is present.
// Requests without an Authorization header pass through anonymously; a
// malformed or invalid token, or one whose account is gone or deactivated,
// is rejected. Identity and role come from users, not from the claims.
func Authenticate(secret string, users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortWithAppError(c, apperrors.WithMessage(apperrors.ErrInvalidToken, "Invalid authorization header format"))
			return
		}

		claims, err := ParseAccessToken(parts[1], secret)
		if err != nil {
			abortWithAppError(c, apperrors.ErrInvalidToken)
			return
		}

		user, err := users.GetUserByID(c.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, apperrors.ErrUserNotFound) {
				abortWithAppError(c, apperrors.ErrInvalidToken)
				return
			}
			abortWithAppError(c, apperrors.ErrInternalServer)
			return
		}
		if !user.IsActive {
			abortWithAppError(c, apperrors.WithMessage(apperrors.ErrInvalidToken, "Account is disabled"))
			return
		}

		a := &actor.Actor{
			ID:       user.ID,
			Username: user.Username,
			Role:     models.ParseRole(string(user.Role)),
		}
		c.Request = c.Request.WithContext(actor.NewContext(c.Request.Context(), a))
		c.Set("userID", a.ID)
		c.Set("role", a.Role)
		c.Next()
	}
}

// RequireAuth rejects requests that carry no authenticated actor.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := actor.FromContext(c.Request.Context()); !ok {
			abortWithAppError(c, apperrors.ErrUnauthorized)
			return
		}
		c.Next()
	}
}

// RequireRole rejects requests whose actor holds none of roles.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		a, ok := actor.FromContext(c.Request.Context())
		if !ok {
			abortWithAppError(c, apperrors.ErrUnauthorized)
			return
		}
		for _, r := range roles {
			if a.Role == r {
				c.Next()
				return
			}
		}
		abortWithAppError(c, apperrors.ErrForbidden)
	}
}

func abortWithAppError(c *gin.Context, appErr *apperrors.AppError) {
	c.AbortWithStatusJSON(appErr.StatusCode, gin.H{
		"error": gin.H{
			"code":    appErr.Code,
			"message": appErr.Message,
		},
	})
}
