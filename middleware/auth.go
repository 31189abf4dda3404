package middleware

import (
	"errors"
	"net/http"
	"strings"

	"bidding-service/auth"
	"bidding-service/models"

	"github.com/gin-gonic/gin"
)

const (
	PrincipalContextKey = "principal"
	PhoneContextKey     = "phone"
	OwnerIDContextKey   = "ownerID"
)

// StaffAuth reads identity headers injected by the API gateway.
func StaffAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := models.Principal{
			UserID:     c.GetHeader("X-User-ID"),
			Role:       c.GetHeader("X-User-Role"),
			Department: c.GetHeader("X-User-Department"),
			Office:     c.GetHeader("X-User-Office"),
		}

		// Fallback to cookies (set by API gateway) if headers missing
		if principal.UserID == "" {
			if v, err := c.Cookie("user_id"); err == nil && v != "" {
				principal.UserID = v
			}
		}
		if principal.Role == "" {
			if v, err := c.Cookie("user_role"); err == nil && v != "" {
				principal.Role = v
			}
		}

		if principal.UserID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		principal.Role = strings.ToUpper(strings.TrimSpace(principal.Role))
		c.Set(PrincipalContextKey, principal)
		c.Next()
	}
}

// RequireRoles restricts a route group to the given staff roles.
func RequireRoles(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		principal, err := GetPrincipal(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		if _, ok := allowed[principal.Role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient role"})
			return
		}
		c.Next()
	}
}

// GetPrincipal extracts the staff principal from the Gin context.
func GetPrincipal(c *gin.Context) (models.Principal, error) {
	if val, ok := c.Get(PrincipalContextKey); ok {
		if p, ok := val.(models.Principal); ok && p.UserID != "" {
			return p, nil
		}
	}
	return models.Principal{}, errors.New("principal not found in context")
}

// MobileAuth validates the bearer token issued by the OTP login.
func MobileAuth(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token is required"})
			return
		}
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token format"})
			return
		}

		claims, err := tokens.Parse(strings.TrimPrefix(header, "Bearer "), auth.TokenTypeMobile)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(PhoneContextKey, claims.Phone)
		c.Set(OwnerIDContextKey, claims.OwnerID)
		c.Next()
	}
}

// GetPhone returns the phone number of the authenticated truck owner.
func GetPhone(c *gin.Context) (string, error) {
	if phone := c.GetString(PhoneContextKey); phone != "" {
		return phone, nil
	}
	return "", errors.New("phone not found in context")
}
