package middleware

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"time"

	jwtmiddleware "github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	adapter "github.com/gwatts/gin-adapter"
)

const (
	// RolesClaim is the namespaced custom claim the identity provider puts
	// the user's roles under.
	RolesClaim = "https://hireengine.civitech/roles"

	RoleOperator = "operator"
	RoleManager  = "manager"
)

// CustomClaims carries the roles claim through JWT validation.
type CustomClaims struct {
	Roles []string `json:"https://hireengine.civitech/roles"`
}

func (c *CustomClaims) Validate(ctx context.Context) error {
	return nil
}

// EnsureValidToken validates the bearer token against the tenant's JWKS.
func EnsureValidToken(domain, audience string) gin.HandlerFunc {
	issuerURL, err := url.Parse("https://" + domain + "/")
	if err != nil {
		log.Fatalf("failed to parse issuer url: %v", err)
	}

	provider := jwks.NewCachingProvider(issuerURL, 5*time.Minute)

	jwtValidator, err := validator.New(
		provider.KeyFunc,
		validator.RS256,
		issuerURL.String(),
		[]string{audience},
		validator.WithCustomClaims(func() validator.CustomClaims {
			return &CustomClaims{}
		}),
	)
	if err != nil {
		log.Fatalf("failed to set up jwt validator: %v", err)
	}

	mw := jwtmiddleware.New(jwtValidator.ValidateToken)
	return adapter.Wrap(mw.CheckJWT)
}

// GetAuth0ID extracts the user ID (sub claim) from the validated token.
func GetAuth0ID(c *gin.Context) (string, bool) {
	claims, exists := c.Request.Context().Value(jwtmiddleware.ContextKey{}).(*validator.ValidatedClaims)
	if !exists {
		return "", false
	}
	return claims.RegisteredClaims.Subject, true
}

func roles(c *gin.Context) []string {
	claims, exists := c.Request.Context().Value(jwtmiddleware.ContextKey{}).(*validator.ValidatedClaims)
	if !exists {
		return nil
	}
	custom, ok := claims.CustomClaims.(*CustomClaims)
	if !ok {
		return nil
	}
	return custom.Roles
}

// IsOperator reports whether the caller can move and repair bikes.
// Managers can do anything an operator can.
func IsOperator(c *gin.Context) bool {
	for _, r := range roles(c) {
		if r == RoleOperator || r == RoleManager {
			return true
		}
	}
	return false
}

// IsManager reports whether the caller can run financial and usage reports.
func IsManager(c *gin.Context) bool {
	for _, r := range roles(c) {
		if r == RoleManager {
			return true
		}
	}
	return false
}

// RequireOperator rejects requests from callers without the operator role.
func RequireOperator() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsOperator(c) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"code": "FORBIDDEN", "message": "Operator role required"})
			return
		}
		c.Next()
	}
}

// RequireManager rejects requests from callers without the manager role.
func RequireManager() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsManager(c) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"code": "FORBIDDEN", "message": "Manager role required"})
			return
		}
		c.Next()
	}
}
