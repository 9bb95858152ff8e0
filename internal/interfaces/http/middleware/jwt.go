package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/repairshop/erp/internal/infrastructure/auth"
	"github.com/repairshop/erp/internal/infrastructure/logger"
	"github.com/repairshop/erp/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// JWT context keys
const (
	JWTClaimsKey   = "jwt_claims"
	JWTUserIDKey   = "jwt_user_id"
	JWTTenantIDKey = "jwt_tenant_id"
	principalKey   = "principal"
	AuthHeaderKey  = "Authorization"
	BearerPrefix   = "Bearer "
)

// Principal is the authenticated caller of a request
type Principal struct {
	TenantID uuid.UUID
	UserID   uuid.UUID
	Username string
}

// JWTMiddlewareConfig holds configuration for JWT middleware
type JWTMiddlewareConfig struct {
	JWTService *auth.JWTService
	// Revocations is optional. Lookup failures are logged and the request proceeds.
	Revocations auth.RevocationList
	SkipPaths   []string
	Logger      *zap.Logger
}

// DefaultJWTConfig returns the JWT middleware configuration used by the server
func DefaultJWTConfig(jwtService *auth.JWTService) JWTMiddlewareConfig {
	return JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths:  []string{"/health", "/ready", "/api/v1/health"},
		Logger:     zap.NewNop(),
	}
}

// JWTAuthMiddleware authenticates requests with the default configuration
func JWTAuthMiddleware(jwtService *auth.JWTService) gin.HandlerFunc {
	return JWTAuthMiddlewareWithConfig(DefaultJWTConfig(jwtService))
}

// JWTAuthMiddlewareWithConfig validates the bearer token, checks revocation
// and stores the principal in both the gin and the request context.
func JWTAuthMiddlewareWithConfig(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		tokenString, ok := bearerToken(c.GetHeader(AuthHeaderKey))
		if !ok {
			abortUnauthorized(c, cfg.Logger, errMissingBearer, "Missing or malformed authorization header")
			return
		}

		claims, err := cfg.JWTService.ValidateAccessToken(tokenString)
		if err != nil {
			abortUnauthorized(c, cfg.Logger, err, "Token validation failed")
			return
		}

		tenantID, userID, err := claims.Principal()
		if err != nil {
			abortUnauthorized(c, cfg.Logger, err, "Token carries malformed identifiers")
			return
		}

		if cfg.Revocations != nil {
			revoked, err := cfg.Revocations.IsRevoked(c.Request.Context(), claims)
			switch {
			case err != nil:
				cfg.Logger.Error("Failed to check token revocation",
					zap.String("jti", claims.ID),
					zap.String("user_id", claims.UserID),
					zap.Error(err))
			case revoked:
				abortUnauthorized(c, cfg.Logger, auth.ErrTokenRevoked, "Token has been revoked")
				return
			}
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(JWTUserIDKey, claims.UserID)
		c.Set(JWTTenantIDKey, claims.TenantID)
		SetPrincipal(c, Principal{TenantID: tenantID, UserID: userID, Username: claims.Username})

		ctx := logger.WithTenantID(c.Request.Context(), claims.TenantID)
		ctx = logger.WithUserID(ctx, claims.UserID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	token, found := strings.CutPrefix(header, BearerPrefix)
	if !found || strings.TrimSpace(token) == "" {
		return "", false
	}
	return token, true
}

// errMissingBearer maps to ERR_UNAUTHORIZED, not ERR_TOKEN_INVALID
var errMissingBearer = errors.New("missing bearer token")

func abortUnauthorized(c *gin.Context, log *zap.Logger, err error, reason string) {
	log.Warn("JWT authentication failed",
		zap.Error(err),
		zap.String("reason", reason),
		zap.String("path", c.Request.URL.Path),
	)

	code, message := dto.ErrCodeUnauthorized, "Authentication required"
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code, message = dto.ErrCodeTokenExpired, "Token has expired"
	case errors.Is(err, auth.ErrTokenRevoked):
		code, message = dto.ErrCodeTokenRevoked, "Token has been revoked"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrInvalidClaims),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingTenantID),
		errors.Is(err, auth.ErrMissingUserID):
		code, message = dto.ErrCodeTokenInvalid, "Invalid token"
	}

	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(code, message, GetRequestID(c)))
}

// GetJWTClaims returns the validated claims, or nil on unauthenticated routes
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if claims, ok := c.Get(JWTClaimsKey); ok {
		if jwtClaims, ok := claims.(*auth.Claims); ok {
			return jwtClaims
		}
	}
	return nil
}

// SetPrincipal stores the authenticated caller on the gin context
func SetPrincipal(c *gin.Context, p Principal) {
	c.Set(principalKey, p)
}

// GetPrincipal returns the authenticated caller
func GetPrincipal(c *gin.Context) (Principal, bool) {
	if v, ok := c.Get(principalKey); ok {
		p, ok := v.(Principal)
		return p, ok
	}
	return Principal{}, false
}

// GetJWTTenantID returns the tenant ID from the claims, or ""
func GetJWTTenantID(c *gin.Context) string {
	return c.GetString(JWTTenantIDKey)
}

// GetJWTUserID returns the user ID from the claims, or ""
func GetJWTUserID(c *gin.Context) string {
	return c.GetString(JWTUserIDKey)
}
