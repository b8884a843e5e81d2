package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/thuee/info-system-backend/internal/domain/people"
	"github.com/thuee/info-system-backend/internal/http/response"
	"github.com/thuee/info-system-backend/internal/platform/logger"
	"github.com/thuee/info-system-backend/internal/services"
)

const (
	headerAccessToken = "x-access-token"
	headerAccessID    = "x-access-id"
)

type AuthMiddleware struct {
	log    *logger.Logger
	auth   services.AuthService
	access services.AccessService
}

func NewAuthMiddleware(log *logger.Logger, auth services.AuthService, access services.AccessService) *AuthMiddleware {
	return &AuthMiddleware{
		log:    log.With("middleware", "AuthMiddleware"),
		auth:   auth,
		access: access,
	}
}

// RequireAuth resolves the caller identity from the access token.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			response.AbortText(c, http.StatusUnauthorized, response.TextTokenRequired)
			return
		}
		ctx, err := am.auth.SetContextFromToken(c.Request.Context(), tokenString)
		if err != nil {
			am.log.Debug("Token rejected", "path", c.Request.URL.Path, "error", err)
			response.AbortText(c, http.StatusUnauthorized, response.TextTokenExpired)
			return
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireCapabilities admits self access through x-access-id, or reviewers
// and teachers holding every capability in caps.
func (am *AuthMiddleware) RequireCapabilities(caps ...people.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, err := am.access.Authorize(c.Request.Context(), c.GetHeader(headerAccessID), caps...)
		if err != nil {
			status, text := accessFailure(err)
			if status >= http.StatusInternalServerError {
				am.log.Error("Capability lookup failed", "error", err)
			}
			response.AbortText(c, status, text)
			return
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// ReadWrite requires read for safe methods and write otherwise.
func (am *AuthMiddleware) ReadWrite() gin.HandlerFunc {
	read := am.RequireCapabilities(people.CapRead)
	write := am.RequireCapabilities(people.CapWrite)
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			read(c)
		default:
			write(c)
		}
	}
}

func accessFailure(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrTokenRequired):
		return http.StatusUnauthorized, response.TextTokenRequired
	case errors.Is(err, services.ErrAccessIDMismatch):
		return http.StatusUnauthorized, response.TextAccessIDMismatch
	case errors.Is(err, services.ErrUnknownIdentity):
		return http.StatusUnauthorized, response.TextUnknownIdentity
	case errors.Is(err, services.ErrInsufficientPermissions):
		return http.StatusUnauthorized, response.TextInsufficient
	default:
		return http.StatusInternalServerError, response.TextInternal
	}
}

func extractToken(c *gin.Context) string {
	if t := strings.TrimSpace(c.GetHeader(headerAccessToken)); t != "" {
		return t
	}
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
