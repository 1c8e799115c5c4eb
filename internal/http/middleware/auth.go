package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/northstar-backend/internal/http/response"
	"github.com/yungbote/northstar-backend/internal/platform/ctxutil"
	"github.com/yungbote/northstar-backend/internal/platform/logger"
	"github.com/yungbote/northstar-backend/internal/services"
)

var errUnauthorized = errors.New("missing or invalid token")

type AuthMiddleware struct {
	log  *logger.Logger
	auth services.AuthService
}

func NewAuthMiddleware(log *logger.Logger, auth services.AuthService) *AuthMiddleware {
	return &AuthMiddleware{log: log.With("middleware", "AuthMiddleware"), auth: auth}
}

// RequireAuth resolves the bearer token into request data before any handler
// runs. Every failure looks the same to the client.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, err := am.authenticate(c)
		if err != nil {
			am.log.Debug("Request rejected", "reason", err, "path", c.FullPath())
			response.RespondError(c, http.StatusUnauthorized, "unauthorized", errUnauthorized)
			return
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func (am *AuthMiddleware) authenticate(c *gin.Context) (context.Context, error) {
	token, ok := bearerToken(c.GetHeader("Authorization"))
	if !ok {
		return nil, errors.New("no bearer token")
	}
	next, err := am.auth.SetContextFromToken(c.Request.Context(), token)
	if err != nil {
		return nil, err
	}
	if rd := ctxutil.GetRequestData(next); rd == nil || rd.UserID == uuid.Nil {
		return nil, errors.New("token carries no user")
	}
	return next, nil
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
