package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/northstar-backend/internal/http/response"
	"github.com/yungbote/northstar-backend/internal/platform/ctxutil"
	"github.com/yungbote/northstar-backend/internal/services"
)

// callerFrom returns the authenticated caller or writes a 401.
func callerFrom(c *gin.Context) (services.Caller, bool) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("missing or invalid token"))
		return services.Caller{}, false
	}
	return services.Caller{UserID: rd.UserID, Email: rd.Email}, true
}
