package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/northstar-backend/internal/platform/apierr"
)

type APIError struct {
	Message string            `json:"message"`
	Code    string            `json:"code,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

const internalMessage = "internal server error"

// RespondError writes the error envelope. Server errors never echo err.
func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	if status >= http.StatusInternalServerError {
		msg = internalMessage
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondAPIError renders err using the *apierr.Error in its chain, or a 500.
func RespondAPIError(c *gin.Context, err error) {
	ae, ok := apierr.As(err)
	if !ok {
		_ = c.Error(err)
		RespondError(c, http.StatusInternalServerError, "internal_error", err)
		return
	}
	if ae.Status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	status := ae.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}
	env := ErrorEnvelope{Error: APIError{Message: ae.Error(), Code: ae.Code, Fields: ae.Fields}}
	if status >= http.StatusInternalServerError {
		env.Error.Message = internalMessage
	}
	c.AbortWithStatusJSON(status, env)
}

func RespondValidation(c *gin.Context, fields map[string]string) {
	RespondAPIError(c, apierr.Validation(http.StatusBadRequest, fields))
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
