package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hearthside/logbook-backend/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondServiceError translates a service-layer error into an HTTP
// response. Internal details are hidden behind a generic message.
func RespondServiceError(c *gin.Context, err error) {
	ae := apierr.From(err)
	if ae == nil {
		RespondError(c, http.StatusInternalServerError, apierr.CodeInternal, nil)
		return
	}
	switch ae.Code {
	case apierr.CodePersistenceFailed, apierr.CodeInternal:
		RespondError(c, ae.Status, ae.Code, nil)
	default:
		RespondError(c, ae.Status, ae.Code, ae)
	}
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
