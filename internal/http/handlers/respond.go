package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIError is the body of every failed request.
type APIError struct {
	Error     string      `json:"error"`
	Code      string      `json:"code"`
	RequestID string      `json:"requestId,omitempty"`
	Details   interface{} `json:"details,omitempty"`
}

func requestIDFrom(ctx *gin.Context) string {
	v, ok := ctx.Get("request_id")

	if ok {
		s, ok := v.(string)
		if ok && s != "" {
			return s
		}
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

func RespondError(ctx *gin.Context, status int, code, message string, details interface{}) {
	ctx.JSON(status, APIError{
		Error:     message,
		Code:      code,
		RequestID: requestIDFrom(ctx),
		Details:   details,
	})
}

func RespondBadRequest(ctx *gin.Context, code, message string, details interface{}) {
	RespondError(ctx, http.StatusBadRequest, code, message, details)
}

func RespondUnauthorized(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusUnauthorized, code, message, nil)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, "not_found", message, nil)
}

func RespondInternal(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusInternalServerError, "internal_error", message, nil)
}
