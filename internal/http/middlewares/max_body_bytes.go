package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// MaxBodyBytes refuses declared oversize bodies up front and caps the rest
// while they are read. Zero disables the limit.
func MaxBodyBytes(max int64) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if max <= 0 || ctx.Request.Body == nil {
			ctx.Next()
			return
		}

		if ctx.Request.ContentLength > max {
			abortJSON(ctx, http.StatusRequestEntityTooLarge, "payload_too_large", "Request body is too large")
			return
		}

		ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, max)

		ctx.Next()
	}
}
