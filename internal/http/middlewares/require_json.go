package middlewares

import (
	"mime"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RequireJSON answers 400 to write requests whose body is not declared as
// JSON, the same as a body missing its required fields. application/json and
// any +json suffix type are accepted.
func RequireJSON() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			if !isJSONMediaType(c.GetHeader("Content-Type")) {
				abortJSON(c, http.StatusBadRequest, "invalid_request", "Content-Type must be application/json")
				return
			}
		}
		c.Next()
	}
}

func isJSONMediaType(contentType string) bool {
	if contentType == "" {
		return false
	}

	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}
