package middlewares

import "github.com/gin-gonic/gin"

// abortJSON matches the handlers' error body.
func abortJSON(c *gin.Context, status int, code, message string) {
	body := gin.H{
		"error": message,
		"code":  code,
	}

	if id := c.GetString(CtxRequestID); id != "" {
		body["requestId"] = id
	}

	c.AbortWithStatusJSON(status, body)
}
