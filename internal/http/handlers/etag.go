package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RespondJSONWithETag writes payload with a content hash ETag and answers 304
// when the client already holds that version.
func RespondJSONWithETag(ctx *gin.Context, status int, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		ctx.JSON(status, payload)
		return
	}

	sum := sha256.Sum256(body)
	etag := `"` + hex.EncodeToString(sum[:16]) + `"`

	ctx.Header("ETag", etag)

	if etagMatches(ctx.GetHeader("If-None-Match"), etag) {
		ctx.Status(http.StatusNotModified)
		return
	}

	ctx.Data(status, "application/json; charset=utf-8", body)
}

func etagMatches(ifNoneMatch, current string) bool {
	ifNoneMatch = strings.TrimSpace(ifNoneMatch)

	if ifNoneMatch == "" {
		return false
	}

	if ifNoneMatch == "*" {
		return true
	}

	for _, candidate := range strings.Split(ifNoneMatch, ",") {
		// weak validators compare equal to strong ones for GET
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == current {
			return true
		}
	}

	return false
}
