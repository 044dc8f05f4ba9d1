package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/docvault/internal/config"
	"github.com/geocoder89/docvault/internal/domain/user"
	"github.com/gin-gonic/gin"
)

type UserLister interface {
	List(ctx context.Context) ([]user.User, error)
}

type UsersHandler struct {
	repo UserLister
	log  *slog.Logger
}

func NewUsersHandler(repo UserLister, log *slog.Logger) *UsersHandler {
	return &UsersHandler{repo: repo, log: log}
}

// ListUsers never exposes password hashes; user.User drops them from JSON.
func (h *UsersHandler) ListUsers(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	users, err := h.repo.List(cctx)

	if err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "list users failed", "err", err)
		RespondInternal(ctx, "Could not list users")
		return
	}

	ctx.JSON(http.StatusOK, users)
}
