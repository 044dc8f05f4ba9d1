package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/docvault/internal/config"
	"github.com/gin-gonic/gin"
)

type Counter interface {
	Count(ctx context.Context) (int, error)
}

// AdminHandler serves the panel admins are redirected to after login.
type AdminHandler struct {
	users     Counter
	documents Counter
	log       *slog.Logger
}

func NewAdminHandler(users, documents Counter, log *slog.Logger) *AdminHandler {
	return &AdminHandler{users: users, documents: documents, log: log}
}

type AdminPanelResponse struct {
	Message   string `json:"message"`
	Users     int    `json:"users"`
	Documents int    `json:"documents"`
}

func (h *AdminHandler) Panel(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	users, err := h.users.Count(cctx)
	if err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "count users failed", "err", err)
		RespondInternal(ctx, "Could not load admin panel")
		return
	}

	docs, err := h.documents.Count(cctx)
	if err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "count documents failed", "err", err)
		RespondInternal(ctx, "Could not load admin panel")
		return
	}

	ctx.JSON(http.StatusOK, AdminPanelResponse{
		Message:   "Admin panel",
		Users:     users,
		Documents: docs,
	})
}
