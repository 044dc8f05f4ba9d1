package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/geocoder89/docvault/internal/config"
	"github.com/geocoder89/docvault/internal/domain/document"
	"github.com/gin-gonic/gin"
)

type DocumentStore interface {
	Create(ctx context.Context, req document.CreateDocumentRequest) (document.Document, error)
	List(ctx context.Context) ([]document.Document, error)
	GetByID(ctx context.Context, id int64) (document.Document, error)
	UpdateStatus(ctx context.Context, id int64, status string) (document.Document, error)
	Delete(ctx context.Context, id int64) error
}

type DocumentsHandler struct {
	repo DocumentStore
	log  *slog.Logger
}

func NewDocumentsHandler(repo DocumentStore, log *slog.Logger) *DocumentsHandler {
	return &DocumentsHandler{repo: repo, log: log}
}

type DocumentResponse struct {
	Message  string            `json:"message"`
	Document document.Document `json:"document"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func (h *DocumentsHandler) CreateDocument(ctx *gin.Context) {
	var req document.CreateDocumentRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	d, err := h.repo.Create(cctx, req)

	if err != nil {
		if errors.Is(err, document.ErrOwnerNotFound) {
			RespondBadRequest(ctx, "invalid_owner", "userId does not reference an existing user", nil)
			return
		}

		h.log.ErrorContext(ctx.Request.Context(), "create document failed", "err", err)
		RespondInternal(ctx, "Could not create document")
		return
	}

	ctx.JSON(http.StatusCreated, DocumentResponse{
		Message:  "Document created",
		Document: d,
	})
}

func (h *DocumentsHandler) ListDocuments(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	docs, err := h.repo.List(cctx)

	if err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "list documents failed", "err", err)
		RespondInternal(ctx, "Could not list documents")
		return
	}

	ctx.JSON(http.StatusOK, docs)
}

func (h *DocumentsHandler) GetDocumentByID(ctx *gin.Context) {
	id, ok := documentID(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	d, err := h.repo.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, document.ErrNotFound) {
			RespondNotFound(ctx, "Document not found")
			return
		}

		h.log.ErrorContext(ctx.Request.Context(), "get document failed", "err", err, "document_id", id)
		RespondInternal(ctx, "Could not fetch document")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, d)
}

func (h *DocumentsHandler) UpdateDocumentStatus(ctx *gin.Context) {
	id, ok := documentID(ctx)
	if !ok {
		return
	}

	var req document.UpdateStatusRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	d, err := h.repo.UpdateStatus(cctx, id, req.Status)

	if err != nil {
		if errors.Is(err, document.ErrNotFound) {
			RespondNotFound(ctx, "Document not found")
			return
		}

		h.log.ErrorContext(ctx.Request.Context(), "update document failed", "err", err, "document_id", id)
		RespondInternal(ctx, "Could not update document")
		return
	}

	ctx.JSON(http.StatusOK, DocumentResponse{
		Message:  "Document updated",
		Document: d,
	})
}

func (h *DocumentsHandler) DeleteDocument(ctx *gin.Context) {
	id, ok := documentID(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	err := h.repo.Delete(cctx, id)

	if err != nil {
		if errors.Is(err, document.ErrNotFound) {
			RespondNotFound(ctx, "Document not found")
			return
		}

		h.log.ErrorContext(ctx.Request.Context(), "delete document failed", "err", err, "document_id", id)
		RespondInternal(ctx, "Could not delete document")
		return
	}

	ctx.JSON(http.StatusOK, MessageResponse{Message: "Document deleted"})
}

func documentID(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)

	if err != nil || id <= 0 {
		RespondBadRequest(ctx, "invalid_id", "document id must be a positive integer", nil)
		return 0, false
	}

	return id, true
}
