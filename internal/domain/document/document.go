package document

import (
	"errors"
	"time"

	"github.com/geocoder89/docvault/internal/domain/user"
)

// DefaultStatus is assigned to documents created without an explicit status.
const DefaultStatus = "pending"

var (
	ErrNotFound      = errors.New("document not found")
	ErrOwnerNotFound = errors.New("document owner does not exist")
)

type Document struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	FilePath    string     `json:"filePath"`
	Status      string     `json:"status"`
	UserID      int64      `json:"userId"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	User        *user.User `json:"user,omitempty"` // owner, populated on reads
}

type CreateDocumentRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description *string `json:"description"`
	FilePath    string  `json:"filePath" binding:"required"`
	UserID      int64   `json:"userId" binding:"required"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}
