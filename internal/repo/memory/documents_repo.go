package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/geocoder89/docvault/internal/domain/document"
	"github.com/geocoder89/docvault/internal/domain/user"
)

type DocumentsRepo struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]document.Document
	users  *UsersRepo
}

// NewDocumentsRepo checks owners against users the way the foreign key does in postgres.
func NewDocumentsRepo(users *UsersRepo) *DocumentsRepo {
	return &DocumentsRepo{
		items: make(map[int64]document.Document),
		users: users,
	}
}

func (r *DocumentsRepo) Create(ctx context.Context, req document.CreateDocumentRequest) (document.Document, error) {
	if _, err := r.users.GetByID(ctx, req.UserID); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return document.Document{}, document.ErrOwnerNotFound
		}
		return document.Document{}, err
	}

	now := time.Now().UTC()

	r.mu.Lock()
	r.nextID++
	d := document.Document{
		ID:          r.nextID,
		Title:       req.Title,
		Description: req.Description,
		FilePath:    req.FilePath,
		Status:      document.DefaultStatus,
		UserID:      req.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.items[d.ID] = d
	r.mu.Unlock()

	return d, nil
}

func (r *DocumentsRepo) List(ctx context.Context) ([]document.Document, error) {
	r.mu.RLock()
	out := make([]document.Document, 0, len(r.items))
	for _, d := range r.items {
		out = append(out, d)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	for i := range out {
		r.withOwner(ctx, &out[i])
	}

	return out, nil
}

func (r *DocumentsRepo) GetByID(ctx context.Context, id int64) (document.Document, error) {
	r.mu.RLock()
	d, ok := r.items[id]
	r.mu.RUnlock()

	if !ok {
		return document.Document{}, document.ErrNotFound
	}

	r.withOwner(ctx, &d)

	return d, nil
}

func (r *DocumentsRepo) UpdateStatus(ctx context.Context, id int64, status string) (document.Document, error) {
	r.mu.Lock()
	d, ok := r.items[id]
	if !ok {
		r.mu.Unlock()
		return document.Document{}, document.ErrNotFound
	}

	d.Status = status
	d.UpdatedAt = time.Now().UTC()
	r.items[id] = d
	r.mu.Unlock()

	return d, nil
}

func (r *DocumentsRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return document.ErrNotFound
	}

	delete(r.items, id)

	return nil
}

func (r *DocumentsRepo) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.items), nil
}

func (r *DocumentsRepo) withOwner(ctx context.Context, d *document.Document) {
	owner, err := r.users.GetByID(ctx, d.UserID)
	if err != nil {
		return
	}

	d.User = &owner
}
