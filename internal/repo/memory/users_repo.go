package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/geocoder89/docvault/internal/domain/user"
)

type UsersRepo struct {
	mu      sync.RWMutex
	nextID  int64
	items   map[int64]user.User
	byEmail map[string]int64
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		items:   make(map[int64]user.User),
		byEmail: make(map[string]int64),
	}
}

func (r *UsersRepo) Create(_ context.Context, email, passwordHash, role string) (user.User, error) {
	if role == "" {
		role = user.RoleUser
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// emails are compared as-is, like the unique index in postgres
	if _, taken := r.byEmail[email]; taken {
		return user.User{}, user.ErrEmailTaken
	}

	r.nextID++
	u := user.User{
		ID:           r.nextID,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}

	r.items[u.ID] = u
	r.byEmail[email] = u.ID

	return u, nil
}

func (r *UsersRepo) GetByEmail(_ context.Context, email string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	return r.items[id], nil
}

func (r *UsersRepo) GetByID(_ context.Context, id int64) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.items[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	return u, nil
}

func (r *UsersRepo) List(_ context.Context) ([]user.User, error) {
	r.mu.RLock()
	out := make([]user.User, 0, len(r.items))
	for _, u := range r.items {
		out = append(out, u)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (r *UsersRepo) HasRole(_ context.Context, role string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.items {
		if u.Role == role {
			return true, nil
		}
	}

	return false, nil
}

func (r *UsersRepo) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.items), nil
}
