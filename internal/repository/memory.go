package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Dan9191/auth-service/internal/models"
)

var _ UserRepository = (*MemoryRepository)(nil)

// MemoryRepository keeps users in process memory. It enforces the same
// uniqueness rules as the users table and is safe for concurrent use.
type MemoryRepository struct {
	mu         sync.RWMutex
	byID       map[string]*models.User
	byEmail    map[string]string
	byUsername map[string]string
}

// NewMemoryRepository creates an empty in-memory store
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:       make(map[string]*models.User),
		byEmail:    make(map[string]string),
		byUsername: make(map[string]string),
	}
}

func (r *MemoryRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[user.Email]; ok {
		return nil, ErrDuplicate
	}
	if _, ok := r.byUsername[user.Username]; ok {
		return nil, ErrDuplicate
	}

	stored := *user
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	stored.CreatedAt = time.Now().UTC()

	r.byID[stored.ID] = &stored
	r.byEmail[stored.Email] = stored.ID
	r.byUsername[stored.Username] = stored.ID

	out := stored
	return &out, nil
}

func (r *MemoryRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.find(ctx, r.byEmail, email)
}

func (r *MemoryRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.find(ctx, r.byUsername, username)
}

// Ping always succeeds
func (r *MemoryRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Count returns the number of stored users
func (r *MemoryRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

func (r *MemoryRepository) find(ctx context.Context, index map[string]string, key string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := index[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := *r.byID[id]
	return &out, nil
}
