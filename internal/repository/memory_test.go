package repository

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dan9191/auth-service/internal/models"
)

func TestMemoryRepository_CreateAndFind(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	created, err := repo.Create(ctx, newUser())
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	byEmail, err := repo.FindByEmail(ctx, "ana@x.com")
	require.NoError(t, err)
	assert.Equal(t, created, byEmail)

	byUsername, err := repo.FindByUsername(ctx, "ana1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byUsername.ID)

	assert.Equal(t, 1, repo.Count())
}

func TestMemoryRepository_NotFound(t *testing.T) {
	repo := NewMemoryRepository()

	_, err := repo.FindByEmail(context.Background(), "ghost@x.com")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.FindByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryRepository_Uniqueness(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		user *models.User
	}{
		{"same email", &models.User{Email: "ana@x.com", Username: "other"}},
		{"same username", &models.User{Email: "other@x.com", Username: "ana1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewMemoryRepository()
			_, err := repo.Create(ctx, newUser())
			require.NoError(t, err)

			_, err = repo.Create(ctx, tt.user)
			assert.ErrorIs(t, err, ErrDuplicate)
			assert.Equal(t, 1, repo.Count())
		})
	}
}

func TestMemoryRepository_ReturnsCopies(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	created, err := repo.Create(ctx, newUser())
	require.NoError(t, err)
	created.PasswordHash = "tampered"

	found, err := repo.FindByUsername(ctx, "ana1")
	require.NoError(t, err)
	assert.Equal(t, "$2a$10$hash", found.PasswordHash)
}

func TestMemoryRepository_ConcurrentCreateSameEmail(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	const workers = 32
	var (
		wg        sync.WaitGroup
		successes atomic.Int32
		conflicts atomic.Int32
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.Create(ctx, &models.User{
				Email:    "race@x.com",
				Username: fmt.Sprintf("racer%d", i),
			})
			switch {
			case err == nil:
				successes.Add(1)
			case assert.ErrorIs(t, err, ErrDuplicate):
				conflicts.Add(1)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), successes.Load())
	assert.Equal(t, int32(workers-1), conflicts.Load())
	assert.Equal(t, 1, repo.Count())
}

func TestMemoryRepository_CanceledContext(t *testing.T) {
	repo := NewMemoryRepository()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.Create(ctx, newUser())
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, repo.Ping(ctx), context.Canceled)
}
