package users

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/dmitrijs2005/waterwatch/internal/common"
	"github.com/dmitrijs2005/waterwatch/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_CreateAndGet(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	created, err := repo.Create(ctx, newUser())
	require.NoError(t, err)
	assert.False(t, created.CreatedAt.IsZero())

	byEmail, err := repo.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u-1", byEmail.ID)

	byID, err := repo.GetUserByID(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", byID.Name)
}

func TestMemoryRepository_DuplicateEmail(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	_, err := repo.Create(ctx, newUser())
	require.NoError(t, err)

	dup := newUser()
	dup.ID = "u-2"
	_, err = repo.Create(ctx, dup)
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestMemoryRepository_NotFound(t *testing.T) {
	repo := NewMemoryRepository()

	_, err := repo.GetUserByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = repo.GetUserByID(context.Background(), "nope")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestMemoryRepository_ReturnsCopies(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	_, err := repo.Create(ctx, newUser())
	require.NoError(t, err)

	u, err := repo.GetUserByID(ctx, "u-1")
	require.NoError(t, err)
	u.Name = "Mallory"

	again, err := repo.GetUserByID(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", again.Name)
}

func TestMemoryRepository_ConcurrentSameEmail(t *testing.T) {
	repo := NewMemoryRepository()

	var wg sync.WaitGroup
	var mu sync.Mutex
	ok := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.Create(context.Background(), &models.User{ID: fmt.Sprintf("u-%d", i), Email: "same@example.com"})
			if err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
}
