package repository

import (
	"context"
	"testing"
	"time"

	"github.com/GunarsK-portfolio/todo-service/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// interleaveHook runs interleave once, right after the first command that
// matches name and key has been sent.
type interleaveHook struct {
	name       string
	key        string
	interleave func()
}

func (h *interleaveHook) DialHook(next redis.DialHook) redis.DialHook { return next }

func (h *interleaveHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		args := cmd.Args()
		if h.interleave != nil && cmd.Name() == h.name && len(args) > 1 && args[1] == h.key {
			interleave := h.interleave
			h.interleave = nil
			interleave()
		}
		return err
	}
}

func (h *interleaveHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

// secondClient opens another connection to the same server, outside any hook.
func secondClient(t *testing.T, client *redis.Client) *redis.Client {
	t.Helper()
	other := redis.NewClient(&redis.Options{Addr: client.Options().Addr})
	t.Cleanup(func() { _ = other.Close() })
	return other
}

// =============================================================================
// Redis concurrency
// =============================================================================

func TestRedisTodoRepository_UpdateDoesNotUndoConcurrentDelete(t *testing.T) {
	ctx := context.Background()
	client := setupRedis(t)
	repo := NewRedisTodoRepository(client)
	other := NewRedisTodoRepository(secondClient(t, client))

	todo := newTodo("racing", aliceID, time.Now().UTC())
	require.NoError(t, repo.Create(ctx, todo))

	client.AddHook(&interleaveHook{
		name: "get",
		key:  todoKey(todo.ID),
		interleave: func() {
			deleted, err := other.Delete(ctx, todo.ID, aliceID)
			require.NoError(t, err)
			require.True(t, deleted)
		},
	})

	_, err := repo.Update(ctx, todo.ID, aliceID, models.TodoPatch{IsCompleted: boolPtr(true)})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.FindByID(ctx, todo.ID, aliceID)
	assert.ErrorIs(t, err, ErrNotFound)

	todos, err := repo.ListByOwner(ctx, aliceID)
	require.NoError(t, err)
	assert.Empty(t, todos)

	deleted, err := repo.Delete(ctx, todo.ID, aliceID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestRedisTodoRepository_UpdateRetriesAfterConcurrentUpdate(t *testing.T) {
	ctx := context.Background()
	client := setupRedis(t)
	repo := NewRedisTodoRepository(client)
	other := NewRedisTodoRepository(secondClient(t, client))

	todo := newTodo("original", aliceID, time.Now().UTC())
	require.NoError(t, repo.Create(ctx, todo))

	client.AddHook(&interleaveHook{
		name: "get",
		key:  todoKey(todo.ID),
		interleave: func() {
			_, err := other.Update(ctx, todo.ID, aliceID, models.TodoPatch{Title: strPtr("renamed")})
			require.NoError(t, err)
		},
	})

	updated, err := repo.Update(ctx, todo.ID, aliceID, models.TodoPatch{IsCompleted: boolPtr(true)})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)
	assert.True(t, updated.IsCompleted)

	found, err := repo.FindByID(ctx, todo.ID, aliceID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", found.Title)
	assert.True(t, found.IsCompleted)
}

func TestRedisUserRepository_CreateLosesConcurrentClaim(t *testing.T) {
	ctx := context.Background()
	client := setupRedis(t)
	repo := NewRedisUserRepository(client)
	other := secondClient(t, client)

	client.AddHook(&interleaveHook{
		name: "exists",
		key:  usernameKey("carol"),
		interleave: func() {
			require.NoError(t, other.Set(ctx, usernameKey("carol"), aliceID, 0).Err())
		},
	})

	err := repo.Create(ctx, &models.User{UserID: bobID, Username: "Carol", Role: models.RoleUser})
	assert.ErrorIs(t, err, ErrUsernameTaken)

	_, err = repo.FindByID(ctx, bobID)
	assert.ErrorIs(t, err, ErrNotFound)

	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestRedisUserRepository_CreateWritesClaimWithRecord(t *testing.T) {
	ctx := context.Background()
	client := setupRedis(t)
	repo := NewRedisUserRepository(client)

	require.NoError(t, repo.Create(ctx, &models.User{UserID: aliceID, Username: "Alice", Role: models.RoleAdmin}))

	claimed, err := client.Get(ctx, usernameKey("alice")).Result()
	require.NoError(t, err)
	assert.Equal(t, aliceID, claimed)

	user, err := repo.FindByUsername(ctx, "ALICE")
	require.NoError(t, err)
	assert.Equal(t, aliceID, user.UserID)
	assert.Equal(t, "Alice", user.Username)
}
