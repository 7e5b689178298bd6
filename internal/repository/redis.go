package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/GunarsK-portfolio/todo-service/internal/models"
	"github.com/redis/go-redis/v9"
)

// Key layout:
//
//	todosvc:user:<id>           JSON user record
//	todosvc:username:<lower>    user id, claimed under WATCH
//	todosvc:users               zset of user ids by creation time
//	todosvc:todo:<id>           JSON todo record
//	todosvc:todos:<owner id>    zset of the owner's todo ids by creation time
const keyPrefix = "todosvc:"

func userKey(id string) string           { return keyPrefix + "user:" + id }
func usernameKey(username string) string { return keyPrefix + "username:" + strings.ToLower(username) }
func todoKey(id string) string           { return keyPrefix + "todo:" + id }
func ownerTodosKey(ownerID string) string {
	return keyPrefix + "todos:" + ownerID
}

const usersKey = keyPrefix + "users"

// redisUser is the stored shape of models.User; the model hides the hash from JSON.
type redisUser struct {
	UserID       string      `json:"userId"`
	Username     string      `json:"username"`
	PasswordHash string      `json:"passwordHash"`
	Role         models.Role `json:"role"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

type redisUserRepository struct {
	client *redis.Client
}

// NewRedisUserRepository creates a Redis-backed UserRepository.
func NewRedisUserRepository(client *redis.Client) UserRepository {
	return &redisUserRepository{client: client}
}

func (r *redisUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	id, err := r.client.Get(ctx, usernameKey(username)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to find user by username %s: %w", username, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by username %s: %w", username, err)
	}
	return r.FindByID(ctx, id)
}

func (r *redisUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	data, err := r.client.Get(ctx, userKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to find user by id %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by id %s: %w", id, err)
	}
	return decodeUser(data)
}

// Create claims the username and writes the record in one transaction, so
// a failed write never leaves a dangling claim.
func (r *redisUserRepository) Create(ctx context.Context, user *models.User) error {
	stampCreated(&user.CreatedAt, &user.UpdatedAt)

	data, err := json.Marshal(redisUser{
		UserID:       user.UserID,
		Username:     user.Username,
		PasswordHash: user.PasswordHash,
		Role:         user.Role,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to encode user %s: %w", user.Username, err)
	}

	claim := usernameKey(user.Username)
	err = watch(ctx, r.client, func(tx *redis.Tx) error {
		taken, err := tx.Exists(ctx, claim).Result()
		if err != nil {
			return err
		}
		if taken > 0 {
			return ErrUsernameTaken
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, claim, user.UserID, 0)
			pipe.Set(ctx, userKey(user.UserID), data, 0)
			pipe.ZAdd(ctx, usersKey, redis.Z{Score: float64(user.CreatedAt.UnixMicro()), Member: user.UserID})
			return nil
		})
		return err
	}, claim)
	if err != nil {
		return fmt.Errorf("failed to create user %s: %w", user.Username, err)
	}
	return nil
}

func (r *redisUserRepository) List(ctx context.Context) ([]models.User, error) {
	ids, err := r.client.ZRange(ctx, usersKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	users := make([]models.User, 0, len(ids))
	if len(ids) == 0 {
		return users, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = userKey(id)
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		user, err := decodeUser([]byte(s))
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, nil
}

func decodeUser(data []byte) (*models.User, error) {
	var stored redisUser
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}
	return &models.User{
		UserID:       stored.UserID,
		Username:     stored.Username,
		PasswordHash: stored.PasswordHash,
		Role:         stored.Role,
		CreatedAt:    stored.CreatedAt,
		UpdatedAt:    stored.UpdatedAt,
	}, nil
}

// maxWatchRetries bounds optimistic retries when a watched key changes
// between the read and the commit.
const maxWatchRetries = 3

func watch(ctx context.Context, client *redis.Client, fn func(*redis.Tx) error, keys ...string) error {
	for i := 0; i < maxWatchRetries; i++ {
		err := client.Watch(ctx, fn, keys...)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return redis.TxFailedErr
}

// stringGetter is satisfied by both *redis.Client and *redis.Tx.
type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func getTodo(ctx context.Context, client stringGetter, id, ownerID string) (*models.Todo, error) {
	data, err := client.Get(ctx, todoKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to find todo %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find todo %s: %w", id, err)
	}

	var todo models.Todo
	if err := json.Unmarshal(data, &todo); err != nil {
		return nil, fmt.Errorf("failed to decode todo %s: %w", id, err)
	}
	if !todo.OwnedBy(ownerID) {
		return nil, fmt.Errorf("failed to find todo %s: %w", id, ErrNotFound)
	}
	return &todo, nil
}

type redisTodoRepository struct {
	client *redis.Client
}

// NewRedisTodoRepository creates a Redis-backed TodoRepository. Listing is
// most recently created first.
func NewRedisTodoRepository(client *redis.Client) TodoRepository {
	return &redisTodoRepository{client: client}
}

func (r *redisTodoRepository) Create(ctx context.Context, todo *models.Todo) error {
	stampCreated(&todo.CreatedAt, &todo.UpdatedAt)

	data, err := json.Marshal(todo)
	if err != nil {
		return fmt.Errorf("failed to encode todo: %w", err)
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, todoKey(todo.ID), data, 0)
		pipe.ZAdd(ctx, ownerTodosKey(todo.UserID), redis.Z{Score: float64(todo.CreatedAt.UnixMicro()), Member: todo.ID})
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to create todo: %w", err)
	}
	return nil
}

func (r *redisTodoRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Todo, error) {
	ids, err := r.client.ZRevRange(ctx, ownerTodosKey(ownerID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list todos for user %s: %w", ownerID, err)
	}
	todos := make([]models.Todo, 0, len(ids))
	if len(ids) == 0 {
		return todos, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = todoKey(id)
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list todos for user %s: %w", ownerID, err)
	}
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		var todo models.Todo
		if err := json.Unmarshal([]byte(s), &todo); err != nil {
			return nil, fmt.Errorf("failed to decode todo: %w", err)
		}
		if todo.OwnedBy(ownerID) {
			todos = append(todos, todo)
		}
	}
	return todos, nil
}

func (r *redisTodoRepository) FindByID(ctx context.Context, id, ownerID string) (*models.Todo, error) {
	return getTodo(ctx, r.client, id, ownerID)
}

// Update rewrites the record only if it still exists when the transaction
// commits; a concurrent delete wins.
func (r *redisTodoRepository) Update(ctx context.Context, id, ownerID string, patch models.TodoPatch) (*models.Todo, error) {
	var updated *models.Todo
	err := watch(ctx, r.client, func(tx *redis.Tx) error {
		todo, err := getTodo(ctx, tx, id, ownerID)
		if err != nil || patch.Empty() {
			updated = todo
			return err
		}

		patch.Apply(todo)
		todo.UpdatedAt = time.Now().UTC()
		data, err := json.Marshal(todo)
		if err != nil {
			return fmt.Errorf("failed to encode todo %s: %w", id, err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.SetXX(ctx, todoKey(id), data, 0)
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to update todo %s: %w", id, err)
		}
		updated = todo
		return nil
	}, todoKey(id))
	if errors.Is(err, redis.TxFailedErr) {
		return nil, fmt.Errorf("failed to update todo %s: %w", id, err)
	}
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *redisTodoRepository) Delete(ctx context.Context, id, ownerID string) (bool, error) {
	if _, err := r.FindByID(ctx, id, ownerID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	var deleted *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		deleted = pipe.Del(ctx, todoKey(id))
		pipe.ZRem(ctx, ownerTodosKey(ownerID), id)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete todo %s: %w", id, err)
	}
	return deleted.Val() > 0, nil
}
