package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/quillpost/quillpost/internal/model"
)

const (
	// sessionPrefix is the Redis key prefix for session hashes.
	sessionPrefix = "session:"
)

// Session hash field names.
const (
	fieldUserID       = "user_id"
	fieldUserName     = "user_name"
	fieldFlashSuccess = "flash_success"
	fieldFlashError   = "flash_error"
)

// ErrSessionNotFound indicates the session token is unknown or expired.
var ErrSessionNotFound = errors.New("session not found")

// Flash is a one-shot message attached to a session.
// It is surfaced by exactly one render and then gone.
type Flash struct {
	Success string `json:"success,omitempty"`
	Error   string `json:"error,omitempty"`
}

// IsZero reports whether the flash carries no message.
func (f Flash) IsZero() bool {
	return f.Success == "" && f.Error == ""
}

// consumeFlashScript reads and deletes the flash fields in one atomic step
// so a flash can never be rendered twice, even by concurrent requests.
var consumeFlashScript = redis.NewScript(`
	local success = redis.call('HGET', KEYS[1], ARGV[1])
	local err = redis.call('HGET', KEYS[1], ARGV[2])
	redis.call('HDEL', KEYS[1], ARGV[1], ARGV[2])
	return {success or '', err or ''}
`)

// CreateSession stores a new session for the given user under token.
func (c *Cache) CreateSession(ctx context.Context, token string, user *model.SessionUser, ttl time.Duration) error {
	key := sessionPrefix + token

	pipe := c.client.TxPipeline()
	pipe.HSet(ctx, key, fieldUserID, user.ID, fieldUserName, user.Name)
	pipe.Expire(ctx, key, ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

// GetSession loads the session user for token and refreshes the TTL.
// Returns ErrSessionNotFound for unknown or expired tokens.
func (c *Cache) GetSession(ctx context.Context, token string, ttl time.Duration) (*model.SessionUser, error) {
	key := sessionPrefix + token

	values, err := c.client.HMGet(ctx, key, fieldUserID, fieldUserName).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	userID, _ := values[0].(string)
	if userID == "" {
		return nil, ErrSessionNotFound
	}
	userName, _ := values[1].(string)

	// Sliding expiration: an active session stays alive.
	_ = c.client.Expire(ctx, key, ttl).Err()

	return &model.SessionUser{ID: userID, Name: userName}, nil
}

// DeleteSession removes a session (logout).
func (c *Cache) DeleteSession(ctx context.Context, token string) error {
	if err := c.client.Del(ctx, sessionPrefix+token).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// SetFlash attaches a one-shot flash message to the session.
func (c *Cache) SetFlash(ctx context.Context, token string, flash Flash) error {
	key := sessionPrefix + token

	fields := make([]any, 0, 4)
	if flash.Success != "" {
		fields = append(fields, fieldFlashSuccess, flash.Success)
	}
	if flash.Error != "" {
		fields = append(fields, fieldFlashError, flash.Error)
	}
	if len(fields) == 0 {
		return nil
	}

	if err := c.client.HSet(ctx, key, fields...).Err(); err != nil {
		return fmt.Errorf("failed to set flash: %w", err)
	}

	return nil
}

// ConsumeFlash reads and clears the session's flash message atomically.
// A missing or empty flash yields a zero Flash, not an error.
func (c *Cache) ConsumeFlash(ctx context.Context, token string) (Flash, error) {
	key := sessionPrefix + token

	result, err := consumeFlashScript.Run(ctx, c.client,
		[]string{key},
		fieldFlashSuccess, fieldFlashError,
	).StringSlice()
	if err != nil {
		return Flash{}, fmt.Errorf("failed to consume flash: %w", err)
	}

	flash := Flash{}
	if len(result) == 2 {
		flash.Success = result[0]
		flash.Error = result[1]
	}

	return flash, nil
}
