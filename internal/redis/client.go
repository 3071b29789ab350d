package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"marmomart/internal/otp"

	"github.com/go-redis/redis/v8"
)

// Client is a Redis-backed otp.SessionStore.
type Client struct {
	rdb *redis.Client
}

func Initialize(redisURL string) (*Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewClient(rdb), nil
}

// NewClient wraps an existing go-redis client.
func NewClient(rdb *redis.Client) *Client {
	return &Client{rdb: rdb}
}

func sessionKey(id string) string  { return "otp:session:" + id }
func phoneKey(phone string) string { return "otp:phone:" + phone }

// Save stores the session and points the phone at it. Both keys expire with the session.
func (c *Client) Save(ctx context.Context, s *otp.Session) error {
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		// Keep expired sessions briefly so Verify can report them as expired.
		ttl = time.Minute
	}

	jsonData, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal otp session: %w", err)
	}

	_, err = c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, sessionKey(s.ID), jsonData, ttl)
		pipe.Set(ctx, phoneKey(s.Phone), s.ID, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save otp session: %w", err)
	}
	return nil
}

// Get returns the session unless it is unknown or superseded.
func (c *Client) Get(ctx context.Context, id string) (*otp.Session, error) {
	val, err := c.rdb.Get(ctx, sessionKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, otp.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get otp session: %w", err)
	}

	var s otp.Session
	if err := json.Unmarshal([]byte(val), &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal otp session: %w", err)
	}

	current, err := c.rdb.Get(ctx, phoneKey(s.Phone)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to get current otp session: %w", err)
	}
	if current != id {
		return nil, otp.ErrSessionNotFound
	}
	return &s, nil
}

// consumeScript deletes the session and its phone pointer only while the
// pointer still names it. It returns the number of keys removed.
var consumeScript = redis.NewScript(`
if redis.call("GET", KEYS[2]) ~= ARGV[1] then
	return 0
end
return redis.call("DEL", KEYS[1], KEYS[2])
`)

// Consume atomically removes the current session. Concurrent callers for the
// same id get otp.ErrSessionNotFound, except the one that removed it.
func (c *Client) Consume(ctx context.Context, id string) error {
	val, err := c.rdb.Get(ctx, sessionKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return otp.ErrSessionNotFound
		}
		return fmt.Errorf("failed to get otp session: %w", err)
	}

	var s otp.Session
	if err := json.Unmarshal([]byte(val), &s); err != nil {
		return fmt.Errorf("failed to unmarshal otp session: %w", err)
	}

	removed, err := consumeScript.Run(ctx, c.rdb, []string{sessionKey(id), phoneKey(s.Phone)}, id).Int()
	if err != nil {
		return fmt.Errorf("failed to consume otp session: %w", err)
	}
	if removed == 0 {
		return otp.ErrSessionNotFound
	}
	return nil
}

// Delete removes the session and, if it is still current, the phone pointer.
func (c *Client) Delete(ctx context.Context, id string) error {
	val, err := c.rdb.Get(ctx, sessionKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("failed to get otp session: %w", err)
	}

	var s otp.Session
	if err := json.Unmarshal([]byte(val), &s); err != nil {
		return fmt.Errorf("failed to unmarshal otp session: %w", err)
	}

	if err := c.rdb.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete otp session: %w", err)
	}
	// Only clear the pointer if no newer session replaced it.
	current, err := c.rdb.Get(ctx, phoneKey(s.Phone)).Result()
	if err == nil && current == id {
		return c.rdb.Del(ctx, phoneKey(s.Phone)).Err()
	}
	return nil
}

// Close Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}
