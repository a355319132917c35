// Package cache holds the Redis-backed session and flash-message stores.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/arturoeanton/controle-estoque/internal/domain"
	"github.com/arturoeanton/controle-estoque/internal/port"
)

// ErrRedisUnavailable wraps transport failures talking to Redis.
var ErrRedisUnavailable = errors.New("redis unavailable")

// NewRedisClient parses a redis:// URL and verifies the server answers.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return client, nil
}

// SessionStore keeps live sessions as JSON blobs keyed by session ID, plus a
// per-user index set used to revoke every session of a deleted user.
type SessionStore struct {
	redis  redis.UniversalClient
	prefix string
}

// NewSessionStore creates a session store. prefix namespaces every key.
func NewSessionStore(client redis.UniversalClient, prefix string) *SessionStore {
	return &SessionStore{redis: client, prefix: prefix}
}

func (s *SessionStore) key(sessionID string) string {
	return s.prefix + ":s:" + sessionID
}

func (s *SessionStore) userKey(userID string) string {
	return s.prefix + ":u:" + userID
}

// Save stores the session with the given TTL and indexes it under its user.
func (s *SessionStore) Save(ctx context.Context, sess *domain.Session, ttl time.Duration) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	userKey := s.userKey(sess.UserID)
	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(sess.ID), data, ttl)
		pipe.SAdd(ctx, userKey, sess.ID)
		pipe.Expire(ctx, userKey, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Get returns the session or port.ErrSessionNotFound when it is missing or
// expired.
func (s *SessionStore) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	data, err := s.redis.Get(ctx, s.key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, port.ErrSessionNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	var sess domain.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if sess.Expired(time.Now()) {
		_ = s.Delete(ctx, sessionID)
		return nil, port.ErrSessionNotFound
	}
	return &sess, nil
}

// Delete removes a session. Deleting a missing session is not an error.
func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	data, err := s.redis.Get(ctx, s.key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	var sess domain.Session
	_ = json.Unmarshal(data, &sess)

	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key(sessionID))
		if sess.UserID != "" {
			pipe.SRem(ctx, s.userKey(sess.UserID), sessionID)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// DeleteAllForUser revokes every session of userID.
func (s *SessionStore) DeleteAllForUser(ctx context.Context, userID string) error {
	userKey := s.userKey(userID)
	ids, err := s.redis.SMembers(ctx, userKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, s.key(id))
	}
	keys = append(keys, userKey)

	if err := s.redis.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// sessionIDs lists the live session IDs of a user.
func (s *SessionStore) sessionIDs(ctx context.Context, userID string) ([]string, error) {
	ids, err := s.redis.SMembers(ctx, s.userKey(userID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return ids, nil
}

// FlashStore keeps one-shot page messages that expire after ttl.
type FlashStore struct {
	redis  redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewFlashStore creates a flash store whose messages live for ttl.
func NewFlashStore(client redis.UniversalClient, prefix string, ttl time.Duration) *FlashStore {
	return &FlashStore{redis: client, prefix: prefix, ttl: ttl}
}

func (f *FlashStore) key(k string) string {
	return f.prefix + ":flash:" + k
}

// SetFlash stores message under key, replacing any pending one.
func (f *FlashStore) SetFlash(ctx context.Context, key, message string) error {
	if err := f.redis.Set(ctx, f.key(key), message, f.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Flash returns the pending message for key, or "" when none is left. Reading
// does not consume the message; it disappears when its TTL runs out.
func (f *FlashStore) Flash(ctx context.Context, key string) (string, error) {
	msg, err := f.redis.Get(ctx, f.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return msg, nil
}
