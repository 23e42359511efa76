package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"notebin/pkg/domain"
)

const sessionKeyPrefix = "notebin:session:"

// RedisSessionMetaStore keeps session metadata in Redis with TTL. Expiry
// removes the record entirely, so an expired session is simply absent.
type RedisSessionMetaStore struct {
	client *redis.Client
}

// NewRedisSessionMetaStore builds a Redis-backed session metadata store.
func NewRedisSessionMetaStore(addr, password string) *RedisSessionMetaStore {
	return &RedisSessionMetaStore{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
	}
}

// PutSession writes the session record with the given TTL.
func (s *RedisSessionMetaStore) PutSession(sess domain.Session, ttl time.Duration) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return s.client.Set(ctx, sessionKeyPrefix+sess.ID, payload, ttl).Err()
}

// GetSession resolves a session by ID.
func (s *RedisSessionMetaStore) GetSession(id string) (domain.Session, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	raw, err := s.client.Get(ctx, sessionKeyPrefix+id).Bytes()
	if err == redis.Nil {
		return domain.Session{}, false, nil
	}
	if err != nil {
		return domain.Session{}, false, err
	}
	var sess domain.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return domain.Session{}, false, err
	}
	return sess, true, nil
}

// TouchSession updates LastActivity, keeping the remaining TTL.
func (s *RedisSessionMetaStore) TouchSession(id string, at time.Time) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	key := sessionKeyPrefix + id
	raw, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return err
	}
	var sess domain.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return err
	}
	sess.LastActivity = at.UTC()
	payload, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, payload, redis.KeepTTL).Err()
}

// DeleteSession removes a session record.
func (s *RedisSessionMetaStore) DeleteSession(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := s.client.Del(ctx, sessionKeyPrefix+id).Err(); err != nil && err != redis.Nil {
		return err
	}
	return nil
}
