package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/account-service/internal/domain"
)

// SessionRepository persists server-tracked sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	// Get returns ErrNotFound for unknown, revoked and expired sessions.
	Get(ctx context.Context, id string) (*domain.Session, error)
	Delete(ctx context.Context, id string) error
	// DeleteByUser revokes every session of the user except keepID.
	DeleteByUser(ctx context.Context, userID int64, keepID string) error
}

type redisSessionRepository struct {
	client *redis.Client
	prefix string
}

// NewRedisSessionRepository stores sessions under "<prefix>session:<id>" and
// indexes them per user under "<prefix>user_sessions:<userID>".
func NewRedisSessionRepository(client *redis.Client, prefix string) SessionRepository {
	return &redisSessionRepository{client: client, prefix: prefix}
}

func (r *redisSessionRepository) sessionKey(id string) string {
	return r.prefix + "session:" + id
}

func (r *redisSessionRepository) userKey(userID int64) string {
	return r.prefix + "user_sessions:" + strconv.FormatInt(userID, 10)
}

func (r *redisSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session %s already expired", session.ID)
	}
	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}

	userKey := r.userKey(session.UserID)
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.sessionKey(session.ID), payload, ttl)
		pipe.SAdd(ctx, userKey, session.ID)
		pipe.Expire(ctx, userKey, ttl)
		return nil
	})
	return err
}

func (r *redisSessionRepository) Get(ctx context.Context, id string) (*domain.Session, error) {
	session, err := r.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Expired(time.Now()) {
		return nil, ErrNotFound
	}
	return session, nil
}

// Delete drops the session and its user index entry, expired or not. Once
// Redis itself has evicted the key the owner is unknown; the stale index
// entry is skipped by DeleteByUser and goes away with the set's TTL.
func (r *redisSessionRepository) Delete(ctx context.Context, id string) error {
	session, err := r.load(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.sessionKey(id))
		pipe.SRem(ctx, r.userKey(session.UserID), id)
		return nil
	})
	return err
}

// load reads the stored session without checking its expiry.
func (r *redisSessionRepository) load(ctx context.Context, id string) (*domain.Session, error) {
	payload, err := r.client.Get(ctx, r.sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var session domain.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &session, nil
}

func (r *redisSessionRepository) DeleteByUser(ctx context.Context, userID int64, keepID string) error {
	userKey := r.userKey(userID)
	ids, err := r.client.SMembers(ctx, userKey).Result()
	if err != nil {
		return err
	}

	var revoke []string
	for _, id := range ids {
		if id != keepID {
			revoke = append(revoke, id)
		}
	}
	if len(revoke) == 0 {
		return nil
	}

	keys := make([]string, 0, len(revoke))
	members := make([]any, 0, len(revoke))
	for _, id := range revoke {
		keys = append(keys, r.sessionKey(id))
		members = append(members, id)
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, keys...)
		pipe.SRem(ctx, userKey, members...)
		return nil
	})
	return err
}
