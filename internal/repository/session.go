package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"heriken-shop/internal/model"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "session:"
	// optimistic update attempts before giving up with a conflict
	sessionUpdateRetries = 5
)

var ErrSessionConflict = model.NewStatusError(model.ErrConflict, "Session was modified concurrently, please retry")

type SessionStore interface {
	// Get returns the stored session, or an empty one when id is unknown.
	Get(ctx context.Context, id string) (*model.Session, error)
	Save(ctx context.Context, session *model.Session) error
	Delete(ctx context.Context, id string) error
	// Update runs fn on the current session and stores the result only if
	// nobody else wrote the session in between.
	Update(ctx context.Context, id string, fn func(*model.Session) error) (*model.Session, error)
	// Rename moves the session stored under oldID to newID. The old id
	// stops resolving to it.
	Rename(ctx context.Context, oldID, newID string) (*model.Session, error)
}

type sessionStoreImpl struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionStore(client *redis.Client, ttl time.Duration) SessionStore {
	return &sessionStoreImpl{
		client: client,
		ttl:    ttl,
	}
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

func (s *sessionStoreImpl) load(ctx context.Context, c redis.Cmdable, id string) (*model.Session, error) {
	data, err := c.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return &model.Session{ID: id}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var session model.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	session.ID = id

	return &session, nil
}

func (s *sessionStoreImpl) Get(ctx context.Context, id string) (*model.Session, error) {
	return s.load(ctx, s.client, id)
}

func (s *sessionStoreImpl) Save(ctx context.Context, session *model.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	return s.client.Set(ctx, sessionKey(session.ID), data, s.ttl).Err()
}

func (s *sessionStoreImpl) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, sessionKey(id)).Err()
}

func (s *sessionStoreImpl) Update(ctx context.Context, id string, fn func(*model.Session) error) (*model.Session, error) {
	key := sessionKey(id)

	var updated *model.Session
	txf := func(tx *redis.Tx) error {
		session, err := s.load(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := fn(session); err != nil {
			return err
		}

		data, err := json.Marshal(session)
		if err != nil {
			return fmt.Errorf("failed to marshal session: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, s.ttl)
			return nil
		})
		if err != nil {
			return err
		}

		updated = session
		return nil
	}

	for i := 0; i < sessionUpdateRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return updated, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, err
	}

	return nil, ErrSessionConflict
}

func (s *sessionStoreImpl) Rename(ctx context.Context, oldID, newID string) (*model.Session, error) {
	oldKey := sessionKey(oldID)

	var renamed *model.Session
	txf := func(tx *redis.Tx) error {
		session, err := s.load(ctx, tx, oldID)
		if err != nil {
			return err
		}
		session.ID = newID

		data, err := json.Marshal(session)
		if err != nil {
			return fmt.Errorf("failed to marshal session: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, sessionKey(newID), data, s.ttl)
			pipe.Del(ctx, oldKey)
			return nil
		})
		if err != nil {
			return err
		}

		renamed = session
		return nil
	}

	for i := 0; i < sessionUpdateRetries; i++ {
		err := s.client.Watch(ctx, txf, oldKey)
		if err == nil {
			return renamed, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, err
	}

	return nil, ErrSessionConflict
}
