package sessionRepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"saubio/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const keyPrefix = "flow:session:"

func sessionKey(id string) string    { return keyPrefix + id }
func eventsChannel(id string) string { return keyPrefix + id + ":events" }

// RedisSessionRepo implements SessionStore and SnapshotBus on one Redis client.
type RedisSessionRepo struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisSessionRepo creates a Redis backed session repository.
func NewRedisSessionRepo(client *redis.Client, logger *zap.Logger) *RedisSessionRepo {
	return &RedisSessionRepo{client: client, logger: logger}
}

// Save stores the session as JSON and (re)starts its TTL. The write is guarded by
// WATCH on the key so a session changed by another writer is never overwritten.
func (r *RedisSessionRepo) Save(ctx context.Context, session *models.FlowSession, ttl time.Duration) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal flow session: %w", err)
	}
	key := sessionKey(session.SessionID)

	txf := func(tx *redis.Tx) error {
		stored, err := storedVersion(ctx, tx, key)
		if err != nil {
			return err
		}
		switch {
		case stored == 0 && session.Version > 1:
			return ErrSessionNotFound
		case stored != session.Version-1:
			return ErrVersionConflict
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, ttl)
			return nil
		})
		return err
	}

	err = r.client.Watch(ctx, txf, key)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, redis.TxFailedErr):
		return ErrVersionConflict
	case errors.Is(err, ErrVersionConflict), errors.Is(err, ErrSessionNotFound):
		return err
	default:
		return fmt.Errorf("failed to cache flow session: %w", err)
	}
}

// storedVersion returns the version currently stored under key, or 0 when there is none.
func storedVersion(ctx context.Context, tx *redis.Tx, key string) (int64, error) {
	data, err := tx.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	var head struct {
		Version int64 `json:"version"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return 0, fmt.Errorf("failed to parse flow session: %w", err)
	}
	return head.Version, nil
}

// Get loads a session.
func (r *RedisSessionRepo) Get(ctx context.Context, sessionID string) (*models.FlowSession, error) {
	data, err := r.client.Get(ctx, sessionKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read flow session: %w", err)
	}

	var session models.FlowSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to parse flow session: %w", err)
	}
	return &session, nil
}

// Delete removes a session. Deleting a missing session is not an error.
func (r *RedisSessionRepo) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete flow session: %w", err)
	}
	return nil
}

// Publish sends a snapshot to the session's channel.
func (r *RedisSessionRepo) Publish(ctx context.Context, snapshot models.FlowSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal flow snapshot: %w", err)
	}
	if err := r.client.Publish(ctx, eventsChannel(snapshot.SessionID), data).Err(); err != nil {
		return fmt.Errorf("failed to publish flow snapshot: %w", err)
	}
	return nil
}

// Subscribe listens on the session's channel until ctx is done.
func (r *RedisSessionRepo) Subscribe(ctx context.Context, sessionID string) (<-chan models.FlowSnapshot, error) {
	pubsub := r.client.Subscribe(ctx, eventsChannel(sessionID))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to flow session: %w", err)
	}

	out := make(chan models.FlowSnapshot, 16)
	go func() {
		defer close(out)
		defer pubsub.Close()

		msgs := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var snapshot models.FlowSnapshot
				if err := json.Unmarshal([]byte(msg.Payload), &snapshot); err != nil {
					r.logger.Warn("Dropping malformed flow snapshot",
						zap.String("sessionId", sessionID), zap.Error(err))
					continue
				}
				select {
				case out <- snapshot:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
