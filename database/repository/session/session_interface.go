package sessionRepo

import (
	"context"
	"errors"
	"time"

	"saubio/models"
)

var (
	// ErrSessionNotFound is returned when a session is missing or has expired.
	ErrSessionNotFound = errors.New("flow session not found or expired")
	// ErrVersionConflict is returned by Save when another writer stored the session first.
	ErrVersionConflict = errors.New("flow session was modified concurrently")
)

// SessionStore persists flow sessions with a sliding TTL.
type SessionStore interface {
	// Save writes session.Version only over session.Version-1; version 1 creates the session.
	// A lost race returns ErrVersionConflict, an expired session ErrSessionNotFound.
	Save(ctx context.Context, session *models.FlowSession, ttl time.Duration) error
	Get(ctx context.Context, sessionID string) (*models.FlowSession, error)
	Delete(ctx context.Context, sessionID string) error
}

// SnapshotBus fans derived flow snapshots out to live subscribers.
type SnapshotBus interface {
	Publish(ctx context.Context, snapshot models.FlowSnapshot) error
	// Subscribe delivers snapshots for one session until ctx is done, then closes the channel.
	Subscribe(ctx context.Context, sessionID string) (<-chan models.FlowSnapshot, error)
}
