package flow

import (
	"context"
	"time"

	sessionRepo "saubio/database/repository/session"
	"saubio/models"
	"saubio/services/locale"

	"go.uber.org/zap"
)

// SuggestionQueue schedules an asynchronous smart-match fetch.
type SuggestionQueue interface {
	EnqueueSuggestionFetch(ctx context.Context, sessionID, requestID string) error
}

// SuggestionFetcher calls the matching backend.
type SuggestionFetcher interface {
	FetchSuggestions(ctx context.Context, req models.SuggestionRequest) (*models.SuggestionResult, error)
}

// StartInput seeds a new flow session.
type StartInput struct {
	Pathname          string              `json:"pathname"`
	Locale            string              `json:"locale"`
	SmartMatch        *bool               `json:"smartMatch,omitempty"`
	RequiredProviders int                 `json:"requiredProviders,omitempty"`
	Draft             models.BookingDraft `json:"draft"`
}

// SessionService manages the booking flow sessions and their derived views.
type SessionService interface {
	Start(ctx context.Context, userID string, in StartInput) (*models.FlowSnapshot, error)
	Get(ctx context.Context, sessionID, userID string) (*models.FlowSnapshot, error)
	Apply(ctx context.Context, sessionID, userID string, patch models.SessionPatch) (*models.FlowSnapshot, error)
	SetOverrides(ctx context.Context, sessionID string, overrides models.StageOverrides) (*models.FlowSnapshot, error)
	RunSuggestionFetch(ctx context.Context, payload models.SuggestionFetchPayload) error
	Subscribe(ctx context.Context, sessionID, userID string) (<-chan models.FlowSnapshot, error)
	Cancel(ctx context.Context, sessionID, userID string) error
}

// DefaultSessionService implements SessionService.
type DefaultSessionService struct {
	Store      sessionRepo.SessionStore
	Bus        sessionRepo.SnapshotBus
	Queue      SuggestionQueue
	Fetcher    SuggestionFetcher
	Translator locale.Translator
	Logger     *zap.Logger

	TTL               time.Duration
	DefaultLocale     string
	RequiredProviders int

	// Now and NewID are replaceable in tests.
	Now   func() time.Time
	NewID func() string
}
