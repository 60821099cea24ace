package flow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"saubio/models"
	"saubio/services/matching"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultSessionTTL = 30 * time.Minute
	suggestionLimit   = 20
	maxSaveAttempts   = 5
)

// errUnchanged lets an update callback leave the stored session as it is.
var errUnchanged = errors.New("flow session left unchanged")

func (s *DefaultSessionService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *DefaultSessionService) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.New().String()
}

func (s *DefaultSessionService) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return defaultSessionTTL
}

func (s *DefaultSessionService) logger() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return zap.L()
}

// Snapshot derives the stepper and timeline of a session.
func (s *DefaultSessionService) Snapshot(session models.FlowSession) models.FlowSnapshot {
	loc := session.Locale
	if loc == "" {
		loc = s.DefaultLocale
	}
	active := ResolveStepFromPath(session.Pathname)
	return models.FlowSnapshot{
		SessionID: session.SessionID,
		Stepper:   BuildStepper(BookingSteps(), active, s.Translator, loc),
		Timeline:  matching.DeriveTimeline(matching.FromSession(session), s.Translator, loc),
		Session:   session,
		Version:   session.Version,
	}
}

// Start creates a new flow session for userID.
func (s *DefaultSessionService) Start(ctx context.Context, userID string, in StartInput) (*models.FlowSnapshot, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, newInvalidInput("user id is required")
	}
	if in.RequiredProviders < 0 {
		return nil, newInvalidInput("requiredProviders must not be negative")
	}

	required := in.RequiredProviders
	if required == 0 {
		required = s.RequiredProviders
	}
	smart := true
	if in.SmartMatch != nil {
		smart = *in.SmartMatch
	}
	loc := in.Locale
	if loc == "" {
		loc = s.DefaultLocale
	}

	now := s.now()
	session := &models.FlowSession{
		SessionID:         s.newID(),
		UserID:            userID,
		Locale:            loc,
		Pathname:          in.Pathname,
		Draft:             in.Draft,
		SmartMatch:        smart,
		RequiredProviders: required,
		Suggestions:       models.SuggestionQuery{Status: models.QueryIdle},
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	requestID := s.prepareSuggestions(session)
	snapshot, err := s.persist(ctx, session)
	if err != nil {
		return nil, err
	}
	return s.dispatchSuggestions(ctx, session.SessionID, requestID, snapshot)
}

// Get returns the current snapshot of a session owned by userID.
func (s *DefaultSessionService) Get(ctx context.Context, sessionID, userID string) (*models.FlowSnapshot, error) {
	session, err := s.load(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	snapshot := s.Snapshot(*session)
	return &snapshot, nil
}

// Apply merges a patch into the session, recomputes its snapshot and publishes it.
func (s *DefaultSessionService) Apply(ctx context.Context, sessionID, userID string, patch models.SessionPatch) (*models.FlowSnapshot, error) {
	if patch.RequiredProviders != nil && *patch.RequiredProviders < 0 {
		return nil, newInvalidInput("requiredProviders must not be negative")
	}

	var requestID string
	_, snapshot, err := s.update(ctx, sessionID, func(session *models.FlowSession) error {
		if session.UserID != userID {
			return ErrForbidden
		}
		applyPatch(session, patch)
		requestID = s.prepareSuggestions(session)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.dispatchSuggestions(ctx, sessionID, requestID, snapshot)
}

func applyPatch(session *models.FlowSession, patch models.SessionPatch) {
	if patch.Pathname != nil {
		session.Pathname = *patch.Pathname
	}
	if patch.Locale != nil && *patch.Locale != "" {
		session.Locale = *patch.Locale
	}
	if patch.SmartMatch != nil {
		session.SmartMatch = *patch.SmartMatch
	}
	if patch.RequiredProviders != nil {
		session.RequiredProviders = *patch.RequiredProviders
	}
	if patch.SelectedProviderIDs != nil {
		session.SelectedProviderIDs = dedupe(*patch.SelectedProviderIDs)
	}
	if patch.SelectedTeamID != nil {
		session.SelectedTeamID = *patch.SelectedTeamID
	}
	if patch.Draft != nil {
		if matchingCriteriaChanged(session.Draft, *patch.Draft) {
			resetSuggestions(session)
		}
		session.Draft = *patch.Draft
	}
	if patch.RefreshSuggestions {
		resetSuggestions(session)
	}
}

// SetOverrides stores backend-authoritative stage data. A nil map clears them.
func (s *DefaultSessionService) SetOverrides(ctx context.Context, sessionID string, overrides models.StageOverrides) (*models.FlowSnapshot, error) {
	for id := range overrides {
		if !knownStage(id) {
			return nil, newInvalidInput(fmt.Sprintf("unknown stage %q", id))
		}
	}
	_, snapshot, err := s.update(ctx, sessionID, func(session *models.FlowSession) error {
		session.Overrides = overrides
		return nil
	})
	return snapshot, err
}

// RunSuggestionFetch performs a queued fetch and records its outcome.
// Upstream failures end up in the session as an error state; only storage
// failures are returned so the queue can retry.
func (s *DefaultSessionService) RunSuggestionFetch(ctx context.Context, payload models.SuggestionFetchPayload) error {
	session, err := s.Store.Get(ctx, payload.SessionID)
	if errors.Is(err, ErrSessionNotFound) {
		s.logger().Info("Skipping suggestion fetch for expired session", zap.String("sessionId", payload.SessionID))
		return nil
	}
	if err != nil {
		return err
	}
	if session.Suggestions.RequestID != payload.RequestID {
		s.logger().Debug("Skipping stale suggestion fetch",
			zap.String("sessionId", payload.SessionID), zap.String("requestId", payload.RequestID))
		return nil
	}
	if s.Fetcher == nil {
		return errors.New("no suggestion fetcher configured")
	}

	result, fetchErr := s.Fetcher.FetchSuggestions(ctx, suggestionRequest(session.Draft))
	if fetchErr != nil {
		s.logger().Warn("Suggestion fetch failed",
			zap.String("sessionId", payload.SessionID), zap.Error(fetchErr))
	}
	if result == nil {
		result = &models.SuggestionResult{}
	}

	// The client may have changed the session while the fetch ran.
	_, _, err = s.update(ctx, payload.SessionID, func(session *models.FlowSession) error {
		if session.Suggestions.RequestID != payload.RequestID {
			return errUnchanged
		}
		if fetchErr != nil {
			session.Suggestions.Status = models.QueryError
			session.Suggestions.Error = fetchErr.Error()
			return nil
		}
		session.Suggestions.Status = models.QuerySuccess
		session.Suggestions.Error = ""
		session.Suggestions.Count = len(result.Providers)
		session.FallbackTeams = result.FallbackTeams
		return nil
	})
	if errors.Is(err, ErrSessionNotFound) {
		return nil
	}
	return err
}

// Subscribe streams snapshots of a session owned by userID until ctx is done.
func (s *DefaultSessionService) Subscribe(ctx context.Context, sessionID, userID string) (<-chan models.FlowSnapshot, error) {
	if _, err := s.load(ctx, sessionID, userID); err != nil {
		return nil, err
	}
	return s.Bus.Subscribe(ctx, sessionID)
}

// Cancel deletes a session owned by userID.
func (s *DefaultSessionService) Cancel(ctx context.Context, sessionID, userID string) error {
	if _, err := s.load(ctx, sessionID, userID); err != nil {
		return err
	}
	return s.Store.Delete(ctx, sessionID)
}

func (s *DefaultSessionService) load(ctx context.Context, sessionID, userID string) (*models.FlowSession, error) {
	session, err := s.Store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, ErrForbidden
	}
	return session, nil
}

// update loads the session, applies change and stores the result, starting over
// from a fresh copy when another writer saved the session in between.
func (s *DefaultSessionService) update(ctx context.Context, sessionID string, change func(*models.FlowSession) error) (*models.FlowSession, *models.FlowSnapshot, error) {
	for attempt := 1; ; attempt++ {
		session, err := s.Store.Get(ctx, sessionID)
		if err != nil {
			return nil, nil, err
		}
		if err := change(session); err != nil {
			if errors.Is(err, errUnchanged) {
				snapshot := s.Snapshot(*session)
				return session, &snapshot, nil
			}
			return nil, nil, err
		}

		snapshot, err := s.persist(ctx, session)
		if errors.Is(err, ErrVersionConflict) && attempt < maxSaveAttempts {
			s.logger().Debug("Flow session changed concurrently, retrying",
				zap.String("sessionId", sessionID), zap.Int("attempt", attempt))
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		return session, snapshot, nil
	}
}

func (s *DefaultSessionService) persist(ctx context.Context, session *models.FlowSession) (*models.FlowSnapshot, error) {
	session.Version++
	session.UpdatedAt = s.now()
	if err := s.Store.Save(ctx, session, s.ttl()); err != nil {
		return nil, err
	}

	snapshot := s.Snapshot(*session)
	if s.Bus != nil {
		if err := s.Bus.Publish(ctx, snapshot); err != nil {
			s.logger().Warn("Failed to publish flow snapshot",
				zap.String("sessionId", session.SessionID), zap.Error(err))
		}
	}
	return &snapshot, nil
}

// prepareSuggestions marks a fetch as loading once the draft is complete and no
// result is pending, and returns its request id. Manual selection never asks the
// backend for suggestions.
func (s *DefaultSessionService) prepareSuggestions(session *models.FlowSession) string {
	if s.Queue == nil || !session.SmartMatch || !session.Draft.HasLocationAndSchedule() {
		return ""
	}
	if session.Suggestions.Status != models.QueryIdle && session.Suggestions.Status != "" {
		return ""
	}
	requestID := s.newID()
	session.Suggestions = models.SuggestionQuery{Status: models.QueryLoading, RequestID: requestID}
	return requestID
}

// dispatchSuggestions queues the fetch prepared for requestID. It runs only after the
// session carrying requestID is stored, so the worker always finds its request.
func (s *DefaultSessionService) dispatchSuggestions(ctx context.Context, sessionID, requestID string, snapshot *models.FlowSnapshot) (*models.FlowSnapshot, error) {
	if requestID == "" {
		return snapshot, nil
	}
	err := s.Queue.EnqueueSuggestionFetch(ctx, sessionID, requestID)
	if err == nil {
		return snapshot, nil
	}
	s.logger().Error("Failed to enqueue suggestion fetch",
		zap.String("sessionId", sessionID), zap.Error(err))

	_, failed, err := s.update(ctx, sessionID, func(session *models.FlowSession) error {
		if session.Suggestions.RequestID != requestID {
			return errUnchanged
		}
		session.Suggestions = models.SuggestionQuery{Status: models.QueryError, Error: "suggestions unavailable"}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return failed, nil
}

func resetSuggestions(session *models.FlowSession) {
	session.Suggestions = models.SuggestionQuery{Status: models.QueryIdle}
	session.FallbackTeams = nil
	session.SelectedTeamID = ""
}

func matchingCriteriaChanged(prev, next models.BookingDraft) bool {
	return prev.Address != next.Address ||
		prev.City != next.City ||
		prev.PostalCode != next.PostalCode ||
		prev.Service != next.Service ||
		prev.SurfacesM2 != next.SurfacesM2 ||
		!prev.StartAt.Equal(next.StartAt) ||
		!prev.EndAt.Equal(next.EndAt)
}

func suggestionRequest(d models.BookingDraft) models.SuggestionRequest {
	return models.SuggestionRequest{
		Service:    d.Service,
		Address:    d.Address,
		City:       d.City,
		PostalCode: d.PostalCode,
		StartAt:    d.StartAt.UTC().Format(time.RFC3339),
		EndAt:      d.EndAt.UTC().Format(time.RFC3339),
		SurfacesM2: d.SurfacesM2,
		Limit:      suggestionLimit,
	}
}

func knownStage(id models.StageID) bool {
	for _, s := range models.StageOrder {
		if s == id {
			return true
		}
	}
	return false
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
