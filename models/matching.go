package models

import (
	"encoding/json"
	"strings"
)

// StageID identifies a stage of the matching timeline.
type StageID string

const (
	StageFilters     StageID = "filters"
	StageSuggestions StageID = "suggestions"
	StageTeam        StageID = "team"
)

// StageOrder is the fixed display order of the matching timeline.
var StageOrder = []StageID{StageFilters, StageSuggestions, StageTeam}

// StageStatus is the computed status of a matching stage.
type StageStatus string

const (
	StageStatusCompleted  StageStatus = "completed"
	StageStatusInProgress StageStatus = "in_progress"
	StageStatusAlert      StageStatus = "alert"
	StageStatusPending    StageStatus = "pending"
)

// QueryStatus mirrors the lifecycle of an asynchronous fetch.
type QueryStatus string

const (
	QueryIdle    QueryStatus = "idle"
	QueryLoading QueryStatus = "loading"
	QueryError   QueryStatus = "error"
	QuerySuccess QueryStatus = "success"
)

// OverrideStatus is a stage status reported by the matching backend.
// Anything the backend sends outside the known values decodes to OverrideUnknown.
type OverrideStatus string

const (
	OverrideCompleted OverrideStatus = "completed"
	OverrideStarted   OverrideStatus = "started"
	OverrideError     OverrideStatus = "error"
	OverrideUnknown   OverrideStatus = "unknown"
)

// ParseOverrideStatus maps a raw backend status onto the closed override set.
func ParseOverrideStatus(raw string) OverrideStatus {
	switch OverrideStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case OverrideCompleted:
		return OverrideCompleted
	case OverrideStarted:
		return OverrideStarted
	case OverrideError:
		return OverrideError
	default:
		return OverrideUnknown
	}
}

// UnmarshalJSON accepts any string and folds unrecognized values into OverrideUnknown.
func (s *OverrideStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = ParseOverrideStatus(raw)
	return nil
}

// StageStatus translates a backend override into a timeline status.
func (s OverrideStatus) StageStatus() StageStatus {
	switch s {
	case OverrideCompleted:
		return StageStatusCompleted
	case OverrideStarted:
		return StageStatusInProgress
	case OverrideError:
		return StageStatusAlert
	default:
		return StageStatusPending
	}
}

// StageOverride is backend-authoritative data for one stage.
// A nil Status leaves the locally computed status in place.
type StageOverride struct {
	Status *OverrideStatus `json:"status,omitempty"`
	Count  *int            `json:"count,omitempty"`
}

// StageOverrides is keyed by stage id.
type StageOverrides map[StageID]StageOverride

// SuggestionQuery is the observed state of the smart-match suggestion fetch.
type SuggestionQuery struct {
	Status QueryStatus `json:"status"`
	Count  int         `json:"count"`
	Error  string      `json:"error,omitempty"`
	// RequestID identifies the fetch in flight; results for another id are stale.
	RequestID string `json:"requestId,omitempty"`
}

// FallbackTeam is a pre-formed provider group offered when matching comes up short.
type FallbackTeam struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	ProviderIDs []string `json:"providerIds"`
}

// MatchingStage is one derived entry of the matching timeline.
type MatchingStage struct {
	ID          StageID     `json:"id"`
	Label       string      `json:"label"`
	Status      StageStatus `json:"status"`
	Description string      `json:"description"`
	Count       *int        `json:"count,omitempty"`
}

// SelectionReminder nudges clients in manual mode to pick more providers.
type SelectionReminder struct {
	Remaining int    `json:"remaining"`
	Message   string `json:"message"`
}

// Timeline is the derived matching progress.
type Timeline struct {
	Stages   []MatchingStage    `json:"stages"`
	Reminder *SelectionReminder `json:"reminder,omitempty"`
}
