package models

import "time"

// BookingDraft holds the booking fields collected on the details step.
type BookingDraft struct {
	Service    string    `json:"service,omitempty"`
	Address    string    `json:"address,omitempty"`
	City       string    `json:"city,omitempty"`
	PostalCode string    `json:"postalCode,omitempty"`
	StartAt    time.Time `json:"startAt,omitempty"`
	EndAt      time.Time `json:"endAt,omitempty"`
	SurfacesM2 int       `json:"surfacesSquareMeters,omitempty"`
}

// HasLocationAndSchedule reports whether the draft can be sent to matching.
func (d BookingDraft) HasLocationAndSchedule() bool {
	return d.Address != "" && !d.StartAt.IsZero() && !d.EndAt.IsZero()
}

// FlowSession holds booking flow context between client requests.
type FlowSession struct {
	SessionID           string          `json:"sessionId"`
	UserID              string          `json:"userId"`
	Locale              string          `json:"locale"`
	Pathname            string          `json:"pathname"`
	Draft               BookingDraft    `json:"draft"`
	SmartMatch          bool            `json:"smartMatch"`
	RequiredProviders   int             `json:"requiredProviders"`
	SelectedProviderIDs []string        `json:"selectedProviderIds,omitempty"`
	Suggestions         SuggestionQuery `json:"suggestions"`
	FallbackTeams       []FallbackTeam  `json:"fallbackTeams,omitempty"`
	SelectedTeamID      string          `json:"selectedTeamId,omitempty"`
	Overrides           StageOverrides  `json:"overrides,omitempty"`
	Version             int64           `json:"version"`
	CreatedAt           time.Time       `json:"createdAt"`
	UpdatedAt           time.Time       `json:"updatedAt"`
}

// SessionPatch carries a partial update of a flow session. Nil fields are left untouched.
type SessionPatch struct {
	Pathname            *string       `json:"pathname,omitempty"`
	Locale              *string       `json:"locale,omitempty"`
	Draft               *BookingDraft `json:"draft,omitempty"`
	SmartMatch          *bool         `json:"smartMatch,omitempty"`
	RequiredProviders   *int          `json:"requiredProviders,omitempty"`
	SelectedProviderIDs *[]string     `json:"selectedProviderIds,omitempty"`
	SelectedTeamID      *string       `json:"selectedTeamId,omitempty"`
	RefreshSuggestions  bool          `json:"refreshSuggestions,omitempty"`
}

// FlowSnapshot is the derived view published after every session change.
type FlowSnapshot struct {
	SessionID string      `json:"sessionId"`
	Stepper   Stepper     `json:"stepper"`
	Timeline  Timeline    `json:"timeline"`
	Session   FlowSession `json:"session"`
	Version   int64       `json:"version"`
}
