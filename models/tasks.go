package models

// SuggestionFetchPayload is the queue payload of a smart-match suggestion fetch.
type SuggestionFetchPayload struct {
	SessionID string `json:"sessionId"`
	RequestID string `json:"requestId"`
}

// SuggestionRequest is sent to the matching backend.
type SuggestionRequest struct {
	Service    string `json:"service,omitempty"`
	Address    string `json:"address"`
	City       string `json:"city,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	StartAt    string `json:"startAt"`
	EndAt      string `json:"endAt"`
	SurfacesM2 int    `json:"surfacesSquareMeters,omitempty"`
	Limit      int    `json:"limit,omitempty"`
}

// ProviderSuggestion is one provider proposed by smart matching.
type ProviderSuggestion struct {
	ProviderID string  `json:"providerId"`
	Name       string  `json:"name"`
	Score      float64 `json:"score"`
	DistanceKm float64 `json:"distanceKm,omitempty"`
}

// SuggestionResult is the matching backend's answer.
type SuggestionResult struct {
	Providers     []ProviderSuggestion `json:"providers"`
	FallbackTeams []FallbackTeam       `json:"fallbackTeams,omitempty"`
}
