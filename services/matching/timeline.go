package matching

import (
	"saubio/models"
	"saubio/services/locale"
)

// TimelineInput is everything the matching timeline is derived from.
type TimelineInput struct {
	// FiltersComplete is true once the address and time window are known.
	FiltersComplete bool
	Suggestions     models.SuggestionQuery
	FallbackTeams   int
	SelectedTeamID  string

	SmartMatch        bool
	ManualSelected    int
	RequiredProviders int

	Overrides models.StageOverrides
}

// FromSession builds the timeline input of a flow session.
func FromSession(s models.FlowSession) TimelineInput {
	return TimelineInput{
		FiltersComplete:   s.Draft.HasLocationAndSchedule(),
		Suggestions:       s.Suggestions,
		FallbackTeams:     len(s.FallbackTeams),
		SelectedTeamID:    s.SelectedTeamID,
		SmartMatch:        s.SmartMatch,
		ManualSelected:    len(s.SelectedProviderIDs),
		RequiredProviders: s.RequiredProviders,
		Overrides:         s.Overrides,
	}
}

func filtersStatus(in TimelineInput) models.StageStatus {
	if in.FiltersComplete {
		return models.StageStatusCompleted
	}
	return models.StageStatusPending
}

func suggestionsStatus(in TimelineInput) models.StageStatus {
	switch {
	case in.Suggestions.Status == models.QueryError:
		return models.StageStatusAlert
	case in.Suggestions.Status == models.QueryLoading:
		return models.StageStatusInProgress
	case in.Suggestions.Count > 0:
		return models.StageStatusCompleted
	default:
		return models.StageStatusPending
	}
}

func teamStatus(in TimelineInput) models.StageStatus {
	switch {
	case in.SelectedTeamID != "":
		return models.StageStatusCompleted
	case in.FallbackTeams > 0:
		return models.StageStatusInProgress
	default:
		return models.StageStatusPending
	}
}

// DeriveTimeline computes the three matching stages in their fixed order.
// Backend overrides replace the local status of their stage; an override count
// only replaces the suggestions count.
func DeriveTimeline(in TimelineInput, tr locale.Translator, loc string) models.Timeline {
	status := map[models.StageID]models.StageStatus{
		models.StageFilters:     filtersStatus(in),
		models.StageSuggestions: suggestionsStatus(in),
		models.StageTeam:        teamStatus(in),
	}
	suggestionCount := in.Suggestions.Count

	for id, o := range in.Overrides {
		if _, known := status[id]; !known {
			continue
		}
		if o.Status != nil {
			status[id] = o.Status.StageStatus()
		}
		if id == models.StageSuggestions && o.Count != nil {
			suggestionCount = *o.Count
		}
	}

	text := func(key string, params map[string]any) string {
		if tr == nil {
			return key
		}
		return tr.Translate(loc, key, params)
	}

	stages := make([]models.MatchingStage, 0, len(models.StageOrder))
	for _, id := range models.StageOrder {
		st := status[id]
		stage := models.MatchingStage{
			ID:     id,
			Label:  text("matching.stages."+string(id)+".label", nil),
			Status: st,
		}

		switch id {
		case models.StageFilters:
			stage.Description = text(descriptionKey(id, st, false), nil)
		case models.StageSuggestions:
			count := suggestionCount
			stage.Count = &count
			stage.Description = text(descriptionKey(id, st, count > 0), map[string]any{"count": count})
		case models.StageTeam:
			count := in.FallbackTeams
			stage.Count = &count
			stage.Description = text(descriptionKey(id, st, count > 0), map[string]any{"count": count})
		}
		stages = append(stages, stage)
	}

	timeline := models.Timeline{Stages: stages}
	if remaining := RemainingSelections(in); remaining > 0 {
		timeline.Reminder = &models.SelectionReminder{
			Remaining: remaining,
			Message:   text("matching.reminder", map[string]any{"remaining": remaining}),
		}
	}
	return timeline
}

// RemainingSelections is how many providers a client in manual mode still has to pick.
// It is 0 in smart match mode.
func RemainingSelections(in TimelineInput) int {
	if in.SmartMatch {
		return 0
	}
	required := in.RequiredProviders
	if required <= 0 {
		required = 1
	}
	if in.ManualSelected >= required {
		return 0
	}
	return required - in.ManualSelected
}

func descriptionKey(id models.StageID, st models.StageStatus, hasCount bool) string {
	base := "matching.stages." + string(id) + "."
	switch id {
	case models.StageFilters:
		if st == models.StageStatusCompleted {
			return base + "completed"
		}
		return base + "pending"
	case models.StageSuggestions:
		switch st {
		case models.StageStatusAlert:
			return base + "alert"
		case models.StageStatusInProgress:
			if hasCount {
				return base + "in_progress_count"
			}
			return base + "in_progress"
		case models.StageStatusCompleted:
			return base + "completed"
		default:
			return base + "pending"
		}
	default:
		switch st {
		case models.StageStatusCompleted:
			return base + "completed"
		case models.StageStatusInProgress:
			return base + "in_progress"
		default:
			return base + "pending"
		}
	}
}
