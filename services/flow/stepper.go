package flow

import (
	"saubio/models"
	"saubio/services/locale"
)

// ActiveIndex returns the position of activeID in steps, or 0 when it is absent.
func ActiveIndex(steps []models.Step, activeID models.StepID) int {
	for i, s := range steps {
		if s.ID == activeID {
			return i
		}
	}
	return 0
}

// StatusAt derives the status of the step at index i.
func StatusAt(i, activeIndex int) models.StepStatus {
	switch {
	case i < activeIndex:
		return models.StepStatusCompleted
	case i == activeIndex:
		return models.StepStatusCurrent
	default:
		return models.StepStatusUpcoming
	}
}

// BuildStepper renders steps around activeID. Labels are translated when tr is non-nil.
func BuildStepper(steps []models.Step, activeID models.StepID, tr locale.Translator, loc string) models.Stepper {
	activeIndex := ActiveIndex(steps, activeID)

	views := make([]models.StepView, 0, len(steps))
	for i, s := range steps {
		view := models.StepView{
			ID:              s.ID,
			Index:           i,
			Label:           s.LabelKey,
			Description:     s.DescriptionKey,
			Status:          StatusAt(i, activeIndex),
			ConnectorFilled: i < len(steps)-1 && i < activeIndex,
		}
		if tr != nil {
			view.Label = tr.Translate(loc, s.LabelKey, nil)
			if s.DescriptionKey != "" {
				view.Description = tr.Translate(loc, s.DescriptionKey, nil)
			}
		}
		views = append(views, view)
	}

	active := activeID
	if len(steps) > 0 {
		active = steps[activeIndex].ID
	}
	return models.Stepper{ActiveStep: active, Steps: views}
}
