package models

// StepID identifies a step of the booking flow.
type StepID string

const (
	StepDetails   StepID = "details"
	StepProviders StepID = "providers"
	StepAccount   StepID = "account"
)

// Step is a static entry of a linear progress indicator.
type Step struct {
	ID             StepID `json:"id"`
	LabelKey       string `json:"-"`
	DescriptionKey string `json:"-"`
}

// StepStatus is derived from a step's position relative to the active step.
type StepStatus string

const (
	StepStatusCompleted StepStatus = "completed"
	StepStatusCurrent   StepStatus = "current"
	StepStatusUpcoming  StepStatus = "upcoming"
)

// StepView is one rendered step of a stepper.
type StepView struct {
	ID          StepID     `json:"id"`
	Index       int        `json:"index"`
	Label       string     `json:"label"`
	Description string     `json:"description,omitempty"`
	Status      StepStatus `json:"status"`
	// ConnectorFilled reports whether the line from this step to the next one is filled.
	ConnectorFilled bool `json:"connectorFilled"`
}

// Stepper is the progress indicator for a given active step.
type Stepper struct {
	ActiveStep StepID     `json:"activeStep"`
	Steps      []StepView `json:"steps"`
}
