package flow

import "saubio/models"

// Route prefixes of the booking flow pages.
const (
	AccountRoutePrefix        = "/bookings/account"
	SelectProviderRoutePrefix = "/bookings/select-provider"
)

var bookingSteps = []models.Step{
	{ID: models.StepDetails, LabelKey: "flow.steps.details.label", DescriptionKey: "flow.steps.details.description"},
	{ID: models.StepProviders, LabelKey: "flow.steps.providers.label", DescriptionKey: "flow.steps.providers.description"},
	{ID: models.StepAccount, LabelKey: "flow.steps.account.label", DescriptionKey: "flow.steps.account.description"},
}

// BookingSteps returns the ordered steps of the client booking flow.
func BookingSteps() []models.Step {
	return append([]models.Step(nil), bookingSteps...)
}
