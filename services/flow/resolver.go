package flow

import (
	"strings"

	"saubio/models"
)

// ResolveStepFromPath maps the current page path to a booking step.
// An empty path means the location is unknown yet.
func ResolveStepFromPath(pathname string) models.StepID {
	switch {
	case pathname == "":
		return models.StepDetails
	case strings.HasPrefix(pathname, AccountRoutePrefix):
		return models.StepAccount
	case strings.HasPrefix(pathname, SelectProviderRoutePrefix):
		return models.StepProviders
	default:
		return models.StepDetails
	}
}
