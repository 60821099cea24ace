package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Public runtime endpoints
	HealthHandler      gin.HandlerFunc
	GetRuntimeConfig   gin.HandlerFunc
	GetLocaleMessages  gin.HandlerFunc
	ListCountries      gin.HandlerFunc
	GetCountry         gin.HandlerFunc
	GetFlowSteps       gin.HandlerFunc
	DeriveFlowTimeline gin.HandlerFunc

	// Flow session endpoints
	StartFlowSession  gin.HandlerFunc
	GetFlowSession    gin.HandlerFunc
	UpdateFlowSession gin.HandlerFunc
	CancelFlowSession gin.HandlerFunc
	StreamFlowSession gin.HandlerFunc

	// Booking endpoints
	ListMyBookings gin.HandlerFunc

	// Admin endpoints
	AdminLogin          gin.HandlerFunc
	ListAllBookings     gin.HandlerFunc
	SetSessionOverrides gin.HandlerFunc
}

// NewHandlerBundle wires handler methods into a bundle.
func NewHandlerBundle(fh *FlowHandler, bh *BookingsHandler, lh *LocaleHandler, ah *AdminHandler) *HandlerBundle {
	return &HandlerBundle{
		HealthHandler:      HealthHandler,
		GetRuntimeConfig:   lh.GetRuntimeConfig,
		GetLocaleMessages:  lh.GetMessages,
		ListCountries:      ListCountries,
		GetCountry:         GetCountry,
		GetFlowSteps:       fh.GetSteps,
		DeriveFlowTimeline: fh.DeriveTimeline,

		StartFlowSession:  fh.StartSession,
		GetFlowSession:    fh.GetSession,
		UpdateFlowSession: fh.UpdateSession,
		CancelFlowSession: fh.CancelSession,
		StreamFlowSession: fh.StreamSession,

		ListMyBookings: bh.ListMyBookings,

		AdminLogin:          ah.LoginHandler,
		ListAllBookings:     bh.ListAllBookings,
		SetSessionOverrides: ah.SetOverridesHandler,
	}
}
