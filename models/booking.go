package models

import "time"

// BookingStatus is the closed set of lifecycle states a booking request can be in.
type BookingStatus string

const (
	BookingStatusDraft           BookingStatus = "draft"
	BookingStatusPendingProvider BookingStatus = "pending_provider"
	BookingStatusPendingClient   BookingStatus = "pending_client"
	BookingStatusConfirmed       BookingStatus = "confirmed"
	BookingStatusInProgress      BookingStatus = "in_progress"
	BookingStatusCompleted       BookingStatus = "completed"
	BookingStatusCancelled       BookingStatus = "cancelled"
	BookingStatusDisputed        BookingStatus = "disputed"
)

// BookingStatuses lists every known status in display order.
var BookingStatuses = []BookingStatus{
	BookingStatusDraft,
	BookingStatusPendingProvider,
	BookingStatusPendingClient,
	BookingStatusConfirmed,
	BookingStatusInProgress,
	BookingStatusCompleted,
	BookingStatusCancelled,
	BookingStatusDisputed,
}

// BookingAddress is the service location of a booking.
type BookingAddress struct {
	StreetLine1 string `bson:"streetLine1" json:"streetLine1"`
	StreetLine2 string `bson:"streetLine2,omitempty" json:"streetLine2,omitempty"`
	PostalCode  string `bson:"postalCode" json:"postalCode"`
	City        string `bson:"city" json:"city"`
	CountryCode string `bson:"countryCode" json:"countryCode"`
}

// BookingRequest mirrors a booking record owned by the marketplace API.
// This service only reads it.
type BookingRequest struct {
	ID          string         `bson:"id" json:"id"`
	ClientID    string         `bson:"clientId" json:"clientId"`
	ProviderIDs []string       `bson:"providerIds,omitempty" json:"providerIds,omitempty"`
	Status      BookingStatus  `bson:"status" json:"status"`
	Service     string         `bson:"service" json:"service"`
	Address     BookingAddress `bson:"address" json:"address"`
	StartAt     time.Time      `bson:"startAt" json:"startAt"`
	EndAt       time.Time      `bson:"endAt" json:"endAt"`
	SurfacesM2  int            `bson:"surfacesSquareMeters,omitempty" json:"surfacesSquareMeters,omitempty"`
	Mode        string         `bson:"mode,omitempty" json:"mode,omitempty"` // "smart_match" or "manual"
	CreatedAt   time.Time      `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time      `bson:"updatedAt" json:"updatedAt"`
}

// StatusAll disables the status predicate of a booking filter.
const StatusAll = "all"

// BookingFilterOptions holds the list filters exposed to booking dashboards.
// Status is either StatusAll or a status id compared case-insensitively.
type BookingFilterOptions struct {
	Status string `json:"status"`
	City   string `json:"city"`
}
