package bookingRepo

import (
	"context"
	"time"

	"saubio/models"
)

// BookingRepository is the read model of marketplace booking requests.
// List methods return bookings newest first.
type BookingRepository interface {
	ListByClient(ctx context.Context, clientID string) ([]models.BookingRequest, error)
	ListAll(ctx context.Context) ([]models.BookingRequest, error)
	UpsertMany(ctx context.Context, bookings []models.BookingRequest) (int, error)
	GetSyncWatermark(ctx context.Context) (time.Time, error)
	SetSyncWatermark(ctx context.Context, at time.Time) error
}
