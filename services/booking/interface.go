package booking

import (
	"context"
	"time"

	bookingRepo "saubio/database/repository/booking"
	"saubio/models"

	"go.uber.org/zap"
)

// BookingSource lists booking records from the marketplace API.
type BookingSource interface {
	ListBookings(ctx context.Context, updatedSince time.Time) ([]models.BookingRequest, error)
}

// BookingService serves the booking dashboards.
type BookingService interface {
	ListForClient(ctx context.Context, clientID string, opts models.BookingFilterOptions) ([]models.BookingRequest, error)
	ListAll(ctx context.Context, opts models.BookingFilterOptions) ([]models.BookingRequest, error)
	Sync(ctx context.Context) (int, error)
}

// DefaultBookingService implements BookingService on the Mongo read model.
type DefaultBookingService struct {
	Repo   bookingRepo.BookingRepository
	Source BookingSource
	Logger *zap.Logger
}
