package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"saubio/models"

	"go.uber.org/zap"
)

// ListForClient returns a client's bookings, newest first, filtered by opts.
func (s *DefaultBookingService) ListForClient(ctx context.Context, clientID string, opts models.BookingFilterOptions) ([]models.BookingRequest, error) {
	if strings.TrimSpace(clientID) == "" {
		return nil, errors.New("client id is required")
	}
	bookings, err := s.Repo.ListByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings for client %s: %w", clientID, err)
	}
	return FilterBookings(bookings, opts), nil
}

// ListAll returns every booking, newest first, filtered by opts.
func (s *DefaultBookingService) ListAll(ctx context.Context, opts models.BookingFilterOptions) ([]models.BookingRequest, error) {
	bookings, err := s.Repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return FilterBookings(bookings, opts), nil
}

// Sync mirrors bookings changed upstream since the last run and returns how many were written.
func (s *DefaultBookingService) Sync(ctx context.Context) (int, error) {
	if s.Source == nil {
		return 0, &SyncError{Stage: "configuring", Err: errors.New("no booking source")}
	}

	since, err := s.Repo.GetSyncWatermark(ctx)
	if err != nil {
		return 0, &SyncError{Stage: "reading watermark", Err: err}
	}

	bookings, err := s.Source.ListBookings(ctx, since)
	if err != nil {
		return 0, &SyncError{Stage: "fetching", Err: err}
	}
	if len(bookings) == 0 {
		return 0, nil
	}

	written, err := s.Repo.UpsertMany(ctx, bookings)
	if err != nil {
		return 0, &SyncError{Stage: "storing", Err: err}
	}

	watermark := since
	for _, b := range bookings {
		if b.UpdatedAt.After(watermark) {
			watermark = b.UpdatedAt
		}
	}
	if watermark.After(since) {
		if err := s.Repo.SetSyncWatermark(ctx, watermark); err != nil {
			return written, &SyncError{Stage: "storing watermark", Err: err}
		}
	}

	if s.Logger != nil {
		s.Logger.Info("Booking sync finished",
			zap.Int("fetched", len(bookings)),
			zap.Int("written", written),
			zap.Time("watermark", watermark),
		)
	}
	return written, nil
}
