package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"saubio/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	bookings  []models.BookingRequest
	watermark time.Time
	upserted  []models.BookingRequest
	listErr   error
}

func (r *fakeRepo) ListByClient(_ context.Context, clientID string) ([]models.BookingRequest, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []models.BookingRequest
	for _, b := range r.bookings {
		if b.ClientID == clientID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListAll(context.Context) ([]models.BookingRequest, error) {
	return r.bookings, r.listErr
}

func (r *fakeRepo) UpsertMany(_ context.Context, bookings []models.BookingRequest) (int, error) {
	r.upserted = append(r.upserted, bookings...)
	return len(bookings), nil
}

func (r *fakeRepo) GetSyncWatermark(context.Context) (time.Time, error) { return r.watermark, nil }

func (r *fakeRepo) SetSyncWatermark(_ context.Context, at time.Time) error {
	r.watermark = at
	return nil
}

type fakeSource struct {
	since    time.Time
	bookings []models.BookingRequest
	err      error
}

func (s *fakeSource) ListBookings(_ context.Context, since time.Time) ([]models.BookingRequest, error) {
	s.since = since
	return s.bookings, s.err
}

func TestListForClient_FiltersOwnBookings(t *testing.T) {
	repo := &fakeRepo{bookings: []models.BookingRequest{
		{ID: "b1", ClientID: "c1", Status: models.BookingStatusConfirmed, Address: models.BookingAddress{City: "Berlin"}},
		{ID: "b2", ClientID: "c2", Status: models.BookingStatusConfirmed, Address: models.BookingAddress{City: "Berlin"}},
		{ID: "b3", ClientID: "c1", Status: models.BookingStatusCancelled, Address: models.BookingAddress{City: "Berlin"}},
	}}
	svc := &DefaultBookingService{Repo: repo}

	got, err := svc.ListForClient(context.Background(), "c1", ParseFilterOptions("confirmed", "ber"))
	require.NoError(t, err)
	assert.Equal(t, []string{"b1"}, ids(got))

	_, err = svc.ListForClient(context.Background(), "", ParseFilterOptions("", ""))
	assert.Error(t, err)
}

func TestListAll_PropagatesRepositoryErrors(t *testing.T) {
	svc := &DefaultBookingService{Repo: &fakeRepo{listErr: errors.New("mongo down")}}
	_, err := svc.ListAll(context.Background(), ParseFilterOptions("", ""))
	assert.ErrorContains(t, err, "mongo down")
}

func TestSync_AdvancesWatermark(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := &fakeRepo{watermark: start}
	source := &fakeSource{bookings: []models.BookingRequest{
		{ID: "b1", UpdatedAt: start.Add(time.Hour)},
		{ID: "b2", UpdatedAt: start.Add(3 * time.Hour)},
		{ID: "b3", UpdatedAt: start.Add(2 * time.Hour)},
	}}
	svc := &DefaultBookingService{Repo: repo, Source: source}

	n, err := svc.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, start, source.since)
	assert.Equal(t, start.Add(3*time.Hour), repo.watermark)
	assert.Len(t, repo.upserted, 3)
}

func TestSync_NothingNew(t *testing.T) {
	repo := &fakeRepo{}
	svc := &DefaultBookingService{Repo: repo, Source: &fakeSource{}}

	n, err := svc.Sync(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.True(t, repo.watermark.IsZero())
}

func TestSync_SourceFailure(t *testing.T) {
	svc := &DefaultBookingService{Repo: &fakeRepo{}, Source: &fakeSource{err: errors.New("timeout")}}

	_, err := svc.Sync(context.Background())
	var syncErr *SyncError
	require.ErrorAs(t, err, &syncErr)
	assert.Equal(t, "fetching", syncErr.Stage)
}
