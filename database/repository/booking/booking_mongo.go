package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"saubio/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	bookingsCollection  = "bookings"
	syncStateCollection = "sync_state"
	bookingsSyncStateID = "bookings"
)

// MongoBookingRepo implements BookingRepository using MongoDB.
type MongoBookingRepo struct {
	coll      *mongo.Collection
	syncState *mongo.Collection
}

// NewMongoBookingRepo creates the repository on the given database and ensures its indexes.
func NewMongoBookingRepo(db *mongo.Database) (BookingRepository, error) {
	repo := &MongoBookingRepo{
		coll:      db.Collection(bookingsCollection),
		syncState: db.Collection(syncStateCollection),
	}
	if err := repo.ensureIndexes(); err != nil {
		return nil, err
	}
	return repo, nil
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, timeout)
}

func (r *MongoBookingRepo) find(ctx context.Context, filter bson.M) ([]models.BookingRequest, error) {
	ctx, cancel := withTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "id", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := []models.BookingRequest{}
	for cursor.Next(ctx) {
		var b models.BookingRequest
		if err := cursor.Decode(&b); err != nil {
			return nil, fmt.Errorf("failed to decode booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("booking cursor failed: %w", err)
	}
	return bookings, nil
}

// ListByClient returns every booking of a client.
func (r *MongoBookingRepo) ListByClient(ctx context.Context, clientID string) ([]models.BookingRequest, error) {
	return r.find(ctx, bson.M{"clientId": clientID})
}

// ListAll returns every mirrored booking.
func (r *MongoBookingRepo) ListAll(ctx context.Context) ([]models.BookingRequest, error) {
	return r.find(ctx, bson.M{})
}

// UpsertMany replaces mirrored bookings by id and returns how many documents changed.
func (r *MongoBookingRepo) UpsertMany(ctx context.Context, bookings []models.BookingRequest) (int, error) {
	if len(bookings) == 0 {
		return 0, nil
	}
	ctx, cancel := withTimeout(ctx, 30*time.Second)
	defer cancel()

	writes := make([]mongo.WriteModel, 0, len(bookings))
	for _, b := range bookings {
		writes = append(writes, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"id": b.ID}).
			SetReplacement(b).
			SetUpsert(true))
	}

	res, err := r.coll.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return 0, fmt.Errorf("failed to upsert bookings: %w", err)
	}
	return int(res.UpsertedCount + res.ModifiedCount), nil
}

// GetSyncWatermark returns the upstream update time the last sync reached.
// A zero time means no sync happened yet.
func (r *MongoBookingRepo) GetSyncWatermark(ctx context.Context) (time.Time, error) {
	ctx, cancel := withTimeout(ctx, 5*time.Second)
	defer cancel()

	var doc struct {
		LastSyncedAt time.Time `bson:"lastSyncedAt"`
	}
	err := r.syncState.FindOne(ctx, bson.M{"_id": bookingsSyncStateID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read booking sync watermark: %w", err)
	}
	return doc.LastSyncedAt, nil
}

// SetSyncWatermark stores the upstream update time the last sync reached.
func (r *MongoBookingRepo) SetSyncWatermark(ctx context.Context, at time.Time) error {
	ctx, cancel := withTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.syncState.UpdateOne(ctx,
		bson.M{"_id": bookingsSyncStateID},
		bson.M{"$set": bson.M{"lastSyncedAt": at}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to store booking sync watermark: %w", err)
	}
	return nil
}
