// internal/app/store/bookings/bookingstore.go
package bookingstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/serveease/admin/internal/app/system/normalize"
	"github.com/serveease/admin/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the Mongo collection holding bookings.
const CollectionName = "bookings"

// DefaultLimit and MaxLimit bound List page sizes.
const (
	DefaultLimit = 50
	MaxLimit     = 200
)

var (
	// ErrDuplicateReference is returned when the booking reference is taken.
	ErrDuplicateReference = errors.New("a booking with this reference already exists")
	// ErrBadStatus is returned for a status outside models.BookingStatuses.
	ErrBadStatus = errors.New("unknown booking status")
)

// Filter narrows List. Zero values mean "any".
type Filter struct {
	Status string
	Skip   int
	Limit  int
}

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(CollectionName)}
}

// List returns bookings newest-scheduled first.
func (s *Store) List(ctx context.Context, f Filter) ([]models.Booking, error) {
	q := bson.M{}
	if st := normalize.Status(f.Status); st != "" {
		if !models.IsBookingStatus(st) {
			return nil, ErrBadStatus
		}
		q["status"] = st
	}

	limit := f.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "scheduled_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit))
	if f.Skip > 0 {
		opts.SetSkip(int64(f.Skip))
	}

	cur, err := s.c.Find(ctx, q, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Booking
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Count returns how many bookings have status (all when empty).
func (s *Store) Count(ctx context.Context, status string) (int64, error) {
	q := bson.M{}
	if st := normalize.Status(status); st != "" {
		q["status"] = st
	}
	return s.c.CountDocuments(ctx, q)
}

// CountByStatus returns a count for every known status, zero-filled.
func (s *Store) CountByStatus(ctx context.Context) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "n", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make(map[string]int64, len(models.BookingStatuses))
	for _, st := range models.BookingStatuses {
		out[st] = 0
	}
	for cur.Next(ctx) {
		var row struct {
			Status string `bson:"_id"`
			N      int64  `bson:"n"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		out[row.Status] = row.N
	}
	return out, cur.Err()
}

// Create inserts a booking. The reference is uppercased and must be unique.
func (s *Store) Create(ctx context.Context, b models.Booking) (models.Booking, error) {
	b.Reference = strings.ToUpper(strings.TrimSpace(b.Reference))
	if b.Reference == "" {
		return models.Booking{}, fmt.Errorf("booking reference is required")
	}
	b.Status = normalize.Status(b.Status)
	if b.Status == "" {
		b.Status = models.BookingPending
	}
	if !models.IsBookingStatus(b.Status) {
		return models.Booking{}, ErrBadStatus
	}
	b.CustomerName = normalize.Name(b.CustomerName)
	b.ServiceName = normalize.Name(b.ServiceName)
	b.ProviderName = normalize.Name(b.ProviderName)
	b.Currency = strings.ToUpper(strings.TrimSpace(b.Currency))

	now := time.Now().UTC()
	b.ID = primitive.NewObjectID()
	b.CreatedAt = now
	b.UpdatedAt = now
	if b.ScheduledAt.IsZero() {
		b.ScheduledAt = now
	}

	if _, err := s.c.InsertOne(ctx, b); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Booking{}, ErrDuplicateReference
		}
		return models.Booking{}, err
	}
	return b, nil
}
