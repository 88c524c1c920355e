package metricsstore

import (
	"context"
	"time"

	adminstore "github.com/serveease/admin/internal/app/store/admins"
	bookingstore "github.com/serveease/admin/internal/app/store/bookings"
	loginstore "github.com/serveease/admin/internal/app/store/logins"
	"github.com/serveease/admin/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Counts is the set of totals shown on the dashboard.
type Counts struct {
	Bookings     int64
	Upcoming     int64
	ByStatus     map[string]int64
	Admins       int64
	FailedLogins int64
}

// FetchDashboardCounts returns the high-level counts used by the dashboard.
// Upcoming counts open bookings scheduled at or after now; FailedLogins
// counts failed sign-ins since the given time.
// Intentionally tolerant: on error it returns 0 for that counter.
func FetchDashboardCounts(ctx context.Context, db *mongo.Database, now, failuresSince time.Time) Counts {
	out := Counts{ByStatus: map[string]int64{}}

	// bookings by status, zero-filled
	if m, err := bookingstore.New(db).CountByStatus(ctx); err == nil {
		out.ByStatus = m
		for _, n := range m {
			out.Bookings += n
		}
	} else {
		for _, st := range models.BookingStatuses {
			out.ByStatus[st] = 0
		}
	}

	// upcoming
	upcoming := bson.M{
		"status":       bson.M{"$in": []string{models.BookingPending, models.BookingConfirmed}},
		"scheduled_at": bson.M{"$gte": now.UTC()},
	}
	if n, err := db.Collection(bookingstore.CollectionName).CountDocuments(ctx, upcoming); err == nil {
		out.Upcoming = n
	}

	// admins
	if n, err := db.Collection(adminstore.CollectionName).CountDocuments(ctx, bson.M{"status": models.AdminStatusActive}); err == nil {
		out.Admins = n
	}

	// failed sign-ins
	failed := bson.M{
		"success":    false,
		"created_at": bson.M{"$gte": failuresSince.UTC()},
	}
	if n, err := db.Collection(loginstore.CollectionName).CountDocuments(ctx, failed); err == nil {
		out.FailedLogins = n
	}

	return out
}
