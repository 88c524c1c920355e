package testutil

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"github.com/serveease/admin/internal/app/system/passwords"
	"github.com/serveease/admin/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// DefaultPassword is the password every fixture admin is created with.
const DefaultPassword = "correct horse battery"

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateAdminWith inserts an admin with the given role and status whose
// password is DefaultPassword.
func (f *Fixtures) CreateAdminWith(ctx context.Context, fullName, email, role, status string) models.Admin {
	f.t.Helper()

	hash, err := passwords.Hash(DefaultPassword)
	if err != nil {
		f.t.Fatalf("hash password: %v", err)
	}

	now := time.Now().UTC()
	a := models.Admin{
		ID:           primitive.NewObjectID(),
		FullName:     fullName,
		FullNameCI:   text.Fold(fullName),
		Email:        strings.ToLower(email),
		PasswordHash: hash,
		Role:         role,
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := f.db.Collection("admins").InsertOne(ctx, a); err != nil {
		f.t.Fatalf("failed to create admin: %v", err)
	}
	return a
}

// CreateAdmin creates an active admin.
func (f *Fixtures) CreateAdmin(ctx context.Context, fullName, email string) models.Admin {
	f.t.Helper()
	return f.CreateAdminWith(ctx, fullName, email, "admin", models.AdminStatusActive)
}

// CreateSuperAdmin creates an active superadmin.
func (f *Fixtures) CreateSuperAdmin(ctx context.Context, fullName, email string) models.Admin {
	f.t.Helper()
	return f.CreateAdminWith(ctx, fullName, email, "superadmin", models.AdminStatusActive)
}

// CreateDisabledAdmin creates an admin who cannot sign in.
func (f *Fixtures) CreateDisabledAdmin(ctx context.Context, fullName, email string) models.Admin {
	f.t.Helper()
	return f.CreateAdminWith(ctx, fullName, email, "admin", models.AdminStatusDisabled)
}

// CreateBooking inserts a booking with the given reference and status,
// scheduled at the given time.
func (f *Fixtures) CreateBooking(ctx context.Context, reference, status string, scheduledAt time.Time) models.Booking {
	f.t.Helper()

	now := time.Now().UTC()
	b := models.Booking{
		ID:           primitive.NewObjectID(),
		Reference:    reference,
		CustomerName: "Customer " + reference,
		ServiceName:  "Deep clean",
		ProviderName: "Sparkle Co",
		Status:       status,
		AmountCents:  12500,
		Currency:     "USD",
		ScheduledAt:  scheduledAt.UTC(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := f.db.Collection("bookings").InsertOne(ctx, b); err != nil {
		f.t.Fatalf("failed to create booking: %v", err)
	}
	return b
}
