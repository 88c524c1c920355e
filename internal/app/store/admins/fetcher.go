package adminstore

import (
	"context"

	"github.com/serveease/admin/internal/app/system/auth"
	"github.com/serveease/admin/internal/app/system/normalize"
	"github.com/serveease/admin/internal/app/system/timeouts"
	"github.com/serveease/admin/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Fetcher implements auth.AdminFetcher so every request sees the admin's
// current name, role and status.
type Fetcher struct {
	admins *mongo.Collection
}

// NewFetcher creates an AdminFetcher that queries the given database.
func NewFetcher(db *mongo.Database) *Fetcher {
	return &Fetcher{admins: db.Collection(CollectionName)}
}

// FetchAdmin returns nil if the admin is not found, disabled, or the lookup
// fails.
func (f *Fetcher) FetchAdmin(ctx context.Context, adminID string) *auth.SessionAdmin {
	oid, err := primitive.ObjectIDFromHex(adminID)
	if err != nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	var a models.Admin
	proj := options.FindOne().SetProjection(bson.M{
		"_id":       1,
		"full_name": 1,
		"email":     1,
		"role":      1,
		"status":    1,
	})
	if err := f.admins.FindOne(ctx, bson.M{"_id": oid}, proj).Decode(&a); err != nil {
		return nil
	}
	if !a.IsActive() {
		return nil
	}

	return &auth.SessionAdmin{
		ID:    a.ID.Hex(),
		Name:  a.FullName,
		Email: a.Email,
		Role:  normalize.Role(a.Role),
	}
}
