// internal/app/store/admins/adminstore.go
package adminstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/serveease/admin/internal/app/system/normalize"
	"github.com/serveease/admin/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the Mongo collection holding admin accounts.
const CollectionName = "admins"

var (
	// ErrDuplicateEmail is returned when another admin already has the email.
	ErrDuplicateEmail = errors.New("an admin with this email already exists")
	// ErrNotFound is returned when no admin matches.
	ErrNotFound = errors.New("admin not found")

	errBadRole   = errors.New(`role must be "admin"|"superadmin"`)
	errBadStatus = errors.New(`status must be "active"|"disabled"`)
	errNoEmail   = errors.New("email is required")
	errNoHash    = errors.New("password hash is required")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(CollectionName)}
}

// GetByEmail looks up an admin by case-insensitive email.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	var a models.Admin
	err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetByID loads an admin by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Admin, error) {
	var a models.Admin
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// List returns every admin ordered by name. Password hashes are not loaded.
func (s *Store) List(ctx context.Context) ([]models.Admin, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "full_name_ci", Value: 1}, {Key: "_id", Value: 1}}).
		SetProjection(bson.M{"password_hash": 0})

	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Admin
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts a new admin after normalizing and validating fields.
func (s *Store) Create(ctx context.Context, a models.Admin) (models.Admin, error) {
	a, err := prepare(a)
	if err != nil {
		return models.Admin{}, err
	}

	now := time.Now().UTC()
	a.ID = primitive.NewObjectID()
	a.CreatedAt = now
	a.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, a); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Admin{}, ErrDuplicateEmail
		}
		return models.Admin{}, err
	}
	return a, nil
}

// Upsert creates the admin or, when the email already exists, replaces its
// name, password hash, role and status. It reports whether a new admin
// was created.
func (s *Store) Upsert(ctx context.Context, a models.Admin) (models.Admin, bool, error) {
	a, err := prepare(a)
	if err != nil {
		return models.Admin{}, false, err
	}

	now := time.Now().UTC()
	filter := bson.M{"email": a.Email}
	update := bson.M{
		"$set": bson.M{
			"full_name":     a.FullName,
			"full_name_ci":  a.FullNameCI,
			"password_hash": a.PasswordHash,
			"role":          a.Role,
			"status":        a.Status,
			"updated_at":    now,
		},
		"$setOnInsert": bson.M{
			"email":      a.Email,
			"created_at": now,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var out models.Admin
	if err := s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&out); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Admin{}, false, ErrDuplicateEmail
		}
		return models.Admin{}, false, err
	}
	created := out.CreatedAt.Equal(out.UpdatedAt)
	return out, created, nil
}

// TouchLastLogin stamps the admin's last successful sign-in.
func (s *Store) TouchLastLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"last_login_at": at.UTC()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Promote makes the admin an active superadmin.
func (s *Store) Promote(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"role":       "superadmin",
		"status":     models.AdminStatusActive,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetStatus enables or disables an admin.
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	status = normalize.Status(status)
	if status != models.AdminStatusActive && status != models.AdminStatusDisabled {
		return errBadStatus
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func prepare(a models.Admin) (models.Admin, error) {
	a.Email = normalize.Email(a.Email)
	a.FullName = normalize.Name(a.FullName)
	a.FullNameCI = text.Fold(a.FullName)
	a.Role = normalize.Role(a.Role)
	a.Status = normalize.Status(a.Status)

	if a.Email == "" {
		return a, errNoEmail
	}
	if a.PasswordHash == "" {
		return a, errNoHash
	}
	if a.Role == "" {
		a.Role = "admin"
	}
	if a.Role != "admin" && a.Role != "superadmin" {
		return a, errBadRole
	}
	if a.Status == "" {
		a.Status = models.AdminStatusActive
	}
	if a.Status != models.AdminStatusActive && a.Status != models.AdminStatusDisabled {
		return a, errBadStatus
	}
	return a, nil
}
