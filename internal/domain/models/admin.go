// internal/domain/models/admin.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Admin status values.
const (
	AdminStatusActive   = "active"
	AdminStatusDisabled = "disabled"
)

// Admin is an account allowed to sign in to the dashboard.
//
// Email is stored lowercased and is unique. PasswordHash is a bcrypt hash and
// is never rendered.
type Admin struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName     string             `bson:"full_name" json:"full_name"`
	FullNameCI   string             `bson:"full_name_ci" json:"-"` // lowercase, diacritics-stripped
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	Role         string             `bson:"role" json:"role"` // admin | superadmin
	Status       string             `bson:"status" json:"status"`

	LastLoginAt *time.Time `bson:"last_login_at,omitempty" json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `bson:"updated_at" json:"updated_at"`
}

// IsActive reports whether the admin may sign in.
func (a Admin) IsActive() bool {
	return a.Status == "" || a.Status == AdminStatusActive
}
