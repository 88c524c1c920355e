// internal/domain/models/loginhistory.go
package models

import "time"

// LoginRecord captures one sign-in attempt against the dashboard.
// CreatedAt is indexed so old records can be purged in bulk.
type LoginRecord struct {
	AdminID   string    `bson:"admin_id,omitempty"`
	Email     string    `bson:"email"`
	Success   bool      `bson:"success"`
	Reason    string    `bson:"reason,omitempty"` // why a failed attempt failed
	TokenID   string    `bson:"token_id,omitempty"`
	IP        string    `bson:"ip"`
	UserAgent string    `bson:"user_agent,omitempty"`
	CreatedAt time.Time `bson:"created_at"`
}
