// internal/domain/models/booking.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Booking status values, in lifecycle order.
const (
	BookingPending    = "pending"
	BookingConfirmed  = "confirmed"
	BookingInProgress = "in_progress"
	BookingCompleted  = "completed"
	BookingCancelled  = "cancelled"
)

// BookingStatuses lists every status a booking can hold.
var BookingStatuses = []string{
	BookingPending,
	BookingConfirmed,
	BookingInProgress,
	BookingCompleted,
	BookingCancelled,
}

// IsBookingStatus reports whether s is a known booking status.
func IsBookingStatus(s string) bool {
	for _, v := range BookingStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Booking is a customer's reservation of a service with a provider.
// The dashboard only reads bookings; the public booking flow writes them.
type Booking struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Reference    string             `bson:"reference" json:"reference"`
	CustomerName string             `bson:"customer_name" json:"customer_name"`
	ServiceName  string             `bson:"service_name" json:"service_name"`
	ProviderName string             `bson:"provider_name" json:"provider_name"`
	Status       string             `bson:"status" json:"status"`
	Notes        string             `bson:"notes,omitempty" json:"notes,omitempty"`

	// AmountCents is the quoted price in the smallest currency unit.
	AmountCents int64  `bson:"amount_cents" json:"amount_cents"`
	Currency    string `bson:"currency" json:"currency"`

	ScheduledAt time.Time `bson:"scheduled_at" json:"scheduled_at"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}
