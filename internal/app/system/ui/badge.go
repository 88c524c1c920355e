// Package ui holds the dashboard's generic display components. Each type is
// a plain view model; the matching partials live in the shared templates
// ("ui_table", "ui_badge").
package ui

import (
	"strings"

	"github.com/serveease/admin/internal/domain/models"
)

// Variant selects a badge's color.
type Variant string

const (
	VariantSuccess Variant = "success"
	VariantWarning Variant = "warning"
	VariantDanger  Variant = "danger"
	VariantInfo    Variant = "info"
	VariantNeutral Variant = "neutral"
)

// Badge is a short colored label.
type Badge struct {
	Label   string
	Variant Variant
}

// Class is the CSS class list for the badge.
func (b Badge) Class() string {
	v := b.Variant
	if v == "" {
		v = VariantNeutral
	}
	return "badge badge-" + string(v)
}

var statusVariants = map[string]Variant{
	models.BookingPending:      VariantWarning,
	models.BookingConfirmed:    VariantInfo,
	models.BookingInProgress:   VariantInfo,
	models.BookingCompleted:    VariantSuccess,
	models.BookingCancelled:    VariantDanger,
	models.AdminStatusActive:   VariantSuccess,
	models.AdminStatusDisabled: VariantNeutral,
}

// StatusVariant maps a booking or admin status to a badge variant. Unknown
// statuses are neutral.
func StatusVariant(status string) Variant {
	if v, ok := statusVariants[strings.ToLower(strings.TrimSpace(status))]; ok {
		return v
	}
	return VariantNeutral
}

// StatusBadge builds the badge for status, shown with label.
func StatusBadge(status, label string) Badge {
	if label == "" {
		label = status
	}
	return Badge{Label: label, Variant: StatusVariant(status)}
}
