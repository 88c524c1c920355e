package ui

import (
	"fmt"
	"math"
	"time"

	"github.com/serveease/admin/internal/app/system/htmlsanitize"
	"github.com/serveease/admin/internal/domain/models"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DateTimeLayout is how scheduled times are shown.
const DateTimeLayout = "2006-01-02 15:04"

// Page is what table builders need from a page view model.
type Page interface {
	T(key string, args ...any) string
	Link(p string) string
}

// BookingColumns are the columns of every booking table.
func BookingColumns(p Page) []Column {
	return []Column{
		{Key: "reference", Label: p.T("col.reference")},
		{Key: "customer", Label: p.T("col.customer")},
		{Key: "service", Label: p.T("col.service")},
		{Key: "provider", Label: p.T("col.provider")},
		{Key: "scheduled", Label: p.T("col.scheduled")},
		{Key: "status", Label: p.T("col.status")},
		{Key: "amount", Label: p.T("col.amount"), Align: AlignRight},
		{Key: "notes", Label: p.T("col.notes")},
	}
}

// BookingTable lays bookings out one per row. Customer-supplied names are
// reduced to plain text; notes keep basic formatting.
func BookingTable(p Page, locale string, bookings []models.Booking, emptyKey string) *Table {
	t := NewTable(BookingColumns(p)...)
	t.Empty = p.T(emptyKey)
	for _, b := range bookings {
		t.AddRow(
			LinkCell(b.Reference, p.Link("/bookings")+"?status="+b.Status),
			TextCell(htmlsanitize.PlainText(b.CustomerName)),
			TextCell(htmlsanitize.PlainText(b.ServiceName)),
			TextCell(htmlsanitize.PlainText(b.ProviderName)),
			TextCell(FormatTime(b.ScheduledAt)),
			BadgeCell(StatusBadge(b.Status, p.T("status."+b.Status))),
			TextCell(FormatMoney(locale, b.AmountCents, b.Currency)),
			HTMLCell(htmlsanitize.SanitizeToHTML(b.Notes)),
		)
	}
	return t
}

// FormatTime renders t in UTC, or "" for the zero time.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(DateTimeLayout)
}

// FormatMoney formats an amount in the currency's minor units for locale,
// so 1250 USD is $12.50 and 150 JPY is ¥150. Unknown currency codes fall
// back to "12.50 XYZ".
func FormatMoney(locale string, minor int64, code string) string {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return fmt.Sprintf("%.2f %s", float64(minor)/100, code)
	}
	scale, _ := currency.Standard.Rounding(unit)
	amount := float64(minor) / math.Pow10(scale)
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return message.NewPrinter(tag).Sprint(currency.Symbol(unit.Amount(amount)))
}
