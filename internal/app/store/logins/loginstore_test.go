package loginstore_test

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	loginstore "github.com/serveease/admin/internal/app/store/logins"
	"github.com/serveease/admin/internal/domain/models"
	"github.com/serveease/admin/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := loginstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	adminID := primitive.NewObjectID().Hex()
	rec := models.LoginRecord{
		AdminID: adminID,
		Email:   "ada@serveease.test",
		Success: true,
		IP:      "192.168.1.1",
	}

	if err := store.Create(ctx, rec); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	var found models.LoginRecord
	err := db.Collection("login_records").FindOne(ctx, bson.M{"admin_id": adminID}).Decode(&found)
	if err != nil {
		t.Fatalf("failed to find login record: %v", err)
	}
	if found.IP != "192.168.1.1" {
		t.Errorf("IP: got %q, want %q", found.IP, "192.168.1.1")
	}
	if !found.Success {
		t.Error("expected Success to round-trip")
	}
	// CreatedAt should be set automatically
	if found.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
}

func TestStore_Record_FromRequest(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := loginstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	req := httptest.NewRequest("POST", "/en/login", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	req.Header.Set("User-Agent", strings.Repeat("x", 400))

	if err := store.Record(ctx, req, models.LoginRecord{Email: "bad@serveease.test", Reason: "invalid"}); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	var found models.LoginRecord
	if err := db.Collection("login_records").FindOne(ctx, bson.M{"email": "bad@serveease.test"}).Decode(&found); err != nil {
		t.Fatalf("failed to find login record: %v", err)
	}
	if found.IP != "203.0.113.7" {
		t.Errorf("IP: got %q, want first X-Forwarded-For hop", found.IP)
	}
	if len(found.UserAgent) != 256 {
		t.Errorf("expected user agent capped at 256, got %d", len(found.UserAgent))
	}
	if found.Success {
		t.Error("expected a failed attempt")
	}
}

func TestStore_CountFailuresSince(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := loginstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	now := time.Now().UTC()
	recs := []models.LoginRecord{
		{Email: "a@serveease.test", Success: false, CreatedAt: now.Add(-time.Minute)},
		{Email: "a@serveease.test", Success: false, CreatedAt: now.Add(-2 * time.Hour)},
		{Email: "a@serveease.test", Success: true, CreatedAt: now.Add(-time.Minute)},
		{Email: "b@serveease.test", Success: false, CreatedAt: now.Add(-time.Minute)},
	}
	for _, r := range recs {
		if err := store.Create(ctx, r); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	n, err := store.CountFailuresSince(ctx, "a@serveease.test", now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("CountFailuresSince failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 recent failure, got %d", n)
	}
}

func TestStore_PurgeBefore(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := loginstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cutoff := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, at := range []time.Time{
		cutoff.Add(-48 * time.Hour),
		cutoff.Add(-time.Second),
		cutoff,
		cutoff.Add(time.Hour),
	} {
		if err := store.Create(ctx, models.LoginRecord{Email: "p@serveease.test", CreatedAt: at}); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	removed, err := store.PurgeBefore(ctx, cutoff)
	if err != nil {
		t.Fatalf("PurgeBefore failed: %v", err)
	}
	if removed != 2 {
		t.Errorf("expected 2 removed, got %d", removed)
	}

	left, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(left) != 2 {
		t.Fatalf("expected 2 remaining, got %d", len(left))
	}
	if !left[0].CreatedAt.After(left[1].CreatedAt) {
		t.Error("expected Recent newest first")
	}
}
