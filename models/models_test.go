package models

import (
	"database/sql"
	"testing"
	"time"

	"meetspot-backend/database"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// newTestDB initializes a fresh in-memory database using the same bootstrap
// the server runs.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	if err := database.InitDB(":memory:"); err != nil {
		t.Fatalf("Failed to initialize test database: %v", err)
	}
	t.Cleanup(func() { database.CloseDB() })
	return database.DB
}

func createTestUser(t *testing.T, db *sql.DB, email, name string) int64 {
	t.Helper()
	res, err := db.Exec(
		"INSERT INTO users (email, name, password_hash, city, created_at) VALUES (?, ?, 'x', 'Prague', ?)",
		email, name, time.Now(),
	)
	if err != nil {
		t.Fatalf("Failed to create test user %s: %v", email, err)
	}
	id, _ := res.LastInsertId()
	return id
}

func createTestCategory(t *testing.T, db *sql.DB, enName, czName string) int64 {
	t.Helper()
	res, err := db.Exec("INSERT INTO categories (en_name, cz_name) VALUES (?, ?)", enName, czName)
	if err != nil {
		t.Fatalf("Failed to create test category %s: %v", enName, err)
	}
	id, _ := res.LastInsertId()
	return id
}

func createTestEvent(t *testing.T, db *sql.DB, creatorID int64, city string, dateTime time.Time, categoryIDs ...int64) *Event {
	t.Helper()
	event := &Event{
		Title:     "Test Event",
		DateTime:  dateTime,
		City:      city,
		Latitude:  50.08,
		Longitude: 14.43,
		CreatedBy: creatorID,
	}
	if err := CreateEvent(db, event, categoryIDs); err != nil {
		t.Fatalf("Failed to create test event: %v", err)
	}
	return event
}

func mustStatus(t *testing.T, db *sql.DB, eventID string, userID int64) string {
	t.Helper()
	status, err := GetParticipantStatus(db, eventID, userID)
	if err != nil {
		t.Fatalf("Failed to read participant status: %v", err)
	}
	return status
}
