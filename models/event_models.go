package models

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DateTime    time.Time `json:"date_time"`
	City        string    `json:"city"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	CreatedBy   int64     `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

type EventCreator struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// EventDetail is the fixed-shape response for a single event lookup,
// including its full participant list.
type EventDetail struct {
	ID           string            `json:"id"`
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	DateTime     time.Time         `json:"date_time"`
	City         string            `json:"city"`
	Latitude     float64           `json:"latitude"`
	Longitude    float64           `json:"longitude"`
	CreatedBy    EventCreator      `json:"created_by"`
	Participants []ParticipantView `json:"participants"`
}

// EventFilter describes the optional listing predicates. Zero values omit
// the corresponding predicate entirely.
type EventFilter struct {
	City         string
	CategoryIDs  []int64
	FilterByUser bool
	UserID       int64
	ShowFinished bool
}

// CreateEvent inserts the event and its category links in one transaction.
// The id and created_at fields are assigned here.
func CreateEvent(db *sql.DB, e *Event, categoryIDs []int64) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin create event: %w", err)
	}
	defer tx.Rollback()

	e.ID = uuid.New().String()
	e.CreatedAt = time.Now()
	_, err = tx.Exec(`
        INSERT INTO events (id, title, description, date_time, city, latitude, longitude, created_by, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Title, e.Description, e.DateTime, e.City, e.Latitude, e.Longitude, e.CreatedBy, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}

	for _, categoryID := range categoryIDs {
		if _, err := tx.Exec(
			"INSERT OR IGNORE INTO event_categories (event_id, category_id) VALUES (?, ?)",
			e.ID, categoryID,
		); err != nil {
			return fmt.Errorf("link category %d: %w", categoryID, err)
		}
	}
	return tx.Commit()
}

// ListEvents builds a conjunction of the filter's predicates. Category ids
// bind as a parameterized multi-value IN list; the DISTINCT keeps the joins
// to participants and categories from duplicating events.
func ListEvents(db *sql.DB, f EventFilter) ([]Event, error) {
	query := `
        SELECT DISTINCT e.id, e.title, e.description, e.date_time, e.city, e.latitude, e.longitude, e.created_by, e.created_at
        FROM events e
        LEFT JOIN participants p ON e.id = p.event_id
        LEFT JOIN event_categories ec ON e.id = ec.event_id`

	var conditions []string
	var params []interface{}

	if f.FilterByUser && f.UserID != 0 {
		conditions = append(conditions, "(e.created_by = ? OR p.user_id = ?)")
		params = append(params, f.UserID, f.UserID)
	}
	if f.City != "" {
		conditions = append(conditions, "e.city = ?")
		params = append(params, f.City)
	}
	if len(f.CategoryIDs) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(f.CategoryIDs)), ",")
		conditions = append(conditions, "ec.category_id IN ("+placeholders+")")
		for _, id := range f.CategoryIDs {
			params = append(params, id)
		}
	}
	if !f.ShowFinished {
		conditions = append(conditions, "e.date_time >= ?")
		params = append(params, time.Now())
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY e.date_time ASC, e.id ASC"

	rows, err := db.Query(query, params...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	events := []Event{}
	for rows.Next() {
		var e Event
		var description sql.NullString
		if err := rows.Scan(&e.ID, &e.Title, &description, &e.DateTime, &e.City, &e.Latitude, &e.Longitude, &e.CreatedBy, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Description = description.String
		events = append(events, e)
	}
	return events, rows.Err()
}

// GetEventDetail loads a single event with its creator and participants.
// Readable by anonymous callers.
func GetEventDetail(db *sql.DB, eventID string) (*EventDetail, error) {
	var d EventDetail
	var description sql.NullString
	err := db.QueryRow(`
        SELECT e.id, e.title, e.description, e.date_time, e.city, e.latitude, e.longitude,
               u.id, u.name
        FROM events e
        JOIN users u ON e.created_by = u.id
        WHERE e.id = ?`,
		eventID,
	).Scan(&d.ID, &d.Title, &description, &d.DateTime, &d.City, &d.Latitude, &d.Longitude, &d.CreatedBy.ID, &d.CreatedBy.Name)
	if err == sql.ErrNoRows {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load event: %w", err)
	}
	d.Description = description.String

	participants, err := ListParticipants(db, eventID)
	if err != nil {
		return nil, err
	}
	d.Participants = participants
	return &d, nil
}
