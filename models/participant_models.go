package models

import (
	"database/sql"
	"fmt"
	"time"
)

// Participant statuses. There is no pending state: joining yields confirmed
// directly, and declined is terminal (set only by creator removal).
const (
	StatusConfirmed = "confirmed"
	StatusDeclined  = "declined"
)

type Participant struct {
	EventID  string    `json:"event_id"`
	UserID   int64     `json:"user_id"`
	Status   string    `json:"status"`
	JoinedAt time.Time `json:"joined_at"`
}

// ParticipantView is the fixed-shape participant entry returned by listings.
type ParticipantView struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Status string `json:"status"`
}

// JoinEvent inserts a confirmed participant row for (eventID, userID).
// A confirmed participant cannot join twice and a declined participant can
// never rejoin. The read-decide-write runs in a single transaction.
func JoinEvent(db *sql.DB, eventID string, userID int64) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin join: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRow("SELECT EXISTS(SELECT 1 FROM events WHERE id = ?)", eventID).Scan(&exists); err != nil {
		return fmt.Errorf("check event: %w", err)
	}
	if !exists {
		return ErrEventNotFound
	}

	var status string
	err = tx.QueryRow(
		"SELECT status FROM participants WHERE event_id = ? AND user_id = ?",
		eventID, userID,
	).Scan(&status)
	switch {
	case err == sql.ErrNoRows:
		// first join
	case err != nil:
		return fmt.Errorf("read participant status: %w", err)
	case status == StatusDeclined:
		return ErrRemovedFromEvent
	default:
		return ErrAlreadyParticipant
	}

	if _, err := tx.Exec(
		"INSERT INTO participants (event_id, user_id, status, joined_at) VALUES (?, ?, ?, ?)",
		eventID, userID, StatusConfirmed, time.Now(),
	); err != nil {
		return fmt.Errorf("insert participant: %w", err)
	}
	return tx.Commit()
}

// LeaveEvent deletes the caller's confirmed participant row. Declined
// participants cannot leave; their row stays to block rejoining.
func LeaveEvent(db *sql.DB, eventID string, userID int64) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin leave: %w", err)
	}
	defer tx.Rollback()

	var status string
	err = tx.QueryRow(
		"SELECT status FROM participants WHERE event_id = ? AND user_id = ?",
		eventID, userID,
	).Scan(&status)
	if err == sql.ErrNoRows {
		return ErrNotParticipant
	}
	if err != nil {
		return fmt.Errorf("read participant status: %w", err)
	}
	if status == StatusDeclined {
		return ErrRemovedFromEvent
	}

	// Status guard on the delete so a concurrent removal cannot be undone.
	res, err := tx.Exec(
		"DELETE FROM participants WHERE event_id = ? AND user_id = ? AND status = ?",
		eventID, userID, StatusConfirmed,
	)
	if err != nil {
		return fmt.Errorf("delete participant: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrRemovedFromEvent
	}
	return tx.Commit()
}

// RemoveParticipant marks the target declined. Only the event creator may do
// this; the target must have a participant row. Removing an already declined
// participant succeeds as a no-op.
func RemoveParticipant(db *sql.DB, eventID string, callerID, targetID int64) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin remove: %w", err)
	}
	defer tx.Rollback()

	var createdBy int64
	err = tx.QueryRow("SELECT created_by FROM events WHERE id = ?", eventID).Scan(&createdBy)
	if err == sql.ErrNoRows {
		return ErrEventNotFound
	}
	if err != nil {
		return fmt.Errorf("load event creator: %w", err)
	}
	if createdBy != callerID {
		return ErrNotEventCreator
	}

	var exists bool
	if err := tx.QueryRow(
		"SELECT EXISTS(SELECT 1 FROM participants WHERE event_id = ? AND user_id = ?)",
		eventID, targetID,
	).Scan(&exists); err != nil {
		return fmt.Errorf("check participant: %w", err)
	}
	if !exists {
		return ErrNotParticipant
	}

	if _, err := tx.Exec(
		"UPDATE participants SET status = ? WHERE event_id = ? AND user_id = ?",
		StatusDeclined, eventID, targetID,
	); err != nil {
		return fmt.Errorf("decline participant: %w", err)
	}
	return tx.Commit()
}

// GetParticipantStatus returns the stored status for (eventID, userID), or ""
// when no row exists.
func GetParticipantStatus(db *sql.DB, eventID string, userID int64) (string, error) {
	var status string
	err := db.QueryRow(
		"SELECT status FROM participants WHERE event_id = ? AND user_id = ?",
		eventID, userID,
	).Scan(&status)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read participant status: %w", err)
	}
	return status, nil
}

// ListParticipants returns every participant of the event, declined included.
func ListParticipants(db *sql.DB, eventID string) ([]ParticipantView, error) {
	return listParticipants(db, eventID, false)
}

// ListConfirmedParticipants returns only confirmed participants; used for the
// updated list after a removal.
func ListConfirmedParticipants(db *sql.DB, eventID string) ([]ParticipantView, error) {
	return listParticipants(db, eventID, true)
}

func listParticipants(db *sql.DB, eventID string, confirmedOnly bool) ([]ParticipantView, error) {
	query := `
        SELECT u.id, u.name, u.email, p.status
        FROM participants p
        JOIN users u ON p.user_id = u.id
        WHERE p.event_id = ?`
	args := []interface{}{eventID}
	if confirmedOnly {
		query += " AND p.status = ?"
		args = append(args, StatusConfirmed)
	}
	query += " ORDER BY u.name ASC, u.id ASC"

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()

	participants := []ParticipantView{}
	for rows.Next() {
		var p ParticipantView
		if err := rows.Scan(&p.ID, &p.Name, &p.Email, &p.Status); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}
