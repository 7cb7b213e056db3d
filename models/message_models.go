package models

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

type Message struct {
	ID      int64     `json:"id"`
	EventID string    `json:"event_id"`
	UserID  int64     `json:"user_id"`
	Content string    `json:"content"`
	SentAt  time.Time `json:"sent_at"`
}

// MessageView is the fixed-shape chat entry returned to clients and carried
// in room broadcasts.
type MessageView struct {
	ID      int64     `json:"id"`
	UserID  int64     `json:"user_id"`
	Name    string    `json:"name"`
	Message string    `json:"message"`
	SentAt  time.Time `json:"sent_at"`
}

// CanAccessChat reports whether userID may read or post in the event's chat:
// the creator always can, and so can any user with a participant row. The
// check is status-agnostic, so a declined participant keeps chat access.
func CanAccessChat(db *sql.DB, eventID string, userID int64) (bool, error) {
	createdBy, participant, err := chatAccessRow(db.QueryRow, eventID, userID)
	if err != nil {
		return false, err
	}
	return participant || createdBy == userID, nil
}

func chatAccessRow(queryRow func(string, ...interface{}) *sql.Row, eventID string, userID int64) (int64, bool, error) {
	var createdBy int64
	var participantID sql.NullInt64
	err := queryRow(`
        SELECT e.created_by, p.user_id
        FROM events e
        LEFT JOIN participants p ON e.id = p.event_id AND p.user_id = ?
        WHERE e.id = ?`,
		userID, eventID,
	).Scan(&createdBy, &participantID)
	if err == sql.ErrNoRows {
		return 0, false, ErrEventNotFound
	}
	if err != nil {
		return 0, false, fmt.Errorf("check chat access: %w", err)
	}
	return createdBy, participantID.Valid, nil
}

// CreateMessage persists a chat message for an authorized author and returns
// the stored view. Room publication happens at the handler, strictly after
// the commit here.
func CreateMessage(db *sql.DB, eventID string, userID int64, content string) (*MessageView, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyMessage
	}

	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin post message: %w", err)
	}
	defer tx.Rollback()

	createdBy, participant, err := chatAccessRow(tx.QueryRow, eventID, userID)
	if err != nil {
		return nil, err
	}
	if !participant && createdBy != userID {
		return nil, ErrChatForbidden
	}

	now := time.Now()
	res, err := tx.Exec(
		"INSERT INTO messages (event_id, user_id, content, sent_at) VALUES (?, ?, ?, ?)",
		eventID, userID, content, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	messageID, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("message id: %w", err)
	}

	var name string
	if err := tx.QueryRow("SELECT name FROM users WHERE id = ?", userID).Scan(&name); err != nil {
		return nil, fmt.Errorf("load author name: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit message: %w", err)
	}
	return &MessageView{ID: messageID, UserID: userID, Name: name, Message: content, SentAt: now}, nil
}

// ListMessages returns all messages of the event for an authorized caller,
// ordered by sent_at with id as tie-break so equal timestamps keep insertion
// order.
func ListMessages(db *sql.DB, eventID string, userID int64) ([]MessageView, error) {
	ok, err := CanAccessChat(db, eventID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrChatForbidden
	}

	rows, err := db.Query(`
        SELECT m.id, m.user_id, u.name, m.content, m.sent_at
        FROM messages m
        JOIN users u ON m.user_id = u.id
        WHERE m.event_id = ?
        ORDER BY m.sent_at ASC, m.id ASC`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	messages := []MessageView{}
	for rows.Next() {
		var m MessageView
		if err := rows.Scan(&m.ID, &m.UserID, &m.Name, &m.Message, &m.SentAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
