package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"meetspot-backend/database"
	"meetspot-backend/middleware"
	"meetspot-backend/models"
)

// GetChatMessagesHandler returns the event's chat history for members and
// the creator, oldest first.
func GetChatMessagesHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserIDKey).(int64)
	if !ok || userID == 0 {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	eventID := r.PathValue("eventID")

	messages, err := models.ListMessages(database.DB, eventID, userID)
	switch {
	case err == nil:
	case errors.Is(err, models.ErrChatForbidden), errors.Is(err, models.ErrEventNotFound):
		http.Error(w, "You are not allowed to access this event's chat", http.StatusForbidden)
		return
	default:
		log.Printf("List messages for event %s failed: %v", eventID, err)
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(messages)
}

// PostChatMessageHandler persists a chat message and then fans it out to the
// event's room. The broadcast happens only after the message is committed,
// and only currently subscribed connections receive it.
func PostChatMessageHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserIDKey).(int64)
	if !ok || userID == 0 {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	eventID := r.PathValue("eventID")

	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	view, err := models.CreateMessage(database.DB, eventID, userID, req.Message)
	switch {
	case err == nil:
	case errors.Is(err, models.ErrEmptyMessage):
		http.Error(w, "Message cannot be empty", http.StatusBadRequest)
		return
	case errors.Is(err, models.ErrChatForbidden), errors.Is(err, models.ErrEventNotFound):
		http.Error(w, "You are not allowed to access this event's chat", http.StatusForbidden)
		return
	default:
		log.Printf("Post message to event %s failed: %v", eventID, err)
		http.Error(w, "Failed to send message", http.StatusInternalServerError)
		return
	}

	PublishToRoom(eventID, "chat_"+eventID, map[string]interface{}{
		"user_id": view.UserID,
		"name":    view.Name,
		"message": view.Message,
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"message": "Message sent"})
}
