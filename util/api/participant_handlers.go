package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"meetspot-backend/database"
	"meetspot-backend/middleware"
	"meetspot-backend/models"
)

// JoinEventHandler adds the caller as a confirmed participant.
// A previously removed user can never rejoin.
func JoinEventHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserIDKey).(int64)
	if !ok || userID == 0 {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	eventID := r.PathValue("eventID")

	err := models.JoinEvent(database.DB, eventID, userID)
	switch {
	case err == nil:
	case errors.Is(err, models.ErrEventNotFound):
		http.Error(w, "Event not found", http.StatusNotFound)
		return
	case errors.Is(err, models.ErrAlreadyParticipant):
		http.Error(w, "You are already a participant", http.StatusBadRequest)
		return
	case errors.Is(err, models.ErrRemovedFromEvent):
		http.Error(w, "You have been removed from this event and cannot rejoin.", http.StatusForbidden)
		return
	default:
		log.Printf("Join event %s failed for user %d: %v", eventID, userID, err)
		http.Error(w, "Failed to join event", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"message": "You have successfully joined the event"})
}

// LeaveEventHandler removes the caller's confirmed participant row. Declined
// participants cannot leave.
func LeaveEventHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserIDKey).(int64)
	if !ok || userID == 0 {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	eventID := r.PathValue("eventID")

	err := models.LeaveEvent(database.DB, eventID, userID)
	switch {
	case err == nil:
	case errors.Is(err, models.ErrNotParticipant):
		http.Error(w, "User is not a participant of this event", http.StatusBadRequest)
		return
	case errors.Is(err, models.ErrRemovedFromEvent):
		http.Error(w, "You were removed from this event and cannot leave.", http.StatusForbidden)
		return
	default:
		log.Printf("Leave event %s failed for user %d: %v", eventID, userID, err)
		http.Error(w, "Failed to leave event", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Successfully left the event"})
}

// ListParticipantsHandler returns every participant of the event, declined
// included.
func ListParticipantsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserIDKey).(int64)
	if !ok || userID == 0 {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	eventID := r.PathValue("eventID")

	participants, err := models.ListParticipants(database.DB, eventID)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(participants)
}

// RemoveParticipantHandler lets the event creator decline a participant and
// returns the updated confirmed list.
func RemoveParticipantHandler(w http.ResponseWriter, r *http.Request) {
	callerID, ok := r.Context().Value(middleware.UserIDKey).(int64)
	if !ok || callerID == 0 {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	eventID := r.PathValue("eventID")
	targetID, err := strconv.ParseInt(r.PathValue("userID"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid user id", http.StatusBadRequest)
		return
	}

	err = models.RemoveParticipant(database.DB, eventID, callerID, targetID)
	switch {
	case err == nil:
	case errors.Is(err, models.ErrEventNotFound):
		http.Error(w, "Event not found", http.StatusNotFound)
		return
	case errors.Is(err, models.ErrNotEventCreator):
		http.Error(w, "You are not authorized to remove participants", http.StatusForbidden)
		return
	case errors.Is(err, models.ErrNotParticipant):
		http.Error(w, "User is not a participant", http.StatusBadRequest)
		return
	default:
		log.Printf("Remove participant %d from event %s failed: %v", targetID, eventID, err)
		http.Error(w, "Failed to remove participant", http.StatusInternalServerError)
		return
	}

	participants, err := models.ListConfirmedParticipants(database.DB, eventID)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":      "Participant removed successfully",
		"participants": participants,
	})
}
