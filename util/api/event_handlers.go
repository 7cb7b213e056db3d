package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"meetspot-backend/database"
	"meetspot-backend/middleware"
	"meetspot-backend/models"
)

// parseLocation splits a "lat,lng" pair as sent by clients.
func parseLocation(location string) (float64, float64, error) {
	parts := strings.SplitN(location, ",", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("location must be 'lat,lng'")
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid latitude: %w", err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid longitude: %w", err)
	}
	return lat, lng, nil
}

// CreateEventHandler creates an event owned by the caller. Events are
// immutable once created; there is no edit or delete path.
func CreateEventHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserIDKey).(int64)
	if !ok || userID == 0 {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		Title       string  `json:"title"`
		Description string  `json:"description"`
		DateTime    string  `json:"date_time"`
		City        string  `json:"city"`
		Location    string  `json:"location"`
		Categories  []int64 `json:"categories"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Title == "" || req.DateTime == "" || req.City == "" || req.Location == "" {
		http.Error(w, "Title, date, city, and location are required", http.StatusBadRequest)
		return
	}

	dateTime, err := time.Parse(time.RFC3339, req.DateTime)
	if err != nil {
		http.Error(w, "Invalid date_time format, expected RFC3339", http.StatusBadRequest)
		return
	}
	lat, lng, err := parseLocation(req.Location)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	event := models.Event{
		Title:       req.Title,
		Description: req.Description,
		DateTime:    dateTime,
		City:        req.City,
		Latitude:    lat,
		Longitude:   lng,
		CreatedBy:   userID,
	}
	if err := models.CreateEvent(database.DB, &event, req.Categories); err != nil {
		http.Error(w, "Failed to create event", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(event)
}

// ListEventsHandler lists events filtered by city, categories, ownership or
// participation, and time window. Anonymous callers are allowed; the
// filter_by_user flag only applies with an identity.
func ListEventsHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value(middleware.UserIDKey).(int64)

	filter := models.EventFilter{
		City:         r.URL.Query().Get("city"),
		FilterByUser: r.URL.Query().Get("filter_by_user") == "true",
		UserID:       userID,
		ShowFinished: r.URL.Query().Get("show_finished") == "true",
	}
	for _, raw := range r.URL.Query()["categories"] {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			http.Error(w, "Invalid category id: "+raw, http.StatusBadRequest)
			return
		}
		filter.CategoryIDs = append(filter.CategoryIDs, id)
	}

	events, err := models.ListEvents(database.DB, filter)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(events)
}

// GetEventDetailHandler returns a single event with its participants.
// The only unauthenticated read besides the listing.
func GetEventDetailHandler(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")

	detail, err := models.GetEventDetail(database.DB, eventID)
	if err != nil {
		if errors.Is(err, models.ErrEventNotFound) {
			http.Error(w, "Event not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(detail)
}
