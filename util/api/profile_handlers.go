package api

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"

	"meetspot-backend/database"
	"meetspot-backend/middleware"
	"meetspot-backend/models"
)

// GetProfileHandler returns the caller's profile with category preferences.
func GetProfileHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserIDKey).(int64)
	if !ok || userID == 0 {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var user models.UserResponse
	err := database.DB.QueryRow(
		"SELECT id, email, name, city FROM users WHERE id = ?", userID,
	).Scan(&user.ID, &user.Email, &user.Name, &user.City)
	if err == sql.ErrNoRows {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	categories, err := userCategories(userID)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"id":         user.ID,
		"email":      user.Email,
		"name":       user.Name,
		"city":       user.City,
		"categories": categories,
	})
}

// UpdateProfileHandler updates name, city and category preferences. The
// category list is replaced wholesale.
func UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserIDKey).(int64)
	if !ok || userID == 0 {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		Name       string  `json:"name"`
		City       string  `json:"city"`
		Categories []int64 `json:"categories"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.City == "" {
		http.Error(w, "Name and city are required", http.StatusBadRequest)
		return
	}

	tx, err := database.DB.Begin()
	if err != nil {
		http.Error(w, "Failed to update profile", http.StatusInternalServerError)
		return
	}
	defer tx.Rollback()

	if _, err := tx.Exec("UPDATE users SET name = ?, city = ? WHERE id = ?", req.Name, req.City, userID); err != nil {
		log.Printf("Error updating user %d: %v", userID, err)
		http.Error(w, "Failed to update profile", http.StatusInternalServerError)
		return
	}
	if _, err := tx.Exec("DELETE FROM user_categories WHERE user_id = ?", userID); err != nil {
		http.Error(w, "Failed to update profile", http.StatusInternalServerError)
		return
	}
	for _, categoryID := range req.Categories {
		if _, err := tx.Exec(
			"INSERT OR IGNORE INTO user_categories (user_id, category_id) VALUES (?, ?)",
			userID, categoryID,
		); err != nil {
			http.Error(w, "Failed to update profile", http.StatusInternalServerError)
			return
		}
	}
	if err := tx.Commit(); err != nil {
		http.Error(w, "Failed to update profile", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Profile updated successfully"})
}
