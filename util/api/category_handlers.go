package api

import (
	"encoding/json"
	"net/http"

	"meetspot-backend/database"
	"meetspot-backend/models"
)

// GetCategoriesHandler lists categories localized by the lang query
// parameter (en or cs, defaulting to en).
func GetCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	lang := r.URL.Query().Get("lang")
	if lang == "" {
		lang = "en"
	}

	var column string
	switch lang {
	case "en":
		column = "en_name"
	case "cs":
		column = "cz_name"
	default:
		http.Error(w, "Invalid language parameter. Use 'en' or 'cs'", http.StatusBadRequest)
		return
	}

	rows, err := database.DB.Query("SELECT id, " + column + " AS name FROM categories ORDER BY id ASC")
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}
		categories = append(categories, c)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(categories)
}
