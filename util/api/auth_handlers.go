package api

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"meetspot-backend/database"
	"meetspot-backend/models"
	"meetspot-backend/util"

	"golang.org/x/crypto/bcrypt"
)

func setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     util.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(util.SessionTTL),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   false,
	})
}

// RegisterHandler handles user registration. All fields, including city and
// category preferences, are required.
func RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Error reading request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if req.Email == "" || req.Name == "" || req.Password == "" || req.City == "" || len(req.Categories) == 0 {
		http.Error(w, "All fields, including city and categories, are required", http.StatusBadRequest)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Error hashing password: %v", err)
		http.Error(w, "Error processing password", http.StatusInternalServerError)
		return
	}

	tx, err := database.DB.Begin()
	if err != nil {
		http.Error(w, "Failed to register user", http.StatusInternalServerError)
		return
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		"INSERT INTO users (email, name, password_hash, city, created_at) VALUES (?, ?, ?, ?, ?)",
		req.Email, req.Name, string(hashedPassword), req.City, time.Now(),
	)
	if err != nil {
		log.Printf("Error inserting user: %v", err)
		http.Error(w, "Failed to register user", http.StatusInternalServerError)
		return
	}
	userID, err := result.LastInsertId()
	if err != nil {
		http.Error(w, "Failed to register user", http.StatusInternalServerError)
		return
	}

	for _, categoryID := range req.Categories {
		if _, err := tx.Exec(
			"INSERT OR IGNORE INTO user_categories (user_id, category_id) VALUES (?, ?)",
			userID, categoryID,
		); err != nil {
			log.Printf("Error inserting user category: %v", err)
			http.Error(w, "Failed to register user", http.StatusInternalServerError)
			return
		}
	}

	if err := tx.Commit(); err != nil {
		http.Error(w, "Failed to register user", http.StatusInternalServerError)
		return
	}

	sessionToken, err := util.CreateSession(userID)
	if err != nil {
		log.Printf("Failed to create session for new user %d: %v", userID, err)
	} else {
		setSessionCookie(w, sessionToken)
		log.Printf("User %s (ID: %d) registered and session created.", req.Email, userID)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(models.UserResponse{
		ID:    userID,
		Email: req.Email,
		Name:  req.Name,
		City:  req.City,
	})
}

// LoginHandler handles user login and issues a session cookie.
func LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Error reading request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if req.Email == "" || req.Password == "" {
		http.Error(w, "Email and password are required", http.StatusBadRequest)
		return
	}

	var userID int64
	var storedPasswordHash, name, city string
	err := database.DB.QueryRow(
		"SELECT id, password_hash, name, city FROM users WHERE email = ?", req.Email,
	).Scan(&userID, &storedPasswordHash, &name, &city)
	if err != nil {
		if err == sql.ErrNoRows {
			http.Error(w, "Invalid email or password", http.StatusUnauthorized)
		} else {
			log.Printf("Login failed - database error: %v", err)
			http.Error(w, "Database error", http.StatusInternalServerError)
		}
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(storedPasswordHash), []byte(req.Password)); err != nil {
		http.Error(w, "Invalid email or password", http.StatusUnauthorized)
		return
	}

	sessionToken, err := util.CreateSession(userID)
	if err != nil {
		log.Printf("Login failed - session creation error: %v", err)
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}
	setSessionCookie(w, sessionToken)

	categories, err := userCategories(userID)
	if err != nil {
		log.Printf("Error loading categories for user %d: %v", userID, err)
		categories = []models.CategoryNames{}
	}

	log.Printf("Login successful for user %s (ID: %d)", req.Email, userID)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"user": map[string]interface{}{
			"id":         userID,
			"email":      req.Email,
			"name":       name,
			"city":       city,
			"categories": categories,
		},
	})
}

// LogoutHandler handles user logout.
func LogoutHandler(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(util.SessionCookieName)
	if err != nil {
		if err == http.ErrNoCookie {
			http.Error(w, "No active session", http.StatusUnauthorized)
			return
		}
		log.Printf("Error reading session cookie on logout: %v", err)
		http.Error(w, "Server error reading cookie", http.StatusInternalServerError)
		return
	}

	util.DeleteSession(cookie.Value)

	http.SetCookie(w, &http.Cookie{
		Name:     util.SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   false,
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Logged out successfully"})
}

func userCategories(userID int64) ([]models.CategoryNames, error) {
	rows, err := database.DB.Query(`
        SELECT c.id, c.en_name, c.cz_name
        FROM user_categories uc
        JOIN categories c ON uc.category_id = c.id
        WHERE uc.user_id = ?
        ORDER BY c.id ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []models.CategoryNames{}
	for rows.Next() {
		var c models.CategoryNames
		if err := rows.Scan(&c.ID, &c.EnName, &c.CzName); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}
