package util

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"sync"
	"time"

	"meetspot-backend/database"
)

const SessionCookieName = "session_token"

// SessionTTL bounds how long a token stays valid; the session cookie carries
// the same lifetime.
const SessionTTL = 24 * time.Hour

type session struct {
	userID    int64
	expiresAt time.Time
}

// In-memory session store mapping tokens to sessions. Sessions do not survive
// a restart; clients log in again.
var (
	sessions = make(map[string]session)
	mu       sync.RWMutex
)

// GenerateSessionToken creates a cryptographically secure random session token.
func GenerateSessionToken() (string, error) {
	b := make([]byte, 32)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// CreateSession creates a new session for the user and returns the session token.
func CreateSession(userID int64) (string, error) {
	token, err := GenerateSessionToken()
	if err != nil {
		return "", err
	}

	mu.Lock()
	sessions[token] = session{userID: userID, expiresAt: time.Now().Add(SessionTTL)}
	mu.Unlock()
	return token, nil
}

// GetUserIDFromSession retrieves the user id for a session token, or 0 when
// the session is missing or expired. Expired entries are evicted on lookup.
func GetUserIDFromSession(token string) int64 {
	mu.RLock()
	s, ok := sessions[token]
	mu.RUnlock()
	if !ok {
		return 0
	}
	if time.Now().After(s.expiresAt) {
		DeleteSession(token)
		return 0
	}
	return s.userID
}

// DeleteSession removes a session from the store.
func DeleteSession(token string) {
	mu.Lock()
	delete(sessions, token)
	mu.Unlock()
}

// GetUserIDFromRequest extracts the user id from the session cookie. A
// missing or invalid cookie yields 0 without an error; the middleware decides
// whether anonymous is acceptable.
func GetUserIDFromRequest(r *http.Request) (int64, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		if err == http.ErrNoCookie {
			return 0, nil
		}
		return 0, err
	}

	userID := GetUserIDFromSession(cookie.Value)
	if userID == 0 {
		return 0, nil
	}

	// The user may have been deleted since the session was issued; revoke
	// immediately rather than waiting for the session to expire.
	var exists bool
	err = database.DB.QueryRow("SELECT EXISTS(SELECT 1 FROM users WHERE id = ?)", userID).Scan(&exists)
	if err != nil || !exists {
		DeleteSession(cookie.Value)
		return 0, nil
	}

	return userID, nil
}
