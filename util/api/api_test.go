package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"meetspot-backend/database"
	"meetspot-backend/middleware"
	"meetspot-backend/models"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// setupTestServer builds a full server over an in-memory database with the
// same routes main registers.
func setupTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	if err := database.InitDB(":memory:"); err != nil {
		t.Fatalf("Failed to initialize test database: %v", err)
	}
	t.Cleanup(func() { database.CloseDB() })

	if _, err := database.DB.Exec("INSERT INTO categories (en_name, cz_name) VALUES ('Sports', 'Sport')"); err != nil {
		t.Fatalf("Failed to seed categories: %v", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/ws", http.HandlerFunc(WebSocketHandler))
	mux.HandleFunc("POST /register", RegisterHandler)
	mux.HandleFunc("POST /login", LoginHandler)
	mux.Handle("POST /logout", middleware.AuthMiddleware(http.HandlerFunc(LogoutHandler)))
	mux.HandleFunc("GET /categories", GetCategoriesHandler)
	mux.Handle("GET /profile", middleware.AuthMiddleware(http.HandlerFunc(GetProfileHandler)))
	mux.Handle("PUT /profile", middleware.AuthMiddleware(http.HandlerFunc(UpdateProfileHandler)))
	mux.Handle("POST /events", middleware.AuthMiddleware(http.HandlerFunc(CreateEventHandler)))
	mux.Handle("GET /events", middleware.OptionalAuthMiddleware(http.HandlerFunc(ListEventsHandler)))
	mux.Handle("GET /events/{eventID}", middleware.OptionalAuthMiddleware(http.HandlerFunc(GetEventDetailHandler)))
	mux.Handle("POST /events/{eventID}/join", middleware.AuthMiddleware(http.HandlerFunc(JoinEventHandler)))
	mux.Handle("DELETE /events/{eventID}/leave", middleware.AuthMiddleware(http.HandlerFunc(LeaveEventHandler)))
	mux.Handle("GET /events/{eventID}/participants", middleware.AuthMiddleware(http.HandlerFunc(ListParticipantsHandler)))
	mux.Handle("DELETE /events/{eventID}/remove/{userID}", middleware.AuthMiddleware(http.HandlerFunc(RemoveParticipantHandler)))
	mux.Handle("GET /events/{eventID}/chat", middleware.AuthMiddleware(http.HandlerFunc(GetChatMessagesHandler)))
	mux.Handle("POST /events/{eventID}/chat", middleware.AuthMiddleware(http.HandlerFunc(PostChatMessageHandler)))

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

// newClient returns an HTTP client with its own cookie jar, i.e. its own
// session identity.
func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("Failed to create cookie jar: %v", err)
	}
	return &http.Client{Jar: jar}
}

func doJSON(t *testing.T, client *http.Client, method, url, body string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("Failed to build %s %s: %v", method, url, err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, url, err)
	}
	return resp
}

// registerUser registers a user through the API; registration issues the
// session cookie directly.
func registerUser(t *testing.T, ts *httptest.Server, client *http.Client, email, name string) int64 {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"name":%q,"password":"secret123","city":"Prague","categories":[1]}`, email, name)
	resp := doJSON(t, client, http.MethodPost, ts.URL+"/register", body)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		raw, _ := io.ReadAll(resp.Body)
		t.Fatalf("register %s status = %d; want 201. Body: %s", email, resp.StatusCode, raw)
	}
	var user models.UserResponse
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		t.Fatalf("Failed to decode register response: %v", err)
	}
	return user.ID
}

func createEventViaAPI(t *testing.T, ts *httptest.Server, client *http.Client, title string) string {
	t.Helper()
	body := fmt.Sprintf(`{"title":%q,"date_time":%q,"city":"Prague","location":"50.08,14.43","categories":[1]}`,
		title, time.Now().Add(24*time.Hour).Format(time.RFC3339))
	resp := doJSON(t, client, http.MethodPost, ts.URL+"/events", body)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		raw, _ := io.ReadAll(resp.Body)
		t.Fatalf("create event status = %d; want 201. Body: %s", resp.StatusCode, raw)
	}
	var event models.Event
	if err := json.NewDecoder(resp.Body).Decode(&event); err != nil {
		t.Fatalf("Failed to decode event response: %v", err)
	}
	return event.ID
}
