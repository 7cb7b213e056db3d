package main

import (
	"fmt"
	"log"
	"net/http"

	"meetspot-backend/config"
	"meetspot-backend/database"
	"meetspot-backend/middleware"
	"meetspot-backend/pkg/db/sqlite"
	"meetspot-backend/util/api"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	log.Println("Initializing application...")
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	log.Printf("Using database at: %s", cfg.DBPath)

	// Apply migrations before initializing the database
	_, err = sqlite.ConnectAndMigrate(cfg.DBPath, cfg.MigrationsPath)
	if err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}

	if err := database.InitDB(cfg.DBPath); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.CloseDB()
	defer api.ShutdownHub()

	mux := http.NewServeMux()

	// Chat relay transport
	mux.Handle("/ws", http.HandlerFunc(api.WebSocketHandler))

	// Auth handlers
	mux.HandleFunc("POST /register", api.RegisterHandler)
	mux.HandleFunc("POST /login", api.LoginHandler)
	mux.Handle("POST /logout", middleware.AuthMiddleware(http.HandlerFunc(api.LogoutHandler)))

	// Category listing
	mux.HandleFunc("GET /categories", api.GetCategoriesHandler)

	// Profile handlers
	mux.Handle("GET /profile", middleware.AuthMiddleware(http.HandlerFunc(api.GetProfileHandler)))
	mux.Handle("PUT /profile", middleware.AuthMiddleware(http.HandlerFunc(api.UpdateProfileHandler)))

	// Event handlers
	mux.Handle("POST /events", middleware.AuthMiddleware(http.HandlerFunc(api.CreateEventHandler)))
	mux.Handle("GET /events", middleware.OptionalAuthMiddleware(http.HandlerFunc(api.ListEventsHandler)))
	mux.Handle("GET /events/{eventID}", middleware.OptionalAuthMiddleware(http.HandlerFunc(api.GetEventDetailHandler)))

	// Participation handlers
	mux.Handle("POST /events/{eventID}/join", middleware.AuthMiddleware(http.HandlerFunc(api.JoinEventHandler)))
	mux.Handle("DELETE /events/{eventID}/leave", middleware.AuthMiddleware(http.HandlerFunc(api.LeaveEventHandler)))
	mux.Handle("GET /events/{eventID}/participants", middleware.AuthMiddleware(http.HandlerFunc(api.ListParticipantsHandler)))
	mux.Handle("DELETE /events/{eventID}/remove/{userID}", middleware.AuthMiddleware(http.HandlerFunc(api.RemoveParticipantHandler)))

	// Chat handlers
	mux.Handle("GET /events/{eventID}/chat", middleware.AuthMiddleware(http.HandlerFunc(api.GetChatMessagesHandler)))
	mux.Handle("POST /events/{eventID}/chat", middleware.AuthMiddleware(http.HandlerFunc(api.PostChatMessageHandler)))

	// --- CORS Middleware ---
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.AllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true, // Required for cookies!
	})

	handler := c.Handler(mux)

	fmt.Printf("Server running on localhost:%s\n", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, handler))
}
