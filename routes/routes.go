package routes

import (
	"net/http"

	"coral-embed-be/handlers"
	"coral-embed-be/middleware"

	"github.com/gorilla/mux"
)

func SetupRoutes() *mux.Router {
	router := mux.NewRouter()

	router.Use(middleware.RequestLogger)
	router.Use(middleware.CORSMiddleware)

	// Handle all OPTIONS requests globally before route matching
	router.Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	api := router.PathPrefix("/api").Subrouter()

	// Public routes
	api.HandleFunc("/auth/login", handlers.Login).Methods("POST")
	api.HandleFunc("/stories/{id}", handlers.GetStory).Methods("GET")
	api.HandleFunc("/stories/slug/{slug}", handlers.GetStoryBySlug).Methods("GET")

	// Readers may be anonymous; moderators see unpublished comments too
	optional := api.PathPrefix("").Subrouter()
	optional.Use(middleware.OptionalAuthMiddleware)
	optional.HandleFunc("/stories/{id}/comments", handlers.GetStoryComments).Methods("GET")
	optional.HandleFunc("/comments/{id}", handlers.GetComment).Methods("GET")

	// Protected routes - require authentication
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.AuthMiddleware)
	protected.HandleFunc("/users/me", handlers.GetCurrentUser).Methods("GET")
	protected.HandleFunc("/users/{id}", handlers.UpdateUser).Methods("PUT")
	protected.HandleFunc("/comments", handlers.CreateComment).Methods("POST")
	protected.HandleFunc("/reports", handlers.CreateReport).Methods("POST")

	// Moderator routes - stories, stream configuration and moderation
	moderation := protected.PathPrefix("").Subrouter()
	moderation.Use(middleware.RequireModerator)
	moderation.HandleFunc("/stories", handlers.GetStories).Methods("GET")
	moderation.HandleFunc("/stories", handlers.CreateStory).Methods("POST")
	moderation.HandleFunc("/stories/{id}/config", handlers.UpdateStoryConfig).Methods("PUT")
	moderation.HandleFunc("/comments/{id}/moderation", handlers.GetModerationActions).Methods("GET")
	moderation.HandleFunc("/comments/{id}/embed", handlers.GetCommentEmbed).Methods("GET")
	moderation.HandleFunc("/comments/{id}/approve", handlers.ApproveComment).Methods("POST")
	moderation.HandleFunc("/comments/{id}/reject", handlers.RejectComment).Methods("POST")
	moderation.HandleFunc("/comments/{id}/feature", handlers.FeatureComment).Methods("POST")
	moderation.HandleFunc("/comments/{id}/unfeature", handlers.UnfeatureComment).Methods("POST")
	moderation.HandleFunc("/users/{id}/ban", handlers.BanUser).Methods("POST")

	// Admin-only routes - user management
	adminUsers := protected.PathPrefix("/users").Subrouter()
	adminUsers.Use(middleware.RequireAdmin)
	adminUsers.HandleFunc("", handlers.Register).Methods("POST")
	adminUsers.HandleFunc("", handlers.GetUsers).Methods("GET")
	adminUsers.HandleFunc("/{id}", handlers.GetUser).Methods("GET")
	adminUsers.HandleFunc("/{id}", handlers.DeleteUser).Methods("DELETE")

	// Admin-only routes - DSA reports
	adminReports := protected.PathPrefix("/reports").Subrouter()
	adminReports.Use(middleware.RequireAdmin)
	adminReports.HandleFunc("", handlers.GetReports).Methods("GET")
	adminReports.HandleFunc("/{id}", handlers.GetReport).Methods("GET")
	adminReports.HandleFunc("/{id}/status", handlers.UpdateReportStatus).Methods("PUT")

	// Admin-only routes - site settings
	adminSettings := protected.PathPrefix("/settings").Subrouter()
	adminSettings.Use(middleware.RequireAdmin)
	adminSettings.HandleFunc("", handlers.GetSettings).Methods("GET")
	adminSettings.HandleFunc("", handlers.UpdateSettings).Methods("PUT")

	return router
}
