// Copyright (c) 2025 Convene Contributors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/convenehq/convene/cliparse"
	"github.com/convenehq/convene/handlers"
	"github.com/convenehq/convene/middleware"
)

func NewRouter(db *sql.DB, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	eventHandler := handlers.NewEventHandler(db, cfg)
	submissionHandler := handlers.NewSubmissionHandler(db, cfg)
	resultsHandler := handlers.NewResultsHandler(db, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Event management (organizer operations, X-Organizer-Key)
	mux.HandleFunc("POST /events", middleware.WithLogging(eventHandler.CreateEvent))
	mux.HandleFunc("GET /events/{id}/admin", middleware.WithLogging(eventHandler.GetEventAdmin))
	mux.HandleFunc("POST /events/{id}/sections", middleware.WithLogging(eventHandler.AddSection))
	mux.HandleFunc("POST /events/{id}/sections/{sectionID}/decisions", middleware.WithLogging(eventHandler.AddDecision))
	mux.HandleFunc("POST /events/{id}/surveys", middleware.WithLogging(eventHandler.AddSurvey))
	mux.HandleFunc("POST /events/{id}/surveys/{surveyID}/questions", middleware.WithLogging(eventHandler.AddQuestion))
	mux.HandleFunc("POST /events/{id}/discussions", middleware.WithLogging(eventHandler.AddDiscussion))
	mux.HandleFunc("POST /events/{id}/tables", middleware.WithLogging(eventHandler.AddTable))
	mux.HandleFunc("POST /events/{id}/attachments", middleware.WithLogging(eventHandler.AddAttachment))
	mux.HandleFunc("POST /events/{id}/activate", middleware.WithLogging(eventHandler.ActivateEvent))
	mux.HandleFunc("POST /events/{id}/complete", middleware.WithLogging(eventHandler.CompleteEvent))
	mux.HandleFunc("POST /events/{id}/cancel", middleware.WithLogging(eventHandler.CancelEvent))

	// Participant operations (share slug + bearer identity token)
	mux.HandleFunc("GET /events/{slug}", middleware.WithLogging(middleware.RequireIdentity(cfg.TokenSecret, resultsHandler.GetEvent)))
	mux.HandleFunc("POST /events/{slug}/submissions", middleware.WithLogging(middleware.RequireIdentity(cfg.TokenSecret, submissionHandler.Submit)))
	mux.HandleFunc("GET /events/{slug}/my-submission", middleware.WithLogging(middleware.RequireIdentity(cfg.TokenSecret, submissionHandler.GetMySubmission)))
	mux.HandleFunc("GET /events/{slug}/results", middleware.WithLogging(middleware.RequireIdentity(cfg.TokenSecret, resultsHandler.GetResults)))

	// Public preview for share links
	mux.HandleFunc("GET /events/{slug}/preview", middleware.WithLogging(resultsHandler.GetPreview))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("convene API v1"))
	})

	return mux
}
