// Copyright (c) 2025 Convene Contributors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/dustin/go-humanize"

	"github.com/convenehq/convene/cliparse"
	"github.com/convenehq/convene/middleware"
	"github.com/convenehq/convene/models"
	"github.com/convenehq/convene/results"
	"github.com/convenehq/convene/snapshot"
)

type ResultsHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewResultsHandler(db *sql.DB, cfg cliparse.Config) *ResultsHandler {
	return &ResultsHandler{db: db, cfg: cfg}
}

// GetEvent handles GET /events/:slug
// Returns the full content tree for an authenticated participant.
func (h *ResultsHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	eventID, ok := resolveEventBySlug(h.db, w, slug)
	if !ok {
		return
	}

	snap, err := snapshot.Load(h.db, eventID)
	if err == snapshot.ErrNotFound {
		middleware.ErrorResponse(w, http.StatusNotFound, "Event not found")
		return
	}
	if err != nil {
		slog.Error("failed to load event snapshot", "error", err, "event_id", eventID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, snap)
}

// GetPreview handles GET /events/:slug/preview
// A public, unauthenticated summary for share links.
func (h *ResultsHandler) GetPreview(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	eventID, ok := resolveEventBySlug(h.db, w, slug)
	if !ok {
		return
	}

	var event models.Event
	err := h.db.QueryRow(`
		SELECT id, title, status, starts_at FROM event WHERE id = $1
	`, eventID).Scan(&event.ID, &event.Title, &event.Status, &event.StartsAt)
	if err != nil {
		slog.Error("failed to load event", "error", err, "event_id", eventID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	var sectionCount, questionCount, submissionCount int
	err = h.db.QueryRow(`
		SELECT
			(SELECT COUNT(*) FROM section WHERE event_id = $1),
			(SELECT COUNT(*) FROM question q JOIN survey sv ON q.survey_id = sv.id WHERE sv.event_id = $2),
			(SELECT COUNT(DISTINCT a.user_id) FROM answer a JOIN question q ON a.question_id = q.id JOIN survey sv ON q.survey_id = sv.id WHERE sv.event_id = $3)
	`, eventID, eventID, eventID).Scan(&sectionCount, &questionCount, &submissionCount)
	if err != nil {
		slog.Error("failed to count content", "error", err, "event_id", eventID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	preview := models.EventPreviewResponse{
		Title:           event.Title,
		Status:          event.Status,
		SectionCount:    sectionCount,
		QuestionCount:   questionCount,
		SubmissionCount: submissionCount,
	}
	if event.StartsAt != nil {
		preview.Starts = humanize.Time(*event.StartsAt)
	}

	middleware.JSONResponse(w, http.StatusOK, preview)
}

// GetResults handles GET /events/:slug/results
// The admin claim on the bearer token decides whether all replies or
// only the caller's own are included.
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	eventID, ok := resolveEventBySlug(h.db, w, slug)
	if !ok {
		return
	}

	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Identity required")
		return
	}

	view, err := results.BuildResults(h.db, eventID, identity.UserID, identity.IsAdmin)
	if err == snapshot.ErrNotFound {
		middleware.ErrorResponse(w, http.StatusNotFound, "Event not found")
		return
	}
	if err != nil {
		slog.Error("failed to build results", "error", err, "event_id", eventID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, view)
}

// resolveEventBySlug maps a share slug to an event id, writing the 404
// itself when the slug is unknown.
func resolveEventBySlug(db *sql.DB, w http.ResponseWriter, slug string) (string, bool) {
	if slug == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "event slug is required")
		return "", false
	}

	var eventID string
	err := db.QueryRow(`
		SELECT id FROM event WHERE share_slug = $1
	`, slug).Scan(&eventID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Event not found")
		return "", false
	}
	if err != nil {
		slog.Error("failed to resolve event slug", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return "", false
	}

	return eventID, true
}
