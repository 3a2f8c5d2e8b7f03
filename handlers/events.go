// Copyright (c) 2025 Convene Contributors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/convenehq/convene/auth"
	"github.com/convenehq/convene/cliparse"
	"github.com/convenehq/convene/middleware"
	"github.com/convenehq/convene/models"
	"github.com/convenehq/convene/snapshot"
)

type EventHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewEventHandler(db *sql.DB, cfg cliparse.Config) *EventHandler {
	return &EventHandler{db: db, cfg: cfg}
}

// CreateEvent handles POST /events
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req models.CreateEventRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Title == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "title is required")
		return
	}

	eventID := uuid.NewString()
	organizerKey := auth.GenerateOrganizerKey(eventID, h.cfg.OrganizerKeySalt)

	requiresSignature := 0
	if req.RequiresSignature {
		requiresSignature = 1
	}

	_, err := h.db.Exec(`
		INSERT INTO event (id, title, description, starts_at, ends_at, status, requires_signature, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, eventID, req.Title, req.Description, req.StartsAt, req.EndsAt, models.StatusDraft, requiresSignature, time.Now())

	if err != nil {
		slog.Error("failed to insert event", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create event")
		return
	}

	slog.Info("event created", "event_id", eventID)

	middleware.JSONResponse(w, http.StatusCreated, models.CreateEventResponse{
		EventID:      eventID,
		OrganizerKey: organizerKey,
	})
}

// GetEventAdmin handles GET /events/:id/admin
// Returns the full content snapshot for the organizer.
func (h *EventHandler) GetEventAdmin(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("id")
	if eventID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "event_id is required")
		return
	}

	if !h.requireOrganizer(w, r, eventID) {
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

// AddSection handles POST /events/:id/sections
func (h *EventHandler) AddSection(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("id")
	if !h.requireDraftEvent(w, r, eventID) {
		return
	}

	var req models.AddSectionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Title == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "title is required")
		return
	}

	sectionID := uuid.NewString()
	_, err := h.db.Exec(`
		INSERT INTO section (id, event_id, title, body, order_idx, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, sectionID, eventID, req.Title, req.Body, req.OrderIndex, time.Now())

	if err != nil {
		slog.Error("failed to insert section", "error", err, "event_id", eventID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create section")
		return
	}

	slog.Info("section added", "event_id", eventID, "section_id", sectionID)

	middleware.JSONResponse(w, http.StatusCreated, models.AddChildResponse{ID: sectionID})
}

// AddDecision handles POST /events/:id/sections/:sectionID/decisions
// Decision items are created inline with the decision.
func (h *EventHandler) AddDecision(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("id")
	sectionID := r.PathValue("sectionID")
	if !h.requireDraftEvent(w, r, eventID) {
		return
	}

	if !h.sectionInEvent(w, sectionID, eventID) {
		return
	}

	var req models.AddDecisionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Title == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "title is required")
		return
	}

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	decisionID := uuid.NewString()
	now := time.Now()
	_, err = tx.Exec(`
		INSERT INTO decision (id, section_id, title, order_idx, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, decisionID, sectionID, req.Title, req.OrderIndex, now)
	if err != nil {
		slog.Error("failed to insert decision", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create decision")
		return
	}

	for _, item := range req.Items {
		_, err = tx.Exec(`
			INSERT INTO decision_item (id, decision_id, body, order_idx, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`, uuid.NewString(), decisionID, item.Body, item.OrderIndex, now)
		if err != nil {
			slog.Error("failed to insert decision item", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create decision")
			return
		}
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create decision")
		return
	}

	slog.Info("decision added", "event_id", eventID, "decision_id", decisionID, "items", len(req.Items))

	middleware.JSONResponse(w, http.StatusCreated, models.AddChildResponse{ID: decisionID})
}

// AddSurvey handles POST /events/:id/surveys
// A survey hangs off a section when section_id is set, otherwise off
// the event itself.
func (h *EventHandler) AddSurvey(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("id")
	if !h.requireDraftEvent(w, r, eventID) {
		return
	}

	var req models.AddSurveyRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Title == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.SectionID != nil && !h.sectionInEvent(w, *req.SectionID, eventID) {
		return
	}

	surveyID := uuid.NewString()
	_, err := h.db.Exec(`
		INSERT INTO survey (id, event_id, section_id, title, description, active, order_idx, created_at)
		VALUES ($1, $2, $3, $4, $5, 1, $6, $7)
	`, surveyID, eventID, req.SectionID, req.Title, req.Description, req.OrderIndex, time.Now())

	if err != nil {
		slog.Error("failed to insert survey", "error", err, "event_id", eventID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create survey")
		return
	}

	slog.Info("survey added", "event_id", eventID, "survey_id", surveyID)

	middleware.JSONResponse(w, http.StatusCreated, models.AddChildResponse{ID: surveyID})
}

// AddQuestion handles POST /events/:id/surveys/:surveyID/questions
// Options are created inline with the question.
func (h *EventHandler) AddQuestion(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("id")
	surveyID := r.PathValue("surveyID")
	if !h.requireDraftEvent(w, r, eventID) {
		return
	}

	var exists bool
	err := h.db.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM survey WHERE id = $1 AND event_id = $2)
	`, surveyID, eventID).Scan(&exists)
	if err != nil {
		slog.Error("failed to check survey", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if !exists {
		middleware.ErrorResponse(w, http.StatusNotFound, "Survey not found")
		return
	}

	var req models.AddQuestionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Text == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "text is required")
		return
	}
	if req.Type == "" {
		req.Type = models.QuestionSingle
	}
	if req.Type != models.QuestionSingle && req.Type != models.QuestionMultiple {
		middleware.ErrorResponse(w, http.StatusBadRequest, "type must be single or multiple")
		return
	}
	if len(req.Options) < 2 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "question must have at least 2 options")
		return
	}

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	questionID := uuid.NewString()
	now := time.Now()
	required := 0
	if req.Required {
		required = 1
	}

	_, err = tx.Exec(`
		INSERT INTO question (id, survey_id, text, qtype, required, order_idx, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, questionID, surveyID, req.Text, req.Type, required, req.OrderIndex, now)
	if err != nil {
		slog.Error("failed to insert question", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create question")
		return
	}

	for _, opt := range req.Options {
		if opt.Label == "" {
			middleware.ErrorResponse(w, http.StatusBadRequest, "option label is required")
			return
		}
		_, err = tx.Exec(`
			INSERT INTO option (id, question_id, label, order_idx, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`, uuid.NewString(), questionID, opt.Label, opt.OrderIndex, now)
		if err != nil {
			slog.Error("failed to insert option", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create question")
			return
		}
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create question")
		return
	}

	slog.Info("question added", "event_id", eventID, "survey_id", surveyID, "question_id", questionID)

	middleware.JSONResponse(w, http.StatusCreated, models.AddChildResponse{ID: questionID})
}

// AddDiscussion handles POST /events/:id/discussions
func (h *EventHandler) AddDiscussion(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("id")
	if !h.requireDraftEvent(w, r, eventID) {
		return
	}

	var req models.AddDiscussionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Title == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.SectionID != nil && !h.sectionInEvent(w, *req.SectionID, eventID) {
		return
	}

	discussionID := uuid.NewString()
	_, err := h.db.Exec(`
		INSERT INTO discussion (id, event_id, section_id, title, purpose, active, order_idx, created_at)
		VALUES ($1, $2, $3, $4, $5, 1, $6, $7)
	`, discussionID, eventID, req.SectionID, req.Title, req.Purpose, req.OrderIndex, time.Now())

	if err != nil {
		slog.Error("failed to insert discussion", "error", err, "event_id", eventID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create discussion")
		return
	}

	slog.Info("discussion added", "event_id", eventID, "discussion_id", discussionID)

	middleware.JSONResponse(w, http.StatusCreated, models.AddChildResponse{ID: discussionID})
}

// AddTable handles POST /events/:id/tables
func (h *EventHandler) AddTable(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("id")
	if !h.requireDraftEvent(w, r, eventID) {
		return
	}

	var req models.AddTableRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Title == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.SectionID != nil && !h.sectionInEvent(w, *req.SectionID, eventID) {
		return
	}

	payload, err := json.Marshal(map[string]interface{}{
		"columns": req.Columns,
		"rows":    req.Rows,
	})
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid table payload")
		return
	}

	tableID := uuid.NewString()
	_, err = h.db.Exec(`
		INSERT INTO data_table (id, event_id, section_id, title, payload, order_idx, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, tableID, eventID, req.SectionID, req.Title, string(payload), req.OrderIndex, time.Now())

	if err != nil {
		slog.Error("failed to insert table", "error", err, "event_id", eventID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create table")
		return
	}

	slog.Info("table added", "event_id", eventID, "table_id", tableID)

	middleware.JSONResponse(w, http.StatusCreated, models.AddChildResponse{ID: tableID})
}

// AddAttachment handles POST /events/:id/attachments
// Stores metadata only; the blob lives in external storage.
func (h *EventHandler) AddAttachment(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("id")
	if !h.requireDraftEvent(w, r, eventID) {
		return
	}

	var req models.AddAttachmentRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Filename == "" || req.URL == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "filename and url are required")
		return
	}
	if req.SectionID != nil && !h.sectionInEvent(w, *req.SectionID, eventID) {
		return
	}

	attachmentID := uuid.NewString()
	_, err := h.db.Exec(`
		INSERT INTO attachment (id, event_id, section_id, filename, content_type, url, size_bytes, order_idx, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, attachmentID, eventID, req.SectionID, req.Filename, req.ContentType, req.URL, req.SizeBytes, req.OrderIndex, time.Now())

	if err != nil {
		slog.Error("failed to insert attachment", "error", err, "event_id", eventID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create attachment")
		return
	}

	slog.Info("attachment added", "event_id", eventID, "attachment_id", attachmentID)

	middleware.JSONResponse(w, http.StatusCreated, models.AddChildResponse{ID: attachmentID})
}

// ActivateEvent handles POST /events/:id/activate
// Moves draft → active and mints the participant-facing share slug.
func (h *EventHandler) ActivateEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("id")
	if eventID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "event_id is required")
		return
	}
	if !h.requireOrganizer(w, r, eventID) {
		return
	}

	status, ok := h.eventStatus(w, eventID)
	if !ok {
		return
	}
	if status != models.StatusDraft {
		middleware.ErrorResponse(w, http.StatusConflict, "Event is not in draft status")
		return
	}

	// An event with nothing to respond to cannot be activated.
	var questionCount, discussionCount int
	err := h.db.QueryRow(`
		SELECT
			(SELECT COUNT(*) FROM question q JOIN survey sv ON q.survey_id = sv.id WHERE sv.event_id = $1),
			(SELECT COUNT(*) FROM discussion d WHERE d.event_id = $2)
	`, eventID, eventID).Scan(&questionCount, &discussionCount)
	if err != nil {
		slog.Error("failed to count content", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if questionCount == 0 && discussionCount == 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Event must have at least one question or discussion")
		return
	}

	shareSlug := auth.GenerateShareSlug(eventID, h.cfg.EventSlugSalt)

	_, err = h.db.Exec(`
		UPDATE event
		SET status = $1, share_slug = $2
		WHERE id = $3
	`, models.StatusActive, shareSlug, eventID)

	if err != nil {
		slog.Error("failed to activate event", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to activate event")
		return
	}

	slog.Info("event activated", "event_id", eventID, "share_slug", shareSlug)

	middleware.JSONResponse(w, http.StatusOK, models.ActivateEventResponse{
		ShareSlug: shareSlug,
		ShareURL:  h.cfg.BaseURL + "/events/" + shareSlug,
	})
}

// CompleteEvent handles POST /events/:id/complete
func (h *EventHandler) CompleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("id")
	if eventID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "event_id is required")
		return
	}
	if !h.requireOrganizer(w, r, eventID) {
		return
	}

	status, ok := h.eventStatus(w, eventID)
	if !ok {
		return
	}
	if status != models.StatusActive {
		middleware.ErrorResponse(w, http.StatusConflict, "Event is not active")
		return
	}

	completedAt := time.Now()
	_, err := h.db.Exec(`
		UPDATE event SET status = $1, completed_at = $2 WHERE id = $3
	`, models.StatusCompleted, completedAt, eventID)

	if err != nil {
		slog.Error("failed to complete event", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to complete event")
		return
	}

	slog.Info("event completed", "event_id", eventID)

	middleware.JSONResponse(w, http.StatusOK, models.CompleteEventResponse{CompletedAt: completedAt})
}

// CancelEvent handles POST /events/:id/cancel
func (h *EventHandler) CancelEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("id")
	if eventID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "event_id is required")
		return
	}
	if !h.requireOrganizer(w, r, eventID) {
		return
	}

	status, ok := h.eventStatus(w, eventID)
	if !ok {
		return
	}
	if status != models.StatusDraft && status != models.StatusActive {
		middleware.ErrorResponse(w, http.StatusConflict, "Event cannot be cancelled")
		return
	}

	_, err := h.db.Exec(`
		UPDATE event SET status = $1 WHERE id = $2
	`, models.StatusCancelled, eventID)

	if err != nil {
		slog.Error("failed to cancel event", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to cancel event")
		return
	}

	slog.Info("event cancelled", "event_id", eventID)

	w.WriteHeader(http.StatusNoContent)
}

// requireOrganizer validates the X-Organizer-Key header for the event.
func (h *EventHandler) requireOrganizer(w http.ResponseWriter, r *http.Request, eventID string) bool {
	organizerKey := r.Header.Get("X-Organizer-Key")
	if err := auth.ValidateOrganizerKey(eventID, organizerKey, h.cfg.OrganizerKeySalt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid organizer key")
		return false
	}
	return true
}

// requireDraftEvent validates the organizer key and that the event
// exists and is still mutable. Content changes only in draft.
func (h *EventHandler) requireDraftEvent(w http.ResponseWriter, r *http.Request, eventID string) bool {
	if eventID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "event_id is required")
		return false
	}
	if !h.requireOrganizer(w, r, eventID) {
		return false
	}

	status, ok := h.eventStatus(w, eventID)
	if !ok {
		return false
	}
	if status != models.StatusDraft {
		middleware.ErrorResponse(w, http.StatusConflict, "Cannot modify content of a non-draft event")
		return false
	}
	return true
}

func (h *EventHandler) eventStatus(w http.ResponseWriter, eventID string) (string, bool) {
	var status string
	err := h.db.QueryRow("SELECT status FROM event WHERE id = $1", eventID).Scan(&status)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Event not found")
		return "", false
	}
	if err != nil {
		slog.Error("failed to query event", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return "", false
	}
	return status, true
}

func (h *EventHandler) sectionInEvent(w http.ResponseWriter, sectionID, eventID string) bool {
	var exists bool
	err := h.db.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM section WHERE id = $1 AND event_id = $2)
	`, sectionID, eventID).Scan(&exists)
	if err != nil {
		slog.Error("failed to check section", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return false
	}
	if !exists {
		middleware.ErrorResponse(w, http.StatusNotFound, "Section not found")
		return false
	}
	return true
}
