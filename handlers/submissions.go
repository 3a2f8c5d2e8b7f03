// Copyright (c) 2025 Convene Contributors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/convenehq/convene/auth"
	"github.com/convenehq/convene/cliparse"
	"github.com/convenehq/convene/middleware"
	"github.com/convenehq/convene/models"
	"github.com/convenehq/convene/snapshot"
	"github.com/convenehq/convene/submission"
)

type SubmissionHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewSubmissionHandler(db *sql.DB, cfg cliparse.Config) *SubmissionHandler {
	return &SubmissionHandler{db: db, cfg: cfg}
}

// Submit handles POST /events/:slug/submissions
// Answers, replies, and signature land atomically or not at all.
func (h *SubmissionHandler) Submit(w http.ResponseWriter, r *http.Request) {
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

	var req models.SubmitRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	meta := submission.SubmitMeta{
		IPHash:    auth.HashIP(middleware.GetClientIP(r), h.cfg.OrganizerKeySalt),
		UserAgent: r.UserAgent(),
	}

	result, err := submission.Commit(h.db, eventID, identity.UserID, req, meta)
	if err != nil {
		var validationErr *submission.ValidationFailedError
		switch {
		case errors.Is(err, snapshot.ErrNotFound):
			middleware.ErrorResponse(w, http.StatusNotFound, "Event not found")
		case errors.Is(err, submission.ErrEventNotActive):
			middleware.ErrorResponse(w, http.StatusConflict, "Event is not accepting submissions")
		case errors.As(err, &validationErr):
			middleware.JSONResponse(w, http.StatusUnprocessableEntity, map[string]interface{}{
				"error":   "Validation failed",
				"details": validationErr.Errors,
			})
		case errors.Is(err, submission.ErrConcurrencyConflict):
			middleware.ErrorResponse(w, http.StatusConflict, "Event content changed, please reload and retry")
		default:
			slog.Error("failed to commit submission", "error", err, "event_id", eventID)
			middleware.ErrorResponse(w, http.StatusServiceUnavailable, "Failed to record submission")
		}
		return
	}

	slog.Info("submission recorded",
		"event_id", eventID,
		"answers", result.AnswersWritten,
		"replies", result.RepliesWritten,
		"signature", result.SignatureWritten,
	)

	middleware.JSONResponse(w, http.StatusOK, models.SubmitResponse{
		AnswersWritten:   result.AnswersWritten,
		RepliesWritten:   result.RepliesWritten,
		SignatureWritten: result.SignatureWritten,
		Message:          "Submission recorded",
	})
}

// GetMySubmission handles GET /events/:slug/my-submission
// Returns the caller's stored answers, replies, and signature status.
func (h *SubmissionHandler) GetMySubmission(w http.ResponseWriter, r *http.Request) {
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

	answers, err := h.loadUserAnswers(eventID, identity.UserID)
	if err != nil {
		slog.Error("failed to load answers", "error", err, "event_id", eventID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	replies, err := h.loadUserReplies(eventID, identity.UserID)
	if err != nil {
		slog.Error("failed to load replies", "error", err, "event_id", eventID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	var signed bool
	err = h.db.QueryRow(`
		SELECT EXISTS(
			SELECT 1 FROM signature_record
			WHERE event_id = $1 AND user_id = $2
		)
	`, eventID, identity.UserID).Scan(&signed)
	if err != nil {
		slog.Error("failed to check signature", "error", err, "event_id", eventID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.MySubmissionResponse{
		Answers: answers,
		Replies: replies,
		Signed:  signed,
	})
}

func (h *SubmissionHandler) loadUserAnswers(eventID, userID string) ([]models.Answer, error) {
	rows, err := h.db.Query(`
		SELECT a.id, a.question_id, a.user_id, a.submitted_at
		FROM answer a
		JOIN question q ON a.question_id = q.id
		JOIN survey sv ON q.survey_id = sv.id
		WHERE sv.event_id = $1 AND a.user_id = $2
		ORDER BY a.submitted_at, a.id
	`, eventID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	answers := []models.Answer{}
	for rows.Next() {
		var answer models.Answer
		if err := rows.Scan(&answer.ID, &answer.QuestionID, &answer.UserID, &answer.SubmittedAt); err != nil {
			return nil, err
		}
		answers = append(answers, answer)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range answers {
		optionIDs, err := h.loadSelectedOptions(answers[i].ID)
		if err != nil {
			return nil, err
		}
		answers[i].SelectedOptionIDs = optionIDs
	}

	return answers, nil
}

func (h *SubmissionHandler) loadSelectedOptions(answerID string) ([]string, error) {
	rows, err := h.db.Query(`
		SELECT option_id FROM answer_option WHERE answer_id = $1
	`, answerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	optionIDs := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		optionIDs = append(optionIDs, id)
	}
	return optionIDs, rows.Err()
}

func (h *SubmissionHandler) loadUserReplies(eventID, userID string) ([]models.Reply, error) {
	rows, err := h.db.Query(`
		SELECT rp.id, rp.discussion_id, rp.user_id, rp.body, rp.created_at
		FROM reply rp
		JOIN discussion d ON rp.discussion_id = d.id
		WHERE d.event_id = $1 AND rp.user_id = $2
		ORDER BY rp.created_at, rp.id
	`, eventID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	replies := []models.Reply{}
	for rows.Next() {
		var reply models.Reply
		if err := rows.Scan(&reply.ID, &reply.DiscussionID, &reply.UserID, &reply.Body, &reply.CreatedAt); err != nil {
			return nil, err
		}
		replies = append(replies, reply)
	}
	return replies, rows.Err()
}
