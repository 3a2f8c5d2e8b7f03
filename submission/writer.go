// Copyright (c) 2025 Convene Contributors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package submission

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/convenehq/convene/models"
	"github.com/convenehq/convene/snapshot"
)

// SubmitMeta is audit metadata recorded alongside a signature.
type SubmitMeta struct {
	IPHash    string
	UserAgent string
}

// CommitResult summarizes what a successful commit wrote.
type CommitResult struct {
	AnswersWritten   int
	RepliesWritten   int
	SignatureWritten bool
}

// Commit validates against a freshly loaded snapshot and persists the
// submission as one atomic unit: answers are upserts keyed by
// (question, user) replacing the prior selection set wholesale, replies
// are append-only inserts, the signature is an upsert keyed by
// (event, user). All three land or none do.
//
// Reply inserts are not deduplicated; a caller retrying after an
// ambiguous failure owns idempotency for replies.
//
// Errors: snapshot.ErrNotFound, ErrEventNotActive,
// *ValidationFailedError, ErrConcurrencyConflict, or a wrapped storage
// error.
func Commit(db *sql.DB, eventID, userID string, sub models.SubmitRequest, meta SubmitMeta) (CommitResult, error) {
	snap, err := snapshot.Load(db, eventID)
	if err != nil {
		return CommitResult{}, err
	}

	if snap.Event.Status != models.StatusActive {
		return CommitResult{}, ErrEventNotActive
	}

	hasPrior, err := hasSignature(db, eventID, userID)
	if err != nil {
		return CommitResult{}, err
	}

	// Never trust a stale client-side validation.
	if result := Validate(snap, sub, hasPrior); !result.OK() {
		return CommitResult{}, &ValidationFailedError{Errors: result.Errors}
	}

	tx, err := db.Begin()
	if err != nil {
		return CommitResult{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	answers, order := collectAnswers(sub)

	for _, questionID := range order {
		if err := upsertAnswer(tx, questionID, userID, answers[questionID].SelectedOptionIDs, now); err != nil {
			return CommitResult{}, err
		}
	}

	for _, reply := range sub.DiscussionReplies {
		if err := insertReply(tx, reply, userID, now); err != nil {
			return CommitResult{}, err
		}
	}

	signatureWritten := false
	trimmedSignature := strings.TrimSpace(sub.SignatureData)
	if snap.Event.RequiresSignature && trimmedSignature != "" {
		if err := upsertSignature(tx, eventID, userID, trimmedSignature, meta, now); err != nil {
			return CommitResult{}, err
		}
		signatureWritten = true
	}

	if err := tx.Commit(); err != nil {
		return CommitResult{}, fmt.Errorf("failed to commit submission: %w", err)
	}

	return CommitResult{
		AnswersWritten:   len(order),
		RepliesWritten:   len(sub.DiscussionReplies),
		SignatureWritten: signatureWritten,
	}, nil
}

func hasSignature(db *sql.DB, eventID, userID string) (bool, error) {
	var exists bool
	err := db.QueryRow(`
		SELECT EXISTS(
			SELECT 1 FROM signature_record
			WHERE event_id = $1 AND user_id = $2
		)
	`, eventID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check signature: %w", err)
	}
	return exists, nil
}

// upsertAnswer replaces the user's selection set for one question.
// Re-checks the question and its options inside the transaction: the
// snapshot used for validation may have gone stale.
func upsertAnswer(tx *sql.Tx, questionID, userID string, optionIDs []string, now time.Time) error {
	currentOptions, err := liveOptionSet(tx, questionID)
	if err != nil {
		return err
	}
	if currentOptions == nil {
		return ErrConcurrencyConflict
	}
	for _, optionID := range optionIDs {
		if !currentOptions[optionID] {
			return ErrConcurrencyConflict
		}
	}

	var answerID string
	err = tx.QueryRow(`
		SELECT id FROM answer WHERE question_id = $1 AND user_id = $2
	`, questionID, userID).Scan(&answerID)

	switch {
	case err == sql.ErrNoRows:
		answerID = uuid.NewString()
		_, err = tx.Exec(`
			INSERT INTO answer (id, question_id, user_id, submitted_at)
			VALUES ($1, $2, $3, $4)
		`, answerID, questionID, userID, now)
		if err != nil {
			return fmt.Errorf("failed to insert answer: %w", err)
		}
	case err != nil:
		return fmt.Errorf("failed to look up answer: %w", err)
	default:
		_, err = tx.Exec(`
			UPDATE answer SET submitted_at = $1 WHERE id = $2
		`, now, answerID)
		if err != nil {
			return fmt.Errorf("failed to update answer: %w", err)
		}
		// A resubmission replaces the prior selection set entirely.
		_, err = tx.Exec(`DELETE FROM answer_option WHERE answer_id = $1`, answerID)
		if err != nil {
			return fmt.Errorf("failed to clear prior selections: %w", err)
		}
	}

	for _, optionID := range optionIDs {
		_, err = tx.Exec(`
			INSERT INTO answer_option (answer_id, option_id)
			VALUES ($1, $2)
		`, answerID, optionID)
		if err != nil {
			return fmt.Errorf("failed to insert selection: %w", err)
		}
	}

	return nil
}

// liveOptionSet returns the question's current option ids, or nil when
// the question no longer exists.
func liveOptionSet(tx *sql.Tx, questionID string) (map[string]bool, error) {
	var exists bool
	err := tx.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM question WHERE id = $1)
	`, questionID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check question: %w", err)
	}
	if !exists {
		return nil, nil
	}

	rows, err := tx.Query(`SELECT id FROM option WHERE question_id = $1`, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load options: %w", err)
	}
	defer rows.Close()

	options := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan option: %w", err)
		}
		options[id] = true
	}

	return options, rows.Err()
}

func insertReply(tx *sql.Tx, reply models.ReplyInput, userID string, now time.Time) error {
	var active int
	err := tx.QueryRow(`
		SELECT active FROM discussion WHERE id = $1
	`, reply.DiscussionID).Scan(&active)
	if err == sql.ErrNoRows || (err == nil && active == 0) {
		return ErrConcurrencyConflict
	}
	if err != nil {
		return fmt.Errorf("failed to check discussion: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO reply (id, discussion_id, user_id, body, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, uuid.NewString(), reply.DiscussionID, userID, reply.Body, now)
	if err != nil {
		return fmt.Errorf("failed to insert reply: %w", err)
	}

	return nil
}

func upsertSignature(tx *sql.Tx, eventID, userID, payload string, meta SubmitMeta, now time.Time) error {
	var ipHash, userAgent *string
	if meta.IPHash != "" {
		ipHash = &meta.IPHash
	}
	if meta.UserAgent != "" {
		userAgent = &meta.UserAgent
	}

	var exists bool
	err := tx.QueryRow(`
		SELECT EXISTS(
			SELECT 1 FROM signature_record
			WHERE event_id = $1 AND user_id = $2
		)
	`, eventID, userID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check signature: %w", err)
	}

	if exists {
		_, err = tx.Exec(`
			UPDATE signature_record
			SET payload = $1, ip_hash = $2, user_agent = $3, created_at = $4
			WHERE event_id = $5 AND user_id = $6
		`, payload, ipHash, userAgent, now, eventID, userID)
	} else {
		_, err = tx.Exec(`
			INSERT INTO signature_record (event_id, user_id, payload, ip_hash, user_agent, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, eventID, userID, payload, ipHash, userAgent, now)
	}
	if err != nil {
		return fmt.Errorf("failed to write signature: %w", err)
	}

	return nil
}
