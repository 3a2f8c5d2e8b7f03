// Copyright (c) 2025 Convene Contributors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package results

import (
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/convenehq/convene/models"
)

var ErrNotFound = errors.New("question or discussion not found")

// AggregateQuestion tallies stored answers for one question: distinct
// respondent total plus per-option selected count and rounded
// percentage. Orphaned answer rows for other questions never surface
// because everything is keyed by question id.
func AggregateQuestion(db *sql.DB, questionID string) (models.AggregatedQuestionResult, error) {
	var result models.AggregatedQuestionResult
	err := db.QueryRow(`
		SELECT id, text, qtype FROM question WHERE id = $1
	`, questionID).Scan(&result.QuestionID, &result.Text, &result.Type)

	if err == sql.ErrNoRows {
		return models.AggregatedQuestionResult{}, ErrNotFound
	}
	if err != nil {
		return models.AggregatedQuestionResult{}, fmt.Errorf("failed to load question: %w", err)
	}

	// One answer row per respondent, enforced by the unique key.
	err = db.QueryRow(`
		SELECT COUNT(*) FROM answer WHERE question_id = $1
	`, questionID).Scan(&result.TotalRespondents)
	if err != nil {
		return models.AggregatedQuestionResult{}, fmt.Errorf("failed to count respondents: %w", err)
	}

	counts, err := optionCounts(db, questionID)
	if err != nil {
		return models.AggregatedQuestionResult{}, err
	}

	rows, err := db.Query(`
		SELECT id, label FROM option
		WHERE question_id = $1
		ORDER BY order_idx, created_at, id
	`, questionID)
	if err != nil {
		return models.AggregatedQuestionResult{}, fmt.Errorf("failed to load options: %w", err)
	}
	defer rows.Close()

	result.Options = []models.OptionTally{}
	for rows.Next() {
		var tally models.OptionTally
		if err := rows.Scan(&tally.OptionID, &tally.Label); err != nil {
			return models.AggregatedQuestionResult{}, fmt.Errorf("failed to scan option: %w", err)
		}
		tally.SelectedCount = counts[tally.OptionID]
		tally.Percentage = percentage(tally.SelectedCount, result.TotalRespondents)
		result.Options = append(result.Options, tally)
	}

	return result, rows.Err()
}

// AggregateDiscussion returns the reply view for one discussion. Admins
// see every reply; participants see only their own, but the count always
// covers all users.
func AggregateDiscussion(db *sql.DB, discussionID, viewerUserID string, isAdmin bool) (models.AggregatedDiscussionResult, error) {
	var result models.AggregatedDiscussionResult
	err := db.QueryRow(`
		SELECT id, title FROM discussion WHERE id = $1
	`, discussionID).Scan(&result.DiscussionID, &result.Title)

	if err == sql.ErrNoRows {
		return models.AggregatedDiscussionResult{}, ErrNotFound
	}
	if err != nil {
		return models.AggregatedDiscussionResult{}, fmt.Errorf("failed to load discussion: %w", err)
	}

	err = db.QueryRow(`
		SELECT COUNT(*) FROM reply WHERE discussion_id = $1
	`, discussionID).Scan(&result.ReplyCount)
	if err != nil {
		return models.AggregatedDiscussionResult{}, fmt.Errorf("failed to count replies: %w", err)
	}

	query := `
		SELECT id, discussion_id, user_id, body, created_at
		FROM reply
		WHERE discussion_id = $1
		ORDER BY created_at, id
	`
	args := []interface{}{discussionID}
	if !isAdmin {
		query = `
			SELECT id, discussion_id, user_id, body, created_at
			FROM reply
			WHERE discussion_id = $1 AND user_id = $2
			ORDER BY created_at, id
		`
		args = append(args, viewerUserID)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return models.AggregatedDiscussionResult{}, fmt.Errorf("failed to load replies: %w", err)
	}
	defer rows.Close()

	result.Replies = []models.Reply{}
	for rows.Next() {
		var reply models.Reply
		if err := rows.Scan(&reply.ID, &reply.DiscussionID, &reply.UserID, &reply.Body, &reply.CreatedAt); err != nil {
			return models.AggregatedDiscussionResult{}, fmt.Errorf("failed to scan reply: %w", err)
		}
		result.Replies = append(result.Replies, reply)
	}

	return result, rows.Err()
}

func optionCounts(db *sql.DB, questionID string) (map[string]int, error) {
	rows, err := db.Query(`
		SELECT ao.option_id, COUNT(*)
		FROM answer_option ao
		JOIN answer a ON ao.answer_id = a.id
		WHERE a.question_id = $1
		GROUP BY ao.option_id
	`, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to count selections: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var optionID string
		var count int
		if err := rows.Scan(&optionID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan selection count: %w", err)
		}
		counts[optionID] = count
	}

	return counts, rows.Err()
}

// percentage rounds to the nearest integer and is 0 when nobody has
// answered, so there is no division by zero.
func percentage(count, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(count) / float64(total) * 100))
}
