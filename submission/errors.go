// Copyright (c) 2025 Convene Contributors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package submission

import (
	"errors"
	"fmt"
)

// Validation error codes. Stable strings; they appear verbatim in API
// responses.
const (
	CodeMissingRequiredAnswer       = "missing_required_answer"
	CodeUnknownQuestion             = "unknown_question"
	CodeOptionNotInQuestion         = "option_not_in_question"
	CodeCardinalityViolation        = "cardinality_violation"
	CodeUnknownOrInactiveDiscussion = "unknown_or_inactive_discussion"
	CodeEmptyContent                = "empty_content"
	CodeSignatureRequired           = "signature_required"
)

var (
	// ErrEventNotActive rejects submissions outside the active window.
	ErrEventNotActive = errors.New("event is not accepting submissions")

	// ErrConcurrencyConflict reports that the validated snapshot went
	// stale before the write (e.g. a referenced question was deleted).
	ErrConcurrencyConflict = errors.New("event content changed during submission")
)

// ValidationError is one structural problem with a submission.
type ValidationError struct {
	Code         string `json:"code"`
	QuestionID   string `json:"question_id,omitempty"`
	OptionID     string `json:"option_id,omitempty"`
	DiscussionID string `json:"discussion_id,omitempty"`
	Field        string `json:"field,omitempty"`
}

// ValidationResult carries the full error list; every rule is evaluated,
// nothing short-circuits.
type ValidationResult struct {
	Errors []ValidationError `json:"errors"`
}

func (r ValidationResult) OK() bool {
	return len(r.Errors) == 0
}

// ValidationFailedError is returned by Commit when re-validation fails.
type ValidationFailedError struct {
	Errors []ValidationError
}

func (e *ValidationFailedError) Error() string {
	return fmt.Sprintf("submission validation failed with %d error(s)", len(e.Errors))
}
