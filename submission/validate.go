// Copyright (c) 2025 Convene Contributors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package submission

import (
	"strings"

	"github.com/convenehq/convene/models"
	"github.com/convenehq/convene/snapshot"
)

// Validate checks a proposed submission against the event snapshot.
// Pure function of its inputs; hasPriorSignature tells it whether the
// user already has a signature on file for this event.
func Validate(snap *snapshot.EventSnapshot, sub models.SubmitRequest, hasPriorSignature bool) ValidationResult {
	var result ValidationResult

	answers, order := collectAnswers(sub)

	// Required questions must be answered with at least one option.
	for _, q := range snap.Questions() {
		if !q.Required {
			continue
		}
		a, ok := answers[q.ID]
		if !ok || len(a.SelectedOptionIDs) == 0 {
			result.Errors = append(result.Errors, ValidationError{
				Code:       CodeMissingRequiredAnswer,
				QuestionID: q.ID,
			})
		}
	}

	// Answered questions must exist, options must belong to them, and
	// the selection count must match the question type.
	for _, questionID := range order {
		a := answers[questionID]

		q, ok := snap.Question(questionID)
		if !ok {
			result.Errors = append(result.Errors, ValidationError{
				Code:       CodeUnknownQuestion,
				QuestionID: questionID,
			})
			continue
		}

		for _, optionID := range a.SelectedOptionIDs {
			if !q.HasOption(optionID) {
				result.Errors = append(result.Errors, ValidationError{
					Code:       CodeOptionNotInQuestion,
					QuestionID: questionID,
					OptionID:   optionID,
				})
			}
		}

		switch q.Type {
		case models.QuestionSingle:
			if len(a.SelectedOptionIDs) != 1 {
				result.Errors = append(result.Errors, ValidationError{
					Code:       CodeCardinalityViolation,
					QuestionID: questionID,
				})
			}
		default:
			// Multiple choice still needs at least one selection.
			if len(a.SelectedOptionIDs) == 0 {
				result.Errors = append(result.Errors, ValidationError{
					Code:       CodeCardinalityViolation,
					QuestionID: questionID,
				})
			}
		}
	}

	// Replies must target a known, active discussion and carry content.
	for _, reply := range sub.DiscussionReplies {
		d, ok := snap.Discussion(reply.DiscussionID)
		if !ok || !d.Active {
			result.Errors = append(result.Errors, ValidationError{
				Code:         CodeUnknownOrInactiveDiscussion,
				DiscussionID: reply.DiscussionID,
			})
		}
		if strings.TrimSpace(reply.Body) == "" {
			result.Errors = append(result.Errors, ValidationError{
				Code:         CodeEmptyContent,
				DiscussionID: reply.DiscussionID,
				Field:        "reply_body",
			})
		}
	}

	// Signature: present means non-blank; required means present now or
	// already on file.
	trimmedSignature := strings.TrimSpace(sub.SignatureData)
	if sub.SignatureData != "" && trimmedSignature == "" {
		result.Errors = append(result.Errors, ValidationError{
			Code:  CodeEmptyContent,
			Field: "signature_data",
		})
	}
	if snap.Event.RequiresSignature && trimmedSignature == "" && !hasPriorSignature {
		result.Errors = append(result.Errors, ValidationError{
			Code: CodeSignatureRequired,
		})
	}

	return result
}

// collectAnswers flattens the per-survey answer groups into one set per
// question. A question answered twice in the same request keeps the
// last occurrence, matching the upsert semantics of the writer.
func collectAnswers(sub models.SubmitRequest) (map[string]models.QuestionAnswer, []string) {
	answers := make(map[string]models.QuestionAnswer)
	var order []string

	for _, sa := range sub.SurveyAnswers {
		for _, qa := range sa.QuestionAnswers {
			if _, seen := answers[qa.QuestionID]; !seen {
				order = append(order, qa.QuestionID)
			}
			answers[qa.QuestionID] = qa
		}
	}

	return answers, order
}
