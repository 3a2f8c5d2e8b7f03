// Copyright (c) 2025 Convene Contributors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - CreateEventRequest: title, description, time window, requires_signature
  - AddSectionRequest / AddDecisionRequest / AddSurveyRequest /
    AddQuestionRequest / AddDiscussionRequest / AddTableRequest /
    AddAttachmentRequest: content-tree children
  - SubmitRequest: combined survey answers, discussion replies, signature

# Response Types

Types for JSON responses:

  - CreateEventResponse: event_id, organizer_key
  - ActivateEventResponse: share_slug, share_url
  - SubmitResponse: per-kind write counts and message
  - EventPreviewResponse: compact card data
  - ErrorResponse: error, message

# Domain Types

Internal data structures mirror the content tree rooted at Event:

	Event ──* Section ──* Decision ──* DecisionItem
	Event/Section ──* Survey ──* Question ──* Option
	Event/Section ──* Discussion ──* Reply
	Event/Section ──* DataTable, Attachment

Answer and SignatureRecord are submission-time facts keyed by
(question, user) and (event, user) respectively; they are not part of
the tree and survive content edits.

# Constants

Event status values:

	StatusDraft     = "draft"
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"

Question types:

	QuestionSingle   = "single"
	QuestionMultiple = "multiple"
*/
package models
