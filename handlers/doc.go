// Copyright (c) 2025 Convene Contributors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Convene API.

# Handler Types

Each handler is a struct with database and config dependencies:

  - EventHandler: Event lifecycle and content authoring (organizer)
  - SubmissionHandler: Combined submissions and submission recall
  - ResultsHandler: Event views, previews, and aggregated results

Handlers are created via constructor functions that accept *sql.DB and Config:

	eventHandler := handlers.NewEventHandler(db, cfg)

# Event Lifecycle

Events progress through: draft → active → completed, with cancelled
reachable from draft or active.

	POST /events                → CreateEvent (returns organizer_key)
	POST /events/{id}/sections  → AddSection (draft only, as is all authoring)
	POST /events/{id}/activate  → ActivateEvent (generates share_slug)
	POST /events/{id}/complete  → CompleteEvent
	POST /events/{id}/cancel    → CancelEvent

Organizer operations require the X-Organizer-Key header. Content
authoring (sections, decisions, surveys, questions, discussions, tables,
attachments) is rejected once the event leaves draft.

# Submission Flow

Participants interact via the share slug with a bearer identity token:

	GET  /events/{slug}                → GetEvent (full content tree)
	POST /events/{slug}/submissions    → Submit (answers + replies + signature)
	GET  /events/{slug}/my-submission  → GetMySubmission

A submission is atomic: every answer, reply, and the signature land
together or the whole request is rejected. Validation failures come back
as 422 with the full error list; content changed mid-flight comes back
as 409.

# Results

	GET /events/{slug}/results → GetResults

The admin claim on the bearer token selects the view: admins see every
discussion reply, participants see only their own. Question tallies are
identical for both roles.

# Preview

	GET /events/{slug}/preview → GetPreview

Unauthenticated compact summary for share links.
*/
package handlers
