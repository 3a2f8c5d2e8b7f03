// Copyright (c) 2025 Convene Contributors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Convene API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg)

# Endpoints

Health:

	GET /health

Event management (organizer, requires X-Organizer-Key):

	POST /events                                    - Create event
	GET  /events/{id}/admin                         - Full content tree
	POST /events/{id}/sections                      - Add section
	POST /events/{id}/sections/{sectionID}/decisions - Add decision with items
	POST /events/{id}/surveys                       - Add survey
	POST /events/{id}/surveys/{surveyID}/questions  - Add question with options
	POST /events/{id}/discussions                   - Add discussion
	POST /events/{id}/tables                        - Add data table
	POST /events/{id}/attachments                   - Add attachment metadata
	POST /events/{id}/activate                      - Open for submissions
	POST /events/{id}/complete                      - Finish event
	POST /events/{id}/cancel                        - Cancel event

Participant (share slug, requires Authorization: Bearer):

	GET  /events/{slug}               - Content tree
	POST /events/{slug}/submissions   - Atomic combined submission
	GET  /events/{slug}/my-submission - Caller's stored submission
	GET  /events/{slug}/results       - Aggregated results (role-aware)

Public:

	GET /events/{slug}/preview - Compact preview data

# Handler Initialization

The router creates handler instances with dependency injection:

	eventHandler := handlers.NewEventHandler(db, cfg)
	submissionHandler := handlers.NewSubmissionHandler(db, cfg)
	resultsHandler := handlers.NewResultsHandler(db, cfg)

All handlers receive the database connection and configuration.
Identity-protected routes are wrapped with middleware.RequireIdentity,
which verifies the bearer token and stashes the resolved identity on the
request context.
*/
package router
