// Copyright (c) 2025 Convene Contributors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/convenehq/convene/auth"
	"github.com/convenehq/convene/cliparse"
	"github.com/convenehq/convene/db"
	"github.com/convenehq/convene/models"
)

// SetupTestDB creates a fresh in-memory database with the full schema.
// Each call returns an isolated database; the connection is closed when
// the test finishes.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:             4270,
		DatabaseURL:      ":memory:",
		DatabaseType:     "sqlite",
		BaseURL:          "http://localhost:4270",
		OrganizerKeySalt: "test-organizer-salt",
		EventSlugSalt:    "test-slug-salt",
		TokenSecret:      "test-token-secret",
	}
}

// CreateTestEvent creates an event and returns its ID, organizer key,
// and share slug. status should be "draft", "active", "completed", or
// "cancelled"; the slug is only set once the event has left draft.
func CreateTestEvent(t *testing.T, conn *sql.DB, cfg cliparse.Config, status string, requiresSignature bool) (eventID, organizerKey, shareSlug string) {
	t.Helper()

	eventID = uuid.NewString()
	organizerKey = auth.GenerateOrganizerKey(eventID, cfg.OrganizerKeySalt)

	var slug *string
	if status != models.StatusDraft {
		s := auth.GenerateShareSlug(eventID, cfg.EventSlugSalt)
		slug = &s
		shareSlug = s
	}

	var completedAt *time.Time
	if status == models.StatusCompleted {
		now := time.Now()
		completedAt = &now
	}

	reqSig := 0
	if requiresSignature {
		reqSig = 1
	}

	_, err := conn.Exec(`
		INSERT INTO event (id, title, description, status, requires_signature, share_slug, completed_at, created_at)
		VALUES ($1, 'Test Event', 'An event for tests', $2, $3, $4, $5, $6)
	`, eventID, status, reqSig, slug, completedAt, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test event: %v", err)
	}

	return eventID, organizerKey, shareSlug
}

// AddTestSection adds a section to an event and returns its ID
func AddTestSection(t *testing.T, conn *sql.DB, eventID, title string, orderIdx int) string {
	t.Helper()

	sectionID := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO section (id, event_id, title, body, order_idx, created_at)
		VALUES ($1, $2, $3, '', $4, $5)
	`, sectionID, eventID, title, orderIdx, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test section: %v", err)
	}

	return sectionID
}

// AddTestSurvey adds an event-level survey (sectionID == "") or a
// section survey, returning its ID.
func AddTestSurvey(t *testing.T, conn *sql.DB, eventID, sectionID, title string) string {
	t.Helper()

	surveyID := uuid.NewString()
	var section *string
	if sectionID != "" {
		section = &sectionID
	}

	_, err := conn.Exec(`
		INSERT INTO survey (id, event_id, section_id, title, description, active, order_idx, created_at)
		VALUES ($1, $2, $3, $4, '', 1, 0, $5)
	`, surveyID, eventID, section, title, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test survey: %v", err)
	}

	return surveyID
}

// AddTestQuestion adds a question with options and returns the question
// ID plus option IDs in the given label order.
func AddTestQuestion(t *testing.T, conn *sql.DB, surveyID, text, qtype string, required bool, labels ...string) (string, []string) {
	t.Helper()

	questionID := uuid.NewString()
	req := 0
	if required {
		req = 1
	}

	_, err := conn.Exec(`
		INSERT INTO question (id, survey_id, text, qtype, required, order_idx, created_at)
		VALUES ($1, $2, $3, $4, $5, 0, $6)
	`, questionID, surveyID, text, qtype, req, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test question: %v", err)
	}

	optionIDs := make([]string, 0, len(labels))
	for i, label := range labels {
		optionID := uuid.NewString()
		_, err := conn.Exec(`
			INSERT INTO option (id, question_id, label, order_idx, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`, optionID, questionID, label, i, time.Now())
		if err != nil {
			t.Fatalf("Failed to create test option: %v", err)
		}
		optionIDs = append(optionIDs, optionID)
	}

	return questionID, optionIDs
}

// AddTestDiscussion adds a discussion to an event and returns its ID
func AddTestDiscussion(t *testing.T, conn *sql.DB, eventID, title string, active bool) string {
	t.Helper()

	discussionID := uuid.NewString()
	act := 0
	if active {
		act = 1
	}

	_, err := conn.Exec(`
		INSERT INTO discussion (id, event_id, section_id, title, purpose, active, order_idx, created_at)
		VALUES ($1, $2, NULL, $3, '', $4, 0, $5)
	`, discussionID, eventID, title, act, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test discussion: %v", err)
	}

	return discussionID
}

// AddTestReply inserts a reply directly and returns its ID
func AddTestReply(t *testing.T, conn *sql.DB, discussionID, userID, body string) string {
	t.Helper()

	replyID := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO reply (id, discussion_id, user_id, body, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, replyID, discussionID, userID, body, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test reply: %v", err)
	}

	return replyID
}

// AddTestAnswer inserts an answer with selections directly, bypassing
// validation, and returns the answer ID.
func AddTestAnswer(t *testing.T, conn *sql.DB, questionID, userID string, optionIDs ...string) string {
	t.Helper()

	answerID := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO answer (id, question_id, user_id, submitted_at)
		VALUES ($1, $2, $3, $4)
	`, answerID, questionID, userID, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test answer: %v", err)
	}

	for _, optionID := range optionIDs {
		_, err := conn.Exec(`
			INSERT INTO answer_option (answer_id, option_id)
			VALUES ($1, $2)
		`, answerID, optionID)
		if err != nil {
			t.Fatalf("Failed to create test selection: %v", err)
		}
	}

	return answerID
}

// IssueTestToken mints a bearer token for a test identity
func IssueTestToken(t *testing.T, cfg cliparse.Config, userID string, isAdmin bool) string {
	t.Helper()

	token, err := auth.IssueToken(auth.Identity{UserID: userID, IsAdmin: isAdmin}, cfg.TokenSecret, time.Hour)
	if err != nil {
		t.Fatalf("Failed to issue test token: %v", err)
	}

	return token
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
