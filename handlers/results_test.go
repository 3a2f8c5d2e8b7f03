// Copyright (c) 2025 Convene Contributors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/convenehq/convene/middleware"
	"github.com/convenehq/convene/models"
	"github.com/convenehq/convene/results"
	"github.com/convenehq/convene/testutil"
)

func TestGetEvent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewResultsHandler(db, cfg)

	eventID, _, slug := testutil.CreateTestEvent(t, db, cfg, models.StatusActive, false)
	surveyID := testutil.AddTestSurvey(t, db, eventID, "", "Survey")
	testutil.AddTestQuestion(t, db, surveyID, "Q1", models.QuestionSingle, false, "A", "B")
	token := testutil.IssueTestToken(t, cfg, "user-1", false)

	tests := []struct {
		name           string
		slug           string
		token          string
		expectedStatus int
	}{
		{"valid slug", slug, token, http.StatusOK},
		{"unknown slug", "no-such-slug", token, http.StatusNotFound},
		{"missing token", slug, "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{}
			if tt.token != "" {
				headers["Authorization"] = "Bearer " + tt.token
			}
			req := testutil.MakeRequest("GET", "/events/"+tt.slug, nil, headers)
			req.SetPathValue("slug", tt.slug)
			w := httptest.NewRecorder()

			middleware.RequireIdentity(cfg.TokenSecret, handler.GetEvent)(w, req)
			testutil.AssertStatus(t, w, tt.expectedStatus)

			if tt.expectedStatus == http.StatusOK {
				var resp struct {
					Event   models.Event `json:"event"`
					Surveys []struct {
						Questions []struct {
							Options []models.Option `json:"options"`
						} `json:"questions"`
					} `json:"surveys"`
				}
				testutil.AssertJSON(t, w, &resp)
				if resp.Event.ID != eventID {
					t.Errorf("Expected event %s, got %s", eventID, resp.Event.ID)
				}
				if len(resp.Surveys) != 1 || len(resp.Surveys[0].Questions) != 1 {
					t.Error("Expected one survey with one question")
				}
			}
		})
	}
}

func TestGetPreview(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewResultsHandler(db, cfg)

	eventID, _, slug := testutil.CreateTestEvent(t, db, cfg, models.StatusActive, false)
	testutil.AddTestSection(t, db, eventID, "Agenda", 0)
	surveyID := testutil.AddTestSurvey(t, db, eventID, "", "Survey")
	questionID, optionIDs := testutil.AddTestQuestion(t, db, surveyID, "Q1", models.QuestionSingle, false, "A", "B")

	testutil.AddTestAnswer(t, db, questionID, "user-1", optionIDs[0])
	testutil.AddTestAnswer(t, db, questionID, "user-2", optionIDs[1])

	starts := time.Now().Add(48 * time.Hour)
	if _, err := db.Exec(`UPDATE event SET starts_at = $1 WHERE id = $2`, starts, eventID); err != nil {
		t.Fatalf("Failed to set start time: %v", err)
	}

	// No token needed; the preview is public
	req := testutil.MakeRequest("GET", "/events/"+slug+"/preview", nil, nil)
	req.SetPathValue("slug", slug)
	w := httptest.NewRecorder()

	handler.GetPreview(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.EventPreviewResponse
	testutil.AssertJSON(t, w, &resp)

	if resp.Title != "Test Event" {
		t.Errorf("Expected title 'Test Event', got %q", resp.Title)
	}
	if resp.SectionCount != 1 {
		t.Errorf("Expected 1 section, got %d", resp.SectionCount)
	}
	if resp.QuestionCount != 1 {
		t.Errorf("Expected 1 question, got %d", resp.QuestionCount)
	}
	if resp.SubmissionCount != 2 {
		t.Errorf("Expected 2 submissions, got %d", resp.SubmissionCount)
	}
	if resp.Starts == "" {
		t.Error("Expected a relative start time")
	}
}

func TestGetResults(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewResultsHandler(db, cfg)

	eventID, _, slug := testutil.CreateTestEvent(t, db, cfg, models.StatusCompleted, false)
	surveyID := testutil.AddTestSurvey(t, db, eventID, "", "Survey")
	questionID, optionIDs := testutil.AddTestQuestion(t, db, surveyID, "Pick one", models.QuestionSingle, false, "Yes", "No")
	discussionID := testutil.AddTestDiscussion(t, db, eventID, "Open floor", true)

	testutil.AddTestAnswer(t, db, questionID, "user-1", optionIDs[0])
	testutil.AddTestAnswer(t, db, questionID, "user-2", optionIDs[1])
	testutil.AddTestReply(t, db, discussionID, "user-1", "Mine")
	testutil.AddTestReply(t, db, discussionID, "user-2", "Theirs")

	tests := []struct {
		name            string
		userID          string
		isAdmin         bool
		expectedReplies int
	}{
		{"admin sees everything", "admin-user", true, 2},
		{"participant sees own replies", "user-1", false, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := testutil.IssueTestToken(t, cfg, tt.userID, tt.isAdmin)
			req := testutil.MakeRequest("GET", "/events/"+slug+"/results", nil,
				map[string]string{"Authorization": "Bearer " + token})
			req.SetPathValue("slug", slug)
			w := httptest.NewRecorder()

			middleware.RequireIdentity(cfg.TokenSecret, handler.GetResults)(w, req)
			testutil.AssertStatus(t, w, http.StatusOK)

			var view results.EventResultsView
			testutil.AssertJSON(t, w, &view)

			if view.AdminView != tt.isAdmin {
				t.Errorf("Expected admin_view=%v", tt.isAdmin)
			}
			if len(view.Surveys) != 1 || len(view.Surveys[0].Questions) != 1 {
				t.Fatal("Expected one survey with one question")
			}
			q := view.Surveys[0].Questions[0]
			if q.TotalRespondents != 2 {
				t.Errorf("Expected 2 respondents, got %d", q.TotalRespondents)
			}
			for _, opt := range q.Options {
				if opt.Percentage != 50 {
					t.Errorf("Option %s: expected 50%%, got %d%%", opt.Label, opt.Percentage)
				}
			}

			if len(view.Discussions) != 1 {
				t.Fatal("Expected one discussion")
			}
			if view.Discussions[0].ReplyCount != 2 {
				t.Errorf("Expected reply count 2, got %d", view.Discussions[0].ReplyCount)
			}
			if len(view.Discussions[0].Replies) != tt.expectedReplies {
				t.Errorf("Expected %d visible replies, got %d",
					tt.expectedReplies, len(view.Discussions[0].Replies))
			}
		})
	}
}
