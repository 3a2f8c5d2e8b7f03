// Copyright (c) 2025 Convene Contributors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/convenehq/convene/auth"
	"github.com/convenehq/convene/models"
	"github.com/convenehq/convene/testutil"
)

func TestCreateEvent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewEventHandler(db, cfg)

	tests := []struct {
		name           string
		requestBody    interface{}
		expectedStatus int
		checkResponse  func(t *testing.T, resp *models.CreateEventResponse)
	}{
		{
			name: "valid event creation",
			requestBody: models.CreateEventRequest{
				Title:             "Annual General Meeting",
				Description:       "Yearly review",
				RequiresSignature: true,
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, resp *models.CreateEventResponse) {
				if resp.EventID == "" {
					t.Error("Expected non-empty event_id")
				}
				if resp.OrganizerKey == "" {
					t.Error("Expected non-empty organizer_key")
				}

				expectedKey := auth.GenerateOrganizerKey(resp.EventID, cfg.OrganizerKeySalt)
				if resp.OrganizerKey != expectedKey {
					t.Error("Organizer key does not match expected value")
				}

				var status string
				var reqSig int
				err := db.QueryRow(`
					SELECT status, requires_signature FROM event WHERE id = $1
				`, resp.EventID).Scan(&status, &reqSig)
				if err != nil {
					t.Fatalf("Failed to query event: %v", err)
				}
				if status != models.StatusDraft {
					t.Errorf("Expected status 'draft', got '%s'", status)
				}
				if reqSig != 1 {
					t.Error("Expected requires_signature set")
				}
			},
		},
		{
			name:           "missing title",
			requestBody:    models.CreateEventRequest{Description: "no title"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid JSON",
			requestBody:    "not-json",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/events", tt.requestBody, nil)
			w := httptest.NewRecorder()

			handler.CreateEvent(w, req)
			testutil.AssertStatus(t, w, tt.expectedStatus)

			if tt.expectedStatus == http.StatusCreated && tt.checkResponse != nil {
				var resp models.CreateEventResponse
				testutil.AssertJSON(t, w, &resp)
				tt.checkResponse(t, &resp)
			}
		})
	}
}

func TestAddSection(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewEventHandler(db, cfg)

	draftID, draftKey, _ := testutil.CreateTestEvent(t, db, cfg, models.StatusDraft, false)
	activeID, activeKey, _ := testutil.CreateTestEvent(t, db, cfg, models.StatusActive, false)

	tests := []struct {
		name           string
		eventID        string
		organizerKey   string
		requestBody    interface{}
		expectedStatus int
	}{
		{
			name:           "valid section",
			eventID:        draftID,
			organizerKey:   draftKey,
			requestBody:    models.AddSectionRequest{Title: "Agenda", Body: "Items for today", OrderIndex: 1},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "wrong organizer key",
			eventID:        draftID,
			organizerKey:   "bogus",
			requestBody:    models.AddSectionRequest{Title: "Agenda"},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "non-draft event",
			eventID:        activeID,
			organizerKey:   activeKey,
			requestBody:    models.AddSectionRequest{Title: "Agenda"},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "missing title",
			eventID:        draftID,
			organizerKey:   draftKey,
			requestBody:    models.AddSectionRequest{Body: "no title"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "event not found",
			eventID:        "no-such-event",
			organizerKey:   auth.GenerateOrganizerKey("no-such-event", cfg.OrganizerKeySalt),
			requestBody:    models.AddSectionRequest{Title: "Agenda"},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/events/"+tt.eventID+"/sections", tt.requestBody,
				map[string]string{"X-Organizer-Key": tt.organizerKey})
			req.SetPathValue("id", tt.eventID)
			w := httptest.NewRecorder()

			handler.AddSection(w, req)
			testutil.AssertStatus(t, w, tt.expectedStatus)

			if tt.expectedStatus == http.StatusCreated {
				var resp models.AddChildResponse
				testutil.AssertJSON(t, w, &resp)

				var title string
				err := db.QueryRow(`SELECT title FROM section WHERE id = $1`, resp.ID).Scan(&title)
				if err != nil {
					t.Fatalf("Failed to query section: %v", err)
				}
				if title != "Agenda" {
					t.Errorf("Expected title 'Agenda', got '%s'", title)
				}
			}
		})
	}
}

func TestAddDecision(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewEventHandler(db, cfg)

	eventID, organizerKey, _ := testutil.CreateTestEvent(t, db, cfg, models.StatusDraft, false)
	sectionID := testutil.AddTestSection(t, db, eventID, "Agenda", 0)

	body := models.AddDecisionRequest{
		Title: "Budget approval",
		Items: []models.DecisionItemInput{
			{Body: "Approve FY27 budget", OrderIndex: 0},
			{Body: "Defer to Q3", OrderIndex: 1},
		},
	}

	req := testutil.MakeRequest("POST", "/events/"+eventID+"/sections/"+sectionID+"/decisions", body,
		map[string]string{"X-Organizer-Key": organizerKey})
	req.SetPathValue("id", eventID)
	req.SetPathValue("sectionID", sectionID)
	w := httptest.NewRecorder()

	handler.AddDecision(w, req)
	testutil.AssertStatus(t, w, http.StatusCreated)

	var resp models.AddChildResponse
	testutil.AssertJSON(t, w, &resp)

	var items int
	if err := db.QueryRow(`SELECT COUNT(*) FROM decision_item WHERE decision_id = $1`, resp.ID).Scan(&items); err != nil {
		t.Fatalf("Failed to count items: %v", err)
	}
	if items != 2 {
		t.Errorf("Expected 2 decision items, got %d", items)
	}

	// Section from another event is rejected
	otherEvent, otherKey, _ := testutil.CreateTestEvent(t, db, cfg, models.StatusDraft, false)
	req = testutil.MakeRequest("POST", "/events/"+otherEvent+"/sections/"+sectionID+"/decisions", body,
		map[string]string{"X-Organizer-Key": otherKey})
	req.SetPathValue("id", otherEvent)
	req.SetPathValue("sectionID", sectionID)
	w = httptest.NewRecorder()

	handler.AddDecision(w, req)
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestAddQuestion(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewEventHandler(db, cfg)

	eventID, organizerKey, _ := testutil.CreateTestEvent(t, db, cfg, models.StatusDraft, false)
	surveyID := testutil.AddTestSurvey(t, db, eventID, "", "Survey")

	tests := []struct {
		name           string
		surveyID       string
		requestBody    models.AddQuestionRequest
		expectedStatus int
	}{
		{
			name:     "valid single choice question",
			surveyID: surveyID,
			requestBody: models.AddQuestionRequest{
				Text:     "Approve the budget?",
				Type:     models.QuestionSingle,
				Required: true,
				Options:  []models.OptionInput{{Label: "Yes"}, {Label: "No"}},
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:     "defaults to single choice",
			surveyID: surveyID,
			requestBody: models.AddQuestionRequest{
				Text:    "Second question",
				Options: []models.OptionInput{{Label: "A"}, {Label: "B"}},
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:     "too few options",
			surveyID: surveyID,
			requestBody: models.AddQuestionRequest{
				Text:    "Lonely question",
				Options: []models.OptionInput{{Label: "Only"}},
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:     "invalid type",
			surveyID: surveyID,
			requestBody: models.AddQuestionRequest{
				Text:    "Strange question",
				Type:    "ranked",
				Options: []models.OptionInput{{Label: "A"}, {Label: "B"}},
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:     "unknown survey",
			surveyID: "no-such-survey",
			requestBody: models.AddQuestionRequest{
				Text:    "Question",
				Options: []models.OptionInput{{Label: "A"}, {Label: "B"}},
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/events/"+eventID+"/surveys/"+tt.surveyID+"/questions", tt.requestBody,
				map[string]string{"X-Organizer-Key": organizerKey})
			req.SetPathValue("id", eventID)
			req.SetPathValue("surveyID", tt.surveyID)
			w := httptest.NewRecorder()

			handler.AddQuestion(w, req)
			testutil.AssertStatus(t, w, tt.expectedStatus)

			if tt.expectedStatus == http.StatusCreated {
				var resp models.AddChildResponse
				testutil.AssertJSON(t, w, &resp)

				var qtype string
				var options int
				err := db.QueryRow(`SELECT qtype FROM question WHERE id = $1`, resp.ID).Scan(&qtype)
				if err != nil {
					t.Fatalf("Failed to query question: %v", err)
				}
				if qtype != models.QuestionSingle {
					t.Errorf("Expected single choice, got %s", qtype)
				}
				err = db.QueryRow(`SELECT COUNT(*) FROM option WHERE question_id = $1`, resp.ID).Scan(&options)
				if err != nil {
					t.Fatalf("Failed to count options: %v", err)
				}
				if options != len(tt.requestBody.Options) {
					t.Errorf("Expected %d options, got %d", len(tt.requestBody.Options), options)
				}
			}
		})
	}
}

func TestActivateEvent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewEventHandler(db, cfg)

	// Draft with a question activates
	readyID, readyKey, _ := testutil.CreateTestEvent(t, db, cfg, models.StatusDraft, false)
	surveyID := testutil.AddTestSurvey(t, db, readyID, "", "Survey")
	testutil.AddTestQuestion(t, db, surveyID, "Q1", models.QuestionSingle, false, "A", "B")

	// Draft with only a discussion also activates
	discID, discKey, _ := testutil.CreateTestEvent(t, db, cfg, models.StatusDraft, false)
	testutil.AddTestDiscussion(t, db, discID, "Open floor", true)

	// Empty draft cannot activate
	emptyID, emptyKey, _ := testutil.CreateTestEvent(t, db, cfg, models.StatusDraft, false)

	// Already active cannot re-activate
	activeID, activeKey, _ := testutil.CreateTestEvent(t, db, cfg, models.StatusActive, false)

	tests := []struct {
		name           string
		eventID        string
		organizerKey   string
		expectedStatus int
	}{
		{"draft with question", readyID, readyKey, http.StatusOK},
		{"draft with discussion only", discID, discKey, http.StatusOK},
		{"empty draft", emptyID, emptyKey, http.StatusBadRequest},
		{"already active", activeID, activeKey, http.StatusConflict},
		{"wrong key", readyID, "bogus", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/events/"+tt.eventID+"/activate", nil,
				map[string]string{"X-Organizer-Key": tt.organizerKey})
			req.SetPathValue("id", tt.eventID)
			w := httptest.NewRecorder()

			handler.ActivateEvent(w, req)
			testutil.AssertStatus(t, w, tt.expectedStatus)

			if tt.expectedStatus == http.StatusOK {
				var resp models.ActivateEventResponse
				testutil.AssertJSON(t, w, &resp)
				if resp.ShareSlug == "" {
					t.Error("Expected non-empty share_slug")
				}
				if resp.ShareURL != cfg.BaseURL+"/events/"+resp.ShareSlug {
					t.Errorf("Unexpected share URL %s", resp.ShareURL)
				}

				var status string
				var slug string
				err := db.QueryRow(`SELECT status, share_slug FROM event WHERE id = $1`, tt.eventID).Scan(&status, &slug)
				if err != nil {
					t.Fatalf("Failed to query event: %v", err)
				}
				if status != models.StatusActive {
					t.Errorf("Expected active status, got %s", status)
				}
				if slug != resp.ShareSlug {
					t.Error("Stored slug differs from response")
				}
			}
		})
	}
}

func TestCompleteEvent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewEventHandler(db, cfg)

	activeID, activeKey, _ := testutil.CreateTestEvent(t, db, cfg, models.StatusActive, false)
	draftID, draftKey, _ := testutil.CreateTestEvent(t, db, cfg, models.StatusDraft, false)

	tests := []struct {
		name           string
		eventID        string
		organizerKey   string
		expectedStatus int
	}{
		{"active event completes", activeID, activeKey, http.StatusOK},
		{"draft cannot complete", draftID, draftKey, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/events/"+tt.eventID+"/complete", nil,
				map[string]string{"X-Organizer-Key": tt.organizerKey})
			req.SetPathValue("id", tt.eventID)
			w := httptest.NewRecorder()

			handler.CompleteEvent(w, req)
			testutil.AssertStatus(t, w, tt.expectedStatus)

			if tt.expectedStatus == http.StatusOK {
				var status string
				err := db.QueryRow(`SELECT status FROM event WHERE id = $1`, tt.eventID).Scan(&status)
				if err != nil {
					t.Fatalf("Failed to query event: %v", err)
				}
				if status != models.StatusCompleted {
					t.Errorf("Expected completed, got %s", status)
				}
			}
		})
	}
}

func TestCancelEvent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewEventHandler(db, cfg)

	draftID, draftKey, _ := testutil.CreateTestEvent(t, db, cfg, models.StatusDraft, false)
	activeID, activeKey, _ := testutil.CreateTestEvent(t, db, cfg, models.StatusActive, false)
	completedID, completedKey, _ := testutil.CreateTestEvent(t, db, cfg, models.StatusCompleted, false)

	tests := []struct {
		name           string
		eventID        string
		organizerKey   string
		expectedStatus int
	}{
		{"draft cancels", draftID, draftKey, http.StatusNoContent},
		{"active cancels", activeID, activeKey, http.StatusNoContent},
		{"completed cannot cancel", completedID, completedKey, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/events/"+tt.eventID+"/cancel", nil,
				map[string]string{"X-Organizer-Key": tt.organizerKey})
			req.SetPathValue("id", tt.eventID)
			w := httptest.NewRecorder()

			handler.CancelEvent(w, req)
			testutil.AssertStatus(t, w, tt.expectedStatus)
		})
	}
}

func TestAddTableAndAttachment(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewEventHandler(db, cfg)

	eventID, organizerKey, _ := testutil.CreateTestEvent(t, db, cfg, models.StatusDraft, false)
	headers := map[string]string{"X-Organizer-Key": organizerKey}

	tableReq := testutil.MakeRequest("POST", "/events/"+eventID+"/tables", models.AddTableRequest{
		Title:   "Attendees",
		Columns: []string{"Name", "Role"},
		Rows:    [][]string{{"Alice", "Chair"}, {"Bob", "Member"}},
	}, headers)
	tableReq.SetPathValue("id", eventID)
	w := httptest.NewRecorder()

	handler.AddTable(w, tableReq)
	testutil.AssertStatus(t, w, http.StatusCreated)

	var resp models.AddChildResponse
	testutil.AssertJSON(t, w, &resp)

	var payload string
	if err := db.QueryRow(`SELECT payload FROM data_table WHERE id = $1`, resp.ID).Scan(&payload); err != nil {
		t.Fatalf("Failed to query table: %v", err)
	}
	if payload == "" {
		t.Error("Expected JSON payload stored")
	}

	attachReq := testutil.MakeRequest("POST", "/events/"+eventID+"/attachments", models.AddAttachmentRequest{
		Filename:    "agenda.pdf",
		ContentType: "application/pdf",
		URL:         "https://files.example.com/agenda.pdf",
		SizeBytes:   2048,
	}, headers)
	attachReq.SetPathValue("id", eventID)
	w = httptest.NewRecorder()

	handler.AddAttachment(w, attachReq)
	testutil.AssertStatus(t, w, http.StatusCreated)

	// Attachment without a URL is rejected
	badReq := testutil.MakeRequest("POST", "/events/"+eventID+"/attachments", models.AddAttachmentRequest{
		Filename: "orphan.pdf",
	}, headers)
	badReq.SetPathValue("id", eventID)
	w = httptest.NewRecorder()

	handler.AddAttachment(w, badReq)
	testutil.AssertStatus(t, w, http.StatusBadRequest)
}

func TestGetEventAdmin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewEventHandler(db, cfg)

	eventID, organizerKey, _ := testutil.CreateTestEvent(t, db, cfg, models.StatusDraft, false)
	surveyID := testutil.AddTestSurvey(t, db, eventID, "", "Survey")
	testutil.AddTestQuestion(t, db, surveyID, "Q1", models.QuestionSingle, false, "A", "B")

	req := testutil.MakeRequest("GET", "/events/"+eventID+"/admin", nil,
		map[string]string{"X-Organizer-Key": organizerKey})
	req.SetPathValue("id", eventID)
	w := httptest.NewRecorder()

	handler.GetEventAdmin(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp struct {
		Event   models.Event `json:"event"`
		Surveys []struct {
			Questions []struct {
				ID string `json:"id"`
			} `json:"questions"`
		} `json:"surveys"`
	}
	testutil.AssertJSON(t, w, &resp)
	if resp.Event.ID != eventID {
		t.Errorf("Expected event %s, got %s", eventID, resp.Event.ID)
	}
	if len(resp.Surveys) != 1 || len(resp.Surveys[0].Questions) != 1 {
		t.Error("Expected content tree with one survey and one question")
	}

	// Unauthorized without the key
	req = testutil.MakeRequest("GET", "/events/"+eventID+"/admin", nil, nil)
	req.SetPathValue("id", eventID)
	w = httptest.NewRecorder()

	handler.GetEventAdmin(w, req)
	testutil.AssertStatus(t, w, http.StatusUnauthorized)
}
