// Copyright (c) 2025 Convene Contributors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package results

import (
	"database/sql"

	"github.com/convenehq/convene/models"
	"github.com/convenehq/convene/snapshot"
)

// EventResultsView mirrors the content tree with questions and
// discussions replaced by their aggregates.
type EventResultsView struct {
	EventID     string                              `json:"event_id"`
	Title       string                              `json:"title"`
	Status      string                              `json:"status"`
	AdminView   bool                                `json:"admin_view"`
	Sections    []SectionResults                    `json:"sections"`
	Surveys     []SurveyResults                     `json:"surveys"`
	Discussions []models.AggregatedDiscussionResult `json:"discussions"`
}

type SectionResults struct {
	SectionID   string                              `json:"section_id"`
	Title       string                              `json:"title"`
	OrderIndex  int                                 `json:"order_index"`
	Surveys     []SurveyResults                     `json:"surveys"`
	Discussions []models.AggregatedDiscussionResult `json:"discussions"`
}

type SurveyResults struct {
	SurveyID  string                            `json:"survey_id"`
	Title     string                            `json:"title"`
	Questions []models.AggregatedQuestionResult `json:"questions"`
}

// BuildResults walks the event snapshot and aggregates every question
// and discussion it finds, preserving section order. The admin and
// participant variants are the same traversal; only the isAdmin flag
// threaded to the discussion aggregator differs, so the two views can
// never structurally diverge.
func BuildResults(db *sql.DB, eventID, viewerUserID string, isAdmin bool) (*EventResultsView, error) {
	snap, err := snapshot.Load(db, eventID)
	if err != nil {
		return nil, err
	}

	view := &EventResultsView{
		EventID:   snap.Event.ID,
		Title:     snap.Event.Title,
		Status:    snap.Event.Status,
		AdminView: isAdmin,
		Sections:  []SectionResults{},
	}

	view.Surveys, err = aggregateSurveys(db, snap.Surveys)
	if err != nil {
		return nil, err
	}
	view.Discussions, err = aggregateDiscussions(db, snap.Discussions, viewerUserID, isAdmin)
	if err != nil {
		return nil, err
	}

	for _, sec := range snap.Sections {
		secResults := SectionResults{
			SectionID:  sec.ID,
			Title:      sec.Title,
			OrderIndex: sec.OrderIndex,
		}
		secResults.Surveys, err = aggregateSurveys(db, sec.Surveys)
		if err != nil {
			return nil, err
		}
		secResults.Discussions, err = aggregateDiscussions(db, sec.Discussions, viewerUserID, isAdmin)
		if err != nil {
			return nil, err
		}
		view.Sections = append(view.Sections, secResults)
	}

	return view, nil
}

func aggregateSurveys(db *sql.DB, surveys []snapshot.SurveyNode) ([]SurveyResults, error) {
	results := []SurveyResults{}
	for _, sv := range surveys {
		sr := SurveyResults{
			SurveyID:  sv.ID,
			Title:     sv.Title,
			Questions: []models.AggregatedQuestionResult{},
		}
		for _, q := range sv.Questions {
			aggregated, err := AggregateQuestion(db, q.ID)
			if err != nil {
				return nil, err
			}
			sr.Questions = append(sr.Questions, aggregated)
		}
		results = append(results, sr)
	}
	return results, nil
}

func aggregateDiscussions(db *sql.DB, discussions []models.Discussion, viewerUserID string, isAdmin bool) ([]models.AggregatedDiscussionResult, error) {
	results := []models.AggregatedDiscussionResult{}
	for _, d := range discussions {
		aggregated, err := AggregateDiscussion(db, d.ID, viewerUserID, isAdmin)
		if err != nil {
			return nil, err
		}
		results = append(results, aggregated)
	}
	return results, nil
}
