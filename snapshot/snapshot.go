// Copyright (c) 2025 Convene Contributors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package snapshot

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/convenehq/convene/models"
)

var ErrNotFound = errors.New("event not found")

// EventSnapshot is a point-in-time materialization of an event's content
// tree. It is a value: later storage writes never affect a snapshot
// already returned. Children are ordered by order index, ties broken by
// creation order.
type EventSnapshot struct {
	Event       models.Event        `json:"event"`
	Sections    []SectionNode       `json:"sections"`
	Surveys     []SurveyNode        `json:"surveys"`
	Discussions []models.Discussion `json:"discussions"`
	Tables      []models.DataTable  `json:"tables"`
	Attachments []models.Attachment `json:"attachments"`

	questionIndex   map[string]*QuestionNode
	discussionIndex map[string]*models.Discussion
	orderedQuestion []*QuestionNode
}

type SectionNode struct {
	models.Section
	Decisions   []DecisionNode      `json:"decisions"`
	Surveys     []SurveyNode        `json:"surveys"`
	Discussions []models.Discussion `json:"discussions"`
	Tables      []models.DataTable  `json:"tables"`
	Attachments []models.Attachment `json:"attachments"`
}

type DecisionNode struct {
	models.Decision
	Items []models.DecisionItem `json:"items"`
}

type SurveyNode struct {
	models.Survey
	Questions []QuestionNode `json:"questions"`
}

type QuestionNode struct {
	models.Question
	Options []models.Option `json:"options"`

	optionSet map[string]bool
}

// HasOption reports whether optionID belongs to this question.
func (q *QuestionNode) HasOption(optionID string) bool {
	return q.optionSet[optionID]
}

// Question looks up a question anywhere in the tree by id.
func (s *EventSnapshot) Question(id string) (*QuestionNode, bool) {
	q, ok := s.questionIndex[id]
	return q, ok
}

// Discussion looks up a discussion anywhere in the tree by id.
func (s *EventSnapshot) Discussion(id string) (*models.Discussion, bool) {
	d, ok := s.discussionIndex[id]
	return d, ok
}

// Questions returns every question in the tree in document order:
// event-level surveys first, then section surveys in section order.
func (s *EventSnapshot) Questions() []*QuestionNode {
	return s.orderedQuestion
}

// Load reads the full content tree for an event. Returns ErrNotFound if
// the event does not exist. Read-only; no side effects.
func Load(db *sql.DB, eventID string) (*EventSnapshot, error) {
	event, err := loadEvent(db, eventID)
	if err != nil {
		return nil, err
	}

	snap := &EventSnapshot{Event: event}

	sections, err := loadSections(db, eventID)
	if err != nil {
		return nil, err
	}

	decisions, err := loadDecisions(db, eventID)
	if err != nil {
		return nil, err
	}

	surveys, err := loadSurveys(db, eventID)
	if err != nil {
		return nil, err
	}

	discussions, err := loadDiscussions(db, eventID)
	if err != nil {
		return nil, err
	}

	tables, err := loadTables(db, eventID)
	if err != nil {
		return nil, err
	}

	attachments, err := loadAttachments(db, eventID)
	if err != nil {
		return nil, err
	}

	// Assemble the tree bottom-up, grouping section-level children.
	decisionsBySection := make(map[string][]DecisionNode)
	for _, d := range decisions {
		decisionsBySection[d.SectionID] = append(decisionsBySection[d.SectionID], d)
	}
	surveysBySection := make(map[string][]SurveyNode)
	discussionsBySection := make(map[string][]models.Discussion)
	tablesBySection := make(map[string][]models.DataTable)
	attachmentsBySection := make(map[string][]models.Attachment)

	for _, sv := range surveys {
		if sv.SectionID == nil {
			snap.Surveys = append(snap.Surveys, sv)
		} else {
			surveysBySection[*sv.SectionID] = append(surveysBySection[*sv.SectionID], sv)
		}
	}
	for _, d := range discussions {
		if d.SectionID == nil {
			snap.Discussions = append(snap.Discussions, d)
		} else {
			discussionsBySection[*d.SectionID] = append(discussionsBySection[*d.SectionID], d)
		}
	}
	for _, t := range tables {
		if t.SectionID == nil {
			snap.Tables = append(snap.Tables, t)
		} else {
			tablesBySection[*t.SectionID] = append(tablesBySection[*t.SectionID], t)
		}
	}
	for _, a := range attachments {
		if a.SectionID == nil {
			snap.Attachments = append(snap.Attachments, a)
		} else {
			attachmentsBySection[*a.SectionID] = append(attachmentsBySection[*a.SectionID], a)
		}
	}

	for _, sec := range sections {
		node := SectionNode{
			Section:     sec,
			Decisions:   decisionsBySection[sec.ID],
			Surveys:     surveysBySection[sec.ID],
			Discussions: discussionsBySection[sec.ID],
			Tables:      tablesBySection[sec.ID],
			Attachments: attachmentsBySection[sec.ID],
		}
		snap.Sections = append(snap.Sections, node)
	}

	snap.buildIndex()

	return snap, nil
}

// buildIndex walks the assembled tree once and records identifier
// lookups. Must run last: the maps hold pointers into the final slices.
func (s *EventSnapshot) buildIndex() {
	s.questionIndex = make(map[string]*QuestionNode)
	s.discussionIndex = make(map[string]*models.Discussion)

	indexSurveys := func(surveys []SurveyNode) {
		for i := range surveys {
			for j := range surveys[i].Questions {
				q := &surveys[i].Questions[j]
				q.optionSet = make(map[string]bool, len(q.Options))
				for _, opt := range q.Options {
					q.optionSet[opt.ID] = true
				}
				s.questionIndex[q.ID] = q
				s.orderedQuestion = append(s.orderedQuestion, q)
			}
		}
	}
	indexDiscussions := func(discussions []models.Discussion) {
		for i := range discussions {
			s.discussionIndex[discussions[i].ID] = &discussions[i]
		}
	}

	indexSurveys(s.Surveys)
	indexDiscussions(s.Discussions)
	for i := range s.Sections {
		indexSurveys(s.Sections[i].Surveys)
		indexDiscussions(s.Sections[i].Discussions)
	}
}

func loadEvent(db *sql.DB, eventID string) (models.Event, error) {
	var ev models.Event
	var requiresSignature int
	err := db.QueryRow(`
		SELECT id, title, description, starts_at, ends_at, status,
		       requires_signature, share_slug, completed_at, created_at
		FROM event
		WHERE id = $1
	`, eventID).Scan(
		&ev.ID, &ev.Title, &ev.Description, &ev.StartsAt, &ev.EndsAt,
		&ev.Status, &requiresSignature, &ev.ShareSlug, &ev.CompletedAt, &ev.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return models.Event{}, ErrNotFound
	}
	if err != nil {
		return models.Event{}, fmt.Errorf("failed to load event: %w", err)
	}

	ev.RequiresSignature = requiresSignature != 0
	return ev, nil
}

func loadSections(db *sql.DB, eventID string) ([]models.Section, error) {
	rows, err := db.Query(`
		SELECT id, event_id, title, body, order_idx
		FROM section
		WHERE event_id = $1
		ORDER BY order_idx, created_at, id
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load sections: %w", err)
	}
	defer rows.Close()

	var sections []models.Section
	for rows.Next() {
		var s models.Section
		var body sql.NullString
		if err := rows.Scan(&s.ID, &s.EventID, &s.Title, &body, &s.OrderIndex); err != nil {
			return nil, fmt.Errorf("failed to scan section: %w", err)
		}
		s.Body = body.String
		sections = append(sections, s)
	}

	return sections, rows.Err()
}

func loadDecisions(db *sql.DB, eventID string) ([]DecisionNode, error) {
	rows, err := db.Query(`
		SELECT d.id, d.section_id, d.title, d.order_idx
		FROM decision d
		JOIN section s ON d.section_id = s.id
		WHERE s.event_id = $1
		ORDER BY d.order_idx, d.created_at, d.id
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load decisions: %w", err)
	}
	defer rows.Close()

	var decisions []DecisionNode
	byID := make(map[string]int)
	for rows.Next() {
		var d models.Decision
		if err := rows.Scan(&d.ID, &d.SectionID, &d.Title, &d.OrderIndex); err != nil {
			return nil, fmt.Errorf("failed to scan decision: %w", err)
		}
		byID[d.ID] = len(decisions)
		decisions = append(decisions, DecisionNode{Decision: d})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	itemRows, err := db.Query(`
		SELECT i.id, i.decision_id, i.body, i.order_idx
		FROM decision_item i
		JOIN decision d ON i.decision_id = d.id
		JOIN section s ON d.section_id = s.id
		WHERE s.event_id = $1
		ORDER BY i.order_idx, i.created_at, i.id
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load decision items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var item models.DecisionItem
		if err := itemRows.Scan(&item.ID, &item.DecisionID, &item.Body, &item.OrderIndex); err != nil {
			return nil, fmt.Errorf("failed to scan decision item: %w", err)
		}
		if idx, ok := byID[item.DecisionID]; ok {
			decisions[idx].Items = append(decisions[idx].Items, item)
		}
	}

	return decisions, itemRows.Err()
}

func loadSurveys(db *sql.DB, eventID string) ([]SurveyNode, error) {
	rows, err := db.Query(`
		SELECT id, event_id, section_id, title, description, active, order_idx
		FROM survey
		WHERE event_id = $1
		ORDER BY order_idx, created_at, id
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load surveys: %w", err)
	}
	defer rows.Close()

	var surveys []SurveyNode
	byID := make(map[string]int)
	for rows.Next() {
		var sv models.Survey
		var description sql.NullString
		var active int
		if err := rows.Scan(&sv.ID, &sv.EventID, &sv.SectionID, &sv.Title, &description, &active, &sv.OrderIndex); err != nil {
			return nil, fmt.Errorf("failed to scan survey: %w", err)
		}
		sv.Description = description.String
		sv.Active = active != 0
		byID[sv.ID] = len(surveys)
		surveys = append(surveys, SurveyNode{Survey: sv})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	questionRows, err := db.Query(`
		SELECT q.id, q.survey_id, q.text, q.qtype, q.required, q.order_idx
		FROM question q
		JOIN survey sv ON q.survey_id = sv.id
		WHERE sv.event_id = $1
		ORDER BY q.order_idx, q.created_at, q.id
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}
	defer questionRows.Close()

	questionSurvey := make(map[string]string)
	for questionRows.Next() {
		var q models.Question
		var required int
		if err := questionRows.Scan(&q.ID, &q.SurveyID, &q.Text, &q.Type, &required, &q.OrderIndex); err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		q.Required = required != 0
		if idx, ok := byID[q.SurveyID]; ok {
			questionSurvey[q.ID] = q.SurveyID
			surveys[idx].Questions = append(surveys[idx].Questions, QuestionNode{Question: q})
		}
	}
	if err := questionRows.Err(); err != nil {
		return nil, err
	}

	optionRows, err := db.Query(`
		SELECT o.id, o.question_id, o.label, o.order_idx
		FROM option o
		JOIN question q ON o.question_id = q.id
		JOIN survey sv ON q.survey_id = sv.id
		WHERE sv.event_id = $1
		ORDER BY o.order_idx, o.created_at, o.id
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load options: %w", err)
	}
	defer optionRows.Close()

	for optionRows.Next() {
		var opt models.Option
		if err := optionRows.Scan(&opt.ID, &opt.QuestionID, &opt.Label, &opt.OrderIndex); err != nil {
			return nil, fmt.Errorf("failed to scan option: %w", err)
		}
		surveyID, ok := questionSurvey[opt.QuestionID]
		if !ok {
			continue
		}
		sv := &surveys[byID[surveyID]]
		for i := range sv.Questions {
			if sv.Questions[i].ID == opt.QuestionID {
				sv.Questions[i].Options = append(sv.Questions[i].Options, opt)
				break
			}
		}
	}

	return surveys, optionRows.Err()
}

func loadDiscussions(db *sql.DB, eventID string) ([]models.Discussion, error) {
	rows, err := db.Query(`
		SELECT id, event_id, section_id, title, purpose, active, order_idx
		FROM discussion
		WHERE event_id = $1
		ORDER BY order_idx, created_at, id
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load discussions: %w", err)
	}
	defer rows.Close()

	var discussions []models.Discussion
	for rows.Next() {
		var d models.Discussion
		var purpose sql.NullString
		var active int
		if err := rows.Scan(&d.ID, &d.EventID, &d.SectionID, &d.Title, &purpose, &active, &d.OrderIndex); err != nil {
			return nil, fmt.Errorf("failed to scan discussion: %w", err)
		}
		d.Purpose = purpose.String
		d.Active = active != 0
		discussions = append(discussions, d)
	}

	return discussions, rows.Err()
}

// tablePayload is the stored JSON shape for a flexible data table.
type tablePayload struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

func loadTables(db *sql.DB, eventID string) ([]models.DataTable, error) {
	rows, err := db.Query(`
		SELECT id, event_id, section_id, title, payload, order_idx
		FROM data_table
		WHERE event_id = $1
		ORDER BY order_idx, created_at, id
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tables: %w", err)
	}
	defer rows.Close()

	var tables []models.DataTable
	for rows.Next() {
		var t models.DataTable
		var payload []byte
		if err := rows.Scan(&t.ID, &t.EventID, &t.SectionID, &t.Title, &payload, &t.OrderIndex); err != nil {
			return nil, fmt.Errorf("failed to scan table: %w", err)
		}
		var p tablePayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, fmt.Errorf("failed to parse table payload: %w", err)
		}
		t.Columns = p.Columns
		t.Rows = p.Rows
		tables = append(tables, t)
	}

	return tables, rows.Err()
}

func loadAttachments(db *sql.DB, eventID string) ([]models.Attachment, error) {
	rows, err := db.Query(`
		SELECT id, event_id, section_id, filename, content_type, url, size_bytes, order_idx
		FROM attachment
		WHERE event_id = $1
		ORDER BY order_idx, created_at, id
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load attachments: %w", err)
	}
	defer rows.Close()

	var attachments []models.Attachment
	for rows.Next() {
		var a models.Attachment
		var contentType sql.NullString
		if err := rows.Scan(&a.ID, &a.EventID, &a.SectionID, &a.Filename, &contentType, &a.URL, &a.SizeBytes, &a.OrderIndex); err != nil {
			return nil, fmt.Errorf("failed to scan attachment: %w", err)
		}
		a.ContentType = contentType.String
		attachments = append(attachments, a)
	}

	return attachments, rows.Err()
}
