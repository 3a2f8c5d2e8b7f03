package models

import "time"

// Event status constants
const (
	StatusDraft     = "draft"
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Question type constants
const (
	QuestionSingle   = "single"
	QuestionMultiple = "multiple"
)

// Request types

type CreateEventRequest struct {
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	StartsAt          *time.Time `json:"starts_at,omitempty"`
	EndsAt            *time.Time `json:"ends_at,omitempty"`
	RequiresSignature bool       `json:"requires_signature"`
}

type AddSectionRequest struct {
	Title      string `json:"title"`
	Body       string `json:"body"`
	OrderIndex int    `json:"order_index"`
}

type DecisionItemInput struct {
	Body       string `json:"body"`
	OrderIndex int    `json:"order_index"`
}

type AddDecisionRequest struct {
	Title      string              `json:"title"`
	OrderIndex int                 `json:"order_index"`
	Items      []DecisionItemInput `json:"items"`
}

type AddSurveyRequest struct {
	SectionID   *string `json:"section_id,omitempty"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	OrderIndex  int     `json:"order_index"`
}

type OptionInput struct {
	Label      string `json:"label"`
	OrderIndex int    `json:"order_index"`
}

type AddQuestionRequest struct {
	Text       string        `json:"text"`
	Type       string        `json:"type"`
	Required   bool          `json:"required"`
	OrderIndex int           `json:"order_index"`
	Options    []OptionInput `json:"options"`
}

type AddDiscussionRequest struct {
	SectionID  *string `json:"section_id,omitempty"`
	Title      string  `json:"title"`
	Purpose    string  `json:"purpose"`
	OrderIndex int     `json:"order_index"`
}

type AddTableRequest struct {
	SectionID  *string    `json:"section_id,omitempty"`
	Title      string     `json:"title"`
	Columns    []string   `json:"columns"`
	Rows       [][]string `json:"rows"`
	OrderIndex int        `json:"order_index"`
}

type AddAttachmentRequest struct {
	SectionID   *string `json:"section_id,omitempty"`
	Filename    string  `json:"filename"`
	ContentType string  `json:"content_type"`
	URL         string  `json:"url"`
	SizeBytes   int64   `json:"size_bytes"`
	OrderIndex  int     `json:"order_index"`
}

// Combined submission: survey answers, discussion replies, and an
// optional signature submitted together in one request.
type SubmitRequest struct {
	SurveyAnswers     []SurveyAnswers `json:"survey_answers"`
	DiscussionReplies []ReplyInput    `json:"discussion_replies"`
	SignatureData     string          `json:"signature_data,omitempty"`
}

type SurveyAnswers struct {
	SurveyID        string           `json:"survey_id"`
	QuestionAnswers []QuestionAnswer `json:"question_answers"`
}

type QuestionAnswer struct {
	QuestionID        string   `json:"question_id"`
	SelectedOptionIDs []string `json:"selected_option_ids"`
}

type ReplyInput struct {
	DiscussionID string `json:"discussion_id"`
	Body         string `json:"body"`
}

// Response types

type CreateEventResponse struct {
	EventID      string `json:"event_id"`
	OrganizerKey string `json:"organizer_key"`
}

type AddChildResponse struct {
	ID string `json:"id"`
}

type ActivateEventResponse struct {
	ShareSlug string `json:"share_slug"`
	ShareURL  string `json:"share_url"`
}

type CompleteEventResponse struct {
	CompletedAt time.Time `json:"completed_at"`
}

type SubmitResponse struct {
	AnswersWritten   int    `json:"answers_written"`
	RepliesWritten   int    `json:"replies_written"`
	SignatureWritten bool   `json:"signature_written"`
	Message          string `json:"message"`
}

type MySubmissionResponse struct {
	Answers []Answer `json:"answers"`
	Replies []Reply  `json:"replies"`
	Signed  bool     `json:"signed"`
}

type EventPreviewResponse struct {
	Title           string `json:"title"`
	Status          string `json:"status"`
	SectionCount    int    `json:"section_count"`
	QuestionCount   int    `json:"question_count"`
	SubmissionCount int    `json:"submission_count"`
	Starts          string `json:"starts,omitempty"`
}

// Domain types

type Event struct {
	ID                string     `json:"id"`
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	StartsAt          *time.Time `json:"starts_at,omitempty"`
	EndsAt            *time.Time `json:"ends_at,omitempty"`
	Status            string     `json:"status"`
	RequiresSignature bool       `json:"requires_signature"`
	ShareSlug         *string    `json:"share_slug,omitempty"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

type Section struct {
	ID         string `json:"id"`
	EventID    string `json:"event_id"`
	Title      string `json:"title"`
	Body       string `json:"body"`
	OrderIndex int    `json:"order_index"`
}

type Decision struct {
	ID         string `json:"id"`
	SectionID  string `json:"section_id"`
	Title      string `json:"title"`
	OrderIndex int    `json:"order_index"`
}

type DecisionItem struct {
	ID         string `json:"id"`
	DecisionID string `json:"decision_id"`
	Body       string `json:"body"`
	OrderIndex int    `json:"order_index"`
}

type Survey struct {
	ID          string  `json:"id"`
	EventID     string  `json:"event_id"`
	SectionID   *string `json:"section_id,omitempty"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Active      bool    `json:"active"`
	OrderIndex  int     `json:"order_index"`
}

type Question struct {
	ID         string `json:"id"`
	SurveyID   string `json:"survey_id"`
	Text       string `json:"text"`
	Type       string `json:"type"`
	Required   bool   `json:"required"`
	OrderIndex int    `json:"order_index"`
}

type Option struct {
	ID         string `json:"id"`
	QuestionID string `json:"question_id"`
	Label      string `json:"label"`
	OrderIndex int    `json:"order_index"`
}

type Discussion struct {
	ID         string  `json:"id"`
	EventID    string  `json:"event_id"`
	SectionID  *string `json:"section_id,omitempty"`
	Title      string  `json:"title"`
	Purpose    string  `json:"purpose"`
	Active     bool    `json:"active"`
	OrderIndex int     `json:"order_index"`
}

type Reply struct {
	ID           string    `json:"id"`
	DiscussionID string    `json:"discussion_id"`
	UserID       string    `json:"user_id"`
	Body         string    `json:"body"`
	CreatedAt    time.Time `json:"created_at"`
}

type DataTable struct {
	ID         string     `json:"id"`
	EventID    string     `json:"event_id"`
	SectionID  *string    `json:"section_id,omitempty"`
	Title      string     `json:"title"`
	Columns    []string   `json:"columns"`
	Rows       [][]string `json:"rows"`
	OrderIndex int        `json:"order_index"`
}

type Attachment struct {
	ID          string  `json:"id"`
	EventID     string  `json:"event_id"`
	SectionID   *string `json:"section_id,omitempty"`
	Filename    string  `json:"filename"`
	ContentType string  `json:"content_type"`
	URL         string  `json:"url"`
	SizeBytes   int64   `json:"size_bytes"`
	OrderIndex  int     `json:"order_index"`
}

type Answer struct {
	ID                string    `json:"id"`
	QuestionID        string    `json:"question_id"`
	UserID            string    `json:"-"` // Never expose in JSON
	SelectedOptionIDs []string  `json:"selected_option_ids"`
	SubmittedAt       time.Time `json:"submitted_at"`
}

type SignatureRecord struct {
	EventID   string    `json:"event_id"`
	UserID    string    `json:"-"` // Never expose in JSON
	Payload   string    `json:"payload"`
	IPHash    *string   `json:"-"` // Never expose in JSON
	UserAgent *string   `json:"-"` // Never expose in JSON
	CreatedAt time.Time `json:"created_at"`
}

// Aggregation result types

type OptionTally struct {
	OptionID      string `json:"option_id"`
	Label         string `json:"label"`
	SelectedCount int    `json:"selected_count"`
	Percentage    int    `json:"percentage"`
}

type AggregatedQuestionResult struct {
	QuestionID       string        `json:"question_id"`
	Text             string        `json:"text"`
	Type             string        `json:"type"`
	TotalRespondents int           `json:"total_respondents"`
	Options          []OptionTally `json:"options"`
}

type AggregatedDiscussionResult struct {
	DiscussionID string  `json:"discussion_id"`
	Title        string  `json:"title"`
	ReplyCount   int     `json:"reply_count"`
	Replies      []Reply `json:"replies"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
