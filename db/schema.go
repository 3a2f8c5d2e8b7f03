// Copyright (c) 2025 Convene Contributors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// The DDL sticks to types and defaults both SQLite and PostgreSQL accept.
const schema = `
-- Events
CREATE TABLE IF NOT EXISTS event (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT,
    starts_at TIMESTAMP,
    ends_at TIMESTAMP,
    status TEXT NOT NULL DEFAULT 'draft' CHECK (status IN ('draft', 'active', 'completed', 'cancelled')),
    requires_signature INTEGER NOT NULL DEFAULT 0,
    share_slug TEXT UNIQUE,
    completed_at TIMESTAMP,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_event_share_slug ON event(share_slug);
CREATE INDEX IF NOT EXISTS idx_event_status ON event(status);

-- Sections
CREATE TABLE IF NOT EXISTS section (
    id TEXT PRIMARY KEY,
    event_id TEXT NOT NULL REFERENCES event(id) ON DELETE CASCADE,
    title TEXT NOT NULL,
    body TEXT,
    order_idx INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_section_event_id ON section(event_id);

-- Decisions
CREATE TABLE IF NOT EXISTS decision (
    id TEXT PRIMARY KEY,
    section_id TEXT NOT NULL REFERENCES section(id) ON DELETE CASCADE,
    title TEXT NOT NULL,
    order_idx INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_decision_section_id ON decision(section_id);

CREATE TABLE IF NOT EXISTS decision_item (
    id TEXT PRIMARY KEY,
    decision_id TEXT NOT NULL REFERENCES decision(id) ON DELETE CASCADE,
    body TEXT NOT NULL,
    order_idx INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_decision_item_decision_id ON decision_item(decision_id);

-- Surveys (event-level when section_id is NULL)
CREATE TABLE IF NOT EXISTS survey (
    id TEXT PRIMARY KEY,
    event_id TEXT NOT NULL REFERENCES event(id) ON DELETE CASCADE,
    section_id TEXT REFERENCES section(id) ON DELETE CASCADE,
    title TEXT NOT NULL,
    description TEXT,
    active INTEGER NOT NULL DEFAULT 1,
    order_idx INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_survey_event_id ON survey(event_id);
CREATE INDEX IF NOT EXISTS idx_survey_section_id ON survey(section_id);

-- Questions
CREATE TABLE IF NOT EXISTS question (
    id TEXT PRIMARY KEY,
    survey_id TEXT NOT NULL REFERENCES survey(id) ON DELETE CASCADE,
    text TEXT NOT NULL,
    qtype TEXT NOT NULL DEFAULT 'single' CHECK (qtype IN ('single', 'multiple')),
    required INTEGER NOT NULL DEFAULT 0,
    order_idx INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_question_survey_id ON question(survey_id);

-- Options
CREATE TABLE IF NOT EXISTS option (
    id TEXT PRIMARY KEY,
    question_id TEXT NOT NULL REFERENCES question(id) ON DELETE CASCADE,
    label TEXT NOT NULL,
    order_idx INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_option_question_id ON option(question_id);

-- Discussions (event-level when section_id is NULL)
CREATE TABLE IF NOT EXISTS discussion (
    id TEXT PRIMARY KEY,
    event_id TEXT NOT NULL REFERENCES event(id) ON DELETE CASCADE,
    section_id TEXT REFERENCES section(id) ON DELETE CASCADE,
    title TEXT NOT NULL,
    purpose TEXT,
    active INTEGER NOT NULL DEFAULT 1,
    order_idx INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_discussion_event_id ON discussion(event_id);

-- Replies (append-only; never edited through the submission path)
CREATE TABLE IF NOT EXISTS reply (
    id TEXT PRIMARY KEY,
    discussion_id TEXT NOT NULL REFERENCES discussion(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL,
    body TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_reply_discussion_id ON reply(discussion_id);
CREATE INDEX IF NOT EXISTS idx_reply_user ON reply(discussion_id, user_id);

-- Flexible data tables (columns/rows stored as a JSON document)
CREATE TABLE IF NOT EXISTS data_table (
    id TEXT PRIMARY KEY,
    event_id TEXT NOT NULL REFERENCES event(id) ON DELETE CASCADE,
    section_id TEXT REFERENCES section(id) ON DELETE CASCADE,
    title TEXT NOT NULL,
    payload TEXT NOT NULL,
    order_idx INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_data_table_event_id ON data_table(event_id);

-- Attachment metadata (blob storage is external)
CREATE TABLE IF NOT EXISTS attachment (
    id TEXT PRIMARY KEY,
    event_id TEXT NOT NULL REFERENCES event(id) ON DELETE CASCADE,
    section_id TEXT REFERENCES section(id) ON DELETE CASCADE,
    filename TEXT NOT NULL,
    content_type TEXT,
    url TEXT NOT NULL,
    size_bytes INTEGER NOT NULL DEFAULT 0,
    order_idx INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_attachment_event_id ON attachment(event_id);

-- Answers: at most one selection set per (question, user).
-- Deliberately no FK from answer.question_id: deleting a question
-- orphans its answers rather than erasing the submission record.
CREATE TABLE IF NOT EXISTS answer (
    id TEXT PRIMARY KEY,
    question_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    submitted_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (question_id, user_id)
);

CREATE INDEX IF NOT EXISTS idx_answer_question_id ON answer(question_id);
CREATE INDEX IF NOT EXISTS idx_answer_user ON answer(question_id, user_id);

CREATE TABLE IF NOT EXISTS answer_option (
    answer_id TEXT NOT NULL REFERENCES answer(id) ON DELETE CASCADE,
    option_id TEXT NOT NULL,
    PRIMARY KEY (answer_id, option_id)
);

CREATE INDEX IF NOT EXISTS idx_answer_option_option_id ON answer_option(option_id);

-- Signatures: at most one per (event, user)
CREATE TABLE IF NOT EXISTS signature_record (
    event_id TEXT NOT NULL REFERENCES event(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL,
    payload TEXT NOT NULL,
    ip_hash TEXT,
    user_agent TEXT,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (event_id, user_id)
);

CREATE INDEX IF NOT EXISTS idx_signature_event_id ON signature_record(event_id);
`
