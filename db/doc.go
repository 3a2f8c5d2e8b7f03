// Copyright (c) 2025 Convene Contributors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database connection and schema creation.

# Opening a Connection

Open selects the driver from the configured database type:

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)

Supported types are "sqlite" (modernc.org/sqlite, pure Go) and
"postgres" (lib/pq). SQLite connections get foreign key enforcement
turned on and a single-writer connection pool.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

The content tree:

	event 1──* section 1──* decision 1──* decision_item
	event 1──* survey 1──* question 1──* option   (survey may hang off a section)
	event 1──* discussion 1──* reply              (discussion may hang off a section)
	event 1──* data_table, attachment

Submission facts:

  - answer / answer_option: one selection set per (question, user)
  - signature_record: one signature per (event, user)

Tree tables cascade on delete. answer.question_id has no foreign key:
deleting a question orphans its answers instead of erasing submission
records; aggregation queries by question id so orphans never surface.

# Placeholders

All queries use $1-style placeholders, which both lib/pq and SQLite
accept as long as parameters appear in ascending order.
*/
package db
