// Copyright (c) 2025 Convene Contributors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Convene API server.

Convene is an event submission and results aggregation service:
organizers author a structured event (sections, decisions, surveys with
questions, discussions, tables, attachments), participants submit
answers, discussion replies, and an optional signature in one atomic
request, and both sides read aggregated results.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=convene.db go run .

Or with flags:

	go run . -p 4270 -d "postgres://..." -t postgres

A .env file in the working directory is loaded automatically, and -c
points at an optional YAML config file.

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite path or PostgreSQL connection string
  - ORGANIZER_KEY_SALT (--organizer-salt): Secret for organizer key HMAC
  - EVENT_SLUG_SALT (--slug-salt): Secret for share slug generation
  - TOKEN_SECRET (--token-secret): Shared secret for identity tokens

Optional settings:

  - PORT (-p): Server port (default: 4270)
  - DATABASE_TYPE (-t): sqlite (default) or postgres
  - BASE_URL (--base-url): Public base URL used in share links

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (events, submissions, results)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, identity, JSON helpers
  - models: Request/response types
  - auth: Organizer keys, share slugs, identity tokens
  - db: Driver selection and schema creation
  - snapshot: Point-in-time event content trees
  - submission: Validation and atomic commit
  - results: Question tallies and role-aware discussion views
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
