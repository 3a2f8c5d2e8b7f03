// Copyright (c) 2025 Convene Contributors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse resolves server configuration.

Precedence is CLI flags > environment variables > YAML config file,
with defaults only for the port, database type, and base URL.

# Flags

	-p               Server port (PORT)
	-d               Database URL (DATABASE_URL) - required
	-t               Database type, sqlite or postgres (DATABASE_TYPE)
	-base-url        Public base URL for share links (BASE_URL)
	-c               Path to YAML config file (CONVENE_CONFIG)
	-organizer-salt  Organizer key salt (ORGANIZER_KEY_SALT) - required
	-slug-salt       Event slug salt (EVENT_SLUG_SALT) - required
	-token-secret    Identity token secret (TOKEN_SECRET) - required

# Config File

The optional YAML file carries the same keys in snake_case:

	port: 4270
	database_url: postgres://...
	database_type: postgres
	organizer_key_salt: ...
	event_slug_salt: ...
	token_secret: ...
*/
package cliparse
