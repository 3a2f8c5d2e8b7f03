// Copyright (c) 2025 Convene Contributors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides key generation, identity tokens, and hashing.

# Organizer Keys

Organizer keys are HMAC-SHA256 of the event ID with a server salt,
so they are deterministic and verifiable without storage:

	key := auth.GenerateOrganizerKey(eventID, cfg.OrganizerKeySalt)
	err := auth.ValidateOrganizerKey(eventID, key, cfg.OrganizerKeySalt)

# Identity Tokens

Participants and admins carry HS256 JWTs minted by the identity
service with the shared TOKEN_SECRET. ParseToken verifies a token and
returns the trusted Identity (user id + admin claim):

	id, err := auth.ParseToken(bearer, cfg.TokenSecret)

IssueToken exists for tooling and tests.

# Share Slugs

Events get a short base62 slug derived from HMAC(eventID, slug salt),
used as the participant-facing address.

# IP Hashing

HashIP produces a salted, truncated hash for audit trails without
storing raw addresses.
*/
package auth
