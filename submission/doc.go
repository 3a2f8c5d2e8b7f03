// Copyright (c) 2025 Convene Contributors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package submission validates and persists combined submissions.

A submission is a participant's survey answers, discussion replies, and
optional signature delivered together. Validate is a pure function over
the event snapshot and reports every problem at once:

	result := submission.Validate(snap, sub, hasPriorSignature)
	if !result.OK() { ... result.Errors ... }

Commit re-validates against a fresh snapshot, requires the event to be
active, and writes everything in one transaction:

  - answers: upsert per (question, user) - a resubmission replaces the
    prior selection set wholesale
  - replies: append-only inserts, never edited through this path
  - signature: upsert per (event, user), only for events that require one

Answers and replies are deliberately two write strategies, not one
generic "submission item": unifying them would silently make replies
editable.

If the content tree changed between snapshot load and the write (a
referenced question, option, or discussion disappeared or was
deactivated), Commit fails with ErrConcurrencyConflict and nothing is
applied.
*/
package submission
