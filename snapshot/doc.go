// Copyright (c) 2025 Convene Contributors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package snapshot loads an event's content tree as an immutable value.

Load materializes the full tree in one pass:

	snap, err := snapshot.Load(db, eventID)

The snapshot serves two callers with one shape: view rendering and
submission validation. Because validation runs against the same
structure participants were shown, a participant can never answer a
question that was not rendered to them.

The tree is strictly owned (no back-pointers; parents reference
children, children carry only identifier fields), which keeps it
serializable and comparable. Identifier lookups are available through
Question, Discussion, and Questions.

Ordering: every child list is sorted by order index with stable
creation-order tie-break.
*/
package snapshot
