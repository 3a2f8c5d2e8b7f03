// Copyright (c) 2025 Convene Contributors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package results computes aggregated, role-aware result views.

AggregateQuestion tallies one question from stored answers:

	agg, err := results.AggregateQuestion(db, questionID)

Total respondents is the number of distinct users with an answer row;
each option reports its selected count and a rounded percentage of
respondents (0 with no respondents). Percentages across a multiple
choice question need not sum to 100.

AggregateDiscussion is role-aware: admins get every reply in creation
order, participants get only their own replies while the count still
covers all users.

BuildResults assembles the full results tree for an event by walking
the content snapshot once and aggregating per question/discussion.
Admin and participant payloads come from the same traversal; the role
flag only changes what the discussion aggregator returns.
*/
package results
