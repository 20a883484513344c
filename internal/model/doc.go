// Package model defines the survey's answer state, reference catalog,
// flattened sheet records and API error types.
//
// # Form State
//
// FormState mirrors the persisted snapshot of one respondent. Selection sets
// are slices of typed ids; per-entity maps are keyed by the same ids and are
// kept consistent with their selection by Reconcile:
//
//	s.SelectedTeammates = []TeammateID{"robiul"}
//	s.Reconcile() // drops feedback and tags for anyone else
//
// # Records
//
// FlatRecord is the ordered column map sent to the remote sheet. BaseColumns
// lists the fixed header row; leader rating columns are named by
// FeedbackColumn and appended to a Sheet when first seen.
//
// # Error Types
//
// RFC 9457 Problem Details errors are defined in errors.go.
package model
