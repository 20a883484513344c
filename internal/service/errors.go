package service

import "errors"

// Centralized service layer errors.
// All errors returned by service methods are defined here so handlers can
// map them with errors.Is.

// ===== Form State Errors =====
var (
	ErrUnknownToggle   = errors.New("unknown toggle kind")
	ErrInvalidID       = errors.New("invalid identifier")
	ErrUnknownTeammate = errors.New("teammate is not on the roster")
	ErrUnknownLeader   = errors.New("leader is not on the leader list")
	ErrUnknownQuestion = errors.New("question is not in the question set")
	ErrUnknownTag      = errors.New("tag is not in the tag table")
	ErrInvalidRating   = errors.New("rating is outside the question scale")
	ErrNotSelected     = errors.New("entity is not selected")
	ErrInvalidSKSField = errors.New("field must be stop, keep or start")
	ErrUnknownSection  = errors.New("unknown section")
)

// ===== Submission Errors =====
var (
	ErrArchiveFailed      = errors.New("submission could not be saved locally")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrArchiveCorrupt     = errors.New("submission archive is unreadable")
	ErrSurveyIncomplete   = errors.New("survey has incomplete sections")
	ErrNothingToFinish    = errors.New("no completed submission to finish")
)

// ===== Sheet Receiver Errors =====
var (
	ErrEmptyPayload        = errors.New("no data received")
	ErrDuplicateSubmission = errors.New("submission already recorded")
)
