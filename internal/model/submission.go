package model

import "time"

// Local archive keys
const (
	SubmissionsKey                = "qpt-submissions"
	PulseCompletedKey             = "qpt-pulse-completed"
	PulseCompletionDateKey        = "qpt-pulse-completion-date"
	PulseSubmissionIDKey          = "qpt-submission-id"
	YearInReviewCompletedKey      = "year-in-review-completed"
	YearInReviewCompletionDateKey = "year-in-review-completion-date"
	MaxArchivedSubmissions        = 1000
	DefaultCompletionPercentage   = 100
)

// SubmissionMeta identifies one finalized submission.
type SubmissionMeta struct {
	SubmissionID         string `json:"submissionId"`
	Timestamp            string `json:"timestamp"`
	SessionID            string `json:"sessionId"`
	CompletionPercentage int    `json:"completionPercentage"`
}

// SubmissionData is an archived snapshot of the answers at submit time.
type SubmissionData struct {
	SubmissionMeta
	FormState
}

// Delivery describes what is known about a remote submission.
type Delivery string

const (
	// DeliveryUnconfirmed means a request went out and the transport
	// returned. The receiver's response is never read as confirmation.
	DeliveryUnconfirmed Delivery = "unconfirmed"
	// DeliveryFailed means every transport attempt errored.
	DeliveryFailed Delivery = "failed"
)

// Transport encodings tried by the submission client
const (
	TransportJSON = "json"
	TransportForm = "form"
)

// SubmitResult is the best-effort outcome of a remote submission.
type SubmitResult struct {
	Delivery   Delivery `json:"delivery"`
	Transport  string   `json:"transport,omitempty"`
	StatusCode int      `json:"statusCode,omitempty"`
	Attempts   int      `json:"attempts"`
	Error      string   `json:"error,omitempty"`
	Err        error    `json:"-"`
}

// Sent reports whether some transport attempt completed.
func (r SubmitResult) Sent() bool {
	return r.Delivery == DeliveryUnconfirmed
}

// SubmissionOutcome is the overall result of the local-first submit flow.
type SubmissionOutcome string

const (
	// OutcomeSubmitted means the archive write succeeded and the remote
	// request was sent.
	OutcomeSubmitted SubmissionOutcome = "submitted"
	// OutcomeRemotePending means the archive holds the submission but the
	// remote request could not be sent.
	OutcomeRemotePending SubmissionOutcome = "saved_locally_remote_pending"
)

// SubmissionReceipt is returned to the caller of a submit.
type SubmissionReceipt struct {
	SubmissionID string            `json:"submissionId"`
	Outcome      SubmissionOutcome `json:"outcome"`
	ArchivedAt   string            `json:"archivedAt"`
	Remote       SubmitResult      `json:"remote"`
	Message      string            `json:"message"`
}

// CompletionMarker records that a respondent finished a flow.
type CompletionMarker struct {
	Flow         Flow       `json:"flow"`
	Completed    bool       `json:"completed"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
	SubmissionID string     `json:"submissionId,omitempty"`
}

// ArchiveStats describes the local archive.
type ArchiveStats struct {
	TotalSubmissions int     `json:"totalSubmissions"`
	StorageSize      int     `json:"storageSize"`
	StorageSizeKB    string  `json:"storageSizeKB"`
	StorageSizeMB    string  `json:"storageSizeMB"`
	OldestSubmission *string `json:"oldestSubmission"`
	NewestSubmission *string `json:"newestSubmission"`
}
