package handler

import (
	"errors"

	"github.com/aminulnv/Year-In-Review/internal/model"
	"github.com/aminulnv/Year-In-Review/internal/service"
)

// MapServiceError converts a service error to a ProblemDetails response.
func MapServiceError(err error) *model.ProblemDetails {
	if err == nil {
		return nil
	}

	// Errors that already carry their response
	var pd *model.ProblemDetails
	if errors.As(err, &pd) {
		return pd
	}
	var incomplete *service.IncompleteError
	if errors.As(err, &incomplete) {
		return model.NewIncompleteError(incomplete.Report.Incomplete(), incomplete.Report.FieldErrors())
	}

	switch {
	// ===== Not Found Errors → 404 =====
	case errors.Is(err, service.ErrSubmissionNotFound):
		return model.NewNotFoundError("submission")
	case errors.Is(err, service.ErrUnknownToggle):
		return model.NewNotFoundError("toggle")
	case errors.Is(err, service.ErrUnknownSection):
		return model.NewNotFoundError("section")

	// ===== Conflict Errors → 409 =====
	case errors.Is(err, service.ErrDuplicateSubmission),
		errors.Is(err, service.ErrNothingToFinish):
		return model.NewConflictError(err.Error())

	// ===== Validation Errors → 422 =====
	case errors.Is(err, service.ErrInvalidID),
		errors.Is(err, service.ErrUnknownTeammate),
		errors.Is(err, service.ErrUnknownLeader),
		errors.Is(err, service.ErrUnknownTag),
		errors.Is(err, service.ErrNotSelected):
		return model.NewValidationError([]model.FieldError{{Field: "id", Message: err.Error()}})
	case errors.Is(err, service.ErrUnknownQuestion),
		errors.Is(err, service.ErrInvalidRating):
		return model.NewValidationError([]model.FieldError{{Field: "question", Message: err.Error()}})
	case errors.Is(err, service.ErrInvalidSKSField):
		return model.NewValidationError([]model.FieldError{{Field: "field", Message: err.Error()}})

	// ===== Bad Request → 400 =====
	case errors.Is(err, service.ErrEmptyPayload):
		return model.NewBadRequestError(err.Error())

	// ===== Storage Errors → 500 =====
	case errors.Is(err, service.ErrArchiveFailed):
		return model.NewArchiveError(err.Error())

	// ===== Default → 500 =====
	default:
		return model.NewInternalError("")
	}
}

// MapServiceErrorWithContext converts a service error to a ProblemDetails response
// with additional context about the operation that failed.
func MapServiceErrorWithContext(err error, operation string) *model.ProblemDetails {
	pd := MapServiceError(err)
	if pd != nil && pd.Status == 500 && pd.Code == model.ErrCodeInternal {
		pd.Detail = operation + ": an unexpected error occurred"
	}
	return pd
}
