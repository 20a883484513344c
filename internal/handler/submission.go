package handler

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/aminulnv/Year-In-Review/internal/model"
	"github.com/aminulnv/Year-In-Review/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// SubmissionHandler serves the submit flow and the local archive.
type SubmissionHandler struct {
	submissions *service.SubmissionService
	archive     *service.Archive
	transformer *service.Transformer
	logger      *slog.Logger
}

// SubmissionHandlerConfig holds dependencies for the submission handler
type SubmissionHandlerConfig struct {
	Submissions *service.SubmissionService
	Archive     *service.Archive
	Transformer *service.Transformer
	Logger      *slog.Logger
}

// NewSubmissionHandler creates a new submission handler
func NewSubmissionHandler(cfg SubmissionHandlerConfig) *SubmissionHandler {
	transformer := cfg.Transformer
	if transformer == nil {
		transformer = service.NewTransformer(service.TransformerConfig{})
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &SubmissionHandler{
		submissions: cfg.Submissions,
		archive:     cfg.Archive,
		transformer: transformer,
		logger:      logger.With(slog.String("handler", "submission")),
	}
}

// RegisterRoutes registers submission and completion routes. Submit is
// registered separately so the server can wrap it in rate limiting and
// idempotency.
func (h *SubmissionHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/submissions", h.List)
	mux.HandleFunc("DELETE /v1/submissions", h.ClearAll)
	mux.HandleFunc("GET /v1/submissions/export", h.Export)
	mux.HandleFunc("GET /v1/submissions/stats", h.Stats)
	mux.HandleFunc("GET /v1/submissions/{id}", h.Get)
	mux.HandleFunc("DELETE /v1/submissions/{id}", h.Delete)
	mux.HandleFunc("GET /v1/completion", h.Completion)
	mux.HandleFunc("POST /v1/year-in-review/complete", h.CompleteYearInReview)
}

// Submit handles POST /v1/submissions
func (h *SubmissionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	receipt, err := h.submissions.Submit(r.Context())
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "submit survey"))
		return
	}

	status := http.StatusCreated
	if receipt.Outcome == model.OutcomeRemotePending {
		status = http.StatusAccepted
	}
	WriteData(w, status, receipt, map[string]string{
		"self":   "/v1/submissions/" + receipt.SubmissionID,
		"finish": "/v1/form/finish",
	})
}

// List handles GET /v1/submissions, newest first
func (h *SubmissionHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.archive.List(r.Context())
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "list submissions"))
		return
	}
	WriteCollection(w, http.StatusOK, entries, len(entries), map[string]string{
		"self":   "/v1/submissions",
		"stats":  "/v1/submissions/stats",
		"export": "/v1/submissions/export",
	})
}

// Get handles GET /v1/submissions/{id}
func (h *SubmissionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	entry, err := h.archive.Get(r.Context(), id)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}
	WriteData(w, http.StatusOK, entry, map[string]string{
		"self":       "/v1/submissions/" + id,
		"collection": "/v1/submissions",
	})
}

// Delete handles DELETE /v1/submissions/{id}
func (h *SubmissionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.archive.Delete(r.Context(), r.PathValue("id")); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}
	WriteNoContent(w)
}

// ClearAll handles DELETE /v1/submissions
func (h *SubmissionHandler) ClearAll(w http.ResponseWriter, r *http.Request) {
	if err := h.archive.ClearAll(r.Context()); err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "clear submissions"))
		return
	}
	h.logger.Info("archive cleared")
	WriteNoContent(w)
}

// Export handles GET /v1/submissions/export?format=json|xlsx
func (h *SubmissionHandler) Export(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Query().Get("format") {
	case "", "json":
		data, err := h.archive.Export(r.Context())
		if err != nil {
			WriteError(w, MapServiceErrorWithContext(err, "export submissions"))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", `attachment; filename="submissions.json"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)

	case "xlsx":
		entries, err := h.archive.List(r.Context())
		if err != nil {
			WriteError(w, MapServiceErrorWithContext(err, "export submissions"))
			return
		}
		var buf bytes.Buffer
		if err := service.WriteWorkbook(&buf, h.transformer.SheetFromArchive(entries)); err != nil {
			h.logger.Error("workbook export failed", slog.String("error", err.Error()))
			WriteError(w, model.NewInternalError("export submissions: workbook could not be written"))
			return
		}
		writeWorkbook(w, "submissions.xlsx", buf.Bytes())

	default:
		WriteError(w, model.NewBadRequestError("format must be json or xlsx"))
	}
}

// Stats handles GET /v1/submissions/stats
func (h *SubmissionHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.archive.Stats(r.Context())
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "archive stats"))
		return
	}
	WriteData(w, http.StatusOK, stats, map[string]string{
		"self":       "/v1/submissions/stats",
		"collection": "/v1/submissions",
	})
}

// Completion handles GET /v1/completion?flow=
func (h *SubmissionHandler) Completion(w http.ResponseWriter, r *http.Request) {
	flow, ok := model.ParseFlow(r.URL.Query().Get("flow"))
	if !ok {
		WriteError(w, model.NewBadRequestError("flow must be culture-pulse or year-in-review"))
		return
	}
	marker, err := h.submissions.Completion(r.Context(), flow)
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "read completion"))
		return
	}
	WriteData(w, http.StatusOK, marker, map[string]string{
		"self": "/v1/completion?flow=" + string(flow),
	})
}

// CompleteYearInReview handles POST /v1/year-in-review/complete
func (h *SubmissionHandler) CompleteYearInReview(w http.ResponseWriter, r *http.Request) {
	marker, err := h.submissions.CompleteYearInReview(r.Context())
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "complete year in review"))
		return
	}
	WriteData(w, http.StatusOK, marker, map[string]string{
		"self": "/v1/completion?flow=" + string(model.FlowYearInReview),
	})
}

func writeWorkbook(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
