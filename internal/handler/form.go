package handler

import (
	"log/slog"
	"net/http"

	"github.com/aminulnv/Year-In-Review/internal/model"
	"github.com/aminulnv/Year-In-Review/internal/service"
)

// FormHandler serves the in-progress answer set.
type FormHandler struct {
	store       *service.FormStore
	submissions *service.SubmissionService
	logger      *slog.Logger
}

// FormHandlerConfig holds dependencies for the form handler
type FormHandlerConfig struct {
	Store       *service.FormStore
	Submissions *service.SubmissionService
	Logger      *slog.Logger
}

// NewFormHandler creates a new form handler
func NewFormHandler(cfg FormHandlerConfig) *FormHandler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &FormHandler{
		store:       cfg.Store,
		submissions: cfg.Submissions,
		logger:      logger.With(slog.String("handler", "form")),
	}
}

// RegisterRoutes registers form routes
func (h *FormHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/form", h.Get)
	mux.HandleFunc("PATCH /v1/form", h.Update)
	mux.HandleFunc("DELETE /v1/form", h.Clear)
	mux.HandleFunc("POST /v1/form/toggles/{kind}", h.Toggle)
	mux.HandleFunc("POST /v1/form/finish", h.Finish)
}

var formLinks = map[string]string{
	"self":        "/v1/form",
	"sections":    "/v1/sections",
	"submissions": "/v1/submissions",
}

// Get handles GET /v1/form
func (h *FormHandler) Get(w http.ResponseWriter, r *http.Request) {
	WriteData(w, http.StatusOK, h.store.Snapshot(), formLinks)
}

// Update handles PATCH /v1/form. The body is a partial form state; each
// field present replaces the stored value.
func (h *FormHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch model.FormPatch
	if err := DecodeJSON(r, &patch); err != nil {
		WriteError(w, model.NewBadRequestError("invalid JSON body"))
		return
	}
	if len(patch) == 0 {
		WriteError(w, model.NewBadRequestError("patch must name at least one field"))
		return
	}

	state, err := h.store.Update(r.Context(), patch)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}
	WriteData(w, http.StatusOK, state, formLinks)
}

// Clear handles DELETE /v1/form
func (h *FormHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.store.Clear(r.Context())
	h.logger.Info("form cleared")
	WriteNoContent(w)
}

// Toggle handles POST /v1/form/toggles/{kind}
func (h *FormHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	kind := service.ToggleKind(r.PathValue("kind"))

	var req service.ToggleRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid JSON body"))
		return
	}

	state, err := h.store.ApplyToggle(r.Context(), kind, req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}
	WriteData(w, http.StatusOK, state, formLinks)
}

// Finish handles POST /v1/form/finish: clears the answers once the pulse
// has been submitted.
func (h *FormHandler) Finish(w http.ResponseWriter, r *http.Request) {
	state, err := h.submissions.Finish(r.Context())
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "finish survey"))
		return
	}
	WriteData(w, http.StatusOK, state, formLinks)
}
