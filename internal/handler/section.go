package handler

import (
	"net/http"

	"github.com/aminulnv/Year-In-Review/internal/model"
	"github.com/aminulnv/Year-In-Review/internal/service"
)

// SectionHandler reports section completion of the current answers.
type SectionHandler struct {
	store *service.FormStore
}

// NewSectionHandler creates a new section handler
func NewSectionHandler(store *service.FormStore) *SectionHandler {
	return &SectionHandler{store: store}
}

// RegisterRoutes registers section routes
func (h *SectionHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/sections", h.Report)
	mux.HandleFunc("GET /v1/sections/{section}", h.Get)
}

// Report handles GET /v1/sections?flow=culture-pulse|year-in-review
func (h *SectionHandler) Report(w http.ResponseWriter, r *http.Request) {
	flow, ok := model.ParseFlow(r.URL.Query().Get("flow"))
	if !ok {
		WriteError(w, model.NewBadRequestError("flow must be culture-pulse or year-in-review"))
		return
	}

	report := service.BuildSectionReport(h.store.Snapshot(), flow)
	WriteData(w, http.StatusOK, report, map[string]string{
		"self": "/v1/sections?flow=" + string(flow),
		"form": "/v1/form",
	})
}

// Get handles GET /v1/sections/{section}
func (h *SectionHandler) Get(w http.ResponseWriter, r *http.Request) {
	section := model.Section(r.PathValue("section"))

	status, err := service.CheckSection(h.store.Snapshot(), section)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}
	WriteData(w, http.StatusOK, status, map[string]string{
		"self": "/v1/sections/" + string(section),
	})
}
