package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aminulnv/Year-In-Review/internal/model"
	"github.com/aminulnv/Year-In-Review/internal/service"
	"github.com/aminulnv/Year-In-Review/internal/storage"
)

// ============================================================================
// Test Fixtures
// ============================================================================

var fixedNow = time.Date(2025, 12, 30, 10, 15, 30, 0, time.UTC)

type stubSubmitter struct {
	mu      sync.Mutex
	result  model.SubmitResult
	records []*model.FlatRecord
}

func (s *stubSubmitter) Submit(ctx context.Context, record *model.FlatRecord) model.SubmitResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	return s.result
}

func sentResult() model.SubmitResult {
	return model.SubmitResult{Delivery: model.DeliveryUnconfirmed, Transport: model.TransportJSON, StatusCode: 200, Attempts: 1}
}

type apiFixture struct {
	mux       *http.ServeMux
	store     *service.FormStore
	archive   *service.Archive
	submitter *stubSubmitter
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newAPI(t *testing.T, requireComplete bool) *apiFixture {
	t.Helper()

	mem := storage.NewMemory()
	logger := quietLogger()
	store := service.NewFormStore(service.FormStoreConfig{Storage: mem, Logger: logger})
	archive := service.NewArchive(service.ArchiveConfig{Storage: mem, Logger: logger})
	transformer := service.NewTransformer(service.TransformerConfig{Now: func() time.Time { return fixedNow }})
	submitter := &stubSubmitter{result: sentResult()}
	submissions := service.NewSubmissionService(service.SubmissionServiceConfig{
		Store:           store,
		Archive:         archive,
		Transformer:     transformer,
		Submitter:       submitter,
		Markers:         mem,
		RequireComplete: requireComplete,
		Now:             func() time.Time { return fixedNow },
		Logger:          logger,
	})

	mux := http.NewServeMux()
	NewFormHandler(FormHandlerConfig{Store: store, Submissions: submissions, Logger: logger}).RegisterRoutes(mux)
	NewSectionHandler(store).RegisterRoutes(mux)
	sh := NewSubmissionHandler(SubmissionHandlerConfig{
		Submissions: submissions,
		Archive:     archive,
		Transformer: transformer,
		Logger:      logger,
	})
	sh.RegisterRoutes(mux)
	mux.HandleFunc("POST /v1/submissions", sh.Submit)
	mux.HandleFunc("GET /v1/catalog", Catalog)
	mux.HandleFunc("GET /health", Health)

	return &apiFixture{mux: mux, store: store, archive: archive, submitter: submitter}
}

func (f *apiFixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	f.mux.ServeHTTP(rr, req)
	return rr
}

// decodeBody decodes a JSON response body into a generic map.
func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON body %q: %v", rr.Body.String(), err)
	}
	return out
}

func dataOf(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	data, ok := decodeBody(t, rr)["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data object, got %q", rr.Body.String())
	}
	return data
}

func expectStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, rr.Code, rr.Body.String())
	}
}

func expectProblem(t *testing.T, rr *httptest.ResponseRecorder, status int) map[string]any {
	t.Helper()
	expectStatus(t, rr, status)
	if ct := rr.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Errorf("expected problem+json, got %q", ct)
	}
	return decodeBody(t, rr)
}

// ============================================================================
// Form Tests
// ============================================================================

func TestForm_Get_ReturnsDefaultState(t *testing.T) {
	t.Parallel()
	f := newAPI(t, false)

	rr := f.do(t, http.MethodGet, "/v1/form", "")
	expectStatus(t, rr, http.StatusOK)

	body := decodeBody(t, rr)
	data := body["data"].(map[string]any)
	if data["winsText"] != "" {
		t.Errorf("expected empty winsText, got %v", data["winsText"])
	}
	if picks, ok := data["quickPicks"].([]any); !ok || len(picks) != 0 {
		t.Errorf("expected empty quickPicks array, got %v", data["quickPicks"])
	}
	links := body["_links"].(map[string]any)
	if links["self"] != "/v1/form" {
		t.Errorf("expected self link, got %v", links)
	}
}

func TestForm_Patch_MergesAndPersists(t *testing.T) {
	t.Parallel()
	f := newAPI(t, false)

	rr := f.do(t, http.MethodPatch, "/v1/form", `{"winsText":"Shipped the pulse","actionable":true}`)
	expectStatus(t, rr, http.StatusOK)
	if got := dataOf(t, rr)["winsText"]; got != "Shipped the pulse" {
		t.Errorf("expected patched winsText, got %v", got)
	}

	again := dataOf(t, f.do(t, http.MethodGet, "/v1/form", ""))
	if again["winsText"] != "Shipped the pulse" || again["actionable"] != true {
		t.Errorf("patch did not stick: %v", again)
	}
}

func TestForm_Patch_UnknownField_Returns422(t *testing.T) {
	t.Parallel()
	f := newAPI(t, false)

	body := expectProblem(t, f.do(t, http.MethodPatch, "/v1/form", `{"favouriteColour":"blue"}`), http.StatusUnprocessableEntity)
	if body["code"] != float64(model.ErrCodeValidation) {
		t.Errorf("expected validation code, got %v", body["code"])
	}
}

func TestForm_Patch_EmptyOrInvalidBody_Returns400(t *testing.T) {
	t.Parallel()
	f := newAPI(t, false)

	expectProblem(t, f.do(t, http.MethodPatch, "/v1/form", `{}`), http.StatusBadRequest)
	expectProblem(t, f.do(t, http.MethodPatch, "/v1/form", `{not json`), http.StatusBadRequest)
}

func TestForm_Toggle_SelectsTeammate(t *testing.T) {
	t.Parallel()
	f := newAPI(t, false)

	rr := f.do(t, http.MethodPost, "/v1/form/toggles/learning-teammate", `{"id":"suha-hussein"}`)
	expectStatus(t, rr, http.StatusOK)

	ids, _ := dataOf(t, rr)["selectedLearningTeammateIds"].([]any)
	if len(ids) != 1 || ids[0] != "suha-hussein" {
		t.Errorf("expected suha-hussein selected, got %v", ids)
	}

	rr = f.do(t, http.MethodPost, "/v1/form/toggles/learning-teammate", `{"id":"suha-hussein"}`)
	ids, _ = dataOf(t, rr)["selectedLearningTeammateIds"].([]any)
	if len(ids) != 0 {
		t.Errorf("expected second toggle to deselect, got %v", ids)
	}
}

func TestForm_Toggle_Errors(t *testing.T) {
	t.Parallel()
	f := newAPI(t, false)

	tests := []struct {
		name   string
		path   string
		body   string
		status int
	}{
		{"unknown kind", "/v1/form/toggles/teleport", `{"id":"suha-hussein"}`, http.StatusNotFound},
		{"unknown teammate", "/v1/form/toggles/learning-teammate", `{"id":"nobody-here"}`, http.StatusUnprocessableEntity},
		{"invalid rating", "/v1/form/toggles/rating", `{"question":"focus","value":42}`, http.StatusUnprocessableEntity},
		{"unknown body field", "/v1/form/toggles/learning-teammate", `{"who":"suha-hussein"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectProblem(t, f.do(t, http.MethodPost, tt.path, tt.body), tt.status)
		})
	}
}

func TestForm_Delete_ResetsState(t *testing.T) {
	t.Parallel()
	f := newAPI(t, false)

	f.do(t, http.MethodPatch, "/v1/form", `{"cultureText":"keep the rituals"}`)
	expectStatus(t, f.do(t, http.MethodDelete, "/v1/form", ""), http.StatusNoContent)

	if got := f.store.Snapshot().CultureText; got != "" {
		t.Errorf("expected cleared cultureText, got %q", got)
	}
}

// ============================================================================
// Section Tests
// ============================================================================

func TestSections_Report_DefaultsToCulturePulse(t *testing.T) {
	t.Parallel()
	f := newAPI(t, false)

	data := dataOf(t, f.do(t, http.MethodGet, "/v1/sections", ""))
	if data["flow"] != string(model.FlowCulturePulse) {
		t.Errorf("expected culture-pulse flow, got %v", data["flow"])
	}
	if sections, _ := data["sections"].([]any); len(sections) != len(model.CulturePulseSections) {
		t.Errorf("expected %d sections, got %d", len(model.CulturePulseSections), len(sections))
	}
	if data["complete"] != false {
		t.Error("empty form should not be complete")
	}
}

func TestSections_Report_YearInReview(t *testing.T) {
	t.Parallel()
	f := newAPI(t, false)

	f.do(t, http.MethodPatch, "/v1/form", `{"yearInReviewWishMoreOf":"pairing"}`)
	data := dataOf(t, f.do(t, http.MethodGet, "/v1/sections?flow=year-in-review", ""))

	for _, s := range data["sections"].([]any) {
		sec := s.(map[string]any)
		if sec["section"] == string(model.SectionYearInReviewWishMore) && sec["complete"] != true {
			t.Errorf("wish-more should be complete: %v", sec)
		}
	}
}

func TestSections_Report_UnknownFlow_Returns400(t *testing.T) {
	t.Parallel()
	f := newAPI(t, false)

	expectProblem(t, f.do(t, http.MethodGet, "/v1/sections?flow=quarterly", ""), http.StatusBadRequest)
}

func TestSections_Get_SingleSection(t *testing.T) {
	t.Parallel()
	f := newAPI(t, false)

	data := dataOf(t, f.do(t, http.MethodGet, "/v1/sections/culture-protection", ""))
	if data["complete"] != false {
		t.Errorf("expected incomplete section, got %v", data)
	}
	if errs, _ := data["errors"].([]any); len(errs) == 0 {
		t.Error("expected field errors for incomplete section")
	}

	expectProblem(t, f.do(t, http.MethodGet, "/v1/sections/nope", ""), http.StatusNotFound)
}

// ============================================================================
// Submission Tests
// ============================================================================

func TestSubmissions_Submit_ArchivesAndSends(t *testing.T) {
	t.Parallel()
	f := newAPI(t, false)

	f.do(t, http.MethodPatch, "/v1/form", `{"winsText":"Shipped"}`)
	rr := f.do(t, http.MethodPost, "/v1/submissions", "")
	expectStatus(t, rr, http.StatusCreated)

	data := dataOf(t, rr)
	id, _ := data["submissionId"].(string)
	if !strings.HasPrefix(id, "qpt-") {
		t.Errorf("expected qpt- submission id, got %q", id)
	}
	if data["outcome"] != string(model.OutcomeSubmitted) {
		t.Errorf("expected submitted outcome, got %v", data["outcome"])
	}
	if len(f.submitter.records) != 1 || f.submitter.records[0].SubmissionID() != id {
		t.Errorf("expected one record sent with id %s", id)
	}

	entry, err := f.archive.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("archive.Get: %v", err)
	}
	if entry.WinsText != "Shipped" {
		t.Errorf("archived wins text %q", entry.WinsText)
	}
}

func TestSubmissions_Submit_RemoteFailure_Returns202(t *testing.T) {
	t.Parallel()
	f := newAPI(t, false)
	f.submitter.result = model.SubmitResult{Delivery: model.DeliveryFailed, Attempts: 2, Error: "network down"}

	rr := f.do(t, http.MethodPost, "/v1/submissions", "")
	expectStatus(t, rr, http.StatusAccepted)

	if got := dataOf(t, rr)["outcome"]; got != string(model.OutcomeRemotePending) {
		t.Errorf("expected remote pending outcome, got %v", got)
	}
	list := decodeBody(t, f.do(t, http.MethodGet, "/v1/submissions", ""))
	if list["count"] != float64(1) {
		t.Errorf("expected archived submission despite remote failure, got %v", list["count"])
	}
}

func TestSubmissions_Submit_RequireComplete_Returns422(t *testing.T) {
	t.Parallel()
	f := newAPI(t, true)

	body := expectProblem(t, f.do(t, http.MethodPost, "/v1/submissions", ""), http.StatusUnprocessableEntity)
	if body["code"] != float64(model.ErrCodeSectionIncomplete) {
		t.Errorf("expected incomplete code, got %v", body["code"])
	}
	if sections, _ := body["sections"].([]any); len(sections) != len(model.CulturePulseSections) {
		t.Errorf("expected every section listed, got %v", body["sections"])
	}
	if len(f.submitter.records) != 0 {
		t.Error("incomplete submit should not reach the sheet")
	}
}

func TestSubmissions_ArchiveReads(t *testing.T) {
	t.Parallel()
	f := newAPI(t, false)

	receipt := dataOf(t, f.do(t, http.MethodPost, "/v1/submissions", ""))
	id := receipt["submissionId"].(string)

	expectStatus(t, f.do(t, http.MethodGet, "/v1/submissions/"+id, ""), http.StatusOK)
	expectProblem(t, f.do(t, http.MethodGet, "/v1/submissions/qpt-missing", ""), http.StatusNotFound)

	stats := dataOf(t, f.do(t, http.MethodGet, "/v1/submissions/stats", ""))
	if stats["totalSubmissions"] != float64(1) || stats["newestSubmission"] != receipt["archivedAt"] {
		t.Errorf("unexpected stats: %v", stats)
	}

	rr := f.do(t, http.MethodGet, "/v1/submissions/export", "")
	expectStatus(t, rr, http.StatusOK)
	var exported []map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &exported); err != nil || len(exported) != 1 {
		t.Fatalf("expected one exported entry, got %q (%v)", rr.Body.String(), err)
	}

	expectStatus(t, f.do(t, http.MethodDelete, "/v1/submissions/"+id, ""), http.StatusNoContent)
	expectProblem(t, f.do(t, http.MethodDelete, "/v1/submissions/"+id, ""), http.StatusNotFound)
}

func TestSubmissions_ExportXLSX(t *testing.T) {
	t.Parallel()
	f := newAPI(t, false)

	f.do(t, http.MethodPatch, "/v1/form", `{"winsText":"first"}`)
	f.do(t, http.MethodPost, "/v1/submissions", "")
	f.do(t, http.MethodPatch, "/v1/form", `{"winsText":"second"}`)
	f.do(t, http.MethodPost, "/v1/submissions", "")

	rr := f.do(t, http.MethodGet, "/v1/submissions/export?format=xlsx", "")
	expectStatus(t, rr, http.StatusOK)
	if ct := rr.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("expected xlsx content type, got %q", ct)
	}

	sheet, err := service.ReadWorkbook(rr.Body.Bytes())
	if err != nil {
		t.Fatalf("ReadWorkbook: %v", err)
	}
	if len(sheet.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(sheet.Rows))
	}
	col := sheet.Column(model.ColWinsText)
	if col < 0 || sheet.Rows[0][col] != "first" || sheet.Rows[1][col] != "second" {
		t.Errorf("expected rows oldest first, got %v", sheet.Rows)
	}

	expectProblem(t, f.do(t, http.MethodGet, "/v1/submissions/export?format=csv", ""), http.StatusBadRequest)
}

func TestSubmissions_ClearAll(t *testing.T) {
	t.Parallel()
	f := newAPI(t, false)

	f.do(t, http.MethodPost, "/v1/submissions", "")
	expectStatus(t, f.do(t, http.MethodDelete, "/v1/submissions", ""), http.StatusNoContent)

	if list := decodeBody(t, f.do(t, http.MethodGet, "/v1/submissions", "")); list["count"] != float64(0) {
		t.Errorf("expected empty archive, got %v", list["count"])
	}
}

// ============================================================================
// Finish / Completion Tests
// ============================================================================

func TestFinish_BeforeSubmit_Returns409(t *testing.T) {
	t.Parallel()
	f := newAPI(t, false)

	expectProblem(t, f.do(t, http.MethodPost, "/v1/form/finish", ""), http.StatusConflict)
}

func TestFinish_AfterSubmit_ClearsForm(t *testing.T) {
	t.Parallel()
	f := newAPI(t, false)

	f.do(t, http.MethodPatch, "/v1/form", `{"winsText":"done"}`)
	id := dataOf(t, f.do(t, http.MethodPost, "/v1/submissions", ""))["submissionId"].(string)

	rr := f.do(t, http.MethodPost, "/v1/form/finish", "")
	expectStatus(t, rr, http.StatusOK)
	if got := dataOf(t, rr)["winsText"]; got != "" {
		t.Errorf("expected cleared form, got winsText %v", got)
	}

	marker := dataOf(t, f.do(t, http.MethodGet, "/v1/completion", ""))
	if marker["completed"] != true || marker["submissionId"] != id {
		t.Errorf("unexpected completion marker: %v", marker)
	}
}

func TestYearInReview_Complete(t *testing.T) {
	t.Parallel()
	f := newAPI(t, false)

	before := dataOf(t, f.do(t, http.MethodGet, "/v1/completion?flow=year-in-review", ""))
	if before["completed"] != false {
		t.Errorf("expected not completed, got %v", before)
	}

	rr := f.do(t, http.MethodPost, "/v1/year-in-review/complete", "")
	expectStatus(t, rr, http.StatusOK)
	data := dataOf(t, rr)
	if data["completed"] != true || data["flow"] != string(model.FlowYearInReview) {
		t.Errorf("unexpected marker: %v", data)
	}
	if data["completedAt"] == nil {
		t.Error("expected completedAt")
	}

	expectProblem(t, f.do(t, http.MethodGet, "/v1/completion?flow=weekly", ""), http.StatusBadRequest)
}

func TestYearInReview_Complete_RequireComplete_Returns422(t *testing.T) {
	t.Parallel()
	f := newAPI(t, true)

	expectProblem(t, f.do(t, http.MethodPost, "/v1/year-in-review/complete", ""), http.StatusUnprocessableEntity)
}

// ============================================================================
// Catalog / Health Tests
// ============================================================================

func TestCatalog_ListsRosterAndQuestions(t *testing.T) {
	t.Parallel()
	f := newAPI(t, false)

	data := dataOf(t, f.do(t, http.MethodGet, "/v1/catalog", ""))
	if teammates, _ := data["teammates"].([]any); len(teammates) != len(model.Teammates) {
		t.Errorf("expected %d teammates, got %d", len(model.Teammates), len(teammates))
	}
	pulse := data["culturePulse"].(map[string]any)
	if questions, _ := pulse["questions"].([]any); len(questions) != len(model.CulturePulseQuestions.Questions) {
		t.Errorf("unexpected culture pulse questions: %v", pulse)
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()
	f := newAPI(t, false)

	rr := f.do(t, http.MethodGet, "/health", "")
	expectStatus(t, rr, http.StatusOK)
	if !bytes.Contains(rr.Body.Bytes(), []byte(`"ok"`)) {
		t.Errorf("unexpected health body %q", rr.Body.String())
	}
}
