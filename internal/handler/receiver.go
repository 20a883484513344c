package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"time"

	"github.com/aminulnv/Year-In-Review/internal/model"
	"github.com/aminulnv/Year-In-Review/internal/service"
)

// ReceiverHandler is the development stand-in for the spreadsheet web app.
// Responses use the web app's {success, message | error} JSON shape rather
// than the API envelope.
type ReceiverHandler struct {
	sheets *service.SheetService
	now    func() time.Time
	logger *slog.Logger
}

// ReceiverHandlerConfig holds dependencies for the receiver handler
type ReceiverHandlerConfig struct {
	Sheets *service.SheetService
	Now    func() time.Time
	Logger *slog.Logger
}

// NewReceiverHandler creates a new receiver handler
func NewReceiverHandler(cfg ReceiverHandlerConfig) *ReceiverHandler {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ReceiverHandler{
		sheets: cfg.Sheets,
		now:    now,
		logger: logger.With(slog.String("handler", "receiver")),
	}
}

// RegisterRoutes registers receiver routes
func (h *ReceiverHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /exec", h.Append)
	mux.HandleFunc("GET /exec", h.Status)
	mux.HandleFunc("GET /sheet.xlsx", h.Download)
}

type receiverFailure struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Timestamp string `json:"timestamp"`
}

// Append handles POST /exec with a JSON or form-encoded record.
func (h *ReceiverHandler) Append(w http.ResponseWriter, r *http.Request) {
	payload, err := readPayload(r)
	if err != nil {
		h.fail(w, http.StatusBadRequest, err)
		return
	}

	result, err := h.sheets.Append(r.Context(), payload)
	if err != nil {
		pd := MapServiceError(err)
		if pd.Status >= http.StatusInternalServerError {
			h.logger.Error("append failed", slog.String("error", err.Error()))
		}
		h.fail(w, pd.Status, err)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

// Status handles GET /exec
func (h *ReceiverHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.sheets.Status(r.Context())
	if err != nil {
		h.logger.Error("status failed", slog.String("error", err.Error()))
		h.fail(w, http.StatusInternalServerError, err)
		return
	}
	WriteJSON(w, http.StatusOK, status)
}

// Download handles GET /sheet.xlsx
func (h *ReceiverHandler) Download(w http.ResponseWriter, r *http.Request) {
	sheet, err := h.sheets.Snapshot(r.Context())
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "load sheet"))
		return
	}
	var buf bytes.Buffer
	if err := service.WriteWorkbook(&buf, sheet); err != nil {
		h.logger.Error("workbook export failed", slog.String("error", err.Error()))
		WriteError(w, model.NewInternalError("sheet could not be written"))
		return
	}
	writeWorkbook(w, model.SheetName+".xlsx", buf.Bytes())
}

func (h *ReceiverHandler) fail(w http.ResponseWriter, status int, err error) {
	WriteJSON(w, status, receiverFailure{
		Success:   false,
		Error:     err.Error(),
		Timestamp: h.now().UTC().Format(time.RFC3339),
	})
}

// readPayload decodes the request body by content type. Form bodies carry
// one field per column; anything else is read as a JSON object.
func readPayload(r *http.Request) (map[string]any, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		return nil, err
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" {
		form, err := url.ParseQuery(string(body))
		if err != nil {
			return nil, err
		}
		return model.ParseFormPayload(form), nil
	}

	payload := map[string]any{}
	if len(bytes.TrimSpace(body)) == 0 {
		return payload, nil
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil {
		return nil, err
	}
	return payload, nil
}
