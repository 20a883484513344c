package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/aminulnv/Year-In-Review/internal/model"
)

// SheetStore persists the receiver's sheet.
type SheetStore interface {
	Load(ctx context.Context) (*model.Sheet, error)
	// SaveAppend persists the header row and the last row of sheet.
	SaveAppend(ctx context.Context, sheet *model.Sheet) error
}

// MemorySheetStore keeps the sheet in process memory.
type MemorySheetStore struct {
	mu    sync.RWMutex
	sheet model.Sheet
}

// NewMemorySheetStore creates an empty in-memory sheet
func NewMemorySheetStore() *MemorySheetStore {
	return &MemorySheetStore{}
}

// Load returns a copy of the sheet.
func (m *MemorySheetStore) Load(ctx context.Context) (*model.Sheet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copySheet(&m.sheet), nil
}

// SaveAppend replaces the stored sheet with a copy of sheet.
func (m *MemorySheetStore) SaveAppend(ctx context.Context, sheet *model.Sheet) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sheet = *copySheet(sheet)
	return nil
}

func copySheet(s *model.Sheet) *model.Sheet {
	out := &model.Sheet{Headers: append([]string(nil), s.Headers...)}
	if len(s.Rows) > 0 {
		out.Rows = make([][]string, len(s.Rows))
		for i, row := range s.Rows {
			out.Rows[i] = append([]string(nil), row...)
		}
	}
	return out
}

// AppendResult describes one appended row.
type AppendResult struct {
	Success      bool     `json:"success"`
	SubmissionID string   `json:"submissionId"`
	Row          int      `json:"row"`
	Columns      int      `json:"columns"`
	AddedColumns []string `json:"addedColumns,omitempty"`
	Message      string   `json:"message"`
}

// SheetStatus reports the receiver's sheet dimensions.
type SheetStatus struct {
	Status  string `json:"status"`
	Sheet   string `json:"sheet"`
	Rows    int    `json:"rows"`
	Columns int    `json:"columns"`
}

// SheetService appends submitted records to the sheet, widening its header
// row with leader rating columns as they first appear.
type SheetService struct {
	mu     sync.Mutex
	store  SheetStore
	newID  func() string
	logger *slog.Logger
}

// SheetServiceConfig holds configuration for the sheet service
type SheetServiceConfig struct {
	Store  SheetStore
	NewID  func() string // id for payloads without a submissionId
	Logger *slog.Logger
}

// NewSheetService creates a new sheet service
func NewSheetService(cfg SheetServiceConfig) *SheetService {
	store := cfg.Store
	if store == nil {
		store = NewMemorySheetStore()
	}
	newID := cfg.NewID
	if newID == nil {
		newID = func() string { return "qpt-" + uuid.NewString() }
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &SheetService{
		store:  store,
		newID:  newID,
		logger: logger.With(slog.String("component", "sheet_service")),
	}
}

// Append records one submission. A payload whose submissionId is already on
// the sheet is rejected with ErrDuplicateSubmission.
func (s *SheetService) Append(ctx context.Context, payload map[string]any) (AppendResult, error) {
	if len(payload) == 0 {
		return AppendResult{}, ErrEmptyPayload
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sheet, err := s.store.Load(ctx)
	if err != nil {
		return AppendResult{}, fmt.Errorf("load sheet: %w", err)
	}

	id := model.RenderCell(payload[model.ColSubmissionID])
	if id == "" {
		id = s.newID()
		payload[model.ColSubmissionID] = id
	} else if sheet.HasSubmission(id) {
		return AppendResult{}, fmt.Errorf("%w: %s", ErrDuplicateSubmission, id)
	}

	if sheet.EnsureHeaders() {
		s.logger.Info("initialized sheet headers", slog.Int("columns", len(sheet.Headers)))
	}
	before := len(sheet.Headers)
	sheet.Append(payload)
	added := append([]string(nil), sheet.Headers[before:]...)

	if err := s.store.SaveAppend(ctx, sheet); err != nil {
		return AppendResult{}, fmt.Errorf("save sheet: %w", err)
	}

	if len(added) > 0 {
		s.logger.Info("widened sheet", slog.Any("columns", added))
	}
	s.logger.Info("appended row",
		slog.String("submission_id", id),
		slog.Int("row", len(sheet.Rows)),
	)
	return AppendResult{
		Success:      true,
		SubmissionID: id,
		Row:          len(sheet.Rows),
		Columns:      len(sheet.Headers),
		AddedColumns: added,
		Message:      "Data successfully submitted",
	}, nil
}

// Status reports the sheet's size.
func (s *SheetService) Status(ctx context.Context) (SheetStatus, error) {
	sheet, err := s.Snapshot(ctx)
	if err != nil {
		return SheetStatus{}, err
	}
	return SheetStatus{
		Status:  "Survey Handler Active",
		Sheet:   model.SheetName,
		Rows:    len(sheet.Rows),
		Columns: len(sheet.Headers),
	}, nil
}

// Snapshot returns the current sheet.
func (s *SheetService) Snapshot(ctx context.Context) (*model.Sheet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Load(ctx)
}
