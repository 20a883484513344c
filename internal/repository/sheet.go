package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/aminulnv/Year-In-Review/internal/database"
	"github.com/aminulnv/Year-In-Review/internal/model"
)

// SheetRepository persists the receiver's sheet: the header row in one
// sheet_meta record and each data row as a sheet_row record ordered by seq.
type SheetRepository struct {
	db database.Database
}

// NewSheetRepository creates a new sheet repository
func NewSheetRepository(db database.Database) *SheetRepository {
	return &SheetRepository{db: db}
}

// Load reads the header row and all data rows. An empty database yields an
// empty sheet.
func (r *SheetRepository) Load(ctx context.Context) (*model.Sheet, error) {
	sheet := &model.Sheet{}

	meta, err := r.db.QueryOne(ctx, `SELECT headers FROM sheet_meta:headers`, nil)
	switch {
	case errors.Is(err, database.ErrNotFound):
		return sheet, nil
	case err != nil:
		return nil, fmt.Errorf("load sheet headers: %w", err)
	}
	if m, ok := meta.(map[string]interface{}); ok {
		sheet.Headers = getStringSlice(m, "headers")
	}

	results, err := r.db.Query(ctx, `SELECT seq, cells FROM sheet_row ORDER BY seq ASC`, nil)
	if err != nil {
		return nil, fmt.Errorf("load sheet rows: %w", err)
	}
	rows, _ := extractQueryResults(results)
	for _, row := range rows {
		m, ok := row.(map[string]interface{})
		if !ok {
			continue
		}
		cells := getStringSlice(m, "cells")
		for len(cells) < len(sheet.Headers) {
			cells = append(cells, "")
		}
		sheet.Rows = append(sheet.Rows, cells)
	}
	return sheet, nil
}

// SaveAppend writes the current header row and the sheet's last row in one
// transaction. Earlier rows are padded on load, so widening never rewrites
// them.
func (r *SheetRepository) SaveAppend(ctx context.Context, sheet *model.Sheet) error {
	if len(sheet.Rows) == 0 {
		return nil
	}
	last := sheet.Rows[len(sheet.Rows)-1]
	submissionID := ""
	if col := sheet.Column(model.ColSubmissionID); col >= 0 && col < len(last) {
		submissionID = last[col]
	}

	batch := database.NewAtomicBatch().
		Add(`UPSERT sheet_meta:headers SET headers = $headers, updated_on = time::now()`,
			map[string]interface{}{"headers": sheet.Headers}).
		Add(`CREATE sheet_row CONTENT {
			seq: $seq,
			submission_id: $submission_id,
			cells: $cells,
			created_on: time::now()
		}`, map[string]interface{}{
			"seq":           len(sheet.Rows),
			"submission_id": submissionID,
			"cells":         last,
		})

	if err := batch.Execute(ctx, r.db); err != nil {
		return fmt.Errorf("append sheet row: %w", err)
	}
	return nil
}

// Reset removes every row and the header record.
func (r *SheetRepository) Reset(ctx context.Context) error {
	batch := database.NewAtomicBatch().
		Add(`DELETE sheet_row`, nil).
		Add(`DELETE sheet_meta:headers`, nil)
	return batch.Execute(ctx, r.db)
}
