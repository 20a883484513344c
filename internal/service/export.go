package service

import (
	"bytes"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/aminulnv/Year-In-Review/internal/model"
)

// SheetFromArchive rebuilds the receiver's sheet from archived submissions,
// oldest first.
func (t *Transformer) SheetFromArchive(entries []model.SubmissionData) *model.Sheet {
	sheet := &model.Sheet{}
	sheet.EnsureHeaders()
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		sheet.Append(t.TransformWithMeta(e.SubmissionMeta, e.FormState).Map())
	}
	return sheet
}

// WriteWorkbook writes the sheet as an xlsx workbook with a bold header row.
func WriteWorkbook(w io.Writer, sheet *model.Sheet) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), model.SheetName); err != nil {
		return fmt.Errorf("name worksheet: %w", err)
	}
	if err := writeRow(f, 1, sheet.Headers); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	if len(sheet.Headers) > 0 {
		if err := f.SetRowStyle(model.SheetName, 1, 1, bold); err != nil {
			return fmt.Errorf("header style: %w", err)
		}
	}
	for i, row := range sheet.Rows {
		if err := writeRow(f, i+2, row); err != nil {
			return err
		}
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, n int, cells []string) error {
	if len(cells) == 0 {
		return nil
	}
	ref, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return err
	}
	row := make([]interface{}, len(cells))
	for i, c := range cells {
		row[i] = c
	}
	if err := f.SetSheetRow(model.SheetName, ref, &row); err != nil {
		return fmt.Errorf("write row %d: %w", n, err)
	}
	return nil
}

// ReadWorkbook parses a workbook written by WriteWorkbook.
func ReadWorkbook(data []byte) (*model.Sheet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	name := f.GetSheetName(0)
	if name == "" {
		return nil, fmt.Errorf("no worksheet found")
	}
	rows, err := f.GetRows(name)
	if err != nil {
		return nil, err
	}
	sheet := &model.Sheet{}
	if len(rows) == 0 {
		return sheet, nil
	}
	sheet.Headers = rows[0]
	for _, row := range rows[1:] {
		for len(row) < len(sheet.Headers) {
			row = append(row, "")
		}
		sheet.Rows = append(sheet.Rows, row)
	}
	return sheet, nil
}
