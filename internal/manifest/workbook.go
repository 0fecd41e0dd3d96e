package manifest

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Sheet names used in the XLSX workbook.
const (
	SheetAll       = "SUCCESS"
	SheetWithEmail = "YESEMAIL"
	SheetNoEmail   = "NOEMAIL"
)

// WriteWorkbook saves the three manifests as sheets of one XLSX file.
func WriteWorkbook(path string, rows []Row) error {
	f := excelize.NewFile()
	defer f.Close()

	sheets := []struct {
		name    string
		columns []string
		filter  func(Row) bool
		record  func(Row) []string
	}{
		{SheetAll, AllColumns, func(Row) bool { return true }, Row.allRecord},
		{SheetWithEmail, WithEmailColumns, Row.HasEmail, Row.withEmailRecord},
		{SheetNoEmail, NoEmailColumns, func(r Row) bool { return !r.HasEmail() }, Row.noEmailRecord},
	}

	defaultSheet := f.GetSheetName(0)
	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, sheet.name); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sheet.name); err != nil {
			return fmt.Errorf("create sheet %s: %w", sheet.name, err)
		}

		if err := setRow(f, sheet.name, 1, sheet.columns); err != nil {
			return err
		}
		line := 2
		for _, row := range rows {
			if !sheet.filter(row) {
				continue
			}
			if err := setRow(f, sheet.name, line, sheet.record(row)); err != nil {
				return err
			}
			line++
		}
	}
	f.SetActiveSheet(0)

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, line int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, line)
	if err != nil {
		return fmt.Errorf("cell name: %w", err)
	}
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, line, err)
	}
	return nil
}
