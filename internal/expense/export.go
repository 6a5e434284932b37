package expense

import (
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Pengeluaran"

// exportHeaders are the column titles of the export workbook
var exportHeaders = []string{"ID", "Tanggal", "Item", "Kategori", "Nominal"}

// ExportExpenses writes all of the user's expenses to an XLSX workbook,
// oldest first, followed by a total row
func (s *Service) ExportExpenses(userKey string) ([]byte, error) {
	expenses, err := s.db.ListExpenses(userKey)
	if err != nil {
		return nil, fmt.Errorf("listing expenses for export: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	// Rename the default sheet instead of adding a second one
	if err := f.SetSheetName(f.GetSheetName(0), exportSheet); err != nil {
		return nil, fmt.Errorf("naming sheet: %w", err)
	}

	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(exportSheet, cell, h); err != nil {
			return nil, fmt.Errorf("writing header: %w", err)
		}
	}

	var total int64
	row := 2
	for _, e := range expenses {
		values := []any{
			e.ID,
			e.CreatedAt.In(s.cfg.Location).Format("2006-01-02 15:04"),
			e.Item,
			e.Category,
			e.Amount,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(exportSheet, cell, v); err != nil {
				return nil, fmt.Errorf("writing row %d: %w", row, err)
			}
		}
		total += e.Amount
		row++
	}

	totalLabel, _ := excelize.CoordinatesToCellName(4, row)
	totalCell, _ := excelize.CoordinatesToCellName(5, row)
	if err := f.SetCellValue(exportSheet, totalLabel, "Total"); err != nil {
		return nil, fmt.Errorf("writing total: %w", err)
	}
	if err := f.SetCellValue(exportSheet, totalCell, total); err != nil {
		return nil, fmt.Errorf("writing total: %w", err)
	}

	_ = f.SetColWidth(exportSheet, "A", "A", 8)
	_ = f.SetColWidth(exportSheet, "B", "B", 18)
	_ = f.SetColWidth(exportSheet, "C", "C", 32)
	_ = f.SetColWidth(exportSheet, "D", "D", 22)
	_ = f.SetColWidth(exportSheet, "E", "E", 14)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("writing xlsx: %w", err)
	}

	slog.Info("Exported expenses", "user", userKey, "rows", len(expenses))
	return buf.Bytes(), nil
}
