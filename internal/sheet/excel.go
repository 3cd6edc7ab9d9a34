package sheet

import (
	"fmt"
	"sync"

	"github.com/xuri/excelize/v2"

	"sheetscribe/internal/domain"
)

// ExcelWorksheet is a Worksheet backed by an .xlsx file via excelize. Changes
// accumulate in the in-memory workbook and reach disk on Flush.
type ExcelWorksheet struct {
	mu      sync.Mutex
	file    *excelize.File
	sheet   string
	merged  map[string]int // "baseStyleID/color" -> style ID with that fill added
	cleared map[int]int    // style ID -> same style with the fill stripped
}

// OpenExcelWorksheet opens the workbook at path. An empty sheet name selects
// the active sheet.
func OpenExcelWorksheet(path, sheetName string) (*ExcelWorksheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}

	if sheetName == "" {
		sheetName = f.GetSheetName(f.GetActiveSheetIndex())
	} else {
		idx, err := f.GetSheetIndex(sheetName)
		if err != nil || idx < 0 {
			f.Close()
			return nil, fmt.Errorf("worksheet %q not found in %s", sheetName, path)
		}
	}

	return &ExcelWorksheet{
		file:    f,
		sheet:   sheetName,
		merged:  make(map[string]int),
		cleared: make(map[int]int),
	}, nil
}

// SheetName returns the worksheet this instance operates on
func (w *ExcelWorksheet) SheetName() string {
	return w.sheet
}

func (w *ExcelWorksheet) UsedRange() ([][]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	// GetRows returns formatted values, so numeric and date cells arrive as
	// their display text.
	rows, err := w.file.GetRows(w.sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read used range: %w", err)
	}
	return rows, nil
}

func (w *ExcelWorksheet) SetFill(ref domain.CellRef, color string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	cell, err := excelize.CoordinatesToCellName(ref.Col+1, ref.Row+1)
	if err != nil {
		return fmt.Errorf("invalid cell coordinates %v: %w", ref, err)
	}

	baseID, err := w.file.GetCellStyle(w.sheet, cell)
	if err != nil {
		return fmt.Errorf("failed to read style of %s: %w", cell, err)
	}
	styleID, err := w.fillStyle(baseID, color)
	if err != nil {
		return err
	}
	if err := w.file.SetCellStyle(w.sheet, cell, cell, styleID); err != nil {
		return fmt.Errorf("failed to set fill on %s: %w", cell, err)
	}
	return nil
}

func (w *ExcelWorksheet) ClearFills() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	rows, err := w.file.GetRows(w.sheet)
	if err != nil {
		return fmt.Errorf("failed to read used range: %w", err)
	}

	// Strip only the fill from each cell's style; number formats, fonts and
	// borders must survive a clear.
	for r, row := range rows {
		for c := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return fmt.Errorf("invalid cell coordinates: %w", err)
			}
			styleID, err := w.file.GetCellStyle(w.sheet, cell)
			if err != nil {
				return fmt.Errorf("failed to read style of %s: %w", cell, err)
			}
			if styleID == 0 {
				continue
			}
			strippedID, err := w.strippedStyle(styleID)
			if err != nil {
				return err
			}
			if strippedID == styleID {
				continue
			}
			if err := w.file.SetCellStyle(w.sheet, cell, cell, strippedID); err != nil {
				return fmt.Errorf("failed to clear fill on %s: %w", cell, err)
			}
		}
	}
	return nil
}

func (w *ExcelWorksheet) Select(ref domain.CellRef) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	cell, err := excelize.CoordinatesToCellName(ref.Col+1, ref.Row+1)
	if err != nil {
		return fmt.Errorf("invalid cell coordinates %v: %w", ref, err)
	}
	err = w.file.SetPanes(w.sheet, &excelize.Panes{
		Selection: []excelize.Selection{
			{SQRef: cell, ActiveCell: cell},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to select %s: %w", cell, err)
	}
	return nil
}

func (w *ExcelWorksheet) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.file.Save(); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// Close releases the underlying workbook file
func (w *ExcelWorksheet) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}

// fillStyle returns a style equal to the base style plus the highlight fill,
// so a highlighted cell keeps its number format and other attributes.
func (w *ExcelWorksheet) fillStyle(baseID int, color string) (int, error) {
	key := fmt.Sprintf("%d/%s", baseID, color)
	if id, ok := w.merged[key]; ok {
		return id, nil
	}

	style := &excelize.Style{}
	if baseID != 0 {
		base, err := w.file.GetStyle(baseID)
		if err != nil {
			return 0, fmt.Errorf("failed to read style %d: %w", baseID, err)
		}
		style = base
	}
	style.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}}

	id, err := w.file.NewStyle(style)
	if err != nil {
		return 0, fmt.Errorf("failed to create fill style: %w", err)
	}
	w.merged[key] = id
	return id, nil
}

// strippedStyle returns the given style with its fill removed, or the style
// itself when it carries no fill
func (w *ExcelWorksheet) strippedStyle(styleID int) (int, error) {
	if id, ok := w.cleared[styleID]; ok {
		return id, nil
	}

	style, err := w.file.GetStyle(styleID)
	if err != nil {
		return 0, fmt.Errorf("failed to read style %d: %w", styleID, err)
	}
	id := styleID
	if style.Fill.Type != "" {
		style.Fill = excelize.Fill{}
		id, err = w.file.NewStyle(style)
		if err != nil {
			return 0, fmt.Errorf("failed to create stripped style: %w", err)
		}
	}
	w.cleared[styleID] = id
	return id, nil
}
