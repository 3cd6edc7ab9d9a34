// Package sheet abstracts the host spreadsheet the add-in works against.
//
// Writes are batched: SetFill, ClearFills and Select stage changes that only
// become observable after Flush, mirroring the batch/sync model of spreadsheet
// host APIs. Callers must not assume staged state is current until Flush
// returns.
package sheet

import "sheetscribe/internal/domain"

// Worksheet is the capability surface the add-in needs from a worksheet.
type Worksheet interface {
	// UsedRange returns a fresh row-major snapshot of the used range as
	// display text. Rows may be ragged; absent cells are empty strings.
	UsedRange() ([][]string, error)

	// SetFill stages a solid fill color (RGB hex, no '#') for one cell.
	SetFill(ref domain.CellRef, color string) error

	// ClearFills stages removal of fill styling across the used range.
	// No-op on an empty range.
	ClearFills() error

	// Select stages moving the selection to the given cell.
	Select(ref domain.CellRef) error

	// Flush commits all staged changes.
	Flush() error
}
