package sheet

import (
	"sync"

	"sheetscribe/internal/domain"
)

// MemoryWorksheet is an in-memory implementation of Worksheet. Staged
// operations are held back until Flush, like a real host's batched writes.
type MemoryWorksheet struct {
	mu      sync.RWMutex
	values  [][]string
	fills   map[domain.CellRef]string
	sel     *domain.CellRef
	pending []func()
}

// NewMemoryWorksheet creates a memory-based worksheet with the given values
func NewMemoryWorksheet(values [][]string) *MemoryWorksheet {
	return &MemoryWorksheet{
		values: values,
		fills:  make(map[domain.CellRef]string),
	}
}

func (w *MemoryWorksheet) UsedRange() ([][]string, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	// Return a copy to prevent external modification
	rows := make([][]string, len(w.values))
	for i, row := range w.values {
		rows[i] = append([]string(nil), row...)
	}
	return rows, nil
}

func (w *MemoryWorksheet) SetFill(ref domain.CellRef, color string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending = append(w.pending, func() {
		w.fills[ref] = color
	})
	return nil
}

func (w *MemoryWorksheet) ClearFills() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending = append(w.pending, func() {
		w.fills = make(map[domain.CellRef]string)
	})
	return nil
}

func (w *MemoryWorksheet) Select(ref domain.CellRef) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending = append(w.pending, func() {
		r := ref
		w.sel = &r
	})
	return nil
}

func (w *MemoryWorksheet) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, apply := range w.pending {
		apply()
	}
	w.pending = nil
	return nil
}

// Fills returns the committed fill colors keyed by cell
func (w *MemoryWorksheet) Fills() map[domain.CellRef]string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	result := make(map[domain.CellRef]string, len(w.fills))
	for k, v := range w.fills {
		result[k] = v
	}
	return result
}

// Selection returns the committed selection, nil when nothing was selected
func (w *MemoryWorksheet) Selection() *domain.CellRef {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.sel == nil {
		return nil
	}
	r := *w.sel
	return &r
}
