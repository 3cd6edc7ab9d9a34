package domain

import "fmt"

// CellRef identifies a single worksheet cell by zero-based coordinates.
type CellRef struct {
	Row int
	Col int
}

// A1 returns the reference in A1 notation, e.g. {Row: 1, Col: 3} -> "D2".
func (c CellRef) A1() string {
	col := ""
	n := c.Col
	for {
		col = string(rune('A'+n%26)) + col
		n = n/26 - 1
		if n < 0 {
			break
		}
	}
	return fmt.Sprintf("%s%d", col, c.Row+1)
}

// ConnState represents the state of the transcription connection
type ConnState int

const (
	ConnDisconnected ConnState = iota
	ConnConnected
)

func (s ConnState) String() string {
	if s == ConnConnected {
		return "connected"
	}
	return "disconnected"
}
