package highlight

import (
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"sheetscribe/internal/domain"
	"sheetscribe/internal/eventbus"
	"sheetscribe/internal/sheet"
)

const testColor = "FFFF00"

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestService(values [][]string) (*Service, *sheet.MemoryWorksheet, chan eventbus.DomainEvent) {
	ws := sheet.NewMemoryWorksheet(values)
	bus := eventbus.New(newTestLogger())
	completed := make(chan eventbus.DomainEvent, 16)
	bus.Subscribe(eventbus.EventHighlightCompleted, func(e eventbus.DomainEvent) {
		completed <- e
	})
	bus.Subscribe(eventbus.EventHighlightsCleared, func(e eventbus.DomainEvent) {
		completed <- e
	})
	svc := NewService(bus, ws, testColor, newTestLogger())
	return svc, ws, completed
}

func waitCompleted(t *testing.T, ch chan eventbus.DomainEvent) eventbus.DomainEvent {
	t.Helper()
	select {
	case e := <-ch:
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for highlight event")
		return nil
	}
}

func fruitRows() [][]string {
	return [][]string{
		{"apple", "banana"},
		{"Cherry", "grape"},
	}
}

func TestMatchesCaseInsensitive(t *testing.T) {
	rows := [][]string{{"Category", "CAT", "concatenate", "dog"}}
	matches := Matches(rows, "cat")
	require.Equal(t, []domain.CellRef{
		{Row: 0, Col: 0},
		{Row: 0, Col: 1},
		{Row: 0, Col: 2},
	}, matches)
}

func TestMatchesRowMajorOrder(t *testing.T) {
	rows := [][]string{
		{"", "", "", "needle"},
		{"", "", "", ""},
		{"needle", "", "", ""},
	}
	matches := Matches(rows, "needle")
	require.Equal(t, []domain.CellRef{
		{Row: 0, Col: 3},
		{Row: 2, Col: 0},
	}, matches)
}

func TestMatchesSkipsEmptyCells(t *testing.T) {
	rows := [][]string{{"", "x", ""}}
	require.Empty(t, Matches(rows, "zz"))
	require.Equal(t, []domain.CellRef{{Row: 0, Col: 1}}, Matches(rows, "x"))
}

func TestSearchBlankTermIsNoOp(t *testing.T) {
	svc, ws, completed := newTestService(fruitRows())

	svc.Search("")
	svc.Search("   \t ")
	svc.Wait()

	require.Empty(t, ws.Fills())
	require.Nil(t, ws.Selection())
	select {
	case e := <-completed:
		t.Fatalf("unexpected event: %#v", e)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSearchHighlightsAndSelects(t *testing.T) {
	svc, ws, completed := newTestService(fruitRows())

	svc.Search("an")
	e := waitCompleted(t, completed).(eventbus.HighlightCompletedEvent)

	require.Equal(t, "an", e.Term)
	require.Equal(t, 1, e.MatchCount)
	require.Equal(t, "Found 1 match(es) for “an”.", e.Status)
	require.NotNil(t, e.First)
	require.Equal(t, domain.CellRef{Row: 0, Col: 1}, *e.First)

	require.Equal(t, map[domain.CellRef]string{
		{Row: 0, Col: 1}: testColor,
	}, ws.Fills())
	require.Equal(t, domain.CellRef{Row: 0, Col: 1}, *ws.Selection())
}

func TestSearchNoMatches(t *testing.T) {
	svc, ws, completed := newTestService(fruitRows())

	svc.Search("xyz")
	e := waitCompleted(t, completed).(eventbus.HighlightCompletedEvent)

	require.Equal(t, 0, e.MatchCount)
	require.Equal(t, "No matches for “xyz”.", e.Status)
	require.Nil(t, e.First)
	require.Empty(t, ws.Fills())
	require.Nil(t, ws.Selection())
}

func TestSearchSelectsFirstMatchRowMajor(t *testing.T) {
	svc, ws, completed := newTestService([][]string{
		{"", "", "", "needle"},
		{"", "", "", ""},
		{"needle", "", "", ""},
	})

	svc.Search("needle")
	e := waitCompleted(t, completed).(eventbus.HighlightCompletedEvent)

	require.Equal(t, 2, e.MatchCount)
	require.Equal(t, domain.CellRef{Row: 0, Col: 3}, *e.First)
	require.Equal(t, domain.CellRef{Row: 0, Col: 3}, *ws.Selection())
}

func TestStaleHighlightsCleared(t *testing.T) {
	svc, ws, completed := newTestService(fruitRows())

	svc.Search("apple")
	waitCompleted(t, completed)
	require.Equal(t, map[domain.CellRef]string{
		{Row: 0, Col: 0}: testColor,
	}, ws.Fills())

	svc.Search("grape")
	waitCompleted(t, completed)
	require.Equal(t, map[domain.CellRef]string{
		{Row: 1, Col: 1}: testColor,
	}, ws.Fills())
}

func TestSearchIsIdempotent(t *testing.T) {
	svc, ws, completed := newTestService(fruitRows())

	svc.Search("cherry")
	first := waitCompleted(t, completed).(eventbus.HighlightCompletedEvent)
	fills := ws.Fills()

	svc.Search("cherry")
	second := waitCompleted(t, completed).(eventbus.HighlightCompletedEvent)

	require.Equal(t, first.Status, second.Status)
	require.Equal(t, fills, ws.Fills())
}

func TestClearRemovesHighlights(t *testing.T) {
	svc, ws, completed := newTestService(fruitRows())

	svc.Search("apple")
	waitCompleted(t, completed)
	require.NotEmpty(t, ws.Fills())

	svc.Clear()
	e := waitCompleted(t, completed)
	require.IsType(t, eventbus.HighlightsClearedEvent{}, e)
	require.Empty(t, ws.Fills())
}

func TestClearOnEmptyRangeIsNoOp(t *testing.T) {
	svc, ws, completed := newTestService(nil)

	svc.Clear()
	e := waitCompleted(t, completed)
	require.IsType(t, eventbus.HighlightsClearedEvent{}, e)
	require.Empty(t, ws.Fills())
}

// slowWorksheet delays used-range reads so overlapping requests pile up
type slowWorksheet struct {
	*sheet.MemoryWorksheet
	delay time.Duration
}

func (w *slowWorksheet) UsedRange() ([][]string, error) {
	time.Sleep(w.delay)
	return w.MemoryWorksheet.UsedRange()
}

func TestOverlappingRequestsCoalesceToLatest(t *testing.T) {
	ws := &slowWorksheet{
		MemoryWorksheet: sheet.NewMemoryWorksheet(fruitRows()),
		delay:           150 * time.Millisecond,
	}
	bus := eventbus.New(newTestLogger())

	var mu sync.Mutex
	var terms []string
	bus.Subscribe(eventbus.EventHighlightCompleted, func(e eventbus.DomainEvent) {
		if event, ok := e.(eventbus.HighlightCompletedEvent); ok {
			mu.Lock()
			terms = append(terms, event.Term)
			mu.Unlock()
		}
	})

	svc := NewService(bus, ws, testColor, newTestLogger())

	// The first request runs; the next two arrive while it is in flight, so
	// only the latest of them survives
	svc.Search("apple")
	svc.Search("banana")
	svc.Search("grape")
	svc.Wait()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(terms) == 2
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"apple", "grape"}, terms)

	require.Equal(t, map[domain.CellRef]string{
		{Row: 1, Col: 1}: testColor,
	}, ws.Fills())
}
