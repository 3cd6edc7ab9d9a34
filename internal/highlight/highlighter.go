package highlight

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"sheetscribe/internal/domain"
	"sheetscribe/internal/eventbus"
	"sheetscribe/internal/sheet"
)

// Matches scans rows in row-major order and returns the cells whose text
// contains term, compared case-insensitively. Absent cells are skipped.
func Matches(rows [][]string, term string) []domain.CellRef {
	needle := strings.ToLower(term)
	var matches []domain.CellRef
	for r, row := range rows {
		for c, value := range row {
			if value == "" {
				continue
			}
			if strings.Contains(strings.ToLower(value), needle) {
				matches = append(matches, domain.CellRef{Row: r, Col: c})
			}
		}
	}
	return matches
}

// request is one unit of worksheet mutation work
type request struct {
	term  string
	clear bool
}

// Service runs match-and-highlight passes over a worksheet. Worksheet
// mutations are single-flight: a request arriving while one is in progress
// replaces any still-pending request, so overlapping invocations coalesce to
// the latest term instead of interleaving their writes.
type Service struct {
	bus    eventbus.EventBus
	ws     sheet.Worksheet
	color  string
	logger *logrus.Entry

	mu      sync.Mutex
	running bool
	pending *request
}

// NewService creates a highlight service and subscribes it to highlight and
// clear requests.
func NewService(bus eventbus.EventBus, ws sheet.Worksheet, color string, logger *logrus.Logger) *Service {
	s := &Service{
		bus:    bus,
		ws:     ws,
		color:  color,
		logger: logger.WithField("component", "highlight"),
	}

	bus.Subscribe(eventbus.EventHighlightRequested, func(e eventbus.DomainEvent) {
		if event, ok := e.(eventbus.HighlightRequestedEvent); ok {
			s.Search(event.Term)
		}
	})
	bus.Subscribe(eventbus.EventClearRequested, func(e eventbus.DomainEvent) {
		s.Clear()
	})

	return s
}

// Search requests a match-and-highlight pass for term. Empty or
// whitespace-only terms are a silent no-op.
func (s *Service) Search(term string) {
	if strings.TrimSpace(term) == "" {
		return
	}
	s.enqueue(request{term: term})
}

// Clear requests removal of all highlight fills
func (s *Service) Clear() {
	s.enqueue(request{clear: true})
}

// Wait blocks until no request is running or pending. Test hook.
func (s *Service) Wait() {
	for {
		s.mu.Lock()
		idle := !s.running && s.pending == nil
		s.mu.Unlock()
		if idle {
			return
		}
		time.Sleep(time.Millisecond)
	}
}

func (s *Service) enqueue(req request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		// Coalesce: only the latest request survives
		s.pending = &req
		return
	}
	s.running = true
	go s.run(req)
}

func (s *Service) run(req request) {
	for {
		s.execute(req)

		s.mu.Lock()
		if s.pending != nil {
			req = *s.pending
			s.pending = nil
			s.mu.Unlock()
			continue
		}
		s.running = false
		s.mu.Unlock()
		return
	}
}

func (s *Service) execute(req request) {
	var err error
	if req.clear {
		err = s.clearFills()
	} else {
		err = s.searchAndHighlight(req.term)
	}
	if err != nil {
		s.logger.WithError(err).Error("worksheet update failed")
		s.bus.Publish(eventbus.ErrorEvent{Message: "Worksheet update failed", Err: err})
	}
}

// searchAndHighlight performs one pass: read the used range, clear previous
// fills, fill every match, select the first match, then flush the batch.
func (s *Service) searchAndHighlight(term string) error {
	rows, err := s.ws.UsedRange()
	if err != nil {
		return err
	}

	matches := Matches(rows, term)

	if err := s.ws.ClearFills(); err != nil {
		return err
	}
	for _, ref := range matches {
		if err := s.ws.SetFill(ref, s.color); err != nil {
			return err
		}
	}
	var first *domain.CellRef
	if len(matches) > 0 {
		first = &matches[0]
		if err := s.ws.Select(*first); err != nil {
			return err
		}
	}
	if err := s.ws.Flush(); err != nil {
		return err
	}

	status := fmt.Sprintf("No matches for “%s”.", term)
	if len(matches) > 0 {
		status = fmt.Sprintf("Found %d match(es) for “%s”.", len(matches), term)
	}
	s.logger.Debugf("highlighted %d cell(s) for %q", len(matches), term)

	s.bus.Publish(eventbus.HighlightCompletedEvent{
		Term:       term,
		MatchCount: len(matches),
		First:      first,
		Status:     status,
	})
	return nil
}

func (s *Service) clearFills() error {
	if err := s.ws.ClearFills(); err != nil {
		return err
	}
	if err := s.ws.Flush(); err != nil {
		return err
	}
	s.bus.Publish(eventbus.HighlightsClearedEvent{})
	return nil
}
