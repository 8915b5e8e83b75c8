// Package memory is an in-process SummaryWriter used for dry runs and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"presupuesto/internal/log"
	"presupuesto/internal/sheets"
)

type Store struct {
	mu     sync.Mutex
	sheets map[string][][]any
	writes int
	logger *log.Logger
}

// Ensure interface conformance
var _ sheets.SummaryWriter = (*Store)(nil)

// New returns an empty store. logger may be nil.
func New(logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Discard()
	}
	return &Store{sheets: map[string][][]any{}, logger: logger.WithComponent(log.ComponentSheets)}
}

// WriteSummary keeps a copy of s and returns a synthetic reference.
func (s *Store) WriteSummary(ctx context.Context, sum sheets.Summary) (string, error) {
	if sum.Sheet == "" {
		return "", fmt.Errorf("summary has no sheet name")
	}
	rows := make([][]any, len(sum.Rows))
	for i, r := range sum.Rows {
		rows[i] = append([]any(nil), r...)
	}

	s.mu.Lock()
	s.sheets[sum.Sheet] = rows
	s.writes++
	n := s.writes
	s.mu.Unlock()

	s.logger.DebugContext(ctx, "Summary stored in memory", "sheet", sum.Sheet, "rows", len(rows))
	return fmt.Sprintf("mem:%s:%d", sum.Sheet, n), nil
}

// Sheet returns the rows last written to name.
func (s *Store) Sheet(name string) ([][]any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, ok := s.sheets[name]
	return rows, ok
}

// Names lists the sheets written so far, sorted.
func (s *Store) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.sheets))
	for name := range s.sheets {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Writes counts WriteSummary calls.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}
