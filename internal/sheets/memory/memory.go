// Package memory is an in-process spreadsheet exporter for development and tests.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	ports "finboard/internal/sheets"
)

var (
	_ ports.TransactionExporter = (*Store)(nil)
	_ ports.RowLister           = (*Store)(nil)
)

type Store struct {
	mu   sync.Mutex
	rows []ports.Row
	ids  map[string]struct{}
}

func New() *Store {
	return &Store{ids: make(map[string]struct{})}
}

// Append stores the row and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, r ports.Row) (string, error) {
	if r.ID == "" {
		return "", errors.New("row without transaction id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, r)
	s.ids[r.ID] = struct{}{}
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

func (s *Store) Exported(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ids[id]
	return ok, nil
}

func (s *Store) ListRows(context.Context) ([]ports.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ports.Row(nil), s.rows...), nil
}
