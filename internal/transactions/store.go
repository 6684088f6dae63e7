package transactions

import (
	"errors"
	"sort"
	"sync"
)

var (
	// ErrNotFound indicates that no transaction has the requested id.
	ErrNotFound = errors.New("transaction not found")
	// ErrDuplicate indicates an attempt to record the same transaction id twice.
	ErrDuplicate = errors.New("transaction already recorded")
	// ErrMissingID indicates a transaction without an id.
	ErrMissingID = errors.New("transaction id is required")
)

// Store is the append-only, most-recent-first transaction list.
//
// Every write bumps the revision so readers can key memoised results on it.
type Store struct {
	mu    sync.RWMutex
	items []Transaction
	ids   map[string]struct{}
	rev   uint64
}

// NewStore constructs an empty store.
func NewStore() *Store {
	return &Store{ids: make(map[string]struct{})}
}

// Prepend records a new transaction at the front of the list.
func (s *Store) Prepend(t Transaction) error {
	if t.ID == "" {
		return ErrMissingID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.ids[t.ID]; exists {
		return ErrDuplicate
	}
	s.ids[t.ID] = struct{}{}
	s.items = append(s.items, Transaction{})
	copy(s.items[1:], s.items)
	s.items[0] = t.clone()
	s.rev++
	return nil
}

// Seed bulk-loads transactions, keeping the list ordered newest first.
func (s *Store) Seed(txns []Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range txns {
		if t.ID == "" {
			return ErrMissingID
		}
		if _, exists := s.ids[t.ID]; exists {
			return ErrDuplicate
		}
	}
	for _, t := range txns {
		s.ids[t.ID] = struct{}{}
		s.items = append(s.items, t.clone())
	}
	sort.SliceStable(s.items, func(i, j int) bool {
		return s.items[i].Date.After(s.items[j].Date)
	})
	s.rev++
	return nil
}

// List returns a copy of every transaction, most recent first.
func (s *Store) List() []Transaction {
	items, _ := s.Snapshot()
	return items
}

// Snapshot returns a copy of the list together with the revision it was taken at.
func (s *Store) Snapshot() ([]Transaction, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Transaction, len(s.items))
	for i, t := range s.items {
		out[i] = t.clone()
	}
	return out, s.rev
}

// Recent returns up to n of the most recent transactions. A non-positive n returns all of them.
func (s *Store) Recent(n int) []Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n <= 0 || n > len(s.items) {
		n = len(s.items)
	}
	out := make([]Transaction, n)
	for i := 0; i < n; i++ {
		out[i] = s.items[i].clone()
	}
	return out
}

// Page returns a window of the list starting at offset.
func (s *Store) Page(offset, limit int) []Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if offset < 0 {
		offset = 0
	}
	if offset >= len(s.items) || limit <= 0 {
		return []Transaction{}
	}
	end := offset + limit
	if end > len(s.items) {
		end = len(s.items)
	}
	out := make([]Transaction, 0, end-offset)
	for _, t := range s.items[offset:end] {
		out = append(out, t.clone())
	}
	return out
}

// Get looks up a transaction by id.
func (s *Store) Get(id string) (Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.ids[id]; !ok {
		return Transaction{}, ErrNotFound
	}
	for _, t := range s.items {
		if t.ID == id {
			return t.clone(), nil
		}
	}
	return Transaction{}, ErrNotFound
}

// Len reports the number of recorded transactions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Revision reports the write counter.
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rev
}
