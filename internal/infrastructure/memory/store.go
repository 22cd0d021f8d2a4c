// Package memory holds pending codes in process memory. Entries do not survive
// a restart and are not shared between instances.
package memory

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/email-otp-api/internal/domain"
)

// Store is a concurrency-safe map of email -> pending code.
// Get returns expired entries unchanged; expiry is decided by the caller.
type Store struct {
	mu         sync.RWMutex
	codes      map[string]domain.PendingCode
	maxEntries int
}

// NewStore creates a Store. maxEntries <= 0 means unbounded.
func NewStore(maxEntries int) *Store {
	return &Store{
		codes:      make(map[string]domain.PendingCode),
		maxEntries: maxEntries,
	}
}

func (s *Store) Put(_ context.Context, p *domain.PendingCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.codes[p.Email]; !exists && s.maxEntries > 0 && len(s.codes) >= s.maxEntries {
		s.evictOldest()
	}
	s.codes[p.Email] = *p
	return nil
}

func (s *Store) Get(_ context.Context, email string) (*domain.PendingCode, error) {
	s.mu.RLock()
	p, ok := s.codes[email]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("pending code: %w", domain.ErrNotFound)
	}
	return &p, nil
}

func (s *Store) Delete(_ context.Context, email string) error {
	s.mu.Lock()
	delete(s.codes, email)
	s.mu.Unlock()
	return nil
}

// Consume removes the entry for email only while it still carries issuance id.
// It reports false when the entry is gone or was replaced.
func (s *Store) Consume(_ context.Context, email, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.codes[email]
	if !ok || p.ID != id {
		return false, nil
	}
	delete(s.codes, email)
	return true, nil
}

// Len returns the number of stored entries, expired ones included.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.codes)
}

// Sweep deletes every entry that expired before now and returns how many were removed.
func (s *Store) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for email, p := range s.codes {
		if p.Expired(now) {
			delete(s.codes, email)
			n++
		}
	}
	return n
}

// RunSweeper calls Sweep every interval until ctx is cancelled.
func (s *Store) RunSweeper(ctx context.Context, interval time.Duration, now func() time.Time) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(now()); n > 0 {
				slog.Debug("swept expired codes", "removed", n)
			}
		}
	}
}

// evictOldest drops the entry closest to (or furthest past) expiry.
// Every entry shares one TTL, so that is also the oldest issued. Caller holds mu.
func (s *Store) evictOldest() {
	var (
		victim domain.PendingCode
		found  bool
	)
	for _, p := range s.codes {
		if !found || p.ExpiresAt.Before(victim.ExpiresAt) {
			victim, found = p, true
		}
	}
	if found {
		delete(s.codes, victim.Email)
		slog.Warn("pending code store full, evicted oldest entry", "id", victim.ID, "max_entries", s.maxEntries)
	}
}
