// Package memory is an in-process implementation of the auth repositories
// mirroring the postgres semantics. It backs the service and transport
// tests and the MAILER-less local development mode.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pr-poehali-dev/tracks-distribution-platform/internal/domain"
	"github.com/pr-poehali-dev/tracks-distribution-platform/internal/pkg/id"
)

type Store struct {
	mu sync.Mutex

	usersByEmail map[string]domain.User
	codes        map[string]domain.AuthCode
}

func NewStore() *Store {
	return &Store{
		usersByEmail: make(map[string]domain.User),
		codes:        make(map[string]domain.AuthCode),
	}
}

// Users returns the store's UserRepository view.
func (s *Store) Users() *UserRepo { return &UserRepo{s: s} }

// Codes returns the store's CodeRepository view.
func (s *Store) Codes() *CodeRepo { return &CodeRepo{s: s} }

type UserRepo struct {
	s *Store
}

func (r *UserRepo) Upsert(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if u, ok := r.s.usersByEmail[email]; ok {
		return &u, nil
	}
	u := domain.User{
		UserID:    id.New(),
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}
	r.s.usersByEmail[email] = u
	return &u, nil
}

type CodeRepo struct {
	s *Store
}

func (r *CodeRepo) Create(_ context.Context, c *domain.AuthCode) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.codes[c.CodeID] = *c
	return nil
}

func (r *CodeRepo) FindValid(_ context.Context, email, code string) (*domain.AuthCode, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.usersByEmail[email]
	if !ok {
		return nil, domain.ErrNotFound
	}

	now := time.Now()
	var matches []domain.AuthCode
	for _, c := range r.s.codes {
		if c.UserID == u.UserID && c.Code == code && c.Valid(now) {
			matches = append(matches, c)
		}
	}
	if len(matches) == 0 {
		return nil, domain.ErrNotFound
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	return &matches[0], nil
}

func (r *CodeRepo) Consume(_ context.Context, codeID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.codes[codeID]
	if !ok || c.Used {
		return false, nil
	}
	c.Used = true
	r.s.codes[codeID] = c
	return true, nil
}

// Seed inserts an auth code row directly, bypassing the service. Tests use
// it to craft expired or already-used rows.
func (s *Store) Seed(c domain.AuthCode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[c.CodeID] = c
}

// CodesFor returns all stored codes for the user, newest first.
func (s *Store) CodesFor(userID string) []domain.AuthCode {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.AuthCode
	for _, c := range s.codes {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// UserByEmail returns the stored user for a normalized email, if any.
func (s *Store) UserByEmail(email string) (*domain.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.usersByEmail[email]
	if !ok {
		return nil, false
	}
	return &u, true
}
