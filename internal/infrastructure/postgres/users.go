package postgres

import (
	"context"
	"fmt"

	"github.com/pr-poehali-dev/tracks-distribution-platform/internal/domain"
	"github.com/pr-poehali-dev/tracks-distribution-platform/internal/pkg/id"
)

// UserRepo persists users keyed by normalized email.
type UserRepo struct {
	store *Store
}

func NewUserRepo(store *Store) *UserRepo { return &UserRepo{store: store} }

// Upsert inserts a user for the email or returns the existing row. The
// unique constraint on email is the atomicity mechanism: concurrent calls
// for the same address cannot create a duplicate, and the no-op conflict
// update lets RETURNING yield the surviving row either way.
func (r *UserRepo) Upsert(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.store.pool.QueryRow(ctx, `
		insert into users (id, email)
		values ($1, $2)
		on conflict (email) do update set email = excluded.email
		returning id, email, created_at
	`, id.New(), email).Scan(&u.UserID, &u.Email, &u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	return &u, nil
}
