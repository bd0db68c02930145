package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/pr-poehali-dev/tracks-distribution-platform/internal/domain"
)

// CodeRepo persists issued auth codes. Rows are append-only except for
// the single used=false -> true transition.
type CodeRepo struct {
	store *Store
}

func NewCodeRepo(store *Store) *CodeRepo { return &CodeRepo{store: store} }

func (r *CodeRepo) Create(ctx context.Context, c *domain.AuthCode) error {
	_, err := r.store.pool.Exec(ctx, `
		insert into auth_codes (id, user_id, code, used, created_at, expires_at)
		values ($1, $2, $3, $4, $5, $6)
	`, c.CodeID, c.UserID, c.Code, c.Used, c.CreatedAt, c.ExpiresAt)
	if err != nil {
		return fmt.Errorf("insert auth code: %w", err)
	}
	return nil
}

// FindValid returns the newest unused, unexpired code matching the
// email+code pair. A miss is the expected invalid-or-expired path and is
// reported as domain.ErrNotFound, not a failure.
func (r *CodeRepo) FindValid(ctx context.Context, email, code string) (*domain.AuthCode, error) {
	var c domain.AuthCode
	err := r.store.pool.QueryRow(ctx, `
		select ac.id, ac.user_id, ac.code, ac.used, ac.created_at, ac.expires_at
		from auth_codes ac
		join users u on u.id = ac.user_id
		where u.email = $1
		  and ac.code = $2
		  and ac.used = false
		  and ac.expires_at > now()
		order by ac.created_at desc
		limit 1
	`, email, code).Scan(&c.CodeID, &c.UserID, &c.Code, &c.Used, &c.CreatedAt, &c.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find auth code: %w", err)
	}
	return &c, nil
}

// Consume is a conditional single-statement update, so two concurrent
// verifications of the same code cannot both win the transition.
func (r *CodeRepo) Consume(ctx context.Context, codeID string) (bool, error) {
	tag, err := r.store.pool.Exec(ctx, `
		update auth_codes
		set used = true
		where id = $1 and used = false
	`, codeID)
	if err != nil {
		return false, fmt.Errorf("consume auth code: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
