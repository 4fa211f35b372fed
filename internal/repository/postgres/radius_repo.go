// internal/repository/postgres/radius_repo.go
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RadiusRepository projects subscriber authorization data onto the AAA
// store's FreeRADIUS-style schema: radcheck, radreply and radusergroup rows
// keyed by username. Upserts replace on (username, attribute) so a login
// never accumulates duplicate rows for the same attribute.
type RadiusRepository struct {
	db *pgxpool.Pool
}

func NewRadiusRepository(db *pgxpool.Pool) *RadiusRepository {
	return &RadiusRepository{db: db}
}

// UpsertCheck writes a check attribute row (e.g. Cleartext-Password).
func (r *RadiusRepository) UpsertCheck(ctx context.Context, username, attribute, op, value string) error {
	query := `
		INSERT INTO radcheck (username, attribute, op, value)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (username, attribute) DO UPDATE SET op = EXCLUDED.op, value = EXCLUDED.value
	`

	if _, err := r.db.Exec(ctx, query, username, attribute, op, value); err != nil {
		return fmt.Errorf("failed to upsert radcheck %s for %s: %w", attribute, username, err)
	}
	return nil
}

// UpsertReply writes a reply attribute row (e.g. Framed-IP-Address).
func (r *RadiusRepository) UpsertReply(ctx context.Context, username, attribute, op, value string) error {
	query := `
		INSERT INTO radreply (username, attribute, op, value)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (username, attribute) DO UPDATE SET op = EXCLUDED.op, value = EXCLUDED.value
	`

	if _, err := r.db.Exec(ctx, query, username, attribute, op, value); err != nil {
		return fmt.Errorf("failed to upsert radreply %s for %s: %w", attribute, username, err)
	}
	return nil
}

// UpsertGroup replaces the login's group membership.
func (r *RadiusRepository) UpsertGroup(ctx context.Context, username, groupname string, priority int) error {
	query := `
		INSERT INTO radusergroup (username, groupname, priority)
		VALUES ($1, $2, $3)
		ON CONFLICT (username) DO UPDATE SET groupname = EXCLUDED.groupname, priority = EXCLUDED.priority
	`

	if _, err := r.db.Exec(ctx, query, username, groupname, priority); err != nil {
		return fmt.Errorf("failed to upsert radusergroup for %s: %w", username, err)
	}
	return nil
}

// DeleteReply removes a single reply attribute for a login, if present.
func (r *RadiusRepository) DeleteReply(ctx context.Context, username, attribute string) error {
	if _, err := r.db.Exec(ctx,
		`DELETE FROM radreply WHERE username = $1 AND attribute = $2`, username, attribute); err != nil {
		return fmt.Errorf("failed to delete radreply %s for %s: %w", attribute, username, err)
	}
	return nil
}

// DeleteGroup removes the login's group membership, if any.
func (r *RadiusRepository) DeleteGroup(ctx context.Context, username string) error {
	if _, err := r.db.Exec(ctx,
		`DELETE FROM radusergroup WHERE username = $1`, username); err != nil {
		return fmt.Errorf("failed to delete radusergroup for %s: %w", username, err)
	}
	return nil
}

// DeleteUser removes every AAA row for a login. Safe to call on a login with
// no existing rows.
func (r *RadiusRepository) DeleteUser(ctx context.Context, username string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, table := range []string{"radcheck", "radreply", "radusergroup"} {
		if _, err := tx.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE username = $1", table), username); err != nil {
			return fmt.Errorf("failed to delete %s rows for %s: %w", table, username, err)
		}
	}

	return tx.Commit(ctx)
}
