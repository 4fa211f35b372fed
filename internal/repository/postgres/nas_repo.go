// internal/repository/postgres/nas_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jejak-awan/ja-kdua-sub010/internal/domain/nas"
	xerrors "github.com/jejak-awan/ja-kdua-sub010/internal/pkg/errors"
)

type NasRepository struct {
	db *pgxpool.Pool
}

func NewNasRepository(db *pgxpool.Pool) *NasRepository {
	return &NasRepository{db: db}
}

const nasColumns = `
	id, name, short_name, ip_address,
	secret, auth_port, coa_port,
	api_username, api_password, api_port, use_tls,
	is_active, last_seen, created_at, updated_at
`

func scanNas(row pgx.Row) (*nas.Nas, error) {
	var n nas.Nas
	err := row.Scan(
		&n.ID, &n.Name, &n.ShortName, &n.IPAddress,
		&n.Secret, &n.AuthPort, &n.CoAPort,
		&n.APIUsername, &n.APIPassword, &n.APIPort, &n.UseTLS,
		&n.IsActive, &n.LastSeen, &n.CreatedAt, &n.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan nas: %w", err)
	}
	return &n, nil
}

// FindByID retrieves a router by ID.
func (r *NasRepository) FindByID(ctx context.Context, id int64) (*nas.Nas, error) {
	query := fmt.Sprintf(`SELECT %s FROM nas WHERE id = $1`, nasColumns)
	return scanNas(r.db.QueryRow(ctx, query, id))
}

// TouchLastSeen records a successful probe of the router.
func (r *NasRepository) TouchLastSeen(ctx context.Context, id int64) error {
	if _, err := r.db.Exec(ctx, `UPDATE nas SET last_seen = now() WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to touch nas last_seen: %w", err)
	}
	return nil
}
