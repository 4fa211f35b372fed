// internal/repository/postgres/olt_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jejak-awan/ja-kdua-sub010/internal/domain/olt"
	xerrors "github.com/jejak-awan/ja-kdua-sub010/internal/pkg/errors"
)

type OltRepository struct {
	db *pgxpool.Pool
}

func NewOltRepository(db *pgxpool.Pool) *OltRepository {
	return &OltRepository{db: db}
}

const oltColumns = `
	id, name, vendor, model, host,
	ssh_port, ssh_username, ssh_password,
	snmp_port, snmp_community,
	is_active, last_seen, created_at, updated_at
`

// FindByID retrieves an OLT device record by ID.
func (r *OltRepository) FindByID(ctx context.Context, id int64) (*olt.Olt, error) {
	query := fmt.Sprintf(`SELECT %s FROM olts WHERE id = $1`, oltColumns)

	var o olt.Olt
	err := r.db.QueryRow(ctx, query, id).Scan(
		&o.ID, &o.Name, &o.Vendor, &o.Model, &o.Host,
		&o.SSHPort, &o.SSHUsername, &o.SSHPassword,
		&o.SNMPPort, &o.SNMPCommunity,
		&o.IsActive, &o.LastSeen, &o.CreatedAt, &o.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan olt: %w", err)
	}

	return &o, nil
}
