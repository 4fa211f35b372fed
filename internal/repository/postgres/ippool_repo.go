// internal/repository/postgres/ippool_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jejak-awan/ja-kdua-sub010/internal/domain/ippool"
	xerrors "github.com/jejak-awan/ja-kdua-sub010/internal/pkg/errors"
)

type IPPoolRepository struct {
	db *pgxpool.Pool
}

func NewIPPoolRepository(db *pgxpool.Pool) *IPPoolRepository {
	return &IPPoolRepository{db: db}
}

// CreatePool inserts a pool and its expanded address range in one transaction.
func (r *IPPoolRepository) CreatePool(ctx context.Context, p *ippool.Pool, addresses []string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO ip_pools (name, network, status) VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		p.Name, p.Network, p.Status,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create pool: %w", err)
	}

	batch := &pgx.Batch{}
	for _, addr := range addresses {
		batch.Queue(
			`INSERT INTO ip_pool_addresses (pool_id, address, status) VALUES ($1, $2, $3)`,
			p.ID, addr, ippool.AddressAvailable,
		)
	}
	br := tx.SendBatch(ctx, batch)
	for range addresses {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("failed to insert pool address: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to close batch: %w", err)
	}

	return tx.Commit(ctx)
}

// FindAssigned returns the address currently assigned to the customer, if
// any. Pools are scanned in creation order so repeated calls are stable.
func (r *IPPoolRepository) FindAssigned(ctx context.Context, customerID int64) (*ippool.Address, error) {
	query := `
		SELECT a.id, a.pool_id, a.address, a.status, a.customer_id, a.assigned_at, a.created_at, a.updated_at
		FROM ip_pool_addresses a
		WHERE a.customer_id = $1 AND a.status = $2
		ORDER BY a.pool_id, a.address::inet
		LIMIT 1
	`

	var a ippool.Address
	err := r.db.QueryRow(ctx, query, customerID, ippool.AddressAssigned).Scan(
		&a.ID, &a.PoolID, &a.Address, &a.Status, &a.CustomerID, &a.AssignedAt, &a.CreatedAt, &a.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find assigned address: %w", err)
	}

	return &a, nil
}

// ClaimNext atomically transitions the first available address of the first
// active pool to assigned for the given customer. The row is locked for the
// duration of the transaction; concurrent claimers skip locked rows so two
// allocations can never race onto the same address.
func (r *IPPoolRepository) ClaimNext(ctx context.Context, customerID int64) (*ippool.Address, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// Pool tie-break: creation (id) order. Address tie-break: lowest first,
	// in inet ordering.
	selectQuery := `
		SELECT a.id, a.pool_id, a.address
		FROM ip_pool_addresses a
		JOIN ip_pools p ON p.id = a.pool_id
		WHERE p.status = $1 AND a.status = $2
		ORDER BY p.id, a.address::inet
		LIMIT 1
		FOR UPDATE OF a SKIP LOCKED
	`

	var a ippool.Address
	err = tx.QueryRow(ctx, selectQuery, ippool.PoolActive, ippool.AddressAvailable).
		Scan(&a.ID, &a.PoolID, &a.Address)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNoCapacity
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select available address: %w", err)
	}

	updateQuery := `
		UPDATE ip_pool_addresses
		SET status = $1, customer_id = $2, assigned_at = now(), updated_at = now()
		WHERE id = $3 AND status = $4
	`

	result, err := tx.Exec(ctx, updateQuery, ippool.AddressAssigned, customerID, a.ID, ippool.AddressAvailable)
	if err != nil {
		return nil, fmt.Errorf("failed to claim address: %w", err)
	}
	if result.RowsAffected() == 0 {
		// The row changed under us between select and update.
		return nil, xerrors.ErrConflict
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit claim: %w", err)
	}

	a.Status = ippool.AddressAssigned
	a.CustomerID.Int64 = customerID
	a.CustomerID.Valid = true
	return &a, nil
}

// ReleaseAll frees every address assigned to the customer, across all pools.
// Defensive against duplicate historical assignments.
func (r *IPPoolRepository) ReleaseAll(ctx context.Context, customerID int64) (int64, error) {
	query := `
		UPDATE ip_pool_addresses
		SET status = $1, customer_id = NULL, assigned_at = NULL, updated_at = now()
		WHERE customer_id = $2 AND status = $3
	`

	result, err := r.db.Exec(ctx, query, ippool.AddressAvailable, customerID, ippool.AddressAssigned)
	if err != nil {
		return 0, fmt.Errorf("failed to release addresses: %w", err)
	}

	return result.RowsAffected(), nil
}

// ListCapacity summarizes pools for the capacity view.
func (r *IPPoolRepository) ListCapacity(ctx context.Context) ([]ippool.PoolCapacity, error) {
	query := `
		SELECT p.id, p.name,
		       COUNT(a.id),
		       COUNT(a.id) FILTER (WHERE a.status = 'available'),
		       COUNT(a.id) FILTER (WHERE a.status = 'assigned'),
		       COUNT(a.id) FILTER (WHERE a.status = 'reserved')
		FROM ip_pools p
		LEFT JOIN ip_pool_addresses a ON a.pool_id = p.id
		GROUP BY p.id, p.name
		ORDER BY p.id
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list pool capacity: %w", err)
	}
	defer rows.Close()

	capacities := []ippool.PoolCapacity{}
	for rows.Next() {
		var c ippool.PoolCapacity
		if err := rows.Scan(&c.PoolID, &c.Name, &c.Total, &c.Available, &c.Assigned, &c.Reserved); err != nil {
			return nil, fmt.Errorf("failed to scan pool capacity: %w", err)
		}
		capacities = append(capacities, c)
	}

	return capacities, rows.Err()
}

// SetPoolStatus activates or deactivates a pool.
func (r *IPPoolRepository) SetPoolStatus(ctx context.Context, poolID int64, status ippool.PoolStatus) error {
	result, err := r.db.Exec(ctx,
		`UPDATE ip_pools SET status = $1, updated_at = now() WHERE id = $2`, status, poolID)
	if err != nil {
		return fmt.Errorf("failed to set pool status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}
