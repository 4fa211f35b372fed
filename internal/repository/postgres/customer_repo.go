// internal/repository/postgres/customer_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jejak-awan/ja-kdua-sub010/internal/domain/customer"
	xerrors "github.com/jejak-awan/ja-kdua-sub010/internal/pkg/errors"
)

type CustomerRepository struct {
	db *pgxpool.Pool
}

func NewCustomerRepository(db *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{db: db}
}

const customerColumns = `
	id, full_name, status, login, secret,
	plan_id, router_id, olt_id,
	onu_serial, onu_interface, onu_index,
	latitude, longitude, tags,
	created_at, updated_at, deleted_at
`

func scanCustomer(row pgx.Row) (*customer.Customer, error) {
	var c customer.Customer
	err := row.Scan(
		&c.ID, &c.FullName, &c.Status, &c.Login, &c.Secret,
		&c.PlanID, &c.RouterID, &c.OltID,
		&c.OnuSerial, &c.OnuInterface, &c.OnuIndex,
		&c.Latitude, &c.Longitude, &c.Tags,
		&c.CreatedAt, &c.UpdatedAt, &c.DeletedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan customer: %w", err)
	}
	return &c, nil
}

// Create inserts a new customer record.
func (r *CustomerRepository) Create(ctx context.Context, c *customer.Customer) error {
	query := `
		INSERT INTO customers (
			full_name, status, login, secret,
			plan_id, router_id, olt_id,
			onu_serial, onu_interface, onu_index,
			latitude, longitude, tags
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(
		ctx, query,
		c.FullName, c.Status, c.Login, c.Secret,
		c.PlanID, c.RouterID, c.OltID,
		c.OnuSerial, c.OnuInterface, c.OnuIndex,
		c.Latitude, c.Longitude, c.Tags,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}

	return nil
}

// FindByID retrieves a customer by ID.
func (r *CustomerRepository) FindByID(ctx context.Context, id int64) (*customer.Customer, error) {
	query := fmt.Sprintf(`SELECT %s FROM customers WHERE id = $1 AND deleted_at IS NULL`, customerColumns)
	return scanCustomer(r.db.QueryRow(ctx, query, id))
}

// FindByLogin retrieves a customer by AAA login.
func (r *CustomerRepository) FindByLogin(ctx context.Context, login string) (*customer.Customer, error) {
	query := fmt.Sprintf(`SELECT %s FROM customers WHERE login = $1 AND deleted_at IS NULL`, customerColumns)
	return scanCustomer(r.db.QueryRow(ctx, query, login))
}

// UpdateStatus persists a new lifecycle status.
func (r *CustomerRepository) UpdateStatus(ctx context.Context, id int64, status customer.Status) error {
	query := `UPDATE customers SET status = $1, updated_at = now() WHERE id = $2 AND deleted_at IS NULL`

	result, err := r.db.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update customer status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// UpdateONU records the ONU placement after a successful device registration.
func (r *CustomerRepository) UpdateONU(ctx context.Context, id int64, serial, iface, onuIndex string) error {
	query := `
		UPDATE customers
		SET onu_serial = $1, onu_interface = $2, onu_index = $3, updated_at = now()
		WHERE id = $4 AND deleted_at IS NULL
	`

	result, err := r.db.Exec(ctx, query, serial, iface, onuIndex, id)
	if err != nil {
		return fmt.Errorf("failed to update customer onu: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// Delete removes a customer permanently. Callers must release network
// resources (addresses, AAA rows) before calling this.
func (r *CustomerRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}
