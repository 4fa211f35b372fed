// internal/service/customer/customer.go
package customer

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/jejak-awan/ja-kdua-sub010/internal/domain/customer"
	xerrors "github.com/jejak-awan/ja-kdua-sub010/internal/pkg/errors"
)

// Repository is the persistence surface for customer records.
type Repository interface {
	Create(ctx context.Context, c *customer.Customer) error
	FindByID(ctx context.Context, id int64) (*customer.Customer, error)
	FindByLogin(ctx context.Context, login string) (*customer.Customer, error)
	UpdateStatus(ctx context.Context, id int64, status customer.Status) error
	Delete(ctx context.Context, id int64) error
}

// Reconciler pushes a customer's billing state onto the network.
type Reconciler interface {
	Reconcile(ctx context.Context, old, cur *customer.Customer) error
	HandleDelete(ctx context.Context, c *customer.Customer) error
}

// CustomerService owns the customer lifecycle. Every mutation that changes
// network-relevant state runs through the reconciler after persisting.
type CustomerService struct {
	repo       Repository
	reconciler Reconciler
	logger     *zap.Logger
}

func NewCustomerService(repo Repository, reconciler Reconciler, logger *zap.Logger) *CustomerService {
	return &CustomerService{
		repo:       repo,
		reconciler: reconciler,
		logger:     logger,
	}
}

// CreateCustomer persists a new subscriber and provisions its network state.
func (s *CustomerService) CreateCustomer(ctx context.Context, req *customer.CreateCustomerRequest) (*customer.Customer, error) {
	if existing, err := s.repo.FindByLogin(ctx, req.Login); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: login %s already in use", xerrors.ErrConflict, req.Login)
	}

	c := &customer.Customer{
		FullName: req.FullName,
		Status:   customer.StatusActive,
		Login:    req.Login,
		Secret:   req.Secret,
		PlanID:   nullInt64(req.PlanID),
		RouterID: nullInt64(req.RouterID),
		OltID:    nullInt64(req.OltID),
		Tags:     req.Tags,
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	if err := s.reconciler.Reconcile(ctx, nil, c); err != nil {
		// Record exists, network state will converge on the next change.
		s.logger.Error("initial reconcile failed",
			zap.Int64("customer_id", c.ID),
			zap.Error(err),
		)
		return c, fmt.Errorf("customer created but provisioning incomplete: %w", err)
	}

	return c, nil
}

func (s *CustomerService) GetCustomer(ctx context.Context, id int64) (*customer.Customer, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *CustomerService) GetCustomerByLogin(ctx context.Context, login string) (*customer.Customer, error) {
	return s.repo.FindByLogin(ctx, login)
}

// UpdateStatus persists the new lifecycle status and reconciles network
// state against it. The status write commits even when reconciliation fails;
// billing is the source of truth and the network follows.
func (s *CustomerService) UpdateStatus(ctx context.Context, id int64, status customer.Status) (*customer.Customer, error) {
	switch status {
	case customer.StatusActive, customer.StatusSuspended, customer.StatusIsolated,
		customer.StatusInactive, customer.StatusTerminated:
	default:
		return nil, fmt.Errorf("%w: unknown status %q", xerrors.ErrValidation, status)
	}

	old, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}

	cur := *old
	cur.Status = status

	if err := s.reconciler.Reconcile(ctx, old, &cur); err != nil {
		s.logger.Error("reconcile after status change failed",
			zap.Int64("customer_id", id),
			zap.String("status", string(status)),
			zap.Error(err),
		)
		return &cur, fmt.Errorf("status updated but network state not converged: %w", err)
	}

	return &cur, nil
}

// DeleteCustomer releases the customer's network resources and removes the
// record. Teardown runs first so a failed teardown leaves the record intact
// for a retry.
func (s *CustomerService) DeleteCustomer(ctx context.Context, id int64) error {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.reconciler.HandleDelete(ctx, c); err != nil {
		return fmt.Errorf("failed to tear down network state for customer %d: %w", id, err)
	}

	return s.repo.Delete(ctx, id)
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
