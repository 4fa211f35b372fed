// internal/service/reconciler/reconciler.go
package reconciler

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jejak-awan/ja-kdua-sub010/internal/domain/customer"
	"github.com/jejak-awan/ja-kdua-sub010/internal/domain/ippool"
	"github.com/jejak-awan/ja-kdua-sub010/internal/domain/plan"
	"github.com/jejak-awan/ja-kdua-sub010/internal/service/radius"
)

// AddressAllocator manages the customer's pool address.
type AddressAllocator interface {
	Assign(ctx context.Context, customerID int64) (*ippool.Address, error)
	Release(ctx context.Context, customerID int64) error
}

// AAASync pushes credentials and attributes into the AAA store.
type AAASync interface {
	SyncUser(ctx context.Context, login, secret, group string, attrs map[string]string) error
	RemoveUser(ctx context.Context, login string) error
}

// PlanResolver looks up the customer's service plan.
type PlanResolver interface {
	FindByID(ctx context.Context, id int64) (*plan.Plan, error)
}

// Disconnector forces the customer's session to re-authenticate.
type Disconnector interface {
	SendDisconnect(ctx context.Context, c *customer.Customer) (*radius.DisconnectResult, error)
}

// Service translates billing status transitions into network state: pool
// address, AAA rows and, when the change matters to a live session, a forced
// disconnect. It is the only component allowed to mutate AAA state from a
// status change.
type Service struct {
	pool   AddressAllocator
	aaa    AAASync
	plans  PlanResolver
	coa    Disconnector
	logger *zap.Logger
}

func NewService(pool AddressAllocator, aaa AAASync, plans PlanResolver, coa Disconnector, logger *zap.Logger) *Service {
	return &Service{
		pool:   pool,
		aaa:    aaa,
		plans:  plans,
		coa:    coa,
		logger: logger,
	}
}

// Reconcile brings network state in line with cur. old is the customer before
// the change, nil when the customer was just provisioned. Customers without
// AAA credentials are skipped entirely.
//
// The disconnect at the end is best-effort: a NAS that is down must not make
// the status change itself fail, the session will pick up the new state on
// its next natural re-authentication.
func (s *Service) Reconcile(ctx context.Context, old, cur *customer.Customer) error {
	if !cur.Provisioned() {
		s.logger.Debug("skipping unprovisioned customer", zap.Int64("customer_id", cur.ID))
		return nil
	}

	attrs := map[string]string{}
	group := ""

	if cur.PlanID.Valid {
		p, err := s.plans.FindByID(ctx, cur.PlanID.Int64)
		if err != nil {
			return fmt.Errorf("failed to resolve plan for customer %d: %w", cur.ID, err)
		}
		if p.RateLimit != "" {
			attrs[radius.AttrRateLimit] = p.RateLimit
		}
	}

	// Pool failures never block the AAA sync: a customer activated while the
	// pool is exhausted still gets credentials and rate limit pushed, and the
	// address lands on the next triggering event. The error is reported to the
	// caller after the sync.
	var poolErr error

	switch cur.Status {
	case customer.StatusActive:
		addr, err := s.pool.Assign(ctx, cur.ID)
		if err != nil {
			poolErr = fmt.Errorf("failed to assign address for customer %d: %w", cur.ID, err)
			s.logger.Error("address assignment failed, syncing without framed address",
				zap.Int64("customer_id", cur.ID),
				zap.Error(err),
			)
		} else {
			attrs[radius.AttrFramedIPAddress] = addr.Address
		}

	case customer.StatusSuspended, customer.StatusIsolated:
		// Keep the address so the walled garden can identify the client.
		group = radius.GroupIsolated

	case customer.StatusInactive, customer.StatusTerminated:
		if err := s.pool.Release(ctx, cur.ID); err != nil {
			poolErr = fmt.Errorf("failed to release address for customer %d: %w", cur.ID, err)
			s.logger.Error("address release failed, continuing with AAA sync",
				zap.Int64("customer_id", cur.ID),
				zap.Error(err),
			)
		}
	}

	if err := s.aaa.SyncUser(ctx, cur.Login, cur.Secret, group, attrs); err != nil {
		return fmt.Errorf("failed to sync AAA state for customer %d: %w", cur.ID, err)
	}

	if s.criticalChanged(old, cur) {
		result, err := s.coa.SendDisconnect(ctx, cur)
		if err != nil {
			s.logger.Warn("disconnect after reconcile failed",
				zap.Int64("customer_id", cur.ID),
				zap.Error(err),
			)
		} else if result.NoSession {
			s.logger.Debug("no session to disconnect", zap.Int64("customer_id", cur.ID))
		}
	}

	return poolErr
}

// HandleDelete tears down everything the customer holds on the network side.
// Called before the customer row itself is removed.
func (s *Service) HandleDelete(ctx context.Context, c *customer.Customer) error {
	if err := s.pool.Release(ctx, c.ID); err != nil {
		return fmt.Errorf("failed to release address for customer %d: %w", c.ID, err)
	}

	if c.Login != "" {
		if err := s.aaa.RemoveUser(ctx, c.Login); err != nil {
			return fmt.Errorf("failed to remove AAA rows for customer %d: %w", c.ID, err)
		}
		if _, err := s.coa.SendDisconnect(ctx, c); err != nil {
			s.logger.Warn("disconnect after delete failed",
				zap.Int64("customer_id", c.ID),
				zap.Error(err),
			)
		}
	}

	return nil
}

// criticalChanged reports whether the transition requires the live session to
// be torn down. Cosmetic edits (name, tags, location) never do.
func (s *Service) criticalChanged(old, cur *customer.Customer) bool {
	if old == nil {
		return true
	}
	if old.Status != cur.Status {
		return true
	}
	if old.PlanID != cur.PlanID {
		return true
	}
	if old.Secret != cur.Secret || old.Login != cur.Login {
		return true
	}
	return false
}
