// internal/service/ippool/ippool.go
package ippool

import (
	"context"
	"errors"
	"fmt"
	"net/netip"

	"go.uber.org/zap"

	"github.com/jejak-awan/ja-kdua-sub010/internal/domain/ippool"
	xerrors "github.com/jejak-awan/ja-kdua-sub010/internal/pkg/errors"
)

// PoolStore is the repository surface the allocator needs.
type PoolStore interface {
	CreatePool(ctx context.Context, p *ippool.Pool, addresses []string) error
	FindAssigned(ctx context.Context, customerID int64) (*ippool.Address, error)
	ClaimNext(ctx context.Context, customerID int64) (*ippool.Address, error)
	ReleaseAll(ctx context.Context, customerID int64) (int64, error)
	ListCapacity(ctx context.Context) ([]ippool.PoolCapacity, error)
	SetPoolStatus(ctx context.Context, poolID int64, status ippool.PoolStatus) error
}

type Service struct {
	store  PoolStore
	logger *zap.Logger
}

func NewService(store PoolStore, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Assign returns the customer's address, allocating one if none is held.
// Repeated calls for the same customer always return the same address, so
// callers can use it as an idempotent "ensure assigned" operation.
func (s *Service) Assign(ctx context.Context, customerID int64) (*ippool.Address, error) {
	existing, err := s.store.FindAssigned(ctx, customerID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, xerrors.ErrNotFound) {
		return nil, err
	}

	addr, err := s.store.ClaimNext(ctx, customerID)
	if errors.Is(err, xerrors.ErrConflict) {
		// Lost the row between select and update; one more pass picks the
		// next candidate.
		s.logger.Debug("address claim conflicted, retrying", zap.Int64("customer_id", customerID))
		addr, err = s.store.ClaimNext(ctx, customerID)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("assigned address",
		zap.Int64("customer_id", customerID),
		zap.String("address", addr.Address),
		zap.Int64("pool_id", addr.PoolID),
	)
	return addr, nil
}

// Release frees every address the customer holds. Releasing a customer with
// no addresses is a no-op.
func (s *Service) Release(ctx context.Context, customerID int64) error {
	released, err := s.store.ReleaseAll(ctx, customerID)
	if err != nil {
		return err
	}
	if released > 0 {
		s.logger.Info("released addresses",
			zap.Int64("customer_id", customerID),
			zap.Int64("count", released),
		)
	}
	return nil
}

// CreatePool expands the CIDR block into individual host addresses and stores
// the pool. Network and broadcast addresses are excluded for blocks smaller
// than /31.
func (s *Service) CreatePool(ctx context.Context, name, cidr string) (*ippool.Pool, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: pool name is required", xerrors.ErrValidation)
	}

	addresses, err := ExpandCIDR(cidr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", xerrors.ErrValidation, err)
	}

	pool := &ippool.Pool{
		Name:    name,
		Network: cidr,
		Status:  ippool.PoolActive,
	}
	if err := s.store.CreatePool(ctx, pool, addresses); err != nil {
		return nil, err
	}

	s.logger.Info("created pool",
		zap.String("name", name),
		zap.String("network", cidr),
		zap.Int("addresses", len(addresses)),
	)
	return pool, nil
}

// Capacity returns per-pool allocation counts.
func (s *Service) Capacity(ctx context.Context) ([]ippool.PoolCapacity, error) {
	return s.store.ListCapacity(ctx)
}

// SetPoolStatus activates or deactivates a pool. Deactivating stops new
// allocations but leaves existing assignments untouched.
func (s *Service) SetPoolStatus(ctx context.Context, poolID int64, status ippool.PoolStatus) error {
	if status != ippool.PoolActive && status != ippool.PoolInactive {
		return fmt.Errorf("%w: invalid pool status %q", xerrors.ErrValidation, status)
	}
	return s.store.SetPoolStatus(ctx, poolID, status)
}

// maxPoolBits caps expansion at a /16 (65534 hosts).
const maxPoolBits = 16

// ExpandCIDR lists the usable host addresses in an IPv4 block. /31 and /32
// are rejected as too small to pool.
func ExpandCIDR(cidr string) ([]string, error) {
	prefix, err := netip.ParsePrefix(cidr)
	if err != nil {
		return nil, fmt.Errorf("invalid CIDR %q: %w", cidr, err)
	}
	if !prefix.Addr().Is4() {
		return nil, fmt.Errorf("only IPv4 pools are supported, got %q", cidr)
	}
	if prefix.Bits() < maxPoolBits {
		return nil, fmt.Errorf("block %q too large, smallest supported prefix is /%d", cidr, maxPoolBits)
	}
	if prefix.Bits() > 30 {
		return nil, fmt.Errorf("block %q too small to pool", cidr)
	}

	prefix = prefix.Masked()

	var addresses []string
	for addr := prefix.Addr().Next(); prefix.Contains(addr); addr = addr.Next() {
		addresses = append(addresses, addr.String())
	}
	// Drop the broadcast address
	return addresses[:len(addresses)-1], nil
}
