// internal/service/diagnostic/cache.go
package diagnostic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jejak-awan/ja-kdua-sub010/internal/domain/diagnostic"
	xerrors "github.com/jejak-awan/ja-kdua-sub010/internal/pkg/errors"
)

// ReportCache keeps the last finished report per customer so support staff
// can see what the subscriber saw without re-running the probes.
type ReportCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewReportCache(rdb *redis.Client, ttl time.Duration) *ReportCache {
	if ttl == 0 {
		ttl = 15 * time.Minute
	}
	return &ReportCache{rdb: rdb, ttl: ttl}
}

func (c *ReportCache) key(customerID int64) string {
	return fmt.Sprintf("diag:last:%d", customerID)
}

func (c *ReportCache) Store(ctx context.Context, report *diagnostic.Report) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return c.rdb.Set(ctx, c.key(report.CustomerID), payload, c.ttl).Err()
}

func (c *ReportCache) Load(ctx context.Context, customerID int64) (*diagnostic.Report, error) {
	payload, err := c.rdb.Get(ctx, c.key(customerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cached report: %w", err)
	}

	var report diagnostic.Report
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, fmt.Errorf("failed to decode cached report: %w", err)
	}
	return &report, nil
}
