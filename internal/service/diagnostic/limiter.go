// internal/service/diagnostic/limiter.go
package diagnostic

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	xerrors "github.com/jejak-awan/ja-kdua-sub010/internal/pkg/errors"
)

// Limiter throttles diagnostic runs per customer. Each run hammers the
// router and the OLT, so self-service users get a small fixed window.
type Limiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
}

func NewLimiter(rdb *redis.Client, limit int, window time.Duration) *Limiter {
	if limit <= 0 {
		limit = 3
	}
	if window == 0 {
		window = time.Minute
	}
	return &Limiter{rdb: rdb, limit: limit, window: window}
}

// Allow consumes one slot for the customer, ErrRateLimited when exhausted.
// A Redis outage fails open: diagnostics keep working without the limit.
func (l *Limiter) Allow(ctx context.Context, customerID int64) error {
	key := fmt.Sprintf("diag:rl:%d", customerID)

	count, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return nil
	}
	if count == 1 {
		l.rdb.Expire(ctx, key, l.window)
	}

	if count > int64(l.limit) {
		return fmt.Errorf("%w: diagnostic limit of %d per %s reached", xerrors.ErrRateLimited, l.limit, l.window)
	}
	return nil
}
