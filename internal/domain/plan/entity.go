// internal/domain/plan/entity.go
package plan

import (
	"time"

	"github.com/lib/pq"
)

type Plan struct {
	ID       int64  `json:"id" db:"id"`
	PlanCode string `json:"plan_code" db:"plan_code"`
	Name     string `json:"name" db:"name"`

	// RateLimit in Mikrotik rx/tx form, e.g. "10M/10M". Empty means
	// the plan does not cap the subscriber.
	RateLimit string  `json:"rate_limit" db:"rate_limit"`
	Price     float64 `json:"price" db:"price"`

	// Pools this plan allocates addresses from, in priority order.
	PoolNames pq.StringArray `json:"pool_names,omitempty" db:"pool_names"`

	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
