// internal/domain/ippool/entity.go
package ippool

import (
	"database/sql"
	"time"
)

type PoolStatus string

const (
	PoolActive   PoolStatus = "active"
	PoolInactive PoolStatus = "inactive"
)

// AddressStatus is the allocation state of a single pool address. An address
// never moves from assigned straight to assigned for another customer; it
// passes through available first.
type AddressStatus string

const (
	AddressAvailable AddressStatus = "available"
	AddressAssigned  AddressStatus = "assigned"
	AddressReserved  AddressStatus = "reserved"
)

type Pool struct {
	ID        int64      `json:"id" db:"id"`
	Name      string     `json:"name" db:"name"`
	Network   string     `json:"network" db:"network"` // CIDR block the pool was expanded from
	Status    PoolStatus `json:"status" db:"status"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

type Address struct {
	ID         int64         `json:"id" db:"id"`
	PoolID     int64         `json:"pool_id" db:"pool_id"`
	Address    string        `json:"address" db:"address"`
	Status     AddressStatus `json:"status" db:"status"`
	CustomerID sql.NullInt64 `json:"customer_id,omitempty" db:"customer_id"`
	AssignedAt sql.NullTime  `json:"assigned_at,omitempty" db:"assigned_at"`
	CreatedAt  time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at" db:"updated_at"`
}

type PoolCapacity struct {
	PoolID    int64  `json:"pool_id"`
	Name      string `json:"name"`
	Total     int64  `json:"total"`
	Available int64  `json:"available"`
	Assigned  int64  `json:"assigned"`
	Reserved  int64  `json:"reserved"`
}
