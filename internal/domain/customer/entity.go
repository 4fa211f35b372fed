// internal/domain/customer/entity.go
package customer

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

// Status is the billing lifecycle state of a subscriber. Status transitions
// are the sole trigger for network-side reconciliation.
type Status string

const (
	StatusActive     Status = "active"
	StatusSuspended  Status = "suspended"
	StatusIsolated   Status = "isolated"
	StatusInactive   Status = "inactive"
	StatusTerminated Status = "terminated"
)

type Customer struct {
	ID       int64  `json:"id" db:"id"`
	FullName string `json:"full_name" db:"full_name"`
	Status   Status `json:"status" db:"status"`

	// AAA credentials. Present iff the customer has ever been provisioned.
	Login  string `json:"login" db:"login"`
	Secret string `json:"-" db:"secret"`

	// Service references
	PlanID   sql.NullInt64 `json:"plan_id,omitempty" db:"plan_id"`
	RouterID sql.NullInt64 `json:"router_id,omitempty" db:"router_id"`
	OltID    sql.NullInt64 `json:"olt_id,omitempty" db:"olt_id"`

	// ONU placement on the OLT, empty for ethernet/fiber-direct customers
	OnuSerial    sql.NullString `json:"onu_serial,omitempty" db:"onu_serial"`
	OnuInterface sql.NullString `json:"onu_interface,omitempty" db:"onu_interface"`
	OnuIndex     sql.NullString `json:"onu_index,omitempty" db:"onu_index"`

	// Geolocation (optional)
	Latitude  sql.NullFloat64 `json:"latitude,omitempty" db:"latitude"`
	Longitude sql.NullFloat64 `json:"longitude,omitempty" db:"longitude"`

	Tags pq.StringArray `json:"tags,omitempty" db:"tags"`

	CreatedAt time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt time.Time    `json:"updated_at" db:"updated_at"`
	DeletedAt sql.NullTime `json:"deleted_at,omitempty" db:"deleted_at"`
}

// Provisioned reports whether AAA credentials exist for this customer.
func (c *Customer) Provisioned() bool {
	return c.Login != "" && c.Secret != ""
}

// HasOLT reports whether the customer is served through fiber OLT
// infrastructure. Ethernet-direct customers have no OLT in path.
func (c *Customer) HasOLT() bool {
	return c.OltID.Valid && c.OnuInterface.Valid
}
