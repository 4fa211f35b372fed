// internal/domain/olt/entity.go
package olt

import (
	"database/sql"
	"time"
)

// Olt is an optical line terminal record. Vendor selects the driver variant;
// the CLI and SNMP credentials feed the injected transports.
type Olt struct {
	ID     int64  `json:"id" db:"id"`
	Name   string `json:"name" db:"name"`
	Vendor string `json:"vendor" db:"vendor"` // "zte", "vsol"
	Model  string `json:"model" db:"model"`
	Host   string `json:"host" db:"host"`

	// CLI transport
	SSHPort     int    `json:"ssh_port" db:"ssh_port"`
	SSHUsername string `json:"ssh_username" db:"ssh_username"`
	SSHPassword string `json:"-" db:"ssh_password"`

	// SNMP telemetry
	SNMPPort      int    `json:"snmp_port" db:"snmp_port"`
	SNMPCommunity string `json:"-" db:"snmp_community"`

	IsActive bool `json:"is_active" db:"is_active"`

	LastSeen  sql.NullTime `json:"last_seen,omitempty" db:"last_seen"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt time.Time    `json:"updated_at" db:"updated_at"`
}
