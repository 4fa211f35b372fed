// internal/domain/nas/entity.go
package nas

import (
	"database/sql"
	"time"
)

// Nas is an edge router terminating subscriber sessions. It is both the
// RADIUS client (CoA target) and the device the diagnostic pipeline probes.
type Nas struct {
	ID        int64  `json:"id" db:"id"`
	Name      string `json:"name" db:"name"`
	ShortName string `json:"short_name" db:"short_name"`
	IPAddress string `json:"ip_address" db:"ip_address"`

	// RADIUS
	Secret   string `json:"-" db:"secret"`
	AuthPort int    `json:"auth_port" db:"auth_port"`
	CoAPort  int    `json:"coa_port" db:"coa_port"`

	// RouterOS REST API
	APIUsername string `json:"api_username" db:"api_username"`
	APIPassword string `json:"-" db:"api_password"`
	APIPort     int    `json:"api_port" db:"api_port"`
	UseTLS      bool   `json:"use_tls" db:"use_tls"`

	IsActive bool `json:"is_active" db:"is_active"`

	LastSeen  sql.NullTime `json:"last_seen,omitempty" db:"last_seen"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt time.Time    `json:"updated_at" db:"updated_at"`
}
