// Package olt is the vendor-polymorphic driver layer for optical line
// terminals. Each vendor adapter translates the abstract capability calls
// into an ordered, vendor-specific CLI command sequence executed over an
// injected transport.
package olt

import (
	"context"
	"time"
)

// Driver is the capability set every vendor variant provides.
//
// RegisterONU is safe to retry; detecting "already registered" is the
// caller's responsibility. GetSignal reports absent telemetry as ok=false
// with a nil error so callers can distinguish "no reading" from a transport
// failure. Partial device state left behind by a failed command sequence is
// not rolled back by the driver.
type Driver interface {
	RegisterONU(ctx context.Context, serial string, cfg ONUConfig) error
	GetSignal(ctx context.Context, iface, onuIndex string) (dbm float64, ok bool, err error)
	RebootONU(ctx context.Context, iface, onuIndex string) error
}

// ONUConfig carries the provisioning parameters for one ONU.
type ONUConfig struct {
	Interface      string // PON port, vendor notation (ZTE "1/2/3", V-SOL "0/3")
	OnuIndex       string // position on the PON port
	OnuType        string
	VLAN           int
	TcontProfile   string
	LineProfile    string
	ServiceProfile string
	Description    string
}

// CommandRunner executes an ordered CLI command sequence against a device.
// Execution is serial and fails fast on the first transport error.
type CommandRunner interface {
	Run(ctx context.Context, commands []string) ([]string, error)
}

// Config identifies a device and its transport credentials.
type Config struct {
	Vendor string
	Model  string
	Host   string

	// CLI transport
	SSHPort  int
	Username string
	Password string

	// SNMP telemetry
	SNMPPort  uint16
	Community string

	Timeout time.Duration
}
