// Package zte drives ZTE ZXA10 C3xx/C6xx OLTs: CLI over the injected
// transport for provisioning, SNMP for optical telemetry.
package zte

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jejak-awan/ja-kdua-sub010/internal/olt"
)

const Vendor = "zte"

type Driver struct {
	runner    olt.CommandRunner
	cfg       olt.Config
	telemetry *Telemetry
}

// NewDriver builds the ZTE variant. SNMP telemetry is optional; without a
// community string GetSignal reports absent readings.
func NewDriver(runner olt.CommandRunner, cfg olt.Config) (olt.Driver, error) {
	d := &Driver{runner: runner, cfg: cfg}
	if cfg.Community != "" {
		d.telemetry = NewTelemetry(cfg)
	}
	return d, nil
}

// RegisterONU executes the C3xx provisioning sequence: ONU binding on the
// PON port, T-CONT and GEM port provisioning, VLAN tagging and the
// management-side service binding. The sequence is serial and fails fast;
// partial device state is left as-is for a retry to converge.
func (d *Driver) RegisterONU(ctx context.Context, serial string, cfg olt.ONUConfig) error {
	commands := buildRegisterCommands(serial, cfg)
	if _, err := d.runner.Run(ctx, commands); err != nil {
		return fmt.Errorf("zte register onu %s: %w", serial, err)
	}
	return nil
}

// GetSignal reads the ONU optical rx power in dBm via SNMP.
func (d *Driver) GetSignal(ctx context.Context, iface, onuIndex string) (float64, bool, error) {
	if d.telemetry == nil {
		return 0, false, nil
	}
	return d.telemetry.OnuRxPower(ctx, iface, onuIndex)
}

// RebootONU power-cycles one ONU from the management interface.
func (d *Driver) RebootONU(ctx context.Context, iface, onuIndex string) error {
	commands := []string{
		"conf t",
		fmt.Sprintf("pon-onu-mng gpon-onu_%s:%s", iface, onuIndex),
		"reboot",
		"yes",
		"exit",
		"exit",
	}
	if _, err := d.runner.Run(ctx, commands); err != nil {
		return fmt.Errorf("zte reboot onu %s:%s: %w", iface, onuIndex, err)
	}
	return nil
}

func buildRegisterCommands(serial string, cfg olt.ONUConfig) []string {
	onuType := cfg.OnuType
	if onuType == "" {
		onuType = "ZTE-F609"
	}
	tcont := cfg.TcontProfile
	if tcont == "" {
		tcont = "default"
	}
	vlan := strconv.Itoa(cfg.VLAN)

	commands := []string{
		"conf t",

		// Bind the ONU to its PON port position
		fmt.Sprintf("interface gpon-olt_%s", cfg.Interface),
		fmt.Sprintf("onu %s type %s sn %s", cfg.OnuIndex, onuType, serial),
		"exit",

		// Traffic container + GEM port on the subscriber interface
		fmt.Sprintf("interface gpon-onu_%s:%s", cfg.Interface, cfg.OnuIndex),
		fmt.Sprintf("tcont 1 profile %s", tcont),
		"gemport 1 tcont 1",
		fmt.Sprintf("service-port 1 vport 1 user-vlan %s vlan %s", vlan, vlan),
		"exit",

		// Management-side service binding
		fmt.Sprintf("pon-onu-mng gpon-onu_%s:%s", cfg.Interface, cfg.OnuIndex),
		fmt.Sprintf("service internet gemport 1 vlan %s", vlan),
		fmt.Sprintf("vlan port eth_0/1 mode tag vlan %s", vlan),
		"exit",
		"exit",
	}

	if cfg.Description != "" {
		// Name goes on the subscriber interface, after it exists
		commands = append(commands,
			"conf t",
			fmt.Sprintf("interface gpon-onu_%s:%s", cfg.Interface, cfg.OnuIndex),
			fmt.Sprintf("name %s", cfg.Description),
			"exit",
			"exit",
		)
	}

	return commands
}
