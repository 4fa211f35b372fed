// Package vsol drives V-SOL V1600G-series OLTs over their CLI. Optical
// telemetry comes from the same CLI session; V-SOL exposes no usable SNMP
// rx-power table on older firmware.
package vsol

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/jejak-awan/ja-kdua-sub010/internal/olt"
)

const Vendor = "vsol"

type Driver struct {
	runner olt.CommandRunner
	cfg    olt.Config
}

func NewDriver(runner olt.CommandRunner, cfg olt.Config) (olt.Driver, error) {
	return &Driver{runner: runner, cfg: cfg}, nil
}

// RegisterONU provisions an ONU on its PON port: type/serial binding,
// profile assignment, VLAN tagging and rate control.
func (d *Driver) RegisterONU(ctx context.Context, serial string, cfg olt.ONUConfig) error {
	commands := buildRegisterCommands(serial, cfg)
	if _, err := d.runner.Run(ctx, commands); err != nil {
		return fmt.Errorf("vsol register onu %s: %w", serial, err)
	}
	return nil
}

// GetSignal reads the ONU optical rx level by parsing the CLI optical-info
// output. Unparsable output is an absent reading, not an error.
func (d *Driver) GetSignal(ctx context.Context, iface, onuIndex string) (float64, bool, error) {
	onuID, err := strconv.Atoi(onuIndex)
	if err != nil {
		return 0, false, nil
	}

	commands := []string{
		"enable",
		fmt.Sprintf("show onu optical gpon %s %d", iface, onuID),
	}
	outputs, err := d.runner.Run(ctx, commands)
	if err != nil {
		return 0, false, fmt.Errorf("vsol optical read %s:%s: %w", iface, onuIndex, err)
	}

	return parseRxPower(strings.Join(outputs, "\n"))
}

// RebootONU power-cycles one ONU.
func (d *Driver) RebootONU(ctx context.Context, iface, onuIndex string) error {
	onuID, err := strconv.Atoi(onuIndex)
	if err != nil {
		return fmt.Errorf("vsol reboot: invalid onu index %q", onuIndex)
	}

	commands := []string{
		"enable",
		"config",
		fmt.Sprintf("interface gpon %s", iface),
		fmt.Sprintf("onu reboot %d", onuID),
		"exit",
		"exit",
	}
	if _, err := d.runner.Run(ctx, commands); err != nil {
		return fmt.Errorf("vsol reboot onu %s:%s: %w", iface, onuIndex, err)
	}
	return nil
}

func buildRegisterCommands(serial string, cfg olt.ONUConfig) []string {
	onuType := cfg.OnuType
	if onuType == "" {
		onuType = "router"
	}
	lineProfile := cfg.LineProfile
	if lineProfile == "" {
		lineProfile = "line-default"
	}
	serviceProfile := cfg.ServiceProfile
	if serviceProfile == "" {
		serviceProfile = "srv-default"
	}

	return []string{
		"enable",
		"config",
		fmt.Sprintf("interface gpon %s", cfg.Interface),
		fmt.Sprintf("onu %s type %s sn %s", cfg.OnuIndex, onuType, serial),
		fmt.Sprintf("onu profile %s line-profile %s service-profile %s", cfg.OnuIndex, lineProfile, serviceProfile),
		fmt.Sprintf("onu vlan %s user-vlan %d priority 0", cfg.OnuIndex, cfg.VLAN),
		"exit",
		"exit",
	}
}

// Optical output sample:
//
//	Rx power      : -18.52 dBm
//	Tx power      : 2.41  dBm
var rxPowerRe = regexp.MustCompile(`(?i)rx\s*power\s*[:\s]+(-?\d+\.?\d*)\s*dbm`)

func parseRxPower(output string) (float64, bool, error) {
	match := rxPowerRe.FindStringSubmatch(output)
	if match == nil {
		return 0, false, nil
	}
	dbm, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, false, nil
	}
	return dbm, true, nil
}
