// internal/olt/vendors/zte/snmp.go
package zte

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gosnmp/gosnmp"

	"github.com/jejak-awan/ja-kdua-sub010/internal/olt"
	xerrors "github.com/jejak-awan/ja-kdua-sub010/internal/pkg/errors"
)

// ONU optical rx power tables. The OID family differs between the C3xx
// (C300/C320) and C6xx (C620/C650) platforms.
const (
	oidC3xxOnuRxPower = ".1.3.6.1.4.1.3902.1012.3.50.12.1.1.10"
	oidC6xxOnuRxPower = ".1.3.6.1.4.1.3902.1082.500.20.2.2.2.1.10"
)

// rawNoSignal is what the agent reports when no reading is available.
const rawNoSignal = 65535

// Telemetry reads per-ONU optical levels over SNMP v2c.
type Telemetry struct {
	model string
	snmp  *gosnmp.GoSNMP
}

func NewTelemetry(cfg olt.Config) *Telemetry {
	port := cfg.SNMPPort
	if port == 0 {
		port = 161
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Telemetry{
		model: cfg.Model,
		snmp: &gosnmp.GoSNMP{
			Target:    cfg.Host,
			Port:      port,
			Community: cfg.Community,
			Version:   gosnmp.Version2c,
			Timeout:   timeout,
			Retries:   2,
		},
	}
}

// OnuRxPower reads the optical receive level of one ONU. Absent or
// unparsable telemetry is reported as ok=false with a nil error; only
// transport failures return an error.
func (t *Telemetry) OnuRxPower(ctx context.Context, iface, onuIndex string) (float64, bool, error) {
	ifIdx, err := ponIfIndex(iface)
	if err != nil {
		return 0, false, nil
	}
	onuID, err := strconv.Atoi(onuIndex)
	if err != nil {
		return 0, false, nil
	}

	if err := t.snmp.Connect(); err != nil {
		return 0, false, fmt.Errorf("%w: snmp connect %s: %v", xerrors.ErrTransportUnavailable, t.snmp.Target, err)
	}
	defer t.snmp.Conn.Close()

	// Rx power index is ifIndex.onuId.serviceIndex; service 1 carries the
	// optical reading.
	oid := fmt.Sprintf("%s.%d.%d.1", t.rxPowerOID(), ifIdx, onuID)
	result, err := t.snmp.Get([]string{oid})
	if err != nil {
		return 0, false, fmt.Errorf("%w: snmp get %s: %v", xerrors.ErrTransportUnavailable, oid, err)
	}
	if len(result.Variables) == 0 {
		return 0, false, nil
	}

	pdu := result.Variables[0]
	switch pdu.Type {
	case gosnmp.NoSuchObject, gosnmp.NoSuchInstance, gosnmp.Null:
		return 0, false, nil
	}

	raw, ok := pduToInt(pdu)
	if !ok || raw == rawNoSignal {
		return 0, false, nil
	}

	return decodeRxPower(raw), true, nil
}

func (t *Telemetry) rxPowerOID() string {
	if isC3xx(t.model) {
		return oidC3xxOnuRxPower
	}
	return oidC6xxOnuRxPower
}

// isC3xx returns true if the OLT is C3xx family (C300, C320, etc.)
func isC3xx(model string) bool {
	m := strings.ToUpper(model)
	return strings.Contains(m, "C300") || strings.Contains(m, "C320")
}

// ponIfIndex packs a "shelf/slot/port" PON port name into the ZTE ifIndex
// encoding used by both platforms.
func ponIfIndex(iface string) (int, error) {
	parts := strings.Split(iface, "/")
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid pon port %q", iface)
	}
	shelf, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid pon port %q", iface)
	}
	slot, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid pon port %q", iface)
	}
	port, err := strconv.Atoi(parts[2])
	if err != nil {
		return 0, fmt.Errorf("invalid pon port %q", iface)
	}
	return shelf<<16 | slot<<8 | port, nil
}

// decodeRxPower converts the raw 16-bit table value to dBm. Values above the
// signed range are two's complement.
func decodeRxPower(raw int) float64 {
	if raw > 32767 {
		raw -= 65536
	}
	return float64(raw)*0.002 - 30
}

func pduToInt(pdu gosnmp.SnmpPDU) (int, bool) {
	switch v := pdu.Value.(type) {
	case int:
		return v, true
	case uint:
		return int(v), true
	case int64:
		return int(v), true
	case uint64:
		return int(v), true
	case uint32:
		return int(v), true
	case int32:
		return int(v), true
	default:
		return 0, false
	}
}
