package vsol

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jejak-awan/ja-kdua-sub010/internal/olt"
)

type fakeRunner struct {
	commands []string
	outputs  []string
	err      error
}

func (f *fakeRunner) Run(ctx context.Context, commands []string) ([]string, error) {
	f.commands = commands
	if f.err != nil {
		return nil, f.err
	}
	if f.outputs != nil {
		return f.outputs, nil
	}
	return make([]string, len(commands)), nil
}

func TestBuildRegisterCommands(t *testing.T) {
	commands := buildRegisterCommands("VSOL12345678", olt.ONUConfig{
		Interface:      "0/3",
		OnuIndex:       "5",
		VLAN:           300,
		LineProfile:    "ftth-line",
		ServiceProfile: "ftth-srv",
	})
	script := strings.Join(commands, "\n")

	assert.Contains(t, script, "interface gpon 0/3")
	assert.Contains(t, script, "onu 5 type router sn VSOL12345678")
	assert.Contains(t, script, "onu profile 5 line-profile ftth-line service-profile ftth-srv")
	assert.Contains(t, script, "onu vlan 5 user-vlan 300 priority 0")

	// Binding precedes profile and VLAN assignment
	bind := strings.Index(script, "onu 5 type")
	profile := strings.Index(script, "onu profile 5")
	vlan := strings.Index(script, "onu vlan 5")
	require.Greater(t, profile, bind)
	require.Greater(t, vlan, profile)
}

func TestParseRxPower(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   float64
		wantOK bool
	}{
		{
			name: "standard optical info",
			output: `ONU optical info
  Rx power      : -18.52 dBm
  Tx power      : 2.41 dBm`,
			want:   -18.52,
			wantOK: true,
		},
		{
			name:   "compact form",
			output: "rx power: -27.8dBm",
			want:   -27.8,
			wantOK: true,
		},
		{
			name:   "onu offline",
			output: "ONU is offline, no optical info",
			wantOK: false,
		},
		{
			name:   "empty output",
			output: "",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := parseRxPower(tt.output)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.InDelta(t, tt.want, got, 0.001)
			}
		})
	}
}

func TestGetSignal(t *testing.T) {
	runner := &fakeRunner{outputs: []string{"", "Rx power : -21.3 dBm"}}
	d, err := NewDriver(runner, olt.Config{Vendor: Vendor})
	require.NoError(t, err)

	dbm, ok, err := d.GetSignal(context.Background(), "0/3", "5")
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, -21.3, dbm, 0.001)
	assert.Contains(t, strings.Join(runner.commands, "\n"), "show onu optical gpon 0/3 5")
}

func TestGetSignal_TransportError(t *testing.T) {
	runner := &fakeRunner{err: assert.AnError}
	d, err := NewDriver(runner, olt.Config{Vendor: Vendor})
	require.NoError(t, err)

	_, ok, err := d.GetSignal(context.Background(), "0/3", "5")
	require.Error(t, err)
	assert.False(t, ok)
}

func TestRebootONU(t *testing.T) {
	runner := &fakeRunner{}
	d, err := NewDriver(runner, olt.Config{Vendor: Vendor})
	require.NoError(t, err)

	require.NoError(t, d.RebootONU(context.Background(), "0/3", "5"))
	assert.Contains(t, strings.Join(runner.commands, "\n"), "onu reboot 5")

	require.Error(t, d.RebootONU(context.Background(), "0/3", "abc"))
}
