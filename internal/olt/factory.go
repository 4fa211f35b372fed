// internal/olt/factory.go
package olt

import (
	"fmt"
	"strings"
)

// Builder constructs a vendor driver around an established command transport.
type Builder func(runner CommandRunner, cfg Config) (Driver, error)

// registry is the vendor dispatch table. Adding a vendor means registering a
// builder; the dispatch core never changes.
var registry = map[string]Builder{}

// Register adds a vendor builder under its identifier. Later registrations
// for the same identifier replace earlier ones.
func Register(vendor string, b Builder) {
	registry[strings.ToLower(vendor)] = b
}

// SupportedVendors lists the registered vendor identifiers.
func SupportedVendors() []string {
	vendors := make([]string, 0, len(registry))
	for v := range registry {
		vendors = append(vendors, v)
	}
	return vendors
}

// New builds the driver variant for cfg.Vendor on top of the given transport.
func New(runner CommandRunner, cfg Config) (Driver, error) {
	b, ok := registry[strings.ToLower(cfg.Vendor)]
	if !ok {
		return nil, fmt.Errorf("unsupported OLT vendor: %s", cfg.Vendor)
	}
	return b(runner, cfg)
}
