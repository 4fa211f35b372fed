// internal/service/olt/service.go
package olt

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jejak-awan/ja-kdua-sub010/internal/domain/customer"
	oltdomain "github.com/jejak-awan/ja-kdua-sub010/internal/domain/olt"
	"github.com/jejak-awan/ja-kdua-sub010/internal/olt"
	"github.com/jejak-awan/ja-kdua-sub010/internal/olt/transport"
	"github.com/jejak-awan/ja-kdua-sub010/internal/olt/vendors/vsol"
	"github.com/jejak-awan/ja-kdua-sub010/internal/olt/vendors/zte"
	xerrors "github.com/jejak-awan/ja-kdua-sub010/internal/pkg/errors"
)

func init() {
	olt.Register(zte.Vendor, zte.NewDriver)
	olt.Register(vsol.Vendor, vsol.NewDriver)
}

// OltStore resolves OLT device records.
type OltStore interface {
	FindByID(ctx context.Context, id int64) (*oltdomain.Olt, error)
}

// CustomerStore persists ONU placement after successful registration.
type CustomerStore interface {
	UpdateONU(ctx context.Context, id int64, serial, iface, onuIndex string) error
}

// DriverFactory builds a vendor driver for a device record. Swappable in
// tests; the default builds an SSH transport and dispatches on vendor.
type DriverFactory func(device *oltdomain.Olt, timeout time.Duration) (olt.Driver, error)

// Service resolves a customer's OLT record, builds the matching vendor
// driver and runs device operations through it.
type Service struct {
	olts      OltStore
	customers CustomerStore
	factory   DriverFactory
	timeout   time.Duration
	logger    *zap.Logger
}

func NewService(olts OltStore, customers CustomerStore, timeout time.Duration, logger *zap.Logger) *Service {
	return &Service{
		olts:      olts,
		customers: customers,
		factory:   defaultFactory,
		timeout:   timeout,
		logger:    logger,
	}
}

func defaultFactory(device *oltdomain.Olt, timeout time.Duration) (olt.Driver, error) {
	runner := transport.NewSSHRunner(device.Host, device.SSHPort, device.SSHUsername, device.SSHPassword, timeout)
	return olt.New(runner, olt.Config{
		Vendor:    device.Vendor,
		Model:     device.Model,
		Host:      device.Host,
		SSHPort:   device.SSHPort,
		Username:  device.SSHUsername,
		Password:  device.SSHPassword,
		SNMPPort:  uint16(device.SNMPPort),
		Community: device.SNMPCommunity,
		Timeout:   timeout,
	})
}

func (s *Service) driverFor(ctx context.Context, c *customer.Customer) (olt.Driver, *oltdomain.Olt, error) {
	if !c.OltID.Valid {
		return nil, nil, fmt.Errorf("%w: customer %d has no OLT assigned", xerrors.ErrValidation, c.ID)
	}

	device, err := s.olts.FindByID(ctx, c.OltID.Int64)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve OLT for customer %d: %w", c.ID, err)
	}
	if !device.IsActive {
		return nil, nil, fmt.Errorf("%w: OLT %s is disabled", xerrors.ErrTransportUnavailable, device.Name)
	}

	driver, err := s.factory(device, s.timeout)
	if err != nil {
		return nil, nil, err
	}
	return driver, device, nil
}

// RegisterONU provisions the ONU on the customer's OLT and records the
// placement on the customer. Registration on the device is retry-safe.
func (s *Service) RegisterONU(ctx context.Context, c *customer.Customer, req customer.RegisterONURequest) error {
	driver, device, err := s.driverFor(ctx, c)
	if err != nil {
		return err
	}

	cfg := olt.ONUConfig{
		Interface:      req.Interface,
		OnuIndex:       req.OnuIndex,
		OnuType:        req.OnuType,
		VLAN:           req.VLAN,
		TcontProfile:   req.TcontProfile,
		LineProfile:    req.LineProfile,
		ServiceProfile: req.ServiceProfile,
		Description:    req.Description,
	}
	if err := driver.RegisterONU(ctx, req.Serial, cfg); err != nil {
		return fmt.Errorf("failed to register ONU %s on %s: %w", req.Serial, device.Name, err)
	}

	if err := s.customers.UpdateONU(ctx, c.ID, req.Serial, req.Interface, req.OnuIndex); err != nil {
		return fmt.Errorf("ONU registered on %s but placement not saved: %w", device.Name, err)
	}

	s.logger.Info("registered ONU",
		zap.Int64("customer_id", c.ID),
		zap.String("olt", device.Name),
		zap.String("serial", req.Serial),
		zap.String("interface", req.Interface),
	)
	return nil
}

// GetSignal reads the customer's ONU receive level. ok=false with nil error
// means the device answered but holds no reading (ONU offline or never
// polled).
func (s *Service) GetSignal(ctx context.Context, c *customer.Customer) (float64, bool, error) {
	if !c.HasOLT() {
		return 0, false, fmt.Errorf("%w: customer %d has no ONU placement", xerrors.ErrValidation, c.ID)
	}

	driver, _, err := s.driverFor(ctx, c)
	if err != nil {
		return 0, false, err
	}

	return driver.GetSignal(ctx, c.OnuInterface.String, c.OnuIndex.String)
}

// RebootONU power-cycles the customer's ONU.
func (s *Service) RebootONU(ctx context.Context, c *customer.Customer) error {
	if !c.HasOLT() {
		return fmt.Errorf("%w: customer %d has no ONU placement", xerrors.ErrValidation, c.ID)
	}

	driver, device, err := s.driverFor(ctx, c)
	if err != nil {
		return err
	}

	if err := driver.RebootONU(ctx, c.OnuInterface.String, c.OnuIndex.String); err != nil {
		return fmt.Errorf("failed to reboot ONU for customer %d on %s: %w", c.ID, device.Name, err)
	}

	s.logger.Info("rebooted ONU",
		zap.Int64("customer_id", c.ID),
		zap.String("olt", device.Name),
	)
	return nil
}
