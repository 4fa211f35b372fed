// Package diagnostic runs the five-stage live health pipeline against a
// customer's router, session and optical infrastructure.
package diagnostic

import (
	"context"
	"errors"
	"fmt"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/jejak-awan/ja-kdua-sub010/internal/domain/customer"
	"github.com/jejak-awan/ja-kdua-sub010/internal/domain/diagnostic"
	"github.com/jejak-awan/ja-kdua-sub010/internal/domain/nas"
	xerrors "github.com/jejak-awan/ja-kdua-sub010/internal/pkg/errors"
	"github.com/jejak-awan/ja-kdua-sub010/internal/routeros"
)

// RouterClient is the router-status collaborator one diagnostic run probes.
type RouterClient interface {
	IsReachable(ctx context.Context) bool
	FindActiveSession(ctx context.Context, login string) (*routeros.Session, error)
	InterfaceStatus(ctx context.Context, name string) (*routeros.Interface, error)
	PingExternal(ctx context.Context, target, sourceAddr string) (bool, error)
}

// SignalReader reads the customer's ONU optical level.
type SignalReader interface {
	GetSignal(ctx context.Context, c *customer.Customer) (float64, bool, error)
}

// NasResolver looks up the customer's router record and tracks when it was
// last seen answering.
type NasResolver interface {
	FindByID(ctx context.Context, id int64) (*nas.Nas, error)
	TouchLastSeen(ctx context.Context, id int64) error
}

// ClientFactory builds a router client for a NAS record. Swappable in tests.
type ClientFactory func(router *nas.Nas) RouterClient

// StageFunc observes each stage outcome as the pipeline progresses, feeding
// live report streaming. May be nil.
type StageFunc func(stage diagnostic.Stage)

// Service runs the diagnostic pipeline. Stages probe in a fixed order; a
// stage whose prerequisite is absent stays pending rather than failing.
type Service struct {
	nases       NasResolver
	signals     SignalReader
	clients     ClientFactory
	limiter     *Limiter
	cache       *ReportCache
	signalFloor float64
	probeTarget string
	logger      *zap.Logger
}

func NewService(nases NasResolver, signals SignalReader, clients ClientFactory, limiter *Limiter, cache *ReportCache, signalFloor float64, probeTarget string, logger *zap.Logger) *Service {
	return &Service{
		nases:       nases,
		signals:     signals,
		clients:     clients,
		limiter:     limiter,
		cache:       cache,
		signalFloor: signalFloor,
		probeTarget: probeTarget,
		logger:      logger,
	}
}

// Diagnose runs the pipeline for the customer, enforcing the per-customer
// rate limit and caching the finished report. onStage, when non-nil, receives
// each stage outcome as it lands.
func (s *Service) Diagnose(ctx context.Context, c *customer.Customer, onStage StageFunc) (*diagnostic.Report, error) {
	if s.limiter != nil {
		if err := s.limiter.Allow(ctx, c.ID); err != nil {
			return nil, err
		}
	}

	report := s.run(ctx, c, onStage)

	if s.cache != nil {
		if err := s.cache.Store(ctx, report); err != nil {
			s.logger.Warn("failed to cache diagnostic report",
				zap.Int64("customer_id", c.ID),
				zap.Error(err),
			)
		}
	}
	return report, nil
}

// LastReport returns the most recent cached report for the customer, if any.
func (s *Service) LastReport(ctx context.Context, customerID int64) (*diagnostic.Report, error) {
	if s.cache == nil {
		return nil, xerrors.ErrNotFound
	}
	return s.cache.Load(ctx, customerID)
}

func (s *Service) run(ctx context.Context, c *customer.Customer, onStage StageFunc) *diagnostic.Report {
	report := diagnostic.NewReport(ulid.Make().String(), c.ID)

	set := func(name string, status diagnostic.StageStatus, message string) {
		report.Set(name, status, message)
		if onStage != nil {
			onStage(*report.Get(name))
		}
	}

	client, session := s.probeLocalAndSession(ctx, c, set)
	s.probeInterface(ctx, c, client, report, set)
	s.probeSignal(ctx, c, set)
	s.probeInternet(ctx, client, session, report, set)

	return report
}

// probeLocalAndSession covers the first two stages. The session stage needs
// the router client the local stage built, so they share a pass.
func (s *Service) probeLocalAndSession(ctx context.Context, c *customer.Customer, set func(string, diagnostic.StageStatus, string)) (RouterClient, *routeros.Session) {
	if !c.RouterID.Valid {
		set(diagnostic.StageLocal, diagnostic.StageError, "no gateway router assigned")
		set(diagnostic.StageSession, diagnostic.StageError, "missing authentication credentials")
		return nil, nil
	}

	router, err := s.nases.FindByID(ctx, c.RouterID.Int64)
	if err != nil {
		s.logger.Warn("failed to resolve router", zap.Int64("customer_id", c.ID), zap.Error(err))
		set(diagnostic.StageLocal, diagnostic.StageError, "no gateway router assigned")
		set(diagnostic.StageSession, diagnostic.StageError, "missing authentication credentials")
		return nil, nil
	}

	client := s.clients(router)
	if !client.IsReachable(ctx) {
		set(diagnostic.StageLocal, diagnostic.StageError, "gateway unreachable")
	} else {
		set(diagnostic.StageLocal, diagnostic.StageSuccess, fmt.Sprintf("gateway %s responding", router.ShortName))
		if err := s.nases.TouchLastSeen(ctx, router.ID); err != nil {
			s.logger.Debug("failed to update router last_seen", zap.Error(err))
		}
	}

	if c.Login == "" {
		set(diagnostic.StageSession, diagnostic.StageError, "missing authentication credentials")
		return client, nil
	}

	session, err := client.FindActiveSession(ctx, c.Login)
	switch {
	case err == nil:
		set(diagnostic.StageSession, diagnostic.StageSuccess,
			fmt.Sprintf("session online at %s, up %s", session.Address, session.Uptime))
		return client, session
	case errors.Is(err, xerrors.ErrNotFound):
		set(diagnostic.StageSession, diagnostic.StageError, "no active session found")
	default:
		set(diagnostic.StageSession, diagnostic.StageError, "could not query session table")
	}
	return client, nil
}

// probeInterface checks link state of the access interface. Tunnel-type
// interfaces come and go with the session and often cannot be probed, in
// which case the stage mirrors the session outcome with a softened message.
func (s *Service) probeInterface(ctx context.Context, c *customer.Customer, client RouterClient, report *diagnostic.Report, set func(string, diagnostic.StageStatus, string)) {
	mirror := func() {
		if report.Get(diagnostic.StageSession).Status == diagnostic.StageSuccess {
			set(diagnostic.StageInterface, diagnostic.StageSuccess, "session link established over tunnel")
		} else {
			set(diagnostic.StageInterface, diagnostic.StageError, "waiting for session")
		}
	}

	if client == nil || c.Login == "" {
		mirror()
		return
	}

	iface, err := client.InterfaceStatus(ctx, "<pppoe-"+c.Login+">")
	if err != nil {
		mirror()
		return
	}

	if iface.Running && !iface.Disabled {
		set(diagnostic.StageInterface, diagnostic.StageSuccess, "access interface up")
	} else {
		set(diagnostic.StageInterface, diagnostic.StageError, "access interface down")
	}
}

func (s *Service) probeSignal(ctx context.Context, c *customer.Customer, set func(string, diagnostic.StageStatus, string)) {
	if !c.HasOLT() {
		set(diagnostic.StageSignal, diagnostic.StageSuccess, "no OLT infrastructure in path")
		return
	}

	dbm, ok, err := s.signals.GetSignal(ctx, c)
	if err != nil || !ok {
		if err != nil {
			s.logger.Warn("signal probe failed", zap.Int64("customer_id", c.ID), zap.Error(err))
		}
		set(diagnostic.StageSignal, diagnostic.StageError, "could not retrieve OLT telemetry")
		return
	}

	if dbm > s.signalFloor {
		set(diagnostic.StageSignal, diagnostic.StageSuccess, fmt.Sprintf("optical signal %.2f dBm", dbm))
	} else {
		set(diagnostic.StageSignal, diagnostic.StageError, fmt.Sprintf("critical optical signal %.2f dBm", dbm))
	}
}

// probeInternet runs only when the local stage succeeded; otherwise the stage
// stays pending and does not count toward failure.
func (s *Service) probeInternet(ctx context.Context, client RouterClient, session *routeros.Session, report *diagnostic.Report, set func(string, diagnostic.StageStatus, string)) {
	if client == nil || report.Get(diagnostic.StageLocal).Status != diagnostic.StageSuccess {
		return
	}

	source := ""
	if session != nil {
		source = session.Address
	}

	up, err := client.PingExternal(ctx, s.probeTarget, source)
	switch {
	case err != nil:
		set(diagnostic.StageInternet, diagnostic.StageError, "could not run upstream probe")
	case up:
		set(diagnostic.StageInternet, diagnostic.StageSuccess, fmt.Sprintf("upstream %s reachable", s.probeTarget))
	default:
		set(diagnostic.StageInternet, diagnostic.StageError, fmt.Sprintf("no response from upstream %s", s.probeTarget))
	}
}
