package diagnostic

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jejak-awan/ja-kdua-sub010/internal/domain/customer"
	"github.com/jejak-awan/ja-kdua-sub010/internal/domain/diagnostic"
	"github.com/jejak-awan/ja-kdua-sub010/internal/domain/nas"
	xerrors "github.com/jejak-awan/ja-kdua-sub010/internal/pkg/errors"
	"github.com/jejak-awan/ja-kdua-sub010/internal/routeros"
)

type fakeRouter struct {
	reachable  bool
	session    *routeros.Session
	sessionErr error
	iface      *routeros.Interface
	ifaceErr   error
	pingUp     bool
	pingErr    error
	pingCalled bool
}

func (f *fakeRouter) IsReachable(_ context.Context) bool { return f.reachable }

func (f *fakeRouter) FindActiveSession(_ context.Context, login string) (*routeros.Session, error) {
	if f.sessionErr != nil {
		return nil, f.sessionErr
	}
	return f.session, nil
}

func (f *fakeRouter) InterfaceStatus(_ context.Context, name string) (*routeros.Interface, error) {
	if f.ifaceErr != nil {
		return nil, f.ifaceErr
	}
	return f.iface, nil
}

func (f *fakeRouter) PingExternal(_ context.Context, target, sourceAddr string) (bool, error) {
	f.pingCalled = true
	return f.pingUp, f.pingErr
}

type fakeNasRepo struct {
	router  *nas.Nas
	err     error
	touched []int64
}

func (f *fakeNasRepo) FindByID(_ context.Context, id int64) (*nas.Nas, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.router, nil
}

func (f *fakeNasRepo) TouchLastSeen(_ context.Context, id int64) error {
	f.touched = append(f.touched, id)
	return nil
}

type fakeSignals struct {
	dbm float64
	ok  bool
	err error
}

func (f *fakeSignals) GetSignal(_ context.Context, c *customer.Customer) (float64, bool, error) {
	return f.dbm, f.ok, f.err
}

func healthyRouter() *fakeRouter {
	return &fakeRouter{
		reachable: true,
		session:   &routeros.Session{Name: "budi.pppoe", Address: "10.20.0.5", Uptime: "2h3m"},
		ifaceErr:  xerrors.ErrNotFound,
		pingUp:    true,
	}
}

func provisionedCustomer() *customer.Customer {
	return &customer.Customer{
		ID:       10,
		Login:    "budi.pppoe",
		Secret:   "rahasia",
		RouterID: sql.NullInt64{Int64: 3, Valid: true},
	}
}

func newTestService(router *fakeRouter, signals *fakeSignals) *Service {
	nases := &fakeNasRepo{router: &nas.Nas{ID: 3, ShortName: "bras-01", IPAddress: "172.16.0.1"}}
	factory := func(r *nas.Nas) RouterClient { return router }
	return NewService(nases, signals, factory, nil, nil, -28.0, "1.1.1.1", zap.NewNop())
}

func stage(t *testing.T, report *diagnostic.Report, name string) diagnostic.Stage {
	t.Helper()
	s := report.Get(name)
	require.NotNil(t, s)
	return *s
}

func TestDiagnose_HealthyEthernetCustomer(t *testing.T) {
	router := healthyRouter()
	svc := newTestService(router, &fakeSignals{})

	report, err := svc.Diagnose(context.Background(), provisionedCustomer(), nil)
	require.NoError(t, err)

	assert.Equal(t, diagnostic.StageSuccess, stage(t, report, diagnostic.StageLocal).Status)
	assert.Equal(t, diagnostic.StageSuccess, stage(t, report, diagnostic.StageSession).Status)

	// No probeable interface, mirrors the session outcome
	iface := stage(t, report, diagnostic.StageInterface)
	assert.Equal(t, diagnostic.StageSuccess, iface.Status)
	assert.Equal(t, "session link established over tunnel", iface.Message)

	signal := stage(t, report, diagnostic.StageSignal)
	assert.Equal(t, diagnostic.StageSuccess, signal.Status)
	assert.Equal(t, "no OLT infrastructure in path", signal.Message)

	assert.Equal(t, diagnostic.StageSuccess, stage(t, report, diagnostic.StageInternet).Status)
	assert.Equal(t, diagnostic.OverallHealthy, report.Overall)
	assert.NotEmpty(t, report.ID)
}

func TestDiagnose_NoRouterAssigned(t *testing.T) {
	svc := newTestService(healthyRouter(), &fakeSignals{})

	c := provisionedCustomer()
	c.RouterID = sql.NullInt64{}

	report, err := svc.Diagnose(context.Background(), c, nil)
	require.NoError(t, err)

	local := stage(t, report, diagnostic.StageLocal)
	assert.Equal(t, diagnostic.StageError, local.Status)
	assert.Equal(t, "no gateway router assigned", local.Message)

	session := stage(t, report, diagnostic.StageSession)
	assert.Equal(t, diagnostic.StageError, session.Status)
	assert.Equal(t, "missing authentication credentials", session.Message)

	// internet never probed, pending does not count as failure by itself
	assert.Equal(t, diagnostic.StagePending, stage(t, report, diagnostic.StageInternet).Status)
	assert.Equal(t, diagnostic.OverallIssue, report.Overall)
}

func TestDiagnose_GatewayUnreachable(t *testing.T) {
	router := healthyRouter()
	router.reachable = false
	router.sessionErr = xerrors.ErrTransportUnavailable
	svc := newTestService(router, &fakeSignals{})

	report, err := svc.Diagnose(context.Background(), provisionedCustomer(), nil)
	require.NoError(t, err)

	local := stage(t, report, diagnostic.StageLocal)
	assert.Equal(t, diagnostic.StageError, local.Status)
	assert.Equal(t, "gateway unreachable", local.Message)

	assert.False(t, router.pingCalled)
	assert.Equal(t, diagnostic.StagePending, stage(t, report, diagnostic.StageInternet).Status)
}

func TestDiagnose_NoSession_InterfaceMirrors(t *testing.T) {
	router := healthyRouter()
	router.session = nil
	router.sessionErr = xerrors.ErrNotFound
	svc := newTestService(router, &fakeSignals{})

	report, err := svc.Diagnose(context.Background(), provisionedCustomer(), nil)
	require.NoError(t, err)

	session := stage(t, report, diagnostic.StageSession)
	assert.Equal(t, diagnostic.StageError, session.Status)
	assert.Equal(t, "no active session found", session.Message)

	iface := stage(t, report, diagnostic.StageInterface)
	assert.Equal(t, diagnostic.StageError, iface.Status)
	assert.Equal(t, "waiting for session", iface.Message)

	assert.Equal(t, diagnostic.OverallIssue, report.Overall)
}

func TestDiagnose_MissingCredentials(t *testing.T) {
	svc := newTestService(healthyRouter(), &fakeSignals{})

	c := provisionedCustomer()
	c.Login = ""

	report, err := svc.Diagnose(context.Background(), c, nil)
	require.NoError(t, err)

	session := stage(t, report, diagnostic.StageSession)
	assert.Equal(t, diagnostic.StageError, session.Status)
	assert.Equal(t, "missing authentication credentials", session.Message)
}

func TestDiagnose_ProbeableInterface(t *testing.T) {
	router := healthyRouter()
	router.ifaceErr = nil
	router.iface = &routeros.Interface{Name: "<pppoe-budi.pppoe>", Running: true}
	svc := newTestService(router, &fakeSignals{})

	report, err := svc.Diagnose(context.Background(), provisionedCustomer(), nil)
	require.NoError(t, err)

	iface := stage(t, report, diagnostic.StageInterface)
	assert.Equal(t, diagnostic.StageSuccess, iface.Status)
	assert.Equal(t, "access interface up", iface.Message)
}

func fiberCustomer() *customer.Customer {
	c := provisionedCustomer()
	c.OltID = sql.NullInt64{Int64: 1, Valid: true}
	c.OnuInterface = sql.NullString{String: "1/2/3", Valid: true}
	c.OnuIndex = sql.NullString{String: "4", Valid: true}
	return c
}

func TestDiagnose_SignalStages(t *testing.T) {
	tests := []struct {
		name        string
		signals     *fakeSignals
		wantStatus  diagnostic.StageStatus
		wantMessage string
	}{
		{
			name:        "good signal",
			signals:     &fakeSignals{dbm: -19.42, ok: true},
			wantStatus:  diagnostic.StageSuccess,
			wantMessage: "optical signal -19.42 dBm",
		},
		{
			name:        "critical signal",
			signals:     &fakeSignals{dbm: -29.10, ok: true},
			wantStatus:  diagnostic.StageError,
			wantMessage: "critical optical signal -29.10 dBm",
		},
		{
			name:        "absent telemetry",
			signals:     &fakeSignals{ok: false},
			wantStatus:  diagnostic.StageError,
			wantMessage: "could not retrieve OLT telemetry",
		},
		{
			name:        "transport failure",
			signals:     &fakeSignals{err: xerrors.ErrTransportUnavailable},
			wantStatus:  diagnostic.StageError,
			wantMessage: "could not retrieve OLT telemetry",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(healthyRouter(), tt.signals)

			report, err := svc.Diagnose(context.Background(), fiberCustomer(), nil)
			require.NoError(t, err)

			signal := stage(t, report, diagnostic.StageSignal)
			assert.Equal(t, tt.wantStatus, signal.Status)
			assert.Equal(t, tt.wantMessage, signal.Message)
		})
	}
}

func TestDiagnose_SignalForcedSuccessWithoutOLT(t *testing.T) {
	// Everything else failing must not drag signal down for non-fiber
	router := &fakeRouter{reachable: false, sessionErr: xerrors.ErrTransportUnavailable, ifaceErr: xerrors.ErrNotFound}
	svc := newTestService(router, &fakeSignals{err: xerrors.ErrTransportUnavailable})

	report, err := svc.Diagnose(context.Background(), provisionedCustomer(), nil)
	require.NoError(t, err)

	signal := stage(t, report, diagnostic.StageSignal)
	assert.Equal(t, diagnostic.StageSuccess, signal.Status)
	assert.Equal(t, "no OLT infrastructure in path", signal.Message)
}

func TestDiagnose_InternetDown(t *testing.T) {
	router := healthyRouter()
	router.pingUp = false
	svc := newTestService(router, &fakeSignals{})

	report, err := svc.Diagnose(context.Background(), provisionedCustomer(), nil)
	require.NoError(t, err)

	internet := stage(t, report, diagnostic.StageInternet)
	assert.Equal(t, diagnostic.StageError, internet.Status)
	assert.Contains(t, internet.Message, "no response from upstream")
}

func TestDiagnose_StageCallbackOrder(t *testing.T) {
	svc := newTestService(healthyRouter(), &fakeSignals{})

	var order []string
	_, err := svc.Diagnose(context.Background(), provisionedCustomer(), func(s diagnostic.Stage) {
		order = append(order, s.Name)
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		diagnostic.StageLocal,
		diagnostic.StageSession,
		diagnostic.StageInterface,
		diagnostic.StageSignal,
		diagnostic.StageInternet,
	}, order)
}
