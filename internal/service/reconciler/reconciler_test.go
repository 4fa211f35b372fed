package reconciler

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jejak-awan/ja-kdua-sub010/internal/domain/customer"
	"github.com/jejak-awan/ja-kdua-sub010/internal/domain/ippool"
	"github.com/jejak-awan/ja-kdua-sub010/internal/domain/plan"
	xerrors "github.com/jejak-awan/ja-kdua-sub010/internal/pkg/errors"
	"github.com/jejak-awan/ja-kdua-sub010/internal/service/radius"
)

type fakeAllocator struct {
	assigned    *ippool.Address
	assignErr   error
	assignCalls int
	released    []int64
	releaseErr  error
}

func (f *fakeAllocator) Assign(_ context.Context, customerID int64) (*ippool.Address, error) {
	f.assignCalls++
	if f.assignErr != nil {
		return nil, f.assignErr
	}
	return f.assigned, nil
}

func (f *fakeAllocator) Release(_ context.Context, customerID int64) error {
	f.released = append(f.released, customerID)
	return f.releaseErr
}

type syncCall struct {
	login, secret, group string
	attrs                map[string]string
}

type fakeAAA struct {
	syncs   []syncCall
	syncErr error
	removed []string
}

func (f *fakeAAA) SyncUser(_ context.Context, login, secret, group string, attrs map[string]string) error {
	if f.syncErr != nil {
		return f.syncErr
	}
	f.syncs = append(f.syncs, syncCall{login, secret, group, attrs})
	return nil
}

func (f *fakeAAA) RemoveUser(_ context.Context, login string) error {
	f.removed = append(f.removed, login)
	return nil
}

type fakePlans struct {
	plan *plan.Plan
	err  error
}

func (f *fakePlans) FindByID(_ context.Context, id int64) (*plan.Plan, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.plan, nil
}

type fakeCoA struct {
	calls  int
	result *radius.DisconnectResult
	err    error
}

func (f *fakeCoA) SendDisconnect(_ context.Context, c *customer.Customer) (*radius.DisconnectResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &radius.DisconnectResult{Acked: true}, nil
}

func activeCustomer() *customer.Customer {
	return &customer.Customer{
		ID:     10,
		Status: customer.StatusActive,
		Login:  "budi.pppoe",
		Secret: "rahasia",
		PlanID: sql.NullInt64{Int64: 2, Valid: true},
	}
}

func newTestService() (*Service, *fakeAllocator, *fakeAAA, *fakeCoA) {
	alloc := &fakeAllocator{assigned: &ippool.Address{Address: "10.20.0.5"}}
	aaa := &fakeAAA{}
	plans := &fakePlans{plan: &plan.Plan{ID: 2, RateLimit: "20M/20M"}}
	coa := &fakeCoA{}
	return NewService(alloc, aaa, plans, coa, zap.NewNop()), alloc, aaa, coa
}

func TestReconcile_Activation(t *testing.T) {
	svc, alloc, aaa, coa := newTestService()

	old := activeCustomer()
	old.Status = customer.StatusSuspended
	cur := activeCustomer()

	require.NoError(t, svc.Reconcile(context.Background(), old, cur))

	require.Equal(t, 1, alloc.assignCalls)
	require.Len(t, aaa.syncs, 1)
	call := aaa.syncs[0]
	assert.Equal(t, "budi.pppoe", call.login)
	assert.Equal(t, "rahasia", call.secret)
	assert.Empty(t, call.group)
	assert.Equal(t, "10.20.0.5", call.attrs[radius.AttrFramedIPAddress])
	assert.Equal(t, "20M/20M", call.attrs[radius.AttrRateLimit])

	assert.Equal(t, 1, coa.calls)
}

func TestReconcile_Suspension(t *testing.T) {
	svc, alloc, aaa, coa := newTestService()

	old := activeCustomer()
	cur := activeCustomer()
	cur.Status = customer.StatusSuspended

	require.NoError(t, svc.Reconcile(context.Background(), old, cur))

	// Address kept for the walled garden
	assert.Zero(t, alloc.assignCalls)
	assert.Empty(t, alloc.released)

	require.Len(t, aaa.syncs, 1)
	assert.Equal(t, radius.GroupIsolated, aaa.syncs[0].group)
	assert.Equal(t, 1, coa.calls)
}

func TestReconcile_Termination_ReleasesAddress(t *testing.T) {
	svc, alloc, aaa, coa := newTestService()

	old := activeCustomer()
	cur := activeCustomer()
	cur.Status = customer.StatusTerminated

	require.NoError(t, svc.Reconcile(context.Background(), old, cur))

	assert.Equal(t, []int64{10}, alloc.released)
	require.Len(t, aaa.syncs, 1)
	assert.NotContains(t, aaa.syncs[0].attrs, radius.AttrFramedIPAddress)
	assert.Equal(t, 1, coa.calls)
}

func TestReconcile_SkipsUnprovisioned(t *testing.T) {
	svc, alloc, aaa, coa := newTestService()

	cur := activeCustomer()
	cur.Login = ""
	cur.Secret = ""

	require.NoError(t, svc.Reconcile(context.Background(), nil, cur))

	assert.Zero(t, alloc.assignCalls)
	assert.Empty(t, aaa.syncs)
	assert.Zero(t, coa.calls)
}

func TestReconcile_CosmeticChangeNoDisconnect(t *testing.T) {
	svc, _, aaa, coa := newTestService()

	old := activeCustomer()
	old.FullName = "Budi"
	cur := activeCustomer()
	cur.FullName = "Budi Santoso"

	require.NoError(t, svc.Reconcile(context.Background(), old, cur))

	// AAA state still replayed, session left alone
	require.Len(t, aaa.syncs, 1)
	assert.Zero(t, coa.calls)
}

func TestReconcile_NilOldDisconnects(t *testing.T) {
	svc, _, _, coa := newTestService()

	require.NoError(t, svc.Reconcile(context.Background(), nil, activeCustomer()))
	assert.Equal(t, 1, coa.calls)
}

func TestReconcile_DisconnectFailureIsNotFatal(t *testing.T) {
	svc, _, aaa, coa := newTestService()
	coa.err = xerrors.ErrTransportUnavailable

	old := activeCustomer()
	cur := activeCustomer()
	cur.Status = customer.StatusSuspended

	require.NoError(t, svc.Reconcile(context.Background(), old, cur))
	require.Len(t, aaa.syncs, 1)
	assert.Equal(t, 1, coa.calls)
}

func TestReconcile_AssignFailureStillSyncs(t *testing.T) {
	svc, alloc, aaa, coa := newTestService()
	alloc.assignErr = xerrors.ErrNoCapacity

	err := svc.Reconcile(context.Background(), nil, activeCustomer())
	assert.ErrorIs(t, err, xerrors.ErrNoCapacity)

	// Credentials and rate limit land even when the pool is exhausted; only
	// the framed address waits for the next triggering event.
	require.Len(t, aaa.syncs, 1)
	call := aaa.syncs[0]
	assert.Equal(t, "budi.pppoe", call.login)
	assert.Equal(t, "20M/20M", call.attrs[radius.AttrRateLimit])
	assert.NotContains(t, call.attrs, radius.AttrFramedIPAddress)
	assert.Equal(t, 1, coa.calls)
}

func TestReconcile_ReleaseFailureStillSyncs(t *testing.T) {
	svc, alloc, aaa, _ := newTestService()
	alloc.releaseErr = xerrors.ErrConflict

	old := activeCustomer()
	cur := activeCustomer()
	cur.Status = customer.StatusTerminated

	err := svc.Reconcile(context.Background(), old, cur)
	assert.ErrorIs(t, err, xerrors.ErrConflict)
	require.Len(t, aaa.syncs, 1)
	assert.NotContains(t, aaa.syncs[0].attrs, radius.AttrFramedIPAddress)
}

func TestReconcile_PlanLookupFailureSurfaces(t *testing.T) {
	alloc := &fakeAllocator{assigned: &ippool.Address{Address: "10.20.0.5"}}
	aaa := &fakeAAA{}
	coa := &fakeCoA{}
	svc := NewService(alloc, aaa, &fakePlans{err: xerrors.ErrNotFound}, coa, zap.NewNop())

	err := svc.Reconcile(context.Background(), nil, activeCustomer())
	assert.ErrorIs(t, err, xerrors.ErrNotFound)
}

func TestHandleDelete(t *testing.T) {
	svc, alloc, aaa, coa := newTestService()

	c := activeCustomer()
	require.NoError(t, svc.HandleDelete(context.Background(), c))

	assert.Equal(t, []int64{10}, alloc.released)
	assert.Equal(t, []string{"budi.pppoe"}, aaa.removed)
	assert.Equal(t, 1, coa.calls)
}

func TestHandleDelete_NeverProvisioned(t *testing.T) {
	svc, alloc, aaa, coa := newTestService()

	c := activeCustomer()
	c.Login = ""
	c.Secret = ""
	require.NoError(t, svc.HandleDelete(context.Background(), c))

	assert.Equal(t, []int64{10}, alloc.released)
	assert.Empty(t, aaa.removed)
	assert.Zero(t, coa.calls)
}

func TestCriticalChanged(t *testing.T) {
	svc, _, _, _ := newTestService()

	base := activeCustomer()

	tests := []struct {
		name   string
		mutate func(c *customer.Customer)
		want   bool
	}{
		{name: "status", mutate: func(c *customer.Customer) { c.Status = customer.StatusIsolated }, want: true},
		{name: "plan", mutate: func(c *customer.Customer) { c.PlanID = sql.NullInt64{Int64: 9, Valid: true} }, want: true},
		{name: "secret", mutate: func(c *customer.Customer) { c.Secret = "changed" }, want: true},
		{name: "login", mutate: func(c *customer.Customer) { c.Login = "other" }, want: true},
		{name: "name only", mutate: func(c *customer.Customer) { c.FullName = "x" }, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cur := activeCustomer()
			tt.mutate(cur)
			assert.Equal(t, tt.want, svc.criticalChanged(base, cur))
		})
	}

	assert.True(t, svc.criticalChanged(nil, base))
}
