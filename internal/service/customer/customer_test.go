package customer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jejak-awan/ja-kdua-sub010/internal/domain/customer"
	xerrors "github.com/jejak-awan/ja-kdua-sub010/internal/pkg/errors"
)

type fakeRepo struct {
	byID      map[int64]*customer.Customer
	byLogin   map[string]*customer.Customer
	statusSet customer.Status
	deleted   []int64
	createErr error
	updateErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		byID:    map[int64]*customer.Customer{},
		byLogin: map[string]*customer.Customer{},
	}
}

func (f *fakeRepo) Create(_ context.Context, c *customer.Customer) error {
	if f.createErr != nil {
		return f.createErr
	}
	c.ID = int64(len(f.byID) + 1)
	f.byID[c.ID] = c
	f.byLogin[c.Login] = c
	return nil
}

func (f *fakeRepo) FindByID(_ context.Context, id int64) (*customer.Customer, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	return c, nil
}

func (f *fakeRepo) FindByLogin(_ context.Context, login string) (*customer.Customer, error) {
	c, ok := f.byLogin[login]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	return c, nil
}

func (f *fakeRepo) UpdateStatus(_ context.Context, id int64, status customer.Status) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.statusSet = status
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, id int64) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type reconcileCall struct {
	old, cur *customer.Customer
}

type fakeReconciler struct {
	calls     []reconcileCall
	deletes   []int64
	err       error
	deleteErr error
}

func (f *fakeReconciler) Reconcile(_ context.Context, old, cur *customer.Customer) error {
	f.calls = append(f.calls, reconcileCall{old, cur})
	return f.err
}

func (f *fakeReconciler) HandleDelete(_ context.Context, c *customer.Customer) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletes = append(f.deletes, c.ID)
	return nil
}

func seedCustomer(repo *fakeRepo) *customer.Customer {
	c := &customer.Customer{
		ID:     1,
		Status: customer.StatusActive,
		Login:  "budi.pppoe",
		Secret: "rahasia",
	}
	repo.byID[c.ID] = c
	repo.byLogin[c.Login] = c
	return c
}

func TestCreateCustomer(t *testing.T) {
	repo := newFakeRepo()
	rec := &fakeReconciler{}
	svc := NewCustomerService(repo, rec, zap.NewNop())

	c, err := svc.CreateCustomer(context.Background(), &customer.CreateCustomerRequest{
		FullName: "Budi Santoso",
		Login:    "budi.pppoe",
		Secret:   "rahasia",
	})
	require.NoError(t, err)
	assert.Equal(t, customer.StatusActive, c.Status)

	require.Len(t, rec.calls, 1)
	assert.Nil(t, rec.calls[0].old)
	assert.Equal(t, c, rec.calls[0].cur)
}

func TestCreateCustomer_DuplicateLogin(t *testing.T) {
	repo := newFakeRepo()
	seedCustomer(repo)
	svc := NewCustomerService(repo, &fakeReconciler{}, zap.NewNop())

	_, err := svc.CreateCustomer(context.Background(), &customer.CreateCustomerRequest{
		FullName: "Other",
		Login:    "budi.pppoe",
		Secret:   "x",
	})
	assert.ErrorIs(t, err, xerrors.ErrConflict)
}

func TestCreateCustomer_ReconcileFailureStillCreates(t *testing.T) {
	repo := newFakeRepo()
	rec := &fakeReconciler{err: xerrors.ErrNoCapacity}
	svc := NewCustomerService(repo, rec, zap.NewNop())

	c, err := svc.CreateCustomer(context.Background(), &customer.CreateCustomerRequest{
		FullName: "Budi",
		Login:    "budi.pppoe",
		Secret:   "rahasia",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, xerrors.ErrNoCapacity)
	require.NotNil(t, c)
	assert.NotZero(t, c.ID)
}

func TestUpdateStatus(t *testing.T) {
	repo := newFakeRepo()
	old := seedCustomer(repo)
	rec := &fakeReconciler{}
	svc := NewCustomerService(repo, rec, zap.NewNop())

	cur, err := svc.UpdateStatus(context.Background(), 1, customer.StatusSuspended)
	require.NoError(t, err)
	assert.Equal(t, customer.StatusSuspended, cur.Status)
	assert.Equal(t, customer.StatusSuspended, repo.statusSet)

	require.Len(t, rec.calls, 1)
	assert.Equal(t, old.Status, rec.calls[0].old.Status)
	assert.Equal(t, customer.StatusSuspended, rec.calls[0].cur.Status)
}

func TestUpdateStatus_InvalidStatus(t *testing.T) {
	svc := NewCustomerService(newFakeRepo(), &fakeReconciler{}, zap.NewNop())

	_, err := svc.UpdateStatus(context.Background(), 1, "bogus")
	assert.ErrorIs(t, err, xerrors.ErrValidation)
}

func TestUpdateStatus_NotFound(t *testing.T) {
	svc := NewCustomerService(newFakeRepo(), &fakeReconciler{}, zap.NewNop())

	_, err := svc.UpdateStatus(context.Background(), 99, customer.StatusActive)
	assert.ErrorIs(t, err, xerrors.ErrNotFound)
}

func TestUpdateStatus_ReconcileFailureKeepsStatus(t *testing.T) {
	repo := newFakeRepo()
	seedCustomer(repo)
	svc := NewCustomerService(repo, &fakeReconciler{err: xerrors.ErrTransportUnavailable}, zap.NewNop())

	cur, err := svc.UpdateStatus(context.Background(), 1, customer.StatusSuspended)
	require.Error(t, err)
	require.NotNil(t, cur)
	assert.Equal(t, customer.StatusSuspended, repo.statusSet)
}

func TestDeleteCustomer(t *testing.T) {
	repo := newFakeRepo()
	seedCustomer(repo)
	rec := &fakeReconciler{}
	svc := NewCustomerService(repo, rec, zap.NewNop())

	require.NoError(t, svc.DeleteCustomer(context.Background(), 1))
	assert.Equal(t, []int64{1}, rec.deletes)
	assert.Equal(t, []int64{1}, repo.deleted)
}

func TestDeleteCustomer_TeardownFailureKeepsRecord(t *testing.T) {
	repo := newFakeRepo()
	seedCustomer(repo)
	svc := NewCustomerService(repo, &fakeReconciler{deleteErr: xerrors.ErrTransportUnavailable}, zap.NewNop())

	err := svc.DeleteCustomer(context.Background(), 1)
	require.ErrorIs(t, err, xerrors.ErrTransportUnavailable)
	assert.Empty(t, repo.deleted)
}
