package service

import (
	"context"
	"fmt"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// In-memory stand-ins for the repository layer. They only implement the
// behavior the service tests exercise; everything else returns zero values.

type stubTxManager struct{}

func (stubTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

type stubSettingsRepo struct {
	values map[string]string
	getErr error
}

func newStubSettingsRepo() *stubSettingsRepo {
	return &stubSettingsRepo{values: make(map[string]string)}
}

func (r *stubSettingsRepo) Get(_ context.Context, key string) (string, error) {
	if r.getErr != nil {
		return "", r.getErr
	}
	v, ok := r.values[key]
	if !ok {
		return "", gorm.ErrRecordNotFound
	}
	return v, nil
}

func (r *stubSettingsRepo) Set(_ context.Context, key, value string) error {
	r.values[key] = value
	return nil
}

type stubAuditRepo struct {
	entries []model.AuditLog
}

func (r *stubAuditRepo) Log(_ context.Context, entry *model.AuditLog) error {
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *stubAuditRepo) List(_ context.Context, _, _ int) ([]model.AuditLog, int64, error) {
	return r.entries, int64(len(r.entries)), nil
}

type stubBillRepo struct {
	bills map[uuid.UUID]*model.Bill
	maxNo int64
}

func newStubBillRepo() *stubBillRepo {
	return &stubBillRepo{bills: make(map[uuid.UUID]*model.Bill)}
}

func (r *stubBillRepo) Create(_ context.Context, bill *model.Bill) error {
	if bill.ID == uuid.Nil {
		bill.ID = uuid.New()
	}
	r.bills[bill.ID] = bill
	if bill.BillNo > r.maxNo {
		r.maxNo = bill.BillNo
	}
	return nil
}

func (r *stubBillRepo) Update(_ context.Context, bill *model.Bill) error {
	if _, ok := r.bills[bill.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.bills[bill.ID] = bill
	return nil
}

func (r *stubBillRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Bill, error) {
	bill, ok := r.bills[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *bill
	return &copied, nil
}

func (r *stubBillRepo) FindByIDWithDetails(ctx context.Context, id uuid.UUID) (*model.Bill, error) {
	return r.FindByID(ctx, id)
}

func (r *stubBillRepo) List(_ context.Context, _ repository.BillListFilter) ([]model.Bill, int64, error) {
	out := make([]model.Bill, 0, len(r.bills))
	for _, b := range r.bills {
		out = append(out, *b)
	}
	return out, int64(len(out)), nil
}

func (r *stubBillRepo) MaxBillNo(_ context.Context) (int64, error) {
	return r.maxNo, nil
}

type stubCustomerRepo struct {
	order        []uuid.UUID
	customers    map[uuid.UUID]*model.Customer
	aggregates   map[uuid.UUID]repository.CustomerAggregates
	stats        repository.CustomerStats
	statsErr     error
	deletedBills int64
}

func newStubCustomerRepo() *stubCustomerRepo {
	return &stubCustomerRepo{
		customers:  make(map[uuid.UUID]*model.Customer),
		aggregates: make(map[uuid.UUID]repository.CustomerAggregates),
	}
}

func (r *stubCustomerRepo) add(c *model.Customer) *model.Customer {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.customers[c.ID] = c
	r.order = append(r.order, c.ID)
	return c
}

func (r *stubCustomerRepo) Create(_ context.Context, customer *model.Customer) error {
	r.add(customer)
	return nil
}

func (r *stubCustomerRepo) Update(_ context.Context, customer *model.Customer) error {
	if _, ok := r.customers[customer.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.customers[customer.ID] = customer
	return nil
}

func (r *stubCustomerRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.customers[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.customers, id)
	return nil
}

func (r *stubCustomerRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Customer, error) {
	c, ok := r.customers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *c
	return &copied, nil
}

func (r *stubCustomerRepo) FindByIDWithBills(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	return r.FindByID(ctx, id)
}

func (r *stubCustomerRepo) FindByPhone(_ context.Context, phone string) (*model.Customer, error) {
	for _, c := range r.customers {
		if c.Phone == phone {
			copied := *c
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubCustomerRepo) List(_ context.Context, _ string, _, _ int) ([]model.Customer, int64, error) {
	out := make([]model.Customer, 0, len(r.order))
	for _, id := range r.order {
		if c, ok := r.customers[id]; ok {
			out = append(out, *c)
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubCustomerRepo) AggregatesFor(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]repository.CustomerAggregates, error) {
	out := make(map[uuid.UUID]repository.CustomerAggregates, len(ids))
	for _, id := range ids {
		if agg, ok := r.aggregates[id]; ok {
			out[id] = agg
		}
	}
	return out, nil
}

func (r *stubCustomerRepo) Stats(_ context.Context) (repository.CustomerStats, error) {
	if r.statsErr != nil {
		return repository.CustomerStats{}, r.statsErr
	}
	return r.stats, nil
}

func (r *stubCustomerRepo) DeleteBillsByCustomerID(_ context.Context, _ uuid.UUID) (int64, error) {
	return r.deletedBills, nil
}

type recordingNotifier struct {
	events []string
}

func (n *recordingNotifier) BroadcastEvent(event string, _ any) {
	n.events = append(n.events, event)
}

var errDatabaseDown = fmt.Errorf("connection refused")
