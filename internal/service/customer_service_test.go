package service

import (
	"context"
	"testing"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type customerServiceFixture struct {
	svc       CustomerService
	repo      *stubCustomerRepo
	auditRepo *stubAuditRepo
}

func newCustomerServiceFixture() *customerServiceFixture {
	f := &customerServiceFixture{
		repo:      newStubCustomerRepo(),
		auditRepo: &stubAuditRepo{},
	}
	f.svc = NewCustomerService(f.repo, f.auditRepo, stubTxManager{})
	return f
}

func (f *customerServiceFixture) seed(name, phone string, spent, outstanding string, orders int64) *model.Customer {
	c := f.repo.add(&model.Customer{Name: name, Phone: phone})
	f.repo.aggregates[c.ID] = repository.CustomerAggregates{
		CustomerID:         c.ID,
		TotalOrders:        orders,
		TotalSpent:         decimal.RequireFromString(spent),
		OutstandingBalance: decimal.RequireFromString(outstanding),
	}
	return c
}

func TestCreateCustomer(t *testing.T) {
	f := newCustomerServiceFixture()

	resp, err := f.svc.CreateCustomer(context.Background(), CreateCustomerRequest{
		Name:  "Asha Rao",
		Phone: "9900112233",
		Email: "asha@example.com",
	}, "")
	require.NoError(t, err)

	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "Asha Rao", resp.Name)
	assert.Equal(t, "0.00", resp.TotalSpent)
	if assert.Len(t, f.auditRepo.entries, 1) {
		assert.Equal(t, model.ActionCreateCustomer, f.auditRepo.entries[0].Action)
	}
}

func TestCreateCustomer_DuplicatePhoneRejected(t *testing.T) {
	f := newCustomerServiceFixture()
	f.seed("Asha Rao", "9900112233", "0", "0", 0)

	_, err := f.svc.CreateCustomer(context.Background(), CreateCustomerRequest{
		Name:  "Other Asha",
		Phone: "9900112233",
	}, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestCreateCustomer_InvalidEmailRejected(t *testing.T) {
	f := newCustomerServiceFixture()

	_, err := f.svc.CreateCustomer(context.Background(), CreateCustomerRequest{
		Name:  "Asha Rao",
		Phone: "9900112233",
		Email: "not-an-email",
	}, "")
	require.Error(t, err)
	assert.Empty(t, f.repo.customers)
}

func TestUpdateCustomer_PartialUpdate(t *testing.T) {
	f := newCustomerServiceFixture()
	c := f.seed("Asha Rao", "9900112233", "1500", "200", 3)

	notes := "prefers pickup on weekends"
	resp, err := f.svc.UpdateCustomer(context.Background(), c.ID.String(), UpdateCustomerRequest{Notes: &notes}, "")
	require.NoError(t, err)

	// untouched fields survive a partial update
	assert.Equal(t, "Asha Rao", resp.Name)
	assert.Equal(t, "9900112233", resp.Phone)
	assert.Equal(t, notes, resp.Notes)
}

func TestUpdateCustomer_EmptyNameRejected(t *testing.T) {
	f := newCustomerServiceFixture()
	c := f.seed("Asha Rao", "9900112233", "0", "0", 0)

	empty := ""
	_, err := f.svc.UpdateCustomer(context.Background(), c.ID.String(), UpdateCustomerRequest{Name: &empty}, "")
	require.Error(t, err)
}

func TestDeleteCustomer_ReportsDeletedBills(t *testing.T) {
	f := newCustomerServiceFixture()
	c := f.seed("Asha Rao", "9900112233", "1500", "200", 3)
	f.repo.deletedBills = 3

	resp, err := f.svc.DeleteCustomer(context.Background(), c.ID.String(), "")
	require.NoError(t, err)

	assert.Equal(t, int64(3), resp.DeletedBills)
	assert.Empty(t, f.repo.customers)
	if assert.Len(t, f.auditRepo.entries, 1) {
		assert.Equal(t, model.ActionDeleteCustomer, f.auditRepo.entries[0].Action)
		assert.Contains(t, f.auditRepo.entries[0].Details, `"deleted_bills":"3"`)
	}
}

func TestListCustomers_JoinsAggregates(t *testing.T) {
	f := newCustomerServiceFixture()
	f.seed("Asha Rao", "9900112233", "1500", "200", 3)
	f.seed("Meera", "8811223344", "0", "0", 0)

	list, total, err := f.svc.ListCustomers(context.Background(), "", 1, 20)
	require.NoError(t, err)

	assert.Equal(t, int64(2), total)
	require.Len(t, list, 2)
	assert.Equal(t, int64(3), list[0].TotalOrders)
	assert.Equal(t, "1500.00", list[0].TotalSpent)
	assert.Equal(t, "200.00", list[0].OutstandingBalance)
	assert.Equal(t, "0.00", list[1].TotalSpent)
}

func TestGetStats(t *testing.T) {
	f := newCustomerServiceFixture()
	f.repo.stats = repository.CustomerStats{
		TotalCustomers:           12,
		CustomersWithOutstanding: 4,
		TotalOutstandingAmount:   decimal.RequireFromString("2350.50"),
	}

	stats, err := f.svc.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(12), stats.TotalCustomers)
	assert.Equal(t, int64(4), stats.CustomersWithOutstanding)
	assert.Equal(t, "2350.50", stats.TotalOutstandingAmount)
}

func TestGetOverview_MergesListAndStats(t *testing.T) {
	f := newCustomerServiceFixture()
	f.seed("Asha Rao", "9900112233", "1500", "200", 3)
	f.seed("Meera", "8811223344", "349.50", "49.50", 1)
	f.repo.stats = repository.CustomerStats{TotalCustomers: 2, CustomersWithOutstanding: 2, TotalOutstandingAmount: decimal.RequireFromString("249.50")}

	overview, err := f.svc.GetOverview(context.Background(), "", 1, 20)
	require.NoError(t, err)

	assert.Len(t, overview.Customers, 2)
	assert.Equal(t, int64(2), overview.Stats.TotalCustomers)
	assert.Equal(t, "1849.50", overview.VisibleRevenue.StringFixed(2))
}

func TestGetOverview_StatsFailureRendersDefaults(t *testing.T) {
	f := newCustomerServiceFixture()
	f.seed("Asha Rao", "9900112233", "1500", "200", 3)
	f.repo.statsErr = errDatabaseDown

	overview, err := f.svc.GetOverview(context.Background(), "", 1, 20)
	require.NoError(t, err, "a stats failure must not fail the overview")

	assert.Len(t, overview.Customers, 1)
	assert.Equal(t, int64(0), overview.Stats.TotalCustomers)
	assert.True(t, overview.Stats.TotalOutstandingAmount.IsZero())
	assert.Equal(t, "1500.00", overview.VisibleRevenue.StringFixed(2))
}

func TestGetCustomer_IncludesBillHistory(t *testing.T) {
	f := newCustomerServiceFixture()
	c := f.seed("Asha Rao", "9900112233", "1500", "200", 2)
	f.repo.customers[c.ID].Bills = []model.Bill{
		{BillNoStr: "007", Total: decimal.RequireFromString("1200"), Status: model.BillStatusPartiallyPaid},
		{BillNoStr: "003", Total: decimal.RequireFromString("300"), Status: model.BillStatusPaid},
	}

	resp, err := f.svc.GetCustomer(context.Background(), c.ID.String())
	require.NoError(t, err)

	require.Len(t, resp.Bills, 2)
	assert.Equal(t, "007", resp.Bills[0].BillNoStr)
	assert.Equal(t, "1200.00", resp.Bills[0].Total)
	assert.Equal(t, "1500.00", resp.TotalSpent)
}

func TestGetCustomer_InvalidID(t *testing.T) {
	f := newCustomerServiceFixture()

	_, err := f.svc.GetCustomer(context.Background(), "not-a-uuid")
	require.Error(t, err)
}
