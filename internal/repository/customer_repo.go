package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CustomerAggregates carries the per-customer bill rollup joined onto list
// and detail responses. Computed from bills at query time, never stored.
type CustomerAggregates struct {
	CustomerID         uuid.UUID       `gorm:"column:customer_id"`
	TotalOrders        int64           `gorm:"column:total_orders"`
	TotalSpent         decimal.Decimal `gorm:"column:total_spent"`
	OutstandingBalance decimal.Decimal `gorm:"column:outstanding_balance"`
}

// CustomerStats is the shop-wide rollup behind /api/customers/stats.
type CustomerStats struct {
	TotalCustomers           int64           `gorm:"column:total_customers"`
	CustomersWithOutstanding int64           `gorm:"column:customers_with_outstanding"`
	TotalOutstandingAmount   decimal.Decimal `gorm:"column:total_outstanding_amount"`
}

type CustomerRepository interface {
	Create(ctx context.Context, customer *model.Customer) error
	Update(ctx context.Context, customer *model.Customer) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Customer, error)
	FindByIDWithBills(ctx context.Context, id uuid.UUID) (*model.Customer, error)
	FindByPhone(ctx context.Context, phone string) (*model.Customer, error)
	List(ctx context.Context, search string, page, limit int) ([]model.Customer, int64, error)
	AggregatesFor(ctx context.Context, customerIDs []uuid.UUID) (map[uuid.UUID]CustomerAggregates, error)
	Stats(ctx context.Context) (CustomerStats, error)
	DeleteBillsByCustomerID(ctx context.Context, customerID uuid.UUID) (int64, error)
}

type customerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) Create(ctx context.Context, customer *model.Customer) error {
	return GetDB(ctx, r.db).Create(customer).Error
}

func (r *customerRepository) Update(ctx context.Context, customer *model.Customer) error {
	return GetDB(ctx, r.db).Save(customer).Error
}

func (r *customerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Customer{}).Error
}

func (r *customerRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	var customer model.Customer
	if err := GetDB(ctx, r.db).First(&customer, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepository) FindByIDWithBills(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	var customer model.Customer
	if err := GetDB(ctx, r.db).
		Preload("Bills", func(db *gorm.DB) *gorm.DB { return db.Order("bill_no DESC") }).
		First(&customer, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepository) FindByPhone(ctx context.Context, phone string) (*model.Customer, error) {
	var customer model.Customer
	if err := GetDB(ctx, r.db).First(&customer, "phone = ?", phone).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepository) List(ctx context.Context, search string, page, limit int) ([]model.Customer, int64, error) {
	var customers []model.Customer
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Customer{})
	if search != "" {
		query = query.Where("name ILIKE ? OR phone ILIKE ?", "%"+search+"%", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	fetchQuery := db.Model(&model.Customer{})
	if search != "" {
		fetchQuery = fetchQuery.Where("name ILIKE ? OR phone ILIKE ?", "%"+search+"%", "%"+search+"%")
	}
	if err := fetchQuery.Order("created_at DESC").Offset(offset).Limit(limit).Find(&customers).Error; err != nil {
		return nil, 0, err
	}

	return customers, total, nil
}

// AggregatesFor computes bill rollups for the given customers in one grouped
// query. Customers with no bills are simply absent from the result map.
func (r *customerRepository) AggregatesFor(ctx context.Context, customerIDs []uuid.UUID) (map[uuid.UUID]CustomerAggregates, error) {
	result := make(map[uuid.UUID]CustomerAggregates, len(customerIDs))
	if len(customerIDs) == 0 {
		return result, nil
	}

	var rows []CustomerAggregates
	err := GetDB(ctx, r.db).Table("bills").
		Select("customer_id, COUNT(*) as total_orders, COALESCE(SUM(total), 0) as total_spent, COALESCE(SUM(balance), 0) as outstanding_balance").
		Where("customer_id IN ?", customerIDs).
		Group("customer_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		result[row.CustomerID] = row
	}
	return result, nil
}

func (r *customerRepository) Stats(ctx context.Context) (CustomerStats, error) {
	var stats CustomerStats

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.Customer{}).Count(&stats.TotalCustomers).Error; err != nil {
		return CustomerStats{}, err
	}

	var outstanding struct {
		Customers int64           `gorm:"column:customers"`
		Amount    decimal.Decimal `gorm:"column:amount"`
	}
	err := db.Table("bills").
		Select("COUNT(DISTINCT customer_id) as customers, COALESCE(SUM(balance), 0) as amount").
		Where("balance > 0 AND customer_id IS NOT NULL").
		Scan(&outstanding).Error
	if err != nil {
		return CustomerStats{}, err
	}

	stats.CustomersWithOutstanding = outstanding.Customers
	stats.TotalOutstandingAmount = outstanding.Amount
	return stats, nil
}

// DeleteBillsByCustomerID hard-deletes a customer's bills and returns how many
// were removed, for the "deleted N bills" confirmation.
func (r *customerRepository) DeleteBillsByCustomerID(ctx context.Context, customerID uuid.UUID) (int64, error) {
	res := GetDB(ctx, r.db).Where("customer_id = ?", customerID).Delete(&model.Bill{})
	return res.RowsAffected, res.Error
}
