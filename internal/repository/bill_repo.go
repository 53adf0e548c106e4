package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BillListFilter narrows the bill listing.
type BillListFilter struct {
	Status     string    // pending, partially_paid, paid or empty for all
	CustomerID uuid.UUID // zero value = no filter
	Search     string    // partial match on bill_no_str or customer_name
	Page       int
	Limit      int
}

type BillRepository interface {
	Create(ctx context.Context, bill *model.Bill) error
	Update(ctx context.Context, bill *model.Bill) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Bill, error)
	FindByIDWithDetails(ctx context.Context, id uuid.UUID) (*model.Bill, error)
	List(ctx context.Context, filter BillListFilter) ([]model.Bill, int64, error)
	MaxBillNo(ctx context.Context) (int64, error)
}

type billRepository struct {
	db *gorm.DB
}

func NewBillRepository(db *gorm.DB) BillRepository {
	return &billRepository{db: db}
}

func (r *billRepository) Create(ctx context.Context, bill *model.Bill) error {
	return GetDB(ctx, r.db).Create(bill).Error
}

func (r *billRepository) Update(ctx context.Context, bill *model.Bill) error {
	return GetDB(ctx, r.db).Save(bill).Error
}

func (r *billRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Bill, error) {
	var bill model.Bill
	if err := GetDB(ctx, r.db).First(&bill, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &bill, nil
}

func (r *billRepository) FindByIDWithDetails(ctx context.Context, id uuid.UUID) (*model.Bill, error) {
	var bill model.Bill
	if err := GetDB(ctx, r.db).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Attachments").
		First(&bill, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &bill, nil
}

func (r *billRepository) List(ctx context.Context, filter BillListFilter) ([]model.Bill, int64, error) {
	var bills []model.Bill
	var total int64

	db := GetDB(ctx, r.db)

	applyFilter := func(q *gorm.DB) *gorm.DB {
		if filter.Status != "" {
			q = q.Where("status = ?", filter.Status)
		}
		if filter.CustomerID != uuid.Nil {
			q = q.Where("customer_id = ?", filter.CustomerID)
		}
		if filter.Search != "" {
			q = q.Where("bill_no_str ILIKE ? OR customer_name ILIKE ?", "%"+filter.Search+"%", "%"+filter.Search+"%")
		}
		return q
	}

	if err := applyFilter(db.Model(&model.Bill{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	fetchQuery := applyFilter(db.Model(&model.Bill{})).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") })
	if err := fetchQuery.Order("bill_no DESC").Offset(offset).Limit(filter.Limit).Find(&bills).Error; err != nil {
		return nil, 0, err
	}

	return bills, total, nil
}

// MaxBillNo returns the highest assigned sequence number, 0 when no bills
// exist. Callers must run this inside a transaction when assigning the next
// number to avoid handing out duplicates.
func (r *billRepository) MaxBillNo(ctx context.Context) (int64, error) {
	var max struct {
		N int64
	}
	err := GetDB(ctx, r.db).Model(&model.Bill{}).
		Select("COALESCE(MAX(bill_no), 0) as n").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max.N, nil
}
