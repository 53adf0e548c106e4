package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/mail"
	"time"

	"backend/internal/model"
	"backend/internal/reporting"
	"backend/internal/repository"

	"github.com/google/uuid"
)

// --- DTOs ---

type CreateCustomerRequest struct {
	Name    string `json:"name" binding:"required"`
	Phone   string `json:"phone" binding:"required"`
	Email   string `json:"email"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

type UpdateCustomerRequest struct {
	Name    *string `json:"name"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email"`
	Address *string `json:"address"`
	Notes   *string `json:"notes"`
}

type BillSummaryResponse struct {
	BillNoStr string `json:"bill_no_str"`
	Total     string `json:"total"`
	Status    string `json:"status"`
}

type CustomerResponse struct {
	ID                 string                `json:"id"`
	Name               string                `json:"name"`
	Phone              string                `json:"phone"`
	Email              string                `json:"email,omitempty"`
	Address            string                `json:"address,omitempty"`
	Notes              string                `json:"notes,omitempty"`
	TotalOrders        int64                 `json:"total_orders"`
	TotalSpent         string                `json:"total_spent"`
	OutstandingBalance string                `json:"outstanding_balance"`
	Bills              []BillSummaryResponse `json:"bills,omitempty"`
	CreatedAt          string                `json:"created_at"`
	UpdatedAt          string                `json:"updated_at"`
}

type CustomerStatsResponse struct {
	TotalCustomers           int64  `json:"total_customers"`
	CustomersWithOutstanding int64  `json:"customers_with_outstanding"`
	TotalOutstandingAmount   string `json:"total_outstanding_amount"`
}

type DeleteCustomerResponse struct {
	DeletedBills int64 `json:"deleted_bills"`
}

// --- Interface ---

type CustomerService interface {
	CreateCustomer(ctx context.Context, req CreateCustomerRequest, actorID string) (CustomerResponse, error)
	UpdateCustomer(ctx context.Context, id string, req UpdateCustomerRequest, actorID string) (CustomerResponse, error)
	DeleteCustomer(ctx context.Context, id string, actorID string) (DeleteCustomerResponse, error)
	GetCustomer(ctx context.Context, id string) (CustomerResponse, error)
	ListCustomers(ctx context.Context, search string, page, limit int) ([]CustomerResponse, int64, error)
	GetStats(ctx context.Context) (CustomerStatsResponse, error)
	GetOverview(ctx context.Context, search string, page, limit int) (reporting.Overview, error)
}

type customerService struct {
	customerRepo repository.CustomerRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
}

func NewCustomerService(
	customerRepo repository.CustomerRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) CustomerService {
	return &customerService{customerRepo: customerRepo, auditRepo: auditRepo, txManager: txManager}
}

// --- Implementation ---

func (s *customerService) CreateCustomer(ctx context.Context, req CreateCustomerRequest, actorID string) (CustomerResponse, error) {
	if req.Email != "" {
		if _, err := mail.ParseAddress(req.Email); err != nil {
			return CustomerResponse{}, fmt.Errorf("invalid email format")
		}
	}
	if existing, err := s.customerRepo.FindByPhone(ctx, req.Phone); err == nil && existing != nil {
		return CustomerResponse{}, fmt.Errorf("a customer with phone %s already exists", req.Phone)
	}

	customer := model.Customer{
		Name:    req.Name,
		Phone:   req.Phone,
		Email:   req.Email,
		Address: req.Address,
		Notes:   req.Notes,
	}
	if err := s.customerRepo.Create(ctx, &customer); err != nil {
		return CustomerResponse{}, fmt.Errorf("failed to create customer: %w", err)
	}

	s.audit(ctx, actorID, model.ActionCreateCustomer, customer.ID.String(), customer.Name, nil)

	return s.withAggregates(ctx, customer), nil
}

func (s *customerService) UpdateCustomer(ctx context.Context, id string, req UpdateCustomerRequest, actorID string) (CustomerResponse, error) {
	customerID, err := uuid.Parse(id)
	if err != nil {
		return CustomerResponse{}, fmt.Errorf("invalid customer id: %w", err)
	}

	customer, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		return CustomerResponse{}, fmt.Errorf("customer not found: %w", err)
	}

	if req.Name != nil {
		if *req.Name == "" {
			return CustomerResponse{}, fmt.Errorf("name is required")
		}
		customer.Name = *req.Name
	}
	if req.Phone != nil {
		if *req.Phone == "" {
			return CustomerResponse{}, fmt.Errorf("phone is required")
		}
		customer.Phone = *req.Phone
	}
	if req.Email != nil {
		if *req.Email != "" {
			if _, mailErr := mail.ParseAddress(*req.Email); mailErr != nil {
				return CustomerResponse{}, fmt.Errorf("invalid email format")
			}
		}
		customer.Email = *req.Email
	}
	if req.Address != nil {
		customer.Address = *req.Address
	}
	if req.Notes != nil {
		customer.Notes = *req.Notes
	}

	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return CustomerResponse{}, fmt.Errorf("failed to update customer: %w", err)
	}

	s.audit(ctx, actorID, model.ActionUpdateCustomer, customer.ID.String(), customer.Name, nil)

	return s.withAggregates(ctx, *customer), nil
}

// DeleteCustomer removes a customer and all their bills in one transaction and
// reports how many bills went with them.
func (s *customerService) DeleteCustomer(ctx context.Context, id string, actorID string) (DeleteCustomerResponse, error) {
	customerID, err := uuid.Parse(id)
	if err != nil {
		return DeleteCustomerResponse{}, fmt.Errorf("invalid customer id: %w", err)
	}

	customer, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		return DeleteCustomerResponse{}, fmt.Errorf("customer not found: %w", err)
	}

	var deletedBills int64
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var delErr error
		deletedBills, delErr = s.customerRepo.DeleteBillsByCustomerID(txCtx, customerID)
		if delErr != nil {
			return fmt.Errorf("failed to delete bills: %w", delErr)
		}
		if delErr = s.customerRepo.Delete(txCtx, customerID); delErr != nil {
			return fmt.Errorf("failed to delete customer: %w", delErr)
		}
		return nil
	})
	if err != nil {
		return DeleteCustomerResponse{}, err
	}

	s.audit(ctx, actorID, model.ActionDeleteCustomer, customerID.String(), customer.Name, map[string]string{
		"deleted_bills": fmt.Sprintf("%d", deletedBills),
	})

	return DeleteCustomerResponse{DeletedBills: deletedBills}, nil
}

func (s *customerService) GetCustomer(ctx context.Context, id string) (CustomerResponse, error) {
	customerID, err := uuid.Parse(id)
	if err != nil {
		return CustomerResponse{}, fmt.Errorf("invalid customer id: %w", err)
	}

	customer, err := s.customerRepo.FindByIDWithBills(ctx, customerID)
	if err != nil {
		return CustomerResponse{}, fmt.Errorf("customer not found: %w", err)
	}

	resp := s.withAggregates(ctx, *customer)
	resp.Bills = make([]BillSummaryResponse, 0, len(customer.Bills))
	for _, b := range customer.Bills {
		resp.Bills = append(resp.Bills, BillSummaryResponse{
			BillNoStr: b.BillNoStr,
			Total:     b.Total.StringFixed(2),
			Status:    b.Status,
		})
	}
	return resp, nil
}

func (s *customerService) ListCustomers(ctx context.Context, search string, page, limit int) ([]CustomerResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	customers, total, err := s.customerRepo.List(ctx, search, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch customers: %w", err)
	}

	result, err := s.attachAggregates(ctx, customers)
	if err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

func (s *customerService) GetStats(ctx context.Context) (CustomerStatsResponse, error) {
	stats, err := s.customerRepo.Stats(ctx)
	if err != nil {
		return CustomerStatsResponse{}, fmt.Errorf("failed to fetch customer stats: %w", err)
	}
	return CustomerStatsResponse{
		TotalCustomers:           stats.TotalCustomers,
		CustomersWithOutstanding: stats.CustomersWithOutstanding,
		TotalOutstandingAmount:   stats.TotalOutstandingAmount.StringFixed(2),
	}, nil
}

// GetOverview serves the dashboard in one call: the customer list is
// authoritative, the stats rollup is best effort. A stats failure renders
// zeroed cards rather than failing the screen.
func (s *customerService) GetOverview(ctx context.Context, search string, page, limit int) (reporting.Overview, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	customers, _, err := s.customerRepo.List(ctx, search, page, limit)
	if err != nil {
		return reporting.Overview{}, fmt.Errorf("failed to fetch customers: %w", err)
	}

	aggregates, err := s.aggregatesByID(ctx, customers)
	if err != nil {
		return reporting.Overview{}, err
	}

	summaries := make([]reporting.CustomerSummary, 0, len(customers))
	for _, c := range customers {
		agg := aggregates[c.ID]
		summaries = append(summaries, reporting.CustomerSummary{
			ID:                 c.ID.String(),
			Name:               c.Name,
			Phone:              c.Phone,
			TotalOrders:        agg.TotalOrders,
			TotalSpent:         agg.TotalSpent,
			OutstandingBalance: agg.OutstandingBalance,
		})
	}

	var stats *reporting.Stats
	if repoStats, statsErr := s.customerRepo.Stats(ctx); statsErr != nil {
		log.Printf("overview: stats unavailable, rendering defaults: %v", statsErr)
	} else {
		stats = &reporting.Stats{
			TotalCustomers:           repoStats.TotalCustomers,
			CustomersWithOutstanding: repoStats.CustomersWithOutstanding,
			TotalOutstandingAmount:   repoStats.TotalOutstandingAmount,
		}
	}

	return reporting.MergeOverview(summaries, stats), nil
}

// --- Helpers ---

func (s *customerService) aggregatesByID(ctx context.Context, customers []model.Customer) (map[uuid.UUID]repository.CustomerAggregates, error) {
	ids := make([]uuid.UUID, 0, len(customers))
	for _, c := range customers {
		ids = append(ids, c.ID)
	}
	aggregates, err := s.customerRepo.AggregatesFor(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch customer aggregates: %w", err)
	}
	return aggregates, nil
}

func (s *customerService) attachAggregates(ctx context.Context, customers []model.Customer) ([]CustomerResponse, error) {
	aggregates, err := s.aggregatesByID(ctx, customers)
	if err != nil {
		return nil, err
	}

	result := make([]CustomerResponse, 0, len(customers))
	for _, c := range customers {
		result = append(result, toCustomerResponse(c, aggregates[c.ID]))
	}
	return result, nil
}

// withAggregates builds a single-customer response; aggregate lookup failures
// degrade to zeroed aggregates rather than failing the whole response.
func (s *customerService) withAggregates(ctx context.Context, customer model.Customer) CustomerResponse {
	aggregates, err := s.customerRepo.AggregatesFor(ctx, []uuid.UUID{customer.ID})
	if err != nil {
		log.Printf("customer: aggregates unavailable for %s: %v", customer.ID, err)
		return toCustomerResponse(customer, repository.CustomerAggregates{})
	}
	return toCustomerResponse(customer, aggregates[customer.ID])
}

func toCustomerResponse(c model.Customer, agg repository.CustomerAggregates) CustomerResponse {
	return CustomerResponse{
		ID:                 c.ID.String(),
		Name:               c.Name,
		Phone:              c.Phone,
		Email:              c.Email,
		Address:            c.Address,
		Notes:              c.Notes,
		TotalOrders:        agg.TotalOrders,
		TotalSpent:         agg.TotalSpent.StringFixed(2),
		OutstandingBalance: agg.OutstandingBalance.StringFixed(2),
		CreatedAt:          c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:          c.UpdatedAt.Format(time.RFC3339),
	}
}

func (s *customerService) audit(ctx context.Context, actorID, action, entityID, entityName string, details map[string]string) {
	entry := model.AuditLog{
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
	}
	if actorID != "" {
		if userID, err := uuid.Parse(actorID); err == nil {
			entry.UserID = &userID
		}
	}
	if details != nil {
		if payload, err := json.Marshal(details); err == nil {
			entry.Details = string(payload)
		}
	}
	if err := s.auditRepo.Log(ctx, &entry); err != nil {
		log.Printf("audit: failed to record %s: %v", action, err)
	}
}
