package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"backend/internal/billing"
	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	qrcode "github.com/skip2/go-qrcode"
)

// --- DTOs ---

type BillItemPayload struct {
	Name      string `json:"name" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
	UnitPrice string `json:"unit_price" binding:"required"`
}

type CreateBillRequest struct {
	CustomerID          string            `json:"customer_id"` // optional, links the bill to a customer record
	CustomerName        string            `json:"customer_name" binding:"required"`
	CustomerPhone       string            `json:"customer_phone" binding:"required"`
	CustomerAddress     string            `json:"customer_address"`
	Items               []BillItemPayload `json:"items" binding:"required,min=1,dive"`
	Discount            string            `json:"discount"` // optional, defaults to 0
	Advance             string            `json:"advance"`  // optional, defaults to 0
	DueDate             string            `json:"due_date"` // RFC3339 or YYYY-MM-DD, optional
	SpecialInstructions string            `json:"special_instructions"`
	DesignImages        []string          `json:"design_images"`
	Drawings            []string          `json:"drawings"`
	Signature           string            `json:"signature"`
}

type RecordPaymentRequest struct {
	Amount string `json:"amount" binding:"required"`
}

type BillFilter struct {
	Status     string
	CustomerID string
	Search     string
	Page       int
	Limit      int
}

type BillItemResponse struct {
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

type BillResponse struct {
	ID                  string             `json:"id"`
	BillNo              int64              `json:"bill_no"`
	BillNoStr           string             `json:"bill_no_str"`
	CustomerID          *string            `json:"customer_id"`
	CustomerName        string             `json:"customer_name"`
	CustomerPhone       string             `json:"customer_phone"`
	CustomerAddress     string             `json:"customer_address"`
	Items               []BillItemResponse `json:"items"`
	Subtotal            string             `json:"subtotal"`
	Discount            string             `json:"discount"`
	Total               string             `json:"total"`
	Advance             string             `json:"advance"`
	Balance             string             `json:"balance"`
	Status              string             `json:"status"`
	DueDate             *string            `json:"due_date"`
	SpecialInstructions string             `json:"special_instructions"`
	QRCode              string             `json:"qr_code,omitempty"`
	PaymentURI          string             `json:"payment_uri,omitempty"`
	CreatedAt           string             `json:"created_at"`
}

// --- Interface ---

type BillService interface {
	CreateBill(ctx context.Context, req CreateBillRequest, actorID string) (BillResponse, error)
	GetBill(ctx context.Context, id string) (BillResponse, error)
	ListBills(ctx context.Context, filter BillFilter) ([]BillResponse, int64, error)
	RecordPayment(ctx context.Context, id string, req RecordPaymentRequest, actorID string) (BillResponse, error)
}

// Notifier pushes billing events to connected admin screens. Implemented by
// the websocket hub; nil-safe in the service.
type Notifier interface {
	BroadcastEvent(event string, payload any)
}

type billService struct {
	billRepo     repository.BillRepository
	customerRepo repository.CustomerRepository
	auditRepo    repository.AuditRepository
	settings     SettingsService
	txManager    repository.TransactionManager
	notifier     Notifier
}

func NewBillService(
	billRepo repository.BillRepository,
	customerRepo repository.CustomerRepository,
	auditRepo repository.AuditRepository,
	settings SettingsService,
	txManager repository.TransactionManager,
	notifier Notifier,
) BillService {
	return &billService{
		billRepo:     billRepo,
		customerRepo: customerRepo,
		auditRepo:    auditRepo,
		settings:     settings,
		txManager:    txManager,
		notifier:     notifier,
	}
}

// --- Implementation ---

func (s *billService) CreateBill(ctx context.Context, req CreateBillRequest, actorID string) (BillResponse, error) {
	// All validation happens before any write.
	items, err := parseItems(req.Items)
	if err != nil {
		return BillResponse{}, err
	}

	discount, err := parseAmount(req.Discount, "discount")
	if err != nil {
		return BillResponse{}, err
	}
	advance, err := parseAmount(req.Advance, "advance")
	if err != nil {
		return BillResponse{}, err
	}

	var dueDate *time.Time
	if req.DueDate != "" {
		parsed, parseErr := parseDate(req.DueDate)
		if parseErr != nil {
			return BillResponse{}, fmt.Errorf("invalid due_date: %w", parseErr)
		}
		dueDate = &parsed
	}

	var customerID *uuid.UUID
	if req.CustomerID != "" {
		parsed, parseErr := uuid.Parse(req.CustomerID)
		if parseErr != nil {
			return BillResponse{}, fmt.Errorf("invalid customer_id: %w", parseErr)
		}
		if _, findErr := s.customerRepo.FindByID(ctx, parsed); findErr != nil {
			return BillResponse{}, fmt.Errorf("customer not found: %w", findErr)
		}
		customerID = &parsed
	}

	subtotal := billing.Subtotal(items)
	total := billing.Total(subtotal, discount)
	balance := billing.Balance(total, advance)

	bill := model.Bill{
		CustomerID:          customerID,
		CustomerName:        req.CustomerName,
		CustomerPhone:       req.CustomerPhone,
		CustomerAddress:     req.CustomerAddress,
		Subtotal:            subtotal,
		Discount:            discount,
		Total:               total,
		Advance:             advance,
		Balance:             balance,
		Status:              deriveStatus(balance, advance),
		DueDate:             dueDate,
		SpecialInstructions: req.SpecialInstructions,
		Items:               toItemModels(items),
		Attachments:         toAttachmentModels(req),
	}

	// A payment QR is attached only when something is still owed.
	if balance.IsPositive() {
		upi := s.settings.GetUpiSettings(ctx)
		uri := billing.PaymentURI(upi.UpiID, upi.BusinessName, balance)
		if qr, qrErr := encodeQR(uri); qrErr != nil {
			// Best effort: a bill without a QR is still a valid bill.
			log.Printf("bill: QR generation failed: %v", qrErr)
		} else {
			bill.QRCode = qr
		}
	}

	// Sequence assignment and insert share one transaction so concurrent
	// creations cannot claim the same number.
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		maxNo, maxErr := s.billRepo.MaxBillNo(txCtx)
		if maxErr != nil {
			return fmt.Errorf("failed to allocate bill number: %w", maxErr)
		}
		bill.BillNo = maxNo + 1
		bill.BillNoStr = billing.FormatBillNo(bill.BillNo)
		if createErr := s.billRepo.Create(txCtx, &bill); createErr != nil {
			return fmt.Errorf("failed to create bill: %w", createErr)
		}
		return nil
	})
	if err != nil {
		return BillResponse{}, err
	}

	s.audit(ctx, actorID, model.ActionCreateBill, bill.ID.String(), bill.BillNoStr, map[string]string{
		"customer": bill.CustomerName,
		"total":    bill.Total.StringFixed(2),
		"balance":  bill.Balance.StringFixed(2),
	})

	resp := s.toBillResponse(ctx, bill)
	if s.notifier != nil {
		s.notifier.BroadcastEvent("bill_created", resp)
	}
	return resp, nil
}

func (s *billService) GetBill(ctx context.Context, id string) (BillResponse, error) {
	billID, err := uuid.Parse(id)
	if err != nil {
		return BillResponse{}, fmt.Errorf("invalid bill id: %w", err)
	}

	bill, err := s.billRepo.FindByIDWithDetails(ctx, billID)
	if err != nil {
		return BillResponse{}, fmt.Errorf("bill not found: %w", err)
	}

	return s.toBillResponse(ctx, *bill), nil
}

func (s *billService) ListBills(ctx context.Context, filter BillFilter) ([]BillResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	repoFilter := repository.BillListFilter{
		Status: filter.Status,
		Search: filter.Search,
		Page:   filter.Page,
		Limit:  filter.Limit,
	}
	if filter.CustomerID != "" {
		customerID, err := uuid.Parse(filter.CustomerID)
		if err != nil {
			return nil, 0, fmt.Errorf("invalid customer_id: %w", err)
		}
		repoFilter.CustomerID = customerID
	}

	bills, total, err := s.billRepo.List(ctx, repoFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch bills: %w", err)
	}

	result := make([]BillResponse, 0, len(bills))
	for _, b := range bills {
		result = append(result, s.toBillResponse(ctx, b))
	}
	return result, total, nil
}

// RecordPayment adds to the advance on an open bill and re-derives balance and
// status. Status is never taken from the client.
func (s *billService) RecordPayment(ctx context.Context, id string, req RecordPaymentRequest, actorID string) (BillResponse, error) {
	billID, err := uuid.Parse(id)
	if err != nil {
		return BillResponse{}, fmt.Errorf("invalid bill id: %w", err)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return BillResponse{}, fmt.Errorf("invalid amount: %w", err)
	}
	if !amount.IsPositive() {
		return BillResponse{}, fmt.Errorf("amount must be positive")
	}

	var bill *model.Bill
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		bill, findErr = s.billRepo.FindByID(txCtx, billID)
		if findErr != nil {
			return fmt.Errorf("bill not found: %w", findErr)
		}

		if bill.Status == model.BillStatusPaid {
			return fmt.Errorf("bill is already paid")
		}

		bill.Advance = bill.Advance.Add(amount)
		bill.Balance = billing.Balance(bill.Total, bill.Advance)
		bill.Status = deriveStatus(bill.Balance, bill.Advance)
		if bill.Balance.IsZero() {
			bill.QRCode = "" // nothing left to collect
		}

		if updateErr := s.billRepo.Update(txCtx, bill); updateErr != nil {
			return fmt.Errorf("failed to update bill: %w", updateErr)
		}
		return nil
	})
	if err != nil {
		return BillResponse{}, err
	}

	s.audit(ctx, actorID, model.ActionRecordPayment, bill.ID.String(), bill.BillNoStr, map[string]string{
		"amount":  amount.StringFixed(2),
		"balance": bill.Balance.StringFixed(2),
	})

	resp := s.toBillResponse(ctx, *bill)
	if s.notifier != nil {
		s.notifier.BroadcastEvent("payment_recorded", resp)
	}
	return resp, nil
}

// --- Helpers ---

func parseItems(payloads []BillItemPayload) ([]billing.LineItem, error) {
	if len(payloads) == 0 {
		return nil, fmt.Errorf("at least one item is required")
	}

	items := make([]billing.LineItem, 0, len(payloads))
	for i, p := range payloads {
		if p.Quantity <= 0 {
			return nil, fmt.Errorf("items[%d]: quantity must be positive", i)
		}
		price, err := decimal.NewFromString(p.UnitPrice)
		if err != nil {
			return nil, fmt.Errorf("items[%d]: invalid unit_price: %w", i, err)
		}
		if price.IsNegative() {
			return nil, fmt.Errorf("items[%d]: unit_price must not be negative", i)
		}
		items = append(items, billing.LineItem{Name: p.Name, Quantity: p.Quantity, UnitPrice: price})
	}
	return items, nil
}

func parseAmount(raw, field string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s: %w", field, err)
	}
	if amount.IsNegative() {
		return decimal.Zero, fmt.Errorf("%s must not be negative", field)
	}
	return amount, nil
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

func deriveStatus(balance, advance decimal.Decimal) string {
	switch {
	case balance.IsZero():
		return model.BillStatusPaid
	case advance.IsPositive():
		return model.BillStatusPartiallyPaid
	default:
		return model.BillStatusPending
	}
}

func toItemModels(items []billing.LineItem) []model.BillItem {
	out := make([]model.BillItem, 0, len(items))
	for i, it := range items {
		out = append(out, model.BillItem{
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Position:  i,
		})
	}
	return out
}

func toAttachmentModels(req CreateBillRequest) []model.BillAttachment {
	var out []model.BillAttachment
	for _, data := range req.DesignImages {
		out = append(out, model.BillAttachment{Kind: model.AttachmentDesignImage, Data: data})
	}
	for _, data := range req.Drawings {
		out = append(out, model.BillAttachment{Kind: model.AttachmentDrawing, Data: data})
	}
	if req.Signature != "" {
		out = append(out, model.BillAttachment{Kind: model.AttachmentSignature, Data: req.Signature})
	}
	return out
}

func encodeQR(uri string) (string, error) {
	png, err := qrcode.Encode(uri, qrcode.Medium, 256)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

func (s *billService) audit(ctx context.Context, actorID, action, entityID, entityName string, details map[string]string) {
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
	if payload, err := json.Marshal(details); err == nil {
		entry.Details = string(payload)
	}
	if err := s.auditRepo.Log(ctx, &entry); err != nil {
		log.Printf("audit: failed to record %s: %v", action, err)
	}
}

func (s *billService) toBillResponse(ctx context.Context, bill model.Bill) BillResponse {
	resp := BillResponse{
		ID:                  bill.ID.String(),
		BillNo:              bill.BillNo,
		BillNoStr:           bill.BillNoStr,
		CustomerName:        bill.CustomerName,
		CustomerPhone:       bill.CustomerPhone,
		CustomerAddress:     bill.CustomerAddress,
		Subtotal:            bill.Subtotal.StringFixed(2),
		Discount:            bill.Discount.StringFixed(2),
		Total:               bill.Total.StringFixed(2),
		Advance:             bill.Advance.StringFixed(2),
		Balance:             bill.Balance.StringFixed(2),
		Status:              bill.Status,
		SpecialInstructions: bill.SpecialInstructions,
		QRCode:              bill.QRCode,
		CreatedAt:           bill.CreatedAt.Format(time.RFC3339),
	}

	if bill.CustomerID != nil {
		idStr := bill.CustomerID.String()
		resp.CustomerID = &idStr
	}
	if bill.DueDate != nil {
		due := bill.DueDate.Format("2006-01-02")
		resp.DueDate = &due
	}

	resp.Items = make([]BillItemResponse, 0, len(bill.Items))
	for _, it := range bill.Items {
		resp.Items = append(resp.Items, BillItemResponse{
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice.StringFixed(2),
		})
	}

	// Tap-to-pay link shown alongside the QR, only while a balance remains.
	if bill.Balance.IsPositive() {
		upi := s.settings.GetUpiSettings(ctx)
		resp.PaymentURI = billing.PaymentURI(upi.UpiID, upi.BusinessName, bill.Balance)
	}

	return resp
}
