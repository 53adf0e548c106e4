package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BillStatus enum constants
const (
	BillStatusPending       = "pending"
	BillStatusPartiallyPaid = "partially_paid"
	BillStatusPaid          = "paid"
)

// AttachmentKind enum constants
const (
	AttachmentDesignImage = "DESIGN_IMAGE"
	AttachmentDrawing     = "DRAWING"
	AttachmentSignature   = "SIGNATURE"
)

// Bill represents a finalized tailoring bill. Amounts are recomputed from the
// items at creation time and never trusted from the client; customer contact
// fields are stored as a hard copy so the bill survives customer edits.
type Bill struct {
	ID                  uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	BillNo              int64           `gorm:"uniqueIndex;not null" json:"bill_no"`
	BillNoStr           string          `gorm:"type:varchar(20);not null" json:"bill_no_str"` // zero-padded display number
	CustomerID          *uuid.UUID      `gorm:"type:uuid;index" json:"customer_id"`
	Customer            *Customer       `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	CustomerName        string          `gorm:"type:varchar(255);not null" json:"customer_name"`
	CustomerPhone       string          `gorm:"type:varchar(50);not null" json:"customer_phone"`
	CustomerAddress     string          `gorm:"type:text" json:"customer_address"`
	Items               []BillItem      `gorm:"foreignKey:BillID;constraint:OnDelete:CASCADE" json:"items"`
	Subtotal            decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	Discount            decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"discount"`
	Total               decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
	Advance             decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"advance"`
	Balance             decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"balance"`
	Status              string          `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	DueDate             *time.Time      `json:"due_date"`
	SpecialInstructions string          `gorm:"type:text" json:"special_instructions"`
	QRCode              string          `gorm:"type:text" json:"qr_code,omitempty"` // PNG data URI for the payment link
	Attachments         []BillAttachment `gorm:"foreignKey:BillID;constraint:OnDelete:CASCADE" json:"attachments,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// BillItem is a single line of a bill
type BillItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	BillID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"bill_id"`
	Name      string          `gorm:"type:varchar(255);not null" json:"name"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	Position  int             `gorm:"not null" json:"position"` // preserves line order
}

// BillAttachment stores opaque design images, drawings, and signatures as
// data URIs. The server never inspects the payload.
type BillAttachment struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	BillID    uuid.UUID `gorm:"type:uuid;not null;index" json:"bill_id"`
	Kind      string    `gorm:"type:varchar(20);not null" json:"kind"` // DESIGN_IMAGE, DRAWING, SIGNATURE
	Data      string    `gorm:"type:text;not null" json:"data"`
	CreatedAt time.Time `json:"created_at"`
}
