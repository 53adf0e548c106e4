package billing

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// BillNoWidth is the zero-padding width of display bill numbers ("007").
const BillNoWidth = 3

// Draft is the locally edited, pre-submission bill state. It is immutable as
// far as this package is concerned; Assemble never modifies it.
type Draft struct {
	CustomerID          string
	CustomerName        string
	CustomerPhone       string
	CustomerAddress     string
	Items               []LineItem
	Discount            decimal.Decimal
	Advance             decimal.Decimal
	DueDate             *time.Time
	SpecialInstructions string
	Attachments         []string // opaque data URIs, carried through untouched
}

// CreationResponse is the normalized form of a bill-creation reply. Backends
// have shipped the display number under three different shapes over time;
// ParseCreationResponse folds them all into this one struct.
type CreationResponse struct {
	ID        string
	BillNoStr string // empty when the backend assigned no number yet
	QRCode    string
}

// Bill is the assembled, display-ready view model. Amounts are always
// recomputed from the draft, never taken from the server echo, since the
// creation call may race with later local edits.
type Bill struct {
	ID                  string
	BillNoStr           string
	CustomerID          string
	CustomerName        string
	CustomerPhone       string
	CustomerAddress     string
	Items               []LineItem
	Subtotal            decimal.Decimal
	Discount            decimal.Decimal
	Total               decimal.Decimal
	Advance             decimal.Decimal
	Balance             decimal.Decimal
	DueDate             *time.Time
	SpecialInstructions string
	Attachments         []string
	CreatedDate         string
	Status              string
	QRCode              string
}

// FormatBillNo renders a raw sequence number as the fixed-width display string
// printed on the bill, e.g. 7 -> "007". Numbers wider than BillNoWidth are
// rendered as-is.
func FormatBillNo(n int64) string {
	return fmt.Sprintf("%0*d", BillNoWidth, n)
}

// ParseCreationResponse extracts the server-assigned identity from an opaque
// creation reply. Recognized display-number shapes, in priority order:
//
//	bill_no_str  pre-formatted string, used verbatim
//	billNoStr    camel-case variant, used verbatim
//	bill_no      raw numeric sequence, zero-padded to BillNoWidth
//
// A reply with none of these is not an error; BillNoStr stays empty and the
// presentation layer shows "pending assignment". Some backends nest the bill
// under a "bill" key; that wrapper is unwrapped first.
func ParseCreationResponse(raw map[string]any) CreationResponse {
	if nested, ok := raw["bill"].(map[string]any); ok {
		raw = nested
	}

	var resp CreationResponse

	if id, ok := stringField(raw, "id"); ok {
		resp.ID = id
	} else if id, ok := stringField(raw, "_id"); ok {
		resp.ID = id
	}

	if s, ok := stringField(raw, "bill_no_str"); ok {
		resp.BillNoStr = s
	} else if s, ok := stringField(raw, "billNoStr"); ok {
		resp.BillNoStr = s
	} else if n, ok := intField(raw, "bill_no"); ok {
		resp.BillNoStr = FormatBillNo(n)
	}

	if qr, ok := stringField(raw, "qr_code"); ok {
		resp.QRCode = qr
	}

	return resp
}

// Assemble merges a draft with the normalized creation reply into the final
// Bill view model. It is pure and idempotent: the same draft and reply always
// produce the same Bill. The QR payload is carried through verbatim whenever
// the server supplied one; whether to show it is decided at presentation time
// by ShowPaymentQR against the recomputed balance.
func Assemble(draft Draft, resp CreationResponse) Bill {
	subtotal := Subtotal(draft.Items)
	total := Total(subtotal, draft.Discount)
	balance := Balance(total, draft.Advance)

	return Bill{
		ID:                  resp.ID,
		BillNoStr:           resp.BillNoStr,
		CustomerID:          draft.CustomerID,
		CustomerName:        draft.CustomerName,
		CustomerPhone:       draft.CustomerPhone,
		CustomerAddress:     draft.CustomerAddress,
		Items:               draft.Items,
		Subtotal:            subtotal,
		Discount:            draft.Discount,
		Total:               total,
		Advance:             draft.Advance,
		Balance:             balance,
		DueDate:             draft.DueDate,
		SpecialInstructions: draft.SpecialInstructions,
		Attachments:         draft.Attachments,
		CreatedDate:         time.Now().Format("2006-01-02"),
		Status:              "pending",
		QRCode:              resp.QRCode,
	}
}

// ShowPaymentQR reports whether the payment affordance may be shown. The rule
// keys off the balance computed from the draft, never a server-reported one.
func ShowPaymentQR(b Bill) bool {
	return b.Balance.IsPositive()
}

func stringField(m map[string]any, key string) (string, bool) {
	v, ok := m[key]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

func intField(m map[string]any, key string) (int64, bool) {
	v, ok := m[key]
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}
