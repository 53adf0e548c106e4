package billing

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatBillNo(t *testing.T) {
	assert.Equal(t, "007", FormatBillNo(7))
	assert.Equal(t, "042", FormatBillNo(42))
	assert.Equal(t, "123", FormatBillNo(123))
	assert.Equal(t, "1234", FormatBillNo(1234))
}

func TestParseCreationResponse_PreformattedString(t *testing.T) {
	resp := ParseCreationResponse(map[string]any{
		"id":          "b-1",
		"bill_no_str": "0007",
	})
	assert.Equal(t, "b-1", resp.ID)
	// used verbatim, never re-padded or re-parsed
	assert.Equal(t, "0007", resp.BillNoStr)
}

func TestParseCreationResponse_CamelCaseVariant(t *testing.T) {
	resp := ParseCreationResponse(map[string]any{
		"id":        "b-2",
		"billNoStr": "X42",
	})
	assert.Equal(t, "X42", resp.BillNoStr)
}

func TestParseCreationResponse_NumericGetsPadded(t *testing.T) {
	for _, tc := range []struct {
		raw  any
		want string
	}{
		{int(7), "007"},
		{int64(42), "042"},
		{float64(123), "123"}, // encoding/json decodes numbers as float64
		{json.Number("9"), "009"},
	} {
		resp := ParseCreationResponse(map[string]any{"bill_no": tc.raw})
		assert.Equal(t, tc.want, resp.BillNoStr, "bill_no=%v", tc.raw)
	}
}

func TestParseCreationResponse_StringShapeWinsOverNumeric(t *testing.T) {
	resp := ParseCreationResponse(map[string]any{
		"bill_no_str": "0099",
		"billNoStr":   "0011",
		"bill_no":     float64(5),
	})
	assert.Equal(t, "0099", resp.BillNoStr)
}

func TestParseCreationResponse_MissingNumberIsNotAnError(t *testing.T) {
	resp := ParseCreationResponse(map[string]any{"id": "b-3"})
	assert.Equal(t, "b-3", resp.ID)
	assert.Empty(t, resp.BillNoStr)
}

func TestParseCreationResponse_UnwrapsNestedBill(t *testing.T) {
	resp := ParseCreationResponse(map[string]any{
		"bill": map[string]any{
			"_id":     "b-4",
			"bill_no": float64(8),
			"qr_code": "data:image/png;base64,AAAA",
		},
	})
	assert.Equal(t, "b-4", resp.ID)
	assert.Equal(t, "008", resp.BillNoStr)
	assert.Equal(t, "data:image/png;base64,AAAA", resp.QRCode)
}

func TestParseCreationResponse_IgnoresEmptyAndWrongTypes(t *testing.T) {
	resp := ParseCreationResponse(map[string]any{
		"bill_no_str": "",
		"billNoStr":   nil,
		"bill_no":     "not-a-number",
	})
	assert.Empty(t, resp.BillNoStr)
}

func TestAssemble_RecomputesAmountsFromDraft(t *testing.T) {
	draft := Draft{
		CustomerName: "Asha",
		Items: []LineItem{
			{Name: "Blouse", Quantity: 2, UnitPrice: dec("500")},
			{Name: "Kurti", Quantity: 1, UnitPrice: dec("300")},
		},
		Discount: dec("100"),
		Advance:  dec("400"),
	}
	b := Assemble(draft, CreationResponse{ID: "b-1", BillNoStr: "007"})

	assert.Equal(t, "b-1", b.ID)
	assert.Equal(t, "007", b.BillNoStr)
	assert.Equal(t, "1300.00", b.Subtotal.StringFixed(2))
	assert.Equal(t, "1200.00", b.Total.StringFixed(2))
	assert.Equal(t, "800.00", b.Balance.StringFixed(2))
	assert.Equal(t, "pending", b.Status)
}

func TestAssemble_Idempotent(t *testing.T) {
	draft := Draft{
		Items:    []LineItem{{Quantity: 3, UnitPrice: dec("99.99")}},
		Discount: dec("10"),
		Advance:  dec("50"),
	}
	resp := CreationResponse{ID: "b-1", BillNoStr: "015", QRCode: "data:image/png;base64,QQ=="}

	first := Assemble(draft, resp)
	second := Assemble(draft, resp)
	assert.Equal(t, first, second)
}

func TestAssemble_CarriesQRVerbatim(t *testing.T) {
	qr := "data:image/png;base64,iVBORw0KGgo="
	b := Assemble(Draft{}, CreationResponse{QRCode: qr})
	assert.Equal(t, qr, b.QRCode)
}

func TestShowPaymentQR(t *testing.T) {
	paid := Assemble(Draft{
		Items:   []LineItem{{Quantity: 1, UnitPrice: dec("500")}},
		Advance: dec("500"),
	}, CreationResponse{QRCode: "data:image/png;base64,QQ=="})
	require.True(t, paid.Balance.IsZero())
	// payload may be present, but a settled bill never shows it
	assert.False(t, ShowPaymentQR(paid))

	due := Assemble(Draft{
		Items:   []LineItem{{Quantity: 1, UnitPrice: dec("500")}},
		Advance: dec("100"),
	}, CreationResponse{})
	assert.True(t, ShowPaymentQR(due))
}

func TestPaymentURI(t *testing.T) {
	uri := PaymentURI("shop@upi", "My Shop", dec("800"))
	assert.Equal(t, "upi://pay?am=800.00&cu=INR&pa=shop%40upi&pn=My+Shop", uri)
}
