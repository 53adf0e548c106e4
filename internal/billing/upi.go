package billing

import (
	"net/url"

	"github.com/shopspring/decimal"
)

// PaymentURI builds the tap-to-pay deep link encoded into the bill's QR code:
// upi://pay?pa=<payee>&pn=<name>&am=<amount>&cu=INR. Amount is fixed to two
// decimal places; rounding happens only here, at the display edge.
func PaymentURI(upiID, payeeName string, amount decimal.Decimal) string {
	q := url.Values{}
	q.Set("pa", upiID)
	q.Set("pn", payeeName)
	q.Set("am", amount.StringFixed(2))
	q.Set("cu", "INR")
	return "upi://pay?" + q.Encode()
}
