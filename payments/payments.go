// Package payments wraps the hosted checkout provider behind provider-neutral types.
package payments

// SessionRequest describes a single-line-item hosted checkout.
type SessionRequest struct {
	ProductName   string
	Currency      string
	UnitAmount    int64 // minor units
	Quantity      int64
	Mode          string
	CustomerEmail string
	Metadata      map[string]string
	SuccessURL    string
	CancelURL     string
}

// Session is the provider's view of a checkout session.
type Session struct {
	ID              string
	URL             string
	PaymentIntentID string
	PaymentStatus   string
	AmountTotal     int64 // minor units
	Currency        string
	CustomerEmail   string
	Metadata        map[string]string
}

const (
	ModePayment       = "payment"
	PaymentStatusPaid = "paid"
)
