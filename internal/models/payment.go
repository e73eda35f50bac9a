package models

import (
	"errors"

	"github.com/shopspring/decimal"
)

// PaymentMethod is how a partial payment was made.
type PaymentMethod string

const (
	PaymentCash       PaymentMethod = "cash"
	PaymentCardToCard PaymentMethod = "card_to_card"
	PaymentPOS        PaymentMethod = "pos"
)

// Label returns the Persian label shown next to a payment.
func (m PaymentMethod) Label() string {
	switch m {
	case PaymentCash:
		return "💵 نقد"
	case PaymentCardToCard:
		return "💳 کارت به کارت"
	case PaymentPOS:
		return "📱 کارتخوان"
	}
	return string(m)
}

// Valid reports whether m is a known method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCardToCard, PaymentPOS:
		return true
	}
	return false
}

// ErrInvalidPayment wraps payment validation failures.
var ErrInvalidPayment = errors.New("invalid payment")

// Payment is a partial settlement of a transaction.
type Payment struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	TransactionID string          `json:"transaction_id"`
	Amount        decimal.Decimal `json:"amount"`
	Method        PaymentMethod   `json:"payment_method"`
	PaymentDate   string          `json:"payment_date"`
	Description   string          `json:"description,omitempty"`
	CreatedAt     string          `json:"created_at"`
}

// Validate checks a payment before it is stored.
func (p *Payment) Validate() error {
	if p.TransactionID == "" {
		return errors.Join(ErrInvalidPayment, errors.New("transaction_id is required"))
	}
	if !p.Amount.IsPositive() {
		return errors.Join(ErrInvalidPayment, errors.New("amount must be positive"))
	}
	if !p.Method.Valid() {
		return errors.Join(ErrInvalidPayment, errors.New("unknown payment_method"))
	}
	return nil
}

// PaymentSummary is the header of a transaction's payment list.
type PaymentSummary struct {
	Total     decimal.Decimal `json:"total"`
	Paid      decimal.Decimal `json:"paid"`
	Remaining decimal.Decimal `json:"remaining"`
}

// SummarizePayments totals payments against the transaction total.
func SummarizePayments(total decimal.Decimal, payments []Payment) PaymentSummary {
	paid := decimal.Zero
	for _, p := range payments {
		paid = paid.Add(p.Amount)
	}
	return PaymentSummary{
		Total:     total,
		Paid:      paid,
		Remaining: total.Sub(paid),
	}
}
