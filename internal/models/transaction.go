package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sarrafbook/ledger/internal/jalali"
	"github.com/sarrafbook/ledger/internal/reconcile"
	"github.com/shopspring/decimal"
)

// TransactionType is the kind of trade.
type TransactionType string

const (
	TypeBuy    TransactionType = "buy"
	TypeSell   TransactionType = "sell"
	TypeManual TransactionType = "manual"
	TypeLoan   TransactionType = "loan"
)

// Label returns the Persian label used in lists and statements.
func (t TransactionType) Label() string {
	switch t {
	case TypeSell:
		return "فروش"
	case TypeBuy:
		return "خرید"
	case TypeManual:
		return "دستی"
	case TypeLoan:
		return "قرض"
	}
	return string(t)
}

// Valid reports whether t is a known type.
func (t TransactionType) Valid() bool {
	switch t {
	case TypeBuy, TypeSell, TypeManual, TypeLoan:
		return true
	}
	return false
}

// TransactionStatus is the settlement state of a trade.
type TransactionStatus string

const (
	StatusIncomplete  TransactionStatus = "incomplete"
	StatusConditional TransactionStatus = "conditional"
	StatusCompleted   TransactionStatus = "completed"
)

// Label returns the Persian label used in statements.
func (s TransactionStatus) Label() string {
	switch s {
	case StatusCompleted:
		return "✓ تکمیل"
	case StatusConditional:
		return "⚠ شرطی"
	}
	return "✗ ناقص"
}

// Valid reports whether s is a known status.
func (s TransactionStatus) Valid() bool {
	switch s {
	case StatusIncomplete, StatusConditional, StatusCompleted:
		return true
	}
	return false
}

// Progress summarizes the delivery and payment flags of a trade.
type Progress string

const (
	ProgressCompleted  Progress = "completed"
	ProgressInProgress Progress = "in_progress"
	ProgressPending    Progress = "pending"
)

// Label returns the Persian badge text.
func (p Progress) Label() string {
	switch p {
	case ProgressCompleted:
		return "تکمیل شده"
	case ProgressInProgress:
		return "در جریان"
	}
	return "ناقص"
}

// ErrInvalidTransaction wraps every validation failure of a trade.
var ErrInvalidTransaction = errors.New("invalid transaction")

// Transaction is a single currency trade with a customer.
type Transaction struct {
	ID              string            `json:"id"`
	UserID          string            `json:"user_id"`
	CustomerID      string            `json:"customer_id"`
	TransactionDate string            `json:"transaction_date"` // Jalali YYYY/MM/DD
	Type            TransactionType   `json:"transaction_type"`
	Status          TransactionStatus `json:"transaction_status"`
	Amount          decimal.Decimal   `json:"amount"`
	Currency        string            `json:"currency"`
	Rate            Rate              `json:"rate"`
	TotalValue      decimal.Decimal   `json:"total_value"`
	GoodsDelivered  bool              `json:"goods_delivered"`
	PaymentReceived bool              `json:"payment_received"`
	AmountReceived  decimal.Decimal   `json:"amount_received"`
	AmountRemaining decimal.Decimal   `json:"amount_remaining"`
	Description     string            `json:"description,omitempty"`
	CreatedAt       string            `json:"created_at"`
	UpdatedAt       string            `json:"updated_at"`
	Customer        *Customer         `json:"customer,omitempty"`
	Payments        []Payment         `json:"payments,omitempty"`
	Mismatch        bool              `json:"total_mismatch,omitempty"` // Calculated
}

// Total returns amount * rate. It is only computable for trades with a known
// rate that are not conditional.
func (t *Transaction) Total() (decimal.Decimal, bool) {
	if t.Status == StatusConditional {
		return decimal.Zero, false
	}
	rate, ok := t.Rate.Value()
	if !ok {
		return decimal.Zero, false
	}
	return t.Amount.Mul(rate), true
}

// TotalMismatch reports whether the stored total disagrees with amount * rate.
func (t *Transaction) TotalMismatch() bool {
	if t.Status == StatusConditional {
		return false
	}
	rate, ok := t.Rate.Value()
	if !ok {
		return false
	}
	return !reconcile.Consistent(t.Amount, rate, t.TotalValue)
}

// Complete fills the derived fields: total value when it is computable and
// was left empty, and the remaining amount.
func (t *Transaction) Complete() {
	if total, ok := t.Total(); ok && t.TotalValue.IsZero() {
		t.TotalValue = total
	}
	t.AmountRemaining = t.TotalValue.Sub(t.AmountReceived)
	t.Mismatch = t.TotalMismatch()
}

// Progress derives the status badge from the delivery and payment flags.
func (t *Transaction) Progress() Progress {
	switch {
	case t.GoodsDelivered && t.PaymentReceived:
		return ProgressCompleted
	case t.GoodsDelivered || t.PaymentReceived:
		return ProgressInProgress
	}
	return ProgressPending
}

// Day returns the comparison key of the transaction date.
func (t *Transaction) Day() string {
	return jalali.Normalize(t.TransactionDate)
}

// Validate checks the rules a trade must satisfy before it is stored.
func (t *Transaction) Validate() error {
	var problems []string
	if t.CustomerID == "" {
		problems = append(problems, "customer_id is required")
	}
	if _, err := jalali.ParseStrict(t.TransactionDate); err != nil {
		problems = append(problems, fmt.Sprintf("transaction_date %q is not a valid date", t.TransactionDate))
	}
	if !t.Type.Valid() {
		problems = append(problems, fmt.Sprintf("unknown transaction_type %q", t.Type))
	}
	if !t.Status.Valid() {
		problems = append(problems, fmt.Sprintf("unknown transaction_status %q", t.Status))
	}
	if t.Status == StatusConditional && t.Rate.IsKnown() {
		problems = append(problems, "conditional transactions cannot carry a rate")
	}
	if t.Amount.IsNegative() {
		problems = append(problems, "amount must not be negative")
	}
	if strings.TrimSpace(t.Currency) == "" {
		problems = append(problems, "currency is required")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidTransaction, strings.Join(problems, "; "))
	}
	return nil
}

// TransactionPatch carries the editable fields of an existing trade. Nil
// fields are left unchanged. A rate sent as null makes the rate pending.
type TransactionPatch struct {
	GoodsDelivered  *bool              `json:"goods_delivered,omitempty"`
	PaymentReceived *bool              `json:"payment_received,omitempty"`
	AmountReceived  *decimal.Decimal   `json:"amount_received,omitempty"`
	Description     *string            `json:"description,omitempty"`
	Status          *TransactionStatus `json:"transaction_status,omitempty"`
	Rate            RatePatch          `json:"rate"`
}

// Apply writes the patch onto t and returns the audit updates the change
// implies.
func (p TransactionPatch) Apply(t *Transaction) []TransactionUpdate {
	var updates []TransactionUpdate

	if p.GoodsDelivered != nil && *p.GoodsDelivered != t.GoodsDelivered {
		t.GoodsDelivered = *p.GoodsDelivered
		updates = append(updates, NewGoodsUpdate(t.ID, t.GoodsDelivered))
	}
	if p.PaymentReceived != nil && *p.PaymentReceived != t.PaymentReceived {
		t.PaymentReceived = *p.PaymentReceived
		updates = append(updates, NewPaymentUpdate(t.ID, t.PaymentReceived))
	}
	if p.AmountReceived != nil {
		t.AmountReceived = *p.AmountReceived
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Rate.Set {
		t.Rate = p.Rate.Rate
		t.TotalValue = decimal.Zero
	}
	if p.Status != nil {
		t.Status = *p.Status
		if t.Status == StatusConditional {
			t.Rate = PendingRate()
			t.TotalValue = decimal.Zero
		}
	}
	return updates
}
