package models

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidCurrency is returned for currencies without a name or symbol.
var ErrInvalidCurrency = errors.New("invalid currency: name and symbol are required")

// Currency is a user-defined currency.
type Currency struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Name      string `json:"name"`
	Symbol    string `json:"symbol"`
	CreatedAt string `json:"created_at"`
}

// Validate checks the currency before it is stored.
func (c *Currency) Validate() error {
	if strings.TrimSpace(c.Name) == "" || strings.TrimSpace(c.Symbol) == "" {
		return ErrInvalidCurrency
	}
	return nil
}

// Balance is the on-hand amount of one currency. There is at most one per
// currency and user.
type Balance struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id"`
	CurrencyID string          `json:"currency_id"`
	Amount     decimal.Decimal `json:"amount"`
	CreatedAt  string          `json:"created_at"`
	UpdatedAt  string          `json:"updated_at"`
	Currency   *Currency       `json:"currency,omitempty"`
}

// CurrencyStatistics aggregates the trades made in one currency.
type CurrencyStatistics struct {
	ID                string          `json:"id"`
	UserID            string          `json:"user_id"`
	CurrencyID        string          `json:"currency_id"`
	TotalTransactions int             `json:"total_transactions"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	TotalReceived     decimal.Decimal `json:"total_received"`
	TotalRemaining    decimal.Decimal `json:"total_remaining"`
	LastUpdated       string          `json:"last_updated"`
}
