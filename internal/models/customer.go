package models

import (
	"errors"
	"strings"
)

// ErrInvalidCustomer is returned for customers without a name.
var ErrInvalidCustomer = errors.New("invalid customer: name is required")

// Customer is a counterparty of trades.
type Customer struct {
	ID        string `json:"id"` // RowKey
	UserID    string `json:"user_id"`
	Name      string `json:"name"`
	Phone     string `json:"phone,omitempty"`
	Notes     string `json:"notes,omitempty"`
	CreatedAt string `json:"created_at"`
}

// Validate checks the customer before it is stored.
func (c *Customer) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrInvalidCustomer
	}
	return nil
}

// CustomerPatch carries the editable fields of a customer.
type CustomerPatch struct {
	Name  *string `json:"name,omitempty"`
	Phone *string `json:"phone,omitempty"`
	Notes *string `json:"notes,omitempty"`
}

// Apply writes the patch onto c.
func (p CustomerPatch) Apply(c *Customer) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Phone != nil {
		c.Phone = *p.Phone
	}
	if p.Notes != nil {
		c.Notes = *p.Notes
	}
}
