package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sarrafbook/ledger/internal/models"
	"github.com/shopspring/decimal"
)

// entity is a decoded table row. Numbers written by other tools arrive as
// float64, ours are written as strings to keep decimals exact.
type entity map[string]any

func decodeEntity(raw []byte) (entity, error) {
	var e entity
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("failed to decode entity: %w", err)
	}
	return e, nil
}

func (e entity) str(key string) string {
	if v, ok := e[key].(string); ok {
		return v
	}
	return ""
}

func (e entity) dec(key string) decimal.Decimal {
	switch v := e[key].(type) {
	case string:
		d, _ := decimal.NewFromString(v)
		return d
	case float64:
		return decimal.NewFromFloat(v)
	}
	return decimal.Zero
}

func (e entity) boolean(key string) bool {
	v, _ := e[key].(bool)
	return v
}

func (e entity) rate(key string) models.Rate {
	switch v := e[key].(type) {
	case string:
		if d, err := decimal.NewFromString(v); err == nil {
			return models.KnownRate(d)
		}
	case float64:
		return models.KnownRate(decimal.NewFromFloat(v))
	}
	return models.PendingRate()
}

// odataQuote escapes a value for a single-quoted OData literal.
func odataQuote(v string) string {
	return "'" + strings.ReplaceAll(v, "'", "''") + "'"
}

func partitionFilter(userID string) string {
	return "PartitionKey eq " + odataQuote(userID)
}

func customerEntity(c models.Customer) entity {
	return entity{
		"PartitionKey": c.UserID,
		"RowKey":       c.ID,
		"Name":         c.Name,
		"Phone":        c.Phone,
		"Notes":        c.Notes,
		"CreatedAt":    c.CreatedAt,
	}
}

func customerFromEntity(e entity) models.Customer {
	return models.Customer{
		ID:        e.str("RowKey"),
		UserID:    e.str("PartitionKey"),
		Name:      e.str("Name"),
		Phone:     e.str("Phone"),
		Notes:     e.str("Notes"),
		CreatedAt: e.str("CreatedAt"),
	}
}

func transactionEntity(t models.Transaction) entity {
	e := entity{
		"PartitionKey":      t.UserID,
		"RowKey":            t.ID,
		"CustomerID":        t.CustomerID,
		"TransactionDate":   t.TransactionDate,
		"TransactionType":   string(t.Type),
		"TransactionStatus": string(t.Status),
		"Amount":            t.Amount.String(),
		"Currency":          t.Currency,
		"TotalValue":        t.TotalValue.String(),
		"GoodsDelivered":    t.GoodsDelivered,
		"PaymentReceived":   t.PaymentReceived,
		"AmountReceived":    t.AmountReceived.String(),
		"AmountRemaining":   t.AmountRemaining.String(),
		"Description":       t.Description,
		"CreatedAt":         t.CreatedAt,
		"UpdatedAt":         t.UpdatedAt,
	}
	// A missing Rate property is a pending rate.
	if rate, ok := t.Rate.Value(); ok {
		e["Rate"] = rate.String()
	}
	return e
}

func transactionFromEntity(e entity) models.Transaction {
	return models.Transaction{
		ID:              e.str("RowKey"),
		UserID:          e.str("PartitionKey"),
		CustomerID:      e.str("CustomerID"),
		TransactionDate: e.str("TransactionDate"),
		Type:            models.TransactionType(e.str("TransactionType")),
		Status:          models.TransactionStatus(e.str("TransactionStatus")),
		Amount:          e.dec("Amount"),
		Currency:        e.str("Currency"),
		Rate:            e.rate("Rate"),
		TotalValue:      e.dec("TotalValue"),
		GoodsDelivered:  e.boolean("GoodsDelivered"),
		PaymentReceived: e.boolean("PaymentReceived"),
		AmountReceived:  e.dec("AmountReceived"),
		AmountRemaining: e.dec("AmountRemaining"),
		Description:     e.str("Description"),
		CreatedAt:       e.str("CreatedAt"),
		UpdatedAt:       e.str("UpdatedAt"),
	}
}

func paymentEntity(p models.Payment) entity {
	return entity{
		"PartitionKey":  p.UserID,
		"RowKey":        p.ID,
		"TransactionID": p.TransactionID,
		"Amount":        p.Amount.String(),
		"PaymentMethod": string(p.Method),
		"PaymentDate":   p.PaymentDate,
		"Description":   p.Description,
		"CreatedAt":     p.CreatedAt,
	}
}

func paymentFromEntity(e entity) models.Payment {
	return models.Payment{
		ID:            e.str("RowKey"),
		UserID:        e.str("PartitionKey"),
		TransactionID: e.str("TransactionID"),
		Amount:        e.dec("Amount"),
		Method:        models.PaymentMethod(e.str("PaymentMethod")),
		PaymentDate:   e.str("PaymentDate"),
		Description:   e.str("Description"),
		CreatedAt:     e.str("CreatedAt"),
	}
}

func currencyEntity(c models.Currency) entity {
	return entity{
		"PartitionKey": c.UserID,
		"RowKey":       c.ID,
		"Name":         c.Name,
		"Symbol":       c.Symbol,
		"CreatedAt":    c.CreatedAt,
	}
}

func currencyFromEntity(e entity) models.Currency {
	return models.Currency{
		ID:        e.str("RowKey"),
		UserID:    e.str("PartitionKey"),
		Name:      e.str("Name"),
		Symbol:    e.str("Symbol"),
		CreatedAt: e.str("CreatedAt"),
	}
}

// Balances are keyed by currency so each currency has a single row.
func balanceEntity(b models.Balance) entity {
	return entity{
		"PartitionKey": b.UserID,
		"RowKey":       b.CurrencyID,
		"BalanceID":    b.ID,
		"Amount":       b.Amount.String(),
		"CreatedAt":    b.CreatedAt,
		"UpdatedAt":    b.UpdatedAt,
	}
}

func balanceFromEntity(e entity) models.Balance {
	return models.Balance{
		ID:         e.str("BalanceID"),
		UserID:     e.str("PartitionKey"),
		CurrencyID: e.str("RowKey"),
		Amount:     e.dec("Amount"),
		CreatedAt:  e.str("CreatedAt"),
		UpdatedAt:  e.str("UpdatedAt"),
	}
}

func updateEntity(userID string, u models.TransactionUpdate) entity {
	return entity{
		"PartitionKey":  userID,
		"RowKey":        u.ID,
		"TransactionID": u.TransactionID,
		"UpdateType":    u.UpdateType,
		"Description":   u.Description,
		"CreatedAt":     u.CreatedAt,
	}
}

func updateFromEntity(e entity) models.TransactionUpdate {
	return models.TransactionUpdate{
		ID:            e.str("RowKey"),
		TransactionID: e.str("TransactionID"),
		UpdateType:    e.str("UpdateType"),
		Description:   e.str("Description"),
		CreatedAt:     e.str("CreatedAt"),
	}
}
