// Package csvparse reads bulk trade imports.
//
// The expected header is
//
//	Date,Customer,Type,Status,Amount,Currency,Rate,Total,Received,Goods Delivered,Payment Received,Description
//
// Only Date, Customer, Type, Amount and Currency are required columns per row.
// Two of Amount, Rate and Total are enough: the third is derived.
package csvparse

import (
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/sarrafbook/ledger/internal/jalali"
	"github.com/sarrafbook/ledger/internal/models"
	"github.com/sarrafbook/ledger/internal/numerals"
	"github.com/sarrafbook/ledger/internal/reconcile"
)

// ParseCSV parses trades from CSV text. It returns the valid trades and one
// message per rejected row. The customer of each trade is only known by name
// (Transaction.Customer.Name); resolving it to an id is up to the caller.
func ParseCSV(content string) ([]models.Transaction, []string) {
	reader := csv.NewReader(strings.NewReader(strings.TrimPrefix(content, "\ufeff")))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, []string{fmt.Sprintf("Failed to read CSV: %v", err)}
	}

	if len(records) < 2 {
		return []models.Transaction{}, nil
	}

	headers := parseHeaders(records[0])
	var transactions []models.Transaction
	var errors []string

	for i, record := range records[1:] {
		rowNum := i + 2
		if isBlank(record) {
			continue
		}
		if len(record) < len(headers) {
			errors = append(errors, fmt.Sprintf("Row %d: Not enough fields", rowNum))
			continue
		}

		rowMap := make(map[string]string, len(headers))
		for j, header := range headers {
			rowMap[header] = strings.TrimSpace(record[j])
		}

		t, err := mapToTransaction(rowMap)
		if err != nil {
			errors = append(errors, fmt.Sprintf("Row %d: %v", rowNum, err))
			continue
		}
		transactions = append(transactions, *t)
	}

	return transactions, errors
}

func parseHeaders(row []string) []string {
	headers := make([]string, len(row))
	for i, h := range row {
		headers[i] = strings.ToLower(strings.TrimSpace(h))
	}
	return headers
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func mapToTransaction(row map[string]string) (*models.Transaction, error) {
	date, err := jalali.ParseStrict(row["date"])
	if err != nil {
		return nil, fmt.Errorf("invalid Date: %q", row["date"])
	}

	customer := row["customer"]
	if customer == "" {
		return nil, fmt.Errorf("missing Customer")
	}

	txType, err := parseType(row["type"])
	if err != nil {
		return nil, err
	}
	status, err := parseStatus(row["status"])
	if err != nil {
		return nil, err
	}

	currency := row["currency"]
	if currency == "" {
		return nil, fmt.Errorf("missing Currency")
	}

	f := reconcile.Reconcile(row["amount"], row["rate"], row["total"])
	amount, ok := reconcile.Parse(f.Amount)
	if !ok {
		return nil, fmt.Errorf("missing or invalid Amount: %q", row["amount"])
	}

	t := &models.Transaction{
		Customer:        &models.Customer{Name: customer},
		TransactionDate: date.String(),
		Type:            txType,
		Status:          status,
		Amount:          amount,
		Currency:        currency,
		Rate:            models.PendingRate(),
		Description:     row["description"],
	}

	if status == models.StatusConditional {
		if row["rate"] != "" {
			return nil, fmt.Errorf("conditional trade cannot have a Rate")
		}
	} else {
		rate, ok := reconcile.Parse(f.Rate)
		if !ok {
			return nil, fmt.Errorf("two of Amount, Rate and Total are required")
		}
		if f.Mismatch() {
			return nil, fmt.Errorf("Amount × Rate does not equal Total %s", f.Total)
		}
		total, _ := reconcile.Parse(f.Total)
		t.Rate = models.KnownRate(rate)
		t.TotalValue = total
	}

	if v := row["received"]; v != "" {
		received, ok := reconcile.Parse(v)
		if !ok {
			return nil, fmt.Errorf("invalid Received: %q", v)
		}
		t.AmountReceived = received
	}
	if t.GoodsDelivered, err = parseBool("Goods Delivered", row["goods delivered"]); err != nil {
		return nil, err
	}
	if t.PaymentReceived, err = parseBool("Payment Received", row["payment received"]); err != nil {
		return nil, err
	}

	if t.Amount.IsNegative() || t.AmountReceived.IsNegative() {
		return nil, fmt.Errorf("amounts must not be negative")
	}
	return t, nil
}

func parseType(s string) (models.TransactionType, error) {
	for _, tt := range []models.TransactionType{models.TypeBuy, models.TypeSell, models.TypeManual, models.TypeLoan} {
		if strings.EqualFold(s, string(tt)) || s == tt.Label() {
			return tt, nil
		}
	}
	if s == "" {
		return "", fmt.Errorf("missing Type")
	}
	return "", fmt.Errorf("invalid Type: %s", s)
}

func parseStatus(s string) (models.TransactionStatus, error) {
	switch strings.ToLower(s) {
	case "", "incomplete", "ناقص":
		return models.StatusIncomplete, nil
	case "conditional", "شرطی":
		return models.StatusConditional, nil
	case "completed", "complete", "تکمیل":
		return models.StatusCompleted, nil
	}
	return "", fmt.Errorf("invalid Status: %s", s)
}

func parseBool(field, s string) (bool, error) {
	switch strings.ToLower(numerals.ToLatin(s)) {
	case "", "0", "false", "no", "n", "خیر":
		return false, nil
	case "1", "true", "yes", "y", "بله":
		return true, nil
	}
	return false, fmt.Errorf("invalid %s: %s", field, s)
}
