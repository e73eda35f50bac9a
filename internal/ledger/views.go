package ledger

import (
	"cmp"
	"slices"
	"strings"

	"github.com/sarrafbook/ledger/internal/jalali"
	"github.com/sarrafbook/ledger/internal/models"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
)

// Totals sums the money fields of a set of trades.
type Totals struct {
	Count     int             `json:"count"`
	Total     decimal.Decimal `json:"total"`
	Received  decimal.Decimal `json:"received"`
	Remaining decimal.Decimal `json:"remaining"`
}

// Dashboard is the header of the transaction list.
type Dashboard struct {
	Totals
	CompleteCount int `json:"complete_count"`
	PendingCount  int `json:"pending_count"`
}

// Filter selects trades by their progress.
type Filter string

const (
	FilterAll      Filter = "all"
	FilterComplete Filter = "complete"
	FilterPartial  Filter = "partial"
	FilterPending  Filter = "pending"
)

// ParseFilter reads a filter query value. Empty means FilterAll.
func ParseFilter(s string) (Filter, bool) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FilterAll, true
	case FilterAll, FilterComplete, FilterPartial, FilterPending:
		return f, true
	}
	return FilterAll, false
}

func (f Filter) match(t *models.Transaction) bool {
	switch f {
	case FilterComplete:
		return t.Progress() == models.ProgressCompleted
	case FilterPartial:
		return t.Progress() == models.ProgressInProgress
	case FilterPending:
		return t.Progress() == models.ProgressPending
	}
	return true
}

// Sum totals txs. Trades are expected to be completed (see
// models.Transaction.Complete).
func Sum(txs []models.Transaction) Totals {
	tot := Totals{Total: decimal.Zero, Received: decimal.Zero, Remaining: decimal.Zero}
	for _, t := range txs {
		tot.Count++
		tot.Total = tot.Total.Add(t.TotalValue)
		tot.Received = tot.Received.Add(t.AmountReceived)
		tot.Remaining = tot.Remaining.Add(t.AmountRemaining)
	}
	return tot
}

// TransactionsOnDay returns the trades whose date is the same day as day.
// Dates are compared in normalized form so "1404/7/3" matches "1404/07/03".
func TransactionsOnDay(txs []models.Transaction, day string) []models.Transaction {
	want := jalali.Normalize(day)
	var out []models.Transaction
	for _, t := range txs {
		if t.Day() == want {
			out = append(out, t)
		}
	}
	return out
}

// TransactionDates returns the distinct normalized dates of txs, ascending.
func TransactionDates(txs []models.Transaction) []string {
	dates := make([]string, 0, len(txs))
	for _, t := range txs {
		dates = append(dates, t.Day())
	}
	slices.Sort(dates)
	return slices.Compact(dates)
}

// DailyStats totals the trades of one day.
func DailyStats(txs []models.Transaction, day string) Totals {
	return Sum(TransactionsOnDay(txs, day))
}

// contains reports a case-folded substring match. Casers are stateful, so a
// fresh one is made per call.
func contains(haystack, needle string) bool {
	folder := cases.Fold()
	return strings.Contains(folder.String(haystack), folder.String(needle))
}

// FilterTransactions keeps trades whose customer name or description contains
// query (case-insensitive) and whose progress matches filter.
func FilterTransactions(txs []models.Transaction, query string, filter Filter) []models.Transaction {
	query = strings.TrimSpace(query)
	var out []models.Transaction
	for i := range txs {
		t := &txs[i]
		if query != "" {
			name := ""
			if t.Customer != nil {
				name = t.Customer.Name
			}
			if !contains(name, query) && !contains(t.Description, query) {
				continue
			}
		}
		if !filter.match(t) {
			continue
		}
		out = append(out, *t)
	}
	return out
}

// DashboardStats totals all trades. Pending counts every trade that is not
// complete.
func DashboardStats(txs []models.Transaction) Dashboard {
	d := Dashboard{Totals: Sum(txs)}
	for i := range txs {
		if txs[i].Progress() == models.ProgressCompleted {
			d.CompleteCount++
		} else {
			d.PendingCount++
		}
	}
	return d
}

// CustomerTransactions returns the trades of one customer.
func CustomerTransactions(txs []models.Transaction, customerID string) []models.Transaction {
	var out []models.Transaction
	for _, t := range txs {
		if t.CustomerID == customerID {
			out = append(out, t)
		}
	}
	return out
}

// CustomerStats totals the trades of one customer.
func CustomerStats(txs []models.Transaction, customerID string) Totals {
	return Sum(CustomerTransactions(txs, customerID))
}

// CurrencyStatistics aggregates trades per defined currency. A trade belongs
// to a currency when its currency field equals the currency's id, symbol or
// name.
func CurrencyStatistics(userID string, txs []models.Transaction, currencies []models.Currency) []models.CurrencyStatistics {
	out := make([]models.CurrencyStatistics, 0, len(currencies))
	for _, c := range currencies {
		st := models.CurrencyStatistics{
			ID:             c.ID,
			UserID:         userID,
			CurrencyID:     c.ID,
			TotalAmount:    decimal.Zero,
			TotalReceived:  decimal.Zero,
			TotalRemaining: decimal.Zero,
		}
		for _, t := range txs {
			if !strings.EqualFold(t.Currency, c.ID) && !strings.EqualFold(t.Currency, c.Symbol) && !strings.EqualFold(t.Currency, c.Name) {
				continue
			}
			st.TotalTransactions++
			st.TotalAmount = st.TotalAmount.Add(t.Amount)
			st.TotalReceived = st.TotalReceived.Add(t.AmountReceived)
			st.TotalRemaining = st.TotalRemaining.Add(t.AmountRemaining)
			st.LastUpdated = max(st.LastUpdated, t.UpdatedAt)
		}
		out = append(out, st)
	}
	return out
}

// SortByDateDesc orders trades newest first, by date and then creation time.
func SortByDateDesc(txs []models.Transaction) {
	slices.SortStableFunc(txs, func(a, b models.Transaction) int {
		if c := cmp.Compare(b.Day(), a.Day()); c != 0 {
			return c
		}
		return cmp.Compare(b.CreatedAt, a.CreatedAt)
	})
}

// SortPayments orders payments oldest first.
func SortPayments(payments []models.Payment) {
	slices.SortStableFunc(payments, func(a, b models.Payment) int {
		if c := cmp.Compare(jalali.Normalize(a.PaymentDate), jalali.Normalize(b.PaymentDate)); c != 0 {
			return c
		}
		return cmp.Compare(a.CreatedAt, b.CreatedAt)
	})
}
