package handler

import (
	"net/http"

	"github.com/sarrafbook/ledger/internal/jalali"
	"github.com/sarrafbook/ledger/internal/ledger"
	"github.com/sarrafbook/ledger/internal/logger"
	"github.com/sarrafbook/ledger/internal/models"
)

// TransactionUpdated is the response of a trade edit.
type TransactionUpdated struct {
	Transaction models.Transaction         `json:"transaction"`
	Updates     []models.TransactionUpdate `json:"updates"`
}

// PaymentList is the response of the payments endpoints.
type PaymentList struct {
	Payments []models.Payment      `json:"payments"`
	Summary  models.PaymentSummary `json:"summary"`
}

// PaymentAdded is the response of a new payment.
type PaymentAdded struct {
	Payment models.Payment        `json:"payment"`
	Summary models.PaymentSummary `json:"summary"`
}

// listQuery reads the q, status, date and customer filters of a trade list.
func listQuery(r *http.Request, txs []models.Transaction) ([]models.Transaction, bool) {
	q := r.URL.Query()
	filter, ok := ledger.ParseFilter(q.Get("status"))
	if !ok {
		return nil, false
	}
	if day := q.Get("date"); day != "" {
		txs = ledger.TransactionsOnDay(txs, day)
	}
	if customer := q.Get("customer"); customer != "" {
		txs = ledger.CustomerTransactions(txs, customer)
	}
	out := ledger.FilterTransactions(txs, q.Get("q"), filter)
	if out == nil {
		out = []models.Transaction{}
	}
	return out, true
}

// HandleListTransactions handles GET /api/transactions.
func (d *Dependencies) HandleListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := d.userID(w, r)
	if !ok {
		return
	}
	txs, err := d.Ledger.Transactions(r.Context(), userID)
	if err != nil {
		writeLedgerError(w, r, "Failed to get transactions", err)
		return
	}
	out, ok := listQuery(r, txs)
	if !ok {
		WriteError(w, http.StatusBadRequest, "Invalid status filter")
		return
	}
	WriteJSON(w, http.StatusOK, out)
}

// HandleGetTransaction handles GET /api/transactions/{id}.
func (d *Dependencies) HandleGetTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := d.userID(w, r)
	if !ok {
		return
	}
	t, err := d.Ledger.Transaction(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeLedgerError(w, r, "Failed to get transaction", err)
		return
	}
	WriteJSON(w, http.StatusOK, t)
}

// HandleCreateTransaction handles POST /api/transactions. A missing date
// defaults to today and the date is stored zero padded.
func (d *Dependencies) HandleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := d.userID(w, r)
	if !ok {
		return
	}
	var t models.Transaction
	if !decodeJSON(w, r, &t) {
		return
	}

	if t.TransactionDate == "" {
		t.TransactionDate = jalali.Today()
	} else if date, err := jalali.ParseStrict(t.TransactionDate); err == nil {
		t.TransactionDate = date.String()
	}
	if t.Status == "" {
		t.Status = models.StatusIncomplete
	}

	saved, err := d.Ledger.CreateTransaction(r.Context(), userID, t)
	if err != nil {
		writeLedgerError(w, r, "Failed to create transaction", err)
		return
	}
	logger.FromContext(r.Context()).Info("transaction created",
		"transaction_id", saved.ID,
		"customer_id", saved.CustomerID,
		"total_value", saved.TotalValue.String(),
	)
	WriteJSON(w, http.StatusCreated, saved)
}

// HandleUpdateTransaction handles PUT /api/transactions/{id}.
func (d *Dependencies) HandleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := d.userID(w, r)
	if !ok {
		return
	}
	var patch models.TransactionPatch
	if !decodeJSON(w, r, &patch) {
		return
	}

	t, updates, err := d.Ledger.UpdateTransaction(r.Context(), userID, r.PathValue("id"), patch)
	if err != nil {
		writeLedgerError(w, r, "Failed to update transaction", err)
		return
	}
	if updates == nil {
		updates = []models.TransactionUpdate{}
	}
	logger.FromContext(r.Context()).Info("transaction updated", "transaction_id", t.ID, "updates", len(updates))
	WriteJSON(w, http.StatusOK, TransactionUpdated{Transaction: t, Updates: updates})
}

// HandleDeleteTransaction handles DELETE /api/transactions/{id}.
func (d *Dependencies) HandleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := d.userID(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	if err := d.Ledger.DeleteTransaction(r.Context(), userID, id); err != nil {
		writeLedgerError(w, r, "Failed to delete transaction", err)
		return
	}
	logger.FromContext(r.Context()).Info("transaction deleted", "transaction_id", id)
	WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// HandleListUpdates handles GET /api/transactions/{id}/updates.
func (d *Dependencies) HandleListUpdates(w http.ResponseWriter, r *http.Request) {
	userID, ok := d.userID(w, r)
	if !ok {
		return
	}
	updates, err := d.Ledger.Updates(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeLedgerError(w, r, "Failed to get transaction updates", err)
		return
	}
	if updates == nil {
		updates = []models.TransactionUpdate{}
	}
	WriteJSON(w, http.StatusOK, updates)
}

// HandleListPayments handles GET /api/transactions/{id}/payments.
func (d *Dependencies) HandleListPayments(w http.ResponseWriter, r *http.Request) {
	userID, ok := d.userID(w, r)
	if !ok {
		return
	}
	payments, summary, err := d.Ledger.Payments(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeLedgerError(w, r, "Failed to get payments", err)
		return
	}
	if payments == nil {
		payments = []models.Payment{}
	}
	WriteJSON(w, http.StatusOK, PaymentList{Payments: payments, Summary: summary})
}

// HandleAddPayment handles POST /api/transactions/{id}/payments. A missing
// payment date defaults to today.
func (d *Dependencies) HandleAddPayment(w http.ResponseWriter, r *http.Request) {
	userID, ok := d.userID(w, r)
	if !ok {
		return
	}
	var p models.Payment
	if !decodeJSON(w, r, &p) {
		return
	}
	if p.PaymentDate == "" {
		p.PaymentDate = jalali.Today()
	}
	if p.Method == "" {
		p.Method = models.PaymentCash
	}

	saved, summary, err := d.Ledger.AddPayment(r.Context(), userID, r.PathValue("id"), p)
	if err != nil {
		writeLedgerError(w, r, "Failed to add payment", err)
		return
	}
	logger.FromContext(r.Context()).Info("payment added",
		"payment_id", saved.ID,
		"transaction_id", saved.TransactionID,
		"remaining", summary.Remaining.String(),
	)
	WriteJSON(w, http.StatusCreated, PaymentAdded{Payment: saved, Summary: summary})
}

// HandleDeletePayment handles DELETE /api/payments/{id}.
func (d *Dependencies) HandleDeletePayment(w http.ResponseWriter, r *http.Request) {
	userID, ok := d.userID(w, r)
	if !ok {
		return
	}
	summary, err := d.Ledger.DeletePayment(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeLedgerError(w, r, "Failed to delete payment", err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"status": "deleted", "summary": summary})
}
