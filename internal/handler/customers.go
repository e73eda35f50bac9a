package handler

import (
	"net/http"

	"github.com/sarrafbook/ledger/internal/ledger"
	"github.com/sarrafbook/ledger/internal/logger"
	"github.com/sarrafbook/ledger/internal/models"
)

// CustomerDetail is a customer with its trades and their totals.
type CustomerDetail struct {
	Customer     models.Customer      `json:"customer"`
	Stats        ledger.Totals        `json:"stats"`
	Transactions []models.Transaction `json:"transactions"`
}

// HandleListCustomers handles GET /api/customers.
func (d *Dependencies) HandleListCustomers(w http.ResponseWriter, r *http.Request) {
	userID, ok := d.userID(w, r)
	if !ok {
		return
	}
	customers, err := d.Ledger.Customers(r.Context(), userID)
	if err != nil {
		writeLedgerError(w, r, "Failed to get customers", err)
		return
	}
	WriteJSON(w, http.StatusOK, customers)
}

// HandleGetCustomer handles GET /api/customers/{id}.
func (d *Dependencies) HandleGetCustomer(w http.ResponseWriter, r *http.Request) {
	userID, ok := d.userID(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")

	customer, err := d.Ledger.Customer(r.Context(), userID, id)
	if err != nil {
		writeLedgerError(w, r, "Failed to get customer", err)
		return
	}
	txs, err := d.Ledger.Transactions(r.Context(), userID)
	if err != nil {
		writeLedgerError(w, r, "Failed to get transactions", err)
		return
	}

	own := ledger.CustomerTransactions(txs, id)
	if own == nil {
		own = []models.Transaction{}
	}
	WriteJSON(w, http.StatusOK, CustomerDetail{
		Customer:     customer,
		Stats:        ledger.CustomerStats(txs, id),
		Transactions: own,
	})
}

// HandleCreateCustomer handles POST /api/customers.
func (d *Dependencies) HandleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	userID, ok := d.userID(w, r)
	if !ok {
		return
	}
	var c models.Customer
	if !decodeJSON(w, r, &c) {
		return
	}

	saved, err := d.Ledger.CreateCustomer(r.Context(), userID, c)
	if err != nil {
		writeLedgerError(w, r, "Failed to create customer", err)
		return
	}
	logger.FromContext(r.Context()).Info("customer created", "customer_id", saved.ID)
	WriteJSON(w, http.StatusCreated, saved)
}

// HandleUpdateCustomer handles PUT /api/customers/{id}.
func (d *Dependencies) HandleUpdateCustomer(w http.ResponseWriter, r *http.Request) {
	userID, ok := d.userID(w, r)
	if !ok {
		return
	}
	var patch models.CustomerPatch
	if !decodeJSON(w, r, &patch) {
		return
	}

	saved, err := d.Ledger.UpdateCustomer(r.Context(), userID, r.PathValue("id"), patch)
	if err != nil {
		writeLedgerError(w, r, "Failed to update customer", err)
		return
	}
	WriteJSON(w, http.StatusOK, saved)
}

// HandleDeleteCustomer handles DELETE /api/customers/{id}. Customers with
// trades are refused with 409.
func (d *Dependencies) HandleDeleteCustomer(w http.ResponseWriter, r *http.Request) {
	userID, ok := d.userID(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")

	if err := d.Ledger.DeleteCustomer(r.Context(), userID, id); err != nil {
		writeLedgerError(w, r, "Failed to delete customer", err)
		return
	}
	logger.FromContext(r.Context()).Info("customer deleted", "customer_id", id)
	WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
