package handler

import (
	"net/http"

	"github.com/sarrafbook/ledger/internal/ledger"
	"github.com/sarrafbook/ledger/internal/logger"
	"github.com/sarrafbook/ledger/internal/models"
	"github.com/shopspring/decimal"
)

// HandleListCurrencies handles GET /api/currencies.
func (d *Dependencies) HandleListCurrencies(w http.ResponseWriter, r *http.Request) {
	userID, ok := d.userID(w, r)
	if !ok {
		return
	}
	currencies, err := d.Ledger.Currencies(r.Context(), userID)
	if err != nil {
		writeLedgerError(w, r, "Failed to get currencies", err)
		return
	}
	if currencies == nil {
		currencies = []models.Currency{}
	}
	WriteJSON(w, http.StatusOK, currencies)
}

// HandleCreateCurrency handles POST /api/currencies.
func (d *Dependencies) HandleCreateCurrency(w http.ResponseWriter, r *http.Request) {
	userID, ok := d.userID(w, r)
	if !ok {
		return
	}
	var c models.Currency
	if !decodeJSON(w, r, &c) {
		return
	}
	saved, err := d.Ledger.CreateCurrency(r.Context(), userID, c)
	if err != nil {
		writeLedgerError(w, r, "Failed to create currency", err)
		return
	}
	logger.FromContext(r.Context()).Info("currency created", "currency_id", saved.ID, "symbol", saved.Symbol)
	WriteJSON(w, http.StatusCreated, saved)
}

// HandleDeleteCurrency handles DELETE /api/currencies/{id}.
func (d *Dependencies) HandleDeleteCurrency(w http.ResponseWriter, r *http.Request) {
	userID, ok := d.userID(w, r)
	if !ok {
		return
	}
	if err := d.Ledger.DeleteCurrency(r.Context(), userID, r.PathValue("id")); err != nil {
		writeLedgerError(w, r, "Failed to delete currency", err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// HandleListBalances handles GET /api/balances.
func (d *Dependencies) HandleListBalances(w http.ResponseWriter, r *http.Request) {
	userID, ok := d.userID(w, r)
	if !ok {
		return
	}
	balances, err := d.Ledger.Balances(r.Context(), userID)
	if err != nil {
		writeLedgerError(w, r, "Failed to get balances", err)
		return
	}
	if balances == nil {
		balances = []models.Balance{}
	}
	WriteJSON(w, http.StatusOK, balances)
}

// HandleUpsertBalance handles PUT /api/balances/{currencyId}.
func (d *Dependencies) HandleUpsertBalance(w http.ResponseWriter, r *http.Request) {
	userID, ok := d.userID(w, r)
	if !ok {
		return
	}
	var body struct {
		Amount decimal.Decimal `json:"amount"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	saved, err := d.Ledger.UpsertBalance(r.Context(), userID, models.Balance{
		CurrencyID: r.PathValue("currencyId"),
		Amount:     body.Amount,
	})
	if err != nil {
		writeLedgerError(w, r, "Failed to save balance", err)
		return
	}
	logger.FromContext(r.Context()).Info("balance saved", "currency_id", saved.CurrencyID, "amount", saved.Amount.String())
	WriteJSON(w, http.StatusOK, saved)
}

// HandleStatistics handles GET /api/statistics: one row per defined currency.
func (d *Dependencies) HandleStatistics(w http.ResponseWriter, r *http.Request) {
	userID, ok := d.userID(w, r)
	if !ok {
		return
	}
	txs, err := d.Ledger.Transactions(r.Context(), userID)
	if err != nil {
		writeLedgerError(w, r, "Failed to get transactions", err)
		return
	}
	currencies, err := d.Ledger.Currencies(r.Context(), userID)
	if err != nil {
		writeLedgerError(w, r, "Failed to get currencies", err)
		return
	}
	WriteJSON(w, http.StatusOK, ledger.CurrencyStatistics(userID, txs, currencies))
}
