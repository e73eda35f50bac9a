package handler

import (
	"net/http"
	"strings"

	"github.com/sarrafbook/ledger/internal/logger"
)

// NewRouter registers every API route, the Functions trigger endpoints and a
// catch-all that logs unmatched requests.
func (d *Dependencies) NewRouter() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/customers", d.HandleListCustomers)
	mux.HandleFunc("POST /api/customers", d.HandleCreateCustomer)
	mux.HandleFunc("GET /api/customers/{id}", d.HandleGetCustomer)
	mux.HandleFunc("PUT /api/customers/{id}", d.HandleUpdateCustomer)
	mux.HandleFunc("DELETE /api/customers/{id}", d.HandleDeleteCustomer)
	mux.HandleFunc("POST /api/customers/{id}/statement", d.HandleRequestStatement)

	mux.HandleFunc("GET /api/transactions", d.HandleListTransactions)
	mux.HandleFunc("POST /api/transactions", d.HandleCreateTransaction)
	mux.HandleFunc("GET /api/transactions/{id}", d.HandleGetTransaction)
	mux.HandleFunc("PUT /api/transactions/{id}", d.HandleUpdateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", d.HandleDeleteTransaction)
	mux.HandleFunc("GET /api/transactions/{id}/updates", d.HandleListUpdates)
	mux.HandleFunc("GET /api/transactions/{id}/payments", d.HandleListPayments)
	mux.HandleFunc("POST /api/transactions/{id}/payments", d.HandleAddPayment)
	mux.HandleFunc("DELETE /api/payments/{id}", d.HandleDeletePayment)

	mux.HandleFunc("GET /api/currencies", d.HandleListCurrencies)
	mux.HandleFunc("POST /api/currencies", d.HandleCreateCurrency)
	mux.HandleFunc("DELETE /api/currencies/{id}", d.HandleDeleteCurrency)
	mux.HandleFunc("GET /api/balances", d.HandleListBalances)
	mux.HandleFunc("PUT /api/balances/{currencyId}", d.HandleUpsertBalance)
	mux.HandleFunc("GET /api/statistics", d.HandleStatistics)

	mux.HandleFunc("GET /api/dashboard", d.HandleDashboard)
	mux.HandleFunc("GET /api/calendar", d.HandleCalendar)
	mux.HandleFunc("POST /api/reconcile", d.HandleReconcile)
	mux.HandleFunc("POST /api/upload", d.HandleUpload)

	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Adapter for HTTP Trigger (since enableForwardingHttpRequest is false)
	mux.HandleFunc("/HttpTrigger", d.HandleHttpTrigger(mux))
	mux.HandleFunc("/ProcessImport", d.ProcessImport)
	mux.HandleFunc("/ExportStatement", d.ExportStatement)
	mux.HandleFunc("/NightlyTrigger", d.HandleNightlyTrigger)

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		headers := make(map[string]string)
		for k, v := range r.Header {
			headers[k] = strings.Join(v, ", ")
		}
		logger.FromContext(r.Context()).Warn("unmatched request",
			"method", r.Method,
			"path", r.URL.Path,
			"headers", headers,
			"content_length", r.ContentLength,
		)
		http.NotFound(w, r)
	})

	return mux
}
