package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sarrafbook/ledger/internal/config"
	"github.com/sarrafbook/ledger/internal/jalali"
	"github.com/sarrafbook/ledger/internal/ledger"
	"github.com/sarrafbook/ledger/internal/logger"
	"github.com/sarrafbook/ledger/internal/models"
	"github.com/sarrafbook/ledger/internal/services"
)

// PrincipalHeader carries the user id set by App Service authentication.
const PrincipalHeader = "X-MS-CLIENT-PRINCIPAL-ID"

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// Dependencies holds the services required by the handlers.
type Dependencies struct {
	Ledger Ledger
	Blob   BlobClient
	Queue  QueueClient
	Email  EmailClient // nil when e-mail is not configured
	Config *config.Config
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", "error", err)
		}
	}
}

// WriteError writes an error response.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"error": message})
}

// userID resolves the caller. It writes 401 and returns false when the
// request carries no identity and no default user is configured.
func (d *Dependencies) userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	if id := r.Header.Get(PrincipalHeader); id != "" {
		return id, true
	}
	if d.Config != nil && d.Config.DefaultUserID != "" {
		return d.Config.DefaultUserID, true
	}
	logger.FromContext(r.Context()).Warn("request without user identity", "path", r.URL.Path)
	WriteError(w, http.StatusUnauthorized, "Unauthorized")
	return "", false
}

// notify returns the report recipients, or nil when e-mail is off.
func (d *Dependencies) notify() []string {
	if d.Email == nil || d.Config == nil || d.Config.UserEmail == "" {
		return nil
	}
	return []string{d.Config.UserEmail}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		logger.FromContext(r.Context()).Warn("invalid request body", "path", r.URL.Path, "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// statusFor maps ledger errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrCustomerHasTransactions):
		return http.StatusConflict
	case errors.Is(err, models.ErrInvalidTransaction),
		errors.Is(err, models.ErrInvalidCustomer),
		errors.Is(err, models.ErrInvalidPayment),
		errors.Is(err, models.ErrInvalidCurrency),
		errors.Is(err, jalali.ErrMalformedDate),
		errors.Is(err, ledger.ErrUnknownCustomer):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// writeLedgerError logs err and writes it with the mapped status. Internal
// errors are reported with msg only.
func writeLedgerError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	status := statusFor(err)
	log := logger.FromContext(r.Context())
	if status == http.StatusInternalServerError {
		log.Error(msg, "path", r.URL.Path, "error", err)
		WriteError(w, status, msg)
		return
	}
	log.Warn(msg, "path", r.URL.Path, "status", status, "error", err)
	WriteError(w, status, err.Error())
}
