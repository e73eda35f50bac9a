package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sarrafbook/ledger/internal/config"
	"github.com/sarrafbook/ledger/internal/jalali"
	"github.com/sarrafbook/ledger/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const testUser = "user-1"

func testConfig() *config.Config {
	return &config.Config{
		UploadsContainer:    "uploads",
		StatementsContainer: "statements",
		ImportQueue:         "import-jobs",
		StatementQueue:      "statement-jobs",
		UserEmail:           "owner@example.com",
		DefaultUserID:       testUser,
	}
}

// fixToday pins the clock to 1404/07/23 (2025-10-15 in Tehran).
func fixToday(t *testing.T) {
	t.Helper()
	restore := jalali.SetClock(func() time.Time {
		return time.Date(2025, 10, 15, 12, 0, 0, 0, time.UTC)
	})
	t.Cleanup(restore)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func trade(id, customer, date string) models.Transaction {
	t := models.Transaction{
		ID:              id,
		UserID:          testUser,
		CustomerID:      customer,
		TransactionDate: date,
		Type:            models.TypeBuy,
		Status:          models.StatusIncomplete,
		Amount:          dec("100"),
		Currency:        "USD",
		Rate:            models.KnownRate(dec("58000")),
		Customer:        &models.Customer{ID: customer, Name: "Customer " + customer},
	}
	t.Complete()
	return t
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader = http.NoBody
	if body != nil {
		if s, ok := body.(string); ok {
			r = bytes.NewBufferString(s)
		} else {
			b, err := json.Marshal(body)
			require.NoError(t, err)
			r = bytes.NewReader(b)
		}
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set(PrincipalHeader, testUser)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func queueRequest(t *testing.T, item any) *http.Request {
	t.Helper()
	raw, err := json.Marshal(item)
	require.NoError(t, err)
	body, err := json.Marshal(map[string]any{
		"Data": map[string]any{"queueItem": string(raw)},
	})
	require.NoError(t, err)
	return httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
}
