package handler

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func invoke(t *testing.T, h http.Handler, method, url, body string, base64Body bool) HTTPTriggerResponse {
	t.Helper()
	var req HTTPTriggerRequest
	req.Data.Req.Method = method
	req.Data.Req.URL = url
	req.Data.Req.Body = body
	req.Data.Req.IsBase64Encoded = base64Body
	req.Data.Req.Headers = map[string][]string{PrincipalHeader: {testUser}}
	raw, err := json.Marshal(req)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/HttpTrigger", bytes.NewReader(raw)))
	require.Equal(t, http.StatusOK, w.Code)
	return decode[HTTPTriggerResponse](t, w)
}

func TestHandleHttpTrigger_Health(t *testing.T) {
	deps := &Dependencies{Config: testConfig()}

	res := invoke(t, deps.NewRouter(), http.MethodGet, "http://localhost/api/health", "", false)

	assert.Equal(t, http.StatusOK, res.Outputs.Res.StatusCode)
	assert.Equal(t, "OK", res.Outputs.Res.Body)
}

func TestHandleHttpTrigger_Base64Body(t *testing.T) {
	deps := &Dependencies{Config: testConfig()}
	body := base64.StdEncoding.EncodeToString([]byte(`{"amount":"3","rate":"7"}`))

	res := invoke(t, deps.NewRouter(), http.MethodPost, "http://localhost/api/reconcile", body, true)

	require.Equal(t, http.StatusOK, res.Outputs.Res.StatusCode, res.Outputs.Res.Body)
	assert.Equal(t, "application/json", res.Outputs.Res.Headers["Content-Type"])
	var got ReconcileResult
	require.NoError(t, json.Unmarshal([]byte(res.Outputs.Res.Body), &got))
	assert.Equal(t, "21", got.Total)
}

func TestHandleHttpTrigger_PlainBodyAndAuth(t *testing.T) {
	deps := &Dependencies{Ledger: &MockLedger{}, Config: testConfig()}
	deps.Config.DefaultUserID = ""

	res := invoke(t, deps.NewRouter(), http.MethodPost, "http://localhost/api/currencies", `{"name":"Euro","symbol":"EUR"}`, false)

	assert.Equal(t, http.StatusCreated, res.Outputs.Res.StatusCode, res.Outputs.Res.Body)
}

func TestHandleHttpTrigger_BadPayload(t *testing.T) {
	deps := &Dependencies{Config: testConfig()}
	w := httptest.NewRecorder()

	deps.NewRouter().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/HttpTrigger", bytes.NewBufferString("{")))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequestBody(t *testing.T) {
	assert.Nil(t, requestBody("", false))
	assert.Equal(t, []byte("hi"), requestBody(base64.StdEncoding.EncodeToString([]byte("hi")), false))
	assert.Equal(t, []byte("{not base64}"), requestBody("{not base64}", false))
	assert.Nil(t, requestBody("{not base64}", true))
}
