package handler

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/sarrafbook/ledger/internal/logger"
)

// HTTPTriggerRequest is the invocation payload of an HTTP trigger when the
// Functions host does not forward requests directly.
type HTTPTriggerRequest struct {
	Data struct {
		Req struct {
			URL             string              `json:"Url"`
			Method          string              `json:"Method"`
			Query           map[string]string   `json:"Query"`
			Headers         map[string][]string `json:"Headers"`
			Params          map[string]string   `json:"Params"`
			Body            string              `json:"Body"`
			IsBase64Encoded bool                `json:"isBase64Encoded"`
		} `json:"req"`
	} `json:"Data"`
	Metadata map[string]any `json:"Metadata"`
}

// HTTPTriggerResponse is the invocation result handed back to the host.
type HTTPTriggerResponse struct {
	Outputs struct {
		Res struct {
			StatusCode int               `json:"statusCode"`
			Headers    map[string]string `json:"headers"`
			Body       string            `json:"body"`
		} `json:"res"`
	} `json:"Outputs"`
	Logs        []string `json:"Logs,omitempty"`
	ReturnValue any      `json:"ReturnValue,omitempty"`
}

// requestBody decodes the wrapped body. Hosts do not always set
// isBase64Encoded, so base64 is tried first.
func requestBody(body string, isBase64 bool) []byte {
	if body == "" {
		return nil
	}
	if decoded, err := base64.StdEncoding.DecodeString(body); err == nil {
		return decoded
	} else if isBase64 {
		return nil
	}
	return []byte(body)
}

// HandleHttpTrigger unwraps a host invocation into a plain request, serves it
// with next and wraps the recorded response.
func (d *Dependencies) HandleHttpTrigger(next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var invokeReq HTTPTriggerRequest
		if err := json.NewDecoder(r.Body).Decode(&invokeReq); err != nil {
			log.Error("failed to unmarshal HTTP trigger request", "error", err)
			http.Error(w, "Failed to unmarshal request", http.StatusBadRequest)
			return
		}
		reqData := invokeReq.Data.Req

		var bodyReader io.Reader = http.NoBody
		if b := requestBody(reqData.Body, reqData.IsBase64Encoded); b != nil {
			bodyReader = bytes.NewReader(b)
		}

		inner, err := http.NewRequestWithContext(r.Context(), reqData.Method, reqData.URL, bodyReader)
		if err != nil {
			log.Error("failed to create internal request", "method", reqData.Method, "url", reqData.URL, "error", err)
			http.Error(w, "Failed to create internal request", http.StatusInternalServerError)
			return
		}
		for k, vs := range reqData.Headers {
			for _, v := range vs {
				inner.Header.Add(k, v)
			}
		}
		log.Debug("serving wrapped HTTP request", "method", inner.Method, "path", inner.URL.Path)

		recorder := httptest.NewRecorder()
		next.ServeHTTP(recorder, inner)
		res := recorder.Result()
		defer res.Body.Close()
		resBody, _ := io.ReadAll(res.Body)

		var out HTTPTriggerResponse
		out.Outputs.Res.StatusCode = res.StatusCode
		out.Outputs.Res.Headers = make(map[string]string, len(res.Header))
		for k, vs := range res.Header {
			out.Outputs.Res.Headers[k] = strings.Join(vs, ", ")
		}
		out.Outputs.Res.Body = string(resBody)

		WriteJSON(w, http.StatusOK, out)
	}
}
