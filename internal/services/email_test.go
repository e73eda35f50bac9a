package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCredential struct{}

func (fakeCredential) GetToken(ctx context.Context, options policy.TokenRequestOptions) (azcore.AccessToken, error) {
	return azcore.AccessToken{Token: "test-token", ExpiresOn: time.Now().Add(time.Hour)}, nil
}

func TestNewEmailService_RequiresSettings(t *testing.T) {
	_, err := NewEmailService("", "sender@test.com", fakeCredential{})
	assert.Error(t, err)

	_, err = NewEmailService("https://acs.test", "", fakeCredential{})
	assert.Error(t, err)
}

func TestEmailService_SendStatementReady(t *testing.T) {
	var got emailRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/emails:send", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	service, err := NewEmailService(server.URL, "sender@test.com", fakeCredential{})
	require.NoError(t, err)

	err = service.SendStatementReady(context.Background(), []string{"owner@test.com"}, "علی <&>", "https://blob.test/s.xlsx")
	require.NoError(t, err)

	assert.Equal(t, "sender@test.com", got.SenderAddress)
	require.Len(t, got.Recipients.To, 1)
	assert.Equal(t, "owner@test.com", got.Recipients.To[0].Address)
	assert.Contains(t, got.Content.Subject, "علی")
	assert.Contains(t, got.Content.HTML, "https://blob.test/s.xlsx")
	assert.NotContains(t, got.Content.HTML, "<&>")
}

func TestEmailService_SendEmailFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	service, err := NewEmailService(server.URL, "sender@test.com", fakeCredential{})
	require.NoError(t, err)

	err = service.SendEmail(context.Background(), []string{"owner@test.com"}, "s", "b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}
