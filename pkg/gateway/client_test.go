package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKeychainID = "df05d3e3-2f31-4a0c-8f6f-5a0d4b7e2c11"

func TestNewAddressMappingRequest(t *testing.T) {
	req := NewAddressMappingRequest(testKeychainID, "userA", "x509::F", "0xE")

	assert.Equal(t, "cbdc", req.ContractName)
	assert.Equal(t, "mychannel", req.ChannelName)
	assert.Equal(t, "appendAddressMapping", req.MethodName)
	assert.Equal(t, "FabricContractInvocationType.SEND", req.InvocationType)
	assert.Equal(t, []string{"x509::F", "0xE"}, req.Params)
	assert.Equal(t, testKeychainID, req.SigningCredential.KeychainID)
	assert.Equal(t, "userA", req.SigningCredential.KeychainRef)
}

func TestClient_SubmitAddressMapping(t *testing.T) {
	var got RunTransactionRequest
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	client, err := New(Config{BaseURL: srv.URL, KeychainID: testKeychainID})
	require.NoError(t, err)

	err = client.SubmitAddressMapping(context.Background(), "userA", "x509::F", "0x1A86D6f4b7b36FB7D34D8b33c8a6ace1467CFA1a")
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/plugins/@hyperledger/cactus-plugin-ledger-connector-fabric/run-transaction", path)
	assert.Equal(t, []string{"x509::F", "0x1A86D6f4b7b36FB7D34D8b33c8a6ace1467CFA1a"}, got.Params)
	assert.Equal(t, "userA", got.SigningCredential.KeychainRef)
	assert.Equal(t, testKeychainID, got.SigningCredential.KeychainID)
}

func TestClient_SubmitAddressMapping_RetriesTransientFailure(t *testing.T) {
	var attempts int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client, err := New(Config{BaseURL: srv.URL, KeychainID: testKeychainID, MaxRetries: 3})
	require.NoError(t, err)

	err = client.SubmitAddressMapping(context.Background(), "userA", "x509::F", "0xE")
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
}

func TestClient_SubmitAddressMapping_PersistentFailure(t *testing.T) {
	var attempts int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		http.Error(w, "keychain entry not found", http.StatusNotFound)
	}))
	defer srv.Close()

	client, err := New(Config{BaseURL: srv.URL, KeychainID: testKeychainID, MaxRetries: 2})
	require.NoError(t, err)

	err = client.SubmitAddressMapping(context.Background(), "userA", "x509::F", "0xE")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Equal(t, 3, attempts, "initial attempt plus two retries")
}

func TestClient_SubmitAddressMapping_NonHexAddressStillSubmitted(t *testing.T) {
	var got RunTransactionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client, err := New(Config{BaseURL: srv.URL, KeychainID: testKeychainID})
	require.NoError(t, err)

	require.NoError(t, client.SubmitAddressMapping(context.Background(), "userA", "x509::F", "not-an-address"))
	assert.Equal(t, []string{"x509::F", "not-an-address"}, got.Params)
}

func TestNew_ConfigValidation(t *testing.T) {
	_, err := New(Config{KeychainID: testKeychainID})
	assert.Error(t, err, "base url is required")

	_, err = New(Config{BaseURL: "http://localhost:4100", KeychainID: "not-a-uuid"})
	assert.Error(t, err, "keychain id must be a uuid")
}
