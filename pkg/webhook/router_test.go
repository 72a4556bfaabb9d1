package webhook

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nomad-at-you/ssi-cbdc-bridging/pkg/exchange"
)

type mockHandler struct {
	connections   []ConnectionEvent
	credentials   []CredentialEvent
	presentations []PresentationEvent
	messages      []BasicMessageEvent

	credentialErr   error
	presentationErr error
}

func (m *mockHandler) HandleConnection(_ context.Context, ev ConnectionEvent) error {
	m.connections = append(m.connections, ev)
	return nil
}

func (m *mockHandler) HandleCredential(_ context.Context, ev CredentialEvent) error {
	m.credentials = append(m.credentials, ev)
	return m.credentialErr
}

func (m *mockHandler) HandlePresentation(_ context.Context, ev PresentationEvent) error {
	m.presentations = append(m.presentations, ev)
	return m.presentationErr
}

func (m *mockHandler) HandleBasicMessage(_ context.Context, ev BasicMessageEvent) error {
	m.messages = append(m.messages, ev)
	return nil
}

func newTestServer(t *testing.T) (*mockHandler, *httptest.Server) {
	t.Helper()
	handler := &mockHandler{}
	r := chi.NewRouter()
	NewRouter(handler, exchange.NewRegistry(), zap.NewNop()).RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return handler, srv
}

func post(t *testing.T, srv *httptest.Server, topic, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(srv.URL+"/webhooks/topic/"+topic, "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestRouter_Connections(t *testing.T) {
	handler, srv := newTestServer(t)

	resp := post(t, srv, "connections", `{"connection_id":"conn-1","state":"active","rfc23_state":"completed"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.Len(t, handler.connections, 1)
	assert.Equal(t, "conn-1", handler.connections[0].ConnectionID)
	assert.Equal(t, "completed", handler.connections[0].RFC23State)
}

func TestRouter_TrailingSlash(t *testing.T) {
	handler, srv := newTestServer(t)

	resp := post(t, srv, "connections/", `{"connection_id":"conn-1","rfc23_state":"invitation-sent"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, handler.connections, 1)
}

func TestRouter_DuplicatePresentationSuppressed(t *testing.T) {
	handler, srv := newTestServer(t)

	body := `{"pres_ex_id":"pres-1","state":"presentation-received"}`
	resp := post(t, srv, "present_proof_v2_0", body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp = post(t, srv, "present_proof_v2_0", body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Len(t, handler.presentations, 1, "redelivery must not reach the handler")

	// A state transition for the same exchange goes through.
	post(t, srv, "present_proof_v2_0", `{"pres_ex_id":"pres-1","state":"done"}`)
	assert.Len(t, handler.presentations, 2)
}

func TestRouter_DuplicateCredentialSuppressed(t *testing.T) {
	handler, srv := newTestServer(t)

	body := `{"cred_ex_id":"cred-1","state":"request-received"}`
	post(t, srv, "issue_credential_v2_0", body)
	post(t, srv, "issue_credential_v2_0", body)

	assert.Len(t, handler.credentials, 1)
}

func TestRouter_RedeliveryAfterHandlerError(t *testing.T) {
	handler, srv := newTestServer(t)
	handler.presentationErr = errors.New("verify transport failure")

	body := `{"pres_ex_id":"pres-1","state":"presentation-received"}`
	resp := post(t, srv, "present_proof_v2_0", body)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	// The failed delivery must not count as processed: the agent's
	// redelivery of the same state has to reach the handler again.
	handler.presentationErr = nil
	resp = post(t, srv, "present_proof_v2_0", body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, handler.presentations, 2)

	// Once handled, a further identical delivery is a duplicate again.
	post(t, srv, "present_proof_v2_0", body)
	assert.Len(t, handler.presentations, 2)
}

func TestRouter_CredentialRedeliveryAfterHandlerError(t *testing.T) {
	handler, srv := newTestServer(t)
	handler.credentialErr = errors.New("issue call failed")

	body := `{"cred_ex_id":"cred-1","state":"request-received"}`
	resp := post(t, srv, "issue_credential_v2_0", body)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	handler.credentialErr = nil
	resp = post(t, srv, "issue_credential_v2_0", body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, handler.credentials, 2)
}

func TestRouter_MalformedPayload(t *testing.T) {
	handler, srv := newTestServer(t)

	resp := post(t, srv, "connections", `{"connection_id":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, handler.connections)
}

func TestRouter_MissingRequiredField(t *testing.T) {
	handler, srv := newTestServer(t)

	resp := post(t, srv, "present_proof_v2_0", `{"state":"presentation-received"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, handler.presentations)
}

func TestRouter_UnknownTopic(t *testing.T) {
	handler, srv := newTestServer(t)

	resp := post(t, srv, "revocation_registry", `{"anything":"goes"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, handler.connections)
	assert.Empty(t, handler.credentials)
	assert.Empty(t, handler.presentations)
	assert.Empty(t, handler.messages)
}

func TestRouter_FormatTopicIgnored(t *testing.T) {
	handler, srv := newTestServer(t)

	resp := post(t, srv, "issue_credential_v2_0_indy", `{"cred_ex_indy_id":"x"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, handler.credentials)
}

func TestRouter_BasicMessage(t *testing.T) {
	handler, srv := newTestServer(t)

	post(t, srv, "basicmessages", `{"content":"Hello over DIDComm"}`)
	require.Len(t, handler.messages, 1)
	assert.Equal(t, "Hello over DIDComm", handler.messages[0].Content)
}

func TestRouter_PresentationByFormat(t *testing.T) {
	handler, srv := newTestServer(t)

	post(t, srv, "present_proof_v2_0", `{
		"pres_ex_id": "pres-1",
		"state": "presentation-received",
		"by_format": {
			"pres_request": {"indy": {"name": "Proof of Identity", "version": "1.0",
				"requested_attributes": {"0_name_uuid": {"name": "name"}}}},
			"pres": {"indy": {"requested_proof": {"revealed_attrs": {"0_name_uuid": {"raw": "Alice Smith"}}}}}
		}
	}`)

	require.Len(t, handler.presentations, 1)
	ev := handler.presentations[0]
	assert.Equal(t, "Proof of Identity", ev.ByFormat.PresRequest.Indy.Name)
	assert.Equal(t, "Alice Smith", ev.ByFormat.Pres.Indy.RequestedProof.RevealedAttrs["0_name_uuid"].Raw)
}
