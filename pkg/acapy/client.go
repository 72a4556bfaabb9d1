// Package acapy implements a client for the credential-exchange agent's
// admin API.
//
// It covers the handful of operations the controllers need: issuing an
// offered credential, sending a credential offer, verifying a received
// presentation, sending a proof request and sending a basic message.
// All cryptography and DIDComm transport stays inside the agent.
package acapy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"

	"github.com/creasty/defaults"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Admin defines the admin API operations used by the controllers.
type Admin interface {
	// IssueCredential finalizes an offered credential exchange.
	IssueCredential(ctx context.Context, credExID, comment string) error

	// SendCredentialOffer sends a credential offer over a connection.
	SendCredentialOffer(ctx context.Context, offer CredentialOffer) error

	// VerifyPresentation asks the agent to verify a received presentation
	// and reports the normalized result.
	VerifyPresentation(ctx context.Context, presExID string) (bool, error)

	// SendProofRequest sends an indy proof request over a connection.
	SendProofRequest(ctx context.Context, connectionID string, req IndyProofRequest) error

	// SendBasicMessage sends a plain text message over a connection.
	SendBasicMessage(ctx context.Context, connectionID, content string) error
}

// Client implements Admin against an ACA-Py admin endpoint.
type Client struct {
	cfg        *Config
	httpClient *http.Client
	logger     *zap.Logger
}

// New creates a new admin API client.
func New(cfg Config, opts ...Option) (*Client, error) {
	if err := defaults.Set(&cfg); err != nil {
		return nil, fmt.Errorf("apply config defaults: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	s := applyOptions(opts)

	return &Client{
		cfg:        &cfg,
		httpClient: s.httpClient,
		logger:     s.logger,
	}, nil
}

func (c *Client) IssueCredential(ctx context.Context, credExID, comment string) error {
	if credExID == "" {
		return fmt.Errorf("credential exchange id is required")
	}
	path := fmt.Sprintf("/issue-credential-2.0/records/%s/issue", credExID)
	body := map[string]string{"comment": comment}
	return c.post(ctx, path, body, nil)
}

func (c *Client) SendCredentialOffer(ctx context.Context, offer CredentialOffer) error {
	if offer.ConnectionID == "" {
		return fmt.Errorf("connection id is required")
	}
	return c.post(ctx, "/issue-credential-2.0/send-offer", offer, nil)
}

func (c *Client) VerifyPresentation(ctx context.Context, presExID string) (bool, error) {
	if presExID == "" {
		return false, fmt.Errorf("presentation exchange id is required")
	}
	path := fmt.Sprintf("/present-proof-2.0/records/%s/verify-presentation", presExID)

	var resp VerifyResponse
	if err := c.post(ctx, path, nil, &resp); err != nil {
		return false, err
	}
	return bool(resp.Verified), nil
}

func (c *Client) SendProofRequest(ctx context.Context, connectionID string, req IndyProofRequest) error {
	if connectionID == "" {
		return fmt.Errorf("connection id is required")
	}
	if req.Nonce == "" {
		req.Nonce = NewNonce()
	}
	body := SendProofRequestBody{
		ConnectionID:        connectionID,
		PresentationRequest: PresentationRequest{Indy: req},
	}
	c.logger.Debug("Sending proof request",
		zap.String("connection_id", connectionID),
		zap.String("name", req.Name))
	return c.post(ctx, "/present-proof-2.0/send-request", body, nil)
}

func (c *Client) SendBasicMessage(ctx context.Context, connectionID, content string) error {
	if connectionID == "" {
		return fmt.Errorf("connection id is required")
	}
	path := fmt.Sprintf("/connections/%s/send-message", connectionID)
	return c.post(ctx, path, map[string]string{"content": content}, nil)
}

// post issues a JSON POST against the admin API and decodes the response
// into out when out is non-nil. Non-2xx statuses are returned as errors.
func (c *Client) post(ctx context.Context, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	url := strings.TrimRight(c.cfg.AdminURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("x-api-key", c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("admin POST %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("admin POST %s: unexpected status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(data)))
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response from %s: %w", path, err)
		}
	}
	return nil
}

// NewNonce returns a decimal nonce for a proof request, derived from a
// random UUID as indy nonces must be numeric strings.
func NewNonce() string {
	u := uuid.New()
	return new(big.Int).SetBytes(u[:]).String()
}
