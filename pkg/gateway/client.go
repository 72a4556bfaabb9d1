// Package gateway implements the client for the external ledger-connector
// gateway that records the mapping between a credential-linked pseudonym and
// its Fabric and Ethereum identifiers.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/cenkalti/backoff/v4"
	"github.com/creasty/defaults"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/nomad-at-you/ssi-cbdc-bridging/internal/metrics"
)

// Fabric contract invocation constants for the address-mapping transaction.
const (
	contractName   = "cbdc"
	channelName    = "mychannel"
	methodName     = "appendAddressMapping"
	invocationType = "FabricContractInvocationType.SEND"

	runTransactionPath = "/api/v1/plugins/@hyperledger/cactus-plugin-ledger-connector-fabric/run-transaction"
)

// RunTransactionRequest is the gateway's contract-invocation payload.
type RunTransactionRequest struct {
	ContractName      string            `json:"contractName"`
	ChannelName       string            `json:"channelName"`
	Params            []string          `json:"params"`
	MethodName        string            `json:"methodName"`
	InvocationType    string            `json:"invocationType"`
	SigningCredential SigningCredential `json:"signingCredential"`
}

// SigningCredential references the gateway-side keychain entry that signs
// the transaction.
type SigningCredential struct {
	KeychainID  string `json:"keychainId"`
	KeychainRef string `json:"keychainRef"`
}

// NewAddressMappingRequest builds the appendAddressMapping invocation for
// the given disclosed attributes. user becomes the keychain reference.
func NewAddressMappingRequest(keychainID, user, fabricID, ethAddress string) RunTransactionRequest {
	return RunTransactionRequest{
		ContractName:   contractName,
		ChannelName:    channelName,
		Params:         []string{fabricID, ethAddress},
		MethodName:     methodName,
		InvocationType: invocationType,
		SigningCredential: SigningCredential{
			KeychainID:  keychainID,
			KeychainRef: user,
		},
	}
}

// Client submits address mappings to the ledger-connector gateway.
type Client struct {
	cfg        *Config
	httpClient *http.Client
	logger     *zap.Logger
}

// New creates a new gateway client.
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

// SubmitAddressMapping registers the mapping between a pseudonym and its
// Fabric/Ethereum identifiers. The submission is retried with exponential
// backoff up to the configured number of attempts; a persistent failure is
// returned to the caller instead of being swallowed.
func (c *Client) SubmitAddressMapping(ctx context.Context, user, fabricID, ethAddress string) error {
	if ethAddress != "" && !common.IsHexAddress(ethAddress) {
		// Preserved behavior: the mapping is recorded even when the
		// disclosed address does not parse.
		c.logger.Warn("Disclosed eth address is not a hex address",
			zap.String("eth_address", ethAddress))
	}

	req := NewAddressMappingRequest(c.cfg.KeychainID, user, fabricID, ethAddress)
	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal run-transaction request: %w", err)
	}

	c.logger.Info("Submitting address mapping",
		zap.String("user", user),
		zap.String("fabric_id", fabricID),
		zap.String("eth_address", ethAddress))

	operation := func() error {
		return c.postRunTransaction(ctx, payload)
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.cfg.MaxRetries), ctx)

	if err := backoff.Retry(operation, policy); err != nil {
		metrics.GatewaySubmissions.WithLabelValues("error").Inc()
		return fmt.Errorf("submit address mapping: %w", err)
	}

	metrics.GatewaySubmissions.WithLabelValues("success").Inc()
	return nil
}

func (c *Client) postRunTransaction(ctx context.Context, payload []byte) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	url := strings.TrimRight(c.cfg.BaseURL, "/") + runTransactionPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return backoff.Permanent(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gateway POST: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read gateway response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("gateway returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	c.logger.Info("Gateway accepted transaction", zap.ByteString("response", body))
	return nil
}
