package orchestrator

import (
	"context"

	"github.com/nomad-at-you/ssi-cbdc-bridging/pkg/acapy"
)

// MockAdminClient is a mock implementation of AdminClient
type MockAdminClient struct {
	IssueCredentialFunc    func(ctx context.Context, credExID, comment string) error
	VerifyPresentationFunc func(ctx context.Context, presExID string) (bool, error)
	SendProofRequestFunc   func(ctx context.Context, connectionID string, req acapy.IndyProofRequest) error
}

func (m *MockAdminClient) IssueCredential(ctx context.Context, credExID, comment string) error {
	if m.IssueCredentialFunc != nil {
		return m.IssueCredentialFunc(ctx, credExID, comment)
	}
	return nil
}

func (m *MockAdminClient) VerifyPresentation(ctx context.Context, presExID string) (bool, error) {
	if m.VerifyPresentationFunc != nil {
		return m.VerifyPresentationFunc(ctx, presExID)
	}
	return true, nil
}

func (m *MockAdminClient) SendProofRequest(ctx context.Context, connectionID string, req acapy.IndyProofRequest) error {
	if m.SendProofRequestFunc != nil {
		return m.SendProofRequestFunc(ctx, connectionID, req)
	}
	return nil
}

// MockLedgerClient is a mock implementation of LedgerClient
type MockLedgerClient struct {
	SubmitAddressMappingFunc func(ctx context.Context, user, fabricID, ethAddress string) error
}

func (m *MockLedgerClient) SubmitAddressMapping(ctx context.Context, user, fabricID, ethAddress string) error {
	if m.SubmitAddressMappingFunc != nil {
		return m.SubmitAddressMappingFunc(ctx, user, fabricID, ethAddress)
	}
	return nil
}
