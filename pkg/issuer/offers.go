// Package issuer builds credential offers for the two issuing parties. The
// per-party attribute sets are configuration data; the issuing flow itself
// (react to request-received, issue) is shared with the orchestrator session.
package issuer

import (
	"fmt"
	"time"

	"github.com/nomad-at-you/ssi-cbdc-bridging/pkg/acapy"
	"github.com/nomad-at-you/ssi-cbdc-bridging/pkg/proof"
)

// CredentialPreviewType is the DIDComm credential-preview message type.
const CredentialPreviewType = "https://didcomm.org/issue-credential/2.0/credential-preview"

// OfferSpec declaratively describes one credential offer.
type OfferSpec struct {
	CredDefID  string
	Attributes []acapy.PreviewAttribute
}

// BuildOffer assembles the send-offer body for a connection.
func BuildOffer(connectionID string, spec OfferSpec) acapy.CredentialOffer {
	return acapy.CredentialOffer{
		ConnectionID: connectionID,
		CredDefID:    spec.CredDefID,
		Comment:      fmt.Sprintf("Offer on cred def id %s", spec.CredDefID),
		AutoRemove:   true,
		CredentialPreview: acapy.CredentialPreview{
			Type:       CredentialPreviewType,
			Attributes: spec.Attributes,
		},
		Trace:  false,
		Filter: acapy.OfferFilter{Indy: acapy.IndyOfferFilter{CredDefID: spec.CredDefID}},
	}
}

// IdentitySpec is the ministry's identity-credential offer for the demo
// holder, with the birthdate rendered as a dateint of age years before now.
func IdentitySpec(credDefID string, now time.Time, age int) OfferSpec {
	return OfferSpec{
		CredDefID: credDefID,
		Attributes: []acapy.PreviewAttribute{
			{Name: "name", Value: "Alice Smith"},
			{Name: "maiden_name", Value: "Alice Smith"},
			{Name: "birthdate_dateint", Value: fmt.Sprintf("%d", proof.DateInt(now.AddDate(-age, 0, 0)))},
			{Name: "birth_place", Value: "Budapest"},
			{Name: "mother_name", Value: "Dorothy Smith"},
			{Name: "sex", Value: "female"},
		},
	}
}

// TransactionLicenseSpec is the centralbank's transaction-license offer.
func TransactionLicenseSpec(credDefID string, now time.Time, age int) OfferSpec {
	return OfferSpec{
		CredDefID: credDefID,
		Attributes: []acapy.PreviewAttribute{
			{Name: "name", Value: "Alice Smith"},
			{Name: "birthdate_dateint", Value: fmt.Sprintf("%d", proof.DateInt(now.AddDate(-age, 0, 0)))},
			{Name: "type", Value: "Person"},
			{Name: "credential_type", Value: "CBDC Transaction License"},
			{Name: "date", Value: "2022-08-28"},
		},
	}
}

// BridgingLicenseSpec is the centralbank's bridging-license offer. It carries
// the identity-linking attributes later disclosed to the bridge party.
func BridgingLicenseSpec(credDefID string, now time.Time, age int, link LinkedIdentity) OfferSpec {
	return OfferSpec{
		CredDefID: credDefID,
		Attributes: []acapy.PreviewAttribute{
			{Name: "name", Value: "Alice Smith"},
			{Name: "birthdate_dateint", Value: fmt.Sprintf("%d", proof.DateInt(now.AddDate(-age, 0, 0)))},
			{Name: "type", Value: "Person"},
			{Name: "credential_type", Value: "CBDC Bridging License"},
			{Name: "date", Value: "2022-08-28"},
			{Name: proof.AttrPseudonym, Value: link.Pseudonym},
			{Name: proof.AttrEthAddress, Value: link.EthAddress},
			{Name: "privateKey", Value: link.PrivateKey},
			{Name: proof.AttrFabricID, Value: link.FabricID},
		},
	}
}

// LinkedIdentity is the set of ledger identifiers bound into a bridging
// license.
type LinkedIdentity struct {
	Pseudonym  string
	EthAddress string
	PrivateKey string
	FabricID   string
}

// DemoIdentity returns the fixed demo holder identity used by the bridging
// license offer.
func DemoIdentity() LinkedIdentity {
	return LinkedIdentity{
		Pseudonym:  "userA",
		EthAddress: "0x1A86D6f4b5D30A07D1a94bb232eF916AFe5DbDbc",
		PrivateKey: "0xb47c3ba5a816dbbb2271db721e76e6c80e58fe54972d26a42f00bc97a92a2535",
		FabricID:   "x509::/OU=client/OU=org1/OU=department1/CN=userA::/C=US/ST=North Carolina/L=Durham/O=org1.example.com/CN=ca.org1.example.com",
	}
}
