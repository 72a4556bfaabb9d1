package issuer

import (
	"testing"
	"time"
)

func attrValue(s OfferSpec, name string) (string, bool) {
	for _, a := range s.Attributes {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

func TestBuildOffer(t *testing.T) {
	spec := TransactionLicenseSpec("cred-def-1", time.Date(2022, 8, 28, 0, 0, 0, 0, time.UTC), 24)
	offer := BuildOffer("conn-1", spec)

	if offer.ConnectionID != "conn-1" {
		t.Errorf("Unexpected connection id %s", offer.ConnectionID)
	}
	if offer.CredDefID != "cred-def-1" {
		t.Errorf("Unexpected cred def id %s", offer.CredDefID)
	}
	if offer.Filter.Indy.CredDefID != "cred-def-1" {
		t.Errorf("Expected filter pinned to the same cred def, got %s", offer.Filter.Indy.CredDefID)
	}
	if offer.CredentialPreview.Type != CredentialPreviewType {
		t.Errorf("Unexpected preview type %s", offer.CredentialPreview.Type)
	}
	if !offer.AutoRemove {
		t.Error("Expected auto_remove set")
	}
	if offer.Comment != "Offer on cred def id cred-def-1" {
		t.Errorf("Unexpected comment %q", offer.Comment)
	}
	if len(offer.CredentialPreview.Attributes) != len(spec.Attributes) {
		t.Errorf("Expected %d preview attributes, got %d", len(spec.Attributes), len(offer.CredentialPreview.Attributes))
	}
}

func TestIdentitySpec(t *testing.T) {
	spec := IdentitySpec("cred-def-1", time.Date(2022, 8, 28, 0, 0, 0, 0, time.UTC), 24)

	if got, _ := attrValue(spec, "name"); got != "Alice Smith" {
		t.Errorf("Unexpected name %q", got)
	}
	if got, _ := attrValue(spec, "birthdate_dateint"); got != "19980828" {
		t.Errorf("Expected birthdate 24 years before now, got %q", got)
	}
	for _, name := range []string{"maiden_name", "birth_place", "mother_name", "sex"} {
		if _, ok := attrValue(spec, name); !ok {
			t.Errorf("Expected attribute %s in identity offer", name)
		}
	}
}

func TestTransactionLicenseSpec(t *testing.T) {
	spec := TransactionLicenseSpec("cred-def-1", time.Now(), 24)

	if got, _ := attrValue(spec, "credential_type"); got != "CBDC Transaction License" {
		t.Errorf("Unexpected credential_type %q", got)
	}
	if _, ok := attrValue(spec, "pseudonym"); ok {
		t.Error("Transaction license must not carry identity-linking attributes")
	}
}

func TestBridgingLicenseSpec(t *testing.T) {
	link := DemoIdentity()
	spec := BridgingLicenseSpec("cred-def-1", time.Now(), 24, link)

	if got, _ := attrValue(spec, "credential_type"); got != "CBDC Bridging License" {
		t.Errorf("Unexpected credential_type %q", got)
	}
	if got, _ := attrValue(spec, "pseudonym"); got != link.Pseudonym {
		t.Errorf("Unexpected pseudonym %q", got)
	}
	if got, _ := attrValue(spec, "ethAddress"); got != link.EthAddress {
		t.Errorf("Unexpected ethAddress %q", got)
	}
	if got, _ := attrValue(spec, "fabricID"); got != link.FabricID {
		t.Errorf("Unexpected fabricID %q", got)
	}
	if _, ok := attrValue(spec, "privateKey"); !ok {
		t.Error("Expected privateKey bound into the bridging license")
	}
}
