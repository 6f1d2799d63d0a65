package trust

import "testing"

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	if p.MinLevel != LevelUnverified || !p.RequireDigest || p.RequireSignature {
		t.Errorf("unexpected default policy: %+v", p)
	}
}

func TestPolicyForLevel(t *testing.T) {
	if p := PolicyForLevel(LevelVerified); p.MinLevel != LevelVerified || !p.RequireSignature {
		t.Errorf("PolicyForLevel(verified) = %+v", p)
	}
	if p := PolicyForLevel(LevelCommunity); p.MinLevel != LevelCommunity || !p.RequireSignature {
		t.Errorf("PolicyForLevel(community) = %+v", p)
	}
	if p := PolicyForLevel(LevelUnverified); p.MinLevel != LevelUnverified || p.RequireSignature {
		t.Errorf("PolicyForLevel(unverified) = %+v", p)
	}
}

func TestPolicyEnforceDigest(t *testing.T) {
	p := DefaultPolicy()

	if v := p.Enforce(Result{DigestMatch: true}); len(v) != 0 {
		t.Errorf("expected no violations, got %v", v)
	}

	violations := p.Enforce(Result{DigestMatch: false})
	if len(violations) != 1 || violations[0].Field != "digest" {
		t.Errorf("expected digest violation, got %v", violations)
	}
}

func TestPolicyEnforceSignature(t *testing.T) {
	p := CommunityPolicy()

	violations := p.Enforce(Result{DigestMatch: true, SignatureValid: false, Level: LevelUnverified})
	found := map[string]bool{}
	for _, v := range violations {
		found[v.Field] = true
	}
	if !found["signature"] || !found["trust_level"] {
		t.Errorf("expected signature and trust_level violations, got %v", violations)
	}

	if v := p.Enforce(Result{DigestMatch: true, SignatureValid: true, Level: LevelCommunity}); len(v) != 0 {
		t.Errorf("expected no violations for community-signed bundle, got %v", v)
	}
}

func TestPolicyEnforceStrict(t *testing.T) {
	p := StrictPolicy()

	// A community signature is not enough under the strict policy.
	violations := p.Enforce(Result{DigestMatch: true, SignatureValid: true, Level: LevelCommunity})
	if len(violations) != 1 || violations[0].Field != "trust_level" {
		t.Errorf("expected trust_level violation, got %v", violations)
	}

	if v := p.Enforce(Result{DigestMatch: true, SignatureValid: true, Level: LevelVerified}); len(v) != 0 {
		t.Errorf("expected no violations for keyring-signed bundle, got %v", v)
	}
}
