package trust

import "fmt"

// Policy defines the minimum trust requirements for installing a bundle.
type Policy struct {
	MinLevel         Level
	RequireDigest    bool
	RequireSignature bool
}

// DefaultPolicy accepts unsigned bundles but requires a matching digest.
// Signed bundles are still classified and surfaced in the result.
func DefaultPolicy() Policy {
	return Policy{
		MinLevel:      LevelUnverified,
		RequireDigest: true,
	}
}

// StrictPolicy requires a signature from a key in the keyring and a
// matching digest.
func StrictPolicy() Policy {
	return Policy{
		MinLevel:         LevelVerified,
		RequireDigest:    true,
		RequireSignature: true,
	}
}

// CommunityPolicy requires any valid signature and a matching digest.
func CommunityPolicy() Policy {
	return Policy{
		MinLevel:         LevelCommunity,
		RequireDigest:    true,
		RequireSignature: true,
	}
}

// PolicyForLevel returns the policy enforcing the given minimum level.
func PolicyForLevel(l Level) Policy {
	switch l {
	case LevelVerified:
		return StrictPolicy()
	case LevelCommunity:
		return CommunityPolicy()
	default:
		return DefaultPolicy()
	}
}

// Enforce checks a verification result against the policy.
// It returns all violations found, not just the first.
func (p Policy) Enforce(result Result) []Violation {
	var violations []Violation

	if p.RequireDigest && !result.DigestMatch {
		violations = append(violations, Violation{
			Field:   "digest",
			Message: "digest verification failed but policy requires it",
		})
	}

	if p.RequireSignature && !result.SignatureValid {
		violations = append(violations, Violation{
			Field:   "signature",
			Message: "bundle is not validly signed but policy requires a signature",
		})
	}

	if result.Level < p.MinLevel {
		violations = append(violations, Violation{
			Field:   "trust_level",
			Message: fmt.Sprintf("trust level %q is below minimum %q", result.Level, p.MinLevel),
		})
	}

	return violations
}
