package trust

import "time"

// Verifier orchestrates bundle verification: digest checking, signature
// validation, trust classification, and policy enforcement.
type Verifier struct {
	keyring *Keyring
	policy  Policy
}

// VerifierOption is a functional option for configuring a Verifier.
type VerifierOption func(*Verifier)

// WithKeyring sets the keyring for signature verification.
func WithKeyring(kr *Keyring) VerifierOption {
	return func(v *Verifier) { v.keyring = kr }
}

// WithPolicy sets the trust policy for enforcement.
func WithPolicy(p Policy) VerifierOption {
	return func(v *Verifier) { v.policy = p }
}

// NewVerifier creates a Verifier with the given options.
// Defaults: empty keyring, DefaultPolicy().
func NewVerifier(opts ...VerifierOption) *Verifier {
	v := &Verifier{
		keyring: NewKeyring(),
		policy:  DefaultPolicy(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// VerifyBundle performs full bundle verification: it checks the content
// digest, validates the Ed25519 signature when one is provided, classifies
// the trust level from the keyring, and enforces the policy. All violations
// are collected in the returned Result.
func (v *Verifier) VerifyBundle(content []byte, expectedDigest string, signature, signerKeyPEM []byte) Result {
	result := Result{
		Level:      LevelUnverified,
		VerifiedAt: time.Now(),
	}

	if expectedDigest != "" {
		match, err := VerifyDigest(content, expectedDigest)
		if err != nil {
			result.Violations = append(result.Violations, Violation{
				Field:   "digest",
				Message: err.Error(),
			})
		} else {
			result.DigestMatch = match
			if !match {
				result.Violations = append(result.Violations, Violation{
					Field:   "digest",
					Message: "content digest does not match expected digest",
				})
			}
		}
	}

	if len(signature) > 0 && len(signerKeyPEM) > 0 {
		valid, err := VerifySignature(content, signature, signerKeyPEM)
		if err != nil {
			result.Violations = append(result.Violations, Violation{
				Field:   "signature",
				Message: err.Error(),
			})
		} else {
			result.SignatureValid = valid
			if !valid {
				result.Violations = append(result.Violations, Violation{
					Field:   "signature",
					Message: "signature verification failed",
				})
			}
		}

		if result.SignatureValid {
			if pub, err := ParsePublicKey(signerKeyPEM); err == nil {
				fp := KeyFingerprint(pub)
				result.SignerKey = fp

				if key := v.keyring.Find(fp); key != nil {
					result.Level = LevelVerified
					result.SignerName = key.Name
				} else {
					result.Level = LevelCommunity
				}
			}
		}
	}

	result.Violations = append(result.Violations, v.policy.Enforce(result)...)

	return result
}
