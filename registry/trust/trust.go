// Package trust verifies catalog bundles fetched from registries. It checks
// content digests, validates Ed25519 publisher signatures, and classifies
// bundles into trust levels enforced by a configurable policy.
package trust

import (
	"fmt"
	"strings"
	"time"
)

// Level classifies the trust established for a bundle.
// Higher ordinal values indicate stronger guarantees.
type Level int

const (
	// LevelUnverified indicates no valid signature was found.
	LevelUnverified Level = iota
	// LevelCommunity indicates a valid signature from a key NOT in the keyring.
	LevelCommunity
	// LevelVerified indicates a valid signature from a key IN the keyring.
	LevelVerified
)

// String returns the human-readable name of the trust level.
func (l Level) String() string {
	switch l {
	case LevelUnverified:
		return "unverified"
	case LevelCommunity:
		return "community"
	case LevelVerified:
		return "verified"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// ParseLevel parses a trust level string. Returns an error for unknown values.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "unverified":
		return LevelUnverified, nil
	case "community":
		return LevelCommunity, nil
	case "verified":
		return LevelVerified, nil
	default:
		return 0, fmt.Errorf("unknown trust level: %q", s)
	}
}

// Violation describes a single trust constraint violation.
type Violation struct {
	Field   string
	Message string
}

// Error implements the error interface for Violation.
func (v Violation) Error() string {
	return fmt.Sprintf("trust violation on %s: %s", v.Field, v.Message)
}

// Result holds the outcome of bundle verification.
type Result struct {
	Level          Level
	DigestMatch    bool
	SignatureValid bool
	SignerKey      string // SHA-256 fingerprint of the signing key
	SignerName     string // name from keyring, empty if unknown
	Violations     []Violation
	VerifiedAt     time.Time
}

// OK returns true if verification passed without violations and the digest matched.
func (r Result) OK() bool {
	return len(r.Violations) == 0 && r.DigestMatch
}
