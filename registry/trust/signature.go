package trust

import (
	"crypto/ed25519"
	"encoding/pem"
	"errors"
	"fmt"
)

// ed25519PKIXPrefix is the ASN.1 DER prefix for Ed25519 public keys encoded
// with the PKIX SubjectPublicKeyInfo structure (OID 1.3.101.112).
// This avoids importing crypto/x509 for a single well-known prefix.
var ed25519PKIXPrefix = []byte{
	0x30, 0x2a, 0x30, 0x05, 0x06, 0x03, 0x2b, 0x65,
	0x70, 0x03, 0x21, 0x00,
}

// VerifySignature verifies an Ed25519 signature over content using the given
// PEM-encoded public key. Returns true if the signature is valid.
func VerifySignature(content, signature, publicKeyPEM []byte) (bool, error) {
	pub, err := ParsePublicKey(publicKeyPEM)
	if err != nil {
		return false, fmt.Errorf("parsing public key: %w", err)
	}

	if len(signature) != ed25519.SignatureSize {
		return false, fmt.Errorf("invalid signature length: got %d, want %d", len(signature), ed25519.SignatureSize)
	}

	return ed25519.Verify(pub, content, signature), nil
}

// ParsePublicKey decodes a PEM block into an Ed25519 public key. It accepts
// both raw 32-byte key blocks and PKIX SubjectPublicKeyInfo encoding.
func ParsePublicKey(publicKeyPEM []byte) (ed25519.PublicKey, error) {
	block, _ := pem.Decode(publicKeyPEM)
	if block == nil {
		return nil, errors.New("no PEM block found")
	}

	keyBytes := block.Bytes
	if len(keyBytes) == len(ed25519PKIXPrefix)+ed25519.PublicKeySize {
		for i, b := range ed25519PKIXPrefix {
			if keyBytes[i] != b {
				return nil, errors.New("unrecognized public key encoding")
			}
		}
		keyBytes = keyBytes[len(ed25519PKIXPrefix):]
	}

	if len(keyBytes) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("invalid Ed25519 public key length: got %d, want %d", len(keyBytes), ed25519.PublicKeySize)
	}

	return ed25519.PublicKey(keyBytes), nil
}
