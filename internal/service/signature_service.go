package service

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
)

// HMACSignatureVerifier implements ports.SignatureVerifier using
// HMAC-SHA512 over the raw webhook payload, keyed with the rail provider's
// shared secret.
type HMACSignatureVerifier struct {
	secret []byte
}

// NewHMACSignatureVerifier creates a verifier for the given shared secret.
func NewHMACSignatureVerifier(secret string) *HMACSignatureVerifier {
	return &HMACSignatureVerifier{secret: []byte(secret)}
}

// Sign computes the lowercase hex HMAC-SHA512 digest of payload. Exposed
// so tests and tooling can produce valid signatures.
func (v *HMACSignatureVerifier) Sign(payload []byte) string {
	mac := hmac.New(sha512.New, v.secret)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify checks signature against the recomputed digest of payload.
// Uses constant-time comparison to prevent timing attacks.
func (v *HMACSignatureVerifier) Verify(payload []byte, signature string) bool {
	expected := v.Sign(payload)
	return hmac.Equal([]byte(expected), []byte(signature))
}
