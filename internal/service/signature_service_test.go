package service

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHMACSignatureVerifier_SignMatchesReference(t *testing.T) {
	secret := "top-secret"
	payload := []byte(`{"eventData":{"paymentReference":"ref_1"}}`)

	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(payload)
	want := hex.EncodeToString(mac.Sum(nil))

	v := NewHMACSignatureVerifier(secret)
	assert.Equal(t, want, v.Sign(payload))
}

func TestHMACSignatureVerifier_Verify(t *testing.T) {
	v := NewHMACSignatureVerifier("top-secret")
	payload := []byte(`{"eventData":{"paymentReference":"ref_1","amountPaid":5000}}`)
	sig := v.Sign(payload)

	assert.True(t, v.Verify(payload, sig))

	// Any tampering with the payload invalidates the signature.
	tampered := []byte(`{"eventData":{"paymentReference":"ref_1","amountPaid":50000}}`)
	assert.False(t, v.Verify(tampered, sig))

	// A signature from a different key is rejected.
	other := NewHMACSignatureVerifier("other-secret")
	assert.False(t, v.Verify(payload, other.Sign(payload)))

	assert.False(t, v.Verify(payload, ""))
	assert.False(t, v.Verify(payload, "not-hex"))
}
