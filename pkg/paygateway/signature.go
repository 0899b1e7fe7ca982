package paygateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Signer derives and checks payment callback signatures. The signature is
// hex(HMAC-SHA256(secret, gatewayOrderID + "|" + paymentID)).
type Signer struct {
	secret []byte
}

// NewSigner creates a Signer keyed by the gateway secret.
func NewSigner(secret string) Signer {
	return Signer{secret: []byte(secret)}
}

// Sign returns the expected signature for a payment.
func (s Signer) Sign(gatewayOrderID, paymentID string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(gatewayOrderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether signature matches the payment. Comparison is constant time.
func (s Signer) Verify(gatewayOrderID, paymentID, signature string) bool {
	expected := s.Sign(gatewayOrderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}
