package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"notebin/pkg/domain"
)

// Verifier checks a payment gateway signature for an order/payment pair.
// Verification is mandatory; callers must treat a mismatch as a hard
// failure, never as a soft warning.
type Verifier interface {
	Verify(orderID, paymentID, signature string) bool
}

// HMACVerifier implements the gateway's signature scheme:
// hex(HMAC-SHA256(orderID + "|" + paymentID, keySecret)).
type HMACVerifier struct {
	keySecret []byte
}

// NewHMACVerifier builds a verifier from the gateway key secret.
func NewHMACVerifier(keySecret string) (*HMACVerifier, error) {
	if strings.TrimSpace(keySecret) == "" {
		return nil, errors.New("payment key secret is required")
	}
	return &HMACVerifier{keySecret: []byte(keySecret)}, nil
}

// Verify recomputes the signature and compares it in constant time.
func (v *HMACVerifier) Verify(orderID, paymentID, signature string) bool {
	orderID = strings.TrimSpace(orderID)
	paymentID = strings.TrimSpace(paymentID)
	signature = strings.TrimSpace(signature)
	if orderID == "" || paymentID == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, v.keySecret)
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// planPrices is the fixed plan -> price table (smallest currency unit).
// Amounts are derived here, never taken from caller input.
var planPrices = map[domain.Plan]int64{
	domain.PlanFree:       0,
	domain.PlanPremium:    29900,
	domain.PlanEnterprise: 99900,
}

// PlanAmount returns the charge for a plan tier.
func PlanAmount(plan domain.Plan) (int64, bool) {
	amount, ok := planPrices[plan]
	return amount, ok
}
