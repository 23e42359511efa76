package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"notebin/pkg/domain"
)

func signFor(t *testing.T, secret, orderID, paymentID string) string {
	t.Helper()
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestHMACVerifier(t *testing.T) {
	v, err := NewHMACVerifier("gw-secret")
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}
	sig := signFor(t, "gw-secret", "order_1", "pay_1")
	if !v.Verify("order_1", "pay_1", sig) {
		t.Fatal("valid signature rejected")
	}
	if v.Verify("order_1", "pay_2", sig) {
		t.Fatal("signature for different payment accepted")
	}
	if v.Verify("order_1", "pay_1", signFor(t, "other-secret", "order_1", "pay_1")) {
		t.Fatal("signature from wrong secret accepted")
	}
	if v.Verify("", "pay_1", sig) {
		t.Fatal("empty order id accepted")
	}
	if v.Verify("order_1", "pay_1", "") {
		t.Fatal("empty signature accepted")
	}
}

func TestNewHMACVerifierRequiresSecret(t *testing.T) {
	if _, err := NewHMACVerifier("  "); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestPlanAmount(t *testing.T) {
	if amount, ok := PlanAmount(domain.PlanPremium); !ok || amount != 29900 {
		t.Fatalf("premium amount = %d ok=%v", amount, ok)
	}
	if _, ok := PlanAmount(domain.Plan("gold")); ok {
		t.Fatal("unknown plan has a price")
	}
}
