package app

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"notebin/pkg/domain"
	"notebin/pkg/payments"
)

// RecordPayment verifies a gateway callback, upgrades the user's plan,
// and appends the payment record. The signature check happens before any
// mutation; on mismatch nothing changes. The amount comes from the plan
// table, never from the caller. Records append without dedup, so retried
// callbacks show up twice in history.
func (a *App) RecordPayment(user domain.User, orderID, paymentID, signature string, plan domain.Plan) (domain.Payment, domain.User, error) {
	if orderID == "" || paymentID == "" || signature == "" {
		return domain.Payment{}, domain.User{}, ErrMissingFields
	}
	if !domain.ValidPlan(plan) {
		return domain.Payment{}, domain.User{}, ErrInvalidPlan
	}
	if !a.verifier.Verify(orderID, paymentID, signature) {
		return domain.Payment{}, domain.User{}, ErrInvalidSignature
	}
	amount, ok := payments.PlanAmount(plan)
	if !ok {
		return domain.Payment{}, domain.User{}, ErrInvalidPlan
	}
	user.Plan = plan
	user.UpdatedAt = time.Now().UTC()
	if err := a.store.SaveUser(user); err != nil {
		return domain.Payment{}, domain.User{}, fmt.Errorf("save user: %w", err)
	}
	p := domain.Payment{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		OrderID:   orderID,
		PaymentID: paymentID,
		PlanID:    plan,
		Amount:    amount,
		CreatedAt: time.Now().UTC(),
	}
	if err := a.store.AppendPayment(p); err != nil {
		return domain.Payment{}, domain.User{}, fmt.Errorf("append payment: %w", err)
	}
	return p, user, nil
}

// PaymentHistory lists the principal's payments, newest last.
func (a *App) PaymentHistory(user domain.User) ([]domain.Payment, error) {
	return a.store.ListPaymentsByUser(user.ID)
}
