package server

import (
	"net/http"

	"notebin/pkg/domain"
)

type paymentVerifyRequest struct {
	OrderID   string `json:"orderId"`
	PaymentID string `json:"paymentId"`
	Signature string `json:"signature"`
	Plan      string `json:"plan"`
}

func (s *Server) handlePaymentVerify(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req paymentVerifyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	payment, upgraded, err := s.app.RecordPayment(user, req.OrderID, req.PaymentID, req.Signature, domain.Plan(req.Plan))
	if err != nil {
		audit(r, "payment rejected", "userId", user.ID, "orderId", req.OrderID)
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"payment": payment,
		"user":    upgraded,
	})
}

func (s *Server) handlePaymentHistory(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	history, err := s.app.PaymentHistory(user)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": history,
		"count": len(history),
	})
}
