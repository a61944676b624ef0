package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/facesave/gobackend/internal/services"
)

type PaymentHandler struct {
	gateway *services.GatewayService
	ledger  *services.LedgerService
	auth    *Auth
}

func NewPaymentHandler(gateway *services.GatewayService, ledger *services.LedgerService, auth *Auth) *PaymentHandler {
	return &PaymentHandler{gateway: gateway, ledger: ledger, auth: auth}
}

// CreateDeposit validates the request and answers with the signed gateway
// redirect URL for the authenticated user.
func (h *PaymentHandler) CreateDeposit(w http.ResponseWriter, r *http.Request) {
	claims, err := h.auth.VerifyRequest(r)
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusUnauthorized)
		return
	}
	userID, ok := userIDFromClaims(claims)
	if !ok {
		http.Error(w, `{"error":"invalid user_id in token"}`, http.StatusUnauthorized)
		return
	}

	var req struct {
		Amount float64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"Invalid request body"}`, http.StatusBadRequest)
		return
	}

	intent, err := h.gateway.CreateDeposit(r.Context(), userID, req.Amount)
	if err != nil {
		if errors.Is(err, services.ErrInvalidAmount) || errors.Is(err, services.ErrMissingUserID) {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
			return
		}
		http.Error(w, `{"error":"Failed to create deposit"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(intent)
}

// Notify is the gateway's server-to-server callback. The body is raw
// form-urlencoded text; the response status drives the gateway's retry
// logic, so each verdict picks its code deliberately.
func (h *PaymentHandler) Notify(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	result := h.ledger.ApplyNotification(r.Context(), body)

	w.Header().Set("Content-Type", "text/plain")
	switch result.Verdict {
	case services.VerdictApplied, services.VerdictIgnored:
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	case services.VerdictStoreFailure:
		// Not acknowledged: the gateway retries later.
		http.Error(w, "temporary failure", http.StatusInternalServerError)
	default:
		// Malformed body, bad signature, unknown user: reject without
		// acknowledgement so the failure surfaces instead of silently
		// retrying forever.
		http.Error(w, "rejected", http.StatusBadRequest)
	}
}
