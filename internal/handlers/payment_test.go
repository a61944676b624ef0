package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/facesave/gobackend/internal/handlers"
	"github.com/facesave/gobackend/internal/models"
	"github.com/facesave/gobackend/internal/services"
	"github.com/facesave/gobackend/internal/signing"
	"github.com/facesave/gobackend/internal/store"
)

const webhookPassphrase = "jt7NOE43FZPn"

type paymentFixture struct {
	users    *store.MemoryUserStore
	payments *store.MemoryPaymentStore
	auth     *handlers.Auth
	handler  *handlers.PaymentHandler
	userID   string
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()

	users := store.NewMemoryUserStore()
	payments := store.NewMemoryPaymentStore()
	transactions := store.NewMemoryTransactionStore()
	logger := zap.NewNop()

	gateway := services.NewGatewayService(services.GatewayConfig{
		MerchantID:  "10000100",
		MerchantKey: "46f0cd694581a",
		Passphrase:  webhookPassphrase,
		GatewayURL:  "https://sandbox.gateway.example/eng/process",
		AppBaseURL:  "https://app.example.com",
	}, payments, logger)
	ledger := services.NewLedgerService(users, payments, transactions, webhookPassphrase, logger)
	auth := handlers.NewAuth("test-jwt-secret")

	objID := primitive.NewObjectID()
	user := &models.User{ID: objID, FullName: "Thandi M", Email: "thandi@example.com"}
	users.Seed(objID.Hex(), user)

	return &paymentFixture{
		users:    users,
		payments: payments,
		auth:     auth,
		handler:  handlers.NewPaymentHandler(gateway, ledger, auth),
		userID:   objID.Hex(),
	}
}

func (f *paymentFixture) token(t *testing.T) string {
	t.Helper()
	user, err := f.users.FindByID(context.Background(), f.userID)
	require.NoError(t, err)
	token, err := f.auth.IssueToken(user)
	require.NoError(t, err)
	return token
}

func signedNotification(paymentID, userID, status, amount string) []byte {
	p := signing.Params{}
	p.Set("m_payment_id", paymentID)
	p.Set("pf_payment_id", "PF-"+paymentID)
	p.Set("payment_status", status)
	p.Set("item_name", "Savings deposit")
	p.Set("amount_gross", amount)
	p.Set("custom_str1", userID)
	sig := signing.Sign(p, webhookPassphrase)
	return []byte(sig.ParamString + "&signature=" + sig.Digest)
}

func TestCreateDepositRequiresToken(t *testing.T) {
	f := newPaymentFixture(t)

	req := httptest.NewRequest("POST", "/api/deposit", bytes.NewBufferString(`{"amount":100}`))
	rec := httptest.NewRecorder()
	f.handler.CreateDeposit(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateDepositReturnsRedirect(t *testing.T) {
	f := newPaymentFixture(t)

	req := httptest.NewRequest("POST", "/api/deposit", bytes.NewBufferString(`{"amount":100}`))
	req.Header.Set("Authorization", "Bearer "+f.token(t))
	rec := httptest.NewRecorder()
	f.handler.CreateDeposit(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		PaymentID   string `json:"payment_id"`
		Amount      string `json:"amount"`
		RedirectURL string `json:"redirect_url"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, "100.00", resp.Amount)
	require.Contains(t, resp.RedirectURL, "signature=")

	// the pending entry was recorded before the handler answered
	_, err := f.payments.FindByPaymentID(context.Background(), resp.PaymentID)
	require.NoError(t, err)
}

func TestCreateDepositRejectsBadAmount(t *testing.T) {
	f := newPaymentFixture(t)

	req := httptest.NewRequest("POST", "/api/deposit", bytes.NewBufferString(`{"amount":-5}`))
	req.Header.Set("Authorization", "Bearer "+f.token(t))
	rec := httptest.NewRecorder()
	f.handler.CreateDeposit(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func postNotify(f *paymentFixture, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/api/payment/notify", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	f.handler.Notify(rec, req)
	return rec
}

func TestNotifyAppliesCompletePayment(t *testing.T) {
	f := newPaymentFixture(t)

	rec := postNotify(f, signedNotification("1700000000000", f.userID, "COMPLETE", "100.00"))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "OK", rec.Body.String())

	balance, err := f.users.GetBalance(context.Background(), f.userID)
	require.NoError(t, err)
	require.Equal(t, 100.0, balance)
}

func TestNotifyAcknowledgesNonCompleteStatus(t *testing.T) {
	f := newPaymentFixture(t)

	rec := postNotify(f, signedNotification("1", f.userID, "CANCELLED", "100.00"))

	require.Equal(t, http.StatusOK, rec.Code, "acknowledge so the gateway stops retrying")

	balance, _ := f.users.GetBalance(context.Background(), f.userID)
	require.Zero(t, balance)
}

func TestNotifyRejectsBadSignature(t *testing.T) {
	f := newPaymentFixture(t)

	body := signedNotification("1", f.userID, "COMPLETE", "100.00")
	body = bytes.Replace(body, []byte("amount_gross=100.00"), []byte("amount_gross=999.00"), 1)

	rec := postNotify(f, body)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	balance, _ := f.users.GetBalance(context.Background(), f.userID)
	require.Zero(t, balance)
}

func TestNotifyRejectsMalformedBody(t *testing.T) {
	f := newPaymentFixture(t)

	rec := postNotify(f, []byte("this is not a form body"))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNotifyRejectsUnknownUser(t *testing.T) {
	f := newPaymentFixture(t)

	rec := postNotify(f, signedNotification("1", "652000000000000000000000", "COMPLETE", "100.00"))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNotifyStoreFailureInvitesRetry(t *testing.T) {
	f := newPaymentFixture(t)
	f.users.FailIncrement = true
	f.users.FailSet = true

	rec := postNotify(f, signedNotification("1", f.userID, "COMPLETE", "100.00"))
	require.Equal(t, http.StatusInternalServerError, rec.Code,
		"no acknowledgement, the gateway's retry policy redelivers")
}
