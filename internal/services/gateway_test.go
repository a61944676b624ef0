package services

import (
	"context"
	"math"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/facesave/gobackend/internal/signing"
	"github.com/facesave/gobackend/internal/store"
)

var testGatewayConfig = GatewayConfig{
	MerchantID:  "10000100",
	MerchantKey: "46f0cd694581a",
	Passphrase:  "jt7NOE43FZPn",
	GatewayURL:  "https://sandbox.gateway.example/eng/process",
	AppBaseURL:  "https://app.example.com",
}

func newTestGateway(payments store.PaymentStore) *GatewayService {
	svc := NewGatewayService(testGatewayConfig, payments, zap.NewNop())
	svc.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return svc
}

func TestCreateDepositRejectsBadAmount(t *testing.T) {
	svc := newTestGateway(store.NewMemoryPaymentStore())

	for _, amount := range []float64{0, -5, math.NaN(), math.Inf(1)} {
		_, err := svc.CreateDeposit(context.Background(), "user-1", amount)
		require.ErrorIs(t, err, ErrInvalidAmount, "amount %v", amount)
	}
}

func TestCreateDepositRejectsMissingUserID(t *testing.T) {
	svc := newTestGateway(store.NewMemoryPaymentStore())

	_, err := svc.CreateDeposit(context.Background(), "   ", 100)
	require.ErrorIs(t, err, ErrMissingUserID)
}

func TestCreateDepositFormatsAmountBeforeSigning(t *testing.T) {
	svc := newTestGateway(store.NewMemoryPaymentStore())

	intent, err := svc.CreateDeposit(context.Background(), "user-1", 100)
	require.NoError(t, err)
	require.Equal(t, "100.00", intent.Amount)
	require.Contains(t, intent.RedirectURL, "amount=100.00")
}

func TestCreateDepositRedirectFieldOrderAndSignature(t *testing.T) {
	svc := newTestGateway(store.NewMemoryPaymentStore())

	intent, err := svc.CreateDeposit(context.Background(), "651f1a2b3c4d5e6f7a8b9c0d", 250.5)
	require.NoError(t, err)

	base, query, found := strings.Cut(intent.RedirectURL, "?")
	require.True(t, found)
	require.Equal(t, testGatewayConfig.GatewayURL, base)

	params, err := signing.ParseOrderedForm(query)
	require.NoError(t, err)

	var keys []string
	for _, p := range params {
		keys = append(keys, p.Key)
	}
	require.Equal(t, []string{
		"merchant_id", "merchant_key", "return_url", "cancel_url", "notify_url",
		"m_payment_id", "amount", "item_name", "custom_str1", "signature",
	}, keys, "signature must be the final parameter, preceded by the signed fields in signing order")

	// The signature in the URL must verify over the preceding fields.
	require.True(t, signing.Verify(params.Without("signature"),
		testGatewayConfig.Passphrase, params.Get("signature")))

	require.Equal(t, "250.50", params.Get("amount"))
	require.Equal(t, "1700000000000", params.Get("m_payment_id"))
	require.Equal(t, testGatewayConfig.AppBaseURL+"/api/payment/notify", params.Get("notify_url"))
}

func TestCreateDepositRecordsPendingEntry(t *testing.T) {
	payments := store.NewMemoryPaymentStore()
	svc := newTestGateway(payments)

	intent, err := svc.CreateDeposit(context.Background(), "user-1", 42)
	require.NoError(t, err)

	pending, err := payments.FindByPaymentID(context.Background(), intent.PaymentID)
	require.NoError(t, err)
	require.Equal(t, "user-1", pending.UserID)
	require.Equal(t, 42.0, pending.Amount)
	require.Equal(t, "PENDING", pending.Status)
}

func TestCreateDepositSurvivesPendingInsertFailure(t *testing.T) {
	payments := store.NewMemoryPaymentStore()
	payments.FailInsert = true
	svc := newTestGateway(payments)

	intent, err := svc.CreateDeposit(context.Background(), "user-1", 10)
	require.NoError(t, err, "bookkeeping failure must not block the redirect")
	require.NotEmpty(t, intent.RedirectURL)
}

func TestCreateDepositURLIsParseable(t *testing.T) {
	svc := newTestGateway(store.NewMemoryPaymentStore())

	intent, err := svc.CreateDeposit(context.Background(), "user-1", 99.999)
	require.NoError(t, err)

	parsed, err := url.Parse(intent.RedirectURL)
	require.NoError(t, err)
	require.Equal(t, "100.00", parsed.Query().Get("amount"))
	require.Len(t, parsed.Query().Get("signature"), 32)
}
