package services

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/facesave/gobackend/internal/metrics"
	"github.com/facesave/gobackend/internal/models"
	"github.com/facesave/gobackend/internal/signing"
	"github.com/facesave/gobackend/internal/store"
)

const depositItemName = "Savings deposit"

type GatewayConfig struct {
	MerchantID  string
	MerchantKey string
	Passphrase  string
	GatewayURL  string
	AppBaseURL  string
}

// GatewayService assembles signed payment-initiation redirects. The field
// order used here is the order the gateway replays in its notify callback,
// so signing and URL construction share one Params value.
type GatewayService struct {
	cfg      GatewayConfig
	payments store.PaymentStore
	logger   *zap.Logger
	now      func() time.Time
}

func NewGatewayService(cfg GatewayConfig, payments store.PaymentStore, logger *zap.Logger) *GatewayService {
	return &GatewayService{
		cfg:      cfg,
		payments: payments,
		logger:   logger,
		now:      time.Now,
	}
}

type DepositIntent struct {
	PaymentID   string `json:"payment_id"`
	Amount      string `json:"amount"`
	RedirectURL string `json:"redirect_url"`
}

// CreateDeposit validates the request, records a pending payment entry and
// returns the signed redirect URL. The pending insert is bookkeeping only:
// its failure is logged and never blocks the redirect.
func (s *GatewayService) CreateDeposit(ctx context.Context, userID string, amount float64) (*DepositIntent, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrMissingUserID
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return nil, ErrInvalidAmount
	}

	// Fix to two decimals before signing: the digest covers "100.00",
	// never "100".
	amountDec := decimal.NewFromFloat(amount)
	amountStr := amountDec.StringFixed(2)

	paymentID := strconv.FormatInt(s.now().UnixMilli(), 10)

	params := signing.Params{}
	params.Set("merchant_id", s.cfg.MerchantID)
	params.Set("merchant_key", s.cfg.MerchantKey)
	params.Set("return_url", s.cfg.AppBaseURL+"/payment/success")
	params.Set("cancel_url", s.cfg.AppBaseURL+"/payment/cancel")
	params.Set("notify_url", s.cfg.AppBaseURL+"/api/payment/notify")
	params.Set("m_payment_id", paymentID)
	params.Set("amount", amountStr)
	params.Set("item_name", depositItemName)
	params.Set("custom_str1", userID)

	sig := signing.Sign(params, s.cfg.Passphrase)

	pending := &models.PendingPayment{
		PaymentID: paymentID,
		UserID:    userID,
		Amount:    amountDec.InexactFloat64(),
		ItemName:  depositItemName,
	}
	if err := s.payments.InsertPending(ctx, pending); err != nil {
		s.logger.Warn("failed to record pending payment",
			zap.String("m_payment_id", paymentID),
			zap.String("user_id", userID),
			zap.Error(err),
		)
	}

	metrics.DepositsCreated.Inc()
	s.logger.Info("deposit redirect issued",
		zap.String("m_payment_id", paymentID),
		zap.String("user_id", userID),
		zap.String("amount", amountStr),
	)

	return &DepositIntent{
		PaymentID:   paymentID,
		Amount:      amountStr,
		RedirectURL: s.cfg.GatewayURL + "?" + sig.ParamString + "&signature=" + sig.Digest,
	}, nil
}
