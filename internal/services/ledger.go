package services

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/facesave/gobackend/internal/metrics"
	"github.com/facesave/gobackend/internal/models"
	"github.com/facesave/gobackend/internal/signing"
	"github.com/facesave/gobackend/internal/store"
)

// Terminal verdicts for one notification. The HTTP layer maps them to
// status codes: rejections answer 4xx so a permanently broken payload is
// not retried forever, store failures answer 5xx so the gateway's retry
// policy redelivers, everything else acknowledges with 2xx.
const (
	VerdictApplied      = "applied"
	VerdictIgnored      = "ignored"
	VerdictMalformed    = "malformed"
	VerdictBadSignature = "bad_signature"
	VerdictUnknownUser  = "unknown_user"
	VerdictStoreFailure = "store_failure"
)

// The status word the gateway sends for a finished payment. Exact match;
// anything else is acknowledged without ledger effect.
const statusComplete = "COMPLETE"

type NotificationResult struct {
	Verdict    string
	PaymentID  string
	GatewayRef string
	UserID     string
	Status     string
	Amount     float64
	Err        error
}

// LedgerService authenticates inbound gateway notifications and applies
// verified deposits to the balance and transaction ledger. It owns all
// balance writes.
type LedgerService struct {
	users        store.UserStore
	payments     store.PaymentStore
	transactions store.TransactionStore
	passphrase   string
	logger       *zap.Logger
}

func NewLedgerService(users store.UserStore, payments store.PaymentStore, transactions store.TransactionStore, passphrase string, logger *zap.Logger) *LedgerService {
	return &LedgerService{
		users:        users,
		payments:     payments,
		transactions: transactions,
		passphrase:   passphrase,
		logger:       logger,
	}
}

func (s *LedgerService) ApplyNotification(ctx context.Context, body []byte) NotificationResult {
	result := s.applyNotification(ctx, body)
	metrics.WebhookNotifications.WithLabelValues(result.Verdict).Inc()
	return result
}

func (s *LedgerService) applyNotification(ctx context.Context, body []byte) NotificationResult {
	params, err := signing.ParseOrderedForm(string(body))
	if err != nil {
		s.logger.Warn("malformed notification body", zap.Error(err))
		return NotificationResult{Verdict: VerdictMalformed, Err: err}
	}

	result := NotificationResult{
		PaymentID:  params.Get("m_payment_id"),
		GatewayRef: params.Get("pf_payment_id"),
		UserID:     strings.TrimSpace(params.Get("custom_str1")),
		Status:     params.Get("payment_status"),
	}

	// The signature field is excluded from the string being signed; the
	// remaining fields are signed in the order they arrived.
	received := params.Get("signature")
	if !signing.Verify(params.Without("signature"), s.passphrase, received) {
		s.logger.Error("notification signature mismatch",
			zap.String("m_payment_id", result.PaymentID),
			zap.String("pf_payment_id", result.GatewayRef),
		)
		result.Verdict = VerdictBadSignature
		result.Err = errors.New("signature mismatch")
		return result
	}

	if result.Status != statusComplete {
		s.logger.Info("notification ignored",
			zap.String("m_payment_id", result.PaymentID),
			zap.String("payment_status", result.Status),
		)
		result.Verdict = VerdictIgnored
		return result
	}

	amountDec, err := decimal.NewFromString(strings.TrimSpace(params.Get("amount_gross")))
	if err != nil {
		s.logger.Warn("notification has unparsable amount_gross",
			zap.String("m_payment_id", result.PaymentID),
			zap.Error(err),
		)
		result.Verdict = VerdictMalformed
		result.Err = err
		return result
	}
	result.Amount = amountDec.InexactFloat64()

	if _, err := s.users.FindByID(ctx, result.UserID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.logger.Error("notification for unknown user",
				zap.String("m_payment_id", result.PaymentID),
				zap.String("user_id", result.UserID),
			)
			result.Verdict = VerdictUnknownUser
			result.Err = ErrUserNotFound
			return result
		}
		s.logger.Error("user lookup failed", zap.String("user_id", result.UserID), zap.Error(err))
		result.Verdict = VerdictStoreFailure
		result.Err = err
		return result
	}

	if err := s.applyBalance(ctx, result.UserID, result.Amount); err != nil {
		s.logger.Error("balance update failed on both paths",
			zap.String("m_payment_id", result.PaymentID),
			zap.String("user_id", result.UserID),
			zap.Error(err),
		)
		result.Verdict = VerdictStoreFailure
		result.Err = err
		return result
	}

	tx := &models.Transaction{
		UserID:     result.UserID,
		Amount:     result.Amount,
		Type:       models.TransactionTypeDeposit,
		Status:     models.TransactionStatusComplete,
		PaymentID:  result.PaymentID,
		GatewayRef: result.GatewayRef,
	}
	if _, err := s.transactions.Insert(ctx, tx); err != nil {
		// The balance is already applied; inviting a redelivery here would
		// double it. The missing ledger row is an operator problem.
		s.logger.Error("failed to append transaction record",
			zap.String("m_payment_id", result.PaymentID),
			zap.String("user_id", result.UserID),
			zap.Error(err),
		)
	}

	if err := s.payments.MarkComplete(ctx, result.PaymentID, result.GatewayRef); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// The intent may have been created by a process that failed
			// after redirecting.
			s.logger.Info("no pending entry for completed payment",
				zap.String("m_payment_id", result.PaymentID))
		} else {
			s.logger.Warn("failed to mark pending payment complete",
				zap.String("m_payment_id", result.PaymentID), zap.Error(err))
		}
	}

	s.logger.Info("deposit applied",
		zap.String("m_payment_id", result.PaymentID),
		zap.String("pf_payment_id", result.GatewayRef),
		zap.String("user_id", result.UserID),
		zap.Float64("amount", result.Amount),
	)
	result.Verdict = VerdictApplied
	return result
}

// applyBalance increments the balance atomically; only when that errors
// does it fall back to read-add-write, which accepts a lost-update race as
// a secondary-path trade-off.
func (s *LedgerService) applyBalance(ctx context.Context, userID string, amount float64) error {
	err := s.users.IncrementBalance(ctx, userID, amount)
	if err == nil {
		return nil
	}
	if errors.Is(err, store.ErrNotFound) {
		return err
	}

	s.logger.Warn("atomic increment failed, falling back to read-modify-write",
		zap.String("user_id", userID), zap.Error(err))

	balance, err := s.users.GetBalance(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.users.SetBalance(ctx, userID, balance+amount); err != nil {
		return err
	}
	metrics.BalanceFallbackWrites.Inc()
	return nil
}
