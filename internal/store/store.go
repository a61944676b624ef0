// Package store defines the persistence interfaces consumed by the
// services, plus a MongoDB implementation and an in-memory implementation
// used by tests.
package store

import (
	"context"
	"errors"

	"github.com/facesave/gobackend/internal/models"
)

var ErrNotFound = errors.New("not found")

type UserStore interface {
	Insert(ctx context.Context, user *models.User) (string, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// IncrementBalance applies a server-side atomic increment. It is the
	// primary write path for deposits: concurrent notifications for the
	// same user must not lose an update.
	IncrementBalance(ctx context.Context, id string, amount float64) error

	// GetBalance and SetBalance exist for the fallback read-modify-write
	// path only, which accepts a lost-update race when the primary path
	// has already failed.
	GetBalance(ctx context.Context, id string) (float64, error)
	SetBalance(ctx context.Context, id string, balance float64) error
}

type PaymentStore interface {
	InsertPending(ctx context.Context, payment *models.PendingPayment) error
	FindByPaymentID(ctx context.Context, paymentID string) (*models.PendingPayment, error)
	// MarkComplete reconciles a pending entry. Returns ErrNotFound when no
	// pending entry exists; callers treat that as informational.
	MarkComplete(ctx context.Context, paymentID, gatewayRef string) error
	ListByUser(ctx context.Context, userID string) ([]models.PendingPayment, error)
}

type TransactionStore interface {
	Insert(ctx context.Context, tx *models.Transaction) (string, error)
	ListByUser(ctx context.Context, userID string) ([]models.Transaction, error)
}
