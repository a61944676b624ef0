package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Transaction is an append-only ledger entry. Amount is signed; deposits
// are positive.
type Transaction struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID     string             `bson:"user_id" json:"user_id"`
	Amount     float64            `bson:"amount" json:"amount"`
	Type       string             `bson:"type" json:"type"`     // e.g., "deposit"
	Status     string             `bson:"status" json:"status"` // e.g., "complete"
	PaymentID  string             `bson:"m_payment_id" json:"m_payment_id"`
	GatewayRef string             `bson:"gateway_ref,omitempty" json:"gateway_ref,omitempty"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
}

const (
	TransactionTypeDeposit    = "deposit"
	TransactionStatusComplete = "complete"
)
