package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PendingPayment is the bookkeeping record created before the user is
// redirected to the gateway, reconciled when the notify webhook reports the
// outcome. A webhook may legitimately arrive for a payment id with no
// pending record.
type PendingPayment struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PaymentID  string             `bson:"m_payment_id" json:"m_payment_id"`
	UserID     string             `bson:"user_id" json:"user_id"`
	Amount     float64            `bson:"amount" json:"amount"`
	ItemName   string             `bson:"item_name" json:"item_name"`
	Status     string             `bson:"status" json:"status"` // e.g., "PENDING", "COMPLETE"
	GatewayRef string             `bson:"gateway_ref,omitempty" json:"gateway_ref,omitempty"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at" json:"updated_at"`
}

const (
	PaymentStatusPending  = "PENDING"
	PaymentStatusComplete = "COMPLETE"
)
