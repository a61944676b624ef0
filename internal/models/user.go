package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User model
type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName       string             `bson:"fullname" json:"fullname"`
	Email          string             `bson:"email" json:"email"`
	HPin           string             `bson:"pin,omitempty" json:"-"`
	FaceDescriptor []float64          `bson:"face_descriptor,omitempty" json:"-"`
	Balance        float64            `bson:"balance" json:"balance"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
}
