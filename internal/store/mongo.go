package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/facesave/gobackend/internal/models"
)

// Dial connects to MongoDB and verifies the connection with a ping.
func Dial(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		return nil, err
	}

	return client, nil
}

// EnsureIndexes creates the indexes the webhook path depends on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("payments").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.M{"m_payment_id": 1},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = db.Collection("transactions").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.M{"m_payment_id": 1}},
	})
	if err != nil {
		return err
	}

	_, err = db.Collection("user").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.M{"email": 1},
		Options: options.Index().SetUnique(true),
	})
	return err
}

type MongoUserStore struct {
	collection *mongo.Collection
}

func NewMongoUserStore(db *mongo.Database) *MongoUserStore {
	return &MongoUserStore{collection: db.Collection("user")}
}

func (s *MongoUserStore) Insert(ctx context.Context, user *models.User) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt

	result, err := s.collection.InsertOne(ctx, user)
	if err != nil {
		return "", err
	}
	return result.InsertedID.(primitive.ObjectID).Hex(), nil
}

func (s *MongoUserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var user models.User
	if err := s.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&user); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *MongoUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var user models.User
	if err := s.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// IncrementBalance uses a server-side $inc so concurrent deposits for the
// same user cannot lose an update.
func (s *MongoUserStore) IncrementBalance(ctx context.Context, id string, amount float64) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	result, err := s.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{
		"$inc": bson.M{"balance": amount},
		"$set": bson.M{"updated_at": time.Now()},
	})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoUserStore) GetBalance(ctx context.Context, id string) (float64, error) {
	user, err := s.FindByID(ctx, id)
	if err != nil {
		return 0, err
	}
	return user.Balance, nil
}

func (s *MongoUserStore) SetBalance(ctx context.Context, id string, balance float64) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	result, err := s.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{
		"$set": bson.M{"balance": balance, "updated_at": time.Now()},
	})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

type MongoPaymentStore struct {
	collection *mongo.Collection
}

func NewMongoPaymentStore(db *mongo.Database) *MongoPaymentStore {
	return &MongoPaymentStore{collection: db.Collection("payments")}
}

func (s *MongoPaymentStore) InsertPending(ctx context.Context, payment *models.PendingPayment) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	payment.ID = primitive.NewObjectID()
	payment.Status = models.PaymentStatusPending
	payment.CreatedAt = time.Now()
	payment.UpdatedAt = payment.CreatedAt

	_, err := s.collection.InsertOne(ctx, payment)
	return err
}

func (s *MongoPaymentStore) FindByPaymentID(ctx context.Context, paymentID string) (*models.PendingPayment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var payment models.PendingPayment
	if err := s.collection.FindOne(ctx, bson.M{"m_payment_id": paymentID}).Decode(&payment); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &payment, nil
}

func (s *MongoPaymentStore) MarkComplete(ctx context.Context, paymentID, gatewayRef string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	result, err := s.collection.UpdateOne(ctx, bson.M{"m_payment_id": paymentID}, bson.M{
		"$set": bson.M{
			"status":      models.PaymentStatusComplete,
			"gateway_ref": gatewayRef,
			"updated_at":  time.Now(),
		},
	})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoPaymentStore) ListByUser(ctx context.Context, userID string) ([]models.PendingPayment, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cur, err := s.collection.Find(ctx, bson.M{"user_id": userID},
		options.Find().SetSort(bson.M{"created_at": -1}))
	if err != nil {
		return nil, err
	}

	var payments []models.PendingPayment
	defer cur.Close(ctx)
	if err := cur.All(ctx, &payments); err != nil {
		return nil, err
	}
	return payments, nil
}

type MongoTransactionStore struct {
	collection *mongo.Collection
}

func NewMongoTransactionStore(db *mongo.Database) *MongoTransactionStore {
	return &MongoTransactionStore{collection: db.Collection("transactions")}
}

func (s *MongoTransactionStore) Insert(ctx context.Context, tx *models.Transaction) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx.ID = primitive.NewObjectID()
	tx.CreatedAt = time.Now()

	result, err := s.collection.InsertOne(ctx, tx)
	if err != nil {
		return "", err
	}
	return result.InsertedID.(primitive.ObjectID).Hex(), nil
}

func (s *MongoTransactionStore) ListByUser(ctx context.Context, userID string) ([]models.Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cur, err := s.collection.Find(ctx, bson.M{"user_id": userID},
		options.Find().SetSort(bson.M{"created_at": -1}))
	if err != nil {
		return nil, err
	}

	var txs []models.Transaction
	defer cur.Close(ctx)
	if err := cur.All(ctx, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}
