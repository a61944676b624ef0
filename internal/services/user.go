package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/facesave/gobackend/internal/face"
	"github.com/facesave/gobackend/internal/models"
	"github.com/facesave/gobackend/internal/store"
)

type UserService struct {
	users        store.UserStore
	payments     store.PaymentStore
	transactions store.TransactionStore
	detector     face.Detector // nil when no face service is configured
	logger       *zap.Logger
}

func NewUserService(users store.UserStore, payments store.PaymentStore, transactions store.TransactionStore, detector face.Detector, logger *zap.Logger) *UserService {
	return &UserService{
		users:        users,
		payments:     payments,
		transactions: transactions,
		detector:     detector,
		logger:       logger,
	}
}

// Register creates a user with a zero balance. The face image is the
// primary credential; a PIN is an optional fallback. At least one of the
// two must be supplied.
func (s *UserService) Register(ctx context.Context, fullName, email, pin string, image []byte) (string, error) {
	fullName = strings.TrimSpace(fullName)
	email = strings.TrimSpace(email)

	if fullName == "" || email == "" {
		return "", errors.New("fullname and email cannot be empty")
	}
	if len(image) == 0 && pin == "" {
		return "", errors.New("a face image or a pin is required")
	}

	user := &models.User{
		FullName: fullName,
		Email:    email,
	}

	if len(image) > 0 {
		if s.detector == nil {
			return "", ErrFaceLoginUnavailable
		}
		descriptor, err := s.detector.Detect(ctx, image)
		if err != nil {
			return "", fmt.Errorf("face enrollment failed: %w", err)
		}
		user.FaceDescriptor = descriptor
	}

	if pin != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
		if err != nil {
			return "", err
		}
		user.HPin = string(hashed)
	}

	id, err := s.users.Insert(ctx, user)
	if err != nil {
		return "", err
	}

	s.logger.Info("user registered",
		zap.String("user_id", id),
		zap.Bool("face_enrolled", len(user.FaceDescriptor) > 0),
	)
	return id, nil
}

// LoginByFace matches a freshly captured frame against the stored
// descriptor. The threshold comparison is fixed, not configurable.
func (s *UserService) LoginByFace(ctx context.Context, email string, image []byte) (*models.User, error) {
	if s.detector == nil {
		return nil, ErrFaceLoginUnavailable
	}

	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if len(user.FaceDescriptor) == 0 {
		return nil, ErrInvalidCredentials
	}

	descriptor, err := s.detector.Detect(ctx, image)
	if err != nil {
		return nil, fmt.Errorf("face detection failed: %w", err)
	}

	distance, err := face.Distance(descriptor, face.Descriptor(user.FaceDescriptor))
	if err != nil {
		return nil, ErrFaceMismatch
	}
	if distance >= face.MatchThreshold {
		s.logger.Warn("face login rejected",
			zap.String("user_id", user.ID.Hex()),
			zap.Float64("distance", distance),
		)
		return nil, ErrFaceMismatch
	}

	return user, nil
}

// LoginByPIN is the bcrypt fallback for users without a usable camera.
func (s *UserService) LoginByPIN(ctx context.Context, email, pin string) (*models.User, error) {
	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if user.HPin == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.HPin), []byte(pin)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *UserService) Balance(ctx context.Context, userID string) (float64, error) {
	balance, err := s.users.GetBalance(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return 0, ErrUserNotFound
		}
		return 0, err
	}
	return balance, nil
}

func (s *UserService) Transactions(ctx context.Context, userID string) ([]models.Transaction, error) {
	return s.transactions.ListByUser(ctx, userID)
}

func (s *UserService) Payments(ctx context.Context, userID string) ([]models.PendingPayment, error) {
	return s.payments.ListByUser(ctx, userID)
}
