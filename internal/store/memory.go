package store

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/facesave/gobackend/internal/models"
)

// In-memory stores used by tests. Fault fields force a particular write
// path to fail so the fallback behavior can be exercised; call counters let
// tests assert which paths were touched.

type MemoryUserStore struct {
	mu     sync.RWMutex
	users  map[string]*models.User
	nextID int

	FailIncrement bool
	FailSet       bool

	IncrementCalls int
	SetCalls       int
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[string]*models.User)}
}

func (s *MemoryUserStore) Insert(_ context.Context, user *models.User) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := "user-" + strconv.Itoa(s.nextID)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt

	clone := *user
	s.users[id] = &clone
	return id, nil
}

// Seed inserts a user under a fixed id.
func (s *MemoryUserStore) Seed(id string, user *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *user
	s.users[id] = &clone
}

func (s *MemoryUserStore) FindByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (s *MemoryUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryUserStore) IncrementBalance(_ context.Context, id string, amount float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.IncrementCalls++
	if s.FailIncrement {
		return errTransient
	}
	user, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	user.Balance += amount
	user.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryUserStore) GetBalance(_ context.Context, id string) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return 0, ErrNotFound
	}
	return user.Balance, nil
}

func (s *MemoryUserStore) SetBalance(_ context.Context, id string, balance float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.SetCalls++
	if s.FailSet {
		return errTransient
	}
	user, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	user.Balance = balance
	user.UpdatedAt = time.Now()
	return nil
}

type MemoryPaymentStore struct {
	mu       sync.RWMutex
	payments map[string]*models.PendingPayment

	FailInsert bool
}

func NewMemoryPaymentStore() *MemoryPaymentStore {
	return &MemoryPaymentStore{payments: make(map[string]*models.PendingPayment)}
}

func (s *MemoryPaymentStore) InsertPending(_ context.Context, payment *models.PendingPayment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailInsert {
		return errTransient
	}
	payment.Status = models.PaymentStatusPending
	payment.CreatedAt = time.Now()
	payment.UpdatedAt = payment.CreatedAt

	clone := *payment
	s.payments[payment.PaymentID] = &clone
	return nil
}

func (s *MemoryPaymentStore) FindByPaymentID(_ context.Context, paymentID string) (*models.PendingPayment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	payment, ok := s.payments[paymentID]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *payment
	return &clone, nil
}

func (s *MemoryPaymentStore) MarkComplete(_ context.Context, paymentID, gatewayRef string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payment, ok := s.payments[paymentID]
	if !ok {
		return ErrNotFound
	}
	payment.Status = models.PaymentStatusComplete
	payment.GatewayRef = gatewayRef
	payment.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryPaymentStore) ListByUser(_ context.Context, userID string) ([]models.PendingPayment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.PendingPayment
	for _, payment := range s.payments {
		if payment.UserID == userID {
			out = append(out, *payment)
		}
	}
	return out, nil
}

type MemoryTransactionStore struct {
	mu           sync.RWMutex
	transactions []models.Transaction

	FailInsert bool
}

func NewMemoryTransactionStore() *MemoryTransactionStore {
	return &MemoryTransactionStore{}
}

func (s *MemoryTransactionStore) Insert(_ context.Context, tx *models.Transaction) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailInsert {
		return "", errTransient
	}
	tx.CreatedAt = time.Now()
	s.transactions = append(s.transactions, *tx)
	return "tx-" + strconv.Itoa(len(s.transactions)), nil
}

func (s *MemoryTransactionStore) ListByUser(_ context.Context, userID string) ([]models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Transaction
	for _, tx := range s.transactions {
		if tx.UserID == userID {
			out = append(out, tx)
		}
	}
	return out, nil
}
