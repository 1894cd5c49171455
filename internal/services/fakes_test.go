package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"eagle-bank/internal/apperrors"
	"eagle-bank/internal/models"
)

// In-memory реализации хранилищ для тестов сервисов.

type memUserStore struct {
	mu    sync.Mutex
	seq   int
	users map[string]*models.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[string]*models.User)}
}

func (s *memUserStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == user.Email {
			return apperrors.Conflict(fmt.Sprintf("пользователь с email %s уже существует", user.Email))
		}
	}

	s.seq++
	user.ID = fmt.Sprintf("usr-test%06d", s.seq)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt

	copied := *user
	s.users[user.ID] = &copied
	return nil
}

func (s *memUserStore) GetByID(_ context.Context, userID string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return nil, apperrors.UserNotFound(userID)
	}
	copied := *user
	return &copied, nil
}

func (s *memUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperrors.UserNotFound(email)
}

func (s *memUserStore) EmailTaken(_ context.Context, email, excludeUserID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.Email == email && user.ID != excludeUserID {
			return true, nil
		}
	}
	return false, nil
}

func (s *memUserStore) Update(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; !ok {
		return apperrors.UserNotFound(user.ID)
	}
	user.UpdatedAt = time.Now()
	copied := *user
	s.users[user.ID] = &copied
	return nil
}

func (s *memUserStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[userID]; !ok {
		return apperrors.UserNotFound(userID)
	}
	delete(s.users, userID)
	return nil
}

type memAccountStore struct {
	mu       sync.Mutex
	seq      int
	accounts map[string]*models.Account
	order    []string
}

func newMemAccountStore() *memAccountStore {
	return &memAccountStore{accounts: make(map[string]*models.Account)}
}

func (s *memAccountStore) Create(_ context.Context, userID, accountType, name string) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	account := &models.Account{
		AccountNumber: fmt.Sprintf("01%06d", 100000+s.seq),
		UserID:        userID,
		AccountType:   accountType,
		Balance:       decimal.Zero,
		Currency:      models.CurrencyGBP,
		SortCode:      models.SortCode,
		Name:          name,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	s.accounts[account.AccountNumber] = account
	s.order = append(s.order, account.AccountNumber)

	copied := *account
	return &copied, nil
}

func (s *memAccountStore) GetByNumber(_ context.Context, accountNumber string) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked(accountNumber)
}

func (s *memAccountStore) getLocked(accountNumber string) (*models.Account, error) {
	account, ok := s.accounts[accountNumber]
	if !ok {
		return nil, apperrors.AccountNotFound(accountNumber)
	}
	copied := *account
	return &copied, nil
}

func (s *memAccountStore) ListByUserID(_ context.Context, userID string) ([]models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var accounts []models.Account
	for i := len(s.order) - 1; i >= 0; i-- {
		if account, ok := s.accounts[s.order[i]]; ok && account.UserID == userID {
			accounts = append(accounts, *account)
		}
	}
	return accounts, nil
}

func (s *memAccountStore) CountByUserID(_ context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, account := range s.accounts {
		if account.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (s *memAccountStore) UpdateName(_ context.Context, accountNumber, name string) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[accountNumber]
	if !ok {
		return nil, apperrors.AccountNotFound(accountNumber)
	}
	account.Name = name
	account.UpdatedAt = time.Now()

	copied := *account
	return &copied, nil
}

func (s *memAccountStore) Delete(_ context.Context, accountNumber string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[accountNumber]; !ok {
		return apperrors.AccountNotFound(accountNumber)
	}
	delete(s.accounts, accountNumber)
	return nil
}

// memTransactionStore сериализует проводки мьютексом - тот же контракт,
// что у блокировки строки счёта в Postgres.
type memTransactionStore struct {
	mu       sync.Mutex
	seq      int
	accounts *memAccountStore
	entries  map[string][]models.Transaction
}

func newMemTransactionStore(accounts *memAccountStore) *memTransactionStore {
	return &memTransactionStore{
		accounts: accounts,
		entries:  make(map[string][]models.Transaction),
	}
}

func (s *memTransactionStore) ExecuteEntry(_ context.Context, accountNumber, txType string, amount decimal.Decimal, reference string) (*models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts.mu.Lock()
	defer s.accounts.mu.Unlock()

	account, ok := s.accounts.accounts[accountNumber]
	if !ok {
		return nil, apperrors.AccountNotFound(accountNumber)
	}

	var newBalance decimal.Decimal
	switch txType {
	case models.TransactionTypeDeposit:
		newBalance = account.Balance.Add(amount)
	case models.TransactionTypeWithdrawal:
		if amount.GreaterThan(account.Balance) {
			return nil, apperrors.InsufficientFunds(accountNumber, amount, account.Balance)
		}
		newBalance = account.Balance.Sub(amount)
	default:
		return nil, fmt.Errorf("неизвестный тип транзакции: %s", txType)
	}

	if newBalance.GreaterThan(models.MaxAccountBalance) {
		return nil, apperrors.Conflict("превышен максимальный баланс счёта")
	}

	s.seq++
	entry := models.Transaction{
		ID:            fmt.Sprintf("tan-test%06d", s.seq),
		AccountNumber: accountNumber,
		UserID:        account.UserID,
		Amount:        amount,
		Type:          txType,
		Currency:      models.CurrencyGBP,
		Reference:     reference,
		CreatedAt:     time.Now(),
	}

	account.Balance = newBalance
	account.UpdatedAt = entry.CreatedAt
	s.entries[accountNumber] = append([]models.Transaction{entry}, s.entries[accountNumber]...)

	return &entry, nil
}

func (s *memTransactionStore) ListByAccount(_ context.Context, accountNumber string) ([]models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.entries[accountNumber]
	copied := make([]models.Transaction, len(entries))
	copy(copied, entries)
	return copied, nil
}

func (s *memTransactionStore) GetByIDAndAccount(_ context.Context, transactionID, accountNumber string) (*models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, entry := range s.entries[accountNumber] {
		if entry.ID == transactionID {
			copied := entry
			return &copied, nil
		}
	}
	return nil, apperrors.TransactionNotFound(transactionID)
}

func (s *memTransactionStore) CountByAccount(_ context.Context, accountNumber string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries[accountNumber]), nil
}
