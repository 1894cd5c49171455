package services

import (
	"context"

	"github.com/shopspring/decimal"

	"eagle-bank/internal/models"
)

// Интерфейсы персистентности. Реализации живут в internal/repository,
// тесты подставляют in-memory варианты.

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, userID string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	EmailTaken(ctx context.Context, email, excludeUserID string) (bool, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, userID string) error
}

type AccountStore interface {
	Create(ctx context.Context, userID, accountType, name string) (*models.Account, error)
	GetByNumber(ctx context.Context, accountNumber string) (*models.Account, error)
	ListByUserID(ctx context.Context, userID string) ([]models.Account, error)
	CountByUserID(ctx context.Context, userID string) (int, error)
	UpdateName(ctx context.Context, accountNumber, name string) (*models.Account, error)
	Delete(ctx context.Context, accountNumber string) error
}

type TransactionStore interface {
	ExecuteEntry(ctx context.Context, accountNumber, txType string, amount decimal.Decimal, reference string) (*models.Transaction, error)
	ListByAccount(ctx context.Context, accountNumber string) ([]models.Transaction, error)
	GetByIDAndAccount(ctx context.Context, transactionID, accountNumber string) (*models.Transaction, error)
	CountByAccount(ctx context.Context, accountNumber string) (int, error)
}
