package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"eagle-bank/internal/apperrors"
	"eagle-bank/internal/models"
	"eagle-bank/internal/utils"
)

const accountColumns = `account_number, user_id, account_type, balance, currency, sort_code, name, created_at, updated_at`

type AccountRepository struct {
	db *pgxpool.Pool
}

func NewAccountRepository(db *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create создаёт счёт с нулевым балансом и свободным номером.
func (r *AccountRepository) Create(ctx context.Context, userID, accountType, name string) (*models.Account, error) {
	accountNumber, err := GenerateAccountNumber(ctx, r.numberExists)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO accounts (account_number, user_id, account_type, balance, currency, sort_code, name)
		VALUES ($1, $2, $3, 0.00, $4, $5, $6)
		RETURNING ` + accountColumns

	utils.LogDB("CREATE ACCOUNT", fmt.Sprintf("Создание счёта %s для пользователя %s", accountNumber, userID))

	account, err := r.scanAccount(r.db.QueryRow(ctx, query,
		accountNumber, userID, accountType, models.CurrencyGBP, models.SortCode, name))
	if err != nil {
		return nil, fmt.Errorf("ошибка создания счёта: %w", err)
	}

	return account, nil
}

func (r *AccountRepository) GetByNumber(ctx context.Context, accountNumber string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_number = $1`

	account, err := r.scanAccount(r.db.QueryRow(ctx, query, accountNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.AccountNotFound(accountNumber)
		}
		return nil, fmt.Errorf("ошибка получения счёта: %w", err)
	}

	return account, nil
}

func (r *AccountRepository) ListByUserID(ctx context.Context, userID string) ([]models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка счетов: %w", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		account, err := r.scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования счёта: %w", err)
		}
		accounts = append(accounts, *account)
	}

	return accounts, rows.Err()
}

func (r *AccountRepository) CountByUserID(ctx context.Context, userID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM accounts WHERE user_id = $1`

	if err := r.db.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("ошибка подсчёта счетов: %w", err)
	}

	return count, nil
}

func (r *AccountRepository) UpdateName(ctx context.Context, accountNumber, name string) (*models.Account, error) {
	query := `
		UPDATE accounts
		SET name = $1, updated_at = NOW()
		WHERE account_number = $2
		RETURNING ` + accountColumns

	account, err := r.scanAccount(r.db.QueryRow(ctx, query, name, accountNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.AccountNotFound(accountNumber)
		}
		return nil, fmt.Errorf("ошибка обновления счёта: %w", err)
	}

	return account, nil
}

func (r *AccountRepository) Delete(ctx context.Context, accountNumber string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM accounts WHERE account_number = $1`, accountNumber)
	if err != nil {
		return fmt.Errorf("ошибка удаления счёта: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.AccountNotFound(accountNumber)
	}

	return nil
}

func (r *AccountRepository) numberExists(ctx context.Context, accountNumber string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM accounts WHERE account_number = $1)`, accountNumber,
	).Scan(&exists)
	return exists, err
}

func (r *AccountRepository) scanAccount(row pgx.Row) (*models.Account, error) {
	var account models.Account
	err := row.Scan(
		&account.AccountNumber, &account.UserID, &account.AccountType,
		&account.Balance, &account.Currency, &account.SortCode, &account.Name,
		&account.CreatedAt, &account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &account, nil
}
