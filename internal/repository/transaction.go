package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"eagle-bank/internal/apperrors"
	"eagle-bank/internal/models"
	"eagle-bank/internal/utils"
)

const transactionColumns = `id, account_number, user_id, amount, type, currency, reference, created_at`

type TransactionRepository struct {
	db *pgxpool.Pool
}

func NewTransactionRepository(db *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// ExecuteEntry атомарно проводит операцию по счёту: строка счёта берётся
// под блокировку (FOR UPDATE), поэтому конкурирующие проводки по одному
// счёту сериализуются, а по разным счетам не мешают друг другу.
// Вставка транзакции и обновление баланса фиксируются одной БД-транзакцией.
func (r *TransactionRepository) ExecuteEntry(
	ctx context.Context,
	accountNumber, txType string,
	amount decimal.Decimal,
	reference string,
) (*models.Transaction, error) {

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	var balance decimal.Decimal
	var userID string
	err = tx.QueryRow(ctx,
		`SELECT balance, user_id FROM accounts WHERE account_number = $1 FOR UPDATE`,
		accountNumber,
	).Scan(&balance, &userID)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.AccountNotFound(accountNumber)
		}
		return nil, fmt.Errorf("ошибка чтения баланса: %w", err)
	}

	var newBalance decimal.Decimal
	switch txType {
	case models.TransactionTypeDeposit:
		newBalance = balance.Add(amount)
	case models.TransactionTypeWithdrawal:
		if amount.GreaterThan(balance) {
			return nil, apperrors.InsufficientFunds(accountNumber, amount, balance)
		}
		newBalance = balance.Sub(amount)
	default:
		return nil, fmt.Errorf("неизвестный тип транзакции: %s", txType)
	}

	if newBalance.GreaterThan(models.MaxAccountBalance) {
		return nil, apperrors.Conflict(fmt.Sprintf("превышен максимальный баланс счёта (%s)",
			models.MaxAccountBalance.StringFixed(2)))
	}

	transactionID, err := GenerateTransactionID(ctx, func(ctx context.Context, candidate string) (bool, error) {
		var exists bool
		err := tx.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM transactions WHERE id = $1)`, candidate,
		).Scan(&exists)
		return exists, err
	})
	if err != nil {
		return nil, err
	}

	entry := models.Transaction{
		ID:            transactionID,
		AccountNumber: accountNumber,
		UserID:        userID,
		Amount:        amount,
		Type:          txType,
		Currency:      models.CurrencyGBP,
		Reference:     reference,
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO transactions (id, account_number, user_id, amount, type, currency, reference)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`,
		entry.ID, entry.AccountNumber, entry.UserID, entry.Amount, entry.Type, entry.Currency, entry.Reference,
	).Scan(&entry.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("ошибка записи транзакции: %w", err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE accounts SET balance = $1, updated_at = NOW() WHERE account_number = $2`,
		newBalance, accountNumber,
	)
	if err != nil {
		return nil, fmt.Errorf("ошибка обновления баланса: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("ошибка подтверждения транзакции: %w", err)
	}

	utils.LogSuccess("TransactionRepo", "Проводка %s по счёту %s: %s %s (баланс: %s)",
		entry.ID, accountNumber, txType, amount.StringFixed(2), newBalance.StringFixed(2))

	return &entry, nil
}

// ListByAccount возвращает проводки счёта, новые первыми.
func (r *TransactionRepository) ListByAccount(ctx context.Context, accountNumber string) ([]models.Transaction, error) {
	query := `SELECT ` + transactionColumns + `
		FROM transactions
		WHERE account_number = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, accountNumber)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения транзакций: %w", err)
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		entry, err := r.scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования транзакции: %w", err)
		}
		transactions = append(transactions, *entry)
	}

	return transactions, rows.Err()
}

func (r *TransactionRepository) GetByIDAndAccount(ctx context.Context, transactionID, accountNumber string) (*models.Transaction, error) {
	query := `SELECT ` + transactionColumns + `
		FROM transactions
		WHERE id = $1 AND account_number = $2`

	entry, err := r.scanTransaction(r.db.QueryRow(ctx, query, transactionID, accountNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.TransactionNotFound(transactionID)
		}
		return nil, fmt.Errorf("ошибка получения транзакции: %w", err)
	}

	return entry, nil
}

func (r *TransactionRepository) CountByAccount(ctx context.Context, accountNumber string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM transactions WHERE account_number = $1`

	if err := r.db.QueryRow(ctx, query, accountNumber).Scan(&count); err != nil {
		return 0, fmt.Errorf("ошибка подсчёта транзакций: %w", err)
	}

	return count, nil
}

func (r *TransactionRepository) scanTransaction(row pgx.Row) (*models.Transaction, error) {
	var entry models.Transaction
	err := row.Scan(
		&entry.ID, &entry.AccountNumber, &entry.UserID,
		&entry.Amount, &entry.Type, &entry.Currency, &entry.Reference,
		&entry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}
