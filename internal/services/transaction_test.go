package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eagle-bank/internal/apperrors"
	"eagle-bank/internal/models"
)

func deposit(t *testing.T, bank *testBank, callerID, accountNumber, amount string) *models.Transaction {
	t.Helper()
	entry, err := bank.transactions.PostTransaction(context.Background(), callerID, accountNumber, models.CreateTransactionRequest{
		Amount: decimal.RequireFromString(amount),
		Type:   models.TransactionTypeDeposit,
	})
	require.NoError(t, err)
	return entry
}

func withdraw(t *testing.T, bank *testBank, callerID, accountNumber, amount string) *models.Transaction {
	t.Helper()
	entry, err := bank.transactions.PostTransaction(context.Background(), callerID, accountNumber, models.CreateTransactionRequest{
		Amount: decimal.RequireFromString(amount),
		Type:   models.TransactionTypeWithdrawal,
	})
	require.NoError(t, err)
	return entry
}

func accountBalance(t *testing.T, bank *testBank, callerID, accountNumber string) decimal.Decimal {
	t.Helper()
	account, err := bank.accounts.Get(context.Background(), callerID, accountNumber)
	require.NoError(t, err)
	return account.Balance
}

var transactionIDPattern = regexp.MustCompile(`^tan-`)

func TestPostTransactionDeposit(t *testing.T) {
	bank := newTestBank()
	user := bank.registerUser(t, "ivan@example.com")
	account := bank.openAccount(t, user.ID)

	entry := deposit(t, bank, user.ID, account.AccountNumber, "100.00")

	assert.Regexp(t, transactionIDPattern, entry.ID)
	assert.Equal(t, models.TransactionTypeDeposit, entry.Type)
	assert.True(t, entry.Amount.Equal(decimal.RequireFromString("100.00")))
	assert.True(t, accountBalance(t, bank, user.ID, account.AccountNumber).Equal(decimal.RequireFromString("100.00")))
}

// Сценарий: депозит 100, попытка снять 150 отклоняется и не трогает
// баланс, затем снятие 100 обнуляет счёт, но история блокирует удаление.
func TestOverdraftScenario(t *testing.T) {
	bank := newTestBank()
	user := bank.registerUser(t, "ivan@example.com")
	account := bank.openAccount(t, user.ID)

	deposit(t, bank, user.ID, account.AccountNumber, "100.00")

	_, err := bank.transactions.PostTransaction(context.Background(), user.ID, account.AccountNumber, models.CreateTransactionRequest{
		Amount: decimal.RequireFromString("150.00"),
		Type:   models.TransactionTypeWithdrawal,
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInsufficientFunds, apperrors.CodeOf(err))

	var appErr *apperrors.Error
	require.True(t, errors.As(err, &appErr))
	details, ok := appErr.Details.(apperrors.InsufficientFundsDetails)
	require.True(t, ok)
	assert.Equal(t, account.AccountNumber, details.AccountNumber)
	assert.True(t, details.Requested.Equal(decimal.RequireFromString("150.00")))
	assert.True(t, details.Available.Equal(decimal.RequireFromString("100.00")))

	// Отклонённая проводка не меняет баланс и не попадает в историю
	assert.True(t, accountBalance(t, bank, user.ID, account.AccountNumber).Equal(decimal.RequireFromString("100.00")))
	entries, err := bank.transactions.List(context.Background(), user.ID, account.AccountNumber)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	withdraw(t, bank, user.ID, account.AccountNumber, "100.00")
	assert.True(t, accountBalance(t, bank, user.ID, account.AccountNumber).IsZero())

	err = bank.accounts.Delete(context.Background(), user.ID, account.AccountNumber)
	assert.Equal(t, apperrors.CodeConflict, apperrors.CodeOf(err))
}

func TestPostTransactionMaxBalance(t *testing.T) {
	bank := newTestBank()
	user := bank.registerUser(t, "ivan@example.com")
	account := bank.openAccount(t, user.ID)

	deposit(t, bank, user.ID, account.AccountNumber, "9999.99")

	_, err := bank.transactions.PostTransaction(context.Background(), user.ID, account.AccountNumber, models.CreateTransactionRequest{
		Amount: decimal.RequireFromString("0.02"),
		Type:   models.TransactionTypeDeposit,
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeConflict, apperrors.CodeOf(err))
}

func TestPostTransactionOwnershipGuard(t *testing.T) {
	bank := newTestBank()
	owner := bank.registerUser(t, "owner@example.com")
	stranger := bank.registerUser(t, "stranger@example.com")
	account := bank.openAccount(t, owner.ID)

	_, err := bank.transactions.PostTransaction(context.Background(), stranger.ID, account.AccountNumber, models.CreateTransactionRequest{
		Amount: decimal.RequireFromString("10.00"),
		Type:   models.TransactionTypeDeposit,
	})
	assert.Equal(t, apperrors.CodeForbidden, apperrors.CodeOf(err))

	_, err = bank.transactions.List(context.Background(), stranger.ID, account.AccountNumber)
	assert.Equal(t, apperrors.CodeForbidden, apperrors.CodeOf(err))

	_, err = bank.transactions.PostTransaction(context.Background(), "", account.AccountNumber, models.CreateTransactionRequest{
		Amount: decimal.RequireFromString("10.00"),
		Type:   models.TransactionTypeDeposit,
	})
	assert.Equal(t, apperrors.CodeNotAuthenticated, apperrors.CodeOf(err))
}

func TestPostTransactionUnknownAccount(t *testing.T) {
	bank := newTestBank()
	user := bank.registerUser(t, "ivan@example.com")

	_, err := bank.transactions.PostTransaction(context.Background(), user.ID, "01999999", models.CreateTransactionRequest{
		Amount: decimal.RequireFromString("10.00"),
		Type:   models.TransactionTypeDeposit,
	})
	assert.Equal(t, apperrors.CodeAccountNotFound, apperrors.CodeOf(err))
}

func TestTransactionListNewestFirst(t *testing.T) {
	bank := newTestBank()
	user := bank.registerUser(t, "ivan@example.com")
	account := bank.openAccount(t, user.ID)

	first := deposit(t, bank, user.ID, account.AccountNumber, "10.00")
	second := deposit(t, bank, user.ID, account.AccountNumber, "20.00")
	third := withdraw(t, bank, user.ID, account.AccountNumber, "5.00")

	entries, err := bank.transactions.List(context.Background(), user.ID, account.AccountNumber)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, third.ID, entries[0].ID)
	assert.Equal(t, second.ID, entries[1].ID)
	assert.Equal(t, first.ID, entries[2].ID)
}

func TestTransactionGet(t *testing.T) {
	bank := newTestBank()
	user := bank.registerUser(t, "ivan@example.com")
	account := bank.openAccount(t, user.ID)
	entry := deposit(t, bank, user.ID, account.AccountNumber, "42.00")

	// Повторное чтение возвращает ту же проводку
	for i := 0; i < 2; i++ {
		got, err := bank.transactions.Get(context.Background(), user.ID, account.AccountNumber, entry.ID)
		require.NoError(t, err)
		assert.Equal(t, entry.ID, got.ID)
		assert.True(t, got.Amount.Equal(entry.Amount))
	}

	_, err := bank.transactions.Get(context.Background(), user.ID, account.AccountNumber, "tan-missing00000")
	assert.Equal(t, apperrors.CodeTransactionNotFound, apperrors.CodeOf(err))
}

// Баланс после серии проводок равен сумме депозитов минус сумма снятий.
func TestBalanceInvariant(t *testing.T) {
	bank := newTestBank()
	user := bank.registerUser(t, "ivan@example.com")
	account := bank.openAccount(t, user.ID)

	amounts := []string{"100.00", "2.50", "0.01", "37.49"}
	for _, amount := range amounts {
		deposit(t, bank, user.ID, account.AccountNumber, amount)
	}
	withdraw(t, bank, user.ID, account.AccountNumber, "40.00")

	expected := decimal.RequireFromString("100.00")
	assert.True(t, accountBalance(t, bank, user.ID, account.AccountNumber).Equal(expected))
}

func TestConcurrentDeposits(t *testing.T) {
	bank := newTestBank()
	user := bank.registerUser(t, "ivan@example.com")
	account := bank.openAccount(t, user.ID)

	const goroutines = 50
	amount := decimal.RequireFromString("10.00")

	var wg sync.WaitGroup
	errs := make(chan error, goroutines)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := bank.transactions.PostTransaction(context.Background(), user.ID, account.AccountNumber, models.CreateTransactionRequest{
				Amount:    amount,
				Type:      models.TransactionTypeDeposit,
				Reference: fmt.Sprintf("параллельный депозит %d", n),
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	expected := amount.Mul(decimal.NewFromInt(goroutines))
	assert.True(t, accountBalance(t, bank, user.ID, account.AccountNumber).Equal(expected))

	entries, err := bank.transactions.List(context.Background(), user.ID, account.AccountNumber)
	require.NoError(t, err)
	assert.Len(t, entries, goroutines)
}
