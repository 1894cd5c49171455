package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	accountNumberRe = regexp.MustCompile(`^01\d{6}$`)
	transactionIDRe = regexp.MustCompile(`^tan-[0-9a-f]{12}$`)
	userIDRe        = regexp.MustCompile(`^usr-[0-9a-f]{10}$`)
)

func neverExists(context.Context, string) (bool, error) { return false, nil }

func TestGenerateAccountNumberFormat(t *testing.T) {
	number, err := GenerateAccountNumber(context.Background(), neverExists)
	require.NoError(t, err)
	assert.Regexp(t, accountNumberRe, number)
}

func TestGenerateTransactionIDFormat(t *testing.T) {
	id, err := GenerateTransactionID(context.Background(), neverExists)
	require.NoError(t, err)
	assert.Regexp(t, transactionIDRe, id)
}

func TestNewUserIDFormat(t *testing.T) {
	assert.Regexp(t, userIDRe, NewUserID())
}

func TestGenerateStopsOnFirstFreeCandidate(t *testing.T) {
	calls := 0
	exists := func(context.Context, string) (bool, error) {
		calls++
		return false, nil
	}

	_, err := GenerateAccountNumber(context.Background(), exists)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

// При постоянных коллизиях генератор делает ровно 100 попыток и
// переходит на фоллбэк, который уникальность уже не проверяет.
func TestGenerateFallbackAfterExhaustedAttempts(t *testing.T) {
	calls := 0
	alwaysExists := func(context.Context, string) (bool, error) {
		calls++
		return true, nil
	}

	number, err := GenerateAccountNumber(context.Background(), alwaysExists)
	require.NoError(t, err)
	assert.Equal(t, 100, calls)
	// Фоллбэк сохраняет формат номера счёта
	assert.Regexp(t, accountNumberRe, number)
}

func TestGenerateTransactionIDFallbackFormat(t *testing.T) {
	alwaysExists := func(context.Context, string) (bool, error) { return true, nil }

	id, err := GenerateTransactionID(context.Background(), alwaysExists)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^tan-\d+-\d{3}$`), id)
}

func TestGeneratePropagatesExistsError(t *testing.T) {
	checkFailed := errors.New("хранилище недоступно")
	exists := func(context.Context, string) (bool, error) { return false, checkFailed }

	_, err := GenerateAccountNumber(context.Background(), exists)
	require.Error(t, err)
	assert.ErrorIs(t, err, checkFailed)
}
