package repository

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"

	"eagle-bank/internal/utils"
)

// maxGenerateAttempts - предел попыток подбора свободного идентификатора.
const maxGenerateAttempts = 100

// ExistsFunc сообщает, занят ли кандидат.
type ExistsFunc func(ctx context.Context, candidate string) (bool, error)

// generateID подбирает свободный идентификатор: до maxGenerateAttempts попыток
// с проверкой существования, затем фоллбэк на основе текущего времени.
// Фоллбэк НЕ перепроверяет уникальность - при высокой нагрузке это
// остаточный риск коллизии, поведение сохранено намеренно.
func generateID(ctx context.Context, component string, newCandidate, fallback func() string, exists ExistsFunc) (string, error) {
	for attempt := 1; attempt <= maxGenerateAttempts; attempt++ {
		candidate := newCandidate()

		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("ошибка проверки уникальности: %w", err)
		}
		if !taken {
			return candidate, nil
		}

		utils.LogWarning(component, "Коллизия идентификатора %s, попытка %d/%d", candidate, attempt, maxGenerateAttempts)
	}

	candidate := fallback()
	utils.LogWarning(component, "Попытки исчерпаны, используется фоллбэк-идентификатор %s", candidate)
	return candidate, nil
}

// GenerateAccountNumber возвращает свободный номер счёта вида 01 + 6 цифр.
func GenerateAccountNumber(ctx context.Context, exists ExistsFunc) (string, error) {
	return generateID(ctx, "AccountRepo", newAccountNumber, accountNumberFallback, exists)
}

// GenerateTransactionID возвращает свободный идентификатор транзакции tan-<суффикс>.
func GenerateTransactionID(ctx context.Context, exists ExistsFunc) (string, error) {
	return generateID(ctx, "TransactionRepo", newTransactionID, transactionIDFallback, exists)
}

// NewUserID возвращает идентификатор пользователя usr-<суффикс>.
func NewUserID() string {
	return "usr-" + uuidSuffix(10)
}

func newAccountNumber() string {
	return "01" + randomDigits(6)
}

func accountNumberFallback() string {
	return fmt.Sprintf("01%04d%s", time.Now().UnixMilli()%10000, randomDigits(2))
}

func newTransactionID() string {
	return "tan-" + uuidSuffix(12)
}

func transactionIDFallback() string {
	return fmt.Sprintf("tan-%d-%s", time.Now().UnixMilli(), randomDigits(3))
}

func randomDigits(n int) string {
	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
	v, err := rand.Int(rand.Reader, limit)
	if err != nil {
		// crypto/rand на практике не отказывает; на всякий случай - время
		v = big.NewInt(time.Now().UnixNano() % int64(1e9))
	}
	return fmt.Sprintf("%0*d", n, v)
}

func uuidSuffix(n int) string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:n]
}
