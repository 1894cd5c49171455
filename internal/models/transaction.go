package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TransactionTypeDeposit    = "deposit"
	TransactionTypeWithdrawal = "withdrawal"
)

var (
	// MinTransactionAmount и MaxTransactionAmount - допустимый диапазон суммы.
	MinTransactionAmount = decimal.NewFromFloat(0.01)
	MaxTransactionAmount = decimal.NewFromFloat(10000.00)
)

// Transaction - проводка по счёту. Идентификатор имеет вид tan-<суффикс>.
// UserID денормализован из счёта. Запись неизменяемая.
type Transaction struct {
	ID            string          `json:"id"`
	AccountNumber string          `json:"account_number"`
	UserID        string          `json:"user_id"`
	Amount        decimal.Decimal `json:"amount"`
	Type          string          `json:"type"`
	Currency      string          `json:"currency"`
	Reference     string          `json:"reference,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

type CreateTransactionRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Type      string          `json:"type"`
	Reference string          `json:"reference"`
}

type TransactionResponse struct {
	ID            string `json:"id"`
	AccountNumber string `json:"account_number"`
	Amount        string `json:"amount"`
	Type          string `json:"type"`
	Currency      string `json:"currency"`
	Reference     string `json:"reference,omitempty"`
	CreatedAt     string `json:"created_at"`
}

type TransactionListResponse struct {
	Transactions  []TransactionResponse `json:"transactions"`
	Total         int                   `json:"total"`
	AccountNumber string                `json:"account_number"`
}

func (t *Transaction) ToResponse() TransactionResponse {
	return TransactionResponse{
		ID:            t.ID,
		AccountNumber: t.AccountNumber,
		Amount:        t.Amount.StringFixed(2),
		Type:          t.Type,
		Currency:      t.Currency,
		Reference:     t.Reference,
		CreatedAt:     t.CreatedAt.Format(TimestampFormat),
	}
}
