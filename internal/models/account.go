package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	// CurrencyGBP - единственная поддерживаемая валюта.
	CurrencyGBP = "GBP"
	// SortCode одинаков для всех счетов банка.
	SortCode = "10-10-10"
	// AccountTypePersonal - единственный вид счёта.
	AccountTypePersonal = "personal"
)

// MaxAccountBalance - верхняя граница баланса счёта.
var MaxAccountBalance = decimal.NewFromFloat(10000.00)

// Account - банковский счёт. Номер имеет вид 01 + шесть цифр.
type Account struct {
	AccountNumber string          `json:"account_number"`
	UserID        string          `json:"user_id"`
	AccountType   string          `json:"account_type"`
	Balance       decimal.Decimal `json:"balance"`
	Currency      string          `json:"currency"`
	SortCode      string          `json:"sort_code"`
	Name          string          `json:"name"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type CreateAccountRequest struct {
	Name        string `json:"name"`
	AccountType string `json:"account_type"`
}

type UpdateAccountRequest struct {
	Name string `json:"name"`
}

type AccountResponse struct {
	AccountNumber string `json:"account_number"`
	AccountType   string `json:"account_type"`
	Balance       string `json:"balance"`
	Currency      string `json:"currency"`
	SortCode      string `json:"sort_code"`
	Name          string `json:"name"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

type AccountListResponse struct {
	Accounts []AccountResponse `json:"accounts"`
	Total    int               `json:"total"`
}

func (a *Account) ToResponse() AccountResponse {
	return AccountResponse{
		AccountNumber: a.AccountNumber,
		AccountType:   a.AccountType,
		Balance:       a.Balance.StringFixed(2),
		Currency:      a.Currency,
		SortCode:      a.SortCode,
		Name:          a.Name,
		CreatedAt:     a.CreatedAt.Format(TimestampFormat),
		UpdatedAt:     a.UpdatedAt.Format(TimestampFormat),
	}
}
