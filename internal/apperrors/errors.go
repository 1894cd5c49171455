package apperrors

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/valyala/fasthttp"
)

// Code - машинно-читаемый вид ошибки бизнес-логики.
type Code string

const (
	CodeNotAuthenticated    Code = "NOT_AUTHENTICATED"
	CodeForbidden           Code = "FORBIDDEN"
	CodeInvalidCredentials  Code = "INVALID_CREDENTIALS"
	CodeUserNotFound        Code = "USER_NOT_FOUND"
	CodeAccountNotFound     Code = "ACCOUNT_NOT_FOUND"
	CodeTransactionNotFound Code = "TRANSACTION_NOT_FOUND"
	CodeInsufficientFunds   Code = "INSUFFICIENT_FUNDS"
	CodeConflict            Code = "CONFLICT"
	CodeUnexpected          Code = "UNEXPECTED"
)

// Error - типизированная ошибка с кодом и структурированной диагностикой.
// Details заполняется только там, где вызывающему нужны данные,
// а не отформатированная строка (например, суммы при нехватке средств).
type Error struct {
	Code    Code
	Message string
	Details interface{}
	cause   error
}

// InsufficientFundsDetails - диагностика отказа по нехватке средств.
type InsufficientFundsDetails struct {
	AccountNumber string          `json:"account_number"`
	Requested     decimal.Decimal `json:"requested"`
	Available     decimal.Decimal `json:"available"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is позволяет сравнивать ошибки по коду через errors.Is.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func NotAuthenticated() *Error {
	return New(CodeNotAuthenticated, "требуется аутентификация")
}

func Forbidden() *Error {
	return New(CodeForbidden, "нет доступа к данному ресурсу")
}

func InvalidCredentials() *Error {
	return New(CodeInvalidCredentials, "неверный email или пароль")
}

func UserNotFound(userID string) *Error {
	return New(CodeUserNotFound, fmt.Sprintf("пользователь %s не найден", userID))
}

func AccountNotFound(accountNumber string) *Error {
	return New(CodeAccountNotFound, fmt.Sprintf("счёт %s не найден", accountNumber))
}

func TransactionNotFound(transactionID string) *Error {
	return New(CodeTransactionNotFound, fmt.Sprintf("транзакция %s не найдена", transactionID))
}

func InsufficientFunds(accountNumber string, requested, available decimal.Decimal) *Error {
	return &Error{
		Code: CodeInsufficientFunds,
		Message: fmt.Sprintf("недостаточно средств на счёте %s: запрошено %s, доступно %s",
			accountNumber, requested.StringFixed(2), available.StringFixed(2)),
		Details: InsufficientFundsDetails{
			AccountNumber: accountNumber,
			Requested:     requested,
			Available:     available,
		},
	}
}

func Conflict(message string) *Error {
	return New(CodeConflict, message)
}

// Unexpected оборачивает внутреннюю ошибку. Наружу уходит общий текст,
// причина остаётся доступной через errors.Unwrap для логирования.
func Unexpected(err error) *Error {
	return &Error{
		Code:    CodeUnexpected,
		Message: "внутренняя ошибка сервера",
		cause:   err,
	}
}

// CodeOf возвращает код ошибки или CodeUnexpected для посторонних ошибок.
func CodeOf(err error) Code {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnexpected
}

// HTTPStatus сопоставляет код ошибки со статусом ответа.
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeNotAuthenticated, CodeInvalidCredentials:
		return fasthttp.StatusUnauthorized
	case CodeForbidden:
		return fasthttp.StatusForbidden
	case CodeUserNotFound, CodeAccountNotFound, CodeTransactionNotFound:
		return fasthttp.StatusNotFound
	case CodeInsufficientFunds:
		return fasthttp.StatusUnprocessableEntity
	case CodeConflict:
		return fasthttp.StatusConflict
	default:
		return fasthttp.StatusInternalServerError
	}
}
