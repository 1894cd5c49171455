package handlers

import (
	"encoding/json"

	"github.com/valyala/fasthttp"

	"eagle-bank/internal/models"
	"eagle-bank/internal/services"
	"eagle-bank/internal/utils"
)

type TransactionHandler struct {
	transactionService *services.TransactionService
}

func NewTransactionHandler(transactionService *services.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
	}
}

// Create - POST /v1/accounts/{accountNumber}/transactions.
func (h *TransactionHandler) Create(ctx *fasthttp.RequestCtx, accountNumber string) {
	var req models.CreateTransactionRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		writeBadRequest(ctx, "неверный формат данных")
		return
	}

	if req.Type != models.TransactionTypeDeposit && req.Type != models.TransactionTypeWithdrawal {
		writeBadRequest(ctx, "тип транзакции должен быть deposit или withdrawal")
		return
	}
	if req.Amount.LessThan(models.MinTransactionAmount) || req.Amount.GreaterThan(models.MaxTransactionAmount) {
		writeBadRequest(ctx, "сумма должна быть в диапазоне от 0.01 до 10000.00")
		return
	}
	if req.Amount.Exponent() < -2 {
		writeBadRequest(ctx, "сумма указывается с точностью до двух знаков")
		return
	}

	entry, err := h.transactionService.PostTransaction(ctx, callerID(ctx), accountNumber, req)
	if err != nil {
		writeError(ctx, err)
		return
	}

	utils.LogSuccess("TransactionHandler", "Проводка создана: %s", entry.ID)
	writeJSON(ctx, fasthttp.StatusCreated, entry.ToResponse())
}

// List - GET /v1/accounts/{accountNumber}/transactions, новые первыми.
func (h *TransactionHandler) List(ctx *fasthttp.RequestCtx, accountNumber string) {
	transactions, err := h.transactionService.List(ctx, callerID(ctx), accountNumber)
	if err != nil {
		writeError(ctx, err)
		return
	}

	responses := make([]models.TransactionResponse, 0, len(transactions))
	for i := range transactions {
		responses = append(responses, transactions[i].ToResponse())
	}

	writeJSON(ctx, fasthttp.StatusOK, models.TransactionListResponse{
		Transactions:  responses,
		Total:         len(responses),
		AccountNumber: accountNumber,
	})
}

// Get - GET /v1/accounts/{accountNumber}/transactions/{transactionId}.
func (h *TransactionHandler) Get(ctx *fasthttp.RequestCtx, accountNumber, transactionID string) {
	entry, err := h.transactionService.Get(ctx, callerID(ctx), accountNumber, transactionID)
	if err != nil {
		writeError(ctx, err)
		return
	}

	writeJSON(ctx, fasthttp.StatusOK, entry.ToResponse())
}
