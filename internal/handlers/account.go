package handlers

import (
	"encoding/json"

	"github.com/valyala/fasthttp"

	"eagle-bank/internal/models"
	"eagle-bank/internal/services"
	"eagle-bank/internal/utils"
)

type AccountHandler struct {
	accountService *services.AccountService
}

func NewAccountHandler(accountService *services.AccountService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
	}
}

// Create - POST /v1/accounts.
func (h *AccountHandler) Create(ctx *fasthttp.RequestCtx) {
	var req models.CreateAccountRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		writeBadRequest(ctx, "неверный формат данных")
		return
	}

	if req.Name == "" {
		writeBadRequest(ctx, "название счёта обязательно")
		return
	}

	account, err := h.accountService.Create(ctx, callerID(ctx), req)
	if err != nil {
		writeError(ctx, err)
		return
	}

	utils.LogSuccess("AccountHandler", "Счёт создан: %s", account.AccountNumber)
	writeJSON(ctx, fasthttp.StatusCreated, account.ToResponse())
}

// List - GET /v1/accounts: счета вызывающего.
func (h *AccountHandler) List(ctx *fasthttp.RequestCtx) {
	accounts, err := h.accountService.List(ctx, callerID(ctx))
	if err != nil {
		writeError(ctx, err)
		return
	}

	responses := make([]models.AccountResponse, 0, len(accounts))
	for i := range accounts {
		responses = append(responses, accounts[i].ToResponse())
	}

	writeJSON(ctx, fasthttp.StatusOK, models.AccountListResponse{
		Accounts: responses,
		Total:    len(responses),
	})
}

// Get - GET /v1/accounts/{accountNumber}.
func (h *AccountHandler) Get(ctx *fasthttp.RequestCtx, accountNumber string) {
	account, err := h.accountService.Get(ctx, callerID(ctx), accountNumber)
	if err != nil {
		writeError(ctx, err)
		return
	}

	writeJSON(ctx, fasthttp.StatusOK, account.ToResponse())
}

// Update - PATCH /v1/accounts/{accountNumber}.
func (h *AccountHandler) Update(ctx *fasthttp.RequestCtx, accountNumber string) {
	var req models.UpdateAccountRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		writeBadRequest(ctx, "неверный формат данных")
		return
	}

	if req.Name == "" {
		writeBadRequest(ctx, "название счёта обязательно")
		return
	}

	account, err := h.accountService.Update(ctx, callerID(ctx), accountNumber, req)
	if err != nil {
		writeError(ctx, err)
		return
	}

	writeJSON(ctx, fasthttp.StatusOK, account.ToResponse())
}

// Delete - DELETE /v1/accounts/{accountNumber}.
func (h *AccountHandler) Delete(ctx *fasthttp.RequestCtx, accountNumber string) {
	if err := h.accountService.Delete(ctx, callerID(ctx), accountNumber); err != nil {
		writeError(ctx, err)
		return
	}

	ctx.SetStatusCode(fasthttp.StatusNoContent)
}
