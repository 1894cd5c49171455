package handlers

import (
	"encoding/json"

	"github.com/valyala/fasthttp"

	"eagle-bank/internal/models"
	"eagle-bank/internal/services"
	"eagle-bank/internal/utils"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// Register - POST /v1/users: регистрация, доступна без токена.
func (h *UserHandler) Register(ctx *fasthttp.RequestCtx) {
	var req models.CreateUserRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		writeBadRequest(ctx, "неверный формат данных")
		return
	}

	if req.Email == "" || req.Password == "" || req.Name == "" {
		writeBadRequest(ctx, "email, пароль и имя обязательны")
		return
	}
	if len(req.Password) < 8 {
		writeBadRequest(ctx, "пароль должен быть не менее 8 символов")
		return
	}

	user, err := h.userService.Register(ctx, req)
	if err != nil {
		writeError(ctx, err)
		return
	}

	utils.LogSuccess("UserHandler", "Пользователь зарегистрирован: %s", user.ID)
	writeJSON(ctx, fasthttp.StatusCreated, user.ToResponse())
}

// Get - GET /v1/users/{userId}.
func (h *UserHandler) Get(ctx *fasthttp.RequestCtx, userID string) {
	user, err := h.userService.Get(ctx, callerID(ctx), userID)
	if err != nil {
		writeError(ctx, err)
		return
	}

	writeJSON(ctx, fasthttp.StatusOK, user.ToResponse())
}

// Update - PATCH /v1/users/{userId}: частичное обновление профиля.
func (h *UserHandler) Update(ctx *fasthttp.RequestCtx, userID string) {
	var req models.UpdateUserRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		writeBadRequest(ctx, "неверный формат данных")
		return
	}

	user, err := h.userService.Update(ctx, callerID(ctx), userID, req)
	if err != nil {
		writeError(ctx, err)
		return
	}

	writeJSON(ctx, fasthttp.StatusOK, user.ToResponse())
}

// Delete - DELETE /v1/users/{userId}.
func (h *UserHandler) Delete(ctx *fasthttp.RequestCtx, userID string) {
	if err := h.userService.Delete(ctx, callerID(ctx), userID); err != nil {
		writeError(ctx, err)
		return
	}

	ctx.SetStatusCode(fasthttp.StatusNoContent)
}
