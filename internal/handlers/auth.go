package handlers

import (
	"encoding/json"

	"github.com/valyala/fasthttp"

	"eagle-bank/internal/models"
	"eagle-bank/internal/services"
	"eagle-bank/internal/utils"
)

type AuthHandler struct {
	authService *services.AuthService
	userService *services.UserService
}

func NewAuthHandler(authService *services.AuthService, userService *services.UserService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
	}
}

// Login - POST /v1/auth/login: проверка учётных данных и выпуск токена.
func (h *AuthHandler) Login(ctx *fasthttp.RequestCtx) {
	var req models.LoginRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		writeBadRequest(ctx, "неверный формат данных")
		return
	}

	if req.Email == "" || req.Password == "" {
		writeBadRequest(ctx, "email и пароль обязательны")
		return
	}

	user, err := h.userService.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		writeError(ctx, err)
		return
	}

	token, err := h.authService.GenerateToken(user.ID)
	if err != nil {
		writeError(ctx, err)
		return
	}

	utils.LogSuccess("AuthHandler", "Выпущен токен для пользователя %s", user.ID)
	writeJSON(ctx, fasthttp.StatusOK, models.LoginResponse{
		Token:  token,
		UserID: user.ID,
	})
}
