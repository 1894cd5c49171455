package middleware

import (
	"fmt"
	"strings"

	"github.com/valyala/fasthttp"

	"eagle-bank/internal/services"
	"eagle-bank/internal/utils"
)

// UserIDKey - ключ идентичности вызывающего в контексте запроса.
const UserIDKey = "user_id"

type AuthMiddleware struct {
	authService *services.AuthService
}

func NewAuthMiddleware(authService *services.AuthService) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
	}
}

// isPublicEndpoint - фиксированный список операций, доступных без токена.
func isPublicEndpoint(method, path string) bool {
	switch {
	case method == fasthttp.MethodPost && path == "/v1/users":
		return true
	case method == fasthttp.MethodPost && path == "/v1/auth/login":
		return true
	case method == fasthttp.MethodGet && path == "/health":
		return true
	}
	return false
}

// Authenticate извлекает bearer-токен и устанавливает идентичность вызывающего.
// Любой отказ проверки сворачивается в анонимный проход: запрос не прерывается,
// отклонение - дело проверки владения ниже по конвейеру. Так публичные
// эндпоинты и защищённые операции идут через один конвейер.
func (m *AuthMiddleware) Authenticate(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		method := string(ctx.Method())
		path := string(ctx.Path())

		if isPublicEndpoint(method, path) {
			next(ctx)
			return
		}

		authHeader := string(ctx.Request.Header.Peek("Authorization"))
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			next(ctx)
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")

		if userID := m.resolveIdentity(ctx, token); userID != "" {
			ctx.SetUserValue(UserIDKey, userID)
			utils.LogDebug("Middleware", "Аутентифицирован пользователь %s", userID)
		}

		next(ctx)
	}
}

// resolveIdentity проверяет токен. Паника при проверке не валит запрос:
// частично установленная идентичность сбрасывается, запрос идёт анонимно.
func (m *AuthMiddleware) resolveIdentity(ctx *fasthttp.RequestCtx, token string) (userID string) {
	defer func() {
		if r := recover(); r != nil {
			utils.LogError("Middleware", fmt.Sprintf("Паника при проверке токена: %v", r), nil)
			ctx.SetUserValue(UserIDKey, nil)
			userID = ""
		}
	}()

	subject, err := m.authService.VerifyToken(token)
	if err != nil {
		utils.LogWarning("Middleware", "Невалидный токен: %v", err)
		return ""
	}

	valid, err := m.authService.IsTokenValid(token, subject)
	if err != nil || !valid {
		utils.LogWarning("Middleware", "Токен не прошёл проверку для пользователя %s", subject)
		return ""
	}

	return subject
}
