package services

import (
	"eagle-bank/internal/apperrors"
	"eagle-bank/internal/utils"
)

// Authorize - единая проверка владения ресурсом. Вызывается перед каждой
// операцией со счётом, транзакцией или профилем пользователя.
// Пустой callerID означает, что аутентификация не состоялась.
func Authorize(callerID, ownerID string) error {
	if callerID == "" {
		return apperrors.NotAuthenticated()
	}
	if callerID != ownerID {
		utils.LogWarning("Authz", "Пользователь %s попытался обратиться к ресурсу пользователя %s", callerID, ownerID)
		return apperrors.Forbidden()
	}
	return nil
}
