package handlers

import (
	"encoding/json"
	"errors"

	"github.com/valyala/fasthttp"

	"eagle-bank/internal/apperrors"
	"eagle-bank/internal/middleware"
	"eagle-bank/internal/utils"
)

func writeJSON(ctx *fasthttp.RequestCtx, statusCode int, payload interface{}) {
	ctx.SetStatusCode(statusCode)
	ctx.SetContentType("application/json")
	_ = json.NewEncoder(ctx).Encode(payload)
}

// writeError переводит ошибку бизнес-логики в HTTP-ответ.
// Внутренние ошибки логируются полностью, наружу уходит общий текст.
func writeError(ctx *fasthttp.RequestCtx, err error) {
	statusCode := apperrors.HTTPStatus(err)

	body := map[string]interface{}{}
	var appErr *apperrors.Error
	if errors.As(err, &appErr) && statusCode != fasthttp.StatusInternalServerError {
		body["error"] = appErr.Message
		if appErr.Details != nil {
			body["details"] = appErr.Details
		}
	} else {
		utils.LogError("HTTP", "Необработанная ошибка", err)
		body["error"] = "внутренняя ошибка сервера"
	}

	writeJSON(ctx, statusCode, body)
}

func writeBadRequest(ctx *fasthttp.RequestCtx, message string) {
	writeJSON(ctx, fasthttp.StatusBadRequest, map[string]string{"error": message})
}

// callerID возвращает идентичность вызывающего или пустую строку.
func callerID(ctx *fasthttp.RequestCtx) string {
	userID, _ := ctx.UserValue(middleware.UserIDKey).(string)
	return userID
}
