package handlers

import (
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"eagle-bank/internal/utils"
	"eagle-bank/internal/worker"
)

// Router разводит запросы по обработчикам. У fasthttp нет встроенного
// роутера, а путей здесь немного, поэтому диспетчеризация - разбор
// сегментов пути вручную.
type Router struct {
	auth         *AuthHandler
	users        *UserHandler
	accounts     *AccountHandler
	transactions *TransactionHandler
	workerPool   *worker.Pool
}

func NewRouter(auth *AuthHandler, users *UserHandler, accounts *AccountHandler, transactions *TransactionHandler, workerPool *worker.Pool) *Router {
	return &Router{
		auth:         auth,
		users:        users,
		accounts:     accounts,
		transactions: transactions,
		workerPool:   workerPool,
	}
}

func (r *Router) Handle(ctx *fasthttp.RequestCtx) {
	startTime := time.Now()
	method := string(ctx.Method())
	path := string(ctx.Path())

	caller := callerID(ctx)
	if caller == "" {
		caller = "anonymous"
	}
	utils.LogRequest(method, path, caller)

	r.dispatch(ctx, method, path)

	utils.LogResponse(path, ctx.Response.StatusCode(), time.Since(startTime))
}

func (r *Router) dispatch(ctx *fasthttp.RequestCtx, method, path string) {
	if path == "/health" && method == fasthttp.MethodGet {
		r.health(ctx)
		return
	}
	if path == "/v1/auth/login" && method == fasthttp.MethodPost {
		r.auth.Login(ctx)
		return
	}

	segments := strings.Split(strings.Trim(path, "/"), "/")
	if len(segments) < 2 || segments[0] != "v1" {
		r.notFound(ctx)
		return
	}

	switch segments[1] {
	case "users":
		r.dispatchUsers(ctx, method, segments[2:])
	case "accounts":
		r.dispatchAccounts(ctx, method, segments[2:])
	default:
		r.notFound(ctx)
	}
}

func (r *Router) dispatchUsers(ctx *fasthttp.RequestCtx, method string, rest []string) {
	switch {
	case len(rest) == 0 && method == fasthttp.MethodPost:
		r.users.Register(ctx)
	case len(rest) == 1 && method == fasthttp.MethodGet:
		r.users.Get(ctx, rest[0])
	case len(rest) == 1 && method == fasthttp.MethodPatch:
		r.users.Update(ctx, rest[0])
	case len(rest) == 1 && method == fasthttp.MethodDelete:
		r.users.Delete(ctx, rest[0])
	case len(rest) <= 1:
		r.methodNotAllowed(ctx)
	default:
		r.notFound(ctx)
	}
}

func (r *Router) dispatchAccounts(ctx *fasthttp.RequestCtx, method string, rest []string) {
	switch {
	case len(rest) == 0 && method == fasthttp.MethodPost:
		r.accounts.Create(ctx)
	case len(rest) == 0 && method == fasthttp.MethodGet:
		r.accounts.List(ctx)
	case len(rest) == 1 && method == fasthttp.MethodGet:
		r.accounts.Get(ctx, rest[0])
	case len(rest) == 1 && method == fasthttp.MethodPatch:
		r.accounts.Update(ctx, rest[0])
	case len(rest) == 1 && method == fasthttp.MethodDelete:
		r.accounts.Delete(ctx, rest[0])
	case len(rest) == 2 && rest[1] == "transactions" && method == fasthttp.MethodPost:
		r.transactions.Create(ctx, rest[0])
	case len(rest) == 2 && rest[1] == "transactions" && method == fasthttp.MethodGet:
		r.transactions.List(ctx, rest[0])
	case len(rest) == 3 && rest[1] == "transactions" && method == fasthttp.MethodGet:
		r.transactions.Get(ctx, rest[0], rest[2])
	case len(rest) <= 1 || (len(rest) >= 2 && rest[1] == "transactions" && len(rest) <= 3):
		r.methodNotAllowed(ctx)
	default:
		r.notFound(ctx)
	}
}

func (r *Router) health(ctx *fasthttp.RequestCtx) {
	payload := map[string]interface{}{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	}
	if r.workerPool != nil {
		payload["worker_pool"] = r.workerPool.GetStats()
	}
	writeJSON(ctx, fasthttp.StatusOK, payload)
}

func (r *Router) notFound(ctx *fasthttp.RequestCtx) {
	writeJSON(ctx, fasthttp.StatusNotFound, map[string]string{"error": "не найдено"})
}

func (r *Router) methodNotAllowed(ctx *fasthttp.RequestCtx) {
	writeJSON(ctx, fasthttp.StatusMethodNotAllowed, map[string]string{"error": "метод не поддерживается"})
}
