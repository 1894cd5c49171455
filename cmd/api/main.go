package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"

	"eagle-bank/internal/cache"
	"eagle-bank/internal/config"
	"eagle-bank/internal/handlers"
	"eagle-bank/internal/middleware"
	"eagle-bank/internal/repository"
	"eagle-bank/internal/services"
	"eagle-bank/internal/utils"
	"eagle-bank/internal/worker"

	"github.com/valyala/fasthttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Ошибка конфигурации: %v", err)
	}

	dbPool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Не удалось подключиться к базе данных: %v", err)
	}
	defer dbPool.Close()

	if err := runMigrations(cfg); err != nil {
		log.Fatalf("Ошибка миграций: %v", err)
	}
	utils.LogSuccess("Main", "Миграции применены")

	// Redis не обязателен: без него сервисы работают напрямую с базой
	var redisCache *cache.RedisCache
	if cfg.RedisAddr != "" {
		redisCache = cache.NewRedisCache(cfg.RedisAddr)
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisCache.Ping(pingCtx); err != nil {
			utils.LogWarning("Main", "Redis недоступен (%v), кеширование отключено", err)
			redisCache = nil
		} else {
			utils.LogSuccess("Main", "Подключен Redis: %s", cfg.RedisAddr)
			defer redisCache.Close()
		}
		cancel()
	}

	userRepo := repository.NewUserRepository(dbPool)
	accountRepo := repository.NewAccountRepository(dbPool)
	transactionRepo := repository.NewTransactionRepository(dbPool)

	authService := services.NewAuthService(cfg.JWTSecret, cfg.JWTTTL)
	userService := services.NewUserService(userRepo, accountRepo, authService)

	var accountService *services.AccountService
	var transactionService *services.TransactionService
	if redisCache != nil {
		accountService = services.NewAccountServiceWithCache(accountRepo, transactionRepo, userRepo, redisCache)
		transactionService = services.NewTransactionServiceWithCache(transactionRepo, accountRepo, redisCache)
	} else {
		accountService = services.NewAccountService(accountRepo, transactionRepo, userRepo)
		transactionService = services.NewTransactionService(transactionRepo, accountRepo)
	}

	workerPool := worker.NewPool(cfg.WorkerCount, cfg.WorkerQueueSize, cfg.WorkerMaxRetries)
	workerPool.Start()
	transactionService.SetWorkerPool(workerPool)

	authMiddleware := middleware.NewAuthMiddleware(authService)
	router := handlers.NewRouter(
		handlers.NewAuthHandler(authService, userService),
		handlers.NewUserHandler(userService),
		handlers.NewAccountHandler(accountService),
		handlers.NewTransactionHandler(transactionService),
		workerPool,
	)

	server := &fasthttp.Server{
		Handler: authMiddleware.Authenticate(router.Handle),
		Name:    "eagle-bank",
	}

	go func() {
		utils.LogInfo("Main", "Сервер запускается на %s", cfg.ListenAddr)
		if err := server.ListenAndServe(cfg.ListenAddr); err != nil {
			log.Fatalf("Сервер остановился с ошибкой: %v", err)
		}
	}()

	shutdownChannel := make(chan os.Signal, 1)
	signal.Notify(shutdownChannel, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownChannel

	utils.LogInfo("Main", "Остановка сервера...")
	if err := server.Shutdown(); err != nil {
		utils.LogError("Main", "Ошибка остановки сервера", err)
	}
	if err := workerPool.Shutdown(cfg.ShutdownTimeout); err != nil {
		utils.LogError("Main", "Ошибка остановки пула воркеров", err)
	}
	utils.LogSuccess("Main", "Сервер остановлен")
}

func runMigrations(cfg *config.Config) error {
	m, err := migrate.New("file://"+cfg.MigrationsPath, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
