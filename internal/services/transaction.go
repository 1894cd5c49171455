package services

import (
	"context"
	"fmt"

	"eagle-bank/internal/cache"
	"eagle-bank/internal/models"
	"eagle-bank/internal/utils"
	"eagle-bank/internal/worker"
)

type TransactionService struct {
	transactionRepo TransactionStore
	accountRepo     AccountStore
	cache           *cache.RedisCache
	workerPool      *worker.Pool
}

func NewTransactionService(transactionRepo TransactionStore, accountRepo AccountStore) *TransactionService {
	return &TransactionService{
		transactionRepo: transactionRepo,
		accountRepo:     accountRepo,
		cache:           nil,
	}
}

func NewTransactionServiceWithCache(transactionRepo TransactionStore, accountRepo AccountStore, cache *cache.RedisCache) *TransactionService {
	service := NewTransactionService(transactionRepo, accountRepo)
	service.cache = cache
	return service
}

// SetWorkerPool подключает пул для асинхронной инвалидации кеша.
func (s *TransactionService) SetWorkerPool(pool *worker.Pool) {
	s.workerPool = pool
}

// PostTransaction проводит депозит или снятие по счёту.
// Порядок: счёт -> владение -> атомарная проводка (проверка овердрафта
// и обновление баланса выполняются в репозитории под блокировкой строки).
func (s *TransactionService) PostTransaction(ctx context.Context, callerID, accountNumber string, req models.CreateTransactionRequest) (*models.Transaction, error) {
	utils.LogInfo("TransactionService", "Проводка по счёту %s: %s %s", accountNumber, req.Type, req.Amount.StringFixed(2))

	account, err := s.accountRepo.GetByNumber(ctx, accountNumber)
	if err != nil {
		return nil, err
	}

	if err := Authorize(callerID, account.UserID); err != nil {
		return nil, err
	}

	entry, err := s.transactionRepo.ExecuteEntry(ctx, accountNumber, req.Type, req.Amount, req.Reference)
	if err != nil {
		utils.LogError("TransactionService", "Ошибка проводки", err)
		return nil, err
	}

	s.invalidateCacheAsync(accountNumber, account.UserID, entry.ID)

	utils.LogSuccess("TransactionService", "Проводка %s выполнена", entry.ID)
	return entry, nil
}

// List возвращает проводки счёта, строго новые первыми.
func (s *TransactionService) List(ctx context.Context, callerID, accountNumber string) ([]models.Transaction, error) {
	account, err := s.accountRepo.GetByNumber(ctx, accountNumber)
	if err != nil {
		return nil, err
	}

	if err := Authorize(callerID, account.UserID); err != nil {
		return nil, err
	}

	return s.transactionRepo.ListByAccount(ctx, accountNumber)
}

// Get возвращает проводку по идентификатору в рамках счёта.
func (s *TransactionService) Get(ctx context.Context, callerID, accountNumber, transactionID string) (*models.Transaction, error) {
	account, err := s.accountRepo.GetByNumber(ctx, accountNumber)
	if err != nil {
		return nil, err
	}

	if err := Authorize(callerID, account.UserID); err != nil {
		return nil, err
	}

	return s.transactionRepo.GetByIDAndAccount(ctx, transactionID, accountNumber)
}

// invalidateCacheAsync сбрасывает кеш счёта через пул воркеров;
// при переполнении очереди - синхронно.
func (s *TransactionService) invalidateCacheAsync(accountNumber, userID, transactionID string) {
	if s.cache == nil {
		return
	}

	keys := []string{cache.AccountKey(accountNumber), cache.UserAccountsKey(userID)}

	if s.workerPool == nil {
		if err := s.cache.Delete(context.Background(), keys...); err != nil {
			utils.LogWarning("TransactionService", "Ошибка инвалидации кеша: %v", err)
		}
		return
	}

	job := worker.Job{
		ID: fmt.Sprintf("cache-invalidate-%s", transactionID),
		Task: func() error {
			return s.cache.Delete(context.Background(), keys...)
		},
	}

	if err := s.workerPool.Submit(job); err != nil {
		utils.LogWarning("TransactionService", "Пул переполнен, инвалидация кеша выполняется синхронно")
		if err := s.cache.Delete(context.Background(), keys...); err != nil {
			utils.LogWarning("TransactionService", "Ошибка инвалидации кеша: %v", err)
		}
	}
}
