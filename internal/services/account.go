package services

import (
	"context"

	"eagle-bank/internal/apperrors"
	"eagle-bank/internal/cache"
	"eagle-bank/internal/models"
	"eagle-bank/internal/utils"
)

type AccountService struct {
	accountRepo     AccountStore
	transactionRepo TransactionStore
	userRepo        UserStore
	cache           *cache.RedisCache
}

func NewAccountService(accountRepo AccountStore, transactionRepo TransactionStore, userRepo UserStore) *AccountService {
	return &AccountService{
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		userRepo:        userRepo,
		cache:           nil,
	}
}

func NewAccountServiceWithCache(accountRepo AccountStore, transactionRepo TransactionStore, userRepo UserStore, cache *cache.RedisCache) *AccountService {
	service := NewAccountService(accountRepo, transactionRepo, userRepo)
	service.cache = cache
	return service
}

// Create открывает счёт с нулевым балансом для аутентифицированного пользователя.
func (s *AccountService) Create(ctx context.Context, callerID string, req models.CreateAccountRequest) (*models.Account, error) {
	if callerID == "" {
		return nil, apperrors.NotAuthenticated()
	}

	utils.LogInfo("AccountService", "Создание счёта для пользователя %s", callerID)

	if _, err := s.userRepo.GetByID(ctx, callerID); err != nil {
		return nil, err
	}

	accountType := req.AccountType
	if accountType == "" {
		accountType = models.AccountTypePersonal
	}

	account, err := s.accountRepo.Create(ctx, callerID, accountType, req.Name)
	if err != nil {
		utils.LogError("AccountService", "Ошибка создания счёта", err)
		return nil, err
	}

	s.invalidate(ctx, "", callerID)

	utils.LogSuccess("AccountService", "Счёт %s создан для пользователя %s", account.AccountNumber, callerID)
	return account, nil
}

// List возвращает счета вызывающего, новые первыми.
func (s *AccountService) List(ctx context.Context, callerID string) ([]models.Account, error) {
	if callerID == "" {
		return nil, apperrors.NotAuthenticated()
	}

	if s.cache != nil {
		var accounts []models.Account
		err := s.cache.GetJSON(ctx, cache.UserAccountsKey(callerID), &accounts)
		if err == nil {
			utils.LogDebug("Cache", "HIT: счета пользователя %s (%d шт.)", callerID, len(accounts))
			return accounts, nil
		}
		if err != cache.Nil {
			utils.LogWarning("Cache", "Ошибка чтения из кеша: %v", err)
		}
	}

	accounts, err := s.accountRepo.ListByUserID(ctx, callerID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, cache.UserAccountsKey(callerID), accounts, cache.UserAccountsTTL); err != nil {
			utils.LogWarning("Cache", "Не удалось сохранить список счетов в кеш: %v", err)
		}
	}

	return accounts, nil
}

// Get возвращает счёт после проверки владения.
func (s *AccountService) Get(ctx context.Context, callerID, accountNumber string) (*models.Account, error) {
	account, err := s.load(ctx, accountNumber)
	if err != nil {
		return nil, err
	}

	if err := Authorize(callerID, account.UserID); err != nil {
		return nil, err
	}

	return account, nil
}

// Update переименовывает счёт.
func (s *AccountService) Update(ctx context.Context, callerID, accountNumber string, req models.UpdateAccountRequest) (*models.Account, error) {
	account, err := s.accountRepo.GetByNumber(ctx, accountNumber)
	if err != nil {
		return nil, err
	}

	if err := Authorize(callerID, account.UserID); err != nil {
		return nil, err
	}

	updated, err := s.accountRepo.UpdateName(ctx, accountNumber, req.Name)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, accountNumber, account.UserID)

	utils.LogSuccess("AccountService", "Счёт %s обновлён", accountNumber)
	return updated, nil
}

// Delete закрывает счёт. Счёт с проводками или с ненулевым балансом
// не удаляется - оба условия проверяются независимо.
func (s *AccountService) Delete(ctx context.Context, callerID, accountNumber string) error {
	account, err := s.accountRepo.GetByNumber(ctx, accountNumber)
	if err != nil {
		return err
	}

	if err := Authorize(callerID, account.UserID); err != nil {
		return err
	}

	count, err := s.transactionRepo.CountByAccount(ctx, accountNumber)
	if err != nil {
		return err
	}
	if count > 0 {
		utils.LogWarning("AccountService", "Попытка удалить счёт %s с %d проводками", accountNumber, count)
		return apperrors.Conflict("нельзя удалить счёт с проводками")
	}

	if !account.Balance.IsZero() {
		utils.LogWarning("AccountService", "Попытка удалить счёт %s с балансом %s", accountNumber, account.Balance.StringFixed(2))
		return apperrors.Conflict("нельзя удалить счёт с ненулевым балансом")
	}

	if err := s.accountRepo.Delete(ctx, accountNumber); err != nil {
		return err
	}

	s.invalidate(ctx, accountNumber, account.UserID)

	utils.LogSuccess("AccountService", "Счёт %s удалён", accountNumber)
	return nil
}

func (s *AccountService) load(ctx context.Context, accountNumber string) (*models.Account, error) {
	if s.cache != nil {
		var account models.Account
		err := s.cache.GetJSON(ctx, cache.AccountKey(accountNumber), &account)
		if err == nil {
			utils.LogDebug("Cache", "HIT: счёт %s", accountNumber)
			return &account, nil
		}
		if err != cache.Nil {
			utils.LogWarning("Cache", "Ошибка чтения из кеша: %v", err)
		}
	}

	account, err := s.accountRepo.GetByNumber(ctx, accountNumber)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, cache.AccountKey(accountNumber), account, cache.AccountTTL); err != nil {
			utils.LogWarning("Cache", "Не удалось сохранить счёт в кеш: %v", err)
		}
	}

	return account, nil
}

func (s *AccountService) invalidate(ctx context.Context, accountNumber, userID string) {
	if s.cache == nil {
		return
	}

	keys := []string{cache.UserAccountsKey(userID)}
	if accountNumber != "" {
		keys = append(keys, cache.AccountKey(accountNumber))
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		utils.LogWarning("Cache", "Ошибка инвалидации кеша: %v", err)
	}
}
