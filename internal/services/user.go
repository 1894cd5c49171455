package services

import (
	"context"
	"fmt"

	"eagle-bank/internal/apperrors"
	"eagle-bank/internal/models"
	"eagle-bank/internal/utils"
)

type UserService struct {
	userRepo    UserStore
	accountRepo AccountStore
	authService *AuthService
}

func NewUserService(userRepo UserStore, accountRepo AccountStore, authService *AuthService) *UserService {
	return &UserService{
		userRepo:    userRepo,
		accountRepo: accountRepo,
		authService: authService,
	}
}

// Register создаёт пользователя с уникальным email.
func (s *UserService) Register(ctx context.Context, req models.CreateUserRequest) (*models.User, error) {
	utils.LogInfo("UserService", "Регистрация пользователя с email %s", req.Email)

	taken, err := s.userRepo.EmailTaken(ctx, req.Email, "")
	if err != nil {
		return nil, err
	}
	if taken {
		utils.LogWarning("UserService", "Email %s уже занят", req.Email)
		return nil, apperrors.Conflict(fmt.Sprintf("пользователь с email %s уже существует", req.Email))
	}

	passwordHash, err := s.authService.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: passwordHash,
		Name:         req.Name,
		PhoneNumber:  req.PhoneNumber,
		Address:      req.Address,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	utils.LogSuccess("UserService", "Пользователь %s зарегистрирован", user.ID)
	return user, nil
}

// Authenticate проверяет учётные данные для выпуска токена.
// Любой отказ сворачивается в InvalidCredentials, чтобы не раскрывать,
// существует ли email.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		utils.LogWarning("UserService", "Неудачный вход: email %s", email)
		return nil, apperrors.InvalidCredentials()
	}

	if err := s.authService.CheckPasswordHash(password, user.PasswordHash); err != nil {
		utils.LogWarning("UserService", "Неудачный вход: неверный пароль для %s", user.ID)
		return nil, apperrors.InvalidCredentials()
	}

	return user, nil
}

// Get возвращает профиль. Доступ только к собственному профилю.
func (s *UserService) Get(ctx context.Context, callerID, userID string) (*models.User, error) {
	if err := Authorize(callerID, userID); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, userID)
}

// Update обновляет непустые поля профиля.
func (s *UserService) Update(ctx context.Context, callerID, userID string, req models.UpdateUserRequest) (*models.User, error) {
	if err := Authorize(callerID, userID); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Email != "" && req.Email != user.Email {
		taken, err := s.userRepo.EmailTaken(ctx, req.Email, userID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, apperrors.Conflict(fmt.Sprintf("пользователь с email %s уже существует", req.Email))
		}
		user.Email = req.Email
	}
	if req.Name != "" {
		user.Name = req.Name
	}
	if req.PhoneNumber != "" {
		user.PhoneNumber = req.PhoneNumber
	}
	if req.Address != nil {
		user.Address = *req.Address
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	utils.LogSuccess("UserService", "Профиль пользователя %s обновлён", userID)
	return user, nil
}

// Delete удаляет пользователя. Пользователь с открытыми счетами не удаляется.
func (s *UserService) Delete(ctx context.Context, callerID, userID string) error {
	if err := Authorize(callerID, userID); err != nil {
		return err
	}

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return err
	}

	count, err := s.accountRepo.CountByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if count > 0 {
		utils.LogWarning("UserService", "Попытка удалить пользователя %s с %d счетами", userID, count)
		return apperrors.Conflict("нельзя удалить пользователя с открытыми счетами")
	}

	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return err
	}

	utils.LogSuccess("UserService", "Пользователь %s удалён", userID)
	return nil
}
