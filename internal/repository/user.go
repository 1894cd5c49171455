package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"eagle-bank/internal/apperrors"
	"eagle-bank/internal/models"
	"eagle-bank/internal/utils"
)

const userColumns = `user_id, email, password_hash, name, phone_number,
	address_line1, address_line2, address_line3, address_town, address_county, address_postcode,
	created_at, updated_at`

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	user.ID = NewUserID()

	query := `
		INSERT INTO users (user_id, email, password_hash, name, phone_number,
			address_line1, address_line2, address_line3, address_town, address_county, address_postcode)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`

	utils.LogDB("CREATE USER", fmt.Sprintf("Создание пользователя %s (%s)", user.ID, user.Email))

	err := r.db.QueryRow(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.Name, user.PhoneNumber,
		user.Address.Line1, user.Address.Line2, user.Address.Line3,
		user.Address.Town, user.Address.County, user.Address.Postcode,
	).Scan(&user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict(fmt.Sprintf("пользователь с email %s уже существует", user.Email))
		}
		return fmt.Errorf("ошибка создания пользователя: %w", err)
	}

	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, userID string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1`

	user, err := r.scanUser(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.UserNotFound(userID)
		}
		return nil, fmt.Errorf("ошибка получения пользователя: %w", err)
	}

	return user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := r.scanUser(r.db.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.UserNotFound(email)
		}
		return nil, fmt.Errorf("ошибка поиска пользователя по email: %w", err)
	}

	return user, nil
}

// EmailTaken проверяет занятость email, исключая самого пользователя при обновлении.
func (r *UserRepository) EmailTaken(ctx context.Context, email, excludeUserID string) (bool, error) {
	var taken bool
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1 AND user_id <> $2)`

	if err := r.db.QueryRow(ctx, query, email, excludeUserID).Scan(&taken); err != nil {
		return false, fmt.Errorf("ошибка проверки email: %w", err)
	}

	return taken, nil
}

func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET email = $1, name = $2, phone_number = $3,
			address_line1 = $4, address_line2 = $5, address_line3 = $6,
			address_town = $7, address_county = $8, address_postcode = $9,
			updated_at = NOW()
		WHERE user_id = $10
		RETURNING updated_at
	`

	err := r.db.QueryRow(ctx, query,
		user.Email, user.Name, user.PhoneNumber,
		user.Address.Line1, user.Address.Line2, user.Address.Line3,
		user.Address.Town, user.Address.County, user.Address.Postcode,
		user.ID,
	).Scan(&user.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.UserNotFound(user.ID)
		}
		if isUniqueViolation(err) {
			return apperrors.Conflict(fmt.Sprintf("пользователь с email %s уже существует", user.Email))
		}
		return fmt.Errorf("ошибка обновления пользователя: %w", err)
	}

	return nil
}

func (r *UserRepository) Delete(ctx context.Context, userID string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM users WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("ошибка удаления пользователя: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.UserNotFound(userID)
	}

	return nil
}

func (r *UserRepository) scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.Name, &user.PhoneNumber,
		&user.Address.Line1, &user.Address.Line2, &user.Address.Line3,
		&user.Address.Town, &user.Address.County, &user.Address.Postcode,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
