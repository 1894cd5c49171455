package models

import "time"

// User - пользователь банка. Идентификатор имеет вид usr-<суффикс>.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	PhoneNumber  string    `json:"phone_number"`
	Address      Address   `json:"address"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Address - почтовый адрес пользователя, хранится в колонках таблицы users.
type Address struct {
	Line1    string `json:"line1"`
	Line2    string `json:"line2,omitempty"`
	Line3    string `json:"line3,omitempty"`
	Town     string `json:"town"`
	County   string `json:"county"`
	Postcode string `json:"postcode"`
}

type CreateUserRequest struct {
	Email       string  `json:"email"`
	Password    string  `json:"password"`
	Name        string  `json:"name"`
	PhoneNumber string  `json:"phone_number"`
	Address     Address `json:"address"`
}

// UpdateUserRequest - частичное обновление: пустые поля не трогаются.
type UpdateUserRequest struct {
	Email       string   `json:"email"`
	Name        string   `json:"name"`
	PhoneNumber string   `json:"phone_number"`
	Address     *Address `json:"address"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}

type UserResponse struct {
	ID          string  `json:"id"`
	Email       string  `json:"email"`
	Name        string  `json:"name"`
	PhoneNumber string  `json:"phone_number"`
	Address     Address `json:"address"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

// TimestampFormat - формат таймстемпов в ответах API.
const TimestampFormat = "2006-01-02 15:04:05"

func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		PhoneNumber: u.PhoneNumber,
		Address:     u.Address,
		CreatedAt:   u.CreatedAt.Format(TimestampFormat),
		UpdatedAt:   u.UpdatedAt.Format(TimestampFormat),
	}
}
