package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"eagle-bank/internal/utils"
)

// Ошибки проверки токена. Вызывающие различают их через errors.Is;
// проглатывать их нельзя - middleware решает, что делать, сам.
var (
	ErrTokenMalformed = errors.New("токен не разбирается")
	ErrTokenSignature = errors.New("подпись токена не совпадает")
	ErrTokenExpired   = errors.New("срок действия токена истёк")
	ErrTokenInvalid   = errors.New("невалидный токен")
)

// AuthService выпускает и проверяет JWT (HS256). Токены самодостаточны:
// серверного хранилища сессий нет, отзыв до истечения срока не поддерживается.
type AuthService struct {
	jwtSecret string
	jwtTTL    time.Duration
}

func NewAuthService(secret string, ttl time.Duration) *AuthService {
	utils.LogSuccess("AuthService", "Инициализирован сервис аутентификации (TTL: %v)", ttl)
	return &AuthService{
		jwtSecret: secret,
		jwtTTL:    ttl,
	}
}

func (s *AuthService) HashPassword(password string) (string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		utils.LogError("AuthService", "Ошибка хеширования пароля", err)
		return "", err
	}
	return string(hashedPassword), nil
}

func (s *AuthService) CheckPasswordHash(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// GenerateToken выпускает токен с sub = userID и exp = iat + TTL.
func (s *AuthService) GenerateToken(userID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedToken, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		utils.LogError("AuthService", "Ошибка подписи токена", err)
		return "", err
	}

	utils.LogDebug("AuthService", "JWT токен создан для пользователя %s", userID)
	return signedToken, nil
}

// VerifyToken проверяет токен и возвращает userID из subject.
// Вид отказа различим: ErrTokenMalformed / ErrTokenSignature / ErrTokenExpired.
func (s *AuthService) VerifyToken(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("неожиданный метод подписи: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return "", fmt.Errorf("%w: %v", ErrTokenMalformed, err)
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", fmt.Errorf("%w: %v", ErrTokenExpired, err)
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return "", fmt.Errorf("%w: %v", ErrTokenSignature, err)
		default:
			return "", fmt.Errorf("%w: %v", ErrTokenInvalid, err)
		}
	}

	if !token.Valid || claims.Subject == "" {
		return "", ErrTokenInvalid
	}

	return claims.Subject, nil
}

// IsTokenValid сообщает, принадлежит ли валидный токен ожидаемому пользователю.
// Ошибка проверки возвращается как есть: "невалиден" и "не проверился" -
// разные исходы.
func (s *AuthService) IsTokenValid(tokenString, expectedUserID string) (bool, error) {
	subject, err := s.VerifyToken(tokenString)
	if err != nil {
		return false, err
	}
	return subject == expectedUserID, nil
}
