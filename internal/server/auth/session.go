// Package auth validates household sessions presented as JWT access tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iudanet/homesync/internal/apperr"
	"github.com/iudanet/homesync/internal/models"
	"github.com/iudanet/homesync/internal/server/storage"
)

// Issuer значение iss в токенах homesync
const Issuer = "homesync"

var (
	// ErrMissingToken запрос не содержит токена
	ErrMissingToken = errors.New("missing access token")
	// ErrInvalidToken токен не прошел проверку подписи, срока или формата
	ErrInvalidToken = errors.New("invalid access token")
	// ErrUnknownUser токен валиден, но пользователь не существует
	ErrUnknownUser = errors.New("unknown user")
)

// CustomClaims представляет JWT claims для нашего приложения
type CustomClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// JWTConfig содержит конфигурацию для JWT
type JWTConfig struct {
	Secret         []byte
	AccessTokenTTL time.Duration
}

// Validator проверяет сессии HTTP запросов и websocket upgrade
type Validator struct {
	users storage.UserStorage // опционально: проверка существования пользователя
	cfg   JWTConfig
}

// NewValidator создает валидатор. users может быть nil, тогда пользователь берется из claims
func NewValidator(cfg JWTConfig, users storage.UserStorage) *Validator {
	return &Validator{cfg: cfg, users: users}
}

// GenerateAccessToken создает новый JWT access token
func (v *Validator) GenerateAccessToken(userID, username string) (string, int64, error) {
	now := time.Now()
	expiresAt := now.Add(v.cfg.AccessTokenTTL)

	claims := CustomClaims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    Issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(v.cfg.Secret)
	if err != nil {
		return "", 0, fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, int64(v.cfg.AccessTokenTTL.Seconds()), nil
}

// ValidateAccessToken валидирует и парсит JWT access token
func (v *Validator) ValidateAccessToken(tokenString string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (any, error) {
		// Проверяем что используется правильный алгоритм подписи
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.cfg.Secret, nil
	}, jwt.WithIssuer(Issuer))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// ValidateRequest извлекает и проверяет сессию запроса.
// Ошибки помечены apperr.ErrAuthentication
func (v *Validator) ValidateRequest(r *http.Request) (*models.User, error) {
	tokenString, err := TokenFromRequest(r)
	if err != nil {
		return nil, apperr.Authentication(err, "extract token")
	}

	claims, err := v.ValidateAccessToken(tokenString)
	if err != nil {
		return nil, apperr.Authentication(err, "validate token")
	}

	if v.users == nil {
		return &models.User{ID: claims.UserID, Username: claims.Username}, nil
	}

	user, err := v.users.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, apperr.Authentication(ErrUnknownUser, "load user")
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	return user, nil
}

// TokenFromRequest возвращает токен из заголовка Authorization: Bearer <token>
// или из query параметра token (браузерный websocket не умеет задавать заголовки)
func TokenFromRequest(r *http.Request) (string, error) {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		// Ожидаем формат: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			return "", fmt.Errorf("%w: invalid authorization header format", ErrInvalidToken)
		}
		return parts[1], nil
	}

	if token := r.URL.Query().Get("token"); token != "" {
		return token, nil
	}

	return "", ErrMissingToken
}

// contextKey тип для ключей контекста
type contextKey string

const userKey contextKey = "user"

// WithUser сохраняет аутентифицированного пользователя в контексте
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext извлекает пользователя, установленного AuthMiddleware
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userKey).(*models.User)
	return user, ok && user != nil
}
