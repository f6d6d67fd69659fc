package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/iudanet/homesync/internal/apperr"
	"github.com/iudanet/homesync/internal/models"
	"github.com/iudanet/homesync/internal/server/auth"
	"github.com/iudanet/homesync/pkg/api"
)

// SessionValidator проверяет сессию запроса
type SessionValidator interface {
	ValidateRequest(r *http.Request) (*models.User, error)
}

// AuthMiddleware создает middleware для проверки сессии
// и сохраняет пользователя в контексте запроса
func AuthMiddleware(logger *slog.Logger, validator SessionValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := validator.ValidateRequest(r)
			if err != nil {
				if apperr.Is(err, apperr.ErrAuthentication) {
					logger.Warn("Unauthorized request", "path", r.URL.Path, slog.Any("error", err))
					writeError(w, http.StatusUnauthorized, "unauthorized", err.Error())
					return
				}
				logger.Error("Session validation failed", "path", r.URL.Path, slog.Any("error", err))
				writeError(w, http.StatusInternalServerError, "internal", "session validation failed")
				return
			}

			logger.Debug("User authenticated", "user_id", user.ID, "username", user.Username)

			// Передаем запрос дальше с обновленным контекстом
			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), user)))
		})
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(api.ErrorResponse{Error: code, Message: message})
}
