// Package apperr defines the error taxonomy shared by the sync client and the realtime hub.
//
// Errors from lower layers are wrapped with context and then marked with one of the
// sentinel categories, so callers can classify them with errors.Is regardless of how
// many times they were wrapped in between:
//
//	if err := api.Fetch(ctx); err != nil {
//	    return apperr.Transient(err, "fetch server snapshot")
//	}
//	...
//	if errors.Is(err, apperr.ErrTransientNetwork) {
//	    // retry on the next cycle
//	}
package apperr

import (
	"github.com/cockroachdb/errors"
)

// Категории ошибок
var (
	// ErrTransientNetwork сетевая ошибка, повторить позже; состояние не повреждено.
	ErrTransientNetwork = errors.New("transient network error")
	// ErrAuthentication сессия недействительна; требуется повторная аутентификация.
	ErrAuthentication = errors.New("authentication error")
	// ErrAuthorization членство в household не подтверждено; не повторяется.
	ErrAuthorization = errors.New("authorization error")
	// ErrConflictUnresolved конфликт ждет ручного решения.
	ErrConflictUnresolved = errors.New("conflict unresolved")
	// ErrMalformedMessage некорректное сообщение клиента; соединение сохраняется.
	ErrMalformedMessage = errors.New("malformed message")
	// ErrPersistence запись в кеш или очередь не удалась.
	ErrPersistence = errors.New("persistence error")
	// ErrRejected сервер отклонил операцию (4xx, кроме авторизации).
	ErrRejected = errors.New("operation rejected")
)

func mark(err error, category error, msg string) error {
	if err == nil {
		return nil
	}
	return errors.Mark(errors.Wrap(err, msg), category)
}

// Transient помечает err как временную сетевую ошибку.
func Transient(err error, msg string) error { return mark(err, ErrTransientNetwork, msg) }

// Authentication помечает err как ошибку аутентификации.
func Authentication(err error, msg string) error { return mark(err, ErrAuthentication, msg) }

// Authorization помечает err как отказ в доступе к household.
func Authorization(err error, msg string) error { return mark(err, ErrAuthorization, msg) }

// Unresolved помечает err как конфликт, который ждет решения пользователя.
func Unresolved(err error, msg string) error { return mark(err, ErrConflictUnresolved, msg) }

// Malformed помечает err как некорректное сообщение.
func Malformed(err error, msg string) error { return mark(err, ErrMalformedMessage, msg) }

// Persistence помечает err как ошибку локального хранилища.
func Persistence(err error, msg string) error { return mark(err, ErrPersistence, msg) }

// Rejected помечает err как отказ сервера принять операцию.
func Rejected(err error, msg string) error { return mark(err, ErrRejected, msg) }

// Is сообщает, относится ли err к категории target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// IsRetryable сообщает, имеет ли смысл повторять операцию в следующем цикле.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransientNetwork) || errors.Is(err, ErrPersistence)
}

// IsCategorized сообщает, помечена ли err одной из категорий.
func IsCategorized(err error) bool {
	return errors.IsAny(err,
		ErrTransientNetwork, ErrAuthentication, ErrAuthorization,
		ErrConflictUnresolved, ErrMalformedMessage, ErrPersistence, ErrRejected)
}
