package cli

import (
	"errors"
	"strings"

	"github.com/iudanet/homesync/internal/client/iocli"
)

// ErrEmptyToken пользователь не ввел токен
var ErrEmptyToken = errors.New("access token is required: set HOMESYNC_TOKEN or --token")

// NeedsServer сообщает, обращается ли команда к серверу от имени пользователя
func NeedsServer(command string, args []string) bool {
	switch command {
	case "households", "sync", "shop", "watch":
		return true
	case "add", "update", "delete":
		_, withSync := splitSyncFlag(args)
		return withSync
	}
	return false
}

// ReadToken запрашивает токен доступа без эха
func ReadToken(io iocli.IO) (string, error) {
	token, err := io.ReadPassword("Access token: ")
	if err != nil {
		return "", err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrEmptyToken
	}
	return token, nil
}
