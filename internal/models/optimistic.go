package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

const optimisticPrefix = "temp_"

var optimisticIDPattern = regexp.MustCompile(`^temp_[0-9]+_[A-Za-z0-9]+$`)

// GenerateOptimisticID создает временный идентификатор для сущности, созданной офлайн.
// Формат: temp_<epoch-ms>_<alphanumeric>.
func GenerateOptimisticID() string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")
	return fmt.Sprintf("%s%d_%s", optimisticPrefix, time.Now().UnixMilli(), suffix)
}

// IsOptimisticID сообщает, является ли id временным клиентским идентификатором.
func IsOptimisticID(id string) bool {
	return optimisticIDPattern.MatchString(id)
}
