package models

import "fmt"

// Strategy политика разрешения конфликтов.
type Strategy string

const (
	StrategyServerWins Strategy = "server-wins"
	StrategyClientWins Strategy = "client-wins"
	StrategyMerge      Strategy = "merge"
	StrategyManual     Strategy = "manual"
)

// ParseStrategy проверяет строку и возвращает Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyServerWins, StrategyClientWins, StrategyMerge, StrategyManual:
		return Strategy(s), nil
	}
	return "", fmt.Errorf("unknown conflict strategy %q", s)
}

// SyncConflict описывает сущность, измененную и локально, и на сервере после watermark.
type SyncConflict struct {
	LocalData         Record   `json:"localData"`
	ServerData        Record   `json:"serverData"`
	ID                string   `json:"id"`
	HouseholdID       string   `json:"householdId"`
	Kind              DataKind `json:"kind"`
	LastSyncTimestamp int64    `json:"lastSyncTimestamp"`
	LocalTimestamp    int64    `json:"localTimestamp"`
	ServerTimestamp   int64    `json:"serverTimestamp"`
}
