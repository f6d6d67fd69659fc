package models

import (
	"encoding/json"
	"time"
)

// CacheEntry представляет версионированный снимок данных в локальном кеше.
// Timestamp выставляется при записи и не уменьшается для одного ключа.
type CacheEntry struct {
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"` // epoch-ms
	Version   int64           `json:"version"`
}

// TypedCacheEntry типизированное представление CacheEntry.
type TypedCacheEntry[T any] struct {
	Data      T
	Timestamp int64
	Version   int64
}

// IsCacheValid проверяет, что запись моложе maxAge по настенным часам.
func IsCacheValid(entry *CacheEntry, maxAge time.Duration, now time.Time) bool {
	if entry == nil {
		return false
	}
	return now.UnixMilli()-entry.Timestamp < maxAge.Milliseconds()
}
