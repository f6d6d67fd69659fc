package conflict

import (
	"encoding/json"
	"fmt"

	"github.com/iudanet/homesync/internal/models"
)

// Merger combines both sides of a conflict into a single record.
type Merger func(local, server *models.Record) (*models.Record, error)

// Resolve applies strategy to c. It has no side effects.
//
// For StrategyManual the server data is returned as a safe placeholder; the caller
// must keep the conflict open until an explicit decision arrives.
// A nil merger with StrategyMerge falls back to DefaultMerge.
func Resolve(c *models.SyncConflict, strategy models.Strategy, merger Merger) (*models.Record, error) {
	switch strategy {
	case models.StrategyServerWins, models.StrategyManual:
		return c.ServerData.Clone(), nil
	case models.StrategyClientWins:
		return c.LocalData.Clone(), nil
	case models.StrategyMerge:
		if merger == nil {
			merger = DefaultMerge
		}
		merged, err := merger(&c.LocalData, &c.ServerData)
		if err != nil {
			return nil, fmt.Errorf("failed to merge %s %s: %w", c.Kind, c.ID, err)
		}
		return merged, nil
	default:
		return nil, fmt.Errorf("unknown conflict strategy %q", strategy)
	}
}

// DefaultMerge is a shallow field merge where server fields override local ones.
// Fields present only locally survive.
func DefaultMerge(local, server *models.Record) (*models.Record, error) {
	fields := make(map[string]json.RawMessage)

	if len(local.Data) > 0 {
		if err := json.Unmarshal(local.Data, &fields); err != nil {
			return nil, fmt.Errorf("failed to decode local data: %w", err)
		}
	}
	if len(server.Data) > 0 {
		serverFields := make(map[string]json.RawMessage)
		if err := json.Unmarshal(server.Data, &serverFields); err != nil {
			return nil, fmt.Errorf("failed to decode server data: %w", err)
		}
		for k, v := range serverFields {
			fields[k] = v
		}
	}

	data, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to encode merged data: %w", err)
	}

	merged := server.Clone()
	merged.Data = data
	merged.UpdatedAt = latest(local, server).UpdatedAt
	return merged, nil
}

// latest возвращает сторону с более поздним UpdatedAt; при равенстве - сервер.
func latest(local, server *models.Record) *models.Record {
	if local.IsNewerThan(server) {
		return local
	}
	return server
}
