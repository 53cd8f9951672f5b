package redisstore

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"

	"github.com/solarbrone/solar-store/internal/settings"
)

var _ settings.Store = (*SettingsStore)(nil)

// SettingsStore implements settings.Store on a single JSON document key.
type SettingsStore struct {
	s *Store
}

// Settings returns the settings document store.
func (s *Store) Settings() *SettingsStore {
	return &SettingsStore{s: s}
}

// Get returns the stored settings, or defaults when nothing is stored yet.
func (st *SettingsStore) Get(ctx context.Context) (settings.Settings, error) {
	data, err := st.s.rdb.Get(ctx, keySettings).Bytes()
	if errors.Is(err, redis.Nil) {
		return settings.Settings{}, nil
	}
	if err != nil {
		return settings.Settings{}, errors.Wrap(err, "read settings")
	}
	var out settings.Settings
	if err := json.Unmarshal(data, &out); err != nil {
		return settings.Settings{}, errors.Wrap(err, "decode settings")
	}
	return out, nil
}

func (st *SettingsStore) Set(ctx context.Context, s settings.Settings) error {
	data, err := json.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "encode settings")
	}
	if err := st.s.rdb.Set(ctx, keySettings, data, 0).Err(); err != nil {
		return errors.Wrap(err, "write settings")
	}
	return nil
}
