package helpers

import (
	"database/sql"
	"sync"

	"github.com/lib/pq"
	"github.com/starrbot/starr/models"
)

// GuildConfigStore is a read-through/write-through cache over the
// guild_configs table. The database owns the data; the in-memory map is a
// process-local mirror that is only mutated through GetOrCreate and Update,
// so concurrent handlers always observe a whole pre- or post-update value.
type GuildConfigStore struct {
	db               *sql.DB
	defaultPrefix    string
	defaultThreshold int

	cacheMutex sync.RWMutex
	cache      map[string]models.GuildConfig
}

// NewGuildConfigStore creates a store with per-deployment defaults for new
// guild rows.
func NewGuildConfigStore(db *sql.DB, defaultPrefix string, defaultThreshold int) *GuildConfigStore {
	if defaultThreshold < 1 {
		defaultThreshold = 1
	}
	if defaultPrefix == "" {
		defaultPrefix = "$"
	}

	return &GuildConfigStore{
		db:               db,
		defaultPrefix:    defaultPrefix,
		defaultThreshold: defaultThreshold,
		cache:            make(map[string]models.GuildConfig),
	}
}

// GetOrCreate returns the cached config for $guildID, inserting a default
// row and caching it on first sight of the guild.
func (s *GuildConfigStore) GetOrCreate(guildID string) (models.GuildConfig, error) {
	s.cacheMutex.RLock()
	config, ok := s.cache[guildID]
	s.cacheMutex.RUnlock()
	if ok {
		return config, nil
	}

	_, err := s.db.Exec(
		"INSERT INTO guild_configs (guild_id, prefix, threshold) VALUES ($1, $2, $3) ON CONFLICT (guild_id) DO NOTHING;",
		guildID, s.defaultPrefix, s.defaultThreshold,
	)
	if err != nil {
		return models.GuildConfig{}, err
	}

	config, err = s.fetch(guildID)
	if err != nil {
		return models.GuildConfig{}, err
	}

	s.cacheMutex.Lock()
	s.cache[guildID] = config
	s.cacheMutex.Unlock()

	return config, nil
}

// Update applies $mutate to the stored config, writing the row to the
// database before replacing the cached copy so the two never diverge.
func (s *GuildConfigStore) Update(guildID string, mutate func(*models.GuildConfig)) (models.GuildConfig, error) {
	config, err := s.GetOrCreate(guildID)
	if err != nil {
		return models.GuildConfig{}, err
	}

	mutate(&config)
	config.GuildID = guildID
	if config.Threshold < 1 {
		config.Threshold = 1
	}

	_, err = s.db.Exec(
		"UPDATE guild_configs SET prefix = $1, star_channel_id = $2, threshold = $3, blacklisted_channel_ids = $4 WHERE guild_id = $5;",
		config.Prefix,
		config.StarChannelID,
		config.Threshold,
		pq.StringArray(config.BlacklistedChannels),
		guildID,
	)
	if err != nil {
		return models.GuildConfig{}, err
	}

	s.cacheMutex.Lock()
	s.cache[guildID] = config
	s.cacheMutex.Unlock()

	return config, nil
}

// GetCached returns the cached config without touching the database.
func (s *GuildConfigStore) GetCached(guildID string) (models.GuildConfig, bool) {
	s.cacheMutex.RLock()
	defer s.cacheMutex.RUnlock()

	config, ok := s.cache[guildID]
	return config, ok
}

func (s *GuildConfigStore) fetch(guildID string) (models.GuildConfig, error) {
	var config models.GuildConfig
	var blacklist pq.StringArray

	err := s.db.QueryRow(
		"SELECT guild_id, prefix, star_channel_id, threshold, blacklisted_channel_ids FROM guild_configs WHERE guild_id = $1;",
		guildID,
	).Scan(&config.GuildID, &config.Prefix, &config.StarChannelID, &config.Threshold, &blacklist)
	if err != nil {
		return models.GuildConfig{}, err
	}

	config.BlacklistedChannels = []string(blacklist)
	if config.Threshold < 1 {
		config.Threshold = 1
	}

	return config, nil
}

var guildConfigs *GuildConfigStore

// SetGuildConfigStore stores the process-wide guild config store
func SetGuildConfigStore(store *GuildConfigStore) {
	guildConfigs = store
}

// GuildConfigs returns the process-wide guild config store
func GuildConfigs() *GuildConfigStore {
	if guildConfigs == nil {
		panic("Tried to get guild config store before helpers#SetGuildConfigStore() was called")
	}

	return guildConfigs
}

// GetPrefixForServer gets the prefix for $guildID
func GetPrefixForServer(guildID string) string {
	config, err := GuildConfigs().GetOrCreate(guildID)
	if err != nil {
		return ""
	}

	return config.Prefix
}

// SetPrefixForServer sets the prefix for $guildID to $prefix
func SetPrefixForServer(guildID string, prefix string) error {
	_, err := GuildConfigs().Update(guildID, func(config *models.GuildConfig) {
		config.Prefix = prefix
	})

	return err
}
