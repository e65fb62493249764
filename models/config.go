package models

// GuildConfigTable is the Postgres table holding one row per guild.
const GuildConfigTable = "guild_configs"

// GuildConfig struct
type GuildConfig struct {
	GuildID             string
	Prefix              string
	StarChannelID       string
	Threshold           int
	BlacklistedChannels []string
}

// StarboardEnabled reports whether a starboard channel has been configured.
func (c GuildConfig) StarboardEnabled() bool {
	return c.StarChannelID != ""
}

// ChannelBlacklisted reports whether $channelID is exempt from starring.
func (c GuildConfig) ChannelBlacklisted(channelID string) bool {
	for _, id := range c.BlacklistedChannels {
		if id == channelID {
			return true
		}
	}

	return false
}
