package models

import "testing"

func TestStarboardEnabled(t *testing.T) {
	config := GuildConfig{GuildID: "guild", Threshold: 5}

	if config.StarboardEnabled() {
		t.Fatal("expected the starboard disabled without a channel")
	}

	config.StarChannelID = "stars"

	if !config.StarboardEnabled() {
		t.Fatal("expected the starboard enabled with a channel set")
	}
}

func TestChannelBlacklisted(t *testing.T) {
	config := GuildConfig{BlacklistedChannels: []string{"spam", "bots"}}

	if !config.ChannelBlacklisted("spam") {
		t.Fatal("expected spam to be blacklisted")
	}
	if config.ChannelBlacklisted("general") {
		t.Fatal("expected general not to be blacklisted")
	}
}
