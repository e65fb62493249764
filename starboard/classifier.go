package starboard

import (
	"github.com/bwmarrin/discordgo"
	"github.com/starrbot/starr/models"
)

// Snapshot is the canonical form every reaction event is reduced to: the
// freshly fetched message, the guild's settings and the absolute star count
// at evaluation time. It is produced once per event and consumed
// immediately, never cached.
type Snapshot struct {
	Message *discordgo.Message
	Config  models.GuildConfig
	Count   int
}

// classify normalizes one reaction event into a Snapshot, or nil when the
// event is of no interest to the starboard.
//
// The count is recomputed from the fetched message instead of trusting the
// event's delta: reaction events only describe a single user's action, and
// more reactions may have landed between the gateway firing and us
// processing. Re-deriving the absolute count is the only way to converge
// under concurrent or out-of-order delivery.
func (b *Board) classify(guildID, channelID, messageID, emojiName, userID string) (*Snapshot, error) {
	if emojiName != b.emoji {
		return nil, nil
	}

	config, err := b.configs.GetOrCreate(guildID)
	if err != nil {
		return nil, err
	}

	if !config.StarboardEnabled() || config.ChannelBlacklisted(channelID) {
		return nil, nil
	}

	message, err := b.rest.Message(channelID, messageID)
	if err != nil {
		if IsUnknownMessage(err) {
			// The message got deleted under us.
			return nil, nil
		}
		return nil, err
	}

	if !b.countSelfStars && message.Author != nil && message.Author.ID == userID {
		return nil, nil
	}

	// Discord groups reactions by emoji so at most one entry should match,
	// but nothing here depends on that: sum every matching entry.
	count := 0
	for _, reaction := range message.Reactions {
		if reaction.Emoji != nil && reaction.Emoji.Name == b.emoji {
			count += reaction.Count
		}
	}

	if message.ChannelID == config.StarChannelID {
		// Reposts are never themselves starrable.
		return nil, nil
	}

	if message.GuildID == "" {
		// REST fetches omit the guild id; the renderer needs it for the
		// jump link.
		message.GuildID = guildID
	}

	return &Snapshot{Message: message, Config: config, Count: count}, nil
}
