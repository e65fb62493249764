// Package starboard keeps the starboard channel consistent with the live
// reaction state of a guild's messages.
//
// Every incoming reaction event is reduced to a snapshot of the current star
// count by re-fetching the message, then run through a small state machine
// that creates, updates, repairs or deletes the repost. Events are never
// trusted for deltas and no locks are taken; correctness comes from
// idempotent storage operations and from each event independently
// re-deriving ground truth.
package starboard

import (
	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
	"github.com/starrbot/starr/models"
)

// DefaultEmoji is the star used when the config does not name one.
const DefaultEmoji = "⭐"

// ConfigSource yields per-guild starboard settings.
type ConfigSource interface {
	GetOrCreate(guildID string) (models.GuildConfig, error)
}

// Options tune process-wide starboard behavior.
type Options struct {
	// Emoji is the reaction that counts as a star.
	Emoji string

	// CountSelfStars controls whether the message author starring their own
	// message counts. When false, reaction events from the author are
	// dropped before the snapshot is taken.
	CountSelfStars bool
}

// Board wires the classifier, the record store and the reconciler together.
type Board struct {
	configs        ConfigSource
	records        RecordStore
	rest           MessageAPI
	emoji          string
	countSelfStars bool
	log            *logrus.Entry
}

// New creates a Board around the given collaborators.
func New(configs ConfigSource, records RecordStore, rest MessageAPI, log *logrus.Entry, opts Options) *Board {
	emoji := opts.Emoji
	if emoji == "" {
		emoji = DefaultEmoji
	}

	return &Board{
		configs:        configs,
		records:        records,
		rest:           rest,
		emoji:          emoji,
		countSelfStars: opts.CountSelfStars,
		log:            log,
	}
}

// ReactionRemoveEmoji mirrors the MESSAGE_REACTION_REMOVE_EMOJI gateway
// payload, which discordgo does not expose as a typed event.
type ReactionRemoveEmoji struct {
	GuildID   string          `json:"guild_id"`
	ChannelID string          `json:"channel_id"`
	MessageID string          `json:"message_id"`
	Emoji     discordgo.Emoji `json:"emoji"`
}

// HandleReactionAdd processes a single added reaction.
func (b *Board) HandleReactionAdd(reaction *discordgo.MessageReactionAdd) error {
	snapshot, err := b.classify(reaction.GuildID, reaction.ChannelID, reaction.MessageID, reaction.Emoji.Name, reaction.UserID)
	if err != nil || snapshot == nil {
		return err
	}

	return b.Reconcile(snapshot)
}

// HandleReactionRemove processes a single removed reaction.
func (b *Board) HandleReactionRemove(reaction *discordgo.MessageReactionRemove) error {
	snapshot, err := b.classify(reaction.GuildID, reaction.ChannelID, reaction.MessageID, reaction.Emoji.Name, reaction.UserID)
	if err != nil || snapshot == nil {
		return err
	}

	return b.Reconcile(snapshot)
}

// HandleReactionRemoveAll processes a bulk clear of every reaction on a
// message. The message may already be gone, so no fetch happens; the event
// is routed straight through the delete transition.
func (b *Board) HandleReactionRemoveAll(event *discordgo.MessageReactionRemoveAll) error {
	return b.ReconcileRemoval(event.GuildID, event.MessageID)
}

// HandleReactionRemoveEmoji processes a bulk clear of one emoji's reactions.
func (b *Board) HandleReactionRemoveEmoji(event *ReactionRemoveEmoji) error {
	return b.ReconcileRemoval(event.GuildID, event.MessageID)
}

// HandleMessageDelete drops the repost for a deleted original message.
func (b *Board) HandleMessageDelete(event *discordgo.MessageDelete) error {
	return b.ReconcileRemoval(event.GuildID, event.ID)
}
