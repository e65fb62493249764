package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/getsentry/raven-go"
	"github.com/starrbot/starr/cache"
	"github.com/starrbot/starr/helpers"
	"github.com/starrbot/starr/metrics"
	"github.com/starrbot/starr/modules"
	"github.com/starrbot/starr/ratelimits"
	"github.com/starrbot/starr/starboard"
)

// BotOnReady gets called after the gateway connected
func BotOnReady(session *discordgo.Session, event *discordgo.Ready) {
	log := cache.GetLogger()

	log.WithField("module", "bot").Info("Connected to discord!")
	log.WithField("module", "bot").Info("Invite link: " + fmt.Sprintf(
		"https://discord.com/oauth2/authorize?client_id=%s&scope=bot&permissions=%s",
		helpers.GetConfig().Path("discord.id").Data().(string),
		helpers.GetConfig().Path("discord.perms").Data().(string),
	))

	// Cache the session
	cache.SetSession(session)

	// Load and init all modules
	modules.Init(session)

	// Run ratelimiter
	ratelimits.Container.Init()

	// Run async status updater
	go updateStatusInterval(session)
}

// BotOnGuildCreate gets called whenever a guild becomes available, which
// includes every guild during the initial connect.
func BotOnGuildCreate(session *discordgo.Session, guild *discordgo.GuildCreate) {
	modules.CallExtendedPluginOnGuildCreate(guild)
}

// BotOnMessageCreate gets called after a new message was sent
// This will be called after *every* message on *every* server so it should die as soon as possible
// or spawn costly work inside of coroutines.
func BotOnMessageCreate(session *discordgo.Session, message *discordgo.MessageCreate) {
	// Ignore other bots and @everyone/@here
	if message.Author == nil || message.Author.Bot || message.MentionEveryone {
		return
	}

	metrics.MessagesReceived.Add(1)

	// Get the channel
	// Ignore the event if we cannot resolve the channel
	channel, err := helpers.GetChannel(message.ChannelID)
	if err != nil {
		go raven.CaptureError(err, map[string]string{})
		return
	}

	// Ignore DMs, every command needs a guild
	if channel.GuildID == "" {
		return
	}

	modules.CallExtendedPlugin(
		message.Content,
		message.Message,
	)

	prefix := helpers.GetPrefixForServer(channel.GuildID)
	if prefix == "" {
		return
	}

	// Check if the message is prefixed for us
	// If not exit
	if !strings.HasPrefix(message.Content, prefix) {
		return
	}

	// Check if the user is allowed to request commands
	if !ratelimits.Container.HasKeys(message.Author.ID) {
		session.ChannelMessageSend(message.ChannelID, fmt.Sprintf(
			"<@%s> Whoa, cool down a bit before sending more commands.", message.Author.ID))

		ratelimits.Container.Set(message.Author.ID, -1)
		return
	}

	// Split the message into parts
	parts := strings.Fields(message.Content)

	// Save a sanitized version of the command (no prefix)
	cmd := strings.Replace(parts[0], prefix, "", 1)
	if cmd == "" {
		return
	}

	// Separate arguments from the command
	content := strings.TrimSpace(strings.TrimPrefix(message.Content, prefix+cmd))

	cache.GetLogger().WithField("module", "bot").Debug(fmt.Sprintf("%s (#%s): %s",
		message.Author.Username, message.Author.ID, message.Content))

	// Check if a module matches said command
	modules.CallBotPlugin(cmd, content, message.Message)
}

func BotOnMessageDelete(session *discordgo.Session, message *discordgo.MessageDelete) {
	modules.CallExtendedPluginOnMessageDelete(message)
}

// BotOnReactionAdd gets called after a reaction is added
// This will be called after *every* reaction added on *every* server so it
// should die as soon as possible or spawn costly work inside of coroutines.
func BotOnReactionAdd(session *discordgo.Session, reaction *discordgo.MessageReactionAdd) {
	modules.CallExtendedPluginOnReactionAdd(reaction)
}

func BotOnReactionRemove(session *discordgo.Session, reaction *discordgo.MessageReactionRemove) {
	modules.CallExtendedPluginOnReactionRemove(reaction)
}

func BotOnReactionRemoveAll(session *discordgo.Session, event *discordgo.MessageReactionRemoveAll) {
	modules.CallExtendedPluginOnReactionRemoveAll(event)
}

// BotOnEvent catches gateway events discordgo has no typed handler for.
// MESSAGE_REACTION_REMOVE_EMOJI arrives here and gets decoded by hand.
func BotOnEvent(session *discordgo.Session, event *discordgo.Event) {
	if event.Type != "MESSAGE_REACTION_REMOVE_EMOJI" {
		return
	}

	var removal starboard.ReactionRemoveEmoji
	err := json.Unmarshal(event.RawData, &removal)
	if err != nil {
		go raven.CaptureError(err, map[string]string{})
		return
	}

	modules.CallExtendedPluginOnReactionRemoveEmoji(&removal)
}

// Changes the bot status every hour after called
func updateStatusInterval(session *discordgo.Session) {
	for {
		guilds := session.State.Guilds

		err := session.UpdateGameStatus(0, fmt.Sprintf("⭐ on %d servers", len(guilds)))
		if err != nil {
			raven.CaptureError(err, map[string]string{})
		}

		time.Sleep(1 * time.Hour)
	}
}
