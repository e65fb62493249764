package modules

import (
	"github.com/bwmarrin/discordgo"
	"github.com/starrbot/starr/starboard"
)

type BaseModule interface{}

type Plugin interface {
	BaseModule

	Commands() []string

	Init(session *discordgo.Session)

	Action(
		command string,
		content string,
		msg *discordgo.Message,
		session *discordgo.Session,
	)
}

type ExtendedPlugin interface {
	BaseModule

	Commands() []string

	Init(session *discordgo.Session)

	Uninit(session *discordgo.Session)

	Action(
		command string,
		content string,
		msg *discordgo.Message,
		session *discordgo.Session,
	)

	OnMessage(
		content string,
		msg *discordgo.Message,
		session *discordgo.Session,
	)

	OnMessageDelete(
		msg *discordgo.MessageDelete,
		session *discordgo.Session,
	)

	OnReactionAdd(
		reaction *discordgo.MessageReactionAdd,
		session *discordgo.Session,
	)

	OnReactionRemove(
		reaction *discordgo.MessageReactionRemove,
		session *discordgo.Session,
	)

	OnReactionRemoveAll(
		event *discordgo.MessageReactionRemoveAll,
		session *discordgo.Session,
	)

	OnReactionRemoveEmoji(
		event *starboard.ReactionRemoveEmoji,
		session *discordgo.Session,
	)

	OnGuildCreate(
		guild *discordgo.GuildCreate,
		session *discordgo.Session,
	)
}
