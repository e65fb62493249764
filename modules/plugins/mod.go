package plugins

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/starrbot/starr/helpers"
)

// Mod bundles the moderation commands. All of them require the caller to
// pass helpers.IsMod.
type Mod struct{}

// banDeleteDays is how many days of a banned member's messages get pruned.
const banDeleteDays = 1

func (m *Mod) Commands() []string {
	return []string{
		"kick",
		"ban",
		"softban",
		"hackban",
	}
}

func (m *Mod) Init(session *discordgo.Session) {

}

func (m *Mod) Action(command string, content string, msg *discordgo.Message, session *discordgo.Session) {
	defer helpers.RecoverDiscord(msg)

	if !helpers.IsMod(msg) {
		_, err := helpers.SendMessage(msg.ChannelID, "You are not allowed to do that.")
		helpers.RelaxMessage(err, msg.ChannelID, msg.ID)
		return
	}

	channel, err := helpers.GetChannel(msg.ChannelID)
	helpers.Relax(err)

	args := strings.Fields(content)
	if len(args) < 1 {
		_, err := helpers.SendMessage(msg.ChannelID, fmt.Sprintf("Usage: `%s <@member or ID> [reason]`.", command))
		helpers.RelaxMessage(err, msg.ChannelID, msg.ID)
		return
	}

	targetID := args[0]
	if parts := userMentionRegex.FindStringSubmatch(args[0]); parts != nil {
		targetID = parts[1]
	}

	reason := strings.TrimSpace(strings.TrimPrefix(content, args[0]))
	if reason == "" {
		reason = "None given"
	}
	auditReason := fmt.Sprintf("Issued by %s#%s: %s", msg.Author.Username, msg.Author.Discriminator, reason)

	switch command {
	case "kick":
		m.actionKick(channel.GuildID, targetID, auditReason, msg, session)
	case "ban":
		m.actionBan(channel.GuildID, targetID, auditReason, msg, session)
	case "softban":
		m.actionSoftban(channel.GuildID, targetID, auditReason, msg, session)
	case "hackban":
		m.actionHackban(channel.GuildID, targetID, auditReason, msg, session)
	}
}

// actionKick removes a member from the guild.
func (m *Mod) actionKick(guildID string, targetID string, reason string, msg *discordgo.Message, session *discordgo.Session) {
	target, err := helpers.GetGuildMember(guildID, targetID)
	if err != nil {
		m.replyNoSuchMember(msg)
		return
	}

	err = session.GuildMemberDeleteWithReason(guildID, target.User.ID, reason)
	if m.replyIfForbidden(err, msg, "kick") {
		return
	}
	helpers.Relax(err)

	m.confirm(msg, "👢", target.User)
}

// actionBan bans a member and prunes their recent messages.
func (m *Mod) actionBan(guildID string, targetID string, reason string, msg *discordgo.Message, session *discordgo.Session) {
	target, err := helpers.GetGuildMember(guildID, targetID)
	if err != nil {
		m.replyNoSuchMember(msg)
		return
	}

	err = session.GuildBanCreateWithReason(guildID, target.User.ID, reason, banDeleteDays)
	if m.replyIfForbidden(err, msg, "ban") {
		return
	}
	helpers.Relax(err)

	m.confirm(msg, "🔨", target.User)
}

// actionSoftban bans and immediately unbans to prune messages without
// keeping the member out.
func (m *Mod) actionSoftban(guildID string, targetID string, reason string, msg *discordgo.Message, session *discordgo.Session) {
	target, err := helpers.GetGuildMember(guildID, targetID)
	if err != nil {
		m.replyNoSuchMember(msg)
		return
	}

	err = session.GuildBanCreateWithReason(guildID, target.User.ID, reason, banDeleteDays)
	if m.replyIfForbidden(err, msg, "softban") {
		return
	}
	helpers.Relax(err)

	err = session.GuildBanDelete(guildID, target.User.ID)
	helpers.Relax(err)

	m.confirm(msg, "🧹", target.User)
}

// actionHackban bans by raw ID, so it works on users who are not members.
func (m *Mod) actionHackban(guildID string, targetID string, reason string, msg *discordgo.Message, session *discordgo.Session) {
	err := session.GuildBanCreateWithReason(guildID, targetID, reason, banDeleteDays)
	if m.replyIfForbidden(err, msg, "hackban") {
		return
	}
	helpers.Relax(err)

	_, err = helpers.SendMessage(msg.ChannelID, fmt.Sprintf("🔨 Banned ID `%s`.", targetID))
	helpers.RelaxMessage(err, msg.ChannelID, msg.ID)
}

// replyIfForbidden turns a missing-permission error into a chat reply
// instead of a panic. Reports whether it handled the error.
func (m *Mod) replyIfForbidden(err error, msg *discordgo.Message, verb string) bool {
	if err == nil {
		return false
	}

	if errD, ok := err.(*discordgo.RESTError); ok && errD.Message != nil {
		if errD.Message.Code == discordgo.ErrCodeMissingPermissions || errD.Message.Code == discordgo.ErrCodeMissingAccess {
			_, sendErr := helpers.SendMessage(msg.ChannelID, fmt.Sprintf("I'm not allowed to %s that member. Check my role position and permissions.", verb))
			helpers.RelaxMessage(sendErr, msg.ChannelID, msg.ID)
			return true
		}
	}

	return false
}

func (m *Mod) replyNoSuchMember(msg *discordgo.Message) {
	_, err := helpers.SendMessage(msg.ChannelID, "I couldn't find that member on this server.")
	helpers.RelaxMessage(err, msg.ChannelID, msg.ID)
}

func (m *Mod) confirm(msg *discordgo.Message, emoji string, target *discordgo.User) {
	_, err := helpers.SendMessage(msg.ChannelID, fmt.Sprintf("%s Goodbye, %s#%s.", emoji, target.Username, target.Discriminator))
	helpers.RelaxMessage(err, msg.ChannelID, msg.ID)
}
