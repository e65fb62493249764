package helpers

import (
	"errors"
	"regexp"
	"strconv"

	"github.com/bwmarrin/discordgo"
	"github.com/starrbot/starr/cache"
)

var channelMentionRegex = regexp.MustCompile(`^<#(\d+)>$`)

// GetChannel returns the channel from the state cache, falling back to the
// REST API.
func GetChannel(channelID string) (*discordgo.Channel, error) {
	channel, err := cache.GetSession().State.Channel(channelID)
	if err == nil {
		return channel, nil
	}

	return cache.GetSession().Channel(channelID)
}

// GetGuild returns the guild from the state cache, falling back to the
// REST API.
func GetGuild(guildID string) (*discordgo.Guild, error) {
	guild, err := cache.GetSession().State.Guild(guildID)
	if err == nil {
		return guild, nil
	}

	return cache.GetSession().Guild(guildID)
}

// GetGuildMember returns the member from the state cache, falling back to
// the REST API.
func GetGuildMember(guildID string, userID string) (*discordgo.Member, error) {
	member, err := cache.GetSession().State.Member(guildID, userID)
	if err == nil {
		return member, nil
	}

	return cache.GetSession().GuildMember(guildID, userID)
}

// GetChannelFromMention resolves a <#id> mention or a raw channel ID inside
// the message's guild.
func GetChannelFromMention(msg *discordgo.Message, mention string) (*discordgo.Channel, error) {
	channelID := mention
	if parts := channelMentionRegex.FindStringSubmatch(mention); parts != nil {
		channelID = parts[1]
	}

	if _, err := strconv.ParseUint(channelID, 10, 64); err != nil {
		return nil, errors.New("Channel not found.")
	}

	targetChannel, err := GetChannel(channelID)
	if err != nil {
		return nil, errors.New("Channel not found.")
	}

	sourceChannel, err := GetChannel(msg.ChannelID)
	if err != nil {
		return nil, err
	}
	if targetChannel.GuildID != sourceChannel.GuildID {
		return nil, errors.New("Channel not found.")
	}

	return targetChannel, nil
}

// IsMod returns true if the message author may manage the server
func IsMod(msg *discordgo.Message) bool {
	channel, err := GetChannel(msg.ChannelID)
	if err != nil {
		return false
	}

	guild, err := GetGuild(channel.GuildID)
	if err != nil {
		return false
	}

	if msg.Author.ID == guild.OwnerID {
		return true
	}

	member, err := GetGuildMember(guild.ID, msg.Author.ID)
	if err != nil {
		return false
	}

	for _, role := range guild.Roles {
		for _, memberRole := range member.Roles {
			if memberRole != role.ID {
				continue
			}
			if role.Permissions&discordgo.PermissionAdministrator != 0 ||
				role.Permissions&discordgo.PermissionManageServer != 0 {
				return true
			}
		}
	}

	return false
}

// SendMessage sends a plain text message to $channelID
func SendMessage(channelID string, content string) (*discordgo.Message, error) {
	return cache.GetSession().ChannelMessageSend(channelID, content)
}

// SendComplex sends a MessageSend object to $channelID
func SendComplex(channelID string, send *discordgo.MessageSend) (*discordgo.Message, error) {
	return cache.GetSession().ChannelMessageSendComplex(channelID, send)
}

// SendEmbed sends an embed to $channelID
func SendEmbed(channelID string, embed *discordgo.MessageEmbed) (*discordgo.Message, error) {
	return cache.GetSession().ChannelMessageSendEmbed(channelID, embed)
}

// EditMessage replaces the content of an existing message
func EditMessage(channelID string, messageID string, content string) (*discordgo.Message, error) {
	return cache.GetSession().ChannelMessageEdit(channelID, messageID, content)
}

// GetDiscordColorFromHex parses a hex color like "ffd700" into the int
// discord expects
func GetDiscordColorFromHex(hex string) int {
	color, err := strconv.ParseInt(hex, 16, 32)
	if err != nil {
		return 0x0FADED
	}

	return int(color)
}
