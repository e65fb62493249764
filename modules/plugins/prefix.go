package plugins

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/starrbot/starr/helpers"
)

type Prefix struct{}

// maxPrefixLength keeps prefixes short enough to type comfortably.
const maxPrefixLength = 10

func (p *Prefix) Commands() []string {
	return []string{
		"prefix",
	}
}

func (p *Prefix) Init(session *discordgo.Session) {

}

func (p *Prefix) Action(command string, content string, msg *discordgo.Message, session *discordgo.Session) {
	defer helpers.RecoverDiscord(msg)

	channel, err := helpers.GetChannel(msg.ChannelID)
	helpers.Relax(err)

	newPrefix := strings.TrimSpace(content)
	if newPrefix == "" {
		current := helpers.GetPrefixForServer(channel.GuildID)
		p.reply(msg, fmt.Sprintf("The prefix on this server is `%s`. Mods can change it with `prefix <new prefix>`.", current))
		return
	}

	if !helpers.IsMod(msg) {
		p.reply(msg, "You are not allowed to do that.")
		return
	}

	if len(newPrefix) > maxPrefixLength {
		p.reply(msg, fmt.Sprintf("That prefix is too long, keep it under %d characters.", maxPrefixLength+1))
		return
	}

	err = helpers.SetPrefixForServer(channel.GuildID, newPrefix)
	helpers.Relax(err)

	p.reply(msg, fmt.Sprintf("Prefix set to `%s`.", newPrefix))
}

func (p *Prefix) reply(msg *discordgo.Message, content string) {
	_, err := helpers.SendMessage(msg.ChannelID, content)
	helpers.RelaxMessage(err, msg.ChannelID, msg.ID)
}
