package plugins

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/starrbot/starr/helpers"
)

type Ping struct{}

func (p *Ping) Commands() []string {
	return []string{
		"ping",
	}
}

func (p *Ping) Init(session *discordgo.Session) {

}

// Action sends a probe message and edits the round-trip time into it.
func (p *Ping) Action(command string, content string, msg *discordgo.Message, session *discordgo.Session) {
	defer helpers.RecoverDiscord(msg)

	start := time.Now()

	probe, err := helpers.SendMessage(msg.ChannelID, ":ping_pong: Pong!")
	helpers.RelaxMessage(err, msg.ChannelID, msg.ID)
	if probe == nil {
		return
	}

	elapsed := time.Since(start)

	_, err = helpers.EditMessage(probe.ChannelID, probe.ID, fmt.Sprintf(":ping_pong: Pong! (`%s`)", elapsed.Round(time.Millisecond)))
	helpers.Relax(err)
}
