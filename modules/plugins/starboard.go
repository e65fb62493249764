package plugins

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/dustin/go-humanize"
	"github.com/starrbot/starr/cache"
	"github.com/starrbot/starr/helpers"
	"github.com/starrbot/starr/metrics"
	"github.com/starrbot/starr/models"
	"github.com/starrbot/starr/starboard"
)

type starboardAction func(args []string, in *discordgo.Message, out **discordgo.MessageSend) (next starboardAction)

type Starboard struct{}

var board *starboard.Board

func (s *Starboard) Commands() []string {
	return []string{
		"starboard",
		"sb",
	}
}

func (s *Starboard) Init(session *discordgo.Session) {
	config := helpers.GetConfig()

	opts := starboard.Options{CountSelfStars: true}
	if config.ExistsP("starboard.emoji") {
		opts.Emoji = config.Path("starboard.emoji").Data().(string)
	}
	if config.ExistsP("starboard.count_self_stars") {
		opts.CountSelfStars = config.Path("starboard.count_self_stars").Data().(bool)
	}

	board = starboard.New(
		helpers.GuildConfigs(),
		starboard.NewSQLRecordStore(cache.GetDB()),
		&starboard.SessionAPI{Session: session},
		cache.GetLogger().WithField("module", "starboard"),
		opts,
	)
}

func (s *Starboard) Uninit(session *discordgo.Session) {

}

func (s *Starboard) Action(command string, content string, msg *discordgo.Message, session *discordgo.Session) {
	defer helpers.Recover()

	session.ChannelTyping(msg.ChannelID)

	var result *discordgo.MessageSend
	args := strings.Fields(content)

	action := s.actionStart
	for action != nil {
		action = action(args, msg, &result)
	}
}

func (s *Starboard) actionStart(args []string, in *discordgo.Message, out **discordgo.MessageSend) starboardAction {
	if len(args) < 1 {
		return s.actionStatus
	}

	switch args[0] {
	case "set":
		return s.actionSet
	case "minimum":
		return s.actionMinimum
	case "blacklist":
		return s.actionBlacklist
	case "status":
		return s.actionStatus
	}

	*out = s.newMsg("Unknown starboard subcommand. Try `set`, `minimum`, `blacklist` or `status`.")
	return s.actionFinish
}

func (s *Starboard) actionSet(args []string, in *discordgo.Message, out **discordgo.MessageSend) starboardAction {
	if !helpers.IsMod(in) {
		*out = s.newMsg("You need the Manage Server permission to do that.")
		return s.actionFinish
	}

	channel, err := helpers.GetChannel(in.ChannelID)
	helpers.Relax(err)

	if len(args) < 2 {
		_, err := helpers.GuildConfigs().Update(channel.GuildID, func(config *models.GuildConfig) {
			config.StarChannelID = ""
		})
		helpers.Relax(err)

		*out = s.newMsg("Starboard disabled for this server.")
		return s.actionFinish
	}

	targetChannel, err := helpers.GetChannelFromMention(in, args[1])
	if err != nil {
		*out = s.newMsg("I could not find that channel.")
		return s.actionFinish
	}

	_, err = helpers.GuildConfigs().Update(channel.GuildID, func(config *models.GuildConfig) {
		config.StarChannelID = targetChannel.ID
	})
	helpers.Relax(err)

	*out = s.newMsg(fmt.Sprintf("Starboard channel set to <#%s>.", targetChannel.ID))
	return s.actionFinish
}

func (s *Starboard) actionMinimum(args []string, in *discordgo.Message, out **discordgo.MessageSend) starboardAction {
	if !helpers.IsMod(in) {
		*out = s.newMsg("You need the Manage Server permission to do that.")
		return s.actionFinish
	}

	if len(args) < 2 {
		*out = s.newMsg("Please pass the new minimum, e.g. `starboard minimum 3`.")
		return s.actionFinish
	}

	newMinimum, err := strconv.Atoi(args[1])
	if err != nil || newMinimum < 1 {
		*out = s.newMsg("The minimum has to be a number of at least 1.")
		return s.actionFinish
	}

	channel, err := helpers.GetChannel(in.ChannelID)
	helpers.Relax(err)

	_, err = helpers.GuildConfigs().Update(channel.GuildID, func(config *models.GuildConfig) {
		config.Threshold = newMinimum
	})
	helpers.Relax(err)

	*out = s.newMsg(fmt.Sprintf("Messages now need %d stars to get posted.", newMinimum))
	return s.actionFinish
}

func (s *Starboard) actionBlacklist(args []string, in *discordgo.Message, out **discordgo.MessageSend) starboardAction {
	if !helpers.IsMod(in) {
		*out = s.newMsg("You need the Manage Server permission to do that.")
		return s.actionFinish
	}

	if len(args) < 2 {
		*out = s.newMsg("Please pass a channel to toggle, e.g. `starboard blacklist #spam`.")
		return s.actionFinish
	}

	channel, err := helpers.GetChannel(in.ChannelID)
	helpers.Relax(err)

	targetChannel, err := helpers.GetChannelFromMention(in, args[1])
	if err != nil {
		*out = s.newMsg("I could not find that channel.")
		return s.actionFinish
	}

	removed := false
	_, err = helpers.GuildConfigs().Update(channel.GuildID, func(config *models.GuildConfig) {
		newBlacklist := make([]string, 0, len(config.BlacklistedChannels))
		for _, id := range config.BlacklistedChannels {
			if id == targetChannel.ID {
				removed = true
				continue
			}
			newBlacklist = append(newBlacklist, id)
		}
		if !removed {
			newBlacklist = append(newBlacklist, targetChannel.ID)
		}
		config.BlacklistedChannels = newBlacklist
	})
	helpers.Relax(err)

	if removed {
		*out = s.newMsg(fmt.Sprintf("Messages in <#%s> can be starred again.", targetChannel.ID))
	} else {
		*out = s.newMsg(fmt.Sprintf("Messages in <#%s> will no longer reach the starboard.", targetChannel.ID))
	}
	return s.actionFinish
}

func (s *Starboard) actionStatus(args []string, in *discordgo.Message, out **discordgo.MessageSend) starboardAction {
	channel, err := helpers.GetChannel(in.ChannelID)
	helpers.Relax(err)

	config, err := helpers.GuildConfigs().GetOrCreate(channel.GuildID)
	helpers.Relax(err)

	if !config.StarboardEnabled() {
		*out = s.newMsg("No starboard configured. Use `starboard set #channel` to enable it.")
		return s.actionFinish
	}

	status := fmt.Sprintf("Starboard channel: <#%s>\nMinimum stars: %s",
		config.StarChannelID, humanize.Comma(int64(config.Threshold)))
	if len(config.BlacklistedChannels) > 0 {
		mentions := make([]string, len(config.BlacklistedChannels))
		for i, id := range config.BlacklistedChannels {
			mentions[i] = "<#" + id + ">"
		}
		status += "\nBlacklisted: " + strings.Join(mentions, ", ")
	}

	*out = s.newMsg(status)
	return s.actionFinish
}

func (s *Starboard) actionFinish(args []string, in *discordgo.Message, out **discordgo.MessageSend) starboardAction {
	_, err := helpers.SendComplex(in.ChannelID, *out)
	helpers.RelaxMessage(err, in.ChannelID, in.ID)

	return nil
}

func (s *Starboard) newMsg(content string) *discordgo.MessageSend {
	return &discordgo.MessageSend{Content: content}
}

func (s *Starboard) OnMessage(content string, msg *discordgo.Message, session *discordgo.Session) {

}

func (s *Starboard) OnMessageDelete(msg *discordgo.MessageDelete, session *discordgo.Session) {
	go func() {
		defer helpers.Recover()

		helpers.Relax(board.HandleMessageDelete(msg))
	}()
}

func (s *Starboard) OnReactionAdd(reaction *discordgo.MessageReactionAdd, session *discordgo.Session) {
	go func() {
		defer helpers.Recover()

		if reaction.UserID == session.State.User.ID {
			return
		}
		if reaction.Member != nil && reaction.Member.User != nil && reaction.Member.User.Bot {
			return
		}

		metrics.ReactionsProcessed.Add(1)
		helpers.Relax(board.HandleReactionAdd(reaction))
	}()
}

func (s *Starboard) OnReactionRemove(reaction *discordgo.MessageReactionRemove, session *discordgo.Session) {
	go func() {
		defer helpers.Recover()

		if reaction.UserID == session.State.User.ID {
			return
		}

		metrics.ReactionsProcessed.Add(1)
		helpers.Relax(board.HandleReactionRemove(reaction))
	}()
}

func (s *Starboard) OnReactionRemoveAll(event *discordgo.MessageReactionRemoveAll, session *discordgo.Session) {
	go func() {
		defer helpers.Recover()

		helpers.Relax(board.HandleReactionRemoveAll(event))
	}()
}

func (s *Starboard) OnReactionRemoveEmoji(event *starboard.ReactionRemoveEmoji, session *discordgo.Session) {
	go func() {
		defer helpers.Recover()

		helpers.Relax(board.HandleReactionRemoveEmoji(event))
	}()
}

func (s *Starboard) OnGuildCreate(guild *discordgo.GuildCreate, session *discordgo.Session) {
	go func() {
		defer helpers.Recover()

		_, err := helpers.GuildConfigs().GetOrCreate(guild.ID)
		helpers.Relax(err)

		metrics.GuildCount.Set(int64(len(session.State.Guilds)))
	}()
}
