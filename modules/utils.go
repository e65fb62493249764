package modules

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/starrbot/starr/cache"
	"github.com/starrbot/starr/helpers"
	"github.com/starrbot/starr/metrics"
	"github.com/starrbot/starr/ratelimits"
	"github.com/starrbot/starr/starboard"
)

// Init warms the caches and initializes the plugins
func Init(session *discordgo.Session) {
	checkDuplicateCommands()

	pluginCache = make(map[string]*Plugin)
	extendedPluginCache = make(map[string]*ExtendedPlugin)

	logTemplate := "[PLUG] %s reacts to [ %s]"
	listeners := ""

	for i := 0; i < len(PluginList); i++ {
		ref := &PluginList[i]

		for _, cmd := range (*ref).Commands() {
			pluginCache[cmd] = ref
			listeners += cmd + " "
		}

		cache.GetLogger().WithField("module", "modules").Info(fmt.Sprintf(
			logTemplate,
			helpers.Typeof(*ref),
			listeners,
		))
		listeners = ""

		(*ref).Init(session)
	}

	logTemplate = "[EXTENDED-PLUG] %s reacts to [ %s]"
	for i := 0; i < len(PluginExtendedList); i++ {
		ref := &PluginExtendedList[i]

		for _, cmd := range (*ref).Commands() {
			extendedPluginCache[cmd] = ref
			listeners += cmd + " "
		}

		cache.GetLogger().WithField("module", "modules").Info(fmt.Sprintf(
			logTemplate,
			helpers.Typeof(*ref),
			listeners,
		))
		listeners = ""

		(*ref).Init(session)
	}

	cache.GetLogger().WithField("module", "modules").Info(
		"Initializer finished. Loaded " + strconv.Itoa(len(PluginList)) + " plugins and " +
			strconv.Itoa(len(PluginExtendedList)) + " extended plugins")
}

// Uninit deinitializes the plugins
func Uninit(session *discordgo.Session) {
	for i := 0; i < len(PluginExtendedList); i++ {
		ref := &PluginExtendedList[i]

		cache.GetLogger().WithField("module", "modules").Info(fmt.Sprintf(
			"[EXTENDED-PLUG] %s deinitializing…",
			helpers.Typeof(*ref),
		))

		(*ref).Uninit(session)
	}
}

// CallBotPlugin routes a parsed command to the plugin that registered it.
// command - The command that triggered this execution
// content - The content without command
// msg     - The message object
func CallBotPlugin(command string, content string, msg *discordgo.Message) {
	// Defer a recovery in case anything panics
	defer helpers.RecoverDiscord(msg)

	// Consume a key for this action
	ratelimits.Container.Drain(1, msg.Author.ID)

	// Track metrics
	metrics.CommandsExecuted.Add(1)

	if ref, ok := pluginCache[command]; ok {
		(*ref).Action(command, content, msg, cache.GetSession())
	}
	if ref, ok := extendedPluginCache[command]; ok {
		(*ref).Action(command, content, msg, cache.GetSession())
	}
}

func CallExtendedPlugin(content string, msg *discordgo.Message) {
	defer helpers.Recover()

	for _, extendedPlugin := range PluginExtendedList {
		extendedPlugin.OnMessage(strings.TrimSpace(content), msg, cache.GetSession())
	}
}

func CallExtendedPluginOnMessageDelete(message *discordgo.MessageDelete) {
	defer helpers.Recover()

	for _, extendedPlugin := range PluginExtendedList {
		extendedPlugin.OnMessageDelete(message, cache.GetSession())
	}
}

func CallExtendedPluginOnReactionAdd(reaction *discordgo.MessageReactionAdd) {
	defer helpers.Recover()

	for _, extendedPlugin := range PluginExtendedList {
		extendedPlugin.OnReactionAdd(reaction, cache.GetSession())
	}
}

func CallExtendedPluginOnReactionRemove(reaction *discordgo.MessageReactionRemove) {
	defer helpers.Recover()

	for _, extendedPlugin := range PluginExtendedList {
		extendedPlugin.OnReactionRemove(reaction, cache.GetSession())
	}
}

func CallExtendedPluginOnReactionRemoveAll(event *discordgo.MessageReactionRemoveAll) {
	defer helpers.Recover()

	for _, extendedPlugin := range PluginExtendedList {
		extendedPlugin.OnReactionRemoveAll(event, cache.GetSession())
	}
}

func CallExtendedPluginOnReactionRemoveEmoji(event *starboard.ReactionRemoveEmoji) {
	defer helpers.Recover()

	for _, extendedPlugin := range PluginExtendedList {
		extendedPlugin.OnReactionRemoveEmoji(event, cache.GetSession())
	}
}

func CallExtendedPluginOnGuildCreate(guild *discordgo.GuildCreate) {
	defer helpers.Recover()

	for _, extendedPlugin := range PluginExtendedList {
		extendedPlugin.OnGuildCreate(guild, cache.GetSession())
	}
}

func checkDuplicateCommands() {
	cmds := make(map[string]string)

	for _, plug := range PluginList {
		for _, cmd := range plug.Commands() {
			t := helpers.Typeof(plug)

			if occupant, ok := cmds[cmd]; ok {
				cache.GetLogger().WithField("module", "modules").Error(
					"Failed to load " + t + " because '" + cmd + "' was already registered by " + occupant)
				os.Exit(1)
			}

			cmds[cmd] = t
		}
	}
}
