package main

import (
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/getsentry/raven-go"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"github.com/starrbot/starr/cache"
	"github.com/starrbot/starr/helpers"
	"github.com/starrbot/starr/logging"
	"github.com/starrbot/starr/metrics"
	"github.com/starrbot/starr/migrations"
	"github.com/starrbot/starr/modules"
	"github.com/starrbot/starr/version"
)

// Entrypoint
func main() {
	var err error

	log := logrus.New()
	log.Out = os.Stdout
	log.Level = logrus.DebugLevel
	log.Formatter = &logrus.TextFormatter{ForceColors: true, FullTimestamp: true, TimestampFormat: time.RFC3339}
	log.Hooks = make(logrus.LevelHooks)
	cache.SetLogger(log)

	// Read config
	helpers.LoadConfig("config.json")
	config := helpers.GetConfig()

	// Check if the bot is being debugged
	if config.Path("debug").Data().(bool) {
		helpers.DEBUG_MODE = true
	}

	if config.ExistsP("logging.jsonfile") && config.Path("logging.jsonfile").Data().(string) != "" {
		fileHook, err := logging.NewFileHook(config.Path("logging.jsonfile").Data().(string))
		if err != nil {
			log.WithField("module", "launcher").Error("logrus file hook failed, err:", err.Error())
		} else {
			log.Hooks.Add(fileHook)
		}
	}

	log.WithField("module", "launcher").Info("Booting Starr...")

	// Show version
	version.DumpInfo()

	// Call home
	log.WithField("module", "launcher").Info("[SENTRY] Calling home...")
	err = raven.SetDSN(config.Path("sentry").Data().(string))
	if err != nil {
		panic(err)
	}
	raven.SetRelease(version.BOT_VERSION)
	log.WithField("module", "launcher").Info("[SENTRY] Someone picked up the phone \\^-^/")

	// Connect to DB
	log.WithField("module", "launcher").Info("Opening database connection...")
	databaseURL := config.Path("postgres.url").Data().(string)
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		panic(err)
	}
	err = db.Ping()
	if err != nil {
		panic(err)
	}
	cache.SetDB(db)

	// Close DB when main dies
	defer db.Close()

	// Run migrations
	err = migrations.Run(databaseURL)
	if err != nil {
		panic(err)
	}
	log.WithField("module", "launcher").Info("Database schema is up to date")

	// Set up the guild config store with the configured defaults
	defaultPrefix := "$"
	if config.ExistsP("prefix") {
		defaultPrefix = config.Path("prefix").Data().(string)
	}
	defaultThreshold := 5
	if config.ExistsP("starboard.threshold") {
		defaultThreshold = int(config.Path("starboard.threshold").Data().(float64))
	}
	helpers.SetGuildConfigStore(helpers.NewGuildConfigStore(db, defaultPrefix, defaultThreshold))

	// Start metric server
	metrics.Init(config.Path("metrics.address").Data().(string))

	// Connect and add event handlers
	discordgo.Logger = func(msgL, caller int, format string, a ...interface{}) {
		pc, file, line, _ := runtime.Caller(caller)

		files := strings.Split(file, "/")
		file = files[len(files)-1]

		name := runtime.FuncForPC(pc).Name()
		fns := strings.Split(name, ".")
		name = fns[len(fns)-1]

		msg := format
		if strings.Contains(msg, "%") {
			msg = fmt.Sprintf(format, a...)
		}

		switch msgL {
		case discordgo.LogError:
			log.WithField("module", "discordgo").Errorf("%s:%d:%s() %s", file, line, name, msg)
		case discordgo.LogWarning:
			log.WithField("module", "discordgo").Warnf("%s:%d:%s() %s", file, line, name, msg)
		case discordgo.LogInformational:
			log.WithField("module", "discordgo").Infof("%s:%d:%s() %s", file, line, name, msg)
		case discordgo.LogDebug:
			log.WithField("module", "discordgo").Debugf("%s:%d:%s() %s", file, line, name, msg)
		}
	}
	log.WithField("module", "launcher").Info("Connecting Starr to discord...")
	discord, err := discordgo.New("Bot " + config.Path("discord.token").Data().(string))
	if err != nil {
		panic(err)
	}

	discord.Lock()
	discord.Debug = false
	discord.LogLevel = discordgo.LogInformational
	discord.StateEnabled = true
	discord.Identify.Intents = discordgo.IntentGuilds |
		discordgo.IntentGuildMessages |
		discordgo.IntentGuildMessageReactions |
		discordgo.IntentMessageContent
	discord.Unlock()

	discord.AddHandler(BotOnReady)
	discord.AddHandler(BotOnGuildCreate)
	discord.AddHandler(BotOnMessageCreate)
	discord.AddHandler(BotOnMessageDelete)
	discord.AddHandler(BotOnReactionAdd)
	discord.AddHandler(BotOnReactionRemove)
	discord.AddHandler(BotOnReactionRemoveAll)
	discord.AddHandler(BotOnEvent)

	// Connect to discord
	err = discord.Open()
	if err != nil {
		raven.CaptureErrorAndWait(err, nil)
		panic(err)
	}

	// Make a channel that waits for a os signal
	runtimeChannel := make(chan os.Signal, 1)
	signal.Notify(runtimeChannel, os.Interrupt, syscall.SIGTERM)

	// Wait until the os wants us to shutdown
	<-runtimeChannel

	log.WithField("module", "launcher").Info("Starr is stopping")
	log.WithField("module", "launcher").Info("Uninitializing plugins...")
	modules.Uninit(discord)
	log.WithField("module", "launcher").Info("Disconnecting bot discord session...")
	discord.Close()
}
