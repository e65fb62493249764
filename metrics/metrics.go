package metrics

import (
	"expvar"
	"net/http"
	"runtime"
	"time"

	"github.com/starrbot/starr/cache"
)

var (
	// MessagesReceived counts all ever received messages
	MessagesReceived = expvar.NewInt("messages_received")

	// CommandsExecuted increases after each command execution
	CommandsExecuted = expvar.NewInt("commands_executed")

	// ReactionsProcessed counts star-relevant reaction events
	ReactionsProcessed = expvar.NewInt("reactions_processed")

	// StarboardPosts counts created starboard reposts
	StarboardPosts = expvar.NewInt("starboard_posts")

	// StarboardDeletes counts removed starboard reposts
	StarboardDeletes = expvar.NewInt("starboard_deletes")

	// GuildCount counts all joined guilds
	GuildCount = expvar.NewInt("guild_count")

	// GoroutineCount counts all running goroutines
	GoroutineCount = expvar.NewInt("goroutine_count")

	// Uptime stores the timestamp of the bot's boot
	Uptime = expvar.NewInt("uptime")
)

// Init starts the expvar http listener on $address
func Init(address string) {
	cache.GetLogger().WithField("module", "metrics").Info("Listening on " + address)
	Uptime.Set(time.Now().Unix())

	go http.ListenAndServe(address, nil)
	go collectRuntimeMetrics()
}

func collectRuntimeMetrics() {
	for {
		GoroutineCount.Set(int64(runtime.NumGoroutine()))

		time.Sleep(15 * time.Second)
	}
}
