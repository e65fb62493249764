// Except.go: Contains functions to make handling panics less PITA

package helpers

import (
	"fmt"
	"strconv"

	"github.com/bwmarrin/discordgo"
	"github.com/davecgh/go-spew/spew"
	"github.com/getsentry/raven-go"
	"github.com/starrbot/starr/cache"
)

// DEBUG_MODE is toggled by the "debug" config key
var DEBUG_MODE = false

// Callback is a parameterless function
type Callback func()

// RecoverDiscord recover()s and sends a message to discord
func RecoverDiscord(msg *discordgo.Message) {
	err := recover()
	if err != nil {
		SendError(msg, err)
	}
}

// Recover recover()s and prints the error to console
func Recover() {
	err := recover()
	if err != nil {
		cache.GetLogger().WithField("module", "except").Errorf("recovered: %#v", err)

		raven.CaptureError(fmt.Errorf("%#v", err), map[string]string{})
	}
}

// SoftRelax is a softer form of Relax()
// Calls a callback instead of panicking
func SoftRelax(err error, cb Callback) {
	if err != nil {
		cb()
	}
}

// Relax is a helper to reduce if-checks if panicking is allowed
// If $err is nil this is a no-op. Panics otherwise.
func Relax(err error) {
	if err != nil {
		if DEBUG_MODE == true {
			if errD, ok := err.(*discordgo.RESTError); ok && errD.Message != nil {
				fmt.Println(strconv.Itoa(errD.Message.Code)+":", errD.Message.Message)
			} else {
				fmt.Println(err)
			}
		}
		panic(err)
	}
}

// RelaxMessage does nothing if $err is nil or if we lack permission to send
// a message, else sends it to Relax()
func RelaxMessage(err error, channelID string, commandMessageID string) {
	if err != nil {
		if errD, ok := err.(*discordgo.RESTError); ok && errD.Message != nil {
			if errD.Message.Code == discordgo.ErrCodeMissingPermissions {
				return
			}
		}
		Relax(err)
	}
}

// SendError Takes an error and sends it to discord and sentry.io
func SendError(msg *discordgo.Message, err interface{}) {
	if DEBUG_MODE == true {
		cache.GetSession().ChannelMessageSend(
			msg.ChannelID,
			"Error :frowning:\n```\n"+spew.Sdump(err)+"\n```",
		)
	} else {
		if errR, ok := err.(*discordgo.RESTError); ok && errR.Message != nil {
			cache.GetSession().ChannelMessageSend(
				msg.ChannelID,
				"Error :frowning:\n```\n"+fmt.Sprintf("%#v", errR.Message.Message)+"\n```",
			)
		} else {
			cache.GetSession().ChannelMessageSend(
				msg.ChannelID,
				"Error :frowning:\n```\n"+fmt.Sprintf("%#v", err)+"\n```",
			)
		}
	}

	raven.SetUserContext(&raven.User{
		ID:       msg.ID,
		Username: msg.Author.Username + "#" + msg.Author.Discriminator,
	})

	raven.CaptureError(fmt.Errorf("%#v", err), map[string]string{
		"ChannelID": msg.ChannelID,
		"Content":   msg.Content,
	})
}
