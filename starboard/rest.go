package starboard

import (
	"github.com/bwmarrin/discordgo"
)

// MessageAPI is the slice of the discord REST surface the starboard needs.
// The concrete implementation suspends on the network; fakes back the tests.
type MessageAPI interface {
	Message(channelID string, messageID string) (*discordgo.Message, error)
	Send(channelID string, send *discordgo.MessageSend) (*discordgo.Message, error)
	EditContent(channelID string, messageID string, content string) (*discordgo.Message, error)
	Delete(channelID string, messageID string) error
}

// SessionAPI adapts a live discordgo session to MessageAPI.
type SessionAPI struct {
	Session *discordgo.Session
}

func (a *SessionAPI) Message(channelID string, messageID string) (*discordgo.Message, error) {
	return a.Session.ChannelMessage(channelID, messageID)
}

func (a *SessionAPI) Send(channelID string, send *discordgo.MessageSend) (*discordgo.Message, error) {
	return a.Session.ChannelMessageSendComplex(channelID, send)
}

func (a *SessionAPI) EditContent(channelID string, messageID string, content string) (*discordgo.Message, error) {
	return a.Session.ChannelMessageEdit(channelID, messageID, content)
}

func (a *SessionAPI) Delete(channelID string, messageID string) error {
	return a.Session.ChannelMessageDelete(channelID, messageID)
}

// IsUnknownMessage reports whether $err means the message no longer exists.
// Deletions and edits racing the gateway make this an expected condition.
func IsUnknownMessage(err error) bool {
	if errD, ok := err.(*discordgo.RESTError); ok && errD.Message != nil {
		return errD.Message.Code == discordgo.ErrCodeUnknownMessage ||
			errD.Message.Code == discordgo.ErrCodeUnknownChannel
	}

	return false
}

// IsMissingPermissions reports whether $err means the bot may not act in the
// target channel.
func IsMissingPermissions(err error) bool {
	if errD, ok := err.(*discordgo.RESTError); ok && errD.Message != nil {
		return errD.Message.Code == discordgo.ErrCodeMissingPermissions ||
			errD.Message.Code == discordgo.ErrCodeMissingAccess
	}

	return false
}
