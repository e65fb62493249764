package starboard

import (
	"fmt"
	"io"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
	"github.com/starrbot/starr/models"
)

// fakeConfigs serves fixed per-guild settings.
type fakeConfigs struct {
	configs map[string]models.GuildConfig
}

func (f *fakeConfigs) GetOrCreate(guildID string) (models.GuildConfig, error) {
	config, ok := f.configs[guildID]
	if !ok {
		return models.GuildConfig{GuildID: guildID, Threshold: 1}, nil
	}

	return config, nil
}

// memoryRecords mirrors the SQL store semantics in a map: insert ignores
// an existing reference, delete ignores a missing repost id.
type memoryRecords struct {
	byReference map[string]models.StarboardRecord
}

func newMemoryRecords() *memoryRecords {
	return &memoryRecords{byReference: make(map[string]models.StarboardRecord)}
}

func (m *memoryRecords) FindByReference(referenceMessageID string) (*models.StarboardRecord, error) {
	record, ok := m.byReference[referenceMessageID]
	if !ok {
		return nil, nil
	}

	return &record, nil
}

func (m *memoryRecords) Insert(record models.StarboardRecord) error {
	if _, ok := m.byReference[record.ReferenceMessageID]; ok {
		return nil
	}

	m.byReference[record.ReferenceMessageID] = record
	return nil
}

func (m *memoryRecords) UpdateStarboardMessageID(referenceMessageID string, starboardMessageID string) error {
	record, ok := m.byReference[referenceMessageID]
	if !ok {
		return nil
	}

	record.StarboardMessageID = starboardMessageID
	m.byReference[referenceMessageID] = record
	return nil
}

func (m *memoryRecords) DeleteByStarboardID(starboardMessageID string) error {
	for reference, record := range m.byReference {
		if record.StarboardMessageID == starboardMessageID {
			delete(m.byReference, reference)
		}
	}

	return nil
}

type sentMessage struct {
	channelID string
	send      *discordgo.MessageSend
}

type editedMessage struct {
	channelID string
	messageID string
	content   string
}

// fakeREST records every call and serves canned messages and errors.
type fakeREST struct {
	messages map[string]*discordgo.Message

	fetches  int
	sent     []sentMessage
	edited   []editedMessage
	deleted  []string
	nextID   int
	fetchErr error
	sendErr  error
	editErr  error
	delErr   error
}

func newFakeREST() *fakeREST {
	return &fakeREST{messages: make(map[string]*discordgo.Message)}
}

func (f *fakeREST) put(message *discordgo.Message) {
	f.messages[message.ChannelID+"/"+message.ID] = message
}

func (f *fakeREST) Message(channelID string, messageID string) (*discordgo.Message, error) {
	f.fetches++

	if f.fetchErr != nil {
		return nil, f.fetchErr
	}

	message, ok := f.messages[channelID+"/"+messageID]
	if !ok {
		return nil, errUnknownMessage()
	}

	return message, nil
}

func (f *fakeREST) Send(channelID string, send *discordgo.MessageSend) (*discordgo.Message, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}

	f.sent = append(f.sent, sentMessage{channelID: channelID, send: send})
	f.nextID++

	return &discordgo.Message{ID: fmt.Sprintf("posted-%d", f.nextID), ChannelID: channelID}, nil
}

func (f *fakeREST) EditContent(channelID string, messageID string, content string) (*discordgo.Message, error) {
	if f.editErr != nil {
		return nil, f.editErr
	}

	f.edited = append(f.edited, editedMessage{channelID: channelID, messageID: messageID, content: content})

	return &discordgo.Message{ID: messageID, ChannelID: channelID}, nil
}

func (f *fakeREST) Delete(channelID string, messageID string) error {
	if f.delErr != nil {
		return f.delErr
	}

	f.deleted = append(f.deleted, messageID)
	return nil
}

func errUnknownMessage() error {
	return &discordgo.RESTError{Message: &discordgo.APIErrorMessage{Code: discordgo.ErrCodeUnknownMessage}}
}

func errMissingPermissions() error {
	return &discordgo.RESTError{Message: &discordgo.APIErrorMessage{Code: discordgo.ErrCodeMissingPermissions}}
}

func testLogger() *logrus.Entry {
	log := logrus.New()
	log.Out = io.Discard

	return log.WithField("module", "starboard")
}

func newTestBoard(configs *fakeConfigs, records RecordStore, rest *fakeREST, opts Options) *Board {
	return New(configs, records, rest, testLogger(), opts)
}

// starredMessage builds a message carrying $stars star reactions.
func starredMessage(guildID, channelID, messageID string, stars int) *discordgo.Message {
	message := &discordgo.Message{
		ID:        messageID,
		ChannelID: channelID,
		GuildID:   guildID,
		Content:   "look at this",
		Author:    &discordgo.User{ID: "author", Username: "starr", Discriminator: "0001"},
	}

	if stars > 0 {
		message.Reactions = []*discordgo.MessageReactions{
			{Emoji: &discordgo.Emoji{Name: DefaultEmoji}, Count: stars},
		}
	}

	return message
}

func reactionAdd(guildID, channelID, messageID, userID string) *discordgo.MessageReactionAdd {
	return &discordgo.MessageReactionAdd{
		MessageReaction: &discordgo.MessageReaction{
			GuildID:   guildID,
			ChannelID: channelID,
			MessageID: messageID,
			UserID:    userID,
			Emoji:     discordgo.Emoji{Name: DefaultEmoji},
		},
	}
}

func reactionRemove(guildID, channelID, messageID, userID string) *discordgo.MessageReactionRemove {
	return &discordgo.MessageReactionRemove{
		MessageReaction: &discordgo.MessageReaction{
			GuildID:   guildID,
			ChannelID: channelID,
			MessageID: messageID,
			UserID:    userID,
			Emoji:     discordgo.Emoji{Name: DefaultEmoji},
		},
	}
}
