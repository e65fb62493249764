package starboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/dustin/go-humanize"
	"mvdan.cc/xurls/v2"
)

const (
	repostColor         = 0xFCD303
	descriptionMaxRunes = 2048
)

var imageFileExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}

// RenderCount builds the count line shown above the repost embed. Updates
// rewrite only this line.
func RenderCount(count int) string {
	return fmt.Sprintf("You're a ⭐ x%s!", humanize.Comma(int64(count)))
}

// RenderRepost builds the outgoing starboard message for $message. Pure
// function, no I/O.
func RenderRepost(message *discordgo.Message, count int) *discordgo.MessageSend {
	embed := &discordgo.MessageEmbed{
		Title:       "Jump to message",
		URL:         jumpLink(message),
		Color:       repostColor,
		Description: truncate(message.Content, descriptionMaxRunes),
		Footer: &discordgo.MessageEmbedFooter{
			Text: "ID: " + message.ID,
		},
	}

	if !message.Timestamp.IsZero() {
		embed.Timestamp = message.Timestamp.Format(time.RFC3339)
	}

	if message.Author != nil {
		embed.Author = &discordgo.MessageEmbedAuthor{
			Name:    displayName(message.Author),
			IconURL: message.Author.AvatarURL("256"),
		}
	}

	if url := previewImageURL(message); url != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: url}
	}

	return &discordgo.MessageSend{
		Content: RenderCount(count),
		Embed:   embed,
	}
}

func jumpLink(message *discordgo.Message) string {
	return fmt.Sprintf("https://discord.com/channels/%s/%s/%s",
		message.GuildID, message.ChannelID, message.ID)
}

func displayName(user *discordgo.User) string {
	if user.Discriminator == "" || user.Discriminator == "0" {
		return user.Username
	}

	return user.Username + "#" + user.Discriminator
}

// previewImageURL picks the visual preview: the first attachment, then the
// first image carried by an embed, then the first image-looking URL in the
// message text.
func previewImageURL(message *discordgo.Message) string {
	for _, attachment := range message.Attachments {
		if attachment != nil && attachment.URL != "" {
			return attachment.URL
		}
	}

	for _, embed := range message.Embeds {
		if embed == nil {
			continue
		}
		if embed.Image != nil && embed.Image.URL != "" {
			return embed.Image.URL
		}
		if embed.Thumbnail != nil && embed.Thumbnail.URL != "" {
			return embed.Thumbnail.URL
		}
		if embed.Video != nil && embed.Video.URL != "" {
			return embed.Video.URL
		}
	}

	for _, foundURL := range xurls.Strict().FindAllString(message.Content, -1) {
		for _, extension := range imageFileExtensions {
			if strings.HasSuffix(strings.ToLower(foundURL), extension) {
				return foundURL
			}
		}
	}

	return ""
}

func truncate(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}

	return string(runes[:max-1]) + "…"
}
