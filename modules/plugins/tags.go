package plugins

import (
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/dustin/go-humanize"
	"github.com/starrbot/starr/cache"
	"github.com/starrbot/starr/helpers"
)

type Tags struct{}

// reservedTagNames may not be used as tag names or aliases because they
// collide with subcommands.
var reservedTagNames = []string{
	"create",
	"delete",
	"edit",
	"info",
	"list",
	"transfer",
	"claim",
	"alias",
}

var userMentionRegex = regexp.MustCompile(`^<@!?(\d+)>$`)

// resolveTagQuery turns an alias into its tag name, or passes the name
// through untouched.
const resolveTagQuery = "COALESCE((SELECT tag_name FROM tag_aliases WHERE guild_id = $1 AND tag_alias = $2), $2)"

func (t *Tags) Commands() []string {
	return []string{
		"tag",
		"t",
	}
}

func (t *Tags) Init(session *discordgo.Session) {

}

func (t *Tags) Action(command string, content string, msg *discordgo.Message, session *discordgo.Session) {
	defer helpers.RecoverDiscord(msg)

	args := strings.Fields(content)
	if len(args) < 1 {
		t.reply(msg, "Which tag? Try `tag <name>` or `tag list`.")
		return
	}

	channel, err := helpers.GetChannel(msg.ChannelID)
	helpers.Relax(err)

	switch args[0] {
	case "create":
		t.actionCreate(channel.GuildID, args, content, msg)
	case "delete":
		t.actionDelete(channel.GuildID, args, msg)
	case "edit":
		t.actionEdit(channel.GuildID, args, content, msg)
	case "info":
		t.actionInfo(channel.GuildID, args, msg)
	case "list":
		t.actionList(channel.GuildID, msg)
	case "alias":
		t.actionAlias(channel.GuildID, args, msg)
	case "claim":
		t.actionClaim(channel.GuildID, args, msg)
	case "transfer":
		t.actionTransfer(channel.GuildID, args, msg)
	default:
		t.actionInvoke(channel.GuildID, args[0], msg)
	}
}

// actionInvoke responds with the tag content and counts the use.
func (t *Tags) actionInvoke(guildID string, name string, msg *discordgo.Message) {
	name = strings.ToLower(name)

	var content string
	err := cache.GetDB().QueryRow(
		"UPDATE tags SET uses = uses + 1 WHERE guild_id = $1 AND tag_name = "+resolveTagQuery+" RETURNING content;",
		guildID, name,
	).Scan(&content)

	if err == sql.ErrNoRows {
		t.reply(msg, fmt.Sprintf("`%s` is not a valid tag.", name))
		return
	}
	helpers.Relax(err)

	t.reply(msg, content)
}

func (t *Tags) actionCreate(guildID string, args []string, content string, msg *discordgo.Message) {
	if len(args) < 3 {
		t.reply(msg, "Usage: `tag create <name> <content>`.")
		return
	}

	name := strings.ToLower(args[1])
	if t.isReserved(name) {
		t.reply(msg, "The following tag names are reserved: `"+strings.Join(reservedTagNames, ", ")+"`")
		return
	}

	tagContent := strings.TrimSpace(strings.SplitN(content, args[1], 2)[1])

	var owner string
	err := cache.GetDB().QueryRow(
		"SELECT tag_owner FROM tags WHERE guild_id = $1 AND tag_name = "+resolveTagQuery+";",
		guildID, name,
	).Scan(&owner)
	if err == nil {
		t.reply(msg, fmt.Sprintf("Sorry, `%s` was already created by <@%s>. Try a different name.", name, owner))
		return
	}
	if err != sql.ErrNoRows {
		helpers.Relax(err)
	}

	_, err = cache.GetDB().Exec(
		"INSERT INTO tags (guild_id, tag_name, tag_owner, content) VALUES ($1, $2, $3, $4);",
		guildID, name, msg.Author.ID, tagContent,
	)
	helpers.Relax(err)

	t.reply(msg, fmt.Sprintf("`%s` tag created by <@%s>.", name, msg.Author.ID))
}

func (t *Tags) actionDelete(guildID string, args []string, msg *discordgo.Message) {
	if len(args) < 2 {
		t.reply(msg, "Usage: `tag delete <name>`.")
		return
	}

	name := strings.ToLower(args[1])
	owner, ok := t.fetchOwner(guildID, name)
	if !ok {
		t.reply(msg, fmt.Sprintf("No `%s` tag exists.", name))
		return
	}
	if owner != msg.Author.ID {
		t.reply(msg, fmt.Sprintf("<@%s> owns the `%s` tag, so you can't delete it.", owner, name))
		return
	}

	_, err := cache.GetDB().Exec(
		"DELETE FROM tags WHERE guild_id = $1 AND tag_name = $2;", guildID, name)
	helpers.Relax(err)

	t.reply(msg, fmt.Sprintf("Deleted the `%s` tag.", name))
}

func (t *Tags) actionEdit(guildID string, args []string, content string, msg *discordgo.Message) {
	if len(args) < 3 {
		t.reply(msg, "Usage: `tag edit <name> <new content>`.")
		return
	}

	name := strings.ToLower(args[1])
	owner, ok := t.fetchOwner(guildID, name)
	if !ok {
		t.reply(msg, fmt.Sprintf("No `%s` tag exists.", name))
		return
	}
	if owner != msg.Author.ID {
		t.reply(msg, fmt.Sprintf("<@%s> owns the `%s` tag, so you can't edit it.", owner, name))
		return
	}

	newContent := strings.TrimSpace(strings.SplitN(content, args[1], 2)[1])

	_, err := cache.GetDB().Exec(
		"UPDATE tags SET content = $1 WHERE guild_id = $2 AND tag_name = $3;",
		newContent, guildID, name,
	)
	helpers.Relax(err)

	t.reply(msg, fmt.Sprintf("Updated the `%s` tag.", name))
}

func (t *Tags) actionInfo(guildID string, args []string, msg *discordgo.Message) {
	if len(args) < 2 {
		t.reply(msg, "Usage: `tag info <name>`.")
		return
	}

	name := strings.ToLower(args[1])

	var resolvedName, owner string
	var uses int
	err := cache.GetDB().QueryRow(
		"SELECT tag_name, tag_owner, uses FROM tags WHERE guild_id = $1 AND tag_name = "+resolveTagQuery+";",
		guildID, name,
	).Scan(&resolvedName, &owner, &uses)

	if err == sql.ErrNoRows {
		t.reply(msg, fmt.Sprintf("No `%s` tag exists.", name))
		return
	}
	helpers.Relax(err)

	embed := &discordgo.MessageEmbed{
		Title:       "Tag information",
		Description: fmt.Sprintf("Requested: `%s`\nTag name: `%s`", name, resolvedName),
		Color:       helpers.GetDiscordColorFromHex("19fa3b"),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Owner", Value: "<@" + owner + ">", Inline: true},
			{Name: "Uses", Value: humanize.Comma(int64(uses)), Inline: true},
			{Name: "Is alias", Value: fmt.Sprintf("%t", resolvedName != name), Inline: true},
		},
	}

	_, err = helpers.SendEmbed(msg.ChannelID, embed)
	helpers.RelaxMessage(err, msg.ChannelID, msg.ID)
}

func (t *Tags) actionList(guildID string, msg *discordgo.Message) {
	rows, err := cache.GetDB().Query(
		"SELECT tag_name, tag_owner, uses FROM tags WHERE guild_id = $1 ORDER BY uses DESC LIMIT 25;",
		guildID,
	)
	helpers.Relax(err)
	defer rows.Close()

	var list string
	for rows.Next() {
		var name, owner string
		var uses int
		helpers.Relax(rows.Scan(&name, &owner, &uses))
		list += fmt.Sprintf("`%s` by <@%s> (%s uses)\n", name, owner, humanize.Comma(int64(uses)))
	}
	helpers.Relax(rows.Err())

	if list == "" {
		t.reply(msg, "No tags for this server yet, make one!")
		return
	}

	guildName := "this server"
	if guild, err := helpers.GetGuild(guildID); err == nil {
		guildName = guild.Name
	}

	embed := &discordgo.MessageEmbed{
		Title:       "Tags for " + guildName,
		Description: list,
		Color:       helpers.GetDiscordColorFromHex("19fa3b"),
	}

	_, err = helpers.SendEmbed(msg.ChannelID, embed)
	helpers.RelaxMessage(err, msg.ChannelID, msg.ID)
}

func (t *Tags) actionAlias(guildID string, args []string, msg *discordgo.Message) {
	if len(args) < 3 {
		t.reply(msg, "Usage: `tag alias <name> <alias>`.")
		return
	}

	name := strings.ToLower(args[1])
	alias := strings.ToLower(args[2])

	if t.isReserved(alias) {
		t.reply(msg, "The following tag aliases are reserved: `"+strings.Join(reservedTagNames, ", ")+"`")
		return
	}

	owner, ok := t.fetchOwner(guildID, name)
	if !ok {
		t.reply(msg, fmt.Sprintf("Can't alias tag `%s` because it does not exist, typo?", name))
		return
	}
	if owner != msg.Author.ID {
		t.reply(msg, fmt.Sprintf("<@%s> owns the `%s` tag, so you can't alias it.", owner, name))
		return
	}

	var aliasOwner string
	err := cache.GetDB().QueryRow(
		"SELECT tag_owner FROM tags WHERE guild_id = $1 AND tag_name = "+resolveTagQuery+";",
		guildID, alias,
	).Scan(&aliasOwner)
	if err == nil {
		t.reply(msg, fmt.Sprintf("Sorry, `%s` is already in use by <@%s>.", alias, aliasOwner))
		return
	}
	if err != sql.ErrNoRows {
		helpers.Relax(err)
	}

	_, err = cache.GetDB().Exec(
		"INSERT INTO tag_aliases (guild_id, tag_name, tag_alias) VALUES ($1, $2, $3);",
		guildID, name, alias,
	)
	helpers.Relax(err)

	t.reply(msg, fmt.Sprintf("Successfully aliased `%s` to `%s`.", name, alias))
}

// actionClaim hands a tag to the caller when its owner left the server.
func (t *Tags) actionClaim(guildID string, args []string, msg *discordgo.Message) {
	if len(args) < 2 {
		t.reply(msg, "Usage: `tag claim <name>`.")
		return
	}

	name := strings.ToLower(args[1])
	owner, ok := t.fetchOwner(guildID, name)
	if !ok {
		t.reply(msg, fmt.Sprintf("There is no tag named `%s`, make it if you want it...", name))
		return
	}

	if _, err := helpers.GetGuildMember(guildID, owner); err == nil {
		t.reply(msg, fmt.Sprintf("You can't have the `%s` tag, <@%s> is still here!", name, owner))
		return
	}

	_, err := cache.GetDB().Exec(
		"UPDATE tags SET tag_owner = $1 WHERE guild_id = $2 AND tag_name = $3;",
		msg.Author.ID, guildID, name,
	)
	helpers.Relax(err)

	t.reply(msg, fmt.Sprintf("Congrats, you own the `%s` tag now!", name))
}

func (t *Tags) actionTransfer(guildID string, args []string, msg *discordgo.Message) {
	if len(args) < 3 {
		t.reply(msg, "Usage: `tag transfer <name> <@member>`.")
		return
	}

	name := strings.ToLower(args[1])
	owner, ok := t.fetchOwner(guildID, name)
	if !ok {
		t.reply(msg, fmt.Sprintf("No `%s` tag exists.", name))
		return
	}
	if owner != msg.Author.ID {
		t.reply(msg, fmt.Sprintf("<@%s> owns the `%s` tag, so you can't transfer it.", owner, name))
		return
	}

	parts := userMentionRegex.FindStringSubmatch(args[2])
	if parts == nil {
		t.reply(msg, "Please mention the member to transfer the tag to.")
		return
	}
	targetID := parts[1]

	if _, err := helpers.GetGuildMember(guildID, targetID); err != nil {
		t.reply(msg, "That member doesn't seem to be on this server.")
		return
	}

	_, err := cache.GetDB().Exec(
		"UPDATE tags SET tag_owner = $1 WHERE guild_id = $2 AND tag_name = $3;",
		targetID, guildID, name,
	)
	helpers.Relax(err)

	t.reply(msg, fmt.Sprintf("The `%s` tag belongs to <@%s> now.", name, targetID))
}

func (t *Tags) fetchOwner(guildID string, name string) (string, bool) {
	var owner string
	err := cache.GetDB().QueryRow(
		"SELECT tag_owner FROM tags WHERE guild_id = $1 AND tag_name = $2;",
		guildID, name,
	).Scan(&owner)

	if err == sql.ErrNoRows {
		return "", false
	}
	helpers.Relax(err)

	return owner, true
}

func (t *Tags) isReserved(name string) bool {
	for _, reserved := range reservedTagNames {
		if name == reserved {
			return true
		}
	}

	return false
}

func (t *Tags) reply(msg *discordgo.Message, content string) {
	_, err := helpers.SendMessage(msg.ChannelID, content)
	helpers.RelaxMessage(err, msg.ChannelID, msg.ID)
}
