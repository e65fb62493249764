package models

// Tag struct
type Tag struct {
	GuildID string
	Name    string
	Content string
	OwnerID string
	Uses    int
}

// TagAlias struct
type TagAlias struct {
	GuildID string
	Name    string
	Alias   string
}
