package models

// StarboardRecordTable is the Postgres table mapping starred messages to
// their reposts.
const StarboardRecordTable = "starboard_records"

// StarboardRecord struct
type StarboardRecord struct {
	ReferenceMessageID string
	StarboardMessageID string
	GuildID            string
}
