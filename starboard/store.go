package starboard

import (
	"database/sql"

	"github.com/starrbot/starr/models"
)

// RecordStore persists the one-to-at-most-one mapping between an original
// message and its starboard repost. Every operation is a single statement;
// no cross-record transactions are needed because each reference message
// owns exactly one record.
type RecordStore interface {
	FindByReference(referenceMessageID string) (*models.StarboardRecord, error)
	Insert(record models.StarboardRecord) error
	UpdateStarboardMessageID(referenceMessageID string, starboardMessageID string) error
	DeleteByStarboardID(starboardMessageID string) error
}

// SQLRecordStore is the Postgres-backed RecordStore.
type SQLRecordStore struct {
	db *sql.DB
}

// NewSQLRecordStore creates a record store on top of $db.
func NewSQLRecordStore(db *sql.DB) *SQLRecordStore {
	return &SQLRecordStore{db: db}
}

func (s *SQLRecordStore) FindByReference(referenceMessageID string) (*models.StarboardRecord, error) {
	record := &models.StarboardRecord{}

	err := s.db.QueryRow(
		"SELECT reference_message_id, starboard_message_id, guild_id FROM starboard_records WHERE reference_message_id = $1;",
		referenceMessageID,
	).Scan(&record.ReferenceMessageID, &record.StarboardMessageID, &record.GuildID)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return record, nil
}

// Insert stores a new record. Duplicate create attempts from racing events
// hit the conflict clause and are silently ignored.
func (s *SQLRecordStore) Insert(record models.StarboardRecord) error {
	_, err := s.db.Exec(
		"INSERT INTO starboard_records (reference_message_id, starboard_message_id, guild_id) VALUES ($1, $2, $3) ON CONFLICT (reference_message_id) DO NOTHING;",
		record.ReferenceMessageID,
		record.StarboardMessageID,
		record.GuildID,
	)

	return err
}

// UpdateStarboardMessageID points an existing record at a freshly created
// repost, keeping the reference id stable. Used when the old repost was
// deleted out of band.
func (s *SQLRecordStore) UpdateStarboardMessageID(referenceMessageID string, starboardMessageID string) error {
	_, err := s.db.Exec(
		"UPDATE starboard_records SET starboard_message_id = $1 WHERE reference_message_id = $2;",
		starboardMessageID,
		referenceMessageID,
	)

	return err
}

func (s *SQLRecordStore) DeleteByStarboardID(starboardMessageID string) error {
	_, err := s.db.Exec(
		"DELETE FROM starboard_records WHERE starboard_message_id = $1;",
		starboardMessageID,
	)

	return err
}
