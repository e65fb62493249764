package starboard

import (
	"github.com/starrbot/starr/metrics"
	"github.com/starrbot/starr/models"
)

// Reconcile applies the threshold state machine to one snapshot.
//
// The states per reference message are implied by data presence: no record
// means unstarred, a record at or above threshold means starred, a record
// whose repost vanished is stale and gets repaired in place. The threshold
// is inclusive: count == threshold is starred.
func (b *Board) Reconcile(snapshot *Snapshot) error {
	record, err := b.records.FindByReference(snapshot.Message.ID)
	if err != nil {
		return err
	}

	if snapshot.Count >= snapshot.Config.Threshold {
		if record == nil {
			return b.create(snapshot)
		}
		return b.update(snapshot, record)
	}

	if record == nil {
		return nil
	}

	return b.remove(record, snapshot.Config)
}

// ReconcileRemoval runs the delete transition for $messageID without
// fetching the message, for events that guarantee the count is gone
// (message deleted, all reactions cleared).
func (b *Board) ReconcileRemoval(guildID string, messageID string) error {
	config, err := b.configs.GetOrCreate(guildID)
	if err != nil {
		return err
	}

	if !config.StarboardEnabled() {
		return nil
	}

	record, err := b.records.FindByReference(messageID)
	if err != nil || record == nil {
		return err
	}

	return b.remove(record, config)
}

func (b *Board) create(snapshot *Snapshot) error {
	posted, err := b.rest.Send(snapshot.Config.StarChannelID, RenderRepost(snapshot.Message, snapshot.Count))
	if err != nil {
		if IsMissingPermissions(err) {
			b.logSkippedSend(snapshot.Config)
			return nil
		}
		return err
	}

	metrics.StarboardPosts.Add(1)

	return b.records.Insert(models.StarboardRecord{
		ReferenceMessageID: snapshot.Message.ID,
		StarboardMessageID: posted.ID,
		GuildID:            snapshot.Config.GuildID,
	})
}

// update rewrites the count line of the existing repost. The embed body is
// captured once at creation time and never refreshed. A repost that was
// deleted out of band marks the record stale and is recreated, keeping the
// same reference id.
func (b *Board) update(snapshot *Snapshot, record *models.StarboardRecord) error {
	_, err := b.rest.EditContent(snapshot.Config.StarChannelID, record.StarboardMessageID, RenderCount(snapshot.Count))
	if err == nil {
		return nil
	}
	if IsMissingPermissions(err) {
		b.logSkippedSend(snapshot.Config)
		return nil
	}
	if !IsUnknownMessage(err) {
		return err
	}

	posted, err := b.rest.Send(snapshot.Config.StarChannelID, RenderRepost(snapshot.Message, snapshot.Count))
	if err != nil {
		if IsMissingPermissions(err) {
			b.logSkippedSend(snapshot.Config)
			return nil
		}
		return err
	}

	return b.records.UpdateStarboardMessageID(record.ReferenceMessageID, posted.ID)
}

// remove deletes the repost and the record. Deletion is idempotent: a
// repost that is already gone is not an error, and racing removals settle
// on the same end state.
func (b *Board) remove(record *models.StarboardRecord, config models.GuildConfig) error {
	err := b.rest.Delete(config.StarChannelID, record.StarboardMessageID)
	if err != nil && !IsUnknownMessage(err) {
		if !IsMissingPermissions(err) {
			return err
		}
		b.logSkippedSend(config)
	} else {
		metrics.StarboardDeletes.Add(1)
	}

	return b.records.DeleteByStarboardID(record.StarboardMessageID)
}

func (b *Board) logSkippedSend(config models.GuildConfig) {
	b.log.WithField("guild", config.GuildID).WithField("channel", config.StarChannelID).
		Warn("missing permissions in starboard channel, skipping")
}
