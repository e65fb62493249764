package starboard

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/starrbot/starr/metrics"
	"github.com/starrbot/starr/models"
)

func TestReconcileBelowThresholdDoesNothing(t *testing.T) {
	rest := newFakeREST()
	rest.put(starredMessage("guild", "general", "m1", 2))

	records := newMemoryRecords()
	board := newTestBoard(guildWithBoard(3), records, rest, Options{CountSelfStars: true})

	err := board.HandleReactionAdd(reactionAdd("guild", "general", "m1", "user"))
	if err != nil {
		t.Fatal(err)
	}

	if len(rest.sent) != 0 {
		t.Fatalf("expected no repost below threshold, got %d", len(rest.sent))
	}
	if len(records.byReference) != 0 {
		t.Fatalf("expected no record below threshold, got %d", len(records.byReference))
	}
}

func TestReconcileCreatesAtThreshold(t *testing.T) {
	rest := newFakeREST()
	rest.put(starredMessage("guild", "general", "m1", 3))

	records := newMemoryRecords()
	board := newTestBoard(guildWithBoard(3), records, rest, Options{CountSelfStars: true})

	err := board.HandleReactionAdd(reactionAdd("guild", "general", "m1", "user"))
	if err != nil {
		t.Fatal(err)
	}

	if len(rest.sent) != 1 {
		t.Fatalf("expected one repost at threshold, got %d", len(rest.sent))
	}
	if rest.sent[0].channelID != "stars" {
		t.Fatalf("expected repost in the star channel, got %q", rest.sent[0].channelID)
	}
	if rest.sent[0].send.Content != RenderCount(3) {
		t.Fatalf("unexpected count line: %q", rest.sent[0].send.Content)
	}

	record, err := records.FindByReference("m1")
	if err != nil {
		t.Fatal(err)
	}
	if record == nil {
		t.Fatal("expected a record for the repost")
	}
	if record.StarboardMessageID != "posted-1" {
		t.Fatalf("record points at %q", record.StarboardMessageID)
	}
	if record.GuildID != "guild" {
		t.Fatalf("record guild is %q", record.GuildID)
	}
}

func TestReconcileUpdatesExistingRepost(t *testing.T) {
	rest := newFakeREST()
	rest.put(starredMessage("guild", "general", "m1", 4))

	records := newMemoryRecords()
	records.Insert(models.StarboardRecord{ReferenceMessageID: "m1", StarboardMessageID: "posted-1", GuildID: "guild"})

	board := newTestBoard(guildWithBoard(3), records, rest, Options{CountSelfStars: true})

	err := board.HandleReactionAdd(reactionAdd("guild", "general", "m1", "user"))
	if err != nil {
		t.Fatal(err)
	}

	if len(rest.sent) != 0 {
		t.Fatalf("expected no second repost, got %d", len(rest.sent))
	}
	if len(rest.edited) != 1 {
		t.Fatalf("expected one edit, got %d", len(rest.edited))
	}
	if rest.edited[0].messageID != "posted-1" {
		t.Fatalf("edited %q", rest.edited[0].messageID)
	}
	if rest.edited[0].content != RenderCount(4) {
		t.Fatalf("unexpected count line: %q", rest.edited[0].content)
	}
}

func TestReconcileRepairsStaleRecord(t *testing.T) {
	rest := newFakeREST()
	rest.put(starredMessage("guild", "general", "m1", 5))
	rest.editErr = errUnknownMessage()

	records := newMemoryRecords()
	records.Insert(models.StarboardRecord{ReferenceMessageID: "m1", StarboardMessageID: "vanished", GuildID: "guild"})

	board := newTestBoard(guildWithBoard(3), records, rest, Options{CountSelfStars: true})

	err := board.HandleReactionAdd(reactionAdd("guild", "general", "m1", "user"))
	if err != nil {
		t.Fatal(err)
	}

	if len(rest.sent) != 1 {
		t.Fatalf("expected the repost recreated, got %d sends", len(rest.sent))
	}

	record, _ := records.FindByReference("m1")
	if record == nil {
		t.Fatal("expected the record kept under m1")
	}
	if record.StarboardMessageID != "posted-1" {
		t.Fatalf("expected the record repointed at the new repost, got %q", record.StarboardMessageID)
	}
	if len(records.byReference) != 1 {
		t.Fatalf("expected exactly one record, got %d", len(records.byReference))
	}
}

func TestReconcileRemovesBelowThreshold(t *testing.T) {
	rest := newFakeREST()
	rest.put(starredMessage("guild", "general", "m1", 2))

	records := newMemoryRecords()
	records.Insert(models.StarboardRecord{ReferenceMessageID: "m1", StarboardMessageID: "posted-1", GuildID: "guild"})

	board := newTestBoard(guildWithBoard(3), records, rest, Options{CountSelfStars: true})

	err := board.HandleReactionRemove(reactionRemove("guild", "general", "m1", "user"))
	if err != nil {
		t.Fatal(err)
	}

	if len(rest.deleted) != 1 || rest.deleted[0] != "posted-1" {
		t.Fatalf("expected the repost deleted, got %v", rest.deleted)
	}
	if len(records.byReference) != 0 {
		t.Fatalf("expected the record gone, got %d", len(records.byReference))
	}
}

func TestReconcileRemoveToleratesMissingRepost(t *testing.T) {
	rest := newFakeREST()
	rest.put(starredMessage("guild", "general", "m1", 0))
	rest.delErr = errUnknownMessage()

	records := newMemoryRecords()
	records.Insert(models.StarboardRecord{ReferenceMessageID: "m1", StarboardMessageID: "posted-1", GuildID: "guild"})

	board := newTestBoard(guildWithBoard(3), records, rest, Options{CountSelfStars: true})

	err := board.HandleReactionRemove(reactionRemove("guild", "general", "m1", "user"))
	if err != nil {
		t.Fatal(err)
	}

	if len(records.byReference) != 0 {
		t.Fatal("expected the record removed even though the repost was already gone")
	}
}

func TestReconcileRemovalSkipsUnknownMessages(t *testing.T) {
	rest := newFakeREST()
	records := newMemoryRecords()
	board := newTestBoard(guildWithBoard(3), records, rest, Options{CountSelfStars: true})

	err := board.ReconcileRemoval("guild", "never-starred")
	if err != nil {
		t.Fatal(err)
	}

	if len(rest.deleted) != 0 {
		t.Fatalf("expected no delete call, got %v", rest.deleted)
	}
}

func TestMessageDeleteRemovesRepostWithoutFetch(t *testing.T) {
	rest := newFakeREST()

	records := newMemoryRecords()
	records.Insert(models.StarboardRecord{ReferenceMessageID: "m1", StarboardMessageID: "posted-1", GuildID: "guild"})

	board := newTestBoard(guildWithBoard(3), records, rest, Options{CountSelfStars: true})

	event := &discordgo.MessageDelete{Message: &discordgo.Message{ID: "m1", ChannelID: "general", GuildID: "guild"}}
	if err := board.HandleMessageDelete(event); err != nil {
		t.Fatal(err)
	}

	if rest.fetches != 0 {
		t.Fatalf("expected no message fetch for a delete event, got %d", rest.fetches)
	}
	if len(rest.deleted) != 1 || rest.deleted[0] != "posted-1" {
		t.Fatalf("expected the repost deleted, got %v", rest.deleted)
	}
	if len(records.byReference) != 0 {
		t.Fatal("expected the record gone")
	}

	// A second delivery of the same event finds no record and does nothing.
	if err := board.HandleMessageDelete(event); err != nil {
		t.Fatal(err)
	}
	if len(rest.deleted) != 1 {
		t.Fatalf("expected the repeated event ignored, got %v", rest.deleted)
	}

	// A reposted and restarred message gets a fresh repost afterwards.
	rest.put(starredMessage("guild", "general", "m1", 3))
	if err := board.HandleReactionAdd(reactionAdd("guild", "general", "m1", "user")); err != nil {
		t.Fatal(err)
	}
	record, _ := records.FindByReference("m1")
	if record == nil || record.StarboardMessageID != "posted-1" {
		t.Fatalf("expected a fresh repost record, got %+v", record)
	}
}

func TestReconcileMissingSendPermissionsIsNotFatal(t *testing.T) {
	rest := newFakeREST()
	rest.put(starredMessage("guild", "general", "m1", 3))
	rest.sendErr = errMissingPermissions()

	records := newMemoryRecords()
	board := newTestBoard(guildWithBoard(3), records, rest, Options{CountSelfStars: true})

	err := board.HandleReactionAdd(reactionAdd("guild", "general", "m1", "user"))
	if err != nil {
		t.Fatal(err)
	}

	if len(records.byReference) != 0 {
		t.Fatal("expected no record when the repost could not be sent")
	}
}

func TestRemoveCountsOnlyPerformedDeletes(t *testing.T) {
	makeBoard := func(delErr error) (*Board, *memoryRecords) {
		rest := newFakeREST()
		rest.put(starredMessage("guild", "general", "m1", 0))
		rest.delErr = delErr

		records := newMemoryRecords()
		records.Insert(models.StarboardRecord{ReferenceMessageID: "m1", StarboardMessageID: "posted-1", GuildID: "guild"})

		return newTestBoard(guildWithBoard(3), records, rest, Options{CountSelfStars: true}), records
	}

	board, _ := makeBoard(nil)
	before := metrics.StarboardDeletes.Value()
	if err := board.HandleReactionRemove(reactionRemove("guild", "general", "m1", "user")); err != nil {
		t.Fatal(err)
	}
	if got := metrics.StarboardDeletes.Value() - before; got != 1 {
		t.Fatalf("expected a performed delete counted once, got %d", got)
	}

	// A repost that was already gone still counts as removed.
	board, _ = makeBoard(errUnknownMessage())
	before = metrics.StarboardDeletes.Value()
	if err := board.HandleReactionRemove(reactionRemove("guild", "general", "m1", "user")); err != nil {
		t.Fatal(err)
	}
	if got := metrics.StarboardDeletes.Value() - before; got != 1 {
		t.Fatalf("expected an already-gone repost counted, got %d", got)
	}

	// A delete skipped for missing permissions is not a performed delete.
	board, records := makeBoard(errMissingPermissions())
	before = metrics.StarboardDeletes.Value()
	if err := board.HandleReactionRemove(reactionRemove("guild", "general", "m1", "user")); err != nil {
		t.Fatal(err)
	}
	if got := metrics.StarboardDeletes.Value() - before; got != 0 {
		t.Fatalf("expected a skipped delete not counted, got %d", got)
	}
	if len(records.byReference) != 0 {
		t.Fatal("expected the record dropped regardless")
	}
}

// Walks a message across the threshold in both directions.
func TestReconcileLifecycle(t *testing.T) {
	message := starredMessage("guild", "general", "m1", 0)

	rest := newFakeREST()
	rest.put(message)

	records := newMemoryRecords()
	board := newTestBoard(guildWithBoard(3), records, rest, Options{CountSelfStars: true})

	setStars := func(stars int) {
		message.Reactions = starredMessage("guild", "general", "m1", stars).Reactions
	}

	// Stars one and two change nothing.
	for stars := 1; stars <= 2; stars++ {
		setStars(stars)
		if err := board.HandleReactionAdd(reactionAdd("guild", "general", "m1", "user")); err != nil {
			t.Fatal(err)
		}
		if len(rest.sent) != 0 {
			t.Fatalf("expected no repost at %d stars", stars)
		}
	}

	// The third star crosses the threshold.
	setStars(3)
	if err := board.HandleReactionAdd(reactionAdd("guild", "general", "m1", "user")); err != nil {
		t.Fatal(err)
	}
	if len(rest.sent) != 1 {
		t.Fatalf("expected the repost at 3 stars, got %d sends", len(rest.sent))
	}

	// A fourth star only updates the count line.
	setStars(4)
	if err := board.HandleReactionAdd(reactionAdd("guild", "general", "m1", "user")); err != nil {
		t.Fatal(err)
	}
	if len(rest.sent) != 1 || len(rest.edited) != 1 {
		t.Fatalf("expected one send and one edit, got %d/%d", len(rest.sent), len(rest.edited))
	}

	// Dropping back to two stars removes the repost.
	setStars(2)
	if err := board.HandleReactionRemove(reactionRemove("guild", "general", "m1", "user")); err != nil {
		t.Fatal(err)
	}
	if len(rest.deleted) != 1 {
		t.Fatalf("expected the repost deleted, got %d", len(rest.deleted))
	}
	if len(records.byReference) != 0 {
		t.Fatal("expected the record gone")
	}

	// Crossing the threshold again produces a fresh repost.
	setStars(3)
	if err := board.HandleReactionAdd(reactionAdd("guild", "general", "m1", "user")); err != nil {
		t.Fatal(err)
	}
	if len(rest.sent) != 2 {
		t.Fatalf("expected a second repost, got %d sends", len(rest.sent))
	}

	record, _ := records.FindByReference("m1")
	if record == nil {
		t.Fatal("expected a record again")
	}
	if record.StarboardMessageID != "posted-2" {
		t.Fatalf("record points at %q", record.StarboardMessageID)
	}
}
