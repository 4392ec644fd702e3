package notifications

import (
	"fmt"
	"testing"
	"time"
)

func makeNotifications(n int, unread int) []Notification {
	items := make([]Notification, 0, n)
	base := time.Now()
	for i := 0; i < n; i++ {
		items = append(items, Notification{
			ID:        fmt.Sprintf("n-%02d", i),
			UserID:    "user-1",
			Title:     "title",
			Message:   "message",
			IsRead:    i >= unread,
			CreatedAt: base.Add(-time.Duration(i) * time.Minute),
		})
	}
	return items
}

func TestFeedLoadTruncatesAndCounts(t *testing.T) {
	f := NewFeed(FeedWindow)
	// 12 stored, the 3 newest unread
	f.Load(makeNotifications(12, 3))

	if got := len(f.Items()); got != FeedWindow {
		t.Errorf("Load() kept %d items, want %d", got, FeedWindow)
	}
	if got := f.Unread(); got != 3 {
		t.Errorf("Load() unread = %d, want 3", got)
	}
}

func TestFeedInsertPrependsAndTruncates(t *testing.T) {
	f := NewFeed(FeedWindow)
	f.Load(makeNotifications(12, 3))

	incoming := Notification{ID: "fresh", UserID: "user-1", Title: "t", Message: "m", CreatedAt: time.Now()}
	f.ApplyInsert(incoming)

	items := f.Items()
	if len(items) != FeedWindow {
		t.Fatalf("ApplyInsert() window size = %d, want %d", len(items), FeedWindow)
	}
	if items[0].ID != "fresh" {
		t.Errorf("ApplyInsert() head = %q, want %q", items[0].ID, "fresh")
	}
	if got := f.Unread(); got != 4 {
		t.Errorf("ApplyInsert() unread = %d, want 4", got)
	}
}

func TestFeedInsertCountsEvenWhenWindowFull(t *testing.T) {
	// The evicted tail record may itself be unread; the counter still only
	// moves up by one per insert.
	f := NewFeed(3)
	f.Load(makeNotifications(3, 3))

	f.ApplyInsert(Notification{ID: "fresh", CreatedAt: time.Now()})

	if got := f.Unread(); got != 4 {
		t.Errorf("ApplyInsert() unread = %d, want 4", got)
	}
	if got := len(f.Items()); got != 3 {
		t.Errorf("ApplyInsert() window size = %d, want 3", got)
	}
}

func TestFeedUpdateDecrementsOnlyOnFlip(t *testing.T) {
	f := NewFeed(FeedWindow)
	f.Load(makeNotifications(5, 2))

	target := f.Items()[0]
	target.IsRead = true
	f.ApplyUpdate(target)

	if got := f.Unread(); got != 1 {
		t.Errorf("ApplyUpdate() unread = %d, want 1", got)
	}

	// Same update again must not decrement twice
	f.ApplyUpdate(target)
	if got := f.Unread(); got != 1 {
		t.Errorf("ApplyUpdate() repeated, unread = %d, want 1", got)
	}

	// Updating an already-read record is a no-op for the counter
	read := f.Items()[4]
	read.Message = "edited"
	f.ApplyUpdate(read)
	if got := f.Unread(); got != 1 {
		t.Errorf("ApplyUpdate() on read record, unread = %d, want 1", got)
	}
	if f.Items()[4].Message != "edited" {
		t.Errorf("ApplyUpdate() did not replace record content")
	}
}

func TestFeedUpdateIgnoresRecordOutsideWindow(t *testing.T) {
	f := NewFeed(FeedWindow)
	f.Load(makeNotifications(5, 2))

	f.ApplyUpdate(Notification{ID: "not-in-window", IsRead: true})

	if got := f.Unread(); got != 2 {
		t.Errorf("ApplyUpdate() unread = %d, want 2", got)
	}
	if got := len(f.Items()); got != 5 {
		t.Errorf("ApplyUpdate() window size = %d, want 5", got)
	}
}

func TestFeedMarkAllRead(t *testing.T) {
	f := NewFeed(FeedWindow)
	f.Load(makeNotifications(6, 4))

	f.MarkAllRead()

	if got := f.Unread(); got != 0 {
		t.Errorf("MarkAllRead() unread = %d, want 0", got)
	}
	for i, n := range f.Items() {
		if !n.IsRead {
			t.Errorf("MarkAllRead() item %d still unread", i)
		}
	}
}
