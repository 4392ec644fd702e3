package notifications

// FeedWindow is how many notifications a live session keeps in memory.
const FeedWindow = 10

// Feed is the bounded in-memory window a realtime session maintains: the
// most recent notifications plus an unread counter. The counter is computed
// over the window on load and then adjusted incrementally: every insert
// bumps it by one, and an update decrements it only when the record flips to
// read. An unread record evicted by window truncation therefore still counts
// until the session reloads; long sessions trade exactness for never
// re-querying the store.
type Feed struct {
	limit  int
	items  []Notification
	unread int
}

func NewFeed(limit int) *Feed {
	if limit <= 0 {
		limit = FeedWindow
	}
	return &Feed{limit: limit}
}

// Load replaces the window with items (expected newest first) and recounts
// unread across what was loaded.
func (f *Feed) Load(items []Notification) {
	if len(items) > f.limit {
		items = items[:f.limit]
	}
	f.items = append([]Notification(nil), items...)
	f.unread = 0
	for _, n := range f.items {
		if !n.IsRead {
			f.unread++
		}
	}
}

// ApplyInsert prepends a new notification, truncates to the window size and
// increments the unread counter.
func (f *Feed) ApplyInsert(n Notification) {
	f.items = append([]Notification{n}, f.items...)
	if len(f.items) > f.limit {
		f.items = f.items[:f.limit]
	}
	f.unread++
}

// ApplyUpdate replaces the matching record in the window. The counter only
// ever moves down here: read state is one-way.
func (f *Feed) ApplyUpdate(n Notification) {
	for i := range f.items {
		if f.items[i].ID != n.ID {
			continue
		}
		if !f.items[i].IsRead && n.IsRead && f.unread > 0 {
			f.unread--
		}
		f.items[i] = n
		return
	}
}

// MarkAllRead flips every record in the window and zeroes the counter.
func (f *Feed) MarkAllRead() {
	for i := range f.items {
		f.items[i].IsRead = true
	}
	f.unread = 0
}

func (f *Feed) Items() []Notification {
	return f.items
}

func (f *Feed) Unread() int {
	return f.unread
}
