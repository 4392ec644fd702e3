package notifications

import (
	"context"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/campusgig/campusgig/internal/metrics"
)

type wsEvent struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// session is one live notification subscription: a websocket connection plus
// its private feed window. The mutex covers both the feed and the write side
// of the connection.
type session struct {
	conn *websocket.Conn
	feed *Feed
	mu   sync.Mutex
}

func (s *session) send(evt wsEvent) {
	_ = s.conn.WriteJSON(evt)
}

func (s *session) applyInsert(n Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feed.ApplyInsert(n)
	s.send(wsEvent{Type: "notification_new", Data: echo.Map{
		"notification": n,
		"unread_count": s.feed.Unread(),
	}})
}

func (s *session) applyUpdate(n Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feed.ApplyUpdate(n)
	s.send(wsEvent{Type: "notification_update", Data: echo.Map{
		"notification": n,
		"unread_count": s.feed.Unread(),
	}})
}

func (s *session) applyReadAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feed.MarkAllRead()
	s.send(wsEvent{Type: "notifications_read_all", Data: echo.Map{
		"unread_count": 0,
	}})
}

type hub struct {
	userID   string
	sessions map[*session]bool
	mu       sync.RWMutex
}

var (
	hubsMu sync.RWMutex
	hubs   = make(map[string]*hub)
)

func getHub(userID string) *hub {
	hubsMu.Lock()
	defer hubsMu.Unlock()
	if h, ok := hubs[userID]; ok {
		return h
	}
	h := &hub{userID: userID, sessions: make(map[*session]bool)}
	hubs[userID] = h
	return h
}

func (h *hub) register(s *session) {
	h.mu.Lock()
	h.sessions[s] = true
	h.mu.Unlock()
}

func (h *hub) unregister(s *session) {
	h.mu.Lock()
	delete(h.sessions, s)
	empty := len(h.sessions) == 0
	h.mu.Unlock()

	if empty {
		hubsMu.Lock()
		if cur, ok := hubs[h.userID]; ok && cur == h {
			cur.mu.RLock()
			if len(cur.sessions) == 0 {
				delete(hubs, h.userID)
			}
			cur.mu.RUnlock()
		}
		hubsMu.Unlock()
	}
}

func (h *hub) each(fn func(*session)) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.sessions {
		fn(s)
	}
}

// PublishInsert pushes a freshly created notification to every live session
// of its owner. Call only after the creating transaction has committed.
func PublishInsert(n Notification) {
	getHub(n.UserID).each(func(s *session) { s.applyInsert(n) })
}

// PublishUpdate pushes a read-state change to the owner's live sessions.
func PublishUpdate(n Notification) {
	getHub(n.UserID).each(func(s *session) { s.applyUpdate(n) })
}

// PublishReadAll tells the owner's live sessions that everything was read.
func PublishReadAll(userID string) {
	getHub(userID).each(func(s *session) { s.applyReadAll() })
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// StreamNotifications - websocket push channel for the authenticated user.
// On connect the session loads its feed window and sends a snapshot; after
// that it only receives pushed events. Protocol is server push: client
// messages are discarded. Disconnecting releases the subscription.
func StreamNotifications(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	items, err := fetchRecent(context.Background(), userID, FeedWindow)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load notifications"})
	}

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	feed := NewFeed(FeedWindow)
	feed.Load(items)

	s := &session{conn: ws, feed: feed}
	h := getHub(userID)
	h.register(s)
	metrics.RealtimeSessions.Inc()

	s.mu.Lock()
	s.send(wsEvent{Type: "snapshot", Data: echo.Map{
		"notifications": feed.Items(),
		"unread_count":  feed.Unread(),
	}})
	s.mu.Unlock()

	// Read loop exists only to notice the disconnect
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			h.unregister(s)
			_ = ws.Close()
			metrics.RealtimeSessions.Dec()
			break
		}
	}
	return nil
}
