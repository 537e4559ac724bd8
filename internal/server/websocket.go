package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zeusync/deltasync/internal/core/observability/log"
)

const writeTimeout = 2 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

type subscriber struct {
	conn *websocket.Conn
	// gorilla connections allow one concurrent writer
	mu sync.Mutex
}

func (s *subscriber) send(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return s.conn.WriteJSON(v)
}

// feed is the set of connected WebSocket subscribers.
type feed struct {
	logger log.Log
	mu     sync.Mutex
	subs   map[*subscriber]struct{}
}

func newFeed(logger log.Log) *feed {
	return &feed{logger: logger, subs: make(map[*subscriber]struct{})}
}

func (f *feed) add(s *subscriber) {
	f.mu.Lock()
	f.subs[s] = struct{}{}
	f.mu.Unlock()
}

func (f *feed) remove(s *subscriber) {
	f.mu.Lock()
	_, ok := f.subs[s]
	delete(f.subs, s)
	f.mu.Unlock()
	if ok {
		_ = s.conn.Close()
	}
}

func (f *feed) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

func (f *feed) snapshot() []*subscriber {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*subscriber, 0, len(f.subs))
	for s := range f.subs {
		out = append(out, s)
	}
	return out
}

func (f *feed) broadcast(v any) {
	for _, s := range f.snapshot() {
		if err := s.send(v); err != nil {
			f.logger.Debug("Subscriber dropped",
				log.String("remote", s.conn.RemoteAddr().String()),
				log.Error(err))
			f.remove(s)
		}
	}
}

func (f *feed) closeAll() {
	for _, s := range f.snapshot() {
		s.mu.Lock()
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutdown"),
			time.Now().Add(writeTimeout))
		s.mu.Unlock()
		f.remove(s)
	}
}

func (m *Monitor) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		m.logger.Debug("WebSocket upgrade failed", log.Error(err))
		return
	}
	sub := &subscriber{conn: conn}
	m.feed.add(sub)
	m.logger.Debug("Subscriber connected", log.String("remote", conn.RemoteAddr().String()))

	if err := sub.send(m.Snapshot()); err != nil {
		m.feed.remove(sub)
		return
	}

	// the feed is read-only; reading only detects the peer going away
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			m.feed.remove(sub)
			return
		}
	}
}
