package api

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// maxLiveConns bounds concurrent websocket subscribers.
const maxLiveConns = 8

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// liveHub fans committed snapshots out to websocket subscribers. Slow
// subscribers drop frames instead of stalling the tick loop.
type liveHub struct {
	mu   sync.Mutex
	subs map[*websocket.Conn]chan Snapshot
}

func (h *liveHub) add(conn *websocket.Conn) (chan Snapshot, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs == nil {
		h.subs = make(map[*websocket.Conn]chan Snapshot)
	}
	if len(h.subs) >= maxLiveConns {
		return nil, false
	}
	ch := make(chan Snapshot, 1)
	h.subs[conn] = ch
	return ch, true
}

func (h *liveHub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.subs[conn]; ok {
		close(ch)
		delete(h.subs, conn)
	}
}

func (h *liveHub) broadcast(snap Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- snap:
		default:
			// Subscriber still busy with the previous frame; skip this one.
		}
	}
}

// handleLive upgrades the connection and streams one JSON snapshot per
// committed tick until the client goes away.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Debug("websocket upgrade failed", "error", err)
		return
	}

	ch, ok := s.live.add(conn)
	if !ok {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "too many subscribers"),
			time.Now().Add(time.Second))
		conn.Close()
		return
	}
	slog.Info("live subscriber connected", "remote", conn.RemoteAddr())

	// Drain (and discard) reads so close frames are processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				s.live.remove(conn)
				conn.Close()
				return
			}
		}
	}()

	// Send the latest snapshot immediately, then one per commit.
	if err := conn.WriteJSON(s.current()); err != nil {
		s.live.remove(conn)
		conn.Close()
		return
	}
	for snap := range ch {
		if err := conn.WriteJSON(snap); err != nil {
			slog.Debug("live write failed", "error", err)
			s.live.remove(conn)
			conn.Close()
			return
		}
	}
}
