package httpapi

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const liveWriteTimeout = 5 * time.Second

var liveUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		host := strings.ToLower(strings.TrimSpace(r.Host))
		originHost := strings.ToLower(strings.TrimSpace(u.Host))
		return host == originHost
	},
}

// handleLive upgrades to a WebSocket and pushes the current snapshot
// immediately, then again on every interval until the peer goes away.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	conn, err := liveUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.serveLiveConnection(r.Context(), conn)
}

func (s *Server) serveLiveConnection(ctx context.Context, conn *websocket.Conn) {
	defer conn.Close()

	if err := s.pushSnapshot(ctx, conn); err != nil {
		return
	}

	interval := s.LiveInterval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Reader goroutine exists only to detect the peer closing.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ticker.C:
			if err := s.pushSnapshot(ctx, conn); err != nil {
				return
			}
		case <-done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *Server) pushSnapshot(ctx context.Context, conn *websocket.Conn) error {
	snap, err := s.Prober.Snapshot(ctx, true)
	if err != nil {
		s.Logger.Warn("live_snapshot_error", zap.Error(err))
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(liveWriteTimeout))
	return conn.WriteJSON(snap)
}
