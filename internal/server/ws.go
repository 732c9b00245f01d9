package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ganbatte-hq/ganbatte/internal/db"
)

const (
	// statusPollInterval is how often the feed re-reads the job row.
	statusPollInterval = 2 * time.Second

	// wsWriteTimeout bounds a single frame write.
	wsWriteTimeout = 10 * time.Second

	// wsPingInterval keeps idle connections alive through proxies.
	wsPingInterval = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local dev
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// handleWatchJob streams job status updates over a WebSocket. The current job
// is pushed immediately, then again on every status change. The feed closes
// itself once the job reaches a terminal status.
func (s *Server) handleWatchJob(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	job, err := s.store.GetJob(r.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "job not found")
			return
		}
		s.logger.Error("get job failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load job")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "job_id", id, "error", err)
		return
	}
	defer conn.Close()

	s.logger.Debug("watch started", "job_id", id)

	// Reader goroutine drains control frames and signals client disconnect.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	send := func(v any) error {
		conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		return conn.WriteJSON(v)
	}

	if err := send(job); err != nil {
		return
	}
	lastStatus := job.Status

	poll := time.NewTicker(statusPollInterval)
	defer poll.Stop()
	ping := time.NewTicker(wsPingInterval)
	defer ping.Stop()

	for {
		if lastStatus.Terminal() {
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "job "+string(lastStatus))
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			_ = conn.WriteMessage(websocket.CloseMessage, msg)
			return
		}

		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-poll.C:
			job, err := s.store.GetJob(r.Context(), id)
			if err != nil {
				s.logger.Warn("watch poll failed", "job_id", id, "error", err)
				continue
			}
			if job.Status == lastStatus {
				continue
			}
			if err := send(job); err != nil {
				return
			}
			lastStatus = job.Status
		}
	}
}
