package websocket

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/yigit/photoalbum/internal/app/jobs"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Peers only send control frames
	maxMessageSize = 1024

	// DefaultPollInterval is how often a running job's status is sampled
	DefaultPollInterval = time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Same-origin policy is left to the reverse proxy
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// StatusSource is one observable scan job; *jobs.Job satisfies it.
type StatusSource interface {
	Status() jobs.Status
	Done() <-chan struct{}
}

// watcher streams the status of one job to one connection
type watcher struct {
	conn     *websocket.Conn
	job      StatusSource
	interval time.Duration
	logger   zerolog.Logger

	last []byte
}

// readPump drains the connection so pong and close frames are handled.
// closed is closed on the first read error.
func (w *watcher) readPump(closed chan<- struct{}) {
	defer close(closed)

	w.conn.SetReadLimit(maxMessageSize)
	w.conn.SetReadDeadline(time.Now().Add(pongWait))
	w.conn.SetPongHandler(func(string) error { w.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		if _, _, err := w.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				w.logger.Debug().Err(err).Msg("Unexpected WebSocket close")
			}
			return
		}
	}
}

// writePump sends the status whenever it changes, then the final status and
// a normal close frame once the job finishes.
func (w *watcher) writePump(closed <-chan struct{}) {
	poll := time.NewTicker(w.interval)
	ping := time.NewTicker(pingPeriod)
	defer func() {
		poll.Stop()
		ping.Stop()
	}()

	if err := w.sendStatus(); err != nil {
		return
	}

	for {
		select {
		case <-closed:
			return
		case <-w.job.Done():
			if err := w.sendStatus(); err != nil {
				return
			}
			st := w.job.Status()
			w.conn.SetWriteDeadline(time.Now().Add(writeWait))
			w.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, string(st.State)))
			return
		case <-poll.C:
			if err := w.sendStatus(); err != nil {
				return
			}
		case <-ping.C:
			w.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := w.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// sendStatus writes the current status unless it equals the last one sent.
func (w *watcher) sendStatus() error {
	payload, err := json.Marshal(w.job.Status())
	if err != nil {
		return err
	}
	if bytes.Equal(payload, w.last) {
		return nil
	}
	w.last = payload

	w.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := w.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		w.logger.Debug().Err(err).Msg("WebSocket write failed")
		return err
	}
	return nil
}
