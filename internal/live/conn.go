package live

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/tommyfonseca7/teams-coms-public/internal/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Serve streams topic to conn until the client goes away, the
// subscription is dropped or ctx is done. conn is closed on return.
func (h *Hub) Serve(ctx context.Context, conn *websocket.Conn, uid, topic string) error {
	sub, err := h.Subscribe(uid, topic)
	if err != nil {
		conn.Close()
		return err
	}
	defer sub.Close()

	readDone := make(chan struct{})
	go readPump(conn, readDone)
	defer func() {
		conn.Close()
		<-readDone
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case frame, ok := <-sub.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return nil
			}
			if err := conn.WriteJSON(frame); err != nil {
				logger.Debug("live: write failed", zap.String("uid", uid), zap.Error(err))
				return nil
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}

		case <-readDone:
			return nil

		case <-ctx.Done():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
			return nil
		}
	}
}

// readPump discards client messages; it only notices the close and keeps
// the pong deadline moving.
func readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
