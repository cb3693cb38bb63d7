// ABOUTME: Websocket scan stream: every incoming frame is one payload.
// ABOUTME: Results are written back in arrival order by a single writer.

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/2389/qreader/internal/auth"
	apierrors "github.com/2389/qreader/internal/errors"
	"github.com/2389/qreader/internal/logger"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	sendBuffer = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true // Allow requests with no origin (like direct WebSocket clients)
		}
		for _, allowed := range []string{"localhost", "127.0.0.1", "::1"} {
			if strings.Contains(origin, allowed) {
				return true
			}
		}
		return false
	},
}

// streamMessage answers one frame.
type streamMessage struct {
	Seq    int                      `json:"seq"`
	OK     bool                     `json:"ok"`
	Result *decodeResponse          `json:"result,omitempty"`
	Error  *apierrors.ErrorResponse `json:"error,omitempty"`
}

type streamClient struct {
	conn      *websocket.Conn
	send      chan []byte
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
	closeConn sync.Once
}

func (s *Server) scanStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	client := &streamClient{
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		ctx:    ctx,
		cancel: cancel,
	}

	device := auth.DeviceFromContext(r.Context())
	save := r.URL.Query().Get("save") != "false"

	go client.writePump()
	s.readPump(client, device, save)
}

// readPump decodes frames one at a time, so replies keep frame order.
func (s *Server) readPump(client *streamClient, device string, save bool) {
	defer func() {
		client.closeOnce.Do(func() {
			close(client.send)
		})
	}()

	client.conn.SetReadLimit(s.maxPayload)
	if err := client.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		logger.Warn("failed to set read deadline", "error", err)
		return
	}
	client.conn.SetPongHandler(func(string) error {
		return client.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for seq := 1; ; seq++ {
		_, payload, err := client.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("websocket read failed", "error", err)
			}
			return
		}
		if err := client.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			return
		}

		msg := streamMessage{Seq: seq}
		resp, err := s.process(client.ctx, device, payload, save)
		if nd, ok := err.(*errNotDecoded); ok {
			msg.Error = &apierrors.ErrorResponse{
				Code:    apierrors.ErrNotDecoded,
				Message: nd.Error(),
				Status:  http.StatusUnprocessableEntity,
				Details: nd.fallback,
			}
		} else if err != nil {
			msg.Error = &apierrors.ErrorResponse{
				Code:    apierrors.ErrDatabaseError,
				Message: "failed to record scan",
				Status:  http.StatusInternalServerError,
				Details: err.Error(),
			}
		} else {
			msg.OK = true
			msg.Result = resp
		}

		if !client.sendMessage(msg) {
			return
		}
	}
}

// writePump owns every write to the connection.
func (client *streamClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.cancel()
		client.closeConn.Do(func() {
			client.conn.Close()
		})
	}()

	for {
		select {
		case message, ok := <-client.send:
			if err := client.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if !ok {
				// Reader finished, send close message
				client.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := client.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Warn("websocket write failed", "error", err)
				return
			}

		case <-ticker.C:
			if err := client.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// sendMessage queues msg, blocking while the buffer is full. It reports false
// once the writer has stopped.
func (client *streamClient) sendMessage(msg streamMessage) bool {
	data, err := json.Marshal(msg)
	if err != nil {
		logger.Error("failed to marshal stream message", "error", err)
		return true
	}

	select {
	case client.send <- data:
		return true
	case <-client.ctx.Done():
		return false
	}
}
