package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	wsWriteTimeout      = 10 * time.Second
	wsReconnectInterval = 5 * time.Second
)

// WSTransport is a websocket client carrying signaling envelopes as JSON
// text frames. It reconnects with a fixed backoff until closed.
type WSTransport struct {
	url     string
	agentID string
	log     *logrus.Entry

	mu      sync.Mutex
	conn    *websocket.Conn
	handler func(Message)
	done    chan struct{}
	once    sync.Once
}

// NewWSTransport creates a transport for the given signaling endpoint.
// Call OnMessage and then Start.
func NewWSTransport(url, agentID string, log *logrus.Entry) *WSTransport {
	return &WSTransport{
		url:     url,
		agentID: agentID,
		log:     log,
		done:    make(chan struct{}),
	}
}

// OnMessage registers the inbound handler.
func (t *WSTransport) OnMessage(handler func(Message)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handler = handler
}

// Start connects and runs the read loop until Close. The first dial is
// synchronous so a bad endpoint fails fast; reconnects happen in the
// background.
func (t *WSTransport) Start(ctx context.Context) error {
	if err := t.connect(ctx); err != nil {
		return err
	}
	go t.readLoop(ctx)
	return nil
}

func (t *WSTransport) connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, t.url, nil)
	if err != nil {
		return fmt.Errorf("dialing signaling endpoint %s: %w", t.url, err)
	}

	// Identify this agent so the server can route directed messages.
	join := Message{From: t.agentID, Type: "JOIN"}
	if err := conn.WriteJSON(join); err != nil {
		conn.Close()
		return fmt.Errorf("joining as %s: %w", t.agentID, err)
	}

	t.mu.Lock()
	t.conn = conn
	t.mu.Unlock()
	return nil
}

func (t *WSTransport) readLoop(ctx context.Context) {
	for {
		t.mu.Lock()
		conn := t.conn
		handler := t.handler
		t.mu.Unlock()

		if conn != nil {
			for {
				var msg Message
				if err := conn.ReadJSON(&msg); err != nil {
					select {
					case <-t.done:
						return
					default:
					}
					t.log.WithError(err).Warn("signaling connection lost")
					break
				}
				if handler != nil {
					handler(msg)
				}
			}
		}

		select {
		case <-t.done:
			return
		case <-ctx.Done():
			return
		case <-time.After(wsReconnectInterval):
		}
		if err := t.connect(ctx); err != nil {
			t.log.WithError(err).Warn("signaling reconnect failed")
		}
	}
}

func (t *WSTransport) Send(_ context.Context, to, msgType string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshaling %s data: %w", msgType, err)
	}
	msg := Message{From: t.agentID, To: to, Type: msgType, Data: raw}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == nil {
		return fmt.Errorf("signaling transport not connected")
	}
	t.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return t.conn.WriteJSON(msg)
}

func (t *WSTransport) Close() error {
	t.once.Do(func() { close(t.done) })
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn != nil {
		err := t.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		if err != nil {
			t.conn.Close()
			return nil
		}
		return t.conn.Close()
	}
	return nil
}
