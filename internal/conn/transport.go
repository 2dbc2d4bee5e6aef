package conn

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Transport is one duplex text-message channel to the controller. Connect
// may be called again after the channel fails; ReadMessage blocks until a
// frame arrives or the channel dies.
type Transport interface {
	Connect(ctx context.Context) error
	ReadMessage() ([]byte, error)
	WriteMessage(data []byte) error
	Close() error
	IsConnected() bool
}

// wsTransport is the gorilla/websocket Transport implementation.
type wsTransport struct {
	url string

	mu   sync.Mutex
	conn *websocket.Conn
}

// NewWebSocketTransport returns a Transport dialing the given ws:// or
// wss:// URL.
func NewWebSocketTransport(url string) (Transport, error) {
	if !strings.HasPrefix(url, "ws://") && !strings.HasPrefix(url, "wss://") {
		return nil, fmt.Errorf("invalid websocket url: %s", url)
	}
	return &wsTransport{url: url}, nil
}

func (t *wsTransport) Connect(ctx context.Context) error {
	dialer := *websocket.DefaultDialer
	dialer.HandshakeTimeout = 10 * time.Second
	conn, _, err := dialer.DialContext(ctx, t.url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", t.url, err)
	}

	t.mu.Lock()
	if t.conn != nil {
		t.conn.Close()
	}
	t.conn = conn
	t.mu.Unlock()
	return nil
}

func (t *wsTransport) ReadMessage() ([]byte, error) {
	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()
	if conn == nil {
		return nil, fmt.Errorf("transport not connected")
	}
	_, data, err := conn.ReadMessage()
	return data, err
}

func (t *wsTransport) WriteMessage(data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == nil {
		return fmt.Errorf("transport not connected")
	}
	return t.conn.WriteMessage(websocket.TextMessage, data)
}

// Close sends a normal-closure frame and tears the channel down.
func (t *wsTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == nil {
		return nil
	}
	deadline := time.Now().Add(time.Second)
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = t.conn.WriteControl(websocket.CloseMessage, msg, deadline)
	err := t.conn.Close()
	t.conn = nil
	return err
}

func (t *wsTransport) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn != nil
}
