// Package conn owns the duplex channel to the remote controller: the
// connection state machine, heartbeat, reconnect backoff, the FIFO
// outbound queue, and inbound message classification. Action requests
// found in inbound traffic are validated here and handed to the action
// executor; results are relayed back over the same channel.
package conn

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Epawse/geocommander/internal/action"
	"github.com/Epawse/geocommander/internal/logging"
)

// Status is the connection state visible to the host UI.
type Status string

const (
	StatusDisconnected Status = "disconnected"
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
	StatusError        Status = "error"
)

// Config tunes the connection manager.
type Config struct {
	HeartbeatInterval    time.Duration
	ReconnectBaseDelay   time.Duration
	ReconnectMultiplier  float64
	MaxReconnectAttempts int
	DedupWindow          int
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		HeartbeatInterval:    30 * time.Second,
		ReconnectBaseDelay:   3 * time.Second,
		ReconnectMultiplier:  1.5,
		MaxReconnectAttempts: 5,
		DedupWindow:          128,
	}
}

// ActionExecutor runs one validated action and returns its result.
// *dispatch.Dispatcher satisfies this.
type ActionExecutor interface {
	Execute(ctx context.Context, id string, typ action.Type, params action.Params) action.Result
}

// Manager drives one Transport session.
type Manager struct {
	cfg       Config
	transport Transport
	exec      ActionExecutor

	mu             sync.Mutex
	status         Status
	attempts       int
	manual         bool
	queue          [][]byte
	seen           *seenSet
	heartbeatStop  chan struct{}
	reconnectTimer *time.Timer
	wg             sync.WaitGroup

	onStatus func(Status)
	onChat   func(ChatMessage)
	onRaw    func(msgType string, data []byte)
}

// NewManager creates a manager over the given transport. The executor may
// be nil, in which case inbound actions are answered with an error result.
func NewManager(t Transport, exec ActionExecutor, cfg Config) *Manager {
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = 30 * time.Second
	}
	if cfg.ReconnectBaseDelay <= 0 {
		cfg.ReconnectBaseDelay = 3 * time.Second
	}
	if cfg.ReconnectMultiplier <= 1 {
		cfg.ReconnectMultiplier = 1.5
	}
	if cfg.MaxReconnectAttempts <= 0 {
		cfg.MaxReconnectAttempts = 5
	}
	return &Manager{
		cfg:       cfg,
		transport: t,
		exec:      exec,
		status:    StatusDisconnected,
		seen:      newSeenSet(cfg.DedupWindow),
	}
}

// SetOnStatus installs the connection-status callback.
func (m *Manager) SetOnStatus(fn func(Status)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onStatus = fn
}

// SetOnChat installs the conversation-surface callback.
func (m *Manager) SetOnChat(fn func(ChatMessage)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChat = fn
}

// SetOnRaw installs the diagnostics callback for unclassified inbound
// frames. Never required for correct dispatch behavior.
func (m *Manager) SetOnRaw(fn func(msgType string, data []byte)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onRaw = fn
}

// Status returns the current connection state.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// QueuedMessages reports how many outbound messages are waiting for the
// channel to open.
func (m *Manager) QueuedMessages() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// Connect dials the controller. Resets the reconnect budget so a caller
// can recover a session that gave up.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	m.manual = false
	m.attempts = 0
	m.mu.Unlock()

	m.setStatus(StatusConnecting)
	if err := m.transport.Connect(ctx); err != nil {
		m.setStatus(StatusError)
		return fmt.Errorf("connect: %w", err)
	}
	m.onOpen()
	return nil
}

// Disconnect terminates the session. Suppresses any further automatic
// reconnect attempts and closes the transport with a normal-closure code.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	m.manual = true
	m.attempts = m.cfg.MaxReconnectAttempts
	if m.reconnectTimer != nil {
		m.reconnectTimer.Stop()
		m.reconnectTimer = nil
	}
	m.stopHeartbeatLocked()
	m.mu.Unlock()

	if err := m.transport.Close(); err != nil {
		logging.ConnWarn("close transport: %v", err)
	}
	m.setStatus(StatusDisconnected)
	m.wg.Wait()
	logging.Conn("disconnected")
}

// Send transmits a generic typed message, or queues it in FIFO order when
// the channel is not open.
func (m *Manager) Send(msgType string, payload any) error {
	data, err := json.Marshal(newEnvelope(msgType, payload))
	if err != nil {
		return fmt.Errorf("marshal %s: %w", msgType, err)
	}
	return m.sendRaw(data)
}

// SendUserCommand forwards operator text to the controller's assistant.
func (m *Manager) SendUserCommand(text, mode string, thinking bool) error {
	return m.Send(msgUserCommand, userCommand{Text: text, Mode: mode, Thinking: thinking})
}

func (m *Manager) sendRaw(data []byte) error {
	m.mu.Lock()
	if m.status != StatusConnected {
		m.queue = append(m.queue, data)
		n := len(m.queue)
		m.mu.Unlock()
		logging.ConnDebug("queued outbound message (%d waiting)", n)
		return nil
	}
	m.mu.Unlock()
	return m.transport.WriteMessage(data)
}

// onOpen transitions into connected: reset the attempt counter, start the
// heartbeat and read loop, and drain the outbound queue in order. A dial
// that lands after an explicit Disconnect is abandoned so the session
// stays terminated; the check shares the lock with Disconnect's manual
// flag, so no session goroutines start once the flag is set.
func (m *Manager) onOpen() {
	m.mu.Lock()
	if m.manual {
		m.mu.Unlock()
		if err := m.transport.Close(); err != nil {
			logging.ConnWarn("close transport: %v", err)
		}
		m.setStatus(StatusDisconnected)
		logging.Conn("abandoning dial that completed after disconnect")
		return
	}
	m.attempts = 0
	m.status = StatusConnected
	queued := m.queue
	m.queue = nil
	stop := make(chan struct{})
	m.stopHeartbeatLocked()
	m.heartbeatStop = stop
	cb := m.onStatus
	m.wg.Add(2)
	m.mu.Unlock()

	if cb != nil {
		cb(StatusConnected)
	}
	logging.Conn("connected, flushing %d queued messages", len(queued))

	for _, data := range queued {
		if err := m.transport.WriteMessage(data); err != nil {
			logging.ConnWarn("flush queued message: %v", err)
		}
	}

	go m.heartbeatLoop(stop)
	go m.readLoop()
}

func (m *Manager) readLoop() {
	defer m.wg.Done()
	for {
		data, err := m.transport.ReadMessage()
		if err != nil {
			m.onClosed(err)
			return
		}
		m.handleMessage(data)
	}
}

func (m *Manager) heartbeatLoop(stop chan struct{}) {
	defer m.wg.Done()
	ticker := time.NewTicker(m.cfg.HeartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			data, _ := json.Marshal(envelope{Type: msgPing})
			if err := m.transport.WriteMessage(data); err != nil {
				logging.ConnDebug("heartbeat write failed: %v", err)
			}
		}
	}
}

// onClosed handles a transport loss: stop the heartbeat, drop to
// disconnected, and schedule a reconnect unless the session was ended
// explicitly or the attempt budget is spent.
func (m *Manager) onClosed(cause error) {
	m.mu.Lock()
	m.stopHeartbeatLocked()
	manual := m.manual
	m.mu.Unlock()

	m.setStatus(StatusDisconnected)
	if manual {
		return
	}
	logging.ConnWarn("transport closed: %v", cause)
	m.scheduleReconnect()
}

func (m *Manager) scheduleReconnect() {
	m.mu.Lock()
	if m.manual || m.attempts >= m.cfg.MaxReconnectAttempts {
		m.mu.Unlock()
		logging.Conn("reconnect budget exhausted, giving up")
		return
	}
	m.attempts++
	attempt := m.attempts
	delay := time.Duration(float64(m.cfg.ReconnectBaseDelay) *
		math.Pow(m.cfg.ReconnectMultiplier, float64(attempt-1)))
	if m.reconnectTimer != nil {
		m.reconnectTimer.Stop()
	}
	m.reconnectTimer = time.AfterFunc(delay, m.tryReconnect)
	m.mu.Unlock()

	logging.Conn("reconnect %d/%d in %s", attempt, m.cfg.MaxReconnectAttempts, delay)
}

func (m *Manager) tryReconnect() {
	m.mu.Lock()
	if m.manual {
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()

	m.setStatus(StatusConnecting)
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := m.transport.Connect(ctx); err != nil {
		logging.ConnWarn("reconnect failed: %v", err)
		m.setStatus(StatusDisconnected)
		m.scheduleReconnect()
		return
	}
	m.onOpen()
}

// handleMessage classifies one inbound frame. Parse failures are logged
// and never crash the manager or produce a reply.
func (m *Manager) handleMessage(data []byte) {
	var msg inboundMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		logging.ConnWarn("malformed inbound message: %v", err)
		return
	}

	switch msg.Type {
	case msgPong:
		logging.ConnDebug("heartbeat reply")

	case msgChatResponse:
		m.mu.Lock()
		chatCb := m.onChat
		m.mu.Unlock()
		if chatCb != nil {
			chatCb(ChatMessage{
				Message:  msg.Message,
				Thinking: msg.Thinking,
				LLMRaw:   msg.LLMRaw,
				HasTool:  msg.ToolCall != nil,
			})
		}
		if msg.ToolCall != nil {
			m.runAction(msg.ToolCall.ID, msg.ToolCall.Action, msg.ToolCall.Arguments)
		}

	case msgAction:
		var la legacyAction
		if err := json.Unmarshal(msg.Payload, &la); err != nil {
			logging.ConnWarn("malformed action payload: %v", err)
			return
		}
		m.runAction(msg.ID, la.Action, la.Arguments)

	default:
		logging.ConnDebug("passthrough message type %q", msg.Type)
		m.mu.Lock()
		rawCb := m.onRaw
		m.mu.Unlock()
		if rawCb != nil {
			rawCb(msg.Type, data)
		}
	}
}

// runAction validates and executes one inbound action exactly once,
// regardless of which wire shape carried it, and relays the result.
func (m *Manager) runAction(id, name string, args json.RawMessage) {
	if id == "" {
		// No correlation id from the controller; generate one so the
		// result still correlates. Generated ids are never repeats.
		id = uuid.NewString()
	}

	m.mu.Lock()
	dup := m.seen.SeenOrAdd(id)
	m.mu.Unlock()
	if dup {
		logging.ConnDebug("dropping duplicate action %s (%s)", id, name)
		return
	}

	typ := action.Type(name)
	var result action.Result
	params, err := action.Decode(typ, args)
	switch {
	case err != nil && isUnknownActionType(err):
		result = action.Fail(id, fmt.Sprintf("Unknown action type: %s", typ))
	case err != nil:
		result = action.Fail(id, err.Error())
	case m.exec == nil:
		result = action.Fail(id, "no action executor attached")
	default:
		result = m.exec.Execute(context.Background(), id, typ, params)
	}

	m.sendResponse(result)
}

func (m *Manager) sendResponse(res action.Result) {
	data, err := json.Marshal(actionResponse{
		Type:    msgResponse,
		ID:      res.ID,
		Success: res.Success,
		Result:  res.Result,
		Error:   res.Error,
	})
	if err != nil {
		logging.ConnWarn("marshal response %s: %v", res.ID, err)
		return
	}
	if err := m.sendRaw(data); err != nil {
		logging.ConnWarn("send response %s: %v", res.ID, err)
	}
}

func (m *Manager) setStatus(s Status) {
	m.mu.Lock()
	if m.status == s {
		m.mu.Unlock()
		return
	}
	m.status = s
	cb := m.onStatus
	m.mu.Unlock()
	if cb != nil {
		cb(s)
	}
	logging.Conn("status: %s", s)
}

func (m *Manager) stopHeartbeatLocked() {
	if m.heartbeatStop != nil {
		close(m.heartbeatStop)
		m.heartbeatStop = nil
	}
}
