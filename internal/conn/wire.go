package conn

import (
	"encoding/json"
	"time"
)

// Message type tags on the wire.
const (
	msgPing         = "ping"
	msgPong         = "pong"
	msgChatResponse = "chat_response"
	msgAction       = "action"
	msgResponse     = "response"
	msgUserCommand  = "user_command"
)

// envelope is the outbound generic message shape.
type envelope struct {
	Type      string `json:"type"`
	Payload   any    `json:"payload,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

func newEnvelope(typ string, payload any) envelope {
	return envelope{Type: typ, Payload: payload, Timestamp: time.Now().Format(time.RFC3339)}
}

// inboundMessage is the superset probe for classifying inbound frames.
// Only the fields matching the Type tag are meaningful.
type inboundMessage struct {
	Type string `json:"type"`
	ID   string `json:"id,omitempty"`

	// chat_response fields.
	Message  string    `json:"message,omitempty"`
	ToolCall *toolCall `json:"tool_call,omitempty"`
	Thinking string    `json:"thinking,omitempty"`
	LLMRaw   string    `json:"llm_raw,omitempty"`

	// legacy action and generic payloads.
	Payload json.RawMessage `json:"payload,omitempty"`

	// system messages.
	Content   string `json:"content,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// toolCall is an action embedded in a chat_response.
type toolCall struct {
	ID        string          `json:"id,omitempty"`
	Action    string          `json:"action"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// legacyAction is the payload of a legacy {type:"action"} frame.
type legacyAction struct {
	Action    string          `json:"action"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// actionResponse is the outbound action result shape.
type actionResponse struct {
	Type    string `json:"type"`
	ID      string `json:"id"`
	Success bool   `json:"success"`
	Result  any    `json:"result,omitempty"`
	Error   string `json:"error,omitempty"`
}

// userCommand is the outbound operator-text shape consumed by the
// controller's chat assistant.
type userCommand struct {
	Text     string `json:"text"`
	Mode     string `json:"mode,omitempty"`
	Thinking bool   `json:"thinking,omitempty"`
}

// ChatMessage is the conversation-surface view of a chat_response,
// delivered to the host UI through the chat callback.
type ChatMessage struct {
	Message  string
	Thinking string
	LLMRaw   string
	HasTool  bool
}
