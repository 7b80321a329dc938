// internal/protocol/message.go
package protocol

import (
	"encoding/json"
	"fmt"
)

// Version is the only envelope version this server speaks.
const Version = "V1"

// Message is the envelope for every frame in either direction.
//
// ID is assigned by the sender and increases per connection. Direct
// responses carry ReplyTo set to the ID of the request they answer;
// broadcasts leave it empty.
type Message struct {
	ID        int64           `json:"id"`
	Version   string          `json:"version"`
	Method    Method          `json:"method"`
	ReplyTo   *int64          `json:"replyTo,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// NewMessage wraps payload in an envelope. ID and Timestamp are stamped by
// the connection that sends it.
func NewMessage(method Method, payload interface{}) (Message, error) {
	msg := Message{Version: Version, Method: method}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return Message{}, fmt.Errorf("marshal %s payload: %w", method, err)
		}
		msg.Payload = raw
	}
	return msg, nil
}

// Reply is NewMessage with ReplyTo set.
func Reply(to int64, method Method, payload interface{}) (Message, error) {
	msg, err := NewMessage(method, payload)
	if err != nil {
		return Message{}, err
	}
	msg.ReplyTo = &to
	return msg, nil
}

// DecodePayload unmarshals the raw payload into v.
func (m Message) DecodePayload(v interface{}) error {
	if len(m.Payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(m.Payload, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrBadPayload, m.Method, err)
	}
	return nil
}
