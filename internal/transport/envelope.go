package transport

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Envelope is the message frame the shipped modules speak over a Conn:
// a type tag plus an opaque JSON payload. WebSocket framing already bounds
// each message, so no length prefix is needed.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

var ErrEmptyType = errors.New("envelope type missing")

// DecodeEnvelope parses one wire message.
func DecodeEnvelope(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Type == "" {
		return nil, ErrEmptyType
	}
	return &env, nil
}

// EncodeEnvelope renders one wire message.
func EncodeEnvelope(env *Envelope) ([]byte, error) {
	if env.Type == "" {
		return nil, ErrEmptyType
	}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}
	return data, nil
}
