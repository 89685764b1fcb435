// Package schema defines the wire types of the dataset stream protocol.
package schema

import (
	"fmt"
	"time"

	json "github.com/goccy/go-json"
)

// MessageType discriminates inbound stream messages.
type MessageType string

const (
	// MessageProgress reports intermediate progress of a dataset pull.
	MessageProgress MessageType = "progress"
	// MessageFinal marks the last message of a streaming exchange.
	MessageFinal MessageType = "final"
)

// DatasetRequest opens a pull for one or more named datasets. From and To
// bound an incremental slice; both are empty for a full pull.
type DatasetRequest struct {
	Names []string `json:"names"`
	From  string   `json:"from_dt,omitempty"`
	To    string   `json:"to_dt,omitempty"`
}

// NewRequest builds a full-pull request for the given dataset names.
func NewRequest(names []string) DatasetRequest {
	return DatasetRequest{Names: names, From: "", To: ""}
}

// NewSliceRequest builds an incremental request for one dataset bounded by
// the [from, to) window. Timestamps are encoded as ISO-8601 UTC.
func NewSliceRequest(name string, from, to time.Time) DatasetRequest {
	return DatasetRequest{
		Names: []string{name},
		From:  from.UTC().Format(time.RFC3339),
		To:    to.UTC().Format(time.RFC3339),
	}
}

// Encode serialises the request for the wire.
func (r DatasetRequest) Encode() ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode dataset request: %w", err)
	}
	return data, nil
}

// StreamMessage is one inbound message of a streaming exchange. Raw holds
// the full frame as received so sinks can relay it untouched; the typed
// fields cover only the protocol-relevant parts.
type StreamMessage struct {
	Type           MessageType `json:"type"`
	ContentPointer string      `json:"content_pointer,omitempty"`

	Raw json.RawMessage `json:"-"`
}

// DecodeMessage parses an inbound frame into a StreamMessage.
func DecodeMessage(frame []byte) (*StreamMessage, error) {
	var msg StreamMessage
	if err := json.Unmarshal(frame, &msg); err != nil {
		return nil, fmt.Errorf("decode stream message: %w", err)
	}
	msg.Raw = append(json.RawMessage(nil), frame...)
	return &msg, nil
}

// Terminal reports whether this message ends the exchange.
func (m *StreamMessage) Terminal() bool {
	return m != nil && m.Type == MessageFinal
}

// DecodePayload unmarshals the full frame into the provided destination,
// for sinks that want structured access to the free-form body.
func (m *StreamMessage) DecodePayload(dest any) error {
	if m == nil || len(m.Raw) == 0 {
		return fmt.Errorf("stream message payload empty")
	}
	if dest == nil {
		return fmt.Errorf("stream message payload destination nil")
	}
	if err := json.Unmarshal(m.Raw, dest); err != nil {
		return fmt.Errorf("stream message payload decode: %w", err)
	}
	return nil
}
