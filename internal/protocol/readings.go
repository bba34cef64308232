package protocol

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/smukkama/factory-monitor/internal/database"
)

// ReadingMessage is the envelope for a live sensor reading on Kafka and SSE
type ReadingMessage struct {
	Type        MessageType            `json:"type"`
	MachineID   string                 `json:"machine_id"`
	MachineName string                 `json:"machine_name"`
	PublishedAt time.Time              `json:"published_at"`
	Reading     database.SensorReading `json:"reading"`
}

// MessageType identifies the payload carried by an envelope
type MessageType string

const (
	MsgTypeReading   MessageType = "reading"
	MsgTypeKeepalive MessageType = "keepalive"
)

// NewReadingMessage wraps a reading for publishing
func NewReadingMessage(machineName string, reading database.SensorReading, publishedAt time.Time) *ReadingMessage {
	return &ReadingMessage{
		Type:        MsgTypeReading,
		MachineID:   reading.MachineID,
		MachineName: machineName,
		PublishedAt: publishedAt,
		Reading:     reading,
	}
}

// EncodeReadingMessage encodes a ReadingMessage to JSON
func EncodeReadingMessage(msg *ReadingMessage) ([]byte, error) {
	return json.Marshal(msg)
}

// DecodeReadingMessage decodes JSON to ReadingMessage
func DecodeReadingMessage(data []byte) (*ReadingMessage, error) {
	var msg ReadingMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to decode reading message: %w", err)
	}
	if msg.Type != MsgTypeReading {
		return nil, fmt.Errorf("unexpected message type: %q", msg.Type)
	}
	if msg.MachineID == "" {
		return nil, fmt.Errorf("reading message missing machine_id")
	}
	return &msg, nil
}
