package protocol

import (
	"bytes"
	"testing"
	"time"

	"github.com/smukkama/factory-monitor/internal/database"
)

func TestReadingMessageEncodeDecode(t *testing.T) {
	at := time.Date(2026, 2, 8, 12, 0, 0, 0, time.UTC)
	reading := database.SensorReading{ID: "r1", MachineID: "machine-001", Temperature: 72.5, Status: database.SensorStatusWarning, RecordedAt: at}

	data, err := EncodeReadingMessage(NewReadingMessage("SMT Placer A1", reading, at))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	msg, err := DecodeReadingMessage(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if msg.MachineID != "machine-001" || msg.Reading.Temperature != 72.5 || !msg.Reading.RecordedAt.Equal(at) {
		t.Errorf("Unexpected message: %+v", msg)
	}
}

func TestDecodeReadingMessage_Rejects(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"invalid json", `{`},
		{"wrong type", `{"type":"keepalive","machine_id":"m1"}`},
		{"missing machine", `{"type":"reading"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeReadingMessage([]byte(tt.data)); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func TestWriteEvent(t *testing.T) {
	var buf bytes.Buffer

	err := WriteEvent(&buf, Event{ID: "7", Event: "reading", Data: []byte("{\"a\":1}\n{\"b\":2}")})
	if err != nil {
		t.Fatalf("WriteEvent failed: %v", err)
	}

	want := "id: 7\nevent: reading\ndata: {\"a\":1}\ndata: {\"b\":2}\n\n"
	if buf.String() != want {
		t.Errorf("Expected %q, got %q", want, buf.String())
	}
}

func TestWriteComment(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteComment(&buf, "ping"); err != nil {
		t.Fatalf("WriteComment failed: %v", err)
	}
	if buf.String() != ": ping\n\n" {
		t.Errorf("Unexpected comment frame %q", buf.String())
	}
}
