package handlers

import (
	"encoding/json"
	"errors"
	"testing"

	websocketHub "github.com/backsoul/citizenquiz/pkg/websocket"
)

type stubConn struct {
	err  error
	sent [][]byte
}

func (c *stubConn) WriteMessage(_ int, data []byte) error {
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, data)
	return nil
}

func (c *stubConn) Close() error { return nil }

func TestSendInitialWritesSessionView(t *testing.T) {
	conn := &stubConn{}
	if !sendInitial(conn, "s1", map[string]int{"index": 0}) {
		t.Fatal("sendInitial reported failure")
	}
	if len(conn.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(conn.sent))
	}
	var msg websocketHub.Message
	if err := json.Unmarshal(conn.sent[0], &msg); err != nil {
		t.Fatal(err)
	}
	if msg.Type != EventSession || msg.SessionID != "s1" {
		t.Fatalf("message = %+v", msg)
	}
}

func TestSendInitialReportsDeadConnection(t *testing.T) {
	conn := &stubConn{err: errors.New("broken pipe")}
	if sendInitial(conn, "s1", nil) {
		t.Fatal("sendInitial succeeded on a dead connection")
	}
}
