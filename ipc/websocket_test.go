package ipc

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
)

func TestWebSocketTransport(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := httptest.NewServer(WebSocketHandler(func(tr Transport) {
		c := NewConnection(tr, nil)
		c.RegisterHandler(TypeHello, func(env Envelope) (*Envelope, error) {
			var h HelloMessage
			if err := env.Decode(&h); err != nil {
				return nil, err
			}
			resp, err := NewEnvelope(TypeAck, AckMessage{Status: "ok", DecisionIntervalTicks: 22})
			return &resp, err
		})
		c.ReadLoop(ctx)
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	client := WebSocket(conn)
	defer client.Close()

	hello, err := NewEnvelope(TypeHello, HelloMessage{Player: "p1", Faction: "vanguard"})
	if err != nil {
		t.Fatal(err)
	}
	if err := client.WriteEnvelope(hello); err != nil {
		t.Fatalf("WriteEnvelope: %v", err)
	}
	resp, err := client.ReadEnvelope()
	if err != nil {
		t.Fatalf("ReadEnvelope: %v", err)
	}
	var ack AckMessage
	if resp.Type != TypeAck || resp.Decode(&ack) != nil || ack.DecisionIntervalTicks != 22 {
		t.Errorf("response = %s %s", resp.Type, resp.Data)
	}
}
