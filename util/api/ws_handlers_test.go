package api

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// Concurrent publishes to the same room must serialize per connection; every
// frame has to arrive intact.
func TestConcurrentRoomPublish(t *testing.T) {
	ts := setupTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("WebSocket dial failed: %v", err)
	}
	defer conn.Close()

	const room = "concurrent-publish-room"
	if err := conn.WriteJSON(WSMessage{Type: "join_chat", Data: map[string]string{"event_id": room}}); err != nil {
		t.Fatalf("Failed to send join_chat: %v", err)
	}
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var ack WSMessage
	if err := conn.ReadJSON(&ack); err != nil {
		t.Fatalf("Failed to read join ack: %v", err)
	}

	const publishers = 50
	var wg sync.WaitGroup
	wg.Add(publishers)
	for i := 0; i < publishers; i++ {
		go func(n int) {
			defer wg.Done()
			PublishToRoom(room, "chat_"+room, map[string]interface{}{"n": n})
		}(i)
	}
	wg.Wait()

	received := 0
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for received < publishers {
		var msg WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("Frame %d unreadable after concurrent publish: %v", received, err)
		}
		if msg.Type != "chat_"+room {
			t.Fatalf("unexpected frame type %q", msg.Type)
		}
		if _, ok := msg.Data.(map[string]interface{}); !ok {
			t.Fatalf("frame %d payload corrupted: %+v", received, msg.Data)
		}
		received++
	}
}
