package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"meetspot-backend/models"

	"github.com/gorilla/websocket"
)

func TestChatAccessControl(t *testing.T) {
	ts := setupTestServer(t)
	creatorClient := newClient(t)
	memberClient := newClient(t)
	outsiderClient := newClient(t)
	registerUser(t, ts, creatorClient, "alice@example.com", "Alice")
	registerUser(t, ts, memberClient, "bob@example.com", "Bob")
	registerUser(t, ts, outsiderClient, "dave@example.com", "Dave")
	eventID := createEventViaAPI(t, ts, creatorClient, "Quiz Night")
	chatURL := ts.URL + "/events/" + eventID + "/chat"

	resp := doJSON(t, memberClient, http.MethodPost, ts.URL+"/events/"+eventID+"/join", "")
	resp.Body.Close()

	t.Run("outsider cannot read or post", func(t *testing.T) {
		resp := doJSON(t, outsiderClient, http.MethodGet, chatURL, "")
		resp.Body.Close()
		if resp.StatusCode != http.StatusForbidden {
			t.Errorf("outsider chat read status = %d; want 403", resp.StatusCode)
		}
		resp = doJSON(t, outsiderClient, http.MethodPost, chatURL, `{"message":"hi"}`)
		resp.Body.Close()
		if resp.StatusCode != http.StatusForbidden {
			t.Errorf("outsider chat post status = %d; want 403", resp.StatusCode)
		}
	})

	t.Run("empty message rejected", func(t *testing.T) {
		resp := doJSON(t, memberClient, http.MethodPost, chatURL, `{"message":"  "}`)
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("empty message status = %d; want 400", resp.StatusCode)
		}
	})

	t.Run("member posts and history keeps order", func(t *testing.T) {
		for _, body := range []string{"first", "second", "third"} {
			resp := doJSON(t, memberClient, http.MethodPost, chatURL, `{"message":"`+body+`"}`)
			if resp.StatusCode != http.StatusCreated {
				raw, _ := io.ReadAll(resp.Body)
				resp.Body.Close()
				t.Fatalf("post %q status = %d; want 201. Body: %s", body, resp.StatusCode, raw)
			}
			resp.Body.Close()
		}

		resp := doJSON(t, creatorClient, http.MethodGet, chatURL, "")
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("chat read status = %d; want 200", resp.StatusCode)
		}
		var messages []models.MessageView
		if err := json.NewDecoder(resp.Body).Decode(&messages); err != nil {
			t.Fatalf("Failed to decode messages: %v", err)
		}
		if len(messages) != 3 {
			t.Fatalf("chat history has %d messages; want 3", len(messages))
		}
		want := []string{"first", "second", "third"}
		for i := range want {
			if messages[i].Message != want[i] {
				t.Errorf("messages[%d] = %q; want %q", i, messages[i].Message, want[i])
			}
		}
	})

	t.Run("creator posts without joining", func(t *testing.T) {
		resp := doJSON(t, creatorClient, http.MethodPost, chatURL, `{"message":"welcome"}`)
		resp.Body.Close()
		if resp.StatusCode != http.StatusCreated {
			t.Errorf("creator post status = %d; want 201", resp.StatusCode)
		}
	})
}

// A posted message reaches connections subscribed to the event's room at the
// time of the post.
func TestChatRoomBroadcast(t *testing.T) {
	ts := setupTestServer(t)
	creatorClient := newClient(t)
	registerUser(t, ts, creatorClient, "alice@example.com", "Alice")
	eventID := createEventViaAPI(t, ts, creatorClient, "Live Session")

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("WebSocket dial failed: %v", err)
	}
	defer conn.Close()

	join := WSMessage{Type: "join_chat", Data: map[string]string{"event_id": eventID}}
	if err := conn.WriteJSON(join); err != nil {
		t.Fatalf("Failed to send join_chat: %v", err)
	}

	// The join itself is acknowledged to the room first.
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var ack WSMessage
	if err := conn.ReadJSON(&ack); err != nil {
		t.Fatalf("Failed to read join ack: %v", err)
	}
	if ack.Type != "chat_joined" {
		t.Fatalf("first frame type = %q; want chat_joined", ack.Type)
	}

	resp := doJSON(t, creatorClient, http.MethodPost, ts.URL+"/events/"+eventID+"/chat", `{"message":"hello room"}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("chat post status = %d; want 201", resp.StatusCode)
	}

	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		var msg WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("Did not receive chat broadcast: %v", err)
		}
		if msg.Type != "chat_"+eventID {
			continue
		}
		payload, ok := msg.Data.(map[string]interface{})
		if !ok {
			t.Fatalf("broadcast payload has unexpected shape: %+v", msg.Data)
		}
		if payload["message"] != "hello room" || payload["name"] != "Alice" {
			t.Errorf("broadcast payload = %+v; want message 'hello room' from Alice", payload)
		}
		return
	}
}

// Leaving the room stops delivery; messages published while unsubscribed are
// never replayed.
func TestChatRoomLeave(t *testing.T) {
	ts := setupTestServer(t)
	creatorClient := newClient(t)
	registerUser(t, ts, creatorClient, "alice@example.com", "Alice")
	eventID := createEventViaAPI(t, ts, creatorClient, "Quiet Session")

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("WebSocket dial failed: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(WSMessage{Type: "join_chat", Data: map[string]string{"event_id": eventID}}); err != nil {
		t.Fatalf("Failed to send join_chat: %v", err)
	}
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var ack WSMessage
	if err := conn.ReadJSON(&ack); err != nil {
		t.Fatalf("Failed to read join ack: %v", err)
	}

	if err := conn.WriteJSON(WSMessage{Type: "leave_chat", Data: map[string]string{"event_id": eventID}}); err != nil {
		t.Fatalf("Failed to send leave_chat: %v", err)
	}

	resp := doJSON(t, creatorClient, http.MethodPost, ts.URL+"/events/"+eventID+"/chat", `{"message":"missed"}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("chat post status = %d; want 201", resp.StatusCode)
	}

	conn.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
	for {
		var msg WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			// Deadline hit without a chat frame: nothing was delivered.
			return
		}
		if msg.Type == "chat_"+eventID {
			t.Fatalf("received chat broadcast after leaving the room: %+v", msg)
		}
	}
}
