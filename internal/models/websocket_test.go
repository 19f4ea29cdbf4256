package models

import (
	"encoding/json"
	"testing"
	"time"
)

func waitForConnection(t *testing.T, h *Hub, roomID, userID string) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if h.IsUserConnected(roomID, userID) {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("user %s never registered in room %s", userID, roomID)
}

func TestHubBroadcastToRoom(t *testing.T) {
	h := NewHub()
	go h.Run()

	inRoom := &Client{Hub: h, Send: make(chan []byte, 1), UserID: "1", RoomID: "10"}
	alsoInRoom := &Client{Hub: h, Send: make(chan []byte, 1), UserID: "2", RoomID: "10"}
	elsewhere := &Client{Hub: h, Send: make(chan []byte, 1), UserID: "3", RoomID: "11"}

	h.Register <- inRoom
	h.Register <- alsoInRoom
	h.Register <- elsewhere
	waitForConnection(t, h, "10", "1")
	waitForConnection(t, h, "10", "2")
	waitForConnection(t, h, "11", "3")

	h.BroadcastToRoom("10", Event{Type: EventScoreRecorded, RoomID: "10"})

	for _, c := range []*Client{inRoom, alsoInRoom} {
		select {
		case payload := <-c.Send:
			var event Event
			if err := json.Unmarshal(payload, &event); err != nil {
				t.Fatalf("broadcast payload not valid JSON: %v", err)
			}
			if event.Type != EventScoreRecorded || event.RoomID != "10" {
				t.Errorf("unexpected event: %+v", event)
			}
		case <-time.After(time.Second):
			t.Fatalf("client %s received nothing", c.UserID)
		}
	}

	select {
	case <-elsewhere.Send:
		t.Fatal("client outside the room received the broadcast")
	default:
	}
}

func TestHubUnregister(t *testing.T) {
	h := NewHub()
	go h.Run()

	client := &Client{Hub: h, Send: make(chan []byte, 1), UserID: "1", RoomID: "10"}
	h.Register <- client
	waitForConnection(t, h, "10", "1")

	h.Unregister <- client
	deadline := time.Now().Add(time.Second)
	for h.IsUserConnected("10", "1") {
		if time.Now().After(deadline) {
			t.Fatal("client still registered after unregister")
		}
		time.Sleep(time.Millisecond)
	}

	// The room entry is dropped once its last connection leaves.
	h.mu.RLock()
	_, exists := h.Rooms["10"]
	h.mu.RUnlock()
	if exists {
		t.Error("empty room kept in the registry")
	}
}
