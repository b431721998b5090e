package live

import (
	"testing"
	"time"
)

func TestHubRegisterPushUnregister(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	// create fake client
	client := &Client{
		Send:   make(chan []byte, 10),
		UserID: "user1",
	}

	hub.register <- client

	data := []byte(`{"message":"order placed"}`)
	hub.Push("user1", data)

	select {
	case got := <-client.Send:
		if string(got) != string(data) {
			t.Fatalf("expected %s, got %s", data, got)
		}
	case <-time.After(1 * time.Second):
		t.Fatal("timeout waiting for message")
	}

	hub.unregister <- client
}

func TestHubPushToUnknownUserDoesNotBlock(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	done := make(chan struct{})
	go func() {
		hub.Push("nobody", []byte("x"))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("Push blocked with no subscribers")
	}
}
