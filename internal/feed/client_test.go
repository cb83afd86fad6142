package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func TestClient_SubscribeReceivesRoomMessages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		// Read join request
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var req roomRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			t.Errorf("unmarshal join: %v", err)
			return
		}
		if req.Type != "join" {
			t.Errorf("expected join, got %s", req.Type)
		}
		if req.Room != "transaction:mint123" {
			t.Errorf("unexpected room %s", req.Room)
		}

		// Noise before the real payload: ack and foreign-room message
		conn.WriteJSON(map[string]string{"type": "joined", "room": req.Room})
		conn.WriteJSON(roomEnvelope{Type: "message", Room: "transaction:other", Data: json.RawMessage(`{}`)})

		conn.WriteJSON(roomEnvelope{
			Type: "message",
			Room: req.Room,
			Data: json.RawMessage(`{"type":"buy","wallet":"w","volume":500}`),
		})

		// Keep connection open
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	client, err := NewClient(context.Background(), wsURL, nil, nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer client.Close()

	events, err := client.SubscribeTokenTrades(context.Background(), "mint123")
	if err != nil {
		t.Fatalf("SubscribeTokenTrades: %v", err)
	}

	select {
	case raw := <-events:
		ev, rej := ParseTrade(raw)
		if rej != nil {
			t.Fatalf("payload rejected: %s", rej)
		}
		if ev.Buyer != "w" || ev.USDVolume != 500 {
			t.Errorf("event = %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for trade payload")
	}
}

func TestClient_DoubleSubscribeRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	client, err := NewClient(context.Background(), wsURL, nil, nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer client.Close()

	if _, err := client.SubscribeTokenTrades(context.Background(), "mint1"); err != nil {
		t.Fatalf("first subscribe failed: %v", err)
	}
	if _, err := client.SubscribeTokenTrades(context.Background(), "mint1"); err == nil {
		t.Error("second subscribe to same mint succeeded")
	}
}

func TestClient_CloseClosesChannels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	client, err := NewClient(context.Background(), wsURL, nil, nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	events, err := client.SubscribeTokenTrades(context.Background(), "mint1")
	if err != nil {
		t.Fatalf("SubscribeTokenTrades: %v", err)
	}

	if err := client.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	select {
	case _, open := <-events:
		if open {
			t.Error("channel delivered after close")
		}
	case <-time.After(time.Second):
		t.Error("channel not closed")
	}

	// Closed client rejects new subscriptions
	if _, err := client.SubscribeTokenTrades(context.Background(), "mint2"); err == nil {
		t.Error("subscribe succeeded on closed client")
	}
}

func TestTradeRoom(t *testing.T) {
	if got := TradeRoom("abc"); got != "transaction:abc" {
		t.Errorf("TradeRoom = %s", got)
	}
}
