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

func TestNew_Validation(t *testing.T) {
	handler := func([]byte) {}
	cases := []struct {
		name string
		cfg  Config
		h    func([]byte)
	}{
		{"missing url", Config{Symbols: []string{"HPG"}}, handler},
		{"no symbols", Config{URL: "ws://x"}, handler},
		{"nil handler", Config{URL: "ws://x", Symbols: []string{"HPG"}}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(tc.cfg, tc.h, nil, nil); err == nil {
				t.Fatalf("expected config error")
			}
		})
	}
}

func TestClient_SubscribesAndDeliversFrames(t *testing.T) {
	upgrader := websocket.Upgrader{}
	type subMsg struct {
		Type   string   `json:"type"`
		Topics []string `json:"topics"`
	}
	subCh := make(chan subMsg, 1)
	authCh := make(chan string, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authCh <- r.Header.Get("Authorization")
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		var sub subMsg
		if err := conn.ReadJSON(&sub); err != nil {
			t.Errorf("read subscribe: %v", err)
			return
		}
		subCh <- sub

		conn.WriteMessage(websocket.TextMessage, []byte(`{"symbol":"HPG","matchPrice":27.5}`))
		conn.WriteMessage(websocket.TextMessage, []byte(`{"symbol":"SSI","matchPrice":30.1}`))
		// Hold the connection open until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	frames := make(chan []byte, 4)
	cfg := Config{
		URL:     "ws" + strings.TrimPrefix(srv.URL, "http"),
		Token:   "sekret",
		Symbols: []string{"HPG", "SSI"},
		Indexes: []string{"VNINDEX"},
	}
	c, err := New(cfg, func(raw []byte) { frames <- raw }, nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx)

	if got := <-authCh; got != "Bearer sekret" {
		t.Fatalf("auth header = %q", got)
	}

	select {
	case sub := <-subCh:
		if sub.Type != "subscribe" {
			t.Fatalf("subscribe type = %q", sub.Type)
		}
		want := []string{
			"quotes/stockinfo/symbol/HPG",
			"quotes/stockinfo/symbol/SSI",
			"quotes/index/VNINDEX",
		}
		if len(sub.Topics) != len(want) {
			t.Fatalf("topics = %v, want %v", sub.Topics, want)
		}
		for i := range want {
			if sub.Topics[i] != want[i] {
				t.Fatalf("topics = %v, want %v", sub.Topics, want)
			}
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no subscribe message received")
	}

	for i := 0; i < 2; i++ {
		select {
		case raw := <-frames:
			if !json.Valid(raw) {
				t.Fatalf("frame %d is not JSON: %q", i, raw)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("frame %d not delivered", i)
		}
	}
}
