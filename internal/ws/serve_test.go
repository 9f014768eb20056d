package ws

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type fakeVerifier struct {
	idents map[string]Identity
}

func (f fakeVerifier) Verify(token string) (Identity, error) {
	if id, ok := f.idents[token]; ok {
		return id, nil
	}
	return Identity{}, errors.New("authentication error")
}

func startTestServer(t *testing.T, m *Manager) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ws", m.Serve())
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func dialWS(t *testing.T, srv *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// waitEvent 读取连接直到出现指定事件。
func waitEvent(t *testing.T, conn *websocket.Conn, event string) frame {
	t.Helper()
	for {
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("waiting for %s: %v", event, err)
		}
		var f frame
		if err := json.Unmarshal(data, &f); err != nil {
			t.Fatalf("bad frame %s: %v", data, err)
		}
		if f.Event == event {
			return f
		}
	}
}

func sendEvent(t *testing.T, conn *websocket.Conn, payload string) {
	t.Helper()
	if err := conn.WriteMessage(websocket.TextMessage, []byte(payload)); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestServe_RejectsMissingCredential(t *testing.T) {
	m := NewManager(fakeVerifier{}, &fakeStore{})
	srv := startTestServer(t, m)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		conn.Close()
		t.Fatal("handshake should fail without credential")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 refusal, got %v", resp)
	}
	if m.presence.Online() != 0 {
		t.Error("refused connection must not enter the presence table")
	}
}

func TestServe_RejectsInvalidCredential(t *testing.T) {
	m := NewManager(fakeVerifier{idents: map[string]Identity{"good": {ID: 1, Name: "Alice Adams"}}}, &fakeStore{})
	srv := startTestServer(t, m)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=bad"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("handshake should fail with invalid credential")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 refusal, got %v", resp)
	}
}

func TestServe_EndToEndChatScenario(t *testing.T) {
	store := &fakeStore{}
	m := NewManager(fakeVerifier{idents: map[string]Identity{
		"token-a": {ID: 1, Name: "Alice Adams"},
		"token-b": {ID: 2, Name: "Bob Brown"},
	}}, store)
	srv := startTestServer(t, m)

	connA := dialWS(t, srv, "token-a")
	waitEvent(t, connA, EventOnlineUsers)
	connB := dialWS(t, srv, "token-b")
	waitEvent(t, connB, EventOnlineUsers)

	sendEvent(t, connA, `{"event":"join_room","room":"general"}`)
	sendEvent(t, connB, `{"event":"join_room","room":"general"}`)

	// B 先发一条消息同步两边的 join 都已生效。
	sendEvent(t, connB, `{"event":"private_message","room":"general","message":{"text":"warmup"}}`)
	waitEvent(t, connA, EventReceiveMessage)
	waitEvent(t, connB, EventReceiveMessage)

	sendEvent(t, connA, `{"event":"private_message","room":"general","message":{"text":"hi"}}`)
	for _, conn := range []*websocket.Conn{connA, connB} {
		f := waitEvent(t, conn, EventReceiveMessage)
		var p MessagePayload
		if err := json.Unmarshal(f.Data, &p); err != nil {
			t.Fatalf("decode receive_message: %v", err)
		}
		if p.Text != "hi" || p.Sender.Name != "Alice Adams" {
			t.Errorf("got %+v, want hi from Alice Adams", p)
		}
		if p.Timestamp.IsZero() {
			t.Error("timestamp should be server-assigned")
		}
	}

	sendEvent(t, connB, `{"event":"typing","room":"general"}`)
	f := waitEvent(t, connA, EventUserTyping)
	var name string
	if err := json.Unmarshal(f.Data, &name); err != nil {
		t.Fatalf("decode user_typing: %v", err)
	}
	if name != "Bob Brown" {
		t.Errorf("user_typing = %q, want Bob Brown", name)
	}
	// 发送方自己收不到 typing：B 的下一帧应当直接是 A 的后续消息。
	sendEvent(t, connA, `{"event":"private_message","room":"general","message":{"text":"done"}}`)
	_ = connB.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := connB.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var next frame
	if err := json.Unmarshal(raw, &next); err != nil {
		t.Fatalf("bad frame %s: %v", raw, err)
	}
	if next.Event != EventReceiveMessage {
		t.Fatalf("next frame to sender = %s, want receive_message (typing must exclude sender)", next.Event)
	}
	waitEvent(t, connA, EventReceiveMessage)

	// A 断开后，剩下的客户端收到不含 A 的在线列表。
	_ = connA.Close()
	deadline := time.Now().Add(2 * time.Second)
	for {
		if time.Now().After(deadline) {
			t.Fatal("no online_users update after disconnect")
		}
		f := waitEvent(t, connB, EventOnlineUsers)
		var ids []uint
		if err := json.Unmarshal(f.Data, &ids); err != nil {
			t.Fatalf("decode online_users: %v", err)
		}
		gone := true
		for _, id := range ids {
			if id == 1 {
				gone = false
			}
		}
		if gone {
			break
		}
	}

	if store.count() != 3 {
		t.Errorf("store appended %d messages, want 3", store.count())
	}
}
