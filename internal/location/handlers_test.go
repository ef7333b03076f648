package location

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gorilla/websocket"
)

func startApp(t *testing.T, store *Store) (string, func()) {
	t.Helper()
	app := fiber.New()
	RegisterRoutes(app.Group("/location"), store)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen error: %v", err)
	}
	go func() {
		_ = app.Listener(ln)
	}()
	return ln.Addr().String(), func() {
		_ = app.Shutdown()
		ln.Close()
	}
}

func TestLocationWebsocketStoresFix(t *testing.T) {
	store := NewStore()
	addr, stop := startApp(t, store)
	defer stop()

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+addr+"/location/ws", nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	defer conn.Close()

	msg := `{"session_id":"s1","latitude":39.9812,"longitude":-75.1556,"timestamp":1700000000000}`
	if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
		t.Fatalf("write error: %v", err)
	}

	_, ack, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read error: %v", err)
	}
	var resp map[string]any
	if err := json.Unmarshal(ack, &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp["status"] != "received" || resp["session_id"] != "s1" {
		t.Fatalf("unexpected ack: %v", resp)
	}

	fix, ok := store.Get("s1")
	if !ok || fix.Lat != 39.9812 {
		t.Fatalf("expected stored fix, got %+v", fix)
	}
}

func TestLocationWebsocketMalformedUpdate(t *testing.T) {
	store := NewStore()
	addr, stop := startApp(t, store)
	defer stop()

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+addr+"/location/ws", nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"session_id":"s1"}`)); err != nil {
		t.Fatalf("write error: %v", err)
	}

	_, ack, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read error: %v", err)
	}
	var resp map[string]any
	_ = json.Unmarshal(ack, &resp)
	if resp["status"] != "error" {
		t.Fatalf("expected error ack, got %v", resp)
	}
	if _, ok := store.Get("s1"); ok {
		t.Fatalf("malformed update must not store a fix")
	}
}

func TestLocationWebsocketRejectsSessionSwitch(t *testing.T) {
	store := NewStore()
	addr, stop := startApp(t, store)
	defer stop()

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+addr+"/location/ws", nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	defer conn.Close()

	first := `{"session_id":"s1","latitude":39.9812,"longitude":-75.1556,"timestamp":1}`
	if err := conn.WriteMessage(websocket.TextMessage, []byte(first)); err != nil {
		t.Fatalf("write error: %v", err)
	}
	_, _, _ = conn.ReadMessage()

	other := `{"session_id":"s2","latitude":1,"longitude":2,"timestamp":2}`
	if err := conn.WriteMessage(websocket.TextMessage, []byte(other)); err != nil {
		t.Fatalf("write error: %v", err)
	}
	_, ack, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read error: %v", err)
	}
	var resp map[string]any
	_ = json.Unmarshal(ack, &resp)
	if resp["status"] != "error" {
		t.Fatalf("expected error ack for session switch, got %v", resp)
	}
	if _, ok := store.Get("s2"); ok {
		t.Fatalf("fix for a different session must not be stored")
	}
	if fix, ok := store.Get("s1"); !ok || fix.Lat != 39.9812 {
		t.Fatalf("original session fix must survive, got %+v", fix)
	}
}

func TestLocationWebsocketDisconnectDropsFix(t *testing.T) {
	store := NewStore()
	addr, stop := startApp(t, store)
	defer stop()

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+addr+"/location/ws", nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}

	msg := `{"session_id":"s1","latitude":1,"longitude":2,"timestamp":3}`
	_ = conn.WriteMessage(websocket.TextMessage, []byte(msg))
	_, _, _ = conn.ReadMessage()
	conn.Close()

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if _, ok := store.Get("s1"); !ok {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected fix dropped on disconnect")
}

func TestCurrentLocationEndpoints(t *testing.T) {
	store := NewStore()
	store.Put(Fix{SessionID: "s1", Lat: 1, Lng: 2, TimestampMs: 3})

	app := fiber.New()
	RegisterRoutes(app.Group("/location"), store)

	req := httptest.NewRequest(http.MethodGet, "/location/current/s1", nil)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("current: %v", err)
	}
	var body map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&body)
	if body["status"] != "success" {
		t.Fatalf("unexpected body: %v", body)
	}

	req = httptest.NewRequest(http.MethodGet, "/location/current/missing", nil)
	resp, _ = app.Test(req)
	body = map[string]any{}
	_ = json.NewDecoder(resp.Body).Decode(&body)
	if body["status"] != "not_found" {
		t.Fatalf("expected not_found, got %v", body)
	}

	req = httptest.NewRequest(http.MethodGet, "/location/active-sessions", nil)
	resp, _ = app.Test(req)
	body = map[string]any{}
	_ = json.NewDecoder(resp.Body).Decode(&body)
	if body["active_sessions"] != float64(1) {
		t.Fatalf("expected one active session, got %v", body)
	}
}
