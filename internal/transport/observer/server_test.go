package observer

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"

	"dungeonsim.ai/internal/observerproto"
	"dungeonsim.ai/internal/protocol"
	"dungeonsim.ai/internal/sim/catalogs"
	"dungeonsim.ai/internal/sim/world"
)

func startWorld(t *testing.T) (*world.World, *httptest.Server) {
	t.Helper()
	cats, err := catalogs.Load("../../../configs")
	if err != nil {
		t.Fatalf("load catalogs: %v", err)
	}
	w, err := world.New(world.WorldConfig{
		RunID:        "obs-test",
		TickRateHz:   50,
		Seed:         11,
		Width:        32,
		Height:       32,
		Players:      2,
		StartingGold: 500,
		StartingImps: 1,
	}, cats)
	if err != nil {
		t.Fatalf("new world: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()
	srv := httptest.NewServer(NewServer(w, nil).Handler())
	t.Cleanup(func() {
		srv.Close()
		cancel()
		<-done
	})
	return w, srv
}

func dial(t *testing.T, srv *httptest.Server, query string, sub observerproto.SubscribeMsg) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/observer/ws" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	sub.Type = "SUBSCRIBE"
	sub.ProtocolVersion = observerproto.Version
	if err := conn.WriteJSON(sub); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func TestBootstrap(t *testing.T) {
	_, srv := startWorld(t)
	resp, err := http.Get(srv.URL + "/v1/observer/bootstrap")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	var b observerproto.BootstrapResponse
	if err := json.NewDecoder(resp.Body).Decode(&b); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b.RunID != "obs-test" || b.WorldParams.Width != 32 || b.WorldParams.Players != 2 {
		t.Fatalf("unexpected bootstrap: %+v", b)
	}
	if len(b.Instances) == 0 || b.Instances[0] != "NONE" || len(b.CatalogDigests) == 0 {
		t.Fatalf("missing catalog info: %+v", b)
	}
}

func TestWS_JSONMapThenTicks(t *testing.T) {
	_, srv := startWorld(t)
	conn := dial(t, srv, "", observerproto.SubscribeMsg{})

	mt, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read map: %v", err)
	}
	if mt != websocket.TextMessage {
		t.Fatalf("message type=%d", mt)
	}
	var m observerproto.MapMsg
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("decode map: %v", err)
	}
	if m.Type != "MAP" || m.Width != 32 || len(m.Kinds) != 32*32 {
		t.Fatalf("unexpected map: type=%s w=%d kinds=%d", m.Type, m.Width, len(m.Kinds))
	}

	_, raw, err = conn.ReadMessage()
	if err != nil {
		t.Fatalf("read tick: %v", err)
	}
	var tick observerproto.TickMsg
	if err := json.Unmarshal(raw, &tick); err != nil {
		t.Fatalf("decode tick: %v", err)
	}
	if tick.Type != "TICK" || tick.Digest == "" || len(tick.Dungeons) != 2 {
		t.Fatalf("unexpected tick: %+v", tick)
	}
}

func TestWS_MsgpackOwnerFilter(t *testing.T) {
	_, srv := startWorld(t)
	conn := dial(t, srv, "?format=msgpack", observerproto.SubscribeMsg{Owners: []int{1}, NoMap: true})

	mt, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if mt != websocket.BinaryMessage {
		t.Fatalf("message type=%d", mt)
	}
	dec := msgpack.NewDecoder(bytes.NewReader(raw))
	dec.SetCustomStructTag("json")
	var tick observerproto.TickMsg
	if err := dec.Decode(&tick); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if tick.Type != "TICK" {
		t.Fatalf("no_map must skip the map, got %s", tick.Type)
	}
	if len(tick.Dungeons) != 1 || tick.Dungeons[0].Owner != 1 {
		t.Fatalf("owner filter: %+v", tick.Dungeons)
	}
}

func TestWS_RejectsUnknownFormat(t *testing.T) {
	_, srv := startWorld(t)
	resp, err := http.Get(srv.URL + "/v1/observer/ws?format=xml")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status=%d", resp.StatusCode)
	}
}

func TestCommands(t *testing.T) {
	w, srv := startWorld(t)
	body := `{"type":"COMMAND","protocol_version":"1.0","commands":[
	  {"id":"g1","op":"ADD_GOLD","owner":0,"amount":250},
	  {"id":"g2","op":"ADD_GOLD","owner":6,"amount":1}
	]}`
	resp, err := http.Post(srv.URL+"/v1/admin/commands", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d", resp.StatusCode)
	}
	var res []protocol.CommandResult
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(res) != 2 || !res[0].OK || res[0].ID != "g1" || res[0].Ref != 250 {
		t.Fatalf("unexpected results: %+v", res)
	}
	if res[1].OK || res[1].Code != protocol.ErrBadRequest {
		t.Fatalf("missing player accepted: %+v", res[1])
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if ds := w.Metrics().Dungeons; len(ds) > 0 && ds[0].Gold == 750 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("gold not visible in metrics: %+v", w.Metrics().Dungeons)
}

func TestCommands_BadRequest(t *testing.T) {
	_, srv := startWorld(t)
	for _, body := range []string{
		`{"type":"COMMAND","protocol_version":"1.0","commands":[{"id":"x","op":"DANCE"}]}`,
		`{"type":"COMMAND","protocol_version":"0.1","commands":[]}`,
		`not json`,
	} {
		resp, err := http.Post(srv.URL+"/v1/admin/commands", "application/json", strings.NewReader(body))
		if err != nil {
			t.Fatalf("post: %v", err)
		}
		var res protocol.CommandResult
		_ = json.NewDecoder(resp.Body).Decode(&res)
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest || res.Code != protocol.ErrProtoBadRequest {
			t.Fatalf("%s: status=%d code=%s", body, resp.StatusCode, res.Code)
		}
	}
}
