package observer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"

	"dungeonsim.ai/internal/observerproto"
	"dungeonsim.ai/internal/protocol"
	"dungeonsim.ai/internal/sim/world"
)

const maxCommandBody = 1 << 20

type Server struct {
	world *world.World
	log   *log.Logger

	// CommandTimeout bounds how long the admin endpoint waits for the world loop.
	CommandTimeout time.Duration

	upgrader websocket.Upgrader
	nextID   atomic.Uint64
}

func NewServer(w *world.World, logger *log.Logger) *Server {
	return &Server{
		world:          w,
		log:            logger,
		CommandTimeout: 5 * time.Second,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

// Handler mounts the observer and admin routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/observer/bootstrap", s.BootstrapHandler())
	mux.HandleFunc("/v1/observer/ws", s.WSHandler())
	mux.HandleFunc("/v1/admin/commands", s.CommandsHandler())
	return mux
}

func (s *Server) BootstrapHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(s.world.Bootstrap())
	}
}

// frameCodec picks the wire encoding for one connection.
type frameCodec struct {
	msgType int
	encode  func(v any) ([]byte, error)
}

func codecFor(format string) (frameCodec, error) {
	switch strings.ToLower(format) {
	case "", observerproto.FormatJSON:
		return frameCodec{msgType: websocket.TextMessage, encode: json.Marshal}, nil
	case observerproto.FormatMsgpack:
		return frameCodec{msgType: websocket.BinaryMessage, encode: marshalMsgpack}, nil
	}
	return frameCodec{}, fmt.Errorf("unknown format %q", format)
}

// marshalMsgpack reuses the json tags so both encodings share field names.
func marshalMsgpack(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	enc.UseCompactInts(true)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Server) WSHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		codec, err := codecFor(r.URL.Query().Get("format"))
		if err != nil {
			http.Error(rw, err.Error(), http.StatusBadRequest)
			return
		}

		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		// Handshake: must send SUBSCRIBE first.
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var sub observerproto.SubscribeMsg
		if err := json.Unmarshal(msg, &sub); err != nil {
			closeWith(conn, websocket.ClosePolicyViolation, "bad subscribe")
			return
		}
		if sub.Type != "SUBSCRIBE" || sub.ProtocolVersion != observerproto.Version {
			closeWith(conn, websocket.ClosePolicyViolation, "expected SUBSCRIBE")
			return
		}

		sid := fmt.Sprintf("O%d", s.nextID.Add(1))
		tickOut := make(chan []byte, 8)
		dataOut := make(chan []byte, 4)

		joinReq := world.ObserverJoinRequest{
			SessionID: sid,
			TickOut:   tickOut,
			DataOut:   dataOut,
			Encode:    codec.encode,
			Owners:    sub.Owners,
			NoMap:     sub.NoMap,
		}
		select {
		case s.world.ObserverJoin() <- joinReq:
		default:
			closeWith(conn, websocket.CloseTryAgainLater, "server busy")
			return
		}
		defer func() {
			select {
			case s.world.ObserverLeave() <- sid:
			default:
				// World loop is stopping; nothing else to do.
			}
		}()
		s.logf("observer %s joined format=%s owners=%v no_map=%v", sid, r.URL.Query().Get("format"), sub.Owners, sub.NoMap)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		writeErr := make(chan error, 1)
		go func() {
			for {
				var b []byte
				// The map goes out before any tick frame queued behind it.
				select {
				case b = <-dataOut:
				default:
					select {
					case <-ctx.Done():
						writeErr <- ctx.Err()
						return
					case b = <-dataOut:
					case b = <-tickOut:
					}
				}
				_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				if err := conn.WriteMessage(codec.msgType, b); err != nil {
					writeErr <- err
					return
				}
			}
		}()

		// Reader loop: the stream is one-way, reads only detect close.
		go func() {
			for {
				_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
				if _, _, err := conn.ReadMessage(); err != nil {
					cancel()
					return
				}
			}
		}()

		select {
		case <-ctx.Done():
		case err := <-writeErr:
			if err != nil {
				s.logf("observer %s write: %v", sid, err)
			}
		}
		cancel()
		closeWith(conn, websocket.CloseNormalClosure, "bye")
	}
}

// CommandsHandler accepts a COMMAND message, queues each command for the next
// tick and answers with the COMMAND_RESULT list in request order.
func (s *Server) CommandsHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		raw, err := io.ReadAll(io.LimitReader(r.Body, maxCommandBody))
		if err != nil {
			http.Error(rw, "read body", http.StatusBadRequest)
			return
		}
		msg, err := protocol.DecodeCommand(raw)
		if err != nil {
			writeJSON(rw, http.StatusBadRequest, protocol.CommandResult{
				Type:            protocol.TypeCommandResult,
				ProtocolVersion: protocol.Version,
				Code:            protocol.ErrProtoBadRequest,
				Message:         err.Error(),
			})
			return
		}
		if msg.ProtocolVersion != protocol.Version {
			writeJSON(rw, http.StatusBadRequest, protocol.CommandResult{
				Type:            protocol.TypeCommandResult,
				ProtocolVersion: protocol.Version,
				Code:            protocol.ErrProtoBadRequest,
				Message:         "unsupported protocol_version " + msg.ProtocolVersion,
			})
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), s.CommandTimeout)
		defer cancel()
		writeJSON(rw, http.StatusOK, s.submit(ctx, msg.Commands))
	}
}

func (s *Server) submit(ctx context.Context, cmds []protocol.CommandReq) []protocol.CommandResult {
	out := make([]protocol.CommandResult, len(cmds))
	resps := make([]chan protocol.CommandResult, len(cmds))
	for i, c := range cmds {
		resp := make(chan protocol.CommandResult, 1)
		select {
		case s.world.Commands() <- world.CommandEnvelope{Cmd: c, Resp: resp}:
			resps[i] = resp
		default:
			out[i] = failed(c.ID, protocol.ErrWorldBusy, "command queue full")
		}
	}
	for i, resp := range resps {
		if resp == nil {
			continue
		}
		select {
		case res := <-resp:
			out[i] = res
		case <-ctx.Done():
			out[i] = failed(cmds[i].ID, protocol.ErrWorldBusy, "timed out waiting for tick")
		}
	}
	return out
}

func failed(id, code, message string) protocol.CommandResult {
	return protocol.CommandResult{
		Type:            protocol.TypeCommandResult,
		ProtocolVersion: protocol.Version,
		ID:              id,
		Code:            code,
		Message:         message,
	}
}

func writeJSON(rw http.ResponseWriter, status int, v any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	_ = json.NewEncoder(rw).Encode(v)
}

func closeWith(conn *websocket.Conn, code int, text string) {
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, text), time.Now().Add(time.Second))
}

func (s *Server) logf(format string, args ...any) {
	if s.log != nil {
		s.log.Printf(format, args...)
	}
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
