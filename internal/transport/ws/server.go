package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"sandvox.gg/internal/protocol"
	"sandvox.gg/internal/sim/world"
)

const maxEditBatch = 256

// Server bridges websocket peers and the world loop. The first peer to join
// becomes the session host and is the only accepted source of animal poses.
type Server struct {
	world *world.World
	log   *log.Logger

	upgrader websocket.Upgrader

	helloSchema *jsonschema.Schema
	editsSchema *jsonschema.Schema

	mu       sync.Mutex
	sessions map[string]*session
	hostID   string
}

type session struct {
	id   string
	name string
	skin string
	out  chan []byte
}

// NewServer compiles the wire schemas from schemasDir and returns a server
// wired to w. The server registers itself as an edit sink.
func NewServer(w *world.World, schemasDir string, logger *log.Logger) (*Server, error) {
	hello, err := jsonschema.Compile(filepath.Join(schemasDir, "hello.schema.json"))
	if err != nil {
		return nil, err
	}
	edits, err := jsonschema.Compile(filepath.Join(schemasDir, "edits.schema.json"))
	if err != nil {
		return nil, err
	}

	s := &Server{
		world: w,
		log:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
		helloSchema: hello,
		editsSchema: edits,
		sessions:    map[string]*session{},
	}
	w.AddEditSink(s)
	return s, nil
}

// BlockEdit fans a world edit out to every peer except its author.
func (s *Server) BlockEdit(e world.BlockEdit) {
	msg := protocol.EditBatchMsg{
		Type:            protocol.TypeEdits,
		ProtocolVersion: protocol.Version,
		Author:          e.Author,
		Seq:             e.Seq,
		Edits: []protocol.EditEntry{
			{X: e.X, Y: e.Y, Z: e.Z, Block: int(e.Block)},
		},
	}
	b, err := json.Marshal(msg)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		if id == e.Author {
			continue
		}
		select {
		case sess.out <- b:
		default:
			// Slow consumer; the peer resyncs from a snapshot on reconnect.
		}
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		sess := s.handshake(conn)
		if sess == nil {
			return
		}
		defer s.drop(sess)

		done := make(chan struct{})

		// Writer goroutine.
		go func() {
			for {
				select {
				case <-done:
					return
				case b, ok := <-sess.out:
					if !ok {
						return
					}
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						return
					}
				}
			}
		}()
		defer close(done)

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			base, err := protocol.DecodeBase(msg)
			if err != nil {
				s.sendError(sess, protocol.ErrProtoBadRequest, "bad json")
				continue
			}
			switch base.Type {
			case protocol.TypeEdits:
				s.handleEdits(sess, msg)
			case protocol.TypePose:
				s.handlePose(sess, msg)
			case protocol.TypeAnimals:
				s.handleAnimals(sess, msg)
			default:
				s.sendError(sess, protocol.ErrProtoBadRequest, "unknown type "+base.Type)
			}
		}
	}
}

func (s *Server) handshake(conn *websocket.Conn) *session {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return nil
	}

	var raw any
	if err := json.Unmarshal(msg, &raw); err != nil {
		return nil
	}
	if err := s.helloSchema.Validate(raw); err != nil {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected HELLO"),
			time.Now().Add(time.Second))
		return nil
	}

	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return nil
	}
	if hello.ProtocolVersion != protocol.Version {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad protocol_version"),
			time.Now().Add(time.Second))
		return nil
	}
	if hello.PlayerName == "" {
		hello.PlayerName = "player"
	}

	maxQ := hello.Capabilities.MaxQueue
	if maxQ <= 0 {
		maxQ = 256
	}
	if maxQ > 4096 {
		maxQ = 4096
	}

	sess := &session{
		id:   uuid.NewString(),
		name: hello.PlayerName,
		skin: hello.Skin,
		out:  make(chan []byte, maxQ),
	}

	s.mu.Lock()
	s.sessions[sess.id] = sess
	if s.hostID == "" {
		s.hostID = sess.id
	}
	s.mu.Unlock()

	cfg := s.world.Config()
	welcome := protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		PlayerID:        sess.id,
		WorldParams: protocol.WorldParams{
			Seed:       cfg.Seed,
			WorldType:  cfg.WorldType,
			TickRateHz: cfg.TickRateHz,
			ChunkSize:  world.ChunkSize,
			Height:     world.WorldHeight,
			SeaLevel:   world.SeaLevel,
		},
		EditSeq: s.world.EditSeq(),
	}
	if err := writeJSON(conn, welcome); err != nil {
		s.drop(sess)
		return nil
	}

	s.log.Printf("ws: %s joined as %q", sess.id, sess.name)
	return sess
}

func (s *Server) drop(sess *session) {
	s.mu.Lock()
	if _, ok := s.sessions[sess.id]; !ok {
		s.mu.Unlock()
		return
	}
	delete(s.sessions, sess.id)
	if s.hostID == sess.id {
		s.hostID = ""
		for id := range s.sessions {
			s.hostID = id
			break
		}
	}
	s.mu.Unlock()

	s.world.RemovePlayer(sess.id)
	s.log.Printf("ws: %s left", sess.id)
}

func (s *Server) handleEdits(sess *session, msg []byte) {
	var raw any
	if err := json.Unmarshal(msg, &raw); err != nil {
		s.sendError(sess, protocol.ErrProtoBadRequest, "bad json")
		return
	}
	if err := s.editsSchema.Validate(raw); err != nil {
		s.sendError(sess, protocol.ErrProtoBadRequest, err.Error())
		return
	}

	var batch protocol.EditBatchMsg
	if err := json.Unmarshal(msg, &batch); err != nil {
		s.sendError(sess, protocol.ErrProtoBadRequest, "bad edit batch")
		return
	}
	if len(batch.Edits) > maxEditBatch {
		s.sendError(sess, protocol.ErrRateLimit, "edit batch too large")
		return
	}

	edits := make([]world.BlockEdit, 0, len(batch.Edits))
	for _, e := range batch.Edits {
		id, err := e.Resolve()
		if err != nil {
			s.sendError(sess, protocol.ErrInvalidTarget, err.Error())
			return
		}
		edits = append(edits, world.BlockEdit{X: e.X, Y: e.Y, Z: e.Z, Block: id})
	}
	s.world.SubmitEdits(sess.id, edits)
}

func (s *Server) handlePose(sess *session, msg []byte) {
	var pose protocol.PoseMsg
	if err := json.Unmarshal(msg, &pose); err != nil {
		s.sendError(sess, protocol.ErrProtoBadRequest, "bad pose")
		return
	}
	s.world.UpdatePlayer(world.PlayerPose{
		ID: sess.id, Name: sess.name, Skin: sess.skin,
		X: pose.X, Y: pose.Y, Z: pose.Z, Yaw: pose.Yaw, Pitch: pose.Pitch,
	})

	out := protocol.PlayersMsg{
		Type:            protocol.TypePlayers,
		ProtocolVersion: protocol.Version,
		Tick:            s.world.CurrentTick(),
		Players: []protocol.PlayerEntry{{
			ID: sess.id, Name: sess.name, Skin: sess.skin,
			X: pose.X, Y: pose.Y, Z: pose.Z, Yaw: pose.Yaw, Pitch: pose.Pitch,
		}},
	}
	s.relayExcept(sess.id, out)
}

func (s *Server) handleAnimals(sess *session, msg []byte) {
	s.mu.Lock()
	isHost := s.hostID == sess.id
	s.mu.Unlock()
	if !isHost {
		// Only the host simulates animals; everyone else's are ignored.
		return
	}

	// Animal state is opaque to the simulation: validate the envelope and
	// relay it untouched.
	var am protocol.AnimalsMsg
	if err := json.Unmarshal(msg, &am); err != nil {
		s.sendError(sess, protocol.ErrProtoBadRequest, "bad animals")
		return
	}
	s.relayExcept(sess.id, am)
}

func (s *Server) relayExcept(exceptID string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		if id == exceptID {
			continue
		}
		select {
		case sess.out <- b:
		default:
		}
	}
}

func (s *Server) sendError(sess *session, code, msg string) {
	b, err := json.Marshal(protocol.NewError(code, msg))
	if err != nil {
		return
	}
	select {
	case sess.out <- b:
	default:
	}
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}
