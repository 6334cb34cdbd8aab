package live

import (
	"context"
	_ "embed"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/supplynet/scmap/internal/engine"
	"github.com/supplynet/scmap/internal/render"
)

//go:embed index.html
var indexHTML []byte

// statsEvery is how often, in frames, a stats message is sent while
// anything is connected.
const statsEvery = 30

// selectionPayload is the body of a "selection" message.
type selectionPayload struct {
	Selected bool              `json:"selected"`
	Node     *engine.Selection `json:"node,omitempty"`
}

// Server binds a Hub to an engine loop.
type Server struct {
	hub    *Hub
	loop   *engine.Loop
	logger *slog.Logger

	// dirty is only touched on the loop goroutine.
	dirty bool
}

// NewServer wires a hub to loop. Call Attach before the loop runs.
func NewServer(loop *engine.Loop, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{hub: NewHub(logger), loop: loop, logger: logger, dirty: true}
	s.hub.OnMessage = s.receive
	s.hub.OnJoin = s.invalidate
	return s
}

// Hub returns the underlying hub.
func (s *Server) Hub() *Hub { return s.hub }

// Attach registers the frame and selection observers on the loop and scene.
func (s *Server) Attach(scene *engine.Scene) {
	s.loop.OnFrame(s.frame)
	scene.OnSelect(s.selected)
}

// Run drives the hub until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	return s.hub.Run(ctx)
}

// Handler serves the viewer page, the websocket and a stats endpoint.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/ws", s.hub.HandleWebSocket)
	mux.HandleFunc("/api/stats", s.handleStats)
	return mux
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	var stats engine.Stats
	if err := s.loop.Do(r.Context(), func(sc *engine.Scene) { stats = sc.Stats() }); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

// receive decodes a browser event and posts it to the loop.
func (s *Server) receive(data []byte) {
	var m ClientMessage
	if err := json.Unmarshal(data, &m); err != nil {
		s.logger.Warn("bad client message", "err", err)
		return
	}
	err := s.loop.Post(func(sc *engine.Scene) {
		if err := m.Apply(sc); err != nil {
			s.logger.Warn("client message rejected", "type", m.Type, "err", err)
			return
		}
		s.dirty = true
	})
	if err != nil {
		s.logger.Debug("dropping client message", "type", m.Type, "err", err)
	}
}

// invalidate forces the next frame to be sent, so a new browser gets a
// picture even when the layout is at rest.
func (s *Server) invalidate() {
	s.loop.Post(func(*engine.Scene) { s.dirty = true })
}

// frame is the loop's FrameFunc.
func (s *Server) frame(sc *engine.Scene, n uint64, moved bool) {
	if s.hub.Clients() == 0 {
		return
	}
	if moved || s.dirty {
		w, h := sc.Size()
		dl := render.NewDisplayList(int(w), int(h))
		sc.Draw(dl)
		if s.hub.TryBroadcast("frame", dl) {
			s.dirty = false
		}
	}
	if n%statsEvery == 0 {
		s.hub.TryBroadcast("stats", sc.Stats())
	}
}

// selected is the scene's OnSelect callback.
func (s *Server) selected(sel engine.Selection, ok bool) {
	p := selectionPayload{Selected: ok}
	if ok {
		p.Node = &sel
	}
	if err := s.hub.Broadcast("selection", p); err != nil {
		s.logger.Debug("selection not sent", "err", err)
	}
}
