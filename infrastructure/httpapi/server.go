// Package httpapi serves a read-only view of a running scene over HTTP and
// WebSocket.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/websg-dev/websg-go/domain/entities"
	domainerrors "github.com/websg-dev/websg-go/domain/errors"
	"github.com/websg-dev/websg-go/hostfuncs"
	"github.com/websg-dev/websg-go/scene"
)

const shutdownTimeout = 5 * time.Second

// StatsResponse is the body of GET /api/stats.
type StatsResponse struct {
	Functions map[string]hostfuncs.CallCount `json:"functions"`
	Nodes     int                            `json:"nodes"`
	Ticks     uint64                         `json:"ticks"`
	Clients   int                            `json:"clients"`
}

// Server exposes the scene graph. It implements suture.Service.
type Server struct {
	graph     *scene.Graph
	stats     *hostfuncs.CallStats
	ticks     func() uint64
	hub       *Hub
	logger    *zap.Logger
	accessLog io.Writer
	upgrader  websocket.Upgrader
	addr      string
	listener  net.Listener
}

// Option configures a Server.
type Option func(*Server)

// WithStats exposes host function counters on /api/stats.
func WithStats(stats *hostfuncs.CallStats) Option {
	return func(s *Server) {
		s.stats = stats
	}
}

// WithTicks sets the tick counter reported on /api/stats.
func WithTicks(fn func() uint64) Option {
	return func(s *Server) {
		s.ticks = fn
	}
}

// WithHub sets the hub used for /ws. A new hub is created otherwise.
func WithHub(hub *Hub) Option {
	return func(s *Server) {
		s.hub = hub
	}
}

// WithLogger sets the server logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithAccessLog writes combined-format access logs to w.
func WithAccessLog(w io.Writer) Option {
	return func(s *Server) {
		s.accessLog = w
	}
}

// WithListener serves on an existing listener instead of addr.
func WithListener(l net.Listener) Option {
	return func(s *Server) {
		s.listener = l
	}
}

// NewServer returns a server for graph listening on addr.
func NewServer(addr string, graph *scene.Graph, opts ...Option) *Server {
	s := &Server{
		graph:  graph,
		addr:   addr,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.hub == nil {
		s.hub = NewHub(s.logger)
	}
	return s
}

// Hub returns the server's snapshot hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Handler returns the routed handler with recovery and access logging.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Methods(http.MethodGet).Subrouter()
	api.HandleFunc("/scene", s.handleScene)
	api.HandleFunc("/scene.glb", s.handleSceneGLB)
	api.HandleFunc("/nodes/{id:[0-9]+}", s.handleNode)
	api.HandleFunc("/stats", s.handleStats)
	r.HandleFunc("/ws", s.handleWS).Methods(http.MethodGet)

	var h http.Handler = r
	if s.accessLog != nil {
		h = handlers.CombinedLoggingHandler(s.accessLog, h)
	}
	return handlers.RecoveryHandler(
		handlers.RecoveryLogger(zapRecoveryLogger{s.logger}),
	)(h)
}

// Serve listens until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	l := s.listener
	if l == nil {
		var err error
		l, err = net.Listen("tcp", s.addr)
		if err != nil {
			return fmt.Errorf("listen on %s: %w", s.addr, err)
		}
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("inspect server listening", zap.String("addr", l.Addr().String()))
		errCh <- srv.Serve(l)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.hub.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("inspect server shutdown", zap.Error(err))
		}
		return ctx.Err()
	}
}

func (s *Server) String() string {
	return "websg-inspect"
}

// Publish pushes the current graph to WebSocket clients.
func (s *Server) Publish(tick uint64) error {
	return s.hub.Publish(SceneSnapshot{Tick: tick, Nodes: s.graph.Snapshot()})
}

func (s *Server) handleScene(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, SceneSnapshot{Tick: s.currentTick(), Nodes: s.graph.Snapshot()})
}

func (s *Server) handleNode(w http.ResponseWriter, r *http.Request) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		detail := entities.NewErrorDetail("validation", fmt.Sprintf("invalid node id %q", raw)).
			WithCode("invalid_node_id").
			WithDetails(map[string]any{"id": raw})
		writeError(w, http.StatusBadRequest, detail)
		return
	}
	node, err := s.graph.Get(entities.NodeID(id))
	if err != nil {
		status := http.StatusInternalServerError
		var nf *domainerrors.NodeNotFoundError
		if errors.As(err, &nf) {
			status = http.StatusNotFound
		}
		writeError(w, status, domainerrors.ToErrorDetail(err))
		return
	}
	writeJSON(w, http.StatusOK, node)
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	resp := StatsResponse{
		Functions: map[string]hostfuncs.CallCount{},
		Nodes:     s.graph.Len(),
		Ticks:     s.currentTick(),
		Clients:   s.hub.Clients(),
	}
	if s.stats != nil {
		resp.Functions = s.stats.Snapshot()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSceneGLB(w http.ResponseWriter, _ *http.Request) {
	var buf bytes.Buffer
	if err := scene.WriteGLTF(&buf, scene.ExportGLTF(s.graph), true); err != nil {
		writeError(w, http.StatusInternalServerError, domainerrors.ToErrorDetail(err))
		return
	}
	w.Header().Set("Content-Type", "model/gltf-binary")
	w.Header().Set("Content-Disposition", `attachment; filename="scene.glb"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	if !s.hub.attach(conn) {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		_ = conn.Close()
	}
}

func (s *Server) currentTick() uint64 {
	if s.ticks == nil {
		return 0
	}
	return s.ticks()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail *entities.ErrorDetail) {
	writeJSON(w, status, detail)
}

type zapRecoveryLogger struct {
	logger *zap.Logger
}

func (l zapRecoveryLogger) Println(v ...any) {
	l.logger.Error("inspect handler panic", zap.String("panic", fmt.Sprint(v...)))
}
