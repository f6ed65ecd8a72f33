package inspect

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/vango-dev/ripple"
	"github.com/vango-dev/ripple/pkg/dom"
	"github.com/vango-dev/ripple/pkg/hydration"
	"github.com/vango-dev/ripple/pkg/scheduler"
)

// Snapshot is sent to websocket clients after each flush.
type Snapshot struct {
	Type     string  `json:"type"`
	Frame    uint64  `json:"frame"`
	Rounds   int     `json:"rounds"`
	Applied  int     `json:"applied"`
	Dropped  int     `json:"dropped"`
	Effects  int     `json:"effects"`
	Deferred int     `json:"deferred"`
	Millis   float64 `json:"millis"`
	HTML     string  `json:"html"`
}

// Mount describes a mounted root.
type Mount struct {
	ID        string           `json:"id"`
	Hydration *hydration.Stats `json:"hydration,omitempty"`
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. Defaults to the app's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics serves g on path.
func WithMetrics(path string, g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metricsPath = path
		s.gatherer = g
	}
}

// Server is the inspector HTTP server.
type Server struct {
	app    *ripple.App
	logger *slog.Logger
	router chi.Router

	metricsPath string
	gatherer    prometheus.Gatherer

	upgrader websocket.Upgrader
	mu       sync.RWMutex
	clients  map[*websocket.Conn]bool
	nclients atomic.Int32

	lastMu   sync.Mutex
	last     scheduler.FlushReport
	snapshot chan Snapshot

	removeHook func()
}

// New creates an inspector for app. It registers a flush hook on app's
// scheduler, so it must be called before app runs or on the UI goroutine.
func New(app *ripple.App, opts ...Option) *Server {
	s := &Server{
		app:     app,
		logger:  app.Logger(),
		clients: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins in dev
			},
		},
		snapshot: make(chan Snapshot, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.removeHook = app.Scheduler().OnFlush(s.onFlush)
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer, s.traceRequests)
	r.Get("/document", s.handleDocument)
	r.Get("/mounts", s.handleMounts)
	r.Get("/stats", s.handleStats)
	r.Get("/ws", s.handleWebSocket)
	if s.gatherer != nil {
		r.Handle(s.metricsPath, promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// onFlush runs on the UI goroutine.
func (s *Server) onFlush(r scheduler.FlushReport) {
	s.lastMu.Lock()
	s.last = r
	s.lastMu.Unlock()

	if s.nclients.Load() == 0 {
		return
	}
	snap := Snapshot{
		Type:     "flush",
		Frame:    r.Frame,
		Rounds:   r.Rounds,
		Applied:  r.Applied,
		Dropped:  r.Dropped,
		Effects:  r.Effects,
		Deferred: r.Deferred,
		Millis:   float64(r.Duration) / float64(time.Millisecond),
		HTML:     dom.InnerHTML(s.app.Document().Body()),
	}
	// Keep only the newest snapshot when the broadcaster lags behind.
	select {
	case <-s.snapshot:
	default:
	}
	select {
	case s.snapshot <- snap:
	default:
	}
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	var markup string
	if err := s.app.Do(r.Context(), func() {
		markup = dom.OuterHTML(s.app.Document().DocumentElement())
	}); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte("<!DOCTYPE html>" + markup))
}

func (s *Server) handleMounts(w http.ResponseWriter, r *http.Request) {
	var mounts []Mount
	if err := s.app.Do(r.Context(), func() {
		for _, id := range s.app.Mounts() {
			m := Mount{ID: id}
			if stats, ok := s.app.HydrationStats(id); ok {
				m.Hydration = &stats
			}
			mounts = append(mounts, m)
		}
	}); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, mounts)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.lastMu.Lock()
	last := s.last
	s.lastMu.Unlock()
	writeJSON(w, Snapshot{
		Type:     "stats",
		Frame:    last.Frame,
		Rounds:   last.Rounds,
		Applied:  last.Applied,
		Dropped:  last.Dropped,
		Effects:  last.Effects,
		Deferred: last.Deferred,
		Millis:   float64(last.Duration) / float64(time.Millisecond),
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	s.mu.Lock()
	s.clients[conn] = true
	s.nclients.Add(1)
	s.mu.Unlock()

	// Keep connection alive until client disconnects
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	s.drop(conn)
}

func (s *Server) drop(conn *websocket.Conn) error {
	s.mu.Lock()
	if !s.clients[conn] {
		s.mu.Unlock()
		return nil
	}
	delete(s.clients, conn)
	s.nclients.Add(-1)
	s.mu.Unlock()
	return conn.Close()
}

// ClientCount returns the number of connected websocket clients.
func (s *Server) ClientCount() int {
	return int(s.nclients.Load())
}

// =============================================================================
// Lifecycle
// =============================================================================

// Run broadcasts flush snapshots to websocket clients until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case snap := <-s.snapshot:
			s.broadcast(snap)
		}
	}
}

func (s *Server) broadcast(snap Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		return
	}

	s.mu.RLock()
	clients := make([]*websocket.Conn, 0, len(s.clients))
	for client := range s.clients {
		clients = append(clients, client)
	}
	s.mu.RUnlock()

	for _, client := range clients {
		if err := client.WriteMessage(websocket.TextMessage, data); err != nil {
			s.logger.Debug("inspector client dropped", "error", err)
			s.drop(client)
		}
	}
}

// Serve listens on addr and serves the inspector until ctx is done.
func (s *Server) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.ServeListener(ctx, ln)
}

// ServeListener serves the inspector on ln until ctx is done.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	broadcastDone := make(chan struct{})
	go func() {
		defer close(broadcastDone)
		s.Run(ctx)
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info("inspector listening", "addr", ln.Addr().String())
	err := srv.Serve(ln)
	cancel()
	<-broadcastDone
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Close disconnects all websocket clients and removes the flush hook. Call
// it from the UI goroutine or after the app stopped running.
func (s *Server) Close() error {
	s.mu.RLock()
	clients := make([]*websocket.Conn, 0, len(s.clients))
	for client := range s.clients {
		clients = append(clients, client)
	}
	s.mu.RUnlock()

	var err error
	for _, client := range clients {
		err = multierr.Append(err, s.drop(client))
	}
	if s.removeHook != nil {
		s.removeHook()
		s.removeHook = nil
	}
	return err
}
