package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"

	"github.com/lox/pokerbattle/internal/config"
	"github.com/lox/pokerbattle/internal/game"
	"github.com/lox/pokerbattle/internal/randutil"
)

var (
	// ErrTableNotFound is returned for unknown or closed table IDs
	ErrTableNotFound = errors.New("table not found")
	// ErrTooManyTables is returned when the table limit has been reached
	ErrTooManyTables = errors.New("table limit reached")
)

// Option configures a Server
type Option func(*Server)

// WithLogger sets the server logger
func WithLogger(logger *log.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithClock sets the clock used for table activity and the idle reaper
func WithClock(clock quartz.Clock) Option {
	return func(s *Server) {
		s.clock = clock
	}
}

// Server hosts player-versus-enemy tables over REST and WebSocket
type Server struct {
	cfg          *config.Config
	idleTimeout  time.Duration
	reapInterval time.Duration
	seed         int64
	upgrader     websocket.Upgrader
	handler      http.Handler
	clock        quartz.Clock
	logger       *log.Logger

	mu      sync.RWMutex
	tables  map[string]*Table
	created int
}

// NewServer creates a server from validated configuration
func NewServer(cfg *config.Config, opts ...Option) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	idle, _ := cfg.Server.IdleTimeoutDuration()
	reap, _ := cfg.Server.ReapIntervalDuration()

	s := &Server{
		cfg:          cfg,
		idleTimeout:  idle,
		reapInterval: reap,
		tables:       make(map[string]*Table),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if s.clock == nil {
		s.clock = quartz.NewReal()
	}
	s.logger = s.logger.WithPrefix("server")
	s.seed = randutil.Seed(cfg.Game.Seed, s.clock.Now())

	s.upgrader = websocket.Upgrader{
		CheckOrigin:     s.checkOrigin,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}

	router := mux.NewRouter()
	s.registerRoutes(router)
	router.Use(s.logRequests)

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})
	s.handler = c.Handler(router)
	return s, nil
}

// Handler returns the HTTP handler serving the API
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start serves HTTP on the configured address until ctx is cancelled, then
// shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Server.Address,
		Handler:      s.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	reaper := s.StartReaper(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting table server", "addr", s.cfg.Server.Address)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down table server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	s.CloseAll("server shutting down")
	err := srv.Shutdown(shutdownCtx)
	cancel()
	if werr := reaper.Wait(); werr != nil && !errors.Is(werr, context.Canceled) {
		s.logger.Warn("Reaper stopped with error", "error", werr)
	}
	return err
}

// StartReaper removes idle tables every reap interval until ctx is done
func (s *Server) StartReaper(ctx context.Context) quartz.Waiter {
	return s.clock.TickerFunc(ctx, s.reapInterval, func() error {
		s.ReapIdle()
		return nil
	}, "reaper")
}

// ReapIdle closes tables that have been idle for at least the idle timeout
// and returns how many were removed
func (s *Server) ReapIdle() int {
	now := s.clock.Now()

	s.mu.Lock()
	var idle []*Table
	for id, t := range s.tables {
		if t.IdleFor(now) >= s.idleTimeout {
			idle = append(idle, t)
			delete(s.tables, id)
		}
	}
	s.mu.Unlock()

	for _, t := range idle {
		s.logger.Info("Removing idle table", "table", t.ID())
		t.Close("idle timeout")
	}
	return len(idle)
}

// CreateTable opens a new table, applying request overrides to the
// configured game settings
func (s *Server) CreateTable(req CreateTableRequest) (*Table, error) {
	rules := s.cfg.Game.Rules()
	enemyRedraw := s.cfg.Game.EnemyRedraw
	if req.HandSize != nil {
		rules.HandSize = *req.HandSize
	}
	if req.IncludeJoker != nil {
		rules.IncludeJoker = *req.IncludeJoker
	}
	if req.EnemyRedraw != nil {
		enemyRedraw = *req.EnemyRedraw
	}
	if err := rules.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.tables) >= s.cfg.Server.MaxTables {
		return nil, fmt.Errorf("%w: %d", ErrTooManyTables, s.cfg.Server.MaxTables)
	}

	rng := randutil.Stream(s.seed, s.created)
	if req.Seed != 0 {
		rng = randutil.New(req.Seed)
	}

	id := uuid.New().String()
	t, err := NewTable(id, rng, rules, enemyRedraw, s.clock, s.logger)
	if err != nil {
		return nil, err
	}
	s.tables[id] = t
	s.created++

	s.logger.Info("Table created", "table", id, "handSize", rules.HandSize, "joker", rules.IncludeJoker)
	return t, nil
}

// Table looks up a table by ID
func (s *Server) Table(id string) (*Table, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tables[id]
	return t, ok
}

// Tables lists open tables, oldest first
func (s *Server) Tables() []TableInfo {
	s.mu.RLock()
	tables := make([]*Table, 0, len(s.tables))
	for _, t := range s.tables {
		tables = append(tables, t)
	}
	s.mu.RUnlock()

	infos := make([]TableInfo, len(tables))
	for i, t := range tables {
		infos[i] = t.Info()
	}
	sort.Slice(infos, func(i, j int) bool {
		if !infos[i].CreatedAt.Equal(infos[j].CreatedAt) {
			return infos[i].CreatedAt.Before(infos[j].CreatedAt)
		}
		return infos[i].ID < infos[j].ID
	})
	return infos
}

// RemoveTable closes and forgets a table
func (s *Server) RemoveTable(id string) bool {
	s.mu.Lock()
	t, ok := s.tables[id]
	delete(s.tables, id)
	s.mu.Unlock()

	if ok {
		t.Close("table removed")
	}
	return ok
}

// CloseAll closes every table
func (s *Server) CloseAll(reason string) {
	s.mu.Lock()
	tables := s.tables
	s.tables = make(map[string]*Table)
	s.mu.Unlock()

	for _, t := range tables {
		t.Close(reason)
	}
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	allowed := s.cfg.Server.AllowedOrigins
	return slices.Contains(allowed, "*") || slices.Contains(allowed, origin)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := s.clock.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("Request", "method", r.Method, "uri", r.RequestURI, "duration", s.clock.Since(start))
	})
}

// classifyError maps domain errors to an HTTP status and an error code
func classifyError(err error) (int, string) {
	switch {
	case errors.Is(err, ErrTableNotFound):
		return http.StatusNotFound, "table_not_found"
	case errors.Is(err, ErrTooManyTables):
		return http.StatusServiceUnavailable, "too_many_tables"
	case errors.Is(err, game.ErrInvalidHandSize):
		return http.StatusBadRequest, "invalid_hand_size"
	case errors.Is(err, game.ErrRedrawUsed):
		return http.StatusConflict, "redraw_used"
	case errors.Is(err, game.ErrInvalidTransition):
		return http.StatusConflict, "invalid_transition"
	case errors.Is(err, ErrEnemyControlled):
		return http.StatusForbidden, "enemy_controlled"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
