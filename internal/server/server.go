package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"io/fs"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jpalmerr/habitboard/internal/habit"
	"go.uber.org/zap"
)

const (
	// sseWriteTimeout is the maximum time allowed for a single SSE write operation.
	// This prevents goroutine leaks when clients are slow or disconnected.
	// Must be <= shutdown timeout to ensure clean shutdown.
	sseWriteTimeout = 5 * time.Second

	// shutdownTimeout bounds graceful shutdown of in-flight requests.
	shutdownTimeout = 5 * time.Second

	// maxBodyBytes caps JSON request bodies.
	maxBodyBytes = 64 << 10

	// defaultTitle is used when no custom title is configured.
	defaultTitle = "Habit Tracker"

	// titlePlaceholder is the marker in HTML that gets replaced with the actual title.
	titlePlaceholder = "{{.Title}}"

	requestIDHeader = "X-Request-ID"
)

// Tracker is the habit store the server reads and mutates.
type Tracker interface {
	Habits() habit.Collection
	AddHabit(ctx context.Context, title string) (habit.Habit, error)
	ToggleCompletion(ctx context.Context, id, day string) (habit.Habit, bool, error)
	Subscribe() <-chan habit.Collection
	Unsubscribe(ch <-chan habit.Collection)
}

// Server handles HTTP requests for the habit dashboard and API.
//
// Server provides these endpoints:
//   - GET /: Serves the embedded dashboard HTML
//   - GET /api/habits: Returns today and the collection as JSON
//   - POST /api/habits: Adds a habit
//   - POST /api/habits/{id}/toggle: Toggles a day for a habit
//   - GET /api/sse: Server-Sent Events stream of collection snapshots
//
// The server is designed for graceful shutdown via context cancellation.
type Server struct {
	tracker    Tracker
	port       int
	httpServer *http.Server
	assets     fs.FS
	title      string
	today      func() string
	logger     *zap.Logger

	dayMu       sync.RWMutex
	dayWatchers map[chan string]struct{}
}

// NewServer creates a new HTTP [Server].
//
// Parameters:
//   - tracker: habit store backing the API
//   - port: TCP port to listen on (0 picks a free port)
//   - assets: Embedded filesystem containing dashboard assets (may be nil)
//   - title: Dashboard title (defaults to "Habit Tracker" if empty)
//   - today: returns the current YYYY-MM-DD day
//   - logger: Logger for server events
//
// The server is not started until [Server.Start] is called.
func NewServer(tracker Tracker, port int, assets fs.FS, title string, today func() string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		tracker:     tracker,
		port:        port,
		assets:      assets,
		title:       title,
		today:       today,
		logger:      logger,
		dayWatchers: make(map[chan string]struct{}),
	}
}

// Handler returns the server's routes wrapped in request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/habits", s.handleList)
	mux.HandleFunc("POST /api/habits", s.handleAdd)
	mux.HandleFunc("POST /api/habits/{id}/toggle", s.handleToggle)
	mux.HandleFunc("GET /api/sse", s.handleSSE)

	if s.assets != nil {
		mux.HandleFunc("GET /{$}", s.handleDashboard)
	}

	return s.withRequestLog(mux)
}

// Start begins serving HTTP requests in a background goroutine.
//
// Start is non-blocking and returns immediately after confirming the server
// is listening. The server will continue running until the context is
// cancelled, at which point it initiates a graceful shutdown with a 5-second
// timeout.
//
// Returns an error if the server fails to bind to the configured port.
func (s *Server) Start(ctx context.Context) error {
	// create listener first to verify port availability synchronously
	addr := fmt.Sprintf(":%d", s.port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to bind to port %d: %w", s.port, err)
	}

	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		// BaseContext derives all request contexts from the server context.
		// When ctx is cancelled, all request contexts are also cancelled,
		// enabling graceful shutdown of long-running handlers like SSE.
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server error", zap.Error(err))
		}
	}()

	// shutdown on context cancellation
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("http server shutdown error", zap.Error(err))
		}
	}()

	s.logger.Info("http server listening", zap.String("addr", ln.Addr().String()))
	return nil
}

// DayChanged pushes a fresh snapshot to every SSE client so "done today"
// marks move to the new day.
func (s *Server) DayChanged(day string) {
	s.dayMu.RLock()
	defer s.dayMu.RUnlock()

	for ch := range s.dayWatchers {
		select {
		case ch <- day:
		default:
		}
	}
}

func (s *Server) watchDays() chan string {
	ch := make(chan string, 1)
	s.dayMu.Lock()
	s.dayWatchers[ch] = struct{}{}
	s.dayMu.Unlock()
	return ch
}

func (s *Server) unwatchDays(ch chan string) {
	s.dayMu.Lock()
	delete(s.dayWatchers, ch)
	s.dayMu.Unlock()
}

// habitsResponse is the body of GET /api/habits and of every SSE event.
type habitsResponse struct {
	Today  string           `json:"today"`
	Habits habit.Collection `json:"habits"`
}

type addRequest struct {
	Title string `json:"title"`
}

type toggleRequest struct {
	Day string `json:"day"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// handleDashboard serves the main dashboard page.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	// read index.html from embedded assets
	content, err := fs.ReadFile(s.assets, "assets/index.html")
	if err != nil {
		http.Error(w, "Dashboard not found", http.StatusInternalServerError)
		return
	}

	// apply title substitution with HTML escaping to prevent XSS
	title := s.title
	if title == "" {
		title = defaultTitle
	}
	safeTitle := html.EscapeString(title)
	rendered := strings.ReplaceAll(string(content), titlePlaceholder, safeTitle)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err = w.Write([]byte(rendered)); err != nil {
		s.logger.Error("failed to write dashboard response", zap.Error(err))
	}
}

// handleList returns today and the full collection.
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-cache")
	s.writeJSON(w, http.StatusOK, s.snapshot(s.tracker.Habits(), s.today()))
}

// handleAdd appends a habit from {"title": "..."}.
func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	// an empty body is an empty title and fails validation below
	var req addRequest
	if err := decodeBody(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h, err := s.tracker.AddHabit(r.Context(), req.Title)
	if err != nil {
		s.writeMutationError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, h)
}

// handleToggle flips a day (default today) for the habit in the path.
func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if err := decodeBody(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	day := req.Day
	if day == "" {
		day = s.today()
	}
	day, err := habit.ParseDay(day)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h, found, err := s.tracker.ToggleCompletion(r.Context(), r.PathValue("id"), day)
	if err != nil {
		s.writeMutationError(w, r, err)
		return
	}
	if !found {
		s.writeError(w, http.StatusNotFound, "habit not found")
		return
	}
	s.writeJSON(w, http.StatusOK, h)
}

// handleSSE streams collection snapshots via Server-Sent Events.
//
// The handler uses write deadlines to prevent goroutine leaks when clients are
// slow or disconnected. Without deadlines, a blocked Fprintf call would prevent
// the handler from detecting context cancellation or channel closure.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	// check if flushing is supported
	if _, ok := w.(http.Flusher); !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	rc := http.NewResponseController(w)

	// track if write deadlines are supported (may not be for some ResponseWriter impls)
	deadlinesSupported := true

	writeAndFlush := func(resp habitsResponse) error {
		data, err := json.Marshal(resp)
		if err != nil {
			return err
		}
		if deadlinesSupported {
			if err := rc.SetWriteDeadline(time.Now().Add(sseWriteTimeout)); err != nil {
				// deadline not supported by underlying connection, continue without
				s.logger.Debug("sse write deadlines not supported", zap.Error(err))
				deadlinesSupported = false
			}
		}

		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			return err
		}
		return rc.Flush()
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// subscribe before the initial snapshot so no change is missed in between
	ch := s.tracker.Subscribe()
	defer s.tracker.Unsubscribe(ch)
	days := s.watchDays()
	defer s.unwatchDays(days)

	if err := writeAndFlush(s.snapshot(s.tracker.Habits(), s.today())); err != nil {
		return
	}

	for {
		select {
		case habits, ok := <-ch:
			if !ok {
				return
			}
			if err := writeAndFlush(s.snapshot(habits, s.today())); err != nil {
				return
			}

		case day := <-days:
			if err := writeAndFlush(s.snapshot(s.tracker.Habits(), day)); err != nil {
				return
			}

		case <-r.Context().Done():
			// request context is derived from server context via BaseContext,
			// so this fires on both client disconnect AND server shutdown
			return
		}
	}
}

func (s *Server) snapshot(habits habit.Collection, today string) habitsResponse {
	if habits == nil {
		habits = habit.Collection{}
	}
	return habitsResponse{Today: today, Habits: habits}
}

// writeMutationError maps store errors to status codes.
func (s *Server) writeMutationError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *habit.ValidationError
	if errors.As(err, &verr) {
		s.writeError(w, http.StatusBadRequest, verr.Error())
		return
	}

	s.logger.Error("failed to save habits",
		zap.String("request_id", w.Header().Get(requestIDHeader)),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	s.writeError(w, http.StatusInternalServerError, "failed to save habits")
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

// decodeBody decodes a JSON request body. An empty body yields io.EOF.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return io.EOF
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// statusRecorder captures the response status for access logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Flush keeps SSE working through the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// withRequestLog tags each request with an id and logs it on completion.
func (s *Server) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		s.logger.Info("http request",
			zap.String("request_id", requestID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("latency", time.Since(start)),
		)
	})
}
