// Package httpapi serves the browser terminal and the orchestration API.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"pkt.systems/agentnexus/internal/logx"
	"pkt.systems/agentnexus/internal/session"
	"pkt.systems/agentnexus/internal/termio"
	"pkt.systems/agentnexus/internal/version"
	"pkt.systems/agentnexus/schema"
)

const (
	maxInputMessage = 4096
	writeWait       = 10 * time.Second
)

// SessionOpener opens terminal sessions and reports how many are open.
type SessionOpener interface {
	Open(ctx context.Context, transport schema.Transport, remote string, out termio.Surface) *session.Session
	Active() int
}

// OrchestrationStore records completed orchestrations.
type OrchestrationStore interface {
	Complete(record schema.Orchestration) (schema.Orchestration, error)
	LastCompleted() (schema.Orchestration, bool)
}

// Server serves the HTTP terminal and API.
type Server struct {
	cfg      Config
	sessions SessionOpener
	records  OrchestrationStore
	upgrader websocket.Upgrader
	basePath string
	assets   fs.FS
	index    []byte
	indexErr error
}

// NewServer constructs an HTTP server. records may be nil, in which case the
// orchestration API answers 404.
func NewServer(cfg Config, sessions SessionOpener, records OrchestrationStore) *Server {
	s := &Server{
		cfg:      cfg,
		sessions: sessions,
		records:  records,
		basePath: cfg.mountPath(),
		assets:   terminalAssets(),
	}
	s.index, s.indexErr = renderIndex(s.assets, cfg.baseHref())
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

// Handler returns an http.Handler for the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.Handle("/assets/", http.StripPrefix("/assets/", http.FileServer(http.FS(s.assets))))
	mux.HandleFunc("/ws", s.handleTerminal)

	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/orchestrations", s.handleOrchestrations)
	mux.HandleFunc("/api/orchestrations/last", s.handleLastOrchestration)

	handler := withRequestLogging(mux)
	if s.basePath == "" {
		return handler
	}
	prefix := s.basePath
	root := http.NewServeMux()
	root.Handle(prefix+"/", http.StripPrefix(prefix, handler))
	root.HandleFunc(prefix, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != prefix {
			http.NotFound(w, r)
			return
		}
		http.Redirect(w, r, prefix+"/", http.StatusTemporaryRedirect)
	})
	return root
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if s.indexErr != nil {
		logx.Ctx(r.Context()).Error("http index unavailable", "err", s.indexErr)
		http.Error(w, "index not found", http.StatusInternalServerError)
		return
	}
	http.ServeContent(w, r, indexFile, time.Time{}, bytes.NewReader(s.index))
}

// handleTerminal bridges a websocket to a terminal session. Every frame the
// browser sends is raw terminal input; session output is sent back as binary
// frames.
func (s *Server) handleTerminal(w http.ResponseWriter, r *http.Request) {
	log := logx.Ctx(r.Context()).With("remote", clientIP(r))
	if s.sessions == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("terminal unavailable"))
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("web terminal upgrade failed", "err", err)
		return
	}
	conn.SetReadLimit(maxInputMessage)

	input, feed := io.Pipe()
	go pumpInput(conn, feed)

	out := termio.NewWriterSurface(&socketWriter{conn: conn})
	term := s.sessions.Open(r.Context(), schema.TransportWeb, clientIP(r), out)
	log.Info("web terminal opened", "session", term.ID())
	if err := term.Serve(input); err != nil {
		log.Warn("web terminal failed", "err", err)
	}
	term.Dispose()
	_ = input.Close()

	closing := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended")
	_ = conn.WriteControl(websocket.CloseMessage, closing, time.Now().Add(writeWait))
	_ = conn.Close()
	log.Info("web terminal closed", "session", term.ID())
}

// pumpInput copies websocket frames into feed until the socket closes.
func pumpInput(conn *websocket.Conn, feed *io.PipeWriter) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			_ = feed.CloseWithError(io.EOF)
			return
		}
		if _, err := feed.Write(data); err != nil {
			return
		}
	}
}

// socketWriter sends each write as one binary frame. Callers serialise writes.
type socketWriter struct {
	conn *websocket.Conn
}

func (w *socketWriter) Write(p []byte) (int, error) {
	_ = w.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := w.conn.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	parsed, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if strings.EqualFold(parsed.Host, r.Host) {
		return true
	}
	for _, allowed := range s.cfg.AllowedOrigins {
		if strings.EqualFold(strings.TrimRight(strings.TrimSpace(allowed), "/"), origin) {
			return true
		}
	}
	return false
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	active := 0
	if s.sessions != nil {
		active = s.sessions.Active()
	}
	payload := map[string]any{
		"version":         version.Current(),
		"active_sessions": active,
	}
	if s.records != nil {
		if record, ok := s.records.LastCompleted(); ok {
			payload["last_orchestration"] = record.Name
		}
	}
	writeJSON(w, http.StatusOK, payload)
}

type orchestrationRequest struct {
	ID    schema.OrchestrationID `json:"id"`
	Name  string                 `json:"name"`
	Agent schema.AgentName       `json:"agent"`
	Brief string                 `json:"brief"`
	Chain []schema.ChainStep     `json:"chain"`
}

func (s *Server) handleOrchestrations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.records == nil {
		http.NotFound(w, r)
		return
	}
	log := logx.Ctx(r.Context()).With("remote", clientIP(r))
	var payload orchestrationRequest
	if err := decodeJSON(r.Body, &payload); err != nil {
		log.Warn("http orchestration decode failed", "err", err)
		writeError(w, http.StatusBadRequest, err)
		return
	}
	record, err := s.records.Complete(schema.Orchestration{
		ID:    payload.ID,
		Name:  payload.Name,
		Agent: payload.Agent,
		Brief: payload.Brief,
		Chain: payload.Chain,
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, schema.ErrInvalidOrchestration) {
			status = http.StatusBadRequest
		}
		log.Warn("http orchestration rejected", "err", err)
		writeError(w, status, err)
		return
	}
	logx.WithOrchestration(log, record).Info("http orchestration recorded")
	writeJSON(w, http.StatusCreated, record)
}

func (s *Server) handleLastOrchestration(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.records == nil {
		writeError(w, http.StatusNotFound, schema.ErrNoOrchestration)
		return
	}
	record, ok := s.records.LastCompleted()
	if !ok {
		writeError(w, http.StatusNotFound, schema.ErrNoOrchestration)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func decodeJSON(body io.Reader, target any) error {
	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	data, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]any{"error": err.Error()})
}
