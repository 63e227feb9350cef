package relay

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"vaultferry/internal/domain"
)

const (
	maxBody = 1 << 20
	maxWait = time.Minute
)

// NameHeader and SeqHeader carry artifact metadata on GET responses.
const (
	NameHeader = "X-Vaultferry-Name"
	SeqHeader  = "X-Vaultferry-Seq"
)

// entry is one stored artifact. Entries are immutable once appended.
type entry struct {
	seq  uint64
	name string
	data []byte
}

// Server is the in-memory store-and-forward relay. It keeps one ordered
// box of artifacts per kind; everything is lost on process exit. The
// relay never inspects artifact bodies, it only stores and hands back
// opaque bytes.
type Server struct {
	logger *slog.Logger
	router *mux.Router

	mu    sync.Mutex
	boxes map[domain.Kind][]entry
	seqs  map[domain.Kind]uint64
	wake  chan struct{} // closed and replaced on every publish
}

// Config holds the parameters for creating a relay server.
type Config struct {
	// Logger receives the access log and operational messages. If nil,
	// logging is disabled.
	Logger *slog.Logger
}

// New creates a relay server ready to serve HTTP.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		logger: logger,
		boxes:  make(map[domain.Kind][]entry),
		seqs:   make(map[domain.Kind]uint64),
		wake:   make(chan struct{}),
	}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	r.HandleFunc("/v1/box/{ext}", s.handlePublish).Methods(http.MethodPost)
	r.HandleFunc("/v1/box/{ext}/next", s.handleNext).Methods(http.MethodGet)
	r.HandleFunc("/v1/box/{ext}/latest", s.handleLatest).Methods(http.MethodGet)
	r.Use(s.accessLog)
	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	io.WriteString(w, "ok\n")
}

func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindFromRequest(r)
	if !ok {
		http.Error(w, "unknown artifact kind", http.StatusNotFound)
		return
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(data) == 0 {
		http.Error(w, "empty body", http.StatusBadRequest)
		return
	}
	name := r.URL.Query().Get("name")
	if name == "" {
		name = uuid.NewString()
	}

	s.mu.Lock()
	s.seqs[kind]++
	seq := s.seqs[kind]
	s.boxes[kind] = append(s.boxes[kind], entry{seq: seq, name: name, data: data})
	close(s.wake)
	s.wake = make(chan struct{})
	s.mu.Unlock()

	s.logger.Info("artifact published",
		"kind", kind,
		"name", name,
		"seq", seq,
		"bytes", len(data),
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(struct {
		Name string `json:"name"`
		Seq  uint64 `json:"seq"`
	}{Name: name, Seq: seq})
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindFromRequest(r)
	if !ok {
		http.Error(w, "unknown artifact kind", http.StatusNotFound)
		return
	}
	after, err := parseAfter(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	wait, err := parseWait(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	deadline := time.Now().Add(wait)
	for {
		s.mu.Lock()
		found, e := firstAfter(s.boxes[kind], after)
		wakeCh := s.wake
		s.mu.Unlock()

		if found {
			writeArtifact(w, e)
			return
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		timer := time.NewTimer(remaining)
		select {
		case <-wakeCh:
			timer.Stop()
		case <-timer.C:
			w.WriteHeader(http.StatusNoContent)
			return
		case <-r.Context().Done():
			timer.Stop()
			return
		}
	}
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindFromRequest(r)
	if !ok {
		http.Error(w, "unknown artifact kind", http.StatusNotFound)
		return
	}

	s.mu.Lock()
	entries := s.boxes[kind]
	s.mu.Unlock()

	if len(entries) == 0 {
		http.Error(w, "no artifact", http.StatusNotFound)
		return
	}
	writeArtifact(w, entries[len(entries)-1])
}

func kindFromRequest(r *http.Request) (domain.Kind, bool) {
	return domain.KindForExt(mux.Vars(r)["ext"])
}

// firstAfter returns the oldest entry with a sequence number greater
// than after.
func firstAfter(entries []entry, after uint64) (bool, entry) {
	for _, e := range entries {
		if e.seq > after {
			return true, e
		}
	}
	return false, entry{}
}

func parseAfter(r *http.Request) (uint64, error) {
	raw := r.URL.Query().Get("after")
	if raw == "" {
		return 0, nil
	}
	after, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad after %q", raw)
	}
	return after, nil
}

func parseWait(r *http.Request) (time.Duration, error) {
	raw := r.URL.Query().Get("wait")
	if raw == "" {
		return 0, nil
	}
	wait, err := time.ParseDuration(raw)
	if err != nil || wait < 0 {
		return 0, fmt.Errorf("bad wait %q", raw)
	}
	if wait > maxWait {
		wait = maxWait
	}
	return wait, nil
}

func writeArtifact(w http.ResponseWriter, e entry) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(NameHeader, e.name)
	w.Header().Set(SeqHeader, strconv.FormatUint(e.seq, 10))
	w.Write(e.data)
}

// statusRecorder captures the status and byte count for the access log.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w}
		start := time.Now()
		next.ServeHTTP(rec, r)
		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"remote", r.RemoteAddr,
			"status", rec.status,
			"bytes", rec.bytes,
			"duration", time.Since(start),
		)
	})
}
