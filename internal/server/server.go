// Package server exposes ingest and chat over a JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"docchat/internal/service"
)

// NotReadyAnswer is returned for chat requests before any document has been
// indexed. The guard lives here, at the boundary: the pipeline is never
// invoked for an unready knowledge base.
const NotReadyAnswer = "Please upload documents first, then build the knowledge base."

// ChatRunner is the server-facing subset of the answer pipeline.
type ChatRunner interface {
	Run(ctx context.Context, sessionID, userMessage string) (string, error)
}

// Knowledge is the server-facing subset of the knowledge service.
type Knowledge interface {
	IngestUploads(ctx context.Context, uploads []service.Upload) (service.IngestReport, error)
	Ready() bool
	Count() int
}

// Server serves the chat and ingestion API.
type Server struct {
	pipeline  ChatRunner
	knowledge Knowledge
	addr      string
	log       *zap.Logger
}

func New(pipeline ChatRunner, knowledge Knowledge, addr string, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{pipeline: pipeline, knowledge: knowledge, addr: addr, log: log}
}

// Start runs the server until the context is cancelled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()
	s.log.Info("server listening", zap.String("addr", s.addr))
	err := srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Handler builds the route table. Exposed separately for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/chat", s.handleChat)
	mux.HandleFunc("/api/ingest", s.handleIngest)
	mux.HandleFunc("/api/ready", s.handleReady)
	mux.HandleFunc("/api/healthz", s.handleHealthz)
	return s.logRequests(mux)
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type chatResponse struct {
	SessionID string `json:"session_id"`
	Answer    string `json:"answer"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.Message == "" {
		http.Error(w, "message is required", http.StatusBadRequest)
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}
	if !s.knowledge.Ready() {
		writeJSON(w, http.StatusOK, chatResponse{SessionID: req.SessionID, Answer: NotReadyAnswer})
		return
	}
	answer, err := s.pipeline.Run(r.Context(), req.SessionID, req.Message)
	if err != nil {
		s.log.Error("chat turn rejected", zap.Error(err))
		http.Error(w, "could not process message", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{SessionID: req.SessionID, Answer: answer})
}

type ingestResponse struct {
	Documents int               `json:"documents"`
	Chunks    int               `json:"chunks"`
	Failures  []service.Failure `json:"failures,omitempty"`
	Summary   string            `json:"summary,omitempty"`
	Error     string            `json:"error,omitempty"`
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, "invalid multipart body", http.StatusBadRequest)
		return
	}
	var uploads []service.Upload
	for _, headers := range r.MultipartForm.File {
		for _, header := range headers {
			f, err := header.Open()
			if err != nil {
				http.Error(w, "could not read upload", http.StatusBadRequest)
				return
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				http.Error(w, "could not read upload", http.StatusBadRequest)
				return
			}
			uploads = append(uploads, service.Upload{Name: header.Filename, Data: data})
		}
	}
	report, err := s.knowledge.IngestUploads(r.Context(), uploads)
	resp := ingestResponse{
		Documents: report.Documents,
		Chunks:    report.Chunks,
		Failures:  report.Failures,
		Summary:   report.Summary,
	}
	status := http.StatusOK
	if err != nil {
		// Partial counts still go out so the caller knows what made it in.
		resp.Error = err.Error()
		status = http.StatusBadGateway
	}
	writeJSON(w, status, resp)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ready":     s.knowledge.Ready(),
		"documents": s.knowledge.Count(),
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
