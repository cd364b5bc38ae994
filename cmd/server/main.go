package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/nivasraf/caai-logbook/internal/nats"
	"github.com/nivasraf/caai-logbook/internal/redis"
	"github.com/nivasraf/caai-logbook/internal/storage"
	"github.com/nivasraf/caai-logbook/internal/types"
)

const maxUploadBytes = 32 << 20 // 32 MiB

// JobQueue interface for testability
type JobQueue interface {
	PublishJob(job *types.ConversionJob) error
	Close()
}

// StatusStore interface for testability
type StatusStore interface {
	SetJobStatus(ctx context.Context, status *types.JobStatus) error
	GetJobStatus(ctx context.Context, jobID string) (*types.JobStatus, error)
	Close() error
}

// Server handles logbook uploads and job status queries
type Server struct {
	queue  JobQueue
	status StatusStore
	store  *storage.Storage
}

// NewServer creates a new Server
func NewServer(queue JobQueue, status StatusStore, store *storage.Storage) *Server {
	return &Server{
		queue:  queue,
		status: status,
		store:  store,
	}
}

// Router builds the HTTP routes
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Post("/api/convert", s.handleConvert)
	r.Get("/api/jobs/{id}", s.handleJobStatus)
	r.Get("/api/download/{id}", s.handleDownload)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return r
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// handleConvert accepts a logbook upload and queues a conversion job
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	job := &types.ConversionJob{
		ID:          uuid.New().String(),
		FileName:    header.Filename,
		PilotName:   r.FormValue("pilot_name"),
		SubmittedAt: time.Now().UTC(),
	}

	storedPath, err := s.store.SaveUpload(job.ID, header.Filename, file)
	if err != nil {
		log.Printf("Failed to store upload: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}
	job.StoredPath = storedPath

	status := &types.JobStatus{
		ID:        job.ID,
		State:     types.JobQueued,
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.status.SetJobStatus(r.Context(), status); err != nil {
		log.Printf("Failed to set job status: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to record job")
		return
	}

	if err := s.queue.PublishJob(job); err != nil {
		log.Printf("Failed to publish job: %v", err)
		status.State = types.JobFailed
		status.Error = "failed to queue job"
		status.UpdatedAt = time.Now().UTC()
		if serr := s.status.SetJobStatus(r.Context(), status); serr != nil {
			log.Printf("Failed to mark job failed: %v", serr)
		}
		writeError(w, http.StatusInternalServerError, "failed to queue job")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"id": job.ID})
}

// handleJobStatus reports the state of a conversion job
func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")

	status, err := s.status.GetJobStatus(r.Context(), jobID)
	if err != nil {
		log.Printf("Failed to get job status: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to get job status")
		return
	}
	if status == nil {
		writeError(w, http.StatusNotFound, "unknown job")
		return
	}

	writeJSON(w, http.StatusOK, status)
}

// handleDownload serves the filled form of a finished job
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")

	status, err := s.status.GetJobStatus(r.Context(), jobID)
	if err != nil {
		log.Printf("Failed to get job status: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to get job status")
		return
	}
	if status == nil {
		writeError(w, http.StatusNotFound, "unknown job")
		return
	}
	if status.State != types.JobDone || status.FormPath == "" {
		writeError(w, http.StatusConflict, fmt.Sprintf("job is %s", status.State))
		return
	}

	f, err := s.store.Open(status.FormPath)
	if err != nil {
		log.Printf("Failed to open form file: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to open form")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", jobID+".xlsx"))
	if _, err := io.Copy(w, f); err != nil {
		log.Printf("Failed to send form: %v", err)
	}
}

// parseEnvironment extracts environment variables with defaults
func parseEnvironment() (string, string, string, string) {
	httpAddr := os.Getenv("HTTP_ADDR")
	if httpAddr == "" {
		httpAddr = ":8080"
	}

	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		natsURL = "nats://nats:4222" // Default to Docker service name
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "redis:6379" // Default to Docker service name
	}

	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "./data"
	}

	return httpAddr, natsURL, redisAddr, dataDir
}

func main() {
	httpAddr, natsURL, redisAddr, dataDir := parseEnvironment()

	store := storage.New(dataDir)
	if err := store.Start(); err != nil {
		log.Printf("Failed to prepare storage: %v", err)
		os.Exit(1)
	}

	natsClient, err := nats.New(natsURL)
	if err != nil {
		log.Printf("Failed to create NATS client: %v", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(redisAddr)
	if err != nil {
		log.Printf("Failed to create Redis client: %v", err)
		natsClient.Close()
		os.Exit(1)
	}

	server := NewServer(natsClient, redisClient, store)
	httpServer := &http.Server{
		Addr:              httpAddr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Listening on %s", httpAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("HTTP server failed: %v", err)
		}
	}()

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Printf("HTTP shutdown failed: %v", err)
	}
	natsClient.Close()
	if err := redisClient.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "error closing redisClient: %v\n", err)
	}
}
