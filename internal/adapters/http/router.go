package httpadapter

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sjlee-dev/ragdocs/internal/core/ports"
	"github.com/sjlee-dev/ragdocs/internal/observability/metrics"
)

const userIDHeader = "X-User-Id"

// RouterConfig tunes the traffic gates in front of the handlers.
type RouterConfig struct {
	MaxUploadBytes  int64
	RateLimitRPS    float64
	RateLimitBurst  int
	MaxInFlight     int
	BackpressureMax time.Duration
}

type Router struct {
	ingest      ports.DocumentIngestor
	documents   ports.DocumentReader
	collections ports.CollectionManager
	ai          ports.AiProcessor
	metrics     *metrics.HTTPServerMetrics
	cfg         RouterConfig
}

func NewRouter(
	ingest ports.DocumentIngestor,
	documents ports.DocumentReader,
	collections ports.CollectionManager,
	ai ports.AiProcessor,
	m *metrics.HTTPServerMetrics,
	cfg RouterConfig,
) *Router {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10 << 20
	}
	if cfg.BackpressureMax <= 0 {
		cfg.BackpressureMax = 2 * time.Second
	}
	return &Router{
		ingest:      ingest,
		documents:   documents,
		collections: collections,
		ai:          ai,
		metrics:     m,
		cfg:         cfg,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/collections", rt.collectionsRoot)
	mux.HandleFunc("/v1/collections/", rt.collectionsSub)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware("api", handler)
	}
	handler = backpressureMiddleware(handler, rt.cfg.MaxInFlight, rt.cfg.BackpressureMax)
	handler = rateLimitMiddleware(handler, rt.cfg.RateLimitRPS, rt.cfg.RateLimitBurst)
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

// healthz reports the API process and its dependency on the AI service.
// The endpoint itself always answers 200: a degraded AI service must not
// make load balancers kill an otherwise healthy process.
func (rt *Router) healthz(w http.ResponseWriter, r *http.Request) {
	aiStatus := "down"
	if rt.ai != nil && rt.ai.HealthCheck(r.Context()) {
		aiStatus = "up"
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":     "ok",
		"ai_service": aiStatus,
	})
}

func (rt *Router) collectionsRoot(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		rt.createCollection(w, r)
	case http.MethodGet:
		rt.listCollections(w, r)
	default:
		writeMethodNotAllowed(w)
	}
}

// collectionsSub dispatches /v1/collections/{id} and
// /v1/collections/{id}/documents.
func (rt *Router) collectionsSub(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/collections/")
	idPart, tail, _ := strings.Cut(rest, "/")
	collectionID, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil || collectionID <= 0 {
		writeErrorCode(w, http.StatusBadRequest, "COMM_02", "collection id must be a positive integer")
		return
	}

	switch tail {
	case "":
		if r.Method != http.MethodDelete {
			writeMethodNotAllowed(w)
			return
		}
		rt.deleteCollection(w, r, collectionID)
	case "documents":
		switch r.Method {
		case http.MethodPost:
			rt.uploadDocument(w, r, collectionID)
		case http.MethodGet:
			rt.listDocuments(w, r, collectionID)
		default:
			writeMethodNotAllowed(w)
		}
	default:
		writeErrorCode(w, http.StatusNotFound, "COMM_02", "unknown resource")
	}
}

func (rt *Router) createCollection(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorCode(w, http.StatusBadRequest, "COMM_02", "invalid json body")
		return
	}

	collection, err := rt.collections.Create(r.Context(), userID, req.Name, req.Description)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, collection)
}

func (rt *Router) listCollections(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	collections, err := rt.collections.List(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"collections": collections})
}

func (rt *Router) deleteCollection(w http.ResponseWriter, r *http.Request, collectionID int64) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	if err := rt.collections.Delete(r.Context(), userID, collectionID); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request, collectionID int64) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	// Cap the whole multipart body slightly above the per-file limit to
	// leave room for form overhead; the ingestor enforces the exact rule.
	r.Body = http.MaxBytesReader(w, r.Body, rt.cfg.MaxUploadBytes+1<<20)

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeErrorCode(w, http.StatusRequestEntityTooLarge, "COMM_02", "upload body exceeds the size limit")
			return
		}
		writeErrorCode(w, http.StatusBadRequest, "COMM_02", "multipart field 'file' is required")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		writeErrorCode(w, http.StatusBadRequest, "COMM_02", "failed to read uploaded file")
		return
	}

	doc, err := rt.ingest.Upload(r.Context(), ports.UploadInput{
		UserID:       userID,
		CollectionID: collectionID,
		Filename:     fileHeader.Filename,
		Content:      content,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordUpload(string(doc.Status), doc.FileSize)
	}
	writeJSON(w, http.StatusCreated, doc)
}

func (rt *Router) listDocuments(w http.ResponseWriter, r *http.Request, collectionID int64) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	docs, err := rt.documents.ListByCollection(r.Context(), userID, collectionID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

// callerID reads the authenticated user from the gateway-injected header.
func callerID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := strings.TrimSpace(r.Header.Get(userIDHeader))
	if raw == "" {
		writeErrorCode(w, http.StatusUnauthorized, "AUTH_004", "missing "+userIDHeader+" header")
		return 0, false
	}
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || userID <= 0 {
		writeErrorCode(w, http.StatusUnauthorized, "AUTH_004", "invalid "+userIDHeader+" header")
		return 0, false
	}
	return userID, true
}

func writeMethodNotAllowed(w http.ResponseWriter) {
	writeErrorCode(w, http.StatusMethodNotAllowed, "COMM_02", "method not allowed")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
