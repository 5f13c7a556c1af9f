package httpadapter

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/kirillkom/emotion-tutor/internal/config"
	"github.com/kirillkom/emotion-tutor/internal/core/domain"
	"github.com/kirillkom/emotion-tutor/internal/core/ports"
	"github.com/kirillkom/emotion-tutor/internal/observability/metrics"
)

type Router struct {
	ingest   ports.DocumentIngestor
	detector ports.EmotionDetector
	tutor    ports.TutorService

	uploadMaxBytes   int64
	rateLimitRPS     float64
	rateLimitBurst   int
	maxInFlight      int
	backpressureWait time.Duration

	metrics *metrics.HTTPServerMetrics
	openapi *openapi3.T
}

func NewRouter(
	cfg config.Config,
	ingest ports.DocumentIngestor,
	detector ports.EmotionDetector,
	tutor ports.TutorService,
) *Router {
	return &Router{
		ingest:           ingest,
		detector:         detector,
		tutor:            tutor,
		uploadMaxBytes:   cfg.UploadMaxBytes,
		rateLimitRPS:     cfg.APIRateLimitRPS,
		rateLimitBurst:   cfg.APIRateLimitBurst,
		maxInFlight:      cfg.APIMaxInFlight,
		backpressureWait: cfg.APIBackpressureWait,
	}
}

// WithMetrics enables request instrumentation and the /metrics endpoint.
func (rt *Router) WithMetrics(m *metrics.HTTPServerMetrics) *Router {
	rt.metrics = m
	return rt
}

// WithOpenAPI serves doc at /api/openapi.json.
func (rt *Router) WithOpenAPI(doc *openapi3.T) *Router {
	rt.openapi = doc
	return rt
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/api/upload-pdf", rt.uploadPDF)
	mux.HandleFunc("/api/detect-emotion", rt.detectEmotion)
	mux.HandleFunc("/api/ask", rt.ask)
	mux.HandleFunc("/api/openapi.json", rt.openAPIDocument)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, rt.maxInFlight, rt.backpressureWait)
	handler = rateLimitMiddleware(handler, rt.rateLimitRPS, rt.rateLimitBurst)
	handler = corsMiddleware(handler)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(handler)
	}
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) uploadPDF(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	rt.limitBody(w, r)

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		rt.recordUpload(nil, err)
		writeError(w, r, formFileError("upload pdf", domain.ErrNoFile, err))
		return
	}
	defer file.Close()

	corpus, err := rt.ingest.Upload(r.Context(), fileHeader.Filename, file)
	rt.recordUpload(corpus, err)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "PDF processed"})
}

func (rt *Router) detectEmotion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	rt.limitBody(w, r)

	file, _, err := r.FormFile("image")
	if err != nil {
		writeError(w, r, formFileError("detect emotion", domain.ErrNoImage, err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, r, domain.WrapError(domain.ErrInvalidInput, "read image", err))
		return
	}

	emotion, err := rt.detector.Detect(r.Context(), data)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordEmotion(emotion)
	}

	writeJSON(w, http.StatusOK, map[string]string{"emotion": string(emotion)})
}

func (rt *Router) ask(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Question string `json:"question"`
		Emotion  string `json:"emotion"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, domain.WrapError(domain.ErrInvalidInput, "decode ask request", errors.Join(domain.ErrInvalidJSON, err)))
		return
	}

	answer, err := rt.tutor.Ask(r.Context(), req.Question, req.Emotion)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, answer)
}

func (rt *Router) openAPIDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if rt.openapi == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	writeJSON(w, http.StatusOK, rt.openapi)
}

func (rt *Router) limitBody(w http.ResponseWriter, r *http.Request) {
	if rt.uploadMaxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, rt.uploadMaxBytes)
	}
}

func (rt *Router) recordUpload(corpus *domain.Corpus, err error) {
	if rt.metrics != nil {
		rt.metrics.RecordUpload(corpus, err)
	}
}

// formFileError classifies a multipart lookup failure. Oversized bodies keep
// their own error so they are not reported as a missing field.
func formFileError(operation string, missing error, err error) error {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return domain.WrapError(domain.ErrInvalidInput, operation, errors.Join(errPayloadTooLarge, err))
	}
	return domain.WrapError(domain.ErrInvalidInput, operation, errors.Join(missing, err))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Debug("write_json_failed", "error", err)
	}
}
