package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/qaanoonAI/legal-ocr-service/internal/backend"
	"github.com/qaanoonAI/legal-ocr-service/internal/compare"
	"github.com/qaanoonAI/legal-ocr-service/internal/db"
	"github.com/qaanoonAI/legal-ocr-service/internal/extract"
	"github.com/qaanoonAI/legal-ocr-service/internal/models"
	"github.com/qaanoonAI/legal-ocr-service/internal/services"
	"github.com/qaanoonAI/legal-ocr-service/internal/storage"
)

const (
	MaxUploadSize = 50 * 1024 * 1024 // 50MB, legal PDFs run long
	Version       = "1.0.0"
)

// Handler handles HTTP requests for document extraction and comparison
type Handler struct {
	config       *models.Config
	registry     *backend.Registry
	orchestrator *compare.Orchestrator
	extractor    *extract.SmartExtractor
	validator    *services.ReportValidator
}

// NewHandler creates a new API handler
func NewHandler(config *models.Config, registry *backend.Registry, orchestrator *compare.Orchestrator, extractor *extract.SmartExtractor) *Handler {
	return &Handler{
		config:       config,
		registry:     registry,
		orchestrator: orchestrator,
		extractor:    extractor,
		validator:    services.NewReportValidator(),
	}
}

// SetupRoutes configures the HTTP routes
func (h *Handler) SetupRoutes() *mux.Router {
	router := mux.NewRouter()

	// Main endpoints
	router.HandleFunc("/api/compare", h.CompareDocument).Methods("POST")
	router.HandleFunc("/api/extract", h.ExtractDocument).Methods("POST")

	// Stored reports
	router.HandleFunc("/api/comparisons", h.ListComparisons).Methods("GET")
	router.HandleFunc("/api/comparison/{id}", h.GetComparison).Methods("GET")
	router.HandleFunc("/api/comparison/{id}", h.DeleteComparison).Methods("DELETE")

	// Backend inventory
	router.HandleFunc("/api/backends", h.GetBackends).Methods("GET")

	// Health check
	router.HandleFunc("/health", h.Health).Methods("GET")

	return router
}

// HealthResponse reports service and dependency status
type HealthResponse struct {
	Status      string            `json:"status"`
	Version     string            `json:"version"`
	Timestamp   string            `json:"timestamp"`
	Uptime      string            `json:"uptime"`
	Memory      MemoryStats       `json:"memory"`
	Tesseract   ServiceStatus     `json:"tesseract"`
	Poppler     ServiceStatus     `json:"poppler"`
	ImageMagick ServiceStatus     `json:"imageMagick"`
	Database    ServiceStatus     `json:"database"`
	Storage     ServiceStatus     `json:"storage"`
	Backends    []string          `json:"backends"`
	Unavailable map[string]string `json:"unavailable,omitempty"`
}

// MemoryStats represents memory usage statistics
type MemoryStats struct {
	Allocated string `json:"allocated"`
	Total     string `json:"total"`
	System    string `json:"system"`
}

// ServiceStatus represents the status of a service dependency
type ServiceStatus struct {
	Available bool   `json:"available"`
	Version   string `json:"version,omitempty"`
	Error     string `json:"error,omitempty"`
}

var startTime = time.Now()

// Health endpoint - enhanced for monitoring
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "healthy",
		Version:   Version,
		Timestamp: time.Now().Format(time.RFC3339),
		Uptime:    time.Since(startTime).String(),
		Memory: MemoryStats{
			Allocated: fmt.Sprintf("%.2f MB", float64(m.Alloc)/1024/1024),
			Total:     fmt.Sprintf("%.2f MB", float64(m.TotalAlloc)/1024/1024),
			System:    fmt.Sprintf("%.2f MB", float64(m.Sys)/1024/1024),
		},
		Tesseract:   checkBinary("tesseract", "--version"),
		Poppler:     checkBinary("pdftoppm", "-v"),
		ImageMagick: checkImageMagick(),
		Database:    checkDatabase(),
		Storage:     checkStorage(),
		Backends:    h.registry.Names(),
		Unavailable: h.registry.Unavailable(),
	}

	// native extraction always works; no backends at all means something
	// is badly wrong
	if len(response.Backends) == 0 {
		response.Status = "degraded"
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	json.NewEncoder(w).Encode(response)
}

// checkBinary probes an external collaborator and captures its version line
func checkBinary(name string, versionFlag string) ServiceStatus {
	cmd := exec.Command(name, versionFlag)
	output, err := cmd.CombinedOutput()
	if err != nil && len(output) == 0 {
		return ServiceStatus{
			Available: false,
			Error:     name + " not found or not executable",
		}
	}

	version := "unknown"
	lines := strings.Split(string(output), "\n")
	if len(lines) > 0 && strings.TrimSpace(lines[0]) != "" {
		version = strings.TrimSpace(lines[0])
	}

	return ServiceStatus{
		Available: true,
		Version:   version,
	}
}

func checkImageMagick() ServiceStatus {
	if _, err := exec.LookPath("magick"); err == nil {
		return checkBinary("magick", "-version")
	}
	return checkBinary("convert", "-version")
}

func checkDatabase() ServiceStatus {
	if db.Pool == nil {
		return ServiceStatus{
			Available: false,
			Error:     "database pool not initialized",
		}
	}
	return ServiceStatus{
		Available: true,
		Version:   "PostgreSQL",
	}
}

func checkStorage() ServiceStatus {
	if storage.Client == nil {
		return ServiceStatus{
			Available: false,
			Error:     "storage client not initialized",
		}
	}
	return ServiceStatus{
		Available: true,
		Version:   "MinIO S3",
	}
}

// CompareResponse wraps a comparison report for the API
type CompareResponse struct {
	Success     bool                       `json:"success"`
	ReportID    string                     `json:"report_id,omitempty"`
	Report      *models.ComparisonReport   `json:"report,omitempty"`
	Validation  *services.ValidationResult `json:"validation,omitempty"`
	DocumentURL string                     `json:"document_url,omitempty"`
	Error       string                     `json:"error,omitempty"`
}

// CompareDocument runs the requested backends over an uploaded PDF
func (h *Handler) CompareDocument(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	pdfPath, filename, cleanup, ok := h.receiveUpload(w, r)
	if !ok {
		return
	}
	defer cleanup()

	pages, err := parsePages(r.FormValue("pages"))
	if err != nil {
		h.sendError(w, http.StatusBadRequest, err.Error())
		return
	}

	var backends []string
	if raw := strings.TrimSpace(r.FormValue("backends")); raw != "" {
		backends = strings.Split(raw, ",")
		for i := range backends {
			backends[i] = strings.TrimSpace(backends[i])
		}
	}

	parallel := h.config.Comparison.Parallel
	if raw := r.FormValue("parallel"); raw != "" {
		parallel = raw == "true" || raw == "1"
	}

	dpi := h.config.Comparison.DPI
	if raw := r.FormValue("dpi"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			dpi = v
		}
	}

	report, err := h.orchestrator.Compare(r.Context(), compare.Request{
		PDFPath:  pdfPath,
		Pages:    pages,
		Backends: backends,
		Parallel: parallel,
		DPI:      dpi,
	})
	if err != nil {
		h.sendError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	report.Metadata.PDFPath = filename

	response := CompareResponse{
		Success:    true,
		Report:     report,
		Validation: h.validator.Validate(report),
	}
	h.persistComparison(r, report, pdfPath, filename, &response)

	json.NewEncoder(w).Encode(response)
}

// persistComparison archives the PDF and report when storage and database
// are configured; both are best-effort
func (h *Handler) persistComparison(r *http.Request, report *models.ComparisonReport, pdfPath, filename string, response *CompareResponse) {
	ctx := r.Context()

	var objectPath string
	if storage.Client != nil {
		f, err := os.Open(pdfPath)
		if err == nil {
			defer f.Close()
			if info, err := f.Stat(); err == nil {
				stored := uuid.New().String() + "_" + filename
				objectPath, err = storage.UploadDocument(ctx, stored, f, info.Size())
				if err != nil {
					log.Warn().Err(err).Msg("document archival failed")
				}
			}
		}
	}

	if db.Pool == nil {
		return
	}

	reportJSON, err := json.Marshal(report)
	if err != nil {
		log.Warn().Err(err).Msg("report serialization failed, not persisting")
		return
	}

	record := &db.Comparison{
		PDFName:     filename,
		PDFObject:   objectPath,
		Backends:    report.Metadata.BackendsCompared,
		Parallel:    report.Metadata.ParallelExecution,
		TotalTime:   report.Metadata.TotalComparisonTime,
		BestOverall: report.Summary.Statistics.BestOverall,
		Report:      reportJSON,
	}
	if err := db.SaveComparison(ctx, record); err != nil {
		log.Warn().Err(err).Msg("comparison persistence failed")
		return
	}
	response.ReportID = record.ID.String()

	if storage.Client != nil {
		if _, err := storage.UploadReport(ctx, record.ID.String(), reportJSON); err != nil {
			log.Warn().Err(err).Msg("report archival failed")
		}
	}
}

// ExtractResponse wraps a smart extraction result
type ExtractResponse struct {
	Success  bool                   `json:"success"`
	Document *models.DocumentResult `json:"document,omitempty"`
	Stats    *extract.Stats         `json:"stats,omitempty"`
	Error    string                 `json:"error,omitempty"`
}

// ExtractDocument runs the smart per-page pipeline over an uploaded PDF
func (h *Handler) ExtractDocument(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	pdfPath, _, cleanup, ok := h.receiveUpload(w, r)
	if !ok {
		return
	}
	defer cleanup()

	pages, err := parsePages(r.FormValue("pages"))
	if err != nil {
		h.sendError(w, http.StatusBadRequest, err.Error())
		return
	}

	document, stats, err := h.extractor.Extract(r.Context(), pdfPath, pages)
	if err != nil {
		h.sendError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	json.NewEncoder(w).Encode(ExtractResponse{
		Success:  true,
		Document: document,
		Stats:    stats,
	})
}

// BackendsResponse lists the usable backends and why the rest are not
type BackendsResponse struct {
	Available   []string          `json:"available"`
	Unavailable map[string]string `json:"unavailable"`
}

// GetBackends reports the adapter inventory
func (h *Handler) GetBackends(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(BackendsResponse{
		Available:   h.registry.Names(),
		Unavailable: h.registry.Unavailable(),
	})
}

// receiveUpload stores the multipart PDF in a temp file. On failure it has
// already written the error response.
func (h *Handler) receiveUpload(w http.ResponseWriter, r *http.Request) (path, filename string, cleanup func(), ok bool) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return "", "", nil, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.sendError(w, http.StatusBadRequest, "missing 'file' field")
		return "", "", nil, false
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".pdf") {
		h.sendError(w, http.StatusBadRequest, "only PDF uploads are supported")
		return "", "", nil, false
	}

	tmp, err := os.CreateTemp("", "upload-*.pdf")
	if err != nil {
		h.sendError(w, http.StatusInternalServerError, "could not buffer upload")
		return "", "", nil, false
	}
	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		h.sendError(w, http.StatusInternalServerError, "could not buffer upload")
		return "", "", nil, false
	}
	tmp.Close()

	return tmp.Name(), filepath.Base(header.Filename), func() { os.Remove(tmp.Name()) }, true
}

// parsePages parses "0,2,5" into page indices; empty means all pages
func parsePages(raw string) ([]int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	pages := make([]int, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || v < 0 {
			return nil, fmt.Errorf("invalid page index %q", part)
		}
		pages = append(pages, v)
	}
	return pages, nil
}

// sendError writes a JSON error response
func (h *Handler) sendError(w http.ResponseWriter, statusCode int, message string) {
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error":   message,
	})
}
