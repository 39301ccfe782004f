package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/qaanoonAI/legal-ocr-service/internal/auth"
	"github.com/qaanoonAI/legal-ocr-service/internal/db"
	"github.com/qaanoonAI/legal-ocr-service/internal/storage"
)

// ListComparisons returns recent stored runs, newest first
func (h *Handler) ListComparisons(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if db.Pool == nil {
		h.sendError(w, http.StatusServiceUnavailable, "persistence not configured")
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= 500 {
			limit = v
		}
	}

	comparisons, err := db.ListComparisons(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("listing comparisons failed")
		h.sendError(w, http.StatusInternalServerError, "could not list comparisons")
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":     true,
		"comparisons": comparisons,
		"count":       len(comparisons),
	})
}

// GetComparison returns one stored run with its full report and, when the
// original PDF was archived, a presigned download link
func (h *Handler) GetComparison(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if db.Pool == nil {
		h.sendError(w, http.StatusServiceUnavailable, "persistence not configured")
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid comparison id")
		return
	}

	comparison, err := db.GetComparison(r.Context(), id)
	if err != nil {
		h.sendError(w, http.StatusNotFound, "comparison not found")
		return
	}

	response := map[string]interface{}{
		"success":    true,
		"comparison": comparison,
	}

	if storage.Client != nil && comparison.PDFObject != "" {
		url, err := storage.GetPresignedURL(r.Context(), comparison.PDFObject)
		if err != nil {
			log.Warn().Err(err).Msg("presigned URL generation failed")
		} else {
			response["document_url"] = url
		}
	}

	json.NewEncoder(w).Encode(response)
}

// DeleteComparison removes a stored run and its archived objects. Admin only.
func (h *Handler) DeleteComparison(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	claims, err := auth.GetClaimsFromContext(r.Context())
	if err != nil {
		h.sendError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if claims.Role != "admin" {
		h.sendError(w, http.StatusForbidden, "admin role required")
		return
	}

	if db.Pool == nil {
		h.sendError(w, http.StatusServiceUnavailable, "persistence not configured")
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid comparison id")
		return
	}

	comparison, err := db.GetComparison(r.Context(), id)
	if err != nil {
		h.sendError(w, http.StatusNotFound, "comparison not found")
		return
	}

	if err := db.DeleteComparison(r.Context(), id); err != nil {
		log.Error().Err(err).Str("id", id.String()).Msg("comparison deletion failed")
		h.sendError(w, http.StatusInternalServerError, "could not delete comparison")
		return
	}

	// archived objects go best-effort; the database row is already gone
	if storage.Client != nil {
		if comparison.PDFObject != "" {
			if err := storage.DeleteObject(r.Context(), comparison.PDFObject); err != nil {
				log.Warn().Err(err).Str("object", comparison.PDFObject).Msg("document removal failed")
			}
		}
		reportObject := fmt.Sprintf("reports/%d/%02d/%s.json",
			comparison.CreatedAt.Year(), comparison.CreatedAt.Month(), id)
		if err := storage.DeleteObject(r.Context(), reportObject); err != nil {
			log.Warn().Err(err).Str("object", reportObject).Msg("report removal failed")
		}
	}

	log.Info().Str("id", id.String()).Str("user", claims.Username).Msg("comparison deleted")

	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"id":      id.String(),
	})
}
