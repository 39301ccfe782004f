package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qaanoonAI/legal-ocr-service/internal/auth"
)

func deleteComparisonRequest(claims *auth.Claims) *http.Request {
	req := httptest.NewRequest(http.MethodDelete, "/api/comparison/some-id", nil)
	if claims != nil {
		req = req.WithContext(auth.ContextWithClaims(req.Context(), claims))
	}
	return req
}

func TestDeleteComparisonRequiresAuthentication(t *testing.T) {
	h := &Handler{}
	rec := httptest.NewRecorder()

	h.DeleteComparison(rec, deleteComparisonRequest(nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDeleteComparisonRequiresAdminRole(t *testing.T) {
	h := &Handler{}
	rec := httptest.NewRecorder()

	h.DeleteComparison(rec, deleteComparisonRequest(&auth.Claims{Username: "evaluator", Role: "user"}))

	assert.Equal(t, http.StatusForbidden, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
}

func TestDeleteComparisonWithoutPersistence(t *testing.T) {
	h := &Handler{}
	rec := httptest.NewRecorder()

	h.DeleteComparison(rec, deleteComparisonRequest(&auth.Claims{Username: "evaluator", Role: "admin"}))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
