package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackendOutcomeJSON(t *testing.T) {
	failed, err := json.Marshal(BackendOutcome{Err: "engine unavailable"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"engine unavailable"}`, string(failed))

	ok, err := json.Marshal(BackendOutcome{Result: &DocumentResult{Backend: "native", DocumentType: "regulation"}})
	require.NoError(t, err)
	assert.Contains(t, string(ok), `"backend":"native"`)
	assert.NotContains(t, string(ok), `"error"`)

	var roundTrip BackendOutcome
	require.NoError(t, json.Unmarshal(failed, &roundTrip))
	assert.True(t, roundTrip.Failed())
	assert.Equal(t, "engine unavailable", roundTrip.Err)

	require.NoError(t, json.Unmarshal(ok, &roundTrip))
	assert.False(t, roundTrip.Failed())
	assert.Equal(t, "native", roundTrip.Result.Backend)
}

func TestCountWords(t *testing.T) {
	assert.Zero(t, CountWords(""))
	assert.Zero(t, CountWords("   \n\t "))
	assert.Equal(t, 3, CountWords("نظام المحاكم التجارية"))
	assert.Equal(t, 4, CountWords("  spaced   out\ttokens\nhere  "))
}
