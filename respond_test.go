package main

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	tests := []struct {
		name       string
		v          any
		wantStatus int
		wantBody   map[string]any
	}{
		{"encodable", map[string]float64{"x": 1.5}, http.StatusOK, map[string]any{"x": 1.5}},
		{"infinite value", map[string]float64{"x": math.Inf(1)}, http.StatusInternalServerError, map[string]any{"message": "internal error"}},
		{"nan value", map[string]float64{"x": math.NaN()}, http.StatusInternalServerError, map[string]any{"message": "internal error"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeJSON(rec, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusOK, tt.v)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			var got map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, tt.wantBody, got)
		})
	}
}
