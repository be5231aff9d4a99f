package main

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"farmeasy/apperr"
	"farmeasy/models"
)

func (a *App) handleAvailableSubsidies(w http.ResponseWriter, r *http.Request) {
	var cropID int64
	if raw := r.URL.Query().Get("crop_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, r, apperr.Validation("bad crop_id", map[string]string{"crop_id": "must be an integer"}))
			return
		}
		cropID = id
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	subsidies, err := a.store.ActiveSubsidies(ctx, cropID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"subsidies": subsidies, "message": "Subsidies retrieved successfully"})
}

// handleMatchSubsidies lists the schemes a crop and farm size qualify for.
func (a *App) handleMatchSubsidies(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	crop := q.Get("crop")
	fields := map[string]string{}
	if crop == "" {
		fields["crop"] = "is required"
	}
	size := defaultFarmSize
	if raw := q.Get("farm_size"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || !(v >= 0 && v <= models.MaxFarmHectares) {
			fields["farm_size"] = fmt.Sprintf("must be a number between 0 and %g", models.MaxFarmHectares)
		}
		size = v
	}
	if len(fields) > 0 {
		writeError(w, r, apperr.Validation("invalid subsidy query", fields))
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"crop": crop, "farm_size": size, "subsidies": a.matcher.Match(crop, size)})
}
