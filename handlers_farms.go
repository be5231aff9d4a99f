package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"farmeasy/apperr"
	"farmeasy/farm"
)

var plantingLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

func parsePlantingDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range plantingLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// handleCreateFarm creates a virtual farm for the caller.
func (a *App) handleCreateFarm(w http.ResponseWriter, r *http.Request) {
	var req createFarmReq
	if !decodeJSON(w, r, &req) {
		return
	}
	var planted time.Time
	if req.PlantingDate != "" {
		t, ok := parsePlantingDate(req.PlantingDate)
		if !ok {
			writeError(w, r, apperr.Validation("Invalid planting_date", map[string]string{"planting_date": "use RFC3339 or YYYY-MM-DD"}))
			return
		}
		planted = t
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	f, err := a.farms.Create(ctx, mustUserID(r), farm.CreateInput{
		LandSize:       req.LandSize,
		CropType:       req.CropType,
		Location:       req.Location,
		PlantingDate:   planted,
		SoilData:       req.SoilData,
		GrowthStages:   req.GrowthStages,
		ExpectedYield:  req.ExpectedYield,
		ExpectedProfit: req.ExpectedProfit,
		ClimateRisks:   req.ClimateRisks,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, map[string]any{"message": "Virtual farm created", "farm": f})
}

func (a *App) handleListFarms(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()
	farms, err := a.farms.List(ctx, mustUserID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"farms": farms})
}

func (a *App) handleGetFarm(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	f, err := a.farms.Get(ctx, mustUserID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"farm": f})
}

// handleUpdateProgress advances growth stages to today.
func (a *App) handleUpdateProgress(w http.ResponseWriter, r *http.Request) {
	var req updateProgressReq
	if !decodeJSON(w, r, &req) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	f, err := a.farms.UpdateProgress(ctx, mustUserID(r), req.FarmID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"message": "Progress updated", "farm": f})
}

func (a *App) handleDeleteFarm(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if err := a.farms.Delete(ctx, mustUserID(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
