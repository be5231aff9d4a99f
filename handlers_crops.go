package main

import (
	"context"
	"net/http"
	"time"

	"farmeasy/apperr"
	"farmeasy/models"
	"farmeasy/store"
)

// recommendTimeout covers a cold start, where the first request may train
// the model.
const recommendTimeout = 60 * time.Second

func (r soilReq) sample() (models.SoilSample, float64, error) {
	fields := map[string]string{}
	required := func(name string, v *float64) float64 {
		if v == nil {
			fields[name] = name + " is required"
			return 0
		}
		return *v
	}
	optional := func(v *float64, def float64) float64 {
		if v == nil {
			return def
		}
		return *v
	}
	s := models.SoilSample{
		Nitrogen:      required("nitrogen", r.Nitrogen),
		Phosphorus:    required("phosphorus", r.Phosphorus),
		Potassium:     required("potassium", r.Potassium),
		PH:            required("ph_level", r.PH),
		OrganicCarbon: required("organic_carbon", r.OrganicCarbon),
		Temperature:   optional(r.Temperature, defaultTemperature),
		Humidity:      optional(r.Humidity, defaultHumidity),
		Rainfall:      optional(r.Rainfall, defaultRainfall),
	}
	if len(fields) > 0 {
		return s, 0, apperr.Validation("missing soil test fields", fields)
	}
	return s, optional(r.FarmSize, defaultFarmSize), nil
}

// handleRecommend records a soil test and returns ranked crops for it.
func (a *App) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var req soilReq
	if !decodeJSON(w, r, &req) {
		return
	}
	sample, farmSize, err := req.sample()
	if err != nil {
		writeError(w, r, err)
		return
	}
	user, err := a.currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), recommendTimeout)
	defer cancel()
	res, err := a.recommend.Recommend(ctx, user, sample, farmSize, req.Location)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"message":         "Crop recommendations generated successfully",
		"soil_test_id":    res.SoilTestID,
		"soil_health":     res.SoilHealth,
		"recommendations": res.Recommendations,
		"persisted":       res.Persisted,
	})
}

// handlePreview ranks crops without recording anything.
func (a *App) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req soilReq
	if !decodeJSON(w, r, &req) {
		return
	}
	sample, farmSize, err := req.sample()
	if err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), recommendTimeout)
	defer cancel()
	res, err := a.recommend.Preview(ctx, sample, farmSize, req.Location)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (a *App) handleAllCrops(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	crops, err := a.store.ListCrops(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"crops": crops})
}

// handleHistory returns the caller's latest recommendations.
func (a *App) handleHistory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	history, err := a.store.RecommendationHistory(ctx, mustUserID(r), store.HistoryLimit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"recommendations": history})
}

