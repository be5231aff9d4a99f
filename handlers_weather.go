package main

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/hlog"
	"golang.org/x/sync/errgroup"

	"farmeasy/apperr"
	"farmeasy/models"
	"farmeasy/weather"
)

func locationFrom(r *http.Request) (weather.Location, error) {
	q := r.URL.Query()
	loc := weather.Location{City: q.Get("city")}
	for _, p := range []struct {
		key   string
		limit float64
		dst   **float64
	}{{"lat", 90, &loc.Lat}, {"lon", 180, &loc.Lon}} {
		raw := q.Get(p.key)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || !(v >= -p.limit && v <= p.limit) {
			return loc, apperr.Validation("bad coordinates", map[string]string{p.key: fmt.Sprintf("must be a number between %g and %g", -p.limit, p.limit)})
		}
		*p.dst = &v
	}
	return loc, nil
}

func (a *App) handleCurrentWeather(w http.ResponseWriter, r *http.Request) {
	loc, err := locationFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	cur, err := a.weather.Current(ctx, loc)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"weather": cur, "message": "Weather data retrieved successfully"})
}

func (a *App) handleForecast(w http.ResponseWriter, r *http.Request) {
	loc, err := locationFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	days := weather.DefaultDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		if days, err = strconv.Atoi(raw); err != nil {
			writeError(w, r, apperr.Validation("bad days", map[string]string{"days": "must be an integer"}))
			return
		}
	}
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	f, err := a.weather.Forecast(ctx, loc, days)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"forecast": f, "message": "Weather forecast retrieved successfully"})
}

// handleWeatherRisks analyses current conditions and the next 24h, and
// stores the high severity risks as unread alerts for the caller.
func (a *App) handleWeatherRisks(w http.ResponseWriter, r *http.Request) {
	loc, err := locationFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var (
		cur weather.Current
		fc  weather.Forecast
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		cur, err = a.weather.Current(gctx, loc)
		return err
	})
	g.Go(func() (err error) {
		fc, err = a.weather.Forecast(gctx, loc, 1)
		return err
	})
	if err := g.Wait(); err != nil {
		writeError(w, r, err)
		return
	}

	risks := weather.AnalyzeRisks(&cur, &fc)
	uid := mustUserID(r)
	for _, risk := range risks {
		if risk.Severity != weather.High {
			continue
		}
		alert := models.Alert{UserID: uid, Message: risk.Message, AlertType: models.AlertWeather, Severity: risk.Severity.AlertSeverity()}
		if err := a.store.CreateAlert(ctx, &alert); err != nil {
			hlog.FromRequest(r).Warn().Err(err).Str("risk", string(risk.Type)).Msg("could not record weather alert")
		}
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"risks": risks, "weather": cur, "message": "Weather risks analyzed successfully"})
}
