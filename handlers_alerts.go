package main

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"farmeasy/models"
	"farmeasy/notify"
	"farmeasy/store"
)

func (a *App) handleUserAlerts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := store.AlertFilter{
		Type:     models.AlertType(q.Get("type")),
		Severity: models.Severity(q.Get("severity")),
	}
	f.UnreadOnly, _ = strconv.ParseBool(q.Get("unread"))
	f.Limit, _ = strconv.Atoi(q.Get("limit"))

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	alerts, err := a.store.AlertsForUser(ctx, mustUserID(r), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"alerts": alerts, "message": "Alerts retrieved successfully"})
}

// handleSendWeatherAlerts texts the caller their unread high severity
// weather alerts and marks the sent ones read.
func (a *App) handleSendWeatherAlerts(w http.ResponseWriter, r *http.Request) {
	user, err := a.currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if user.Phone == "" {
		writeMessage(w, r, http.StatusBadRequest, "No phone number on file to send alerts")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()
	pending, err := a.store.AlertsForUser(ctx, user.ID, store.AlertFilter{
		UnreadOnly: true,
		Type:       models.AlertWeather,
		Severity:   models.SeverityHigh,
		Limit:      notify.MaxWeatherAlerts,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	msg, reason := notify.WeatherAlert(pending)
	if msg == "" {
		writeJSON(w, r, http.StatusOK, map[string]any{"sent": false, "message": reason})
		return
	}
	ok, info := a.notifier.Send(ctx, user.Phone, msg)
	if !ok {
		writeJSON(w, r, http.StatusOK, map[string]any{"sent": false, "message": info})
		return
	}

	ids := make([]int64, 0, len(pending))
	for _, al := range pending {
		ids = append(ids, al.ID)
	}
	if err := a.store.MarkAlertsRead(ctx, user.ID, ids...); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"sent": true, "count": len(ids), "message": "Weather alerts sent"})
}
