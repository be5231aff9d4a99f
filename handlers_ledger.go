package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleVerifyBlock looks a trade block up by hash and rechecks it.
func (a *App) handleVerifyBlock(w http.ResponseWriter, r *http.Request) {
	b, ok := a.ledger.FindByHash(chi.URLParam(r, "hash"))
	if !ok {
		writeJSON(w, r, http.StatusNotFound, map[string]any{"verified": false, "message": "Block not found"})
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"verified": true, "block": b})
}

func (a *App) handleLedgerHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{"transactions": a.ledger.TradesFor(mustUserID(r))})
}

func (a *App) handleValidateChain(w http.ResponseWriter, r *http.Request) {
	report := a.ledger.Audit()
	a.metrics.LedgerAudited(report.Height, report.Valid)
	writeJSON(w, r, http.StatusOK, report)
}
