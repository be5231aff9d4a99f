package main

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"farmeasy/apperr"
	"farmeasy/market"
)

func (a *App) handleSell(w http.ResponseWriter, r *http.Request) {
	var req market.ListInput
	if !decodeJSON(w, r, &req) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	l, err := a.market.List(ctx, mustUserID(r), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, map[string]any{"message": "Product listed successfully", "transaction": l})
}

func (a *App) handleProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	products, err := a.market.Products(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"products": products})
}

// handleBuy purchases a listing and returns the ledger receipt.
func (a *App) handleBuy(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, r, apperr.Validation("bad id", map[string]string{"id": "must be a positive integer"}))
		return
	}
	buyer, err := a.currentUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	rc, err := a.market.Buy(ctx, buyer, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	a.metrics.LedgerHeight(rc.Block.Index + 1)
	writeJSON(w, r, http.StatusOK, map[string]any{
		"message":     "Purchase completed successfully",
		"transaction": rc.Listing,
		"block":       rc.Block,
	})
}

func (a *App) handleMyOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	orders, err := a.market.MyOrders(ctx, mustUserID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, orders)
}
