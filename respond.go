package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog/hlog"

	"farmeasy/apperr"
	"farmeasy/weather"
)

const maxBodyBytes = 1 << 20

type errorResp struct {
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// writeJSON encodes v before writing the header. A value that cannot be
// encoded is logged and answered with a 500.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		hlog.FromRequest(r).Error().Err(err).Int("status", status).Msg("encode response")
		status = http.StatusInternalServerError
		buf.Reset()
		_ = json.NewEncoder(&buf).Encode(errorResp{Message: "internal error"})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		hlog.FromRequest(r).Debug().Err(err).Msg("write response")
	}
}

func writeMessage(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, errorResp{Message: msg})
}

// writeError maps the error kinds onto status codes. Anything untyped is
// logged and reported as a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		ve  *apperr.ValidationError
		nf  *apperr.NotFoundError
		ce  *apperr.ConflictError
		mu  *apperr.ModelUnavailableError
		pe  *apperr.PersistenceError
		up  *weather.UpstreamError
		msg = err.Error()
	)
	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, r, http.StatusBadRequest, errorResp{Message: ve.Message, Fields: ve.Fields})
		return
	case errors.As(err, &nf):
		status = http.StatusNotFound
	case errors.As(err, &ce):
		status = http.StatusConflict
	case errors.As(err, &mu):
		status = http.StatusServiceUnavailable
	case errors.As(err, &up), errors.Is(err, weather.ErrNotConfigured):
		status = http.StatusBadGateway
	case errors.As(err, &pe):
		msg = "storage error"
	default:
		msg = "internal error"
	}
	if status >= 500 {
		hlog.FromRequest(r).Error().Err(err).Int("status", status).Msg("request failed")
	}
	writeMessage(w, r, status, msg)
}

// decodeJSON reads a bounded JSON body into v. An empty body leaves v as is.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	writeMessage(w, r, http.StatusBadRequest, "bad json")
	return false
}
