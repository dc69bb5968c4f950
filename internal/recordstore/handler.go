// Package recordstore serves a record collection over HTTP with the wire
// contract the record client consumes.
package recordstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"recordsync/internal/platform/logger"
	"recordsync/internal/platform/metrics"
	"recordsync/internal/recordstore/store"
	"recordsync/internal/records/form"
	"recordsync/internal/records/models"
	"recordsync/pkg/platform/sentinel"
)

const maxRequestBody = 1 << 20

type Handler struct {
	store   store.Store
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Handler)

func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Handler) {
		h.metrics = m
	}
}

func New(st store.Store, opts ...Option) (*Handler, error) {
	if st == nil {
		return nil, fmt.Errorf("store is required")
	}
	h := &Handler{store: st, logger: logger.Discard()}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = logger.Discard()
	}
	return h, nil
}

// Register mounts the collection routes under basePath.
func (h *Handler) Register(r chi.Router, basePath string) {
	r.Route(basePath, func(r chi.Router) {
		r.Use(chimw.RequestID)
		r.Use(Recovery(h.logger))
		r.Use(RequestLogger(h.logger))
		r.Use(Latency(h.metrics))

		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/{id}", h.handleGet)
		r.Put("/{id}", h.handleReplace)
		r.Delete("/{id}", h.handleDelete)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	records, err := h.store.List(r.Context())
	if err != nil {
		h.writeStoreError(w, r, "list records", err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	rec, err := h.store.Get(r.Context(), recordID(r))
	if err != nil {
		h.writeStoreError(w, r, "get record", err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	fields, ok := h.decodeFields(w, r)
	if !ok {
		return
	}
	rec, err := h.store.Create(r.Context(), fields)
	if err != nil {
		h.writeStoreError(w, r, "create record", err)
		return
	}
	h.logger.InfoContext(r.Context(), "record created",
		"request_id", chimw.GetReqID(r.Context()),
		"record_id", rec.ID.String(),
	)
	writeJSON(w, http.StatusCreated, rec)
}

func (h *Handler) handleReplace(w http.ResponseWriter, r *http.Request) {
	fields, ok := h.decodeFields(w, r)
	if !ok {
		return
	}
	rec, err := h.store.Replace(r.Context(), recordID(r), fields)
	if err != nil {
		h.writeStoreError(w, r, "replace record", err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := recordID(r)
	if err := h.store.Delete(r.Context(), id); err != nil {
		h.writeStoreError(w, r, "delete record", err)
		return
	}
	h.logger.InfoContext(r.Context(), "record deleted",
		"request_id", chimw.GetReqID(r.Context()),
		"record_id", id.String(),
	)
	w.WriteHeader(http.StatusNoContent)
}

func recordID(r *http.Request) models.RecordID {
	return models.RecordID(chi.URLParam(r, "id"))
}

// decodeFields reads and validates a create or replace body. Keys outside
// the six editable fields, including any id, are ignored.
func (h *Handler) decodeFields(w http.ResponseWriter, r *http.Request) (models.Fields, bool) {
	var fields models.Fields
	err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody)).Decode(&fields)
	if err != nil {
		h.logger.WarnContext(r.Context(), "invalid record body",
			"request_id", chimw.GetReqID(r.Context()),
			"error", err.Error(),
		)
		writeError(w, http.StatusBadRequest, errorBody{Error: "bad_request", Message: "invalid JSON body"})
		return models.Fields{}, false
	}

	if result := form.FromFields(fields).Validate(); !result.Valid() {
		writeError(w, http.StatusUnprocessableEntity, errorBody{
			Error:   "validation",
			Field:   result.Field.String(),
			Message: "is required",
		})
		return models.Fields{}, false
	}
	return fields, true
}

func (h *Handler) writeStoreError(w http.ResponseWriter, r *http.Request, action string, err error) {
	if errors.Is(err, sentinel.ErrNotFound) {
		writeError(w, http.StatusNotFound, errorBody{Error: "not_found"})
		return
	}
	h.logger.ErrorContext(r.Context(), "failed to "+action,
		"request_id", chimw.GetReqID(r.Context()),
		"error", err.Error(),
	)
	writeError(w, http.StatusInternalServerError, errorBody{Error: "internal_error"})
}
