// Package entities serves the organization-scoped collections over JSON and
// streams live lists over WebSocket. One generic Handler is mounted per entity
// kind.
package entities

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/dalemusser/eduflow/internal/app/store/records"
	"github.com/dalemusser/eduflow/internal/app/store/scoped"
	"github.com/dalemusser/eduflow/internal/app/system/orgctx"
	"github.com/dalemusser/eduflow/internal/app/system/timeouts"
	"github.com/dalemusser/eduflow/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Repo is the part of a typed repository the handler uses.
type Repo[T models.Entity] interface {
	Where(ctx context.Context, orgID string, extra records.Filter) ([]T, error)
	GetByID(ctx context.Context, orgID, id string) (T, error)
	Add(ctx context.Context, orgID string, v T) (T, error)
	UpdateInOrg(ctx context.Context, orgID, id string, fields records.Record) (T, error)
	DeleteInOrg(ctx context.Context, orgID, id string) error
	Watch(ctx context.Context, orgID string, extra records.Filter) (*scoped.Live[T], error)
}

// Handler serves one entity kind.
type Handler[T models.Entity] struct {
	Kind    string
	Repo    Repo[T]
	Origins []string
	Log     *zap.Logger
}

// NewHandler builds a Handler. origins are the WebSocket origin patterns
// accepted by the live endpoint.
func NewHandler[T models.Entity](kind string, repo Repo[T], origins []string, logger *zap.Logger) *Handler[T] {
	return &Handler[T]{Kind: kind, Repo: repo, Origins: origins, Log: logger}
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// frame is one message on the live endpoint.
type frame struct {
	Type  string `json:"type"` // snapshot or error
	Seq   int    `json:"seq"`
	Items any    `json:"items,omitempty"`
	Error string `json:"error,omitempty"`
}

// List handles GET /. Query parameters narrow the list by field equality.
func (h *Handler[T]) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	items, err := h.Repo.Where(ctx, orgctx.IDFromRequest(r), queryFilter(r))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Create handles POST /.
func (h *Handler[T]) Create(w http.ResponseWriter, r *http.Request) {
	var v T
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	created, err := h.Repo.Add(ctx, orgctx.IDFromRequest(r), v)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// Show handles GET /{id}.
func (h *Handler[T]) Show(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	v, err := h.Repo.GetByID(ctx, orgctx.IDFromRequest(r), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// Update handles PATCH /{id} with a JSON object of fields to merge.
func (h *Handler[T]) Update(w http.ResponseWriter, r *http.Request) {
	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil || len(fields) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "expected a non-empty JSON object"})
		return
	}
	delete(fields, records.FieldID)
	delete(fields, records.FieldCreatedAt)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	v, err := h.Repo.UpdateInOrg(ctx, orgctx.IDFromRequest(r), chi.URLParam(r, "id"), records.Record(fields))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// Delete handles DELETE /{id}. Deleting twice is not an error.
func (h *Handler[T]) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Repo.DeleteInOrg(ctx, orgctx.IDFromRequest(r), chi.URLParam(r, "id")); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Live handles GET /live. It upgrades to a WebSocket and sends the list as a
// snapshot frame on open and after every change. A failed subscription sends
// one error frame and closes.
func (h *Handler[T]) Live(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	live, err := h.Repo.Watch(ctx, orgctx.IDFromRequest(r), queryFilter(r))
	if err != nil {
		h.fail(w, err)
		return
	}
	defer live.Cancel()

	opts := &websocket.AcceptOptions{}
	if len(h.Origins) > 0 {
		opts.OriginPatterns = h.Origins
	}
	conn, err := websocket.Accept(w, r, opts)
	if err != nil {
		h.Log.Debug("websocket accept failed", zap.String("kind", h.Kind), zap.Error(err))
		return
	}

	go func() {
		for {
			if _, _, err := conn.Read(ctx); err != nil {
				cancel()
				return
			}
		}
	}()

	for seq := 1; ; seq++ {
		items, err := live.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				_ = conn.Close(websocket.StatusNormalClosure, "closed")
				return
			}
			h.Log.Warn("live list ended",
				zap.String("kind", h.Kind),
				zap.String("subscription", live.ID()),
				zap.Error(err))
			h.send(ctx, conn, frame{Type: "error", Seq: seq, Error: err.Error()})
			_ = conn.Close(websocket.StatusInternalError, "subscription failed")
			return
		}
		if err := h.send(ctx, conn, frame{Type: "snapshot", Seq: seq, Items: items}); err != nil {
			_ = conn.Close(websocket.StatusNormalClosure, "write_failed")
			return
		}
	}
}

func (h *Handler[T]) send(ctx context.Context, conn *websocket.Conn, f frame) error {
	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return wsjson.Write(writeCtx, conn, f)
}

// fail maps store and repository errors onto HTTP responses.
func (h *Handler[T]) fail(w http.ResponseWriter, err error) {
	var verr *scoped.ValidationError
	var derr *scoped.DecodeError
	var werr *records.WriteError
	var serr *records.SubscriptionError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: verr.Error(), Field: verr.Field})
	case errors.Is(err, records.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	case errors.Is(err, records.ErrConflict):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "already exists"})
	case errors.As(err, &werr), errors.As(err, &serr):
		h.Log.Error("store unavailable", zap.String("kind", h.Kind), zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "store unavailable"})
	case errors.As(err, &derr):
		h.Log.Error("stored record is invalid", zap.String("kind", h.Kind), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "stored record is invalid"})
	default:
		h.Log.Error("request failed", zap.String("kind", h.Kind), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func queryFilter(r *http.Request) records.Filter {
	q := r.URL.Query()
	if len(q) == 0 {
		return nil
	}
	f := make(records.Filter, len(q))
	for k, v := range q {
		if len(v) > 0 && v[0] != "" {
			f[k] = v[0]
		}
	}
	return f
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
