// Package modulesettings exposes an organization's module switches.
package modulesettings

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dalemusser/eduflow/internal/app/system/modules"
	"github.com/dalemusser/eduflow/internal/app/system/orgctx"
	"github.com/dalemusser/eduflow/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Services finds the module Service of an organization.
type Services interface {
	Get(orgID string) (*modules.Service, error)
}

type Handler struct {
	Services Services
	Log      *zap.Logger
}

func NewHandler(services Services, logger *zap.Logger) *Handler {
	return &Handler{Services: services, Log: logger}
}

type stateResponse struct {
	OrgID   string          `json:"org_id"`
	Loaded  bool            `json:"loaded"`
	Phase   string          `json:"phase"`
	Modules map[string]bool `json:"modules"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Show handles GET /.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.service(w, r)
	if !ok {
		return
	}
	h.writeState(w, svc, svc.Modules())
}

// SetAll handles PUT / with a JSON object of module switches. Keys left out
// are enabled; unknown keys are ignored.
func (h *Handler) SetAll(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "expected a JSON object of module switches"})
		return
	}
	next, _ := modules.Normalize(body)

	svc, ok := h.service(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()
	st, err := svc.SetAll(ctx, next)
	if err != nil {
		h.mutationFailed(w, svc, err)
		return
	}
	h.writeState(w, svc, st)
}

// Reset handles POST /reset.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.service(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()
	st, err := svc.Reset(ctx)
	if err != nil {
		h.mutationFailed(w, svc, err)
		return
	}
	h.writeState(w, svc, st)
}

// Toggle handles POST /{key}/toggle.
func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	key, known := modules.ParseKey(chi.URLParam(r, "key"))
	if !known {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown module"})
		return
	}
	svc, ok := h.service(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()
	st, err := svc.Toggle(ctx, key)
	if err != nil {
		h.mutationFailed(w, svc, err)
		return
	}
	h.writeState(w, svc, st)
}

func (h *Handler) service(w http.ResponseWriter, r *http.Request) (*modules.Service, bool) {
	orgID := orgctx.IDFromRequest(r)
	svc, err := h.Services.Get(orgID)
	if err != nil {
		h.Log.Warn("module service unavailable", zap.String("org_id", orgID), zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "module settings unavailable"})
		return nil, false
	}
	return svc, true
}

func (h *Handler) mutationFailed(w http.ResponseWriter, svc *modules.Service, err error) {
	if errors.Is(err, modules.ErrClosed) {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "module settings unavailable"})
		return
	}
	h.Log.Error("module change failed", zap.String("org_id", svc.OrgID()), zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
}

func (h *Handler) writeState(w http.ResponseWriter, svc *modules.Service, st modules.State) {
	writeJSON(w, http.StatusOK, stateResponse{
		OrgID:   svc.OrgID(),
		Loaded:  svc.IsLoaded(),
		Phase:   svc.Phase().String(),
		Modules: st.Map(),
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
