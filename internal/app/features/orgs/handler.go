// Package orgs creates and looks up organizations.
package orgs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dalemusser/eduflow/internal/app/store/records"
	"github.com/dalemusser/eduflow/internal/app/store/scoped"
	"github.com/dalemusser/eduflow/internal/app/system/orgctx"
	"github.com/dalemusser/eduflow/internal/app/system/timeouts"
	"github.com/dalemusser/eduflow/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// OrgStore is the part of the organization store the handler uses.
type OrgStore interface {
	Create(ctx context.Context, org models.Organization) (models.Organization, error)
	GetByID(ctx context.Context, id string) (models.Organization, error)
}

type Handler struct {
	Orgs OrgStore
	Log  *zap.Logger
}

func NewHandler(orgs OrgStore, logger *zap.Logger) *Handler {
	return &Handler{Orgs: orgs, Log: logger}
}

type createRequest struct {
	ID       string                      `json:"id"`
	Name     string                      `json:"name"`
	Type     models.OrganizationType     `json:"type"`
	Settings models.OrganizationSettings `json:"settings"`
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// Create handles POST /api/orgs. Module switches are not accepted here; they
// start unset and so enabled. An id that is already taken answers 409.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	org, err := h.Orgs.Create(ctx, models.Organization{
		ID:       req.ID,
		Name:     req.Name,
		Type:     req.Type,
		Settings: req.Settings,
	})
	var verr *scoped.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: verr.Error(), Field: verr.Field})
		return
	case errors.Is(err, records.ErrConflict):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "organization already exists", Field: "id"})
		return
	case err != nil:
		h.Log.Error("organization create failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "store unavailable"})
		return
	}
	h.Log.Info("organization created", zap.String("org_id", org.ID), zap.String("name", org.Name))
	writeJSON(w, http.StatusCreated, org)
}

// Show handles GET /api/orgs/{orgID}.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	org, err := h.Orgs.GetByID(ctx, chi.URLParam(r, orgctx.URLParam))
	if errors.Is(err, records.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
		return
	}
	if err != nil {
		h.Log.Error("organization lookup failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "store unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, org)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
