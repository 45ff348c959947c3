// internal/testutil/http.go
package testutil

import (
	"context"
	"net/http"

	"github.com/dalemusser/eduflow/internal/app/system/orgctx"
	"github.com/go-chi/chi/v5"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// WithOrg marks the request as acting for orgID.
func WithOrg(r *http.Request, orgID string) *http.Request {
	return orgctx.WithOrg(r, &orgctx.Info{ID: orgID})
}
