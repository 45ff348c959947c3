// Package orgctx carries the active organization of a request.
package orgctx

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/eduflow/internal/app/store/records"
	"github.com/dalemusser/eduflow/internal/app/system/timeouts"
	"github.com/dalemusser/eduflow/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ctxKey string

const orgKey ctxKey = "organization"

// URLParam is the chi route parameter holding the organization id.
const URLParam = "orgID"

// Info describes the organization a request acts for.
type Info struct {
	ID   string
	Name string
	Type models.OrganizationType
}

// OrgStore looks organizations up by id.
type OrgStore interface {
	GetByID(ctx context.Context, id string) (models.Organization, error)
}

// Middleware resolves {orgID} from the route. Unknown organizations get 404.
// With a nil store the id is trusted as is.
func Middleware(store OrgStore, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := chi.URLParam(r, URLParam)
			if id == "" {
				http.Error(w, "Organization required", http.StatusBadRequest)
				return
			}
			if store == nil {
				next.ServeHTTP(w, WithOrg(r, &Info{ID: id}))
				return
			}

			ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
			defer cancel()
			org, err := store.GetByID(ctx, id)
			if errors.Is(err, records.ErrNotFound) {
				logger.Debug("organization not found", zap.String("org_id", id))
				http.NotFound(w, r)
				return
			}
			if err != nil {
				logger.Error("organization lookup failed", zap.String("org_id", id), zap.Error(err))
				http.Error(w, "Organization unavailable", http.StatusServiceUnavailable)
				return
			}
			next.ServeHTTP(w, WithOrg(r, &Info{ID: org.ID, Name: org.Name, Type: org.Type}))
		})
	}
}

// FromRequest returns the organization info, or nil when none is set.
func FromRequest(r *http.Request) *Info {
	return FromContext(r.Context())
}

func FromContext(ctx context.Context) *Info {
	if info, ok := ctx.Value(orgKey).(*Info); ok {
		return info
	}
	return nil
}

// IDFromRequest returns the organization id, or "" when none is set.
func IDFromRequest(r *http.Request) string {
	if info := FromRequest(r); info != nil {
		return info.ID
	}
	return ""
}

// WithOrg attaches info to the request context.
func WithOrg(r *http.Request, info *Info) *http.Request {
	return r.WithContext(NewContext(r.Context(), info))
}

func NewContext(ctx context.Context, info *Info) context.Context {
	return context.WithValue(ctx, orgKey, info)
}
