// Package modguard decides whether a feature area may be used by the active
// organization.
//
// A check has three outcomes. Loading means the module state is not known
// yet; Denied means the module is switched off; Allowed means it is on or was
// never configured. Loading is never collapsed into Denied.
package modguard

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/dalemusser/eduflow/internal/app/system/modules"
	"github.com/dalemusser/eduflow/internal/app/system/orgctx"
	"go.uber.org/zap"
)

type Decision int

const (
	Loading Decision = iota
	Denied
	Allowed
)

func (d Decision) String() string {
	switch d {
	case Denied:
		return "denied"
	case Allowed:
		return "allowed"
	}
	return "loading"
}

// Source is the module state a check reads. *modules.Service satisfies it.
type Source interface {
	IsLoaded() bool
	Modules() modules.State
}

// Check is a pure function of src.
func Check(src Source, key modules.Key) Decision {
	if src == nil || !src.IsLoaded() {
		return Loading
	}
	if !src.Modules().Enabled(key) {
		return Denied
	}
	return Allowed
}

// Lookup finds the module state of an organization.
type Lookup func(orgID string) (Source, error)

// RetryAfterSeconds is sent with Loading responses.
const RetryAfterSeconds = 1

type response struct {
	Status   string `json:"status"`
	Module   string `json:"module"`
	Message  string `json:"message,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

// Require gates next behind key for the organization in the request context.
//
// Loading answers 503 with Retry-After. Denied answers 403 and points the
// client back at dashboardPath.
func Require(key modules.Key, lookup Lookup, dashboardPath string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			orgID := orgctx.IDFromRequest(r)
			if orgID == "" {
				http.Error(w, "Organization required", http.StatusBadRequest)
				return
			}
			src, err := lookup(orgID)
			if err != nil {
				logger.Warn("module state unavailable",
					zap.String("org_id", orgID),
					zap.String("module", string(key)),
					zap.Error(err))
				src = nil
			}

			switch Check(src, key) {
			case Allowed:
				next.ServeHTTP(w, r)
			case Denied:
				logger.Debug("module disabled",
					zap.String("org_id", orgID),
					zap.String("module", string(key)))
				write(w, http.StatusForbidden, response{
					Status:   Denied.String(),
					Module:   string(key),
					Message:  "This module is disabled for your organization.",
					Redirect: dashboardPath,
				})
			default:
				w.Header().Set("Retry-After", strconv.Itoa(RetryAfterSeconds))
				write(w, http.StatusServiceUnavailable, response{
					Status: Loading.String(),
					Module: string(key),
				})
			}
		})
	}
}

func write(w http.ResponseWriter, code int, resp response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}
