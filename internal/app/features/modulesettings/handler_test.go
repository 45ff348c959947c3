package modulesettings_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/eduflow/internal/app/features/modulesettings"
	orgstore "github.com/dalemusser/eduflow/internal/app/store/organizations"
	"github.com/dalemusser/eduflow/internal/app/store/records"
	"github.com/dalemusser/eduflow/internal/app/system/modules"
	"github.com/dalemusser/eduflow/internal/testutil"
	"go.uber.org/zap"
)

type stateBody struct {
	OrgID   string          `json:"org_id"`
	Loaded  bool            `json:"loaded"`
	Phase   string          `json:"phase"`
	Modules map[string]bool `json:"modules"`
}

type env struct {
	rs  *records.Memory
	reg *modules.Registry
	h   http.Handler
}

func setup(t *testing.T) *env {
	t.Helper()
	rs := records.NewMemory(zap.NewNop())
	reg := modules.NewRegistry(modules.NewMemoryCache(), orgstore.New(rs, zap.NewNop()), nil, zap.NewNop())
	t.Cleanup(func() { _ = reg.Close(context.Background()) })
	return &env{rs: rs, reg: reg, h: modulesettings.Routes(modulesettings.NewHandler(reg, zap.NewNop()))}
}

func (e *env) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, stateBody) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	req = testutil.WithOrg(req, "org_1")
	rec := httptest.NewRecorder()
	e.h.ServeHTTP(rec, req)

	var st stateBody
	if rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
			t.Fatalf("failed to parse response: %v", err)
		}
	}
	return rec, st
}

func TestShow_Defaults(t *testing.T) {
	e := setup(t)
	rec, st := e.do(t, http.MethodGet, "/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
	if st.OrgID != "org_1" || !st.Loaded {
		t.Errorf("body: got %+v", st)
	}
	if len(st.Modules) != len(modules.All) {
		t.Errorf("modules: got %d keys, want %d", len(st.Modules), len(modules.All))
	}
	for k, v := range st.Modules {
		if !v {
			t.Errorf("%s: got disabled, want enabled", k)
		}
	}
}

func TestToggle(t *testing.T) {
	ctx := context.Background()
	e := setup(t)

	rec, st := e.do(t, http.MethodPost, "/grades/toggle", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
	if st.Modules["grades"] {
		t.Error("grades: got enabled, want disabled")
	}

	svc, err := e.reg.Get("org_1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if err := svc.Flush(ctx); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	org, err := orgstore.New(e.rs, zap.NewNop()).GetByID(ctx, "org_1")
	if err != nil {
		t.Fatalf("organization document not written: %v", err)
	}
	if v, ok := org.Modules["grades"]; !ok || v {
		t.Errorf("stored grades: got %v (present %v), want false", v, ok)
	}
}

func TestToggle_UnknownKey(t *testing.T) {
	e := setup(t)
	rec, _ := e.do(t, http.MethodPost, "/billing/toggle", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestSetAllAndReset(t *testing.T) {
	e := setup(t)

	rec, st := e.do(t, http.MethodPut, "/", `{"chat":false,"reports":false,"billing":false}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
	if st.Modules["chat"] || st.Modules["reports"] || !st.Modules["students"] {
		t.Errorf("modules: got %v", st.Modules)
	}
	if _, ok := st.Modules["billing"]; ok {
		t.Error("unknown key echoed back")
	}

	rec, st = e.do(t, http.MethodPost, "/reset", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("reset status: got %d, want %d", rec.Code, http.StatusOK)
	}
	if !st.Modules["chat"] || !st.Modules["reports"] {
		t.Errorf("after reset: got %v", st.Modules)
	}
}

func TestSetAll_InvalidBody(t *testing.T) {
	e := setup(t)
	rec, _ := e.do(t, http.MethodPut, "/", `["chat"]`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestRegistryClosed(t *testing.T) {
	e := setup(t)
	if err := e.reg.Close(context.Background()); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	rec, _ := e.do(t, http.MethodGet, "/", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestToggle_DirectHandler(t *testing.T) {
	e := setup(t)
	h := modulesettings.NewHandler(e.reg, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/chat/toggle", nil)
	req = testutil.WithOrg(testutil.WithChiURLParam(req, "key", "chat"), "org_1")
	rec := httptest.NewRecorder()
	h.Toggle(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
	var st stateBody
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if st.Modules["chat"] {
		t.Error("chat: got enabled, want disabled")
	}
}
