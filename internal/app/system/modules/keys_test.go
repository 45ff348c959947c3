package modules_test

import (
	"context"
	"testing"

	"github.com/dalemusser/eduflow/internal/app/system/modules"
	"go.mongodb.org/mongo-driver/bson"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		raw      any
		ok       bool
		disabled []modules.Key
	}{
		{"nil", nil, false, nil},
		{"not a map", "chat", false, nil},
		{"empty", map[string]any{}, true, nil},
		{"bool map", map[string]bool{"chat": false}, true, []modules.Key{modules.Chat}},
		{"bson", bson.M{"grades": false, "reports": false}, true, []modules.Key{modules.Grades, modules.Reports}},
		{"unknown key ignored", map[string]any{"billing": false}, true, nil},
		{"non-bool ignored", map[string]any{"chat": "no"}, true, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, ok := modules.Normalize(tt.raw)
			if ok != tt.ok {
				t.Errorf("ok: got %v, want %v", ok, tt.ok)
			}
			if len(st) != len(modules.All) {
				t.Errorf("keys: got %d, want %d", len(st), len(modules.All))
			}
			got := st.Disabled()
			if len(got) != len(tt.disabled) {
				t.Fatalf("disabled: got %v, want %v", got, tt.disabled)
			}
			for i := range got {
				if got[i] != tt.disabled[i] {
					t.Errorf("disabled[%d]: got %s, want %s", i, got[i], tt.disabled[i])
				}
			}
		})
	}
}

func TestState_EnabledDefaultsAbsentKeys(t *testing.T) {
	var st modules.State
	if !st.Enabled(modules.Chat) {
		t.Error("absent key: got disabled, want enabled")
	}
	if got := len(st.Clone()); got != len(modules.All) {
		t.Errorf("Clone: got %d keys, want %d", got, len(modules.All))
	}
}

func TestParseKey(t *testing.T) {
	if k, ok := modules.ParseKey("attendance"); !ok || k != modules.Attendance {
		t.Errorf("ParseKey(attendance): got %q %v", k, ok)
	}
	if _, ok := modules.ParseKey("billing"); ok {
		t.Error("ParseKey(billing): expected unknown")
	}
}

func TestCacheKey(t *testing.T) {
	if got := modules.CacheKey(modules.StorageKey, ""); got != modules.StorageKey {
		t.Errorf("no org: got %q, want %q", got, modules.StorageKey)
	}
	if got := modules.CacheKey("base", "org_1"); got != "base:org_1" {
		t.Errorf("org: got %q, want base:org_1", got)
	}
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := modules.NewMemoryCache()

	if _, ok, err := c.Get(ctx, "k"); ok || err != nil {
		t.Fatalf("empty Get: ok=%v err=%v", ok, err)
	}
	st := modules.Defaults()
	st[modules.Groups] = false
	if err := c.Set(ctx, "k", st); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, ok, err := c.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if got.Enabled(modules.Groups) {
		t.Error("groups: got enabled, want disabled")
	}
	if err := c.Remove(ctx, "k"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Error("expected miss after Remove")
	}
}
