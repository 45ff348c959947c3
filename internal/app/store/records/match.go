// internal/app/store/records/match.go
package records

import (
	"reflect"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Matches reports whether rec satisfies every equality in f, using the same
// rules as a MongoDB equality query: a scalar field must be equal, an array
// field must contain the value.
func Matches(rec Record, f Filter) bool {
	for k, want := range f {
		got, ok := lookup(rec, k)
		if !ok {
			return false
		}
		if !fieldEquals(got, want) {
			return false
		}
	}
	return true
}

func fieldEquals(got, want any) bool {
	if valueEqual(got, want) {
		return true
	}
	switch arr := got.(type) {
	case []any:
		for _, el := range arr {
			if valueEqual(el, want) {
				return true
			}
		}
	case primitive.A:
		for _, el := range arr {
			if valueEqual(el, want) {
				return true
			}
		}
	case []string:
		for _, el := range arr {
			if valueEqual(el, want) {
				return true
			}
		}
	}
	return false
}

func valueEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if ta, ok := a.(primitive.DateTime); ok {
		a = ta.Time()
	}
	if tb, ok := b.(primitive.DateTime); ok {
		b = tb.Time()
	}
	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Equal(tb)
		}
		return false
	}
	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if ra.Kind() == reflect.String && rb.Kind() == reflect.String {
		return ra.String() == rb.String()
	}
	if ra.CanInt() && rb.CanInt() {
		return ra.Int() == rb.Int()
	}
	if ra.CanFloat() && rb.CanFloat() {
		return ra.Float() == rb.Float()
	}
	return reflect.DeepEqual(a, b)
}

// lookup resolves a dotted path inside rec.
func lookup(rec Record, path string) (any, bool) {
	var cur any = map[string]any(rec)
	for _, part := range strings.Split(path, ".") {
		m, ok := asMap(cur)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// setPath assigns v at a dotted path, creating intermediate maps.
func setPath(rec Record, path string, v any) {
	parts := strings.Split(path, ".")
	cur := map[string]any(rec)
	for _, part := range parts[:len(parts)-1] {
		next, ok := asMap(cur[part])
		if !ok {
			next = map[string]any{}
		}
		cur[part] = next
		cur = next
	}
	cur[parts[len(parts)-1]] = v
}

// Merge returns a copy of rec with fields applied the way Update applies
// them. Dotted keys merge into nested maps and "_id" is ignored.
func Merge(rec, fields Record) Record {
	out := Clone(rec)
	if out == nil {
		out = Record{}
	}
	for k, v := range fields {
		if k == FieldID {
			continue
		}
		setPath(out, k, cloneValue(v))
	}
	return out
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Record:
		return m, true
	case bson.M:
		return m, true
	}
	return nil, false
}

// Clone deep-copies nested maps and slices so callers never share state with
// a backend.
func Clone(rec Record) Record {
	if rec == nil {
		return nil
	}
	out := make(Record, len(rec))
	for k, v := range rec {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return map[string]any(Clone(Record(t)))
	case Record:
		return map[string]any(Clone(t))
	case bson.M:
		return map[string]any(Clone(Record(t)))
	case map[string]bool:
		m := make(map[string]any, len(t))
		for k, b := range t {
			m[k] = b
		}
		return m
	case []any:
		s := make([]any, len(t))
		for i, el := range t {
			s[i] = cloneValue(el)
		}
		return s
	case primitive.A:
		s := make([]any, len(t))
		for i, el := range t {
			s[i] = cloneValue(el)
		}
		return s
	case []string:
		s := make([]any, len(t))
		for i, el := range t {
			s[i] = el
		}
		return s
	}
	return v
}

func isBlank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case time.Time:
		return t.IsZero()
	case primitive.DateTime:
		return t.Time().IsZero()
	}
	return false
}
