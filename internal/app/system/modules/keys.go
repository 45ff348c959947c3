// Package modules holds the per-organization feature switches that gate whole
// areas of the product.
//
// A Service resolves the switch map in three tiers: a local cache read at
// start, the organization document in the record store once its first
// snapshot arrives, and the built-in defaults when neither has anything.
// Every key defaults to enabled.
package modules

import (
	"go.mongodb.org/mongo-driver/bson"
)

// Key names one feature area.
type Key string

const (
	Students      Key = "students"
	Teachers      Key = "teachers"
	Faculties     Key = "faculties"
	Departments   Key = "departments"
	Groups        Key = "groups"
	Courses       Key = "courses"
	Schedule      Key = "schedule"
	Attendance    Key = "attendance"
	Grades        Key = "grades"
	Announcements Key = "announcements"
	Chat          Key = "chat"
	Reports       Key = "reports"
)

// All lists every key in display order.
var All = []Key{
	Students, Teachers, Faculties, Departments, Groups, Courses,
	Schedule, Attendance, Grades, Announcements, Chat, Reports,
}

// DefaultEnabled is the value of any key that has not been configured.
const DefaultEnabled = true

// ParseKey reports whether s names a module.
func ParseKey(s string) (Key, bool) {
	for _, k := range All {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// State maps every Key to whether it is enabled.
type State map[Key]bool

// Defaults returns a fully populated State with every key at DefaultEnabled.
func Defaults() State {
	st := make(State, len(All))
	for _, k := range All {
		st[k] = DefaultEnabled
	}
	return st
}

// Enabled reports key, treating an absent key as DefaultEnabled.
func (st State) Enabled(key Key) bool {
	v, ok := st[key]
	if !ok {
		return DefaultEnabled
	}
	return v
}

// Clone returns a fully populated copy of st.
func (st State) Clone() State {
	out := Defaults()
	for _, k := range All {
		if v, ok := st[k]; ok {
			out[k] = v
		}
	}
	return out
}

// Map converts st to the string-keyed form stored in documents and caches.
func (st State) Map() map[string]bool {
	out := make(map[string]bool, len(All))
	for _, k := range All {
		out[string(k)] = st.Enabled(k)
	}
	return out
}

// Disabled lists the switched-off keys in display order.
func (st State) Disabled() []Key {
	var out []Key
	for _, k := range All {
		if !st.Enabled(k) {
			out = append(out, k)
		}
	}
	return out
}

// Normalize builds a State from a stored module map. Unknown keys and
// non-boolean values are ignored; missing keys take DefaultEnabled. ok is
// false when raw is not a map at all.
func Normalize(raw any) (st State, ok bool) {
	st = Defaults()
	switch m := raw.(type) {
	case State:
		for _, k := range All {
			if v, has := m[k]; has {
				st[k] = v
			}
		}
	case map[string]bool:
		for name, v := range m {
			if k, known := ParseKey(name); known {
				st[k] = v
			}
		}
	case map[string]any:
		fromAny(st, m)
	case bson.M:
		fromAny(st, m)
	default:
		return st, false
	}
	return st, true
}

func fromAny(st State, m map[string]any) {
	for name, v := range m {
		k, known := ParseKey(name)
		if !known {
			continue
		}
		if b, isBool := v.(bool); isBool {
			st[k] = b
		}
	}
}
