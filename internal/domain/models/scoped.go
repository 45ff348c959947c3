// internal/domain/models/scoped.go
package models

// Entity is implemented by every organization-scoped record type.
//
// Problems lists the bson names of fields that are missing or hold values
// outside their enumeration. The record id is not checked here; it is
// assigned by the store.
type Entity interface {
	Problems() []string
}

// Role discriminates students from teachers in the shared users collection.
type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleTeacher Role = "TEACHER"
)

func oneOf[T ~string](v T, allowed ...T) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

func require(p []string, field, value string) []string {
	if value == "" {
		return append(p, field)
	}
	return p
}
