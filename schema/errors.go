package schema

import "errors"

var (
	// ErrDuplicateType is returned when registering a type name twice.
	ErrDuplicateType = errors.New("schema: duplicate type")
	// ErrDuplicateField is returned when a field name is already taken on a type.
	ErrDuplicateField = errors.New("schema: duplicate field")
	// ErrDuplicateRelationship is returned when a relationship name is already taken on a type.
	ErrDuplicateRelationship = errors.New("schema: duplicate relationship")
	// ErrUnknownType is returned when an operation references an unregistered type.
	ErrUnknownType = errors.New("schema: unknown type")
	// ErrUnknownField is returned when an override references an undeclared field.
	ErrUnknownField = errors.New("schema: unknown field")
	// ErrUnknownRelationship is returned when a relationship name is not declared on a type.
	ErrUnknownRelationship = errors.New("schema: unknown relationship")
	// ErrUnknownInstance is returned when an instance id or reference is not held by the registry.
	ErrUnknownInstance = errors.New("schema: unknown instance")
	// ErrTypeMismatch is returned when a linked instance is not of the declared target type.
	ErrTypeMismatch = errors.New("schema: type mismatch")
	// ErrMissingBackref is returned when a many-to-many relationship lacks a usable backref.
	ErrMissingBackref = errors.New("schema: missing backref")
)

var registryErrors = []error{
	ErrDuplicateType,
	ErrDuplicateField,
	ErrDuplicateRelationship,
	ErrUnknownType,
	ErrUnknownField,
	ErrUnknownRelationship,
	ErrUnknownInstance,
	ErrTypeMismatch,
	ErrMissingBackref,
}

// IsRegistryError reports whether err belongs to the registry's error taxonomy.
func IsRegistryError(err error) bool {
	for _, target := range registryErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
