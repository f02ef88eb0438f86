// Package store persists user function definitions between sessions.
package store

// Definition is a user function in source form, e.g. name "f", params
// ["x", "y"] and body "x ^ 2 + y".
type Definition struct {
	Name   string
	Params []string
	Body   string
}

// Store is the interface for function library persistence.
type Store interface {
	// Get retrieves a definition by name. The bool is false if not found.
	Get(name string) (Definition, bool, error)
	// Put stores a definition, overwriting one with the same name.
	Put(def Definition) error
	// Delete removes a definition by name.
	Delete(name string) error
	// List returns every definition in the order they were first stored.
	List() ([]Definition, error)
	// Close releases resources.
	Close() error
}
