// Package store persists rule definitions grouped by rule set.
package store

import (
	"errors"

	"github.com/randalmurphal/weathergear/pkg/weathergear/rules"
)

// Store persists rule definitions.
// Implementations must be safe for concurrent use.
type Store interface {
	// Save stores a definition in a rule set.
	// Overwrites the condition if the rule already exists, keeping its position.
	Save(set string, def rules.Definition) error

	// Load retrieves one definition.
	// Returns ErrNotFound if the rule doesn't exist.
	Load(set, name string) (rules.Definition, error)

	// List returns the definitions of a set in insertion order.
	// Returns empty slice (not error) if the set has no rules.
	List(set string) ([]rules.Definition, error)

	// Sets returns the names of all sets with at least one rule, sorted.
	Sets() ([]string, error)

	// Delete removes one rule.
	// Returns nil if the rule doesn't exist.
	Delete(set, name string) error

	// DeleteSet removes every rule in a set.
	// Returns nil if the set has no rules.
	DeleteSet(set string) error

	// ReplaceSet atomically replaces the rules of a set with defs, in order.
	// Rules not in defs are removed. An empty defs removes the set.
	// On error the stored set is unchanged.
	ReplaceSet(set string, defs []rules.Definition) error

	// Close releases any resources (connections, files).
	Close() error
}

// Sentinel errors for store operations.
var (
	// ErrNotFound indicates a rule doesn't exist.
	ErrNotFound = errors.New("rule not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("rule store closed")
)

// SaveSet replaces the stored copy of set with its current definitions.
func SaveSet(s Store, set *rules.Set) error {
	return s.ReplaceSet(set.Name(), set.Definitions())
}
