package types

import (
	"bytes"
	"errors"
	"fmt"
)

var (
	// ErrImportConflict is returned when a replacement import would bind a
	// simple name that already refers to something else in the unit.
	ErrImportConflict = errors.New("import conflict")
	// ErrUnresolvedTarget marks a call site whose target could not be resolved.
	ErrUnresolvedTarget = errors.New("unresolved invocation target")
	// ErrSyntax is returned when rewritten source no longer parses cleanly.
	ErrSyntax = errors.New("syntax error in rewritten source")
)

// ConflictError describes an aborted rewrite of a single call site.
type ConflictError struct {
	Wanted Import
	// Existing describes what the simple name is already bound to.
	Existing string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %q would rebind a name already bound to %s", ErrImportConflict, e.Wanted.String(), e.Existing)
}

func (e *ConflictError) Unwrap() error { return ErrImportConflict }

// MatchResult is a matched call site plus the imports the match relied on.
type MatchResult struct {
	Invocation *Invocation
	// Binding is the legacy import the target was resolved through; zero for
	// fully qualified calls.
	Binding Import
	// Factory is the matcher factory import found in the unit.
	Factory Import
}

// RewritePlan is the set of changes needed to migrate one call site.
type RewritePlan struct {
	Invocation *Invocation
	// Remove is a removal candidate; the driver only applies it once every
	// use of the binding in the unit has been migrated.
	Remove *Import
	Add    *Import
	Edits  []Edit
}

// State is the progress of a unit through a recipe pass.
type State int

const (
	StateUnvisited State = iota
	StateScanned
	StateModified
	StateUnchanged
)

func (s State) String() string {
	switch s {
	case StateUnvisited:
		return "unvisited"
	case StateScanned:
		return "scanned"
	case StateModified:
		return "modified"
	case StateUnchanged:
		return "unchanged"
	default:
		return "unknown"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Conflict records a call site left unchanged because of an import clash.
type Conflict struct {
	Position Position `json:"position"`
	Wanted   Import   `json:"wanted"`
	Existing string   `json:"existing"`
}

// Report is the outcome of one recipe on one compilation unit.
type Report struct {
	Recipe    string     `json:"recipe"`
	Filename  string     `json:"filename"`
	State     State      `json:"state"`
	Migrated  []Position `json:"migrated,omitempty"`
	Added     []Import   `json:"added,omitempty"`
	Removed   []Import   `json:"removed,omitempty"`
	Conflicts []Conflict `json:"conflicts,omitempty"`
	// Imports is the unit's import list after the pass when State is
	// StateModified.
	Imports    []Import `json:"imports,omitempty"`
	Edits      []Edit   `json:"edits,omitempty"`
	Unresolved int      `json:"unresolved,omitempty"`
	Suppressed int      `json:"suppressed,omitempty"`
	// Input is the text the recipe ran on. Positions in the report refer
	// to it, which for chained recipes is the previous recipe's output.
	Input []byte `json:"-"`
}

// FileResult is the outcome of running every enabled recipe on one file.
type FileResult struct {
	Filename string   `json:"filename"`
	Original []byte   `json:"-"`
	Output   []byte   `json:"-"`
	Reports  []Report `json:"reports"`
}

// Modified reports whether the output differs from the original bytes.
func (r *FileResult) Modified() bool {
	return !bytes.Equal(r.Original, r.Output)
}
