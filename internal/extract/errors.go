package extract

import "fmt"

// AmbiguousStructureError means a table predicate did not match exactly one
// table, the page no longer has the structure it is assumed to have.
type AmbiguousStructureError struct {
	Predicate string
	Count     int
}

func (e *AmbiguousStructureError) Error() string {
	return fmt.Sprintf("ambiguous structure: %s matched %d tables, expected exactly 1", e.Predicate, e.Count)
}

// SchemaMismatchError means a table row does not have as many cells as the
// schema has columns.
type SchemaMismatchError struct {
	Schema string
	Row    int
	Got    int
	Want   int
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("schema mismatch: %s row %d has %d cells, expected %d", e.Schema, e.Row, e.Got, e.Want)
}

// UnexpectedLayoutError means the placeholder row a table is supposed to
// start with is missing or different.
type UnexpectedLayoutError struct {
	Schema string
	Reason string
}

func (e *UnexpectedLayoutError) Error() string {
	return fmt.Sprintf("unexpected layout: %s: %s", e.Schema, e.Reason)
}

// MalformedFieldError means a cell or link did not have the format a
// derivation parses.
type MalformedFieldError struct {
	Field  string
	Value  string
	Reason string
}

func (e *MalformedFieldError) Error() string {
	return fmt.Sprintf("malformed field %s %q: %s", e.Field, e.Value, e.Reason)
}

// ConsistencyError means tables that parsed fine disagree with each other.
type ConsistencyError struct {
	Entity string
	Reason string
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("consistency: %s: %s", e.Entity, e.Reason)
}
