package contract

import (
	"fmt"
	"strings"
)

// Space identifies which key space of a contract an error refers to.
type Space string

const (
	SpaceImport Space = "import"
	SpaceExport Space = "export"
)

// ConflictError is returned when two bindings share a key but differ in any
// structural detail: arity, element types, element order, or variant shape.
// It is the only error kind produced by contract construction and merging.
type ConflictError struct {
	Space     Space
	Namespace string // empty for export conflicts
	Name      string
	Existing  string // textual rendering of the stored definition
	Incoming  string // textual rendering of the rejected definition
}

func (e *ConflictError) Error() string {
	var b strings.Builder
	b.WriteString("conflict detected: the ")
	b.WriteString(string(e.Space))
	b.WriteByte(' ')
	if e.Space == SpaceImport {
		fmt.Fprintf(&b, "%q %q", e.Namespace, e.Name)
	} else {
		fmt.Fprintf(&b, "%q", e.Name)
	}
	b.WriteString(" is declared twice with different definitions: ")
	b.WriteString(e.Existing)
	b.WriteString(" vs ")
	b.WriteString(e.Incoming)
	return b.String()
}

// Is matches any ConflictError in the same key space.
func (e *ConflictError) Is(target error) bool {
	if t, ok := target.(*ConflictError); ok {
		return e.Space == t.Space
	}
	return false
}

func importConflict(key ImportKey, existing, incoming Import) *ConflictError {
	return &ConflictError{
		Space:     SpaceImport,
		Namespace: key.Namespace,
		Name:      key.Name,
		Existing:  existing.String(),
		Incoming:  incoming.String(),
	}
}

func exportConflict(name string, existing, incoming Export) *ConflictError {
	return &ConflictError{
		Space:    SpaceExport,
		Name:     name,
		Existing: existing.String(),
		Incoming: incoming.String(),
	}
}
