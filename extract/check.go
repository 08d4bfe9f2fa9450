package extract

import (
	"fmt"
	"sort"
	"strings"

	"github.com/wippyai/wasm-contract/contract"
)

// Check verifies that a compiled module satisfies an asserted contract:
// every asserted binding must appear in the module's declared surface with a
// structurally equal definition. A mismatched definition is reported as a
// *contract.ConflictError naming both; absent bindings are collected into a
// *UnsatisfiedError. A nil return means the module satisfies the contract.
func Check(data []byte, asserted *contract.Contract) error {
	actual, err := Contract(data)
	if err != nil {
		return err
	}

	unsat := &UnsatisfiedError{}

	for key, imp := range asserted.Imports {
		got, ok := actual.Imports[key]
		if !ok {
			unsat.Imports = append(unsat.Imports, key)
			continue
		}
		if !got.Equal(imp) {
			return &contract.ConflictError{
				Space:     contract.SpaceImport,
				Namespace: key.Namespace,
				Name:      key.Name,
				Existing:  got.String(),
				Incoming:  imp.String(),
			}
		}
	}

	for name, exp := range asserted.Exports {
		got, ok := actual.Exports[name]
		if !ok {
			unsat.Exports = append(unsat.Exports, name)
			continue
		}
		if !got.Equal(exp) {
			return &contract.ConflictError{
				Space:    contract.SpaceExport,
				Name:     name,
				Existing: got.String(),
				Incoming: exp.String(),
			}
		}
	}

	if len(unsat.Imports) > 0 || len(unsat.Exports) > 0 {
		unsat.sort()
		return unsat
	}
	return nil
}

// UnsatisfiedError reports asserted bindings absent from a module's
// declared surface.
type UnsatisfiedError struct {
	Imports []contract.ImportKey
	Exports []string
}

func (e *UnsatisfiedError) sort() {
	sort.Slice(e.Imports, func(i, j int) bool {
		if e.Imports[i].Namespace != e.Imports[j].Namespace {
			return e.Imports[i].Namespace < e.Imports[j].Namespace
		}
		return e.Imports[i].Name < e.Imports[j].Name
	})
	sort.Strings(e.Exports)
}

func (e *UnsatisfiedError) Error() string {
	total := len(e.Imports) + len(e.Exports)
	if total == 0 {
		return "module does not satisfy contract"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "module does not satisfy contract: %d missing binding(s):\n", total)

	// Group imports by namespace for cleaner output
	byNS := make(map[string][]string)
	var nsOrder []string
	for _, key := range e.Imports {
		if _, exists := byNS[key.Namespace]; !exists {
			nsOrder = append(nsOrder, key.Namespace)
		}
		byNS[key.Namespace] = append(byNS[key.Namespace], key.Name)
	}

	for _, ns := range nsOrder {
		b.WriteString("\n  imports from ")
		b.WriteString(ns)
		b.WriteString(":\n")
		for _, name := range byNS[ns] {
			b.WriteString("    - ")
			b.WriteString(name)
			b.WriteByte('\n')
		}
	}

	if len(e.Exports) > 0 {
		b.WriteString("\n  exports:\n")
		for _, name := range e.Exports {
			b.WriteString("    - ")
			b.WriteString(name)
			b.WriteByte('\n')
		}
	}

	return strings.TrimSuffix(b.String(), "\n")
}

// Is reports whether target matches this error type.
func (e *UnsatisfiedError) Is(target error) bool {
	_, ok := target.(*UnsatisfiedError)
	return ok
}
