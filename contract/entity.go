package contract

import (
	"strings"
)

// EntityKind discriminates the two binding shapes a contract can describe.
// Values match the WebAssembly import/export kind bytes.
type EntityKind byte

const (
	KindFunc   EntityKind = 0 // function binding
	KindGlobal EntityKind = 3 // global variable binding
)

func (k EntityKind) String() string {
	switch k {
	case KindFunc:
		return "func"
	case KindGlobal:
		return "global"
	}
	return "unknown"
}

// FuncSig is an ordered function signature. Order of Params and Results is
// significant: the same types in a different order are a different signature.
type FuncSig struct {
	Params  []ValType
	Results []ValType
}

// Equal reports element-wise equality of both type lists.
func (s FuncSig) Equal(other FuncSig) bool {
	if len(s.Params) != len(other.Params) || len(s.Results) != len(other.Results) {
		return false
	}
	for i, p := range s.Params {
		if p != other.Params[i] {
			return false
		}
	}
	for i, r := range s.Results {
		if r != other.Results[i] {
			return false
		}
	}
	return true
}

func (s FuncSig) render(b *strings.Builder) {
	if len(s.Params) > 0 {
		b.WriteString(" (param")
		for _, p := range s.Params {
			b.WriteByte(' ')
			b.WriteString(p.String())
		}
		b.WriteByte(')')
	}
	if len(s.Results) > 0 {
		b.WriteString(" (result")
		for _, r := range s.Results {
			b.WriteByte(' ')
			b.WriteString(r.String())
		}
		b.WriteByte(')')
	}
}

// GlobalSig is the type of a global variable binding.
type GlobalSig struct {
	Type ValType
}

// ImportKey identifies an import within a contract. Imports are keyed by the
// (namespace, name) pair; exports occupy a separate key space keyed by name.
type ImportKey struct {
	Namespace string
	Name      string
}

// Import is a binding a module requires from its host environment. Exactly
// one of Func or Global is set, according to Kind.
type Import struct {
	Namespace string
	Name      string
	Kind      EntityKind
	Func      *FuncSig
	Global    *GlobalSig
}

// ImportFunc constructs a function import.
func ImportFunc(namespace, name string, params, results []ValType) Import {
	return Import{
		Namespace: namespace,
		Name:      name,
		Kind:      KindFunc,
		Func:      &FuncSig{Params: params, Results: results},
	}
}

// ImportGlobal constructs a global import.
func ImportGlobal(namespace, name string, typ ValType) Import {
	return Import{
		Namespace: namespace,
		Name:      name,
		Kind:      KindGlobal,
		Global:    &GlobalSig{Type: typ},
	}
}

// Key returns the identity used to look this import up in a contract.
func (i Import) Key() ImportKey {
	return ImportKey{Namespace: i.Namespace, Name: i.Name}
}

// Equal reports full structural equality: same variant, same identity, and
// the same signature with the same element order.
func (i Import) Equal(other Import) bool {
	if i.Kind != other.Kind || i.Namespace != other.Namespace || i.Name != other.Name {
		return false
	}
	switch i.Kind {
	case KindFunc:
		return i.Func.Equal(*other.Func)
	case KindGlobal:
		return *i.Global == *other.Global
	}
	return false
}

// String renders the import in the textual assertion syntax, e.g.
// (func "env" "plus_one" (param i32) (result i32)).
func (i Import) String() string {
	var b strings.Builder
	b.WriteByte('(')
	b.WriteString(i.Kind.String())
	b.WriteString(" \"")
	b.WriteString(i.Namespace)
	b.WriteString("\" \"")
	b.WriteString(i.Name)
	b.WriteByte('"')
	switch i.Kind {
	case KindFunc:
		i.Func.render(&b)
	case KindGlobal:
		b.WriteString(" (type ")
		b.WriteString(i.Global.Type.String())
		b.WriteByte(')')
	}
	b.WriteByte(')')
	return b.String()
}

// Export is a binding a module offers to consumers. Exactly one of Func or
// Global is set, according to Kind.
type Export struct {
	Name   string
	Kind   EntityKind
	Func   *FuncSig
	Global *GlobalSig
}

// ExportFunc constructs a function export.
func ExportFunc(name string, params, results []ValType) Export {
	return Export{
		Name: name,
		Kind: KindFunc,
		Func: &FuncSig{Params: params, Results: results},
	}
}

// ExportGlobal constructs a global export.
func ExportGlobal(name string, typ ValType) Export {
	return Export{
		Name:   name,
		Kind:   KindGlobal,
		Global: &GlobalSig{Type: typ},
	}
}

// Key returns the identity used to look this export up in a contract.
// Exports are keyed by name alone.
func (e Export) Key() string {
	return e.Name
}

// Equal reports full structural equality.
func (e Export) Equal(other Export) bool {
	if e.Kind != other.Kind || e.Name != other.Name {
		return false
	}
	switch e.Kind {
	case KindFunc:
		return e.Func.Equal(*other.Func)
	case KindGlobal:
		return *e.Global == *other.Global
	}
	return false
}

// String renders the export in the textual assertion syntax.
func (e Export) String() string {
	var b strings.Builder
	b.WriteByte('(')
	b.WriteString(e.Kind.String())
	b.WriteString(" \"")
	b.WriteString(e.Name)
	b.WriteByte('"')
	switch e.Kind {
	case KindFunc:
		e.Func.render(&b)
	case KindGlobal:
		b.WriteString(" (type ")
		b.WriteString(e.Global.Type.String())
		b.WriteByte(')')
	}
	b.WriteByte(')')
	return b.String()
}
