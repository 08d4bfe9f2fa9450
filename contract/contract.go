package contract

// Contract is the full interface surface of one compiled module: the
// bindings it requires from its host (Imports) and the bindings it offers
// (Exports). Within one contract no two entities share a key; AddImport,
// AddExport and Merge enforce the invariant. The zero value is an empty
// contract ready for use.
type Contract struct {
	Imports map[ImportKey]Import
	Exports map[string]Export
}

// New returns an empty contract.
func New() *Contract {
	return &Contract{
		Imports: make(map[ImportKey]Import),
		Exports: make(map[string]Export),
	}
}

// AddImport records an import binding. Re-adding a structurally equal
// definition is a no-op; a structurally different definition under the same
// key leaves the contract unchanged and returns a *ConflictError.
func (c *Contract) AddImport(imp Import) error {
	key := imp.Key()
	if existing, ok := c.Imports[key]; ok {
		if !existing.Equal(imp) {
			return importConflict(key, existing, imp)
		}
		return nil
	}
	if c.Imports == nil {
		c.Imports = make(map[ImportKey]Import)
	}
	c.Imports[key] = imp
	return nil
}

// AddExport records an export binding with the same redeclaration rules as
// AddImport.
func (c *Contract) AddExport(exp Export) error {
	key := exp.Key()
	if existing, ok := c.Exports[key]; ok {
		if !existing.Equal(exp) {
			return exportConflict(key, existing, exp)
		}
		return nil
	}
	if c.Exports == nil {
		c.Exports = make(map[string]Export)
	}
	c.Exports[key] = exp
	return nil
}

// Clone returns an independent copy. Entities are immutable once built, so a
// shallow copy of the entries suffices.
func (c *Contract) Clone() *Contract {
	out := New()
	for key, imp := range c.Imports {
		out.Imports[key] = imp
	}
	for key, exp := range c.Exports {
		out.Exports[key] = exp
	}
	return out
}

// Equal reports whether two contracts describe the same interface surface.
func (c *Contract) Equal(other *Contract) bool {
	if len(c.Imports) != len(other.Imports) || len(c.Exports) != len(other.Exports) {
		return false
	}
	for key, imp := range c.Imports {
		got, ok := other.Imports[key]
		if !ok || !got.Equal(imp) {
			return false
		}
	}
	for key, exp := range c.Exports {
		got, ok := other.Exports[key]
		if !ok || !got.Equal(exp) {
			return false
		}
	}
	return true
}
