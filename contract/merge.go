package contract

import "go.uber.org/zap"

// Merge combines two contracts into one. Any binding identity present in
// both must be declared identically: an equal overlap is reconciled to a
// single entry, a structural disagreement aborts the whole merge with a
// *ConflictError. Imports and exports are reconciled independently.
//
// Neither input is mutated; on success the result is a fresh contract, on
// failure no partial result is produced.
func (c *Contract) Merge(other *Contract) (*Contract, error) {
	out := c.Clone()

	for key, imp := range other.Imports {
		if existing, ok := out.Imports[key]; ok {
			if !existing.Equal(imp) {
				return nil, importConflict(key, existing, imp)
			}
			continue
		}
		out.Imports[key] = imp
	}

	for key, exp := range other.Exports {
		if existing, ok := out.Exports[key]; ok {
			if !existing.Equal(exp) {
				return nil, exportConflict(key, existing, exp)
			}
			continue
		}
		out.Exports[key] = exp
	}

	Logger().Debug("merged contracts",
		zap.Int("imports", len(out.Imports)),
		zap.Int("exports", len(out.Exports)))

	return out, nil
}

// MergeAll folds a sequence of contracts strictly left to right, so a
// reported conflict is attributable to the first contract that disagrees
// with those before it. An empty sequence yields an empty contract.
func MergeAll(contracts ...*Contract) (*Contract, error) {
	out := New()
	for _, c := range contracts {
		merged, err := out.Merge(c)
		if err != nil {
			return nil, err
		}
		out = merged
	}
	return out, nil
}
