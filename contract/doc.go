// Package contract models the interface surface of a compiled WebAssembly
// module: the bindings it requires from its host environment (imports) and
// the bindings it offers to consumers (exports).
//
// A Contract maps binding identities to declared signatures. Imports are
// keyed by the (namespace, name) pair, exports by name alone, and the two
// key spaces are independent: an import and an export never collide even
// when they share a name. Merge combines the surfaces of independently
// authored modules, accepting re-declaration and rejecting contradiction:
//
//	merged, err := a.Merge(b)
//	var conflict *contract.ConflictError
//	if errors.As(err, &conflict) {
//		fmt.Println(conflict)
//	}
//
// Contracts are logically immutable once built. Merge never mutates either
// input and returns a fresh value; on conflict no partial result is
// produced.
package contract
