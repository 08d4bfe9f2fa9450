// Package extract reads the declared interface surface of a compiled
// WebAssembly module and expresses it as a contract.
//
// Only the sections that describe the surface are decoded: type, import,
// function, global, and export. Every other section, including code, is
// skipped by its declared size; no bytecode is ever executed or validated.
//
// Extract a module's surface:
//
//	c, err := extract.Contract(wasmBytes)
//
// Or verify that a module satisfies an asserted contract:
//
//	err := extract.Check(wasmBytes, asserted)
//
// Check reports structural mismatches as *contract.ConflictError and absent
// bindings as *UnsatisfiedError.
//
// Table and memory imports and exports carry no primitive value signature
// and are ignored. Modules whose surface uses value types outside the four
// primitives (i32, i64, f32, f64) are rejected.
package extract
