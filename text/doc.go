// Package text parses the textual assertion syntax for module contracts.
//
// A contract file is a sequence of s-expression assertions naming the
// bindings a module imports and exports:
//
//	(assert_import (func "env" "plus_one" (param i32) (result i32)))
//	(assert_import (global "env" "length" (type i32)))
//	(assert_export (func "bank_balance" (result i64)))
//	(assert_export (global "version" (type i32)))
//
// Function signatures may repeat (param ...) and (result ...) groups; types
// within a group are ordered and order is significant. Line comments (;;)
// and block comments (; ... ;) are supported.
//
// Duplicate assertions are accepted when structurally identical and rejected
// with a *contract.ConflictError when they disagree, matching the merge
// semantics of the contract package.
package text
