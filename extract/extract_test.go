package extract_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tetratelabs/wazero"

	"github.com/wippyai/wasm-contract/contract"
	"github.com/wippyai/wasm-contract/extract"
)

// Binary encoding helpers for hand-built test modules.

func uleb(v uint32) []byte {
	var out []byte
	for {
		b := byte(v & 0x7F)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		out = append(out, b)
		if v == 0 {
			return out
		}
	}
}

func wname(s string) []byte {
	return append(uleb(uint32(len(s))), s...)
}

func section(id byte, body []byte) []byte {
	out := []byte{id}
	out = append(out, uleb(uint32(len(body)))...)
	return append(out, body...)
}

func cat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

var header = []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}

// buildTestModule hand-encodes a small but complete module:
//
//	(import "env" "plus_one" (func (param i32) (result i32)))
//	(import "env" "offset" (global i32))
//	(import "env" "mem" (memory 1))
//	(import "env" "tbl" (table 1 funcref))
//	(global i64 (i64.const 7))
//	(func $add (param i64 i64) (result i64) ...)
//	(func $noop ...)
//	(export "add" (func $add))
//	(export "plus_one_re" (func 0))
//	(export "noop" (func $noop))
//	(export "counter" (global 1))
//	(export "offset_re" (global 0))
//	(export "mem" (memory 0))
func buildTestModule() []byte {
	typeSec := cat(
		uleb(3),
		// (i32) -> (i32)
		[]byte{0x60}, uleb(1), []byte{0x7F}, uleb(1), []byte{0x7F},
		// (i64, i64) -> (i64)
		[]byte{0x60}, uleb(2), []byte{0x7E, 0x7E}, uleb(1), []byte{0x7E},
		// () -> ()
		[]byte{0x60}, uleb(0), uleb(0),
	)

	importSec := cat(
		uleb(4),
		wname("env"), wname("plus_one"), []byte{0x00}, uleb(0), // func, type 0
		wname("env"), wname("offset"), []byte{0x03, 0x7F, 0x00}, // global i32 const
		wname("env"), wname("mem"), []byte{0x02, 0x00}, uleb(1), // memory, min 1
		wname("env"), wname("tbl"), []byte{0x01, 0x70, 0x00}, uleb(1), // table funcref, min 1
	)

	funcSec := cat(uleb(2), uleb(1), uleb(2)) // types 1, 2

	globalSec := cat(
		uleb(1),
		[]byte{0x7E, 0x00},       // i64 const
		[]byte{0x42, 0x07, 0x0B}, // i64.const 7, end
	)

	exportSec := cat(
		uleb(6),
		wname("add"), []byte{0x00}, uleb(1),
		wname("plus_one_re"), []byte{0x00}, uleb(0),
		wname("noop"), []byte{0x00}, uleb(2),
		wname("counter"), []byte{0x03}, uleb(1),
		wname("offset_re"), []byte{0x03}, uleb(0),
		wname("mem"), []byte{0x02}, uleb(0),
	)

	customSec := cat(wname("note"), []byte("ignored payload"))

	addBody := []byte{0x00, 0x20, 0x00, 0x20, 0x01, 0x7C, 0x0B} // local.get 0, local.get 1, i64.add
	noopBody := []byte{0x00, 0x0B}
	codeSec := cat(
		uleb(2),
		uleb(uint32(len(addBody))), addBody,
		uleb(uint32(len(noopBody))), noopBody,
	)

	return cat(
		header,
		section(1, typeSec),
		section(2, importSec),
		section(3, funcSec),
		section(6, globalSec),
		section(7, exportSec),
		section(0, customSec),
		section(10, codeSec),
	)
}

func TestContractFromModule(t *testing.T) {
	c, err := extract.Contract(buildTestModule())
	if err != nil {
		t.Fatalf("Contract failed: %v", err)
	}

	// Memory and table imports carry no primitive signature.
	if got := len(c.Imports); got != 2 {
		t.Errorf("imports = %d, want 2", got)
	}
	// The memory export is ignored.
	if got := len(c.Exports); got != 5 {
		t.Errorf("exports = %d, want 5", got)
	}

	plusOne, ok := c.Imports[contract.ImportKey{Namespace: "env", Name: "plus_one"}]
	if !ok {
		t.Fatal("import env.plus_one not found")
	}
	if !plusOne.Equal(contract.ImportFunc("env", "plus_one",
		[]contract.ValType{contract.ValI32}, []contract.ValType{contract.ValI32})) {
		t.Errorf("env.plus_one = %s, want (func \"env\" \"plus_one\" (param i32) (result i32))", plusOne)
	}

	offset, ok := c.Imports[contract.ImportKey{Namespace: "env", Name: "offset"}]
	if !ok {
		t.Fatal("import env.offset not found")
	}
	if !offset.Equal(contract.ImportGlobal("env", "offset", contract.ValI32)) {
		t.Errorf("env.offset = %s, want (global \"env\" \"offset\" (type i32))", offset)
	}

	tests := []struct {
		name string
		want contract.Export
	}{
		{"add", contract.ExportFunc("add",
			[]contract.ValType{contract.ValI64, contract.ValI64}, []contract.ValType{contract.ValI64})},
		// Re-exported import resolves through the combined function index space.
		{"plus_one_re", contract.ExportFunc("plus_one_re",
			[]contract.ValType{contract.ValI32}, []contract.ValType{contract.ValI32})},
		{"noop", contract.ExportFunc("noop", nil, nil)},
		{"counter", contract.ExportGlobal("counter", contract.ValI64)},
		{"offset_re", contract.ExportGlobal("offset_re", contract.ValI32)},
	}
	for _, tt := range tests {
		got, ok := c.Exports[tt.name]
		if !ok {
			t.Errorf("export %q not found", tt.name)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("export %q = %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestContractEmptyModule(t *testing.T) {
	c, err := extract.Contract(header)
	if err != nil {
		t.Fatalf("Contract failed: %v", err)
	}
	if len(c.Imports) != 0 || len(c.Exports) != 0 {
		t.Errorf("contract = %d imports, %d exports, want empty", len(c.Imports), len(c.Exports))
	}
}

func TestContractBadHeader(t *testing.T) {
	if _, err := extract.Contract([]byte{0x00, 0x61, 0x73, 0x6E, 0x01, 0x00, 0x00, 0x00}); !errors.Is(err, extract.ErrInvalidMagic) {
		t.Errorf("bad magic error = %v, want ErrInvalidMagic", err)
	}
	if _, err := extract.Contract([]byte{0x00, 0x61, 0x73, 0x6D, 0x02, 0x00, 0x00, 0x00}); !errors.Is(err, extract.ErrInvalidVersion) {
		t.Errorf("bad version error = %v, want ErrInvalidVersion", err)
	}
	if _, err := extract.Contract([]byte{0x00, 0x61}); err == nil {
		t.Error("truncated header accepted")
	}
}

func TestContractSectionOutOfOrder(t *testing.T) {
	exportSec := cat(uleb(0))
	importSec := cat(uleb(0))
	data := cat(header, section(7, exportSec), section(2, importSec))

	_, err := extract.Contract(data)
	if err == nil {
		t.Fatal("out-of-order sections accepted")
	}
	if !strings.Contains(err.Error(), "out of order") {
		t.Errorf("error = %v, want section ordering complaint", err)
	}
}

func TestContractNonPrimitiveValType(t *testing.T) {
	// A type section using v128 (0x7B) is outside the contract model.
	typeSec := cat(uleb(1), []byte{0x60}, uleb(1), []byte{0x7B}, uleb(0))
	data := cat(header, section(1, typeSec))

	if _, err := extract.Contract(data); err == nil {
		t.Error("non-primitive value type accepted")
	}
}

// The extractor's view of a module must agree with an independent decoder.
func TestExtractMatchesWazero(t *testing.T) {
	data := buildTestModule()

	c, err := extract.Contract(data)
	if err != nil {
		t.Fatalf("Contract failed: %v", err)
	}

	ctx := context.Background()
	r := wazero.NewRuntime(ctx)
	defer r.Close(ctx)

	compiled, err := r.CompileModule(ctx, data)
	if err != nil {
		t.Fatalf("wazero rejected test module: %v", err)
	}
	defer compiled.Close(ctx)

	for _, def := range compiled.ImportedFunctions() {
		ns, name, _ := def.Import()
		imp, ok := c.Imports[contract.ImportKey{Namespace: ns, Name: name}]
		if !ok {
			t.Errorf("import %s.%s known to wazero but not extracted", ns, name)
			continue
		}
		if imp.Kind != contract.KindFunc {
			t.Errorf("import %s.%s kind = %v, want func", ns, name, imp.Kind)
			continue
		}
		params := def.ParamTypes()
		results := def.ResultTypes()
		if len(params) != len(imp.Func.Params) || len(results) != len(imp.Func.Results) {
			t.Errorf("import %s.%s arity disagrees with wazero", ns, name)
			continue
		}
		for i, p := range params {
			if byte(imp.Func.Params[i]) != byte(p) {
				t.Errorf("import %s.%s param %d = %v, wazero says 0x%02x", ns, name, i, imp.Func.Params[i], byte(p))
			}
		}
		for i, res := range results {
			if byte(imp.Func.Results[i]) != byte(res) {
				t.Errorf("import %s.%s result %d = %v, wazero says 0x%02x", ns, name, i, imp.Func.Results[i], byte(res))
			}
		}
	}

	for name, def := range compiled.ExportedFunctions() {
		exp, ok := c.Exports[name]
		if !ok {
			t.Errorf("export %q known to wazero but not extracted", name)
			continue
		}
		if exp.Kind != contract.KindFunc {
			t.Errorf("export %q kind = %v, want func", name, exp.Kind)
			continue
		}
		params := def.ParamTypes()
		results := def.ResultTypes()
		if len(params) != len(exp.Func.Params) || len(results) != len(exp.Func.Results) {
			t.Errorf("export %q arity disagrees with wazero", name)
			continue
		}
		for i, p := range params {
			if byte(exp.Func.Params[i]) != byte(p) {
				t.Errorf("export %q param %d = %v, wazero says 0x%02x", name, i, exp.Func.Params[i], byte(p))
			}
		}
		for i, res := range results {
			if byte(exp.Func.Results[i]) != byte(res) {
				t.Errorf("export %q result %d = %v, wazero says 0x%02x", name, i, exp.Func.Results[i], byte(res))
			}
		}
	}
}
