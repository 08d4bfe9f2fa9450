package extract

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-contract/contract"
	"github.com/wippyai/wasm-contract/extract/internal/binary"
)

// WebAssembly binary format framing.
const (
	magic   uint32 = 0x6D736100 // "\0asm"
	version uint32 = 0x01
)

// Section IDs of the sections the extractor decodes. All other sections are
// skipped by their declared size.
const (
	sectionCustom   byte = 0
	sectionType     byte = 1
	sectionImport   byte = 2
	sectionFunction byte = 3
	sectionGlobal   byte = 6
	sectionExport   byte = 7
)

// Import/export kind bytes.
const (
	kindFunc   byte = 0
	kindTable  byte = 1
	kindMemory byte = 2
	kindGlobal byte = 3
	kindTag    byte = 4
)

const funcTypeByte byte = 0x60

// Errors returned for malformed module headers.
var (
	ErrInvalidMagic   = errors.New("invalid wasm magic number")
	ErrInvalidVersion = errors.New("invalid wasm version")
)

// Contract reads the declared interface surface of a core WebAssembly binary
// and returns it as a contract. Function and global bindings are captured;
// table and memory bindings carry no primitive signature and are ignored.
func Contract(data []byte) (*contract.Contract, error) {
	s, err := decode(data)
	if err != nil {
		return nil, err
	}
	return s.contract()
}

// surface is the decoded interface-relevant slice of a module.
type surface struct {
	types   []contract.FuncSig
	imports []moduleImport
	funcs   []uint32           // type indices of non-imported functions
	globals []contract.ValType // types of non-imported globals
	exports []moduleExport
}

type moduleImport struct {
	module  string
	name    string
	kind    byte
	typeIdx uint32           // kindFunc
	global  contract.ValType // kindGlobal
}

type moduleExport struct {
	name string
	kind byte
	idx  uint32
}

func decode(data []byte) (*surface, error) {
	r := binary.NewReader(bytes.NewReader(data))

	m, err := r.ReadU32LE()
	if err != nil {
		return nil, r.WrapError("header", err)
	}
	if m != magic {
		return nil, ErrInvalidMagic
	}
	v, err := r.ReadU32LE()
	if err != nil {
		return nil, r.WrapError("header", err)
	}
	if v != version {
		return nil, ErrInvalidVersion
	}

	s := &surface{}
	var lastDecoded byte

	for {
		sectionID, err := r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, r.WrapError("section header", err)
		}
		size, err := r.ReadU32()
		if err != nil {
			return nil, r.WrapError("section size", err)
		}
		sectionData, err := r.ReadBytes(int(size))
		if err != nil {
			return nil, r.WrapError("section data", err)
		}

		// Known sections must appear in ascending ID order; skipped
		// sections are not order-checked.
		switch sectionID {
		case sectionType, sectionImport, sectionFunction, sectionGlobal, sectionExport:
			if sectionID <= lastDecoded {
				return nil, fmt.Errorf("section %d appears out of order", sectionID)
			}
			lastDecoded = sectionID
		default:
			continue
		}

		sr := binary.NewReader(bytes.NewReader(sectionData))
		switch sectionID {
		case sectionType:
			err = s.readTypes(sr)
		case sectionImport:
			err = s.readImports(sr)
		case sectionFunction:
			err = s.readFuncs(sr)
		case sectionGlobal:
			err = s.readGlobals(sr)
		case sectionExport:
			err = s.readExports(sr)
		}
		if err != nil {
			return nil, sr.WrapError(sectionName(sectionID), err)
		}
	}

	return s, nil
}

func sectionName(id byte) string {
	switch id {
	case sectionType:
		return "type section"
	case sectionImport:
		return "import section"
	case sectionFunction:
		return "function section"
	case sectionGlobal:
		return "global section"
	case sectionExport:
		return "export section"
	}
	return fmt.Sprintf("section %d", id)
}

func (s *surface) readTypes(r *binary.Reader) error {
	count, err := r.ReadU32()
	if err != nil {
		return err
	}
	s.types = make([]contract.FuncSig, count)
	for i := range s.types {
		b, err := r.ReadByte()
		if err != nil {
			return err
		}
		if b != funcTypeByte {
			return fmt.Errorf("type %d: not a function type: 0x%02x", i, b)
		}
		params, err := readValTypes(r)
		if err != nil {
			return err
		}
		results, err := readValTypes(r)
		if err != nil {
			return err
		}
		s.types[i] = contract.FuncSig{Params: params, Results: results}
	}
	return nil
}

func (s *surface) readImports(r *binary.Reader) error {
	count, err := r.ReadU32()
	if err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		module, err := r.ReadName()
		if err != nil {
			return err
		}
		name, err := r.ReadName()
		if err != nil {
			return err
		}
		kind, err := r.ReadByte()
		if err != nil {
			return err
		}

		imp := moduleImport{module: module, name: name, kind: kind}

		switch kind {
		case kindFunc:
			imp.typeIdx, err = r.ReadU32()
		case kindTable:
			if _, err = r.ReadByte(); err == nil { // element type
				err = skipLimits(r)
			}
		case kindMemory:
			err = skipLimits(r)
		case kindGlobal:
			imp.global, err = readValType(r)
			if err == nil {
				_, err = r.ReadByte() // mutability
			}
		default:
			return fmt.Errorf("import %d: unknown kind: %d", i, kind)
		}
		if err != nil {
			return err
		}

		s.imports = append(s.imports, imp)
	}
	return nil
}

func (s *surface) readFuncs(r *binary.Reader) error {
	count, err := r.ReadU32()
	if err != nil {
		return err
	}
	s.funcs = make([]uint32, count)
	for i := range s.funcs {
		s.funcs[i], err = r.ReadU32()
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *surface) readGlobals(r *binary.Reader) error {
	count, err := r.ReadU32()
	if err != nil {
		return err
	}
	s.globals = make([]contract.ValType, count)
	for i := range s.globals {
		vt, err := readValType(r)
		if err != nil {
			return err
		}
		if _, err := r.ReadByte(); err != nil { // mutability
			return err
		}
		if err := skipConstExpr(r); err != nil {
			return err
		}
		s.globals[i] = vt
	}
	return nil
}

func (s *surface) readExports(r *binary.Reader) error {
	count, err := r.ReadU32()
	if err != nil {
		return err
	}
	s.exports = make([]moduleExport, count)
	for i := range s.exports {
		name, err := r.ReadName()
		if err != nil {
			return err
		}
		kind, err := r.ReadByte()
		if err != nil {
			return err
		}
		if kind > kindTag {
			return fmt.Errorf("invalid export kind: 0x%02x", kind)
		}
		idx, err := r.ReadU32()
		if err != nil {
			return err
		}
		s.exports[i] = moduleExport{name: name, kind: kind, idx: idx}
	}
	return nil
}

func readValTypes(r *binary.Reader) ([]contract.ValType, error) {
	count, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	out := make([]contract.ValType, count)
	for i := range out {
		out[i], err = readValType(r)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func readValType(r *binary.Reader) (contract.ValType, error) {
	b, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	switch vt := contract.ValType(b); vt {
	case contract.ValI32, contract.ValI64, contract.ValF32, contract.ValF64:
		return vt, nil
	}
	return 0, fmt.Errorf("unsupported value type: 0x%02x", b)
}

func skipLimits(r *binary.Reader) error {
	flags, err := r.ReadByte()
	if err != nil {
		return err
	}
	if _, err := r.ReadU32(); err != nil { // min
		return err
	}
	if flags&0x01 != 0 {
		if _, err := r.ReadU32(); err != nil { // max
			return err
		}
	}
	return nil
}

// skipConstExpr consumes a global initializer expression up to its end
// opcode. Only constant instructions are legal here.
func skipConstExpr(r *binary.Reader) error {
	for {
		op, err := r.ReadByte()
		if err != nil {
			return err
		}
		switch op {
		case 0x0B: // end
			return nil
		case 0x41: // i32.const
			_, err = r.ReadS32()
		case 0x42: // i64.const
			_, err = r.ReadS64()
		case 0x43: // f32.const
			_, err = r.ReadBytes(4)
		case 0x44: // f64.const
			_, err = r.ReadBytes(8)
		case 0x23: // global.get
			_, err = r.ReadU32()
		case 0xD0: // ref.null
			_, err = r.ReadByte()
		case 0xD2: // ref.func
			_, err = r.ReadU32()
		default:
			return fmt.Errorf("unsupported instruction in global initializer: 0x%02x", op)
		}
		if err != nil {
			return err
		}
	}
}

// contract converts the decoded surface into a contract, resolving exported
// function and global indices through the module's combined index space
// (imported entries first).
func (s *surface) contract() (*contract.Contract, error) {
	c := contract.New()

	var importedFuncs []uint32
	var importedGlobals []contract.ValType

	for _, imp := range s.imports {
		switch imp.kind {
		case kindFunc:
			importedFuncs = append(importedFuncs, imp.typeIdx)
			sig, err := s.funcSig(imp.typeIdx)
			if err != nil {
				return nil, fmt.Errorf("import %q %q: %w", imp.module, imp.name, err)
			}
			if err := c.AddImport(contract.ImportFunc(imp.module, imp.name, sig.Params, sig.Results)); err != nil {
				return nil, err
			}
		case kindGlobal:
			importedGlobals = append(importedGlobals, imp.global)
			if err := c.AddImport(contract.ImportGlobal(imp.module, imp.name, imp.global)); err != nil {
				return nil, err
			}
		}
	}

	for _, exp := range s.exports {
		switch exp.kind {
		case kindFunc:
			var typeIdx uint32
			if int(exp.idx) < len(importedFuncs) {
				typeIdx = importedFuncs[exp.idx]
			} else {
				local := int(exp.idx) - len(importedFuncs)
				if local >= len(s.funcs) {
					return nil, fmt.Errorf("export %q: function index %d out of range", exp.name, exp.idx)
				}
				typeIdx = s.funcs[local]
			}
			sig, err := s.funcSig(typeIdx)
			if err != nil {
				return nil, fmt.Errorf("export %q: %w", exp.name, err)
			}
			if err := c.AddExport(contract.ExportFunc(exp.name, sig.Params, sig.Results)); err != nil {
				return nil, err
			}
		case kindGlobal:
			var vt contract.ValType
			if int(exp.idx) < len(importedGlobals) {
				vt = importedGlobals[exp.idx]
			} else {
				local := int(exp.idx) - len(importedGlobals)
				if local >= len(s.globals) {
					return nil, fmt.Errorf("export %q: global index %d out of range", exp.name, exp.idx)
				}
				vt = s.globals[local]
			}
			if err := c.AddExport(contract.ExportGlobal(exp.name, vt)); err != nil {
				return nil, err
			}
		}
	}

	Logger().Debug("extracted module surface",
		zap.Int("imports", len(c.Imports)),
		zap.Int("exports", len(c.Exports)))

	return c, nil
}

func (s *surface) funcSig(typeIdx uint32) (contract.FuncSig, error) {
	if int(typeIdx) >= len(s.types) {
		return contract.FuncSig{}, fmt.Errorf("type index %d out of range", typeIdx)
	}
	return s.types[typeIdx], nil
}
