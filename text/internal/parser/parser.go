package parser

import (
	"fmt"

	"github.com/wippyai/wasm-contract/contract"
	"github.com/wippyai/wasm-contract/text/internal/token"
)

type Parser struct {
	tokens []token.Token
	pos    int
}

func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse consumes the whole token stream and builds the asserted contract.
// Conflicting duplicate assertions surface a *contract.ConflictError.
func (p *Parser) Parse() (*contract.Contract, error) {
	c := contract.New()
	for p.peek() != nil {
		if err := p.parseAssertion(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (p *Parser) peek() *token.Token {
	if p.pos >= len(p.tokens) {
		return nil
	}
	return &p.tokens[p.pos]
}

func (p *Parser) next() *token.Token {
	if p.pos >= len(p.tokens) {
		return nil
	}
	t := &p.tokens[p.pos]
	p.pos++
	return t
}

func (p *Parser) expect(typ token.Type) (*token.Token, error) {
	t := p.next()
	if t == nil {
		return nil, fmt.Errorf("unexpected end of input")
	}
	if t.Type == token.Illegal {
		return nil, fmt.Errorf("line %d: illegal token %q", t.Line, t.Value)
	}
	if t.Type != typ {
		return nil, fmt.Errorf("line %d: expected %v, got %q", t.Line, typ, t.Value)
	}
	return t, nil
}

func (p *Parser) parseAssertion(c *contract.Contract) error {
	if _, err := p.expect(token.LParen); err != nil {
		return err
	}
	kw, err := p.expect(token.Ident)
	if err != nil {
		return err
	}

	switch kw.Value {
	case "assert_import":
		err = p.parseImport(c)
	case "assert_export":
		err = p.parseExport(c)
	default:
		return fmt.Errorf("line %d: expected assert_import or assert_export, got %q", kw.Line, kw.Value)
	}
	if err != nil {
		return err
	}

	_, err = p.expect(token.RParen)
	return err
}

func (p *Parser) parseImport(c *contract.Contract) error {
	if _, err := p.expect(token.LParen); err != nil {
		return err
	}
	kw, err := p.expect(token.Ident)
	if err != nil {
		return err
	}
	ns, err := p.expect(token.String)
	if err != nil {
		return err
	}
	name, err := p.expect(token.String)
	if err != nil {
		return err
	}

	switch kw.Value {
	case "func":
		sig, err := p.parseFuncSig()
		if err != nil {
			return err
		}
		if _, err := p.expect(token.RParen); err != nil {
			return err
		}
		return c.AddImport(contract.ImportFunc(ns.Value, name.Value, sig.Params, sig.Results))
	case "global":
		typ, err := p.parseGlobalType()
		if err != nil {
			return err
		}
		if _, err := p.expect(token.RParen); err != nil {
			return err
		}
		return c.AddImport(contract.ImportGlobal(ns.Value, name.Value, typ))
	default:
		return fmt.Errorf("line %d: expected func or global, got %q", kw.Line, kw.Value)
	}
}

func (p *Parser) parseExport(c *contract.Contract) error {
	if _, err := p.expect(token.LParen); err != nil {
		return err
	}
	kw, err := p.expect(token.Ident)
	if err != nil {
		return err
	}
	name, err := p.expect(token.String)
	if err != nil {
		return err
	}

	switch kw.Value {
	case "func":
		sig, err := p.parseFuncSig()
		if err != nil {
			return err
		}
		if _, err := p.expect(token.RParen); err != nil {
			return err
		}
		return c.AddExport(contract.ExportFunc(name.Value, sig.Params, sig.Results))
	case "global":
		typ, err := p.parseGlobalType()
		if err != nil {
			return err
		}
		if _, err := p.expect(token.RParen); err != nil {
			return err
		}
		return c.AddExport(contract.ExportGlobal(name.Value, typ))
	default:
		return fmt.Errorf("line %d: expected func or global, got %q", kw.Line, kw.Value)
	}
}

// parseFuncSig consumes zero or more (param t*) and (result t*) groups.
func (p *Parser) parseFuncSig() (contract.FuncSig, error) {
	var sig contract.FuncSig
	for {
		t := p.peek()
		if t == nil || t.Type != token.LParen {
			return sig, nil
		}
		p.next()

		kw, err := p.expect(token.Ident)
		if err != nil {
			return sig, err
		}
		var dst *[]contract.ValType
		switch kw.Value {
		case "param":
			dst = &sig.Params
		case "result":
			dst = &sig.Results
		default:
			return sig, fmt.Errorf("line %d: expected param or result, got %q", kw.Line, kw.Value)
		}

		for {
			t := p.peek()
			if t == nil || t.Type != token.Ident {
				break
			}
			vt, err := p.parseValType()
			if err != nil {
				return sig, err
			}
			*dst = append(*dst, vt)
		}

		if _, err := p.expect(token.RParen); err != nil {
			return sig, err
		}
	}
}

// parseGlobalType consumes a (type t) group.
func (p *Parser) parseGlobalType() (contract.ValType, error) {
	if _, err := p.expect(token.LParen); err != nil {
		return 0, err
	}
	kw, err := p.expect(token.Ident)
	if err != nil {
		return 0, err
	}
	if kw.Value != "type" {
		return 0, fmt.Errorf("line %d: expected type, got %q", kw.Line, kw.Value)
	}
	vt, err := p.parseValType()
	if err != nil {
		return 0, err
	}
	if _, err := p.expect(token.RParen); err != nil {
		return 0, err
	}
	return vt, nil
}

func (p *Parser) parseValType() (contract.ValType, error) {
	t, err := p.expect(token.Ident)
	if err != nil {
		return 0, err
	}
	switch t.Value {
	case "i32":
		return contract.ValI32, nil
	case "i64":
		return contract.ValI64, nil
	case "f32":
		return contract.ValF32, nil
	case "f64":
		return contract.ValF64, nil
	default:
		return 0, fmt.Errorf("line %d: unknown value type: %s", t.Line, t.Value)
	}
}
