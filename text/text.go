package text

import (
	"github.com/wippyai/wasm-contract/contract"
	"github.com/wippyai/wasm-contract/text/internal/parser"
	"github.com/wippyai/wasm-contract/text/internal/token"
)

// Parse parses contract source text into a contract.
func Parse(source string) (*contract.Contract, error) {
	tokens := token.Tokenize(source)
	p := parser.New(tokens)
	return p.Parse()
}
