package token

import "unicode"

type Type int

const (
	LParen Type = iota
	RParen
	Ident
	String
	Illegal
)

func (t Type) String() string {
	switch t {
	case LParen:
		return "'('"
	case RParen:
		return "')'"
	case Ident:
		return "identifier"
	case String:
		return "string"
	case Illegal:
		return "illegal token"
	}
	return "unknown"
}

type Token struct {
	Value string
	Type  Type
	Line  int
}

// Tokenize splits contract source text into tokens, tracking line numbers
// for error reporting. Comments are discarded. Characters that start no
// valid token, and unterminated string literals, are emitted as Illegal
// tokens so the parser can reject them with a line number.
func Tokenize(input string) []Token {
	var tokens []Token
	line := 1
	runes := []rune(input)

	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if r == '\n' {
			line++
			continue
		}
		if unicode.IsSpace(r) {
			continue
		}

		// Line comment
		if r == ';' && i+1 < len(runes) && runes[i+1] == ';' {
			for i < len(runes) && runes[i] != '\n' {
				i++
			}
			if i < len(runes) {
				line++
			}
			continue
		}

		// Block comment or left paren
		if r == '(' {
			if i+1 < len(runes) && runes[i+1] == ';' {
				depth := 1
				i += 2
				for i < len(runes) && depth > 0 {
					if runes[i] == '(' && i+1 < len(runes) && runes[i+1] == ';' {
						depth++
						i++
					} else if runes[i] == ';' && i+1 < len(runes) && runes[i+1] == ')' {
						depth--
						i++
					} else if runes[i] == '\n' {
						line++
					}
					i++
				}
				i--
				continue
			}
			tokens = append(tokens, Token{"(", LParen, line})
			continue
		}

		if r == ')' {
			tokens = append(tokens, Token{")", RParen, line})
			continue
		}

		// String literal
		if r == '"' {
			start := i + 1
			i++
			for i < len(runes) && runes[i] != '"' {
				if runes[i] == '\\' {
					i++
				}
				i++
			}
			if i >= len(runes) {
				tokens = append(tokens, Token{string(runes[start-1:]), Illegal, line})
				break
			}
			tokens = append(tokens, Token{string(runes[start:i]), String, line})
			continue
		}

		// Identifier: keywords (assert_import, func, param) and type names (i32)
		if unicode.IsLetter(r) || r == '_' {
			start := i
			for i < len(runes) {
				c := runes[i]
				if unicode.IsLetter(c) || unicode.IsDigit(c) || c == '_' || c == '.' || c == '-' {
					i++
				} else {
					break
				}
			}
			tokens = append(tokens, Token{string(runes[start:i]), Ident, line})
			i--
			continue
		}

		// Anything else starts no valid token. Take the whole run so the
		// parser can report it in one piece.
		start := i
		for i < len(runes) {
			c := runes[i]
			if unicode.IsSpace(c) || c == '(' || c == ')' || c == '"' || c == ';' {
				break
			}
			i++
		}
		tokens = append(tokens, Token{string(runes[start:i]), Illegal, line})
		i--
	}

	return tokens
}
