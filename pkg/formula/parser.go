package formula

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseError reports a formula that could not be parsed. The message always
// echoes the exact offending input.
type ParseError struct {
	Formula string
	Reason  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid formula: %s (%s)", e.Formula, e.Reason)
}

// Grammar, in order of increasing binding power:
//
//	expression     -> additive
//	additive       -> multiplicative (('+'|'-') multiplicative)*
//	multiplicative -> unary (('*'|'/') unary)*
//	unary          -> number | identifier | '(' expression ')'
//
// Whitespace between tokens is skipped.

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokIdent
	tokOp
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
}

type parser struct {
	input  string
	tokens []token
	pos    int
}

// Parse parses a formula into an Expression. The rendered form of the result
// reproduces the input token sequence: Parse(f).String() == f for any
// accepted whitespace-free formula.
func Parse(input string) (*Expression, error) {
	tokens, err := lex(input)
	if err != nil {
		return nil, &ParseError{Formula: input, Reason: err.Error()}
	}

	p := &parser{input: input, tokens: tokens}
	root, err := p.parseAdditive()
	if err != nil {
		return nil, &ParseError{Formula: input, Reason: err.Error()}
	}
	if p.current().kind != tokEOF {
		return nil, &ParseError{Formula: input, Reason: fmt.Sprintf("unexpected %q", p.current().text)}
	}

	return &Expression{root: root, source: input}, nil
}

func lex(input string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(input) {
		c := input[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '+' || c == '-' || c == '*' || c == '/':
			tokens = append(tokens, token{kind: tokOp, text: string(c)})
			i++
		case c == '(':
			tokens = append(tokens, token{kind: tokLParen, text: "("})
			i++
		case c == ')':
			tokens = append(tokens, token{kind: tokRParen, text: ")"})
			i++
		case c >= '0' && c <= '9':
			start := i
			for i < len(input) && (input[i] >= '0' && input[i] <= '9' || input[i] == '.') {
				i++
			}
			text := input[start:i]
			if strings.Count(text, ".") > 1 {
				return nil, fmt.Errorf("malformed number %q", text)
			}
			tokens = append(tokens, token{kind: tokNumber, text: text})
		case isIdentStart(c):
			start := i
			for i < len(input) && isIdentPart(input[i]) {
				i++
			}
			tokens = append(tokens, token{kind: tokIdent, text: input[start:i]})
		default:
			return nil, fmt.Errorf("unexpected character %q", c)
		}
	}
	return append(tokens, token{kind: tokEOF}), nil
}

func isIdentStart(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || c >= '0' && c <= '9' || c == '.'
}

func (p *parser) current() token {
	return p.tokens[p.pos]
}

func (p *parser) advance() token {
	t := p.tokens[p.pos]
	p.pos++
	return t
}

func (p *parser) currentOp() (byte, bool) {
	t := p.current()
	if t.kind != tokOp {
		return 0, false
	}
	return t.text[0], true
}

// parseAdditive folds runs of the same additive operator into one n-ary node
// and starts a new node (with the run so far as its first child) when the
// operator changes, so rendering reproduces the source operator sequence.
func (p *parser) parseAdditive() (Node, error) {
	node, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}

	for {
		op, ok := p.currentOp()
		if !ok || (op != '+' && op != '-') {
			return node, nil
		}

		children := []Node{node}
		for {
			cur, ok := p.currentOp()
			if !ok || cur != op {
				break
			}
			p.advance()
			next, err := p.parseMultiplicative()
			if err != nil {
				return nil, err
			}
			children = append(children, next)
		}
		node = &Add{Op: op, Children: children}
	}
}

func (p *parser) parseMultiplicative() (Node, error) {
	node, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for {
		op, ok := p.currentOp()
		if !ok || (op != '*' && op != '/') {
			return node, nil
		}

		children := []Node{node}
		for {
			cur, ok := p.currentOp()
			if !ok || cur != op {
				break
			}
			p.advance()
			next, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			children = append(children, next)
		}
		node = &Mult{Op: op, Children: children}
	}
}

func (p *parser) parseUnary() (Node, error) {
	t := p.current()
	switch t.kind {
	case tokNumber:
		p.advance()
		value, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed number %q", t.text)
		}
		return &Number{Text: t.text, Value: value}, nil
	case tokIdent:
		p.advance()
		return &Identifier{Name: t.text}, nil
	case tokLParen:
		p.advance()
		inner, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		if p.current().kind != tokRParen {
			return nil, fmt.Errorf("missing closing parenthesis")
		}
		p.advance()
		return &Paren{Inner: inner}, nil
	case tokEOF:
		return nil, fmt.Errorf("unexpected end of formula")
	default:
		return nil, fmt.Errorf("unexpected %q", t.text)
	}
}
