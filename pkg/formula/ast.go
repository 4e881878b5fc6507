// Package formula implements the small arithmetic expression language used
// for configurable keyword scoring. A formula like "mean.clicksPerDay/2" is
// parsed once and evaluated against a per-keyword context of named numeric
// variables.
package formula

import (
	"fmt"
	"math"
	"strings"
)

// Node is one node of a parsed formula. String renders the node back to its
// source form, so that Parse(f).String() == f for any accepted formula.
type Node interface {
	Score(ctx *Context) (float64, error)
	String() string
}

// Number is a numeric literal. The original lexeme is kept so rendering
// reproduces the source text exactly.
type Number struct {
	Text  string
	Value float64
}

func (n *Number) Score(ctx *Context) (float64, error) {
	return n.Value, nil
}

func (n *Number) String() string {
	return n.Text
}

// Identifier is a named variable such as "mean.clicksPerDay", resolved
// against the evaluation context. Unknown names evaluate to NaN.
type Identifier struct {
	Name string
}

func (n *Identifier) Score(ctx *Context) (float64, error) {
	return ctx.Value(n.Name), nil
}

func (n *Identifier) String() string {
	return n.Name
}

// Add is a run of terms joined by a single additive operator ('+' or '-').
// For '-' the first child is the running value and all following children are
// subtracted from it, so a-b-c evaluates as (a-b)-c.
type Add struct {
	Op       byte
	Children []Node
}

func (n *Add) Score(ctx *Context) (float64, error) {
	switch n.Op {
	case '+':
		sum := 0.0
		for _, child := range n.Children {
			v, err := child.Score(ctx)
			if err != nil {
				return 0, err
			}
			sum += v
		}
		return sum, nil
	case '-':
		result := math.NaN()
		for i, child := range n.Children {
			v, err := child.Score(ctx)
			if err != nil {
				return 0, err
			}
			if i == 0 {
				result = v
			} else {
				result -= v
			}
		}
		return result, nil
	}
	return 0, fmt.Errorf("unknown additive operator: %q", n.Op)
}

func (n *Add) String() string {
	return joinChildren(n.Children, n.Op)
}

// Mult is a run of factors joined by a single multiplicative operator
// ('*' or '/'). For '/' the first child is the running value and all
// following children divide it, so a/b/c evaluates as (a/b)/c. A division
// chain that ends up infinite collapses to NaN so a formula can never
// silently score a keyword at infinity.
type Mult struct {
	Op       byte
	Children []Node
}

func (n *Mult) Score(ctx *Context) (float64, error) {
	switch n.Op {
	case '*':
		result := 1.0
		for _, child := range n.Children {
			v, err := child.Score(ctx)
			if err != nil {
				return 0, err
			}
			result *= v
		}
		return result, nil
	case '/':
		result := math.NaN()
		for i, child := range n.Children {
			v, err := child.Score(ctx)
			if err != nil {
				return 0, err
			}
			if i == 0 {
				result = v
			} else {
				result /= v
			}
		}
		if math.IsInf(result, 0) {
			return math.NaN(), nil
		}
		return result, nil
	}
	return 0, fmt.Errorf("unknown multiplicative operator: %q", n.Op)
}

func (n *Mult) String() string {
	return joinChildren(n.Children, n.Op)
}

// Paren is a parenthesized sub-expression, kept as a node so rendering
// preserves the source parentheses.
type Paren struct {
	Inner Node
}

func (n *Paren) Score(ctx *Context) (float64, error) {
	return n.Inner.Score(ctx)
}

func (n *Paren) String() string {
	return "(" + n.Inner.String() + ")"
}

func joinChildren(children []Node, op byte) string {
	var sb strings.Builder
	for i, child := range children {
		if i > 0 {
			sb.WriteByte(op)
		}
		sb.WriteString(child.String())
	}
	return sb.String()
}

// Expression is a successfully parsed formula.
type Expression struct {
	root   Node
	source string
}

// Eval evaluates the formula against the given context. Errors are defensive
// only; a successfully parsed expression evaluates cleanly.
func (e *Expression) Eval(ctx *Context) (float64, error) {
	return e.root.Score(ctx)
}

func (e *Expression) String() string {
	return e.root.String()
}
