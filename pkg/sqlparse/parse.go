// Copyright 2024-2026 Madhukar Beema. All rights reserved.
// Use of this source code is governed by the Business Source License
// included in the LICENSE file of this repository.

package sqlparse

import (
	"fmt"
)

// DefaultMaxDepth bounds parenthesis nesting.
const DefaultMaxDepth = 512

// Option configures parsing.
type Option func(*parser)

// WithMaxDepth sets the maximum parenthesis nesting depth. Values <= 0 select
// DefaultMaxDepth.
func WithMaxDepth(n int) Option {
	return func(p *parser) {
		if n > 0 {
			p.maxDepth = n
		}
	}
}

type parser struct {
	input    string
	maxDepth int
	lex      *Lexer
	offset   int // bytes consumed so far
}

func newParser(input string, opts []Option) *parser {
	p := &parser{input: input, maxDepth: DefaultMaxDepth, lex: NewLexer(input)}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse splits input into statements and returns a token tree for each.
func Parse(input string, opts ...Option) ([]*Token, error) {
	p := newParser(input, opts)
	var stmts []*Token
	for {
		stmt, err := p.next()
		if err != nil {
			return nil, err
		}
		if stmt == nil {
			return stmts, nil
		}
		stmts = append(stmts, stmt)
	}
}

// ParseFirst parses only the first statement of input. Text after the first
// top-level semicolon is never lexed, so errors there go unnoticed.
// Empty input yields an empty statement.
func ParseFirst(input string, opts ...Option) (*Token, error) {
	p := newParser(input, opts)
	stmt, err := p.next()
	if err != nil {
		return nil, err
	}
	if stmt == nil {
		return newGroup(KindStatement, nil), nil
	}
	return stmt, nil
}

// Split returns the source text of each statement in input.
func Split(input string) ([]string, error) {
	p := newParser(input, nil)
	var out []string
	for {
		leaves, err := p.nextLeaves()
		if err != nil {
			return nil, err
		}
		if leaves == nil {
			return out, nil
		}
		start := p.offset
		for _, l := range leaves {
			p.offset += len(l.Text)
		}
		out = append(out, input[start:p.offset])
	}
}

func (p *parser) next() (*Token, error) {
	leaves, err := p.nextLeaves()
	if err != nil || leaves == nil {
		return nil, err
	}
	start := p.offset
	for _, l := range leaves {
		p.offset += len(l.Text)
	}
	toks, err := p.nest(leaves, start)
	if err != nil {
		return nil, err
	}
	g := &grouper{}
	return newGroup(KindStatement, g.group(toks)), nil
}

// nextLeaves lexes one statement: everything up to and including a
// top-level ';', plus the whitespace and line comments that follow it.
func (p *parser) nextLeaves() ([]*Token, error) {
	var leaves []*Token
	depth := 0
	ended := false
	for {
		if ended {
			// Peek without consuming: only trailing blanks join the statement.
			save := *p.lex
			tok, err := p.lex.NextToken()
			if err != nil || tok == nil {
				*p.lex = save
				return leaves, nil
			}
			if tok.Kind == KindWhitespace || (tok.Class == ClassComment && isLineComment(tok.Text)) {
				leaves = append(leaves, tok)
				continue
			}
			*p.lex = save
			return leaves, nil
		}

		tok, err := p.lex.NextToken()
		if err != nil {
			return nil, err
		}
		if tok == nil {
			return leaves, nil
		}
		leaves = append(leaves, tok)
		switch {
		case tok.IsPunct("("):
			depth++
		case tok.IsPunct(")"):
			depth--
		case tok.IsPunct(";") && depth <= 0:
			ended = true
		}
	}
}

func isLineComment(s string) bool {
	return len(s) > 0 && (s[0] == '-' || s[0] == '#')
}

// nest folds balanced parentheses into Parenthesis groups.
func (p *parser) nest(leaves []*Token, offset int) ([]*Token, error) {
	stack := [][]*Token{nil}
	opened := []int{}
	for _, t := range leaves {
		switch {
		case t.IsPunct("("):
			if len(stack) > p.maxDepth {
				return nil, newParseError(p.input, offset, fmt.Sprintf("more than %d nested parentheses", p.maxDepth), ErrTooDeep)
			}
			stack = append(stack, []*Token{t})
			opened = append(opened, offset)
		case t.IsPunct(")"):
			if len(stack) == 1 {
				return nil, newParseError(p.input, offset, "unbalanced ')'", nil)
			}
			top := append(stack[len(stack)-1], t)
			stack = stack[:len(stack)-1]
			opened = opened[:len(opened)-1]
			stack[len(stack)-1] = append(stack[len(stack)-1], newGroup(KindParenthesis, top))
		default:
			stack[len(stack)-1] = append(stack[len(stack)-1], t)
		}
		offset += len(t.Text)
	}
	if len(stack) > 1 {
		return nil, newParseError(p.input, opened[len(opened)-1], "unclosed '('", nil)
	}
	return stack[0], nil
}
