// Copyright 2024-2026 Madhukar Beema. All rights reserved.
// Use of this source code is governed by the Business Source License
// included in the LICENSE file of this repository.

// Package sqlparse tokenizes SQL text into a lossless token tree.
//
// Leaves carry their exact source text, so concatenating the leaves of a
// statement depth-first reproduces the input byte for byte. Composite nodes
// (where clauses, comparisons, identifier lists, parenthesis groups, ...)
// only add structure on top of the leaves.
package sqlparse

import (
	"strings"
)

// Kind is the structural type of a token.
type Kind uint8

// Composite kinds come first; leaf kinds follow.
const (
	KindStatement Kind = iota
	KindWhere
	KindComparison
	KindIdentifier
	KindFunction
	KindIdentifierList
	KindValues
	KindOperation
	KindParenthesis

	KindString
	KindNumber
	KindKeyword
	KindWhitespace
	KindPunctuation
	KindOther
)

var kindNames = [...]string{
	KindStatement:      "Statement",
	KindWhere:          "Where",
	KindComparison:     "Comparison",
	KindIdentifier:     "Identifier",
	KindFunction:       "Function",
	KindIdentifierList: "IdentifierList",
	KindValues:         "Values",
	KindOperation:      "Operation",
	KindParenthesis:    "Parenthesis",
	KindString:         "String",
	KindNumber:         "Number",
	KindKeyword:        "Keyword",
	KindWhitespace:     "Whitespace",
	KindPunctuation:    "Punctuation",
	KindOther:          "Other",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// IsGroup reports whether tokens of this kind have children.
func (k Kind) IsGroup() bool {
	return k <= KindParenthesis
}

// Class refines the lexical category of a leaf. The grouper uses it to decide
// how leaves combine; it carries no meaning for composite tokens.
type Class uint8

const (
	ClassNone Class = iota
	ClassName
	ClassQuotedName
	ClassOperator
	ClassComparison
	ClassWildcard
	ClassPlaceholder
	ClassComment
	ClassDML
	ClassDDL
	ClassHex
	ClassError
)

// Token is a node of the parse tree. Leaves have Text and no Children;
// groups have Children and an empty Text.
type Token struct {
	Kind     Kind
	Class    Class
	Text     string
	Children []*Token
}

func newLeaf(kind Kind, class Class, text string) *Token {
	return &Token{Kind: kind, Class: class, Text: text}
}

func newGroup(kind Kind, children []*Token) *Token {
	return &Token{Kind: kind, Children: children}
}

// String returns the source text covered by the token.
func (t *Token) String() string {
	if !t.Kind.IsGroup() {
		return t.Text
	}
	var b strings.Builder
	t.writeTo(&b)
	return b.String()
}

func (t *Token) writeTo(b *strings.Builder) {
	if !t.Kind.IsGroup() {
		b.WriteString(t.Text)
		return
	}
	for _, c := range t.Children {
		c.writeTo(b)
	}
}

// Value returns the upper-cased text of a leaf, used for keyword matching.
func (t *Token) Value() string {
	if t.Kind == KindKeyword {
		// Multi-word keywords such as "ORDER  BY" compare with single spaces.
		return strings.Join(strings.Fields(strings.ToUpper(t.Text)), " ")
	}
	return strings.ToUpper(t.String())
}

// IsWhitespace reports whether the token is a whitespace leaf.
func (t *Token) IsWhitespace() bool {
	return t.Kind == KindWhitespace
}

// IsKeyword reports whether t is a keyword equal to one of values.
// values must be upper case.
func (t *Token) IsKeyword(values ...string) bool {
	if t == nil || t.Kind != KindKeyword {
		return false
	}
	v := t.Value()
	for _, want := range values {
		if v == want {
			return true
		}
	}
	return false
}

// IsPunct reports whether t is the punctuation leaf p.
func (t *Token) IsPunct(p string) bool {
	return t != nil && t.Kind == KindPunctuation && t.Text == p
}

// IsLiteral reports whether t is a string or number literal.
func (t *Token) IsLiteral() bool {
	return t.Kind == KindString || t.Kind == KindNumber
}

// Walk calls fn for t and every descendant in source order.
// Returning false from fn skips the token's children.
func (t *Token) Walk(fn func(*Token) bool) {
	if !fn(t) {
		return
	}
	for _, c := range t.Children {
		c.Walk(fn)
	}
}

// Leaves returns the leaf tokens under t in source order.
func (t *Token) Leaves() []*Token {
	var out []*Token
	t.Walk(func(tok *Token) bool {
		if !tok.Kind.IsGroup() {
			out = append(out, tok)
		}
		return true
	})
	return out
}
