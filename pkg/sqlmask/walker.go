// Copyright 2024-2026 Madhukar Beema. All rights reserved.
// Use of this source code is governed by the Business Source License
// included in the LICENSE file of this repository.

package sqlmask

import (
	"fmt"
	"strings"

	"github.com/mbeema/sqlmask/pkg/sqlparse"
)

// walker renders one statement. It lives for a single Mask call.
type walker struct {
	m      *Masker
	b      strings.Builder
	report Report
}

// maskSeq renders a run of siblings. prev holds the last non-whitespace
// sibling seen so far and is the only context a decision may look at.
func (w *walker) maskSeq(toks []*sqlparse.Token, depth int) error {
	if depth > w.m.maxDepth {
		return fmt.Errorf("sqlmask: %w: token tree deeper than %d", ErrTooDeep, w.m.maxDepth)
	}
	var prev *sqlparse.Token
	for _, tok := range toks {
		if err := w.maskToken(tok, prev, depth); err != nil {
			return err
		}
		if !tok.IsWhitespace() {
			prev = tok
		}
	}
	return nil
}

func (w *walker) maskToken(tok, prev *sqlparse.Token, depth int) error {
	switch tok.Kind {
	case sqlparse.KindStatement, sqlparse.KindWhere, sqlparse.KindComparison,
		sqlparse.KindIdentifier, sqlparse.KindFunction, sqlparse.KindIdentifierList,
		sqlparse.KindValues, sqlparse.KindOperation:
		return w.maskSeq(tok.Children, depth+1)

	case sqlparse.KindParenthesis:
		if prev.IsKeyword("IN") && isLiteralList(innerTokens(tok)) {
			w.b.WriteString(collapsedList)
			w.report.Collapsed++
			return nil
		}
		return w.maskSeq(tok.Children, depth+1)

	case sqlparse.KindString, sqlparse.KindNumber:
		if w.m.preserves(prev) {
			w.b.WriteString(tok.Text)
			w.report.Preserved++
			return nil
		}
		w.b.WriteString(Placeholder)
		w.report.Masked++
		return nil

	case sqlparse.KindKeyword, sqlparse.KindWhitespace, sqlparse.KindPunctuation, sqlparse.KindOther:
		w.b.WriteString(tok.Text)
		return nil

	default:
		// Kinds added to the parser later pass through untouched.
		w.b.WriteString(tok.String())
		return nil
	}
}

// innerTokens strips the enclosing parentheses of a Parenthesis group.
func innerTokens(paren *sqlparse.Token) []*sqlparse.Token {
	toks := paren.Children
	if len(toks) > 0 && toks[0].IsPunct("(") {
		toks = toks[1:]
	}
	if len(toks) > 0 && toks[len(toks)-1].IsPunct(")") {
		toks = toks[:len(toks)-1]
	}
	return toks
}

// isLiteralList reports whether toks, ignoring whitespace and punctuation,
// holds at least one literal and nothing but literals or identifier lists
// that themselves qualify.
func isLiteralList(toks []*sqlparse.Token) bool {
	found := false
	for _, t := range toks {
		switch {
		case t.IsWhitespace() || t.Kind == sqlparse.KindPunctuation:
		case t.IsLiteral():
			found = true
		case t.Kind == sqlparse.KindIdentifierList:
			if !isLiteralList(t.Children) {
				return false
			}
			found = true
		default:
			return false
		}
	}
	return found
}
