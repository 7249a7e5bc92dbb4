// Copyright 2024-2026 Madhukar Beema. All rights reserved.
// Use of this source code is governed by the Business Source License
// included in the LICENSE file of this repository.

package sqlparse

// grouper folds a flat token list (with parentheses already nested) into
// clauses and expressions. Each pass returns a new slice; groups never
// reorder or drop tokens, so the source text is preserved.
type grouper struct{}

func (g *grouper) group(toks []*Token) []*Token {
	for _, t := range toks {
		if t.Kind == KindParenthesis {
			n := len(t.Children)
			inner := g.group(t.Children[1 : n-1])
			children := make([]*Token, 0, len(inner)+2)
			children = append(children, t.Children[0])
			children = append(children, inner...)
			children = append(children, t.Children[n-1])
			t.Children = children
		}
	}
	toks = groupFunctions(toks)
	toks = groupWhere(toks)
	return groupExpressions(toks)
}

func groupExpressions(toks []*Token) []*Token {
	toks = groupIdentifiers(toks)
	toks = groupTypecasts(toks)
	toks = groupOperations(toks)
	toks = groupComparisons(toks)
	toks = groupAs(toks)
	toks = groupAliased(toks)
	toks = groupIdentifierLists(toks)
	return groupValues(toks)
}

// nextSig returns the index of the first non-whitespace token after i, or -1.
func nextSig(toks []*Token, i int) int {
	for j := i + 1; j < len(toks); j++ {
		if !toks[j].IsWhitespace() {
			return j
		}
	}
	return -1
}

// lastSig returns the index of the last non-whitespace token, or -1.
func lastSig(toks []*Token) int {
	for j := len(toks) - 1; j >= 0; j-- {
		if !toks[j].IsWhitespace() {
			return j
		}
	}
	return -1
}

func concat(parts ...[]*Token) []*Token {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make([]*Token, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// funcKeywords may be called like functions when written directly before '('.
var funcKeywords = map[string]bool{
	"CAST": true, "REPLACE": true, "LEFT": true, "RIGHT": true, "IF": true,
	"CURRENT_DATE": true, "CURRENT_TIME": true, "CURRENT_TIMESTAMP": true,
}

func groupFunctions(toks []*Token) []*Token {
	out := make([]*Token, 0, len(toks))
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		isName := t.Class == ClassName || t.Class == ClassQuotedName
		isFuncKeyword := t.Kind == KindKeyword && funcKeywords[t.Value()] &&
			i+1 < len(toks) && toks[i+1].Kind == KindParenthesis
		if !isName && !isFuncKeyword {
			out = append(out, t)
			continue
		}
		n := nextSig(toks, i)
		if n < 0 || toks[n].Kind != KindParenthesis || definesTable(out) {
			out = append(out, t)
			continue
		}
		name := newGroup(KindIdentifier, []*Token{t})
		out = append(out, newGroup(KindFunction, concat([]*Token{name}, toks[i+1:n+1])))
		i = n
	}
	return out
}

// definesTable reports whether the name about to be appended to out follows
// CREATE TABLE, where the parenthesis holds column definitions.
func definesTable(out []*Token) bool {
	p := lastSig(out)
	return p >= 0 && out[p].IsKeyword("TABLE", "EXISTS")
}

func groupWhere(toks []*Token) []*Token {
	start := -1
	for i, t := range toks {
		if t.IsKeyword("WHERE") {
			start = i
			break
		}
	}
	if start < 0 {
		return toks
	}
	end := len(toks)
	for i := start + 1; i < len(toks); i++ {
		if toks[i].IsKeyword(whereClose...) {
			end = i
			break
		}
	}
	children := concat(toks[start:start+1], groupExpressions(toks[start+1:end]))
	return concat(toks[:start], []*Token{newGroup(KindWhere, children)}, toks[end:])
}

func isNameLeaf(t *Token) bool {
	return t.Class == ClassName || t.Class == ClassQuotedName
}

// groupIdentifiers folds names and dotted paths (a.b.c, t.*) into Identifier.
func groupIdentifiers(toks []*Token) []*Token {
	out := make([]*Token, 0, len(toks))
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		if !isNameLeaf(t) && t.Kind != KindFunction && t.Kind != KindIdentifier {
			out = append(out, t)
			continue
		}
		parts := []*Token{t}
		j := i
		for j+2 < len(toks) && toks[j+1].IsPunct(".") && isPathPart(toks[j+2]) {
			parts = append(parts, toks[j+1], toks[j+2])
			j += 2
		}
		switch {
		case len(parts) == 1 && t.Kind != KindKeyword && isNameLeaf(t):
			out = append(out, newGroup(KindIdentifier, parts))
		case len(parts) == 1:
			out = append(out, t)
		default:
			out = append(out, newGroup(KindIdentifier, parts))
		}
		i = j
	}
	return out
}

func isPathPart(t *Token) bool {
	return isNameLeaf(t) || t.Class == ClassWildcard || t.Kind == KindFunction
}

// groupTypecasts folds "x::type" into Identifier.
func groupTypecasts(toks []*Token) []*Token {
	match := func(t *Token) bool { return t.Class == ClassOperator && t.Text == "::" }
	validPrev := func(t *Token) bool { return t.Kind != KindPunctuation && t.Kind != KindKeyword }
	validNext := func(t *Token) bool {
		return t.Kind == KindIdentifier || t.Kind == KindFunction || t.Kind == KindKeyword || isNameLeaf(t)
	}
	return groupBinary(toks, KindIdentifier, match, validPrev, validNext, true)
}

// operand reports whether t can stand on either side of an arithmetic or
// comparison operator.
func operand(t *Token) bool {
	switch t.Kind {
	case KindString, KindNumber, KindIdentifier, KindFunction, KindParenthesis, KindOperation:
		return true
	case KindKeyword:
		return t.IsKeyword("NULL", "TRUE", "FALSE", "CURRENT_DATE", "CURRENT_TIME", "CURRENT_TIMESTAMP")
	}
	return isNameLeaf(t) || t.Class == ClassPlaceholder || t.Class == ClassHex
}

func groupOperations(toks []*Token) []*Token {
	match := func(t *Token) bool {
		return (t.Class == ClassOperator && t.Text != "::") || t.Class == ClassWildcard
	}
	return groupBinary(toks, KindOperation, match, operand, operand, true)
}

func groupComparisons(toks []*Token) []*Token {
	match := func(t *Token) bool { return t.Class == ClassComparison }
	return groupBinary(toks, KindComparison, match, operand, operand, false)
}

// groupAs folds "x AS alias" into Identifier.
func groupAs(toks []*Token) []*Token {
	match := func(t *Token) bool { return t.IsKeyword("AS") }
	validPrev := func(t *Token) bool {
		return t.Kind != KindKeyword || t.IsKeyword("NULL")
	}
	validNext := func(t *Token) bool {
		if t.Kind == KindKeyword {
			return t.Class != ClassDML && t.Class != ClassDDL
		}
		return t.Kind == KindIdentifier || t.Kind == KindParenthesis || t.Kind == KindFunction || isNameLeaf(t)
	}
	return groupBinary(toks, KindIdentifier, match, validPrev, validNext, true)
}

// groupAliased folds "expr alias" (no AS) into Identifier.
func groupAliased(toks []*Token) []*Token {
	out := make([]*Token, 0, len(toks))
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		switch t.Kind {
		case KindParenthesis, KindFunction, KindIdentifier, KindOperation, KindComparison, KindNumber:
		default:
			out = append(out, t)
			continue
		}
		n := nextSig(toks, i)
		if n < 0 || n == i+1 || toks[n].Kind != KindIdentifier {
			out = append(out, t)
			continue
		}
		if t.Kind == KindIdentifier {
			t.Children = append(t.Children, toks[i+1:n+1]...)
			out = append(out, t)
		} else {
			out = append(out, newGroup(KindIdentifier, concat(toks[i:n+1])))
		}
		i = n
	}
	return out
}

func listable(t *Token) bool {
	switch t.Kind {
	case KindFunction, KindIdentifier, KindComparison, KindIdentifierList, KindOperation,
		KindString, KindNumber, KindKeyword:
		return true
	}
	return isNameLeaf(t) || t.Class == ClassComment || t.Class == ClassWildcard ||
		t.Class == ClassPlaceholder || t.Class == ClassHex
}

func groupIdentifierLists(toks []*Token) []*Token {
	match := func(t *Token) bool { return t.IsPunct(",") }
	return groupBinary(toks, KindIdentifierList, match, listable, listable, true)
}

// groupValues folds "VALUES (..), (..)" into Values.
func groupValues(toks []*Token) []*Token {
	for i, t := range toks {
		if !t.IsKeyword("VALUES") {
			continue
		}
		end := -1
		for j := nextSig(toks, i); j >= 0; j = nextSig(toks, j) {
			if toks[j].Kind == KindParenthesis {
				end = j
				continue
			}
			if !toks[j].IsPunct(",") {
				break
			}
		}
		if end < 0 {
			return toks
		}
		return concat(toks[:i], []*Token{newGroup(KindValues, concat(toks[i:end+1]))}, toks[end+1:])
	}
	return toks
}

// groupBinary folds "prev <match> next" runs into groups of kind. With
// extend set, a prev that is already of kind absorbs the new tokens, which
// turns chains like "a, b, c" into one flat group.
func groupBinary(toks []*Token, kind Kind, match, validPrev, validNext func(*Token) bool, extend bool) []*Token {
	out := make([]*Token, 0, len(toks))
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		if !match(t) {
			out = append(out, t)
			continue
		}
		p := lastSig(out)
		n := nextSig(toks, i)
		if p < 0 || n < 0 || !validPrev(out[p]) || !validNext(toks[n]) {
			out = append(out, t)
			continue
		}
		var grp *Token
		if extend && out[p].Kind == kind {
			grp = out[p]
			grp.Children = concat(grp.Children, out[p+1:], toks[i:n+1])
		} else {
			grp = newGroup(kind, concat(out[p:], toks[i:n+1]))
		}
		out = append(out[:p], grp)
		i = n
	}
	return out
}
