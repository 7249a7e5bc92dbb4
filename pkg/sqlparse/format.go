// Copyright 2024-2026 Madhukar Beema. All rights reserved.
// Use of this source code is governed by the Business Source License
// included in the LICENSE file of this repository.

package sqlparse

import (
	"strings"
)

// Format pretty-prints SQL. Only whitespace changes: blank runs collapse to
// one space, top-level clauses start on a new line, and AND/OR inside WHERE
// are indented. Every other token, keyword case included, is kept as written.
func Format(input string) (string, error) {
	leaves, err := Tokenize(input)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	depth := 0
	inWhere := false
	pendingSpace := false
	atLineStart := true

	for _, t := range leaves {
		if t.Kind == KindWhitespace {
			pendingSpace = true
			continue
		}

		text := t.Text
		if t.Kind == KindKeyword || (t.Class == ClassComparison && isIdentStart(rune(text[0]))) {
			// "order   by" and "not\nlike" are single tokens
			text = strings.Join(strings.Fields(text), " ")
		}

		brk := ""
		if depth == 0 && t.Kind == KindKeyword {
			v := t.Value()
			switch {
			case clauseKeywords[v]:
				brk = "\n"
				inWhere = v == "WHERE"
			case inWhere && (v == "AND" || v == "OR"):
				brk = "\n  "
			}
		}

		switch {
		case b.Len() == 0:
		case atLineStart:
			b.WriteString(strings.TrimPrefix(brk, "\n"))
		case brk != "":
			b.WriteString(brk)
		case pendingSpace:
			b.WriteByte(' ')
		}
		b.WriteString(text)
		pendingSpace = false
		atLineStart = strings.HasSuffix(text, "\n")

		switch {
		case t.IsPunct("("):
			depth++
		case t.IsPunct(")"):
			depth--
		case t.IsPunct(";") && depth <= 0:
			b.WriteByte('\n')
			atLineStart = true
			inWhere = false
			depth = 0
		}
	}
	return strings.TrimRight(b.String(), " \t\r\n"), nil
}
