// Copyright 2024-2026 Madhukar Beema. All rights reserved.
// Use of this source code is governed by the Business Source License
// included in the LICENSE file of this repository.

package redact

import (
	"regexp"
	"strings"
)

// literal matches one element of an IN list.
const literal = `(?:'(?:[^']|'')*'|-?\d+(?:\.\d+)?(?:e[-+]?\d+)?)`

// fallbackPattern alternatives are tried left to right at each position, so
// IN lists win over the strings and numbers inside them.
var fallbackPattern = regexp.MustCompile(`(?is)` +
	`(\bIN\s*\(\s*` + literal + `(?:\s*,\s*` + literal + `)*\s*\))` + // 1: IN list
	`|(\b(?:LIMIT|OFFSET|TOP)\s+\d+\b)` + // 2: pagination
	`|("(?:[^"]|"")*"|` + "`[^`]*`" + `)` + // 3: quoted identifier
	`|('(?:[^']|'')*'|'.*)` + // 4: string, or an unterminated one up to the end
	`|(\b\d+(?:\.\d+)?(?:e[-+]?\d+)?\b|\B\.\d+\b)`) // 5: number

// NormalizeSQL masks literals with regular expressions. It is the fallback
// for statements the parser rejects and follows the same rules as
// sqlmask.Mask as far as patterns allow: IN lists collapse to "(?)", numbers
// after LIMIT, OFFSET and TOP stay, quoted identifiers stay.
func NormalizeSQL(query string) string {
	if query == "" {
		return query
	}

	idx := fallbackPattern.FindAllStringSubmatchIndex(query, -1)
	if len(idx) == 0 {
		return query
	}

	var b strings.Builder
	b.Grow(len(query))
	last := 0
	for _, m := range idx {
		b.WriteString(query[last:m[0]])
		last = m[1]
		match := query[m[0]:m[1]]
		switch {
		case m[2] >= 0:
			b.WriteString(match[:2])
			b.WriteString(" (?)")
		case m[4] >= 0, m[6] >= 0:
			b.WriteString(match)
		default:
			b.WriteString("?")
		}
	}
	b.WriteString(query[last:])
	return b.String()
}
