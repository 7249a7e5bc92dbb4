// Copyright 2024-2026 Madhukar Beema. All rights reserved.
// Use of this source code is governed by the Business Source License
// included in the LICENSE file of this repository.

package protocol

import (
	"strings"

	"github.com/mbeema/sqlmask/pkg/sqlparse"
)

var operations = map[string]bool{
	"SELECT": true, "INSERT": true, "UPDATE": true, "DELETE": true, "MERGE": true,
	"REPLACE": true, "UPSERT": true, "WITH": true, "CREATE": true, "DROP": true,
	"ALTER": true, "TRUNCATE": true, "BEGIN": true, "COMMIT": true, "ROLLBACK": true,
	"COPY": true, "EXPLAIN": true, "ANALYZE": true, "SET": true, "SHOW": true,
	"LISTEN": true, "NOTIFY": true, "PREPARE": true, "DEALLOCATE": true, "USE": true,
}

// tableMarkers are the keywords followed by the target table.
var tableMarkers = map[string]bool{
	"FROM": true, "INTO": true, "UPDATE": true, "TABLE": true, "INDEX": true,
}

// describeSQL returns the operation and target table of a statement. It
// reads tokens only up to the first lexing error so truncated captures
// still yield an operation. fallback is returned when no operation is found.
func describeSQL(query, fallback string) (op, table string) {
	op = fallback
	toks := significantTokens(query)
	if len(toks) == 0 {
		return op, ""
	}

	if first := toks[0].Value(); operations[first] {
		op = first
	}

	for i, tok := range toks {
		if tok.Kind != sqlparse.KindKeyword || !tableMarkers[tok.Value()] {
			continue
		}
		if name := tableAfter(toks[i+1:]); name != "" {
			return op, name
		}
	}
	return op, ""
}

// tableAfter reads a possibly qualified name and returns its last part
// without quotes. IF [NOT] EXISTS and ONLY are skipped.
func tableAfter(toks []*sqlparse.Token) string {
	for len(toks) > 0 && toks[0].IsKeyword("IF", "NOT", "EXISTS", "ONLY") {
		toks = toks[1:]
	}
	name := ""
	for len(toks) > 0 {
		t := toks[0]
		if t.Kind != sqlparse.KindOther || (t.Class != sqlparse.ClassName && t.Class != sqlparse.ClassQuotedName) {
			break
		}
		name = unquote(t.Text)
		if len(toks) < 3 || !toks[1].IsPunct(".") {
			break
		}
		toks = toks[2:]
	}
	return name
}

func significantTokens(query string) []*sqlparse.Token {
	lex := sqlparse.NewLexer(query)
	var toks []*sqlparse.Token
	for {
		tok, err := lex.NextToken()
		if err != nil || tok == nil {
			return toks
		}
		if tok.IsWhitespace() || tok.Class == sqlparse.ClassComment {
			continue
		}
		toks = append(toks, tok)
	}
}

func unquote(name string) string {
	if len(name) >= 2 {
		switch name[0] {
		case '"', '`':
			return strings.ReplaceAll(name[1:len(name)-1], name[:1]+name[:1], name[:1])
		case '[':
			return name[1 : len(name)-1]
		}
	}
	return name
}
