// Copyright 2024-2026 Madhukar Beema. All rights reserved.
// Use of this source code is governed by the Business Source License
// included in the LICENSE file of this repository.

package sqlparse

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoundTrip(t *testing.T) {
	inputs := []string{
		"SELECT * FROM users WHERE id = 1",
		"select a, b from t where x in (1, 2, 3) limit 10 offset 5",
		"INSERT INTO users (name, age) VALUES ('alice', 30), ('bob', 41);",
		"UPDATE users SET name = 'bob', age = 25 WHERE id = 1",
		"SELECT count(*) AS n, t.* FROM s.t AS t JOIN u ON t.id = u.tid GROUP BY 1 ORDER BY n DESC",
		"SELECT 'it''s', E'a\\'b', $$raw$$, $tag$x$tag$, N'n', x'ff', 0xFF, 1.5e-3, .5, -2",
		"SELECT \"quoted col\", `tick`, [bracket] FROM t -- trailing\n",
		"/* head */ SELECT a::int, b->>'k', c || 'x' FROM t WHERE d LIKE 'a%' AND e NOT LIKE 'b'",
		"SELECT * FROM t WHERE a = ? AND b = $1 AND c = :name AND d = %s AND e = %(e)s",
		"WITH c AS (SELECT 1) SELECT * FROM c WHERE EXISTS (SELECT 1 FROM d WHERE d.x = c.x)",
		"  \n\t",
		"SELECT ñame FROM tábla",
	}
	for _, in := range inputs {
		stmts, err := Parse(in)
		require.NoError(t, err, in)
		var b strings.Builder
		for _, s := range stmts {
			b.WriteString(s.String())
		}
		assert.Equal(t, in, b.String())
	}
}

func TestParseInListShape(t *testing.T) {
	stmt, err := ParseFirst("SELECT * FROM users WHERE id IN (1, 2, 3)")
	require.NoError(t, err)

	where := stmt.Children[len(stmt.Children)-1]
	require.Equal(t, KindWhere, where.Kind)
	require.Len(t, where.Children, 7)
	assert.Equal(t, KindIdentifier, where.Children[2].Kind)
	assert.True(t, where.Children[4].IsKeyword("IN"))

	paren := where.Children[6]
	require.Equal(t, KindParenthesis, paren.Kind)
	require.Len(t, paren.Children, 3)
	list := paren.Children[1]
	assert.Equal(t, KindIdentifierList, list.Kind)
	assert.Len(t, list.Children, 8)
	assert.Equal(t, "1, 2, 3", list.String())
}

func TestParseWhereStopsAtLimit(t *testing.T) {
	stmt, err := ParseFirst("SELECT * FROM t WHERE x = 5 LIMIT 10")
	require.NoError(t, err)

	var kinds []Kind
	for _, c := range stmt.Children {
		kinds = append(kinds, c.Kind)
	}
	n := len(kinds)
	require.GreaterOrEqual(t, n, 4)
	assert.Equal(t, []Kind{KindWhere, KindKeyword, KindWhitespace, KindNumber}, kinds[n-4:])

	where := stmt.Children[n-4]
	assert.Equal(t, KindComparison, where.Children[2].Kind)
	assert.Equal(t, "x = 5", where.Children[2].String())
}

func TestParseFunction(t *testing.T) {
	stmt, err := ParseFirst("SELECT lower(name) FROM t")
	require.NoError(t, err)

	fn := stmt.Children[2]
	require.Equal(t, KindFunction, fn.Kind)
	assert.Equal(t, KindIdentifier, fn.Children[0].Kind)
	assert.Equal(t, KindParenthesis, fn.Children[1].Kind)
	assert.Equal(t, "lower(name)", fn.String())
}

func TestParseCreateTableIsNotFunction(t *testing.T) {
	stmt, err := ParseFirst("CREATE TABLE t (id int)")
	require.NoError(t, err)
	stmt.Walk(func(tok *Token) bool {
		assert.NotEqual(t, KindFunction, tok.Kind)
		return true
	})
}

func TestParseValues(t *testing.T) {
	stmt, err := ParseFirst("INSERT INTO users (name, age) VALUES ('alice', 30)")
	require.NoError(t, err)

	last := stmt.Children[len(stmt.Children)-1]
	require.Equal(t, KindValues, last.Kind)
	assert.Equal(t, "VALUES ('alice', 30)", last.String())
	assert.Equal(t, KindFunction, stmt.Children[4].Kind)
}

func TestTokenizeLiterals(t *testing.T) {
	tests := []struct {
		input string
		text  string
		kind  Kind
		class Class
	}{
		{"'it''s'", "'it''s'", KindString, ClassNone},
		{`E'a\'b'`, `E'a\'b'`, KindString, ClassNone},
		{"$$a;b$$", "$$a;b$$", KindString, ClassNone},
		{"42", "42", KindNumber, ClassNone},
		{"3.14", "3.14", KindNumber, ClassNone},
		{"1e10", "1e10", KindNumber, ClassNone},
		{".5", ".5", KindNumber, ClassNone},
		{"-7", "-7", KindNumber, ClassNone},
		{"0xFF", "0xFF", KindOther, ClassHex},
		{"1abc", "1abc", KindOther, ClassName},
		{`"col"`, `"col"`, KindOther, ClassQuotedName},
		{"?", "?", KindOther, ClassPlaceholder},
		{"$3", "$3", KindOther, ClassPlaceholder},
		{":id", ":id", KindOther, ClassPlaceholder},
		{"order   by", "order   by", KindKeyword, ClassNone},
		{"not like", "not like", KindOther, ClassComparison},
	}
	for _, tt := range tests {
		toks, err := Tokenize(tt.input)
		require.NoError(t, err, tt.input)
		require.Len(t, toks, 1, tt.input)
		assert.Equal(t, tt.text, toks[0].Text, tt.input)
		assert.Equal(t, tt.kind, toks[0].Kind, tt.input)
		assert.Equal(t, tt.class, toks[0].Class, tt.input)
	}
}

func TestTokenizeMinusIsSubtractionAfterOperand(t *testing.T) {
	toks, err := Tokenize("a-1, -2")
	require.NoError(t, err)

	var texts []string
	for _, tok := range toks {
		texts = append(texts, tok.Text)
	}
	assert.Equal(t, []string{"a", "-", "1", ",", " ", "-2"}, texts)
	assert.Equal(t, KindNumber, toks[5].Kind)
}

func TestKeywordValue(t *testing.T) {
	toks, err := Tokenize("Order\n  By")
	require.NoError(t, err)
	require.Len(t, toks, 1)
	assert.Equal(t, "ORDER BY", toks[0].Value())
	assert.True(t, toks[0].IsKeyword("ORDER BY"))
}

func TestParseErrors(t *testing.T) {
	inputs := []string{
		"SELECT 'abc",
		"SELECT \"abc",
		"SELECT /* open",
		"SELECT (1",
		"SELECT 1)",
		"SELECT $x$ body",
	}
	for _, in := range inputs {
		_, err := ParseFirst(in)
		require.Error(t, err, in)
		var pe *ParseError
		assert.True(t, errors.As(err, &pe), in)
	}
}

func TestParseErrorPosition(t *testing.T) {
	_, err := ParseFirst("SELECT 1\nFROM t WHERE a = 'x")
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 2, pe.Line)
	assert.Equal(t, 18, pe.Column)
	assert.Equal(t, 26, pe.Offset)
}

func TestParseMaxDepth(t *testing.T) {
	nested := func(n int) string {
		return strings.Repeat("(", n) + "1" + strings.Repeat(")", n)
	}

	_, err := ParseFirst("SELECT "+nested(5), WithMaxDepth(5))
	require.NoError(t, err)

	_, err = ParseFirst("SELECT "+nested(6), WithMaxDepth(5))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTooDeep))
}

func TestParseFirstIgnoresTrailingStatements(t *testing.T) {
	stmt, err := ParseFirst("SELECT 1; SELECT 'unterminated")
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1; ", stmt.String())
}

func TestParseEmpty(t *testing.T) {
	stmt, err := ParseFirst("")
	require.NoError(t, err)
	assert.Equal(t, KindStatement, stmt.Kind)
	assert.Empty(t, stmt.Children)
	assert.Equal(t, "", stmt.String())

	stmts, err := Parse("")
	require.NoError(t, err)
	assert.Empty(t, stmts)
}

func TestSplit(t *testing.T) {
	parts, err := Split("SELECT 1; SELECT (';');\n-- tail\nSELECT 3")
	require.NoError(t, err)
	assert.Equal(t, []string{"SELECT 1; ", "SELECT (';');\n-- tail\n", "SELECT 3"}, parts)
}

func TestFormat(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{
			input: "select * from users where id = 1 and name = 'x' order   by id",
			want:  "select *\nfrom users\nwhere id = 1\n  and name = 'x'\norder by id",
		},
		{
			input: "SELECT *   FROM (Select 1) t",
			want:  "SELECT *\nFROM (Select 1) t",
		},
		{
			input: "insert into t (a) VALUES ('v')",
			want:  "insert into t (a)\nVALUES ('v')",
		},
		{
			input: "select 1; select 2",
			want:  "select 1;\nselect 2",
		},
		{
			input: "SELECT a FROM t WHERE b NOT\n  LIKE 'x%'",
			want:  "SELECT a\nFROM t\nWHERE b NOT LIKE 'x%'",
		},
	}
	for _, tt := range tests {
		got, err := Format(tt.input)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.input)

		// only whitespace may differ
		assert.Equal(t, strings.Join(strings.Fields(tt.input), ""), strings.Join(strings.Fields(got), ""), tt.input)
	}
}
