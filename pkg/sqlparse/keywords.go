// Copyright 2024-2026 Madhukar Beema. All rights reserved.
// Use of this source code is governed by the Business Source License
// included in the LICENSE file of this repository.

package sqlparse

// keywords maps upper-case reserved words to their lexical class.
// Words missing from the table lex as names, which lets common column
// names (name, user, date, status, ...) group as identifiers.
var keywords = map[string]Class{
	// DML
	"SELECT":  ClassDML,
	"INSERT":  ClassDML,
	"UPDATE":  ClassDML,
	"DELETE":  ClassDML,
	"MERGE":   ClassDML,
	"UPSERT":  ClassDML,
	"REPLACE": ClassDML,

	// DDL
	"CREATE":   ClassDDL,
	"ALTER":    ClassDDL,
	"DROP":     ClassDDL,
	"TRUNCATE": ClassDDL,

	"ADD": ClassNone, "ALL": ClassNone, "AND": ClassNone, "ANY": ClassNone, "AS": ClassNone,
	"ASC": ClassNone, "BEGIN": ClassNone, "BETWEEN": ClassNone, "BY": ClassNone, "CASCADE": ClassNone,
	"CASE": ClassNone, "CAST": ClassNone, "CHECK": ClassNone, "COLLATE": ClassNone, "COLUMN": ClassNone,
	"COMMIT": ClassNone, "CONFLICT": ClassNone, "CONSTRAINT": ClassNone, "CROSS": ClassNone,
	"CURRENT_DATE": ClassNone, "CURRENT_TIME": ClassNone, "CURRENT_TIMESTAMP": ClassNone,
	"DATABASE": ClassNone, "DEFAULT": ClassNone, "DESC": ClassNone, "DISTINCT": ClassNone,
	"DO": ClassNone, "ELSE": ClassNone, "END": ClassNone, "ESCAPE": ClassNone, "EXCEPT": ClassNone,
	"EXISTS": ClassNone, "EXPLAIN": ClassNone, "FALSE": ClassNone, "FETCH": ClassNone, "FIRST": ClassNone,
	"FOR": ClassNone, "FOREIGN": ClassNone, "FROM": ClassNone, "FULL": ClassNone, "GRANT": ClassNone,
	"HAVING": ClassNone, "IF": ClassNone, "IGNORE": ClassNone, "IN": ClassNone, "INDEX": ClassNone,
	"INNER": ClassNone, "INTERSECT": ClassNone, "INTERVAL": ClassNone, "INTO": ClassNone, "IS": ClassNone,
	"JOIN": ClassNone, "KEY": ClassNone, "LATERAL": ClassNone, "LEFT": ClassNone, "LIMIT": ClassNone,
	"NATURAL": ClassNone, "NEXT": ClassNone, "NOT": ClassNone, "NOTHING": ClassNone, "NULL": ClassNone,
	"NULLS": ClassNone, "OFFSET": ClassNone, "ON": ClassNone, "ONLY": ClassNone, "OR": ClassNone,
	"ORDER": ClassNone, "OUTER": ClassNone, "OVER": ClassNone, "PARTITION": ClassNone,
	"PRIMARY": ClassNone, "REFERENCES": ClassNone, "RETURNING": ClassNone, "REVOKE": ClassNone,
	"RIGHT": ClassNone, "ROLLBACK": ClassNone, "ROW": ClassNone, "ROWS": ClassNone, "SCHEMA": ClassNone,
	"SET": ClassNone, "SHOW": ClassNone, "TABLE": ClassNone, "THEN": ClassNone, "TO": ClassNone,
	"TOP": ClassNone, "TRANSACTION": ClassNone, "TRUE": ClassNone, "UNION": ClassNone, "UNIQUE": ClassNone,
	"USING": ClassNone, "VALUES": ClassNone, "VIEW": ClassNone, "WHEN": ClassNone, "WHERE": ClassNone,
	"WINDOW": ClassNone, "WITH": ClassNone, "WITHOUT": ClassNone,
}

// comparisonWords lex as comparison operators rather than keywords.
var comparisonWords = map[string]bool{
	"LIKE":   true,
	"ILIKE":  true,
	"RLIKE":  true,
	"REGEXP": true,
}

// phrases lists keywords that span several words. The lexer folds the
// words (and the whitespace between them) into a single token.
var phrases = map[string][][]string{
	"ORDER":     {{"BY"}},
	"GROUP":     {{"BY"}},
	"PARTITION": {{"BY"}},
	"UNION":     {{"ALL"}},
	"NOT":       {{"LIKE"}, {"ILIKE"}, {"NULL"}},
	"LEFT":      {{"OUTER", "JOIN"}, {"JOIN"}},
	"RIGHT":     {{"OUTER", "JOIN"}, {"JOIN"}},
	"FULL":      {{"OUTER", "JOIN"}, {"JOIN"}},
	"INNER":     {{"JOIN"}},
	"CROSS":     {{"JOIN"}},
	"NATURAL":   {{"JOIN"}},
}

// whereClose lists keywords that end a WHERE clause.
var whereClose = []string{
	"ORDER BY", "GROUP BY", "LIMIT", "OFFSET", "UNION", "UNION ALL", "EXCEPT",
	"INTERSECT", "HAVING", "RETURNING", "WINDOW", "FETCH", "INTO",
}

// clauseKeywords start a new line when formatting.
var clauseKeywords = map[string]bool{
	"FROM": true, "WHERE": true, "GROUP BY": true, "ORDER BY": true, "HAVING": true,
	"LIMIT": true, "OFFSET": true, "UNION": true, "UNION ALL": true, "EXCEPT": true,
	"INTERSECT": true, "VALUES": true, "SET": true, "RETURNING": true, "JOIN": true,
	"LEFT JOIN": true, "LEFT OUTER JOIN": true, "RIGHT JOIN": true, "RIGHT OUTER JOIN": true,
	"FULL JOIN": true, "FULL OUTER JOIN": true, "INNER JOIN": true, "CROSS JOIN": true,
	"NATURAL JOIN": true, "WINDOW": true,
}

func lookupKeyword(upper string) (Class, bool) {
	c, ok := keywords[upper]
	return c, ok
}
