// Copyright 2024-2026 Madhukar Beema. All rights reserved.
// Use of this source code is governed by the Business Source License
// included in the LICENSE file of this repository.

// Package sqlmask replaces literal values in SQL with placeholders while
// keeping every other character of the statement intact.
//
//	sqlmask.Mask("SELECT * FROM users WHERE id = 1", false)
//	// "SELECT * FROM users WHERE id = ?"
//
// Literal lists after IN collapse to a single "(?)" so the output does not
// reveal how many values were queried. Literals directly after LIMIT, OFFSET
// or TOP are kept because they describe the query shape, not the data.
package sqlmask

import (
	"strings"

	"github.com/mbeema/sqlmask/pkg/sqlparse"
)

const (
	// Placeholder replaces a masked literal.
	Placeholder = "?"

	collapsedList = "(" + Placeholder + ")"

	// DefaultMaxDepth bounds both parenthesis nesting and token tree depth.
	DefaultMaxDepth = 1000
)

// ErrTooDeep is returned for input nested deeper than the configured limit.
var ErrTooDeep = sqlparse.ErrTooDeep

// DefaultPreservedKeywords are the keywords whose following literal is kept.
var DefaultPreservedKeywords = []string{"LIMIT", "OFFSET", "TOP"}

// Report describes the outcome of masking one statement.
type Report struct {
	SQL       string
	Masked    int // literals replaced by a placeholder
	Preserved int // literals kept after a preserved keyword
	Collapsed int // IN lists collapsed to "(?)"
}

// Masker masks SQL statements. A Masker is immutable and safe for
// concurrent use.
type Masker struct {
	format   bool
	maxDepth int
	preserve map[string]bool
}

// Option configures a Masker.
type Option func(*Masker)

// WithFormat pretty-prints input before masking.
func WithFormat(format bool) Option {
	return func(m *Masker) { m.format = format }
}

// WithMaxDepth limits nesting depth. Values <= 0 select DefaultMaxDepth.
func WithMaxDepth(n int) Option {
	return func(m *Masker) {
		if n > 0 {
			m.maxDepth = n
		}
	}
}

// WithPreservedKeywords replaces the set of keywords whose following literal
// is left unmasked.
func WithPreservedKeywords(keywords ...string) Option {
	return func(m *Masker) {
		m.preserve = make(map[string]bool, len(keywords))
		for _, k := range keywords {
			m.preserve[strings.ToUpper(strings.TrimSpace(k))] = true
		}
	}
}

// New creates a Masker.
func New(opts ...Option) *Masker {
	m := &Masker{maxDepth: DefaultMaxDepth}
	WithPreservedKeywords(DefaultPreservedKeywords...)(m)
	for _, opt := range opts {
		opt(m)
	}
	return m
}

var (
	plainMasker     = New()
	formattedMasker = New(WithFormat(true))
)

// Mask masks the first statement of sql with the default settings. When
// format is set the statement is pretty-printed first.
func Mask(sql string, format bool) (string, error) {
	if format {
		return formattedMasker.Mask(sql)
	}
	return plainMasker.Mask(sql)
}

// Mask masks the first statement of sql. Statements after the first
// top-level semicolon are dropped.
func (m *Masker) Mask(sql string) (string, error) {
	r, err := m.MaskReport(sql)
	if err != nil {
		return "", err
	}
	return r.SQL, nil
}

// MaskReport masks like Mask and also counts what was changed.
func (m *Masker) MaskReport(sql string) (Report, error) {
	if m.format {
		formatted, err := sqlparse.Format(sql)
		if err != nil {
			return Report{}, err
		}
		sql = formatted
	}
	stmt, err := sqlparse.ParseFirst(sql, sqlparse.WithMaxDepth(m.maxDepth))
	if err != nil {
		return Report{}, err
	}
	return m.maskTree(stmt)
}

// MaskTree masks an already parsed statement.
func (m *Masker) MaskTree(stmt *sqlparse.Token) (string, error) {
	r, err := m.maskTree(stmt)
	if err != nil {
		return "", err
	}
	return r.SQL, nil
}

func (m *Masker) maskTree(stmt *sqlparse.Token) (Report, error) {
	w := &walker{m: m}
	if err := w.maskToken(stmt, nil, 0); err != nil {
		return Report{}, err
	}
	w.report.SQL = w.b.String()
	return w.report, nil
}

// preserves reports whether a literal following prev stays unmasked.
func (m *Masker) preserves(prev *sqlparse.Token) bool {
	return prev != nil && prev.Kind == sqlparse.KindKeyword && m.preserve[prev.Value()]
}
