// Copyright 2024-2026 Madhukar Beema. All rights reserved.
// Use of this source code is governed by the Business Source License
// included in the LICENSE file of this repository.

package redact

import (
	"fmt"
	"regexp"

	"go.uber.org/zap"

	"github.com/mbeema/sqlmask/pkg/sqlmask"
)

// Rule defines a single redaction pattern.
type Rule struct {
	Name        string
	Pattern     *regexp.Regexp
	Replacement string
}

// CompileRule builds a Rule from its textual form.
func CompileRule(name, pattern, replacement string) (Rule, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Rule{}, fmt.Errorf("redaction rule %q: %w", name, err)
	}
	return Rule{Name: name, Pattern: re, Replacement: replacement}, nil
}

// Options configures a Redactor.
type Options struct {
	// Enabled turns on the PII rules for regex-normalized SQL. Parser
	// masking always runs and never goes through the rules.
	Enabled bool

	// Fallback masks with NormalizeSQL when the parser rejects a statement.
	// Without it RedactSQL returns the parse error.
	Fallback bool

	// Rules are appended to the built-in rules.
	Rules []Rule

	// Masker masks SQL. Nil selects sqlmask.New().
	Masker *sqlmask.Masker
}

// Result describes one RedactSQL call.
type Result struct {
	sqlmask.Report

	// Fallback is set when NormalizeSQL produced SQL; ParseErr holds the
	// parser error that caused it.
	Fallback bool
	ParseErr error
}

// Redactor masks SQL literals and applies PII rules to input strings.
type Redactor struct {
	rules    []Rule
	enabled  bool
	fallback bool
	masker   *sqlmask.Masker
	logger   *zap.Logger
}

// New creates a Redactor with built-in rules plus opts.Rules.
func New(opts Options, logger *zap.Logger) *Redactor {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Redactor{
		enabled:  opts.Enabled,
		fallback: opts.Fallback,
		masker:   opts.Masker,
		logger:   logger,
	}
	if r.masker == nil {
		r.masker = sqlmask.New()
	}
	if !opts.Enabled {
		return r
	}
	r.rules = builtinRules()
	r.rules = append(r.rules, opts.Rules...)
	return r
}

// RedactSQL masks the literals of the first statement in stmt. Parser
// output is returned as is: its literals are gone and everything else is
// source text. Only regex-normalized SQL, which may still hold values the
// patterns missed, goes through the PII rules.
func (r *Redactor) RedactSQL(stmt string) (Result, error) {
	report, err := r.masker.MaskReport(stmt)
	if err != nil {
		if !r.fallback {
			return Result{}, err
		}
		r.logger.Debug("parser rejected statement, using regex normalization",
			zap.Error(err), zap.Int("length", len(stmt)))
		return Result{
			Report:   sqlmask.Report{SQL: r.Redact(NormalizeSQL(stmt))},
			Fallback: true,
			ParseErr: err,
		}, nil
	}
	return Result{Report: report}, nil
}

// Redact applies all rules to the input string and returns the redacted result.
func (r *Redactor) Redact(input string) string {
	if !r.enabled || len(r.rules) == 0 {
		return input
	}
	result := input
	for _, rule := range r.rules {
		result = rule.Pattern.ReplaceAllString(result, rule.Replacement)
	}
	return result
}

// Rules returns the active rule names in application order.
func (r *Redactor) Rules() []string {
	names := make([]string, 0, len(r.rules))
	for _, rule := range r.rules {
		names = append(names, rule.Name)
	}
	return names
}

func builtinRules() []Rule {
	return []Rule{
		{
			Name:        "credit_card",
			Pattern:     regexp.MustCompile(`\b(?:\d[ -]*?){13,19}\b`),
			Replacement: "[REDACTED_CC]",
		},
		{
			Name:        "ssn",
			Pattern:     regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),
			Replacement: "[REDACTED_SSN]",
		},
		{
			Name:        "authorization_header",
			Pattern:     regexp.MustCompile(`(?i)(authorization\s*[:=]\s*)\S+(\s+\S+)?`),
			Replacement: "${1}[REDACTED]",
		},
		{
			Name:        "password_param",
			Pattern:     regexp.MustCompile(`(?i)(password|passwd|pwd|secret|token|api_key|apikey)\s*[=:]\s*['"]?[^\s&,;'"?]+`),
			Replacement: "${1}=[REDACTED]",
		},
	}
}
