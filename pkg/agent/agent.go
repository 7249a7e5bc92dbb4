// Copyright 2024-2026 Madhukar Beema, Distinguished Engineer. All rights reserved.
// Use of this source code is governed by the Business Source License
// included in the LICENSE file of this repository.

// Package agent wires configuration, masking, redaction, output and
// self-monitoring into one runnable unit.
package agent

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mbeema/sqlmask/pkg/config"
	"github.com/mbeema/sqlmask/pkg/export"
	"github.com/mbeema/sqlmask/pkg/health"
	"github.com/mbeema/sqlmask/pkg/protocol"
	"github.com/mbeema/sqlmask/pkg/redact"
	"github.com/mbeema/sqlmask/pkg/sqlmask"
	"github.com/mbeema/sqlmask/pkg/sqlparse"
)

// maxLineSize bounds a single input line in line mode.
const maxLineSize = 4 << 20

// Agent masks SQL from files, streams and wire captures. Configuration is
// held behind atomic pointers so Reload is safe while masking runs.
type Agent struct {
	cfg      atomic.Pointer[config.Config]
	redactor atomic.Pointer[redact.Redactor]
	logger   *zap.Logger
	version  string

	stats        *health.Stats
	healthServer *health.Server
	mu           sync.Mutex
}

// New creates an Agent from cfg.
func New(cfg *config.Config, version string, logger *zap.Logger) (*Agent, error) {
	a := &Agent{
		logger:  logger,
		version: version,
		stats:   health.NewStats(),
	}
	r, err := newRedactor(cfg, logger)
	if err != nil {
		return nil, err
	}
	a.cfg.Store(cfg)
	a.redactor.Store(r)
	return a, nil
}

func newRedactor(cfg *config.Config, logger *zap.Logger) (*redact.Redactor, error) {
	rules := make([]redact.Rule, 0, len(cfg.Redaction.Rules))
	for _, r := range cfg.Redaction.Rules {
		rule, err := redact.CompileRule(r.Name, r.Pattern, r.Replacement)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}

	masker := sqlmask.New(
		sqlmask.WithFormat(cfg.Masking.Format),
		sqlmask.WithMaxDepth(cfg.Masking.MaxDepth),
		sqlmask.WithPreservedKeywords(cfg.Masking.PreserveKeywords...),
	)
	return redact.New(redact.Options{
		Enabled:  cfg.Redaction.Enabled,
		Fallback: cfg.Redaction.Fallback,
		Rules:    rules,
		Masker:   masker,
	}, logger), nil
}

// Stats returns the self-monitoring counters.
func (a *Agent) Stats() *health.Stats {
	return a.stats
}

// Config returns the active configuration.
func (a *Agent) Config() *config.Config {
	return a.cfg.Load()
}

// Start starts the health server when enabled.
func (a *Agent) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.startHealth(ctx)
}

func (a *Agent) startHealth(ctx context.Context) error {
	cfg := a.cfg.Load()
	if !cfg.Health.Enabled || a.healthServer != nil {
		return nil
	}
	srv := health.NewServer(cfg.Health.Port, a.version, a.stats, a.logger)
	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("start health server: %w", err)
	}
	srv.SetReady(true)
	a.healthServer = srv
	return nil
}

func (a *Agent) stopHealth() {
	if a.healthServer == nil {
		return
	}
	a.healthServer.SetReady(false)
	if err := a.healthServer.Stop(); err != nil {
		a.logger.Warn("health server shutdown error", zap.Error(err))
	}
	a.healthServer = nil
}

// Stop shuts down the health server and logs final counters.
func (a *Agent) Stop() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.stopHealth()

	snap := a.stats.Snapshot()
	a.logger.Info("sqlmask stopped",
		zap.Int64("statements", snap.Statements),
		zap.Int64("literals_masked", snap.LiteralsMasked),
		zap.Int64("lists_collapsed", snap.ListsCollapsed),
		zap.Int64("parse_errors", snap.ParseErrors),
		zap.Int64("fallbacks", snap.Fallbacks),
	)
	return nil
}

// Reload swaps in a new configuration. The masker and redactor are rebuilt;
// the health server is started, stopped or restarted as needed.
func (a *Agent) Reload(ctx context.Context, cfg *config.Config) error {
	r, err := newRedactor(cfg, a.logger)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	old := a.cfg.Load()
	a.cfg.Store(cfg)
	a.redactor.Store(r)

	if old.Health != cfg.Health {
		a.stopHealth()
		if err := a.startHealth(ctx); err != nil {
			return err
		}
	}

	a.logger.Info("configuration reloaded",
		zap.Bool("format", cfg.Masking.Format),
		zap.Int("max_depth", cfg.Masking.MaxDepth),
		zap.Strings("preserve_keywords", cfg.Masking.PreserveKeywords),
		zap.Bool("redaction", cfg.Redaction.Enabled),
		zap.Bool("health", cfg.Health.Enabled),
	)
	return nil
}

// MaskStatement masks a single statement.
func (a *Agent) MaskStatement(source, sql string) export.Record {
	rec := export.Record{Source: source}
	a.maskInto(&rec, sql)
	return rec
}

// maskInto masks sql and adds the outcome to rec.
func (a *Agent) maskInto(rec *export.Record, sql string) {
	res, err := a.redactor.Load().RedactSQL(sql)
	if err != nil {
		a.stats.RecordError()
		if rec.Err == nil {
			rec.Err = err
		}
		a.logger.Debug("statement rejected", zap.String("source", rec.Source), zap.Error(err))
		return
	}
	if res.Fallback {
		a.stats.RecordFallback()
		rec.Fallback = true
		a.logger.Debug("statement masked by fallback", zap.String("source", rec.Source), zap.Error(res.ParseErr))
	} else {
		a.stats.RecordMask(res.Masked, res.Preserved, res.Collapsed)
	}
	rec.Masked += res.SQL
	rec.MaskedLiterals += res.Masked
	rec.PreservedLiterals += res.Preserved
	rec.CollapsedLists += res.Collapsed
}

// MaskScript masks every statement in a script and concatenates the
// results. A script the splitter rejects is masked as one statement.
func (a *Agent) MaskScript(source, script string) export.Record {
	rec := export.Record{Source: source}
	parts, err := sqlparse.Split(script)
	if err != nil {
		parts = []string{script}
	}
	for _, part := range parts {
		a.maskInto(&rec, part)
	}
	if rec.Err != nil {
		rec.Masked = ""
	}
	return rec
}

// MaskFiles masks each file as a script, at most jobs at a time, and writes
// the records in argument order. It returns the number of failed files.
func (a *Agent) MaskFiles(ctx context.Context, paths []string, jobs int, w *export.Writer) (int, error) {
	records := make([]export.Record, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				records[i] = export.Record{Source: path, Err: err}
				return nil
			}
			records[i] = a.MaskScript(path, string(data))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	failed := 0
	for _, rec := range records {
		if rec.Err != nil {
			failed++
			a.logger.Warn("failed to mask file", zap.String("file", rec.Source), zap.Error(rec.Err))
		}
		if err := w.Write(rec); err != nil {
			return failed, fmt.Errorf("write output: %w", err)
		}
	}
	return failed, nil
}

// MaskLines masks each line of r as an independent statement, writing each
// record as soon as it is ready. Blank lines are written back as they are,
// so output lines match input lines one to one. It returns the number of
// failed lines.
func (a *Agent) MaskLines(ctx context.Context, source string, r io.Reader, w *export.Writer) (int, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)

	failed := 0
	for n := 1; sc.Scan(); n++ {
		if err := ctx.Err(); err != nil {
			return failed, err
		}
		line := sc.Text()
		src := source + ":" + strconv.Itoa(n)
		rec := export.Record{Source: src, Masked: line}
		if strings.TrimSpace(line) != "" {
			rec = a.MaskStatement(src, line)
		}
		if rec.Err != nil {
			failed++
		}
		if err := w.Write(rec); err != nil {
			return failed, fmt.Errorf("write output: %w", err)
		}
	}
	if err := sc.Err(); err != nil {
		return failed, fmt.Errorf("read %s: %w", source, err)
	}
	return failed, nil
}

// MaskWire extracts the statement from a captured client request buffer
// and masks it.
func (a *Agent) MaskWire(source string, data []byte) export.Record {
	rec := export.Record{Source: source}
	attrs, err := protocol.DetectAndParse(data)
	if err != nil {
		rec.Err = err
		return rec
	}

	rec.Attributes = wireAttributes(attrs)
	if attrs.HasStatement() {
		a.maskInto(&rec, attrs.DBStatement)
	}
	return rec
}

func wireAttributes(attrs *protocol.QueryAttributes) map[string]string {
	m := map[string]string{"protocol": attrs.Protocol}
	set := func(k, v string) {
		if v != "" {
			m[k] = v
		}
	}
	set("db.system", attrs.DBSystem)
	set("db.operation", attrs.DBOperation)
	set("db.table", attrs.DBTable)
	set("db.name", attrs.DBName)
	set("db.prepared", attrs.PreparedName)
	return m
}
