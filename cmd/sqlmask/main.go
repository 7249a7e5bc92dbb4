// Copyright 2024-2026 Madhukar Beema, Distinguished Engineer. All rights reserved.
// Use of this source code is governed by the Business Source License
// included in the LICENSE file of this repository.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mbeema/sqlmask/pkg/agent"
	"github.com/mbeema/sqlmask/pkg/config"
	"github.com/mbeema/sqlmask/pkg/export"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

type options struct {
	configPath  string
	configDir   string
	logLevel    string
	format      bool
	lines       bool
	wire        bool
	output      string
	jobs        int
	showVersion bool
}

func main() {
	var opts options

	flag.StringVar(&opts.configPath, "config", "", "path to configuration file")
	flag.StringVar(&opts.configDir, "config-dir", "", "path to config directory (multi-file mode with auto-reload)")
	flag.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flag.BoolVar(&opts.format, "format", false, "pretty-print statements before masking")
	flag.BoolVar(&opts.lines, "lines", false, "mask each input line as a separate statement, streaming")
	flag.BoolVar(&opts.wire, "wire", false, "inputs are captured PostgreSQL or MySQL request buffers")
	flag.StringVar(&opts.output, "output", "", "output format (text, json)")
	flag.IntVar(&opts.jobs, "jobs", 4, "files masked concurrently")
	flag.BoolVar(&opts.showVersion, "version", false, "show version and exit")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: sqlmask [flags] [file ...]\n\nMasks literals in SQL read from files or stdin.\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if opts.showVersion {
		fmt.Printf("sqlmask %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	os.Exit(run(opts, flag.Args()))
}

func run(opts options, args []string) int {
	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return 2
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		return 2
	}
	defer logger.Sync()

	logger.Debug("starting sqlmask",
		zap.String("version", version),
		zap.String("commit", commit),
	)

	a, err := agent.New(cfg, version, logger)
	if err != nil {
		logger.Error("failed to create agent", zap.Error(err))
		return 2
	}

	w, err := export.NewWriter(os.Stdout, cfg.Output.Format)
	if err != nil {
		logger.Error("invalid output format", zap.Error(err))
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var failed int
	switch {
	case opts.wire:
		failed, err = maskWire(a, args, w)
	case opts.lines:
		failed, err = streamLines(ctx, a, opts, args, w, logger)
	case len(args) > 0:
		failed, err = a.MaskFiles(ctx, args, opts.jobs, w)
	default:
		var data []byte
		data, err = io.ReadAll(os.Stdin)
		if err == nil {
			rec := a.MaskScript("stdin", string(data))
			if rec.Err != nil {
				failed = 1
				logger.Error("failed to mask input", zap.Error(rec.Err))
			}
			err = w.Write(rec)
		}
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("sqlmask failed", zap.Error(err))
		return 2
	}
	if failed > 0 {
		return 1
	}
	return 0
}

func maskWire(a *agent.Agent, args []string, w *export.Writer) (int, error) {
	if len(args) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return 0, err
		}
		rec := a.MaskWire("stdin", data)
		return boolToInt(rec.Err != nil), w.Write(rec)
	}

	failed := 0
	for _, path := range args {
		data, err := os.ReadFile(path)
		rec := export.Record{Source: path, Err: err}
		if err == nil {
			rec = a.MaskWire(path, data)
		}
		if rec.Err != nil {
			failed++
		}
		if err := w.Write(rec); err != nil {
			return failed, err
		}
	}
	return failed, nil
}

// streamLines masks stdin (or each file) line by line. The config is
// reloaded on SIGHUP, or on file change when -config-dir is set, and the
// health server runs for the lifetime of the stream.
func streamLines(ctx context.Context, a *agent.Agent, opts options, args []string, w *export.Writer, logger *zap.Logger) (int, error) {
	if err := a.Start(ctx); err != nil {
		return 0, err
	}
	defer a.Stop()

	if opts.configDir != "" {
		watcher := config.NewWatcher(opts.configDir, func(newCfg *config.Config, changed []string) {
			applyFlags(newCfg, opts)
			if err := a.Reload(ctx, newCfg); err != nil {
				logger.Error("failed to apply reloaded config",
					zap.Strings("changed", changed),
					zap.Error(err),
				)
			}
		}, logger)
		if err := watcher.Start(ctx); err != nil {
			return 0, fmt.Errorf("start config watcher: %w", err)
		}
		defer watcher.Stop()
	}

	hupCh := make(chan os.Signal, 1)
	signal.Notify(hupCh, syscall.SIGHUP)
	defer signal.Stop(hupCh)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-hupCh:
				logger.Info("received SIGHUP, reloading configuration")
				newCfg, err := loadConfig(opts)
				if err != nil {
					logger.Error("failed to reload config", zap.Error(err))
					continue
				}
				if err := a.Reload(ctx, newCfg); err != nil {
					logger.Error("failed to apply new config", zap.Error(err))
				}
			}
		}
	}()

	if len(args) == 0 {
		return a.MaskLines(ctx, "stdin", os.Stdin, w)
	}
	failed := 0
	for _, path := range args {
		f, err := os.Open(path)
		if err != nil {
			failed++
			logger.Warn("failed to open file", zap.String("file", path), zap.Error(err))
			continue
		}
		n, err := a.MaskLines(ctx, path, f, w)
		f.Close()
		failed += n
		if err != nil {
			return failed, err
		}
	}
	return failed, nil
}

func loadConfig(opts options) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if opts.configDir != "" {
		cfg, err = config.LoadDir(opts.configDir)
	} else {
		cfg, err = loadConfigFile(opts.configPath)
	}
	if err != nil {
		return nil, err
	}
	applyFlags(cfg, opts)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyFlags lets command-line flags win over file and environment values.
func applyFlags(cfg *config.Config, opts options) {
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	if opts.format {
		cfg.Masking.Format = true
	}
	if opts.output != "" {
		cfg.Output.Format = opts.output
	}
}

func loadConfigFile(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}

	// Try default locations
	defaults := []string{
		"sqlmask.yaml",
		"/etc/sqlmask/sqlmask.yaml",
	}
	for _, p := range defaults {
		if _, err := os.Stat(p); err == nil {
			return config.Load(p)
		}
	}

	cfg := config.DefaultConfig()
	cfg.ApplyEnvOverrides()
	return cfg, nil
}

func newLogger(level string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Encoding:         "console",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder

	return cfg.Build()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
