package config

import (
	"fmt"
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cognicore/deduce/pkg/deduce/kb"
	"github.com/cognicore/deduce/pkg/deduce/logging"
	"github.com/cognicore/deduce/pkg/deduce/metrics"
	"github.com/cognicore/deduce/pkg/deduce/parse"
)

// Loader reads the configuration file and knowledge files and constructs
// components.
type Loader struct {
	// ConfigPath is optional; Default is used when empty.
	ConfigPath string
	// KnowledgePaths are loaded after the files listed in the configuration.
	KnowledgePaths []string
}

// Components holds everything built from the configuration.
type Components struct {
	Config   *Config
	Logger   *zap.Logger
	Metrics  metrics.Recorder
	Registry *prometheus.Registry // nil unless metrics are enabled
	KB       *kb.KnowledgeBase
	Loaded   kb.LoadResult
}

// Load reads all configured files and returns initialized components.
func (l *Loader) Load() (*Components, error) {
	cfg := Default()
	if l.ConfigPath != "" {
		var err error
		if cfg, err = Load(l.ConfigPath); err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	comp := &Components{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics.NoOp{},
	}

	if cfg.Metrics.Enabled {
		comp.Registry = prometheus.NewRegistry()
		rec, err := metrics.NewPrometheus(comp.Registry, cfg.Metrics.Namespace)
		if err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
		comp.Metrics = rec
	}

	comp.KB = kb.New(
		kb.WithLogger(logger),
		kb.WithMetrics(comp.Metrics),
		kb.WithMaxDepth(cfg.Engine.MaxDepth),
	)

	files := append(append([]string{}, cfg.Knowledge.Files...), l.KnowledgePaths...)
	parsed, err := parseFiles(files)
	if err != nil {
		return nil, fmt.Errorf("load knowledge: %w", err)
	}
	for i, pkb := range parsed {
		res := comp.KB.Load(pkb)
		comp.Loaded.Facts += res.Facts
		comp.Loaded.Rules += res.Rules
		comp.Loaded.Skipped += res.Skipped
		logger.Debug("knowledge file loaded", zap.String("path", files[i]))
	}

	return comp, nil
}

// parseFiles parses every file concurrently. Results keep the order of paths
// so assertion order does not depend on scheduling.
func parseFiles(paths []string) ([]parse.ParsedKnowledgeBase, error) {
	out := make([]parse.ParsedKnowledgeBase, len(paths))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		g.Go(func() error {
			pkb, err := parse.File(path)
			if err != nil {
				return err
			}
			out[i] = pkb
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
