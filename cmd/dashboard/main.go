package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alejandrodnm/agentdash/config"
	"github.com/alejandrodnm/agentdash/internal/adapters/notify"
	"github.com/alejandrodnm/agentdash/internal/dashboard"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	once := flag.Bool("once", false, "render one snapshot and exit")
	agent := flag.String("agent", "", "selected agent id (default: top performer)")
	agentFilter := flag.String("agent-filter", "", "trade feed agent filter: id|ALL (overrides config)")
	asset := flag.String("asset", "", "trade feed asset filter: BTC|ALL (overrides config)")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	svgPath := flag.String("svg", "", "write the selected agent's equity chart as SVG to this path")
	table := flag.Bool("table", false, "print full tables (default: compact 2-line)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) || isFlagSet("config") {
			slog.Error("failed to load config", "err", err, "path", *configPath)
			os.Exit(1)
		}
		cfg = config.Default()
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	if *agent != "" {
		cfg.Dashboard.Agent = *agent
	}
	if *agentFilter != "" {
		cfg.Dashboard.AgentFilter = *agentFilter
	}
	if *asset != "" {
		cfg.Dashboard.AssetFilter = *asset
	}
	setupLogger(cfg.Log)

	slog.Info("agentdash starting",
		"config", *configPath,
		"interval", cfg.RefreshInterval(),
		"once", *once,
		"agent", cfg.Dashboard.Agent,
		"svg", *svgPath,
	)

	source, closeSource, err := openSource(cfg)
	if err != nil {
		slog.Error("failed to open snapshot source", "err", err)
		os.Exit(1)
	}
	defer closeSource()

	reporter := notify.NewConsole(*table, cfg.Dashboard.ClosedLimit)

	runner := dashboard.NewRunner(dashboard.RunnerConfig{
		Interval:  cfg.RefreshInterval(),
		Once:      *once,
		Selection: cfg.Selection(),
		Workers:   cfg.Dashboard.Workers,
		Layout:    cfg.Layout(),
	}, source, reporter)

	if *svgPath != "" {
		runner.OnPage(svgWriter(*svgPath, cfg.Layout()))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := runner.Run(ctx); err != nil {
		slog.Error("dashboard exited with error", "err", err)
		os.Exit(1)
	}

	slog.Info("agentdash stopped cleanly")
}

func isFlagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
