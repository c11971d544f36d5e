// Command gridverify opens the grid selector of a locally running web app in
// a headless browser and saves screenshots of its closed and open states.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"gridverify/internal/browser"
	"gridverify/internal/browser/cdpengine"
	"gridverify/internal/browser/pwengine"
	"gridverify/internal/config"
	"gridverify/internal/logging"
	"gridverify/internal/runner"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) > 0 && args[0] == "install" {
		if err := pwengine.Install(); err != nil {
			fmt.Fprintf(stderr, "install playwright browsers: %v\n", err)
			return 1
		}
		return 0
	}

	cfg, install, err := loadConfig(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "gridverify: %v\n", err)
		return 2
	}

	logger, done, err := logging.New(logging.Options{Console: stdout, File: cfg.Log.File, Debug: cfg.Log.Debug})
	if err != nil {
		fmt.Fprintf(stderr, "gridverify: open log: %v\n", err)
		return 2
	}
	defer done()

	if install {
		logger.Info("installing playwright browsers")
		if err := pwengine.Install(); err != nil {
			logger.Error("install playwright browsers", zap.Error(err))
			return 1
		}
	}

	if _, err := runner.Run(context.Background(), newDriver(cfg), runOptions(cfg, logger)); err != nil {
		return 1
	}
	return 0
}

// loadConfig builds the run configuration: defaults, then the optional
// -config file, then any flags that were set explicitly.
func loadConfig(args []string, stderr io.Writer) (*config.Config, bool, error) {
	fs := flag.NewFlagSet("gridverify", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "YAML config file")
	url := fs.String("url", "", "Target URL")
	engine := fs.String("engine", "", "Browser engine: playwright or chromedp")
	headed := fs.Bool("headed", false, "Show the browser window")
	out := fs.String("out", "", "Directory for screenshots")
	logFile := fs.String("log-file", "", "Also write NDJSON log lines to this file")
	manifest := fs.String("manifest", "", "Write a JSON run summary to this file")
	debug := fs.Bool("debug", false, "Debug logging")
	install := fs.Bool("install", false, "Install playwright browsers before the run")
	if err := fs.Parse(args); err != nil {
		return nil, false, err
	}
	if fs.NArg() > 0 {
		return nil, false, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			return nil, false, err
		}
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "url":
			cfg.TargetURL = *url
		case "engine":
			cfg.Engine = *engine
		case "headed":
			cfg.Headless = !*headed
		case "out":
			cfg.Artifacts.Dir = *out
		case "log-file":
			cfg.Log.File = *logFile
		case "manifest":
			cfg.Artifacts.Manifest = *manifest
		case "debug":
			cfg.Log.Debug = *debug
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, false, err
	}
	return cfg, *install, nil
}

func newDriver(cfg *config.Config) browser.Driver {
	viewport := browser.Viewport{Width: cfg.Viewport.Width, Height: cfg.Viewport.Height}
	if cfg.Engine == config.EngineChromedp {
		return cdpengine.New(cdpengine.Options{
			Headless: cfg.Headless,
			Viewport: viewport,
			ExecPath: cfg.ChromePath,
		})
	}
	return pwengine.New(pwengine.Options{
		Headless: cfg.Headless,
		Viewport: viewport,
		Args:     []string{"--disable-dev-shm-usage"},
	})
}

func runOptions(cfg *config.Config, logger *zap.Logger) runner.Options {
	return runner.Options{
		TargetURL:      cfg.TargetURL,
		Engine:         cfg.Engine,
		CellRow:        cfg.Cell.Row,
		CellCol:        cfg.Cell.Col,
		TriggerTimeout: cfg.Timeouts.Trigger,
		PopoverTimeout: cfg.Timeouts.Popover,
		ArtifactDir:    cfg.Artifacts.Dir,
		InitialShot:    cfg.Artifacts.Initial,
		OpenShot:       cfg.Artifacts.Open,
		ErrorShot:      cfg.Artifacts.Error,
		ManifestPath:   cfg.Artifacts.Manifest,
		LogPath:        cfg.Log.File,
		Logger:         logger,
	}
}
