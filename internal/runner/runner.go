package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"gridverify/internal/browser"
	"gridverify/internal/testid"
)

// Steps of a verification run, in execution order.
const (
	StepPrepare     = "prepare"
	StepLaunch      = "launch"
	StepNewPage     = "new_page"
	StepNavigate    = "navigate"
	StepWaitTrigger = "wait_trigger"
	StepInitialShot = "initial_screenshot"
	StepOpenPopover = "open_popover"
	StepWaitPopover = "wait_popover"
	StepHoverCell   = "hover_cell"
	StepOpenShot    = "open_screenshot"
)

// Options configure a run.
type Options struct {
	TargetURL      string
	Engine         string // recorded in the manifest
	CellRow        int
	CellCol        int
	TriggerTimeout time.Duration
	PopoverTimeout time.Duration

	ArtifactDir  string
	InitialShot  string
	OpenShot     string
	ErrorShot    string
	ManifestPath string // optional: run.json style summary
	LogPath      string // recorded in the manifest only

	Logger *zap.Logger
}

// DefaultOptions returns the options of a bare invocation.
func DefaultOptions() Options {
	return Options{
		TargetURL:      "http://localhost:5173",
		CellRow:        2,
		CellCol:        2,
		TriggerTimeout: 10 * time.Second,
		PopoverTimeout: 2 * time.Second,
		ArtifactDir:    ".",
		InitialShot:    "verification_initial.png",
		OpenShot:       "verification_open.png",
		ErrorShot:      "verification_error.png",
	}
}

// Result contains the artifacts written by a run.
type Result struct {
	RunID     string
	Manifest  Manifest
	Artifacts struct {
		Initial string
		Open    string
		Error   string
	}
}

// Manifest is persisted to Options.ManifestPath.
type Manifest struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	TargetURL  string    `json:"target_url"`
	Engine     string    `json:"engine,omitempty"`
	Cell       string    `json:"cell"`
	Passed     bool      `json:"passed"`
	FailedStep string    `json:"failed_step,omitempty"`
	Error      string    `json:"error,omitempty"`
	Initial    string    `json:"initial,omitempty"`
	Open       string    `json:"open,omitempty"`
	ErrorShot  string    `json:"error_screenshot,omitempty"`
	LogPath    string    `json:"log_path,omitempty"`
}

// Run opens the grid selector on the target page and captures screenshots
// before and after hovering a cell. The browser session is closed before
// Run returns, whatever the outcome. Any failure is returned as a
// *StepError matching ErrVerificationFailed.
func Run(ctx context.Context, driver browser.Driver, opts Options) (res Result, err error) {
	opts = opts.withDefaults()
	log := opts.Logger

	start := time.Now()
	res.RunID = fmt.Sprintf("%x", start.UnixNano())
	defer func() {
		res.Manifest = buildManifest(res, opts, start, err)
		if opts.ManifestPath == "" {
			return
		}
		if werr := writeManifest(opts.ManifestPath, res.Manifest); werr != nil {
			log.Warn("write manifest failed", zap.String("path", opts.ManifestPath), zap.Error(werr))
		}
	}()

	if err := prepareArtifacts(opts); err != nil {
		log.Error("Error during verification", zap.String("step", StepPrepare), zap.Error(err))
		return res, &StepError{Step: StepPrepare, Err: err}
	}

	session, err := driver.Launch(ctx)
	if err != nil {
		log.Error("Error during verification", zap.String("step", StepLaunch), zap.Error(err))
		return res, &StepError{Step: StepLaunch, Err: err}
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			log.Warn("close browser", zap.Error(cerr))
		}
	}()

	page, err := session.NewPage(ctx)
	if err != nil {
		log.Error("Error during verification", zap.String("step", StepNewPage), zap.Error(err))
		return res, &StepError{Step: StepNewPage, Err: err}
	}

	if err := verify(ctx, page, opts, &res); err != nil {
		log.Error("Error during verification", zap.Error(err))
		errPath := filepath.Join(opts.ArtifactDir, opts.ErrorShot)
		// The diagnostic capture must still run when ctx is what failed.
		if serr := page.Screenshot(context.WithoutCancel(ctx), errPath); serr != nil {
			log.Warn("error screenshot failed", zap.String("path", errPath), zap.Error(serr))
		} else {
			res.Artifacts.Error = errPath
		}
		return res, err
	}

	log.Info("Verification script completed successfully.")
	return res, nil
}

// verify performs the interaction sequence. Each element is located right
// before it is used.
func verify(ctx context.Context, page browser.Page, opts Options, res *Result) error {
	log := opts.Logger

	log.Info("Navigating to app...", zap.String("url", opts.TargetURL))
	if err := page.Goto(ctx, opts.TargetURL); err != nil {
		return &StepError{Step: StepNavigate, Err: err}
	}

	log.Info("Waiting for grid controls...")
	trigger := browser.Locate(page, testid.Trigger)
	if err := trigger.WaitVisible(ctx, opts.TriggerTimeout); err != nil {
		return &StepError{Step: StepWaitTrigger, Err: err}
	}

	log.Info("Taking initial screenshot...")
	initial := filepath.Join(opts.ArtifactDir, opts.InitialShot)
	if err := page.Screenshot(ctx, initial); err != nil {
		return &StepError{Step: StepInitialShot, Err: err}
	}
	res.Artifacts.Initial = initial

	log.Info("Opening grid selector...")
	if err := trigger.Click(ctx); err != nil {
		return &StepError{Step: StepOpenPopover, Err: err}
	}

	popover := browser.Locate(page, testid.Popover)
	if err := popover.WaitVisible(ctx, opts.PopoverTimeout); err != nil {
		return &StepError{Step: StepWaitPopover, Err: err}
	}

	log.Info(fmt.Sprintf("Hovering over cell %dx%d...", opts.CellRow, opts.CellCol))
	cell := browser.Locate(page, testid.Cell(opts.CellRow, opts.CellCol))
	if err := cell.Hover(ctx); err != nil {
		return &StepError{Step: StepHoverCell, Err: err}
	}

	log.Info("Taking open state screenshot...")
	open := filepath.Join(opts.ArtifactDir, opts.OpenShot)
	if err := page.Screenshot(ctx, open); err != nil {
		return &StepError{Step: StepOpenShot, Err: err}
	}
	res.Artifacts.Open = open
	return nil
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.TargetURL == "" {
		o.TargetURL = def.TargetURL
	}
	if o.TriggerTimeout <= 0 {
		o.TriggerTimeout = def.TriggerTimeout
	}
	if o.PopoverTimeout <= 0 {
		o.PopoverTimeout = def.PopoverTimeout
	}
	if o.ArtifactDir == "" {
		o.ArtifactDir = def.ArtifactDir
	}
	if o.InitialShot == "" {
		o.InitialShot = def.InitialShot
	}
	if o.OpenShot == "" {
		o.OpenShot = def.OpenShot
	}
	if o.ErrorShot == "" {
		o.ErrorShot = def.ErrorShot
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// prepareArtifacts creates the artifact directory and removes screenshots
// left by an earlier run, so the directory only reflects this run.
func prepareArtifacts(opts Options) error {
	if err := os.MkdirAll(opts.ArtifactDir, 0o755); err != nil {
		return err
	}
	for _, name := range []string{opts.InitialShot, opts.OpenShot, opts.ErrorShot} {
		err := os.Remove(filepath.Join(opts.ArtifactDir, name))
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}

func buildManifest(res Result, opts Options, start time.Time, err error) Manifest {
	m := Manifest{
		RunID:      res.RunID,
		StartedAt:  start,
		FinishedAt: time.Now(),
		TargetURL:  opts.TargetURL,
		Engine:     opts.Engine,
		Cell:       testid.Cell(opts.CellRow, opts.CellCol),
		Passed:     err == nil,
		Initial:    baseName(res.Artifacts.Initial),
		Open:       baseName(res.Artifacts.Open),
		ErrorShot:  baseName(res.Artifacts.Error),
		LogPath:    opts.LogPath,
	}
	if err != nil {
		m.Error = err.Error()
		var se *StepError
		if errors.As(err, &se) {
			m.FailedStep = se.Step
		}
	}
	return m
}

func baseName(path string) string {
	if path == "" {
		return ""
	}
	return filepath.Base(path)
}

func writeManifest(path string, manifest Manifest) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(manifest)
}
