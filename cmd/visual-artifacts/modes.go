package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"visual-artifacts/internal/capture"
	"visual-artifacts/internal/complexity"
	"visual-artifacts/internal/effect"
	"visual-artifacts/internal/effects"
	"visual-artifacts/internal/pipeline"
	"visual-artifacts/internal/registry"
	"visual-artifacts/internal/render"
	"visual-artifacts/internal/shutdown"
	"visual-artifacts/internal/timing"
	"visual-artifacts/internal/transform"
	"visual-artifacts/internal/ui"
)

const (
	windowTitle  = "Video Feed"
	webcamWidth  = 640
	webcamHeight = 480
)

func (app *Application) buildRegistry() (*registry.Manager, error) {
	cal, err := app.cfg.CalibrationConfig()
	if err != nil {
		return nil, err
	}
	return effects.Build(effects.Options{
		Calibration: cal,
		Seed:        app.args.Seed,
		Logger:      app.log,
	})
}

func (app *Application) list() error {
	reg, err := app.buildRegistry()
	if err != nil {
		return err
	}

	switch app.args.List {
	case "modules":
		app.console.List("Modules", nil, effects.Names())
	case "effects":
		app.console.List("Effects", reg.Operations(), effects.Names())
	default:
		return fmt.Errorf("%w: --list accepts modules or effects, got %q", errUsage, app.args.List)
	}
	return nil
}

// activate picks the first requested module, falling back to None when it
// is unknown.
func (app *Application) activate(reg *registry.Manager) {
	name := app.cfg.Effects.Default
	if len(app.args.Modules) > 0 {
		name = app.args.Modules[0]
	} else {
		app.console.Warn("No modules specified, using '%s'", name)
	}

	if err := reg.Activate(name); err != nil {
		app.console.Error("%v, using '%s'", err, effect.NoneName)
		_ = reg.Activate(effect.NoneName)
	}
}

func (app *Application) checkExplicitOps(reg *registry.Manager) {
	active := reg.Active()
	for _, name := range app.args.Effects {
		op, err := transform.ParseOp(name)
		if err != nil || !active.Has(op) {
			app.console.Warn("Operation '%s' is not provided by %s and will be skipped", name, active.Name())
		}
	}
}

func (app *Application) runMode(ctx context.Context, mode string) error {
	reg, err := app.buildRegistry()
	if err != nil {
		return err
	}
	app.activate(reg)
	app.checkExplicitOps(reg)

	// Signals only cancel the run; components are released here once the
	// runner has returned.
	sd := shutdown.NewManager(app.log)
	sd.Listen()
	defer sd.Shutdown()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-sd.Context().Done():
			cancel()
		case <-runCtx.Done():
		}
	}()

	if mode == "webcam" {
		src, err := capture.OpenWebcam(app.cfg.Assets.Webcam, capture.Options{Width: webcamWidth, Height: webcamHeight}, app.log)
		if err != nil {
			return err
		}
		sd.Register("capture", src)
		return app.runInteractive(runCtx, sd, src, reg)
	}

	path, err := app.resolveVideo()
	if err != nil {
		return err
	}
	app.console.Info("File found. Processing: %s", path)

	src, err := capture.OpenFile(path, capture.Options{Loop: mode == "live"}, app.log)
	if err != nil {
		return err
	}
	sd.Register("capture", src)

	if mode == "live" {
		return app.runInteractive(runCtx, sd, src, reg)
	}
	return app.runRender(runCtx, sd, src, reg, path)
}

func (app *Application) runInteractive(ctx context.Context, sd *shutdown.Manager, src capture.Source, reg *registry.Manager) error {
	display := render.NewDisplay(windowTitle)
	sd.Register("display", display)

	runner, err := pipeline.New(pipeline.Config{
		Source:      src,
		Analyzer:    complexity.NewAnalyzer(),
		Registry:    reg,
		Display:     display,
		ExplicitOps: app.args.Effects,
		Debug:       app.args.Debug,
		Logger:      app.log,
	})
	if err != nil {
		return err
	}

	stats, err := runner.Run(ctx)
	if err != nil {
		return err
	}
	app.console.Terminate("Terminated the video feed process (%s after %d frames)", stats.StopReason, stats.Frames)
	return nil
}

func (app *Application) runRender(ctx context.Context, sd *shutdown.Manager, src capture.Source, reg *registry.Manager, path string) error {
	fps := src.FPS()
	if fps <= 0 {
		return fmt.Errorf("cannot determine frame rate of %s", path)
	}

	out := render.OutputPath(app.cfg.Assets.BuildDir, time.Now())
	encoder, err := render.NewEncoder(out, app.cfg.Render.Codec, fps, app.log)
	if err != nil {
		return err
	}
	sd.Register("encoder", encoder)

	maxFrames := int(fps * float64(app.cfg.Render.MaxSeconds))
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	program := tea.NewProgram(ui.NewModel(path, maxFrames, cancel))

	tracker := timing.NewTracker(timing.DefaultWindow)
	runner, err := pipeline.New(pipeline.Config{
		Source:      src,
		Analyzer:    complexity.NewAnalyzer(),
		Registry:    reg,
		Sink:        encoder,
		ExplicitOps: app.args.Effects,
		Debug:       app.args.Debug,
		MaxFrames:   maxFrames,
		Progress:    func(s pipeline.Stats) { program.Send(ui.ProgressMsg{Stats: s}) },
		Timing:      tracker,
		Logger:      app.log,
	})
	if err != nil {
		return err
	}

	finished := make(chan struct{})
	go func() {
		defer close(finished)

		stats, runErr := runner.Run(ctx)
		if cerr := encoder.Close(); cerr != nil && runErr == nil {
			runErr = cerr
		}

		output := encoder.Path()
		if encoder.Frames() == 0 {
			output = ""
		}
		program.Send(ui.DoneMsg{Stats: stats, OutputPath: output, Error: runErr})
	}()

	final, err := program.Run()
	// The encoder is released by the caller, so the runner must be done
	// with it before this returns.
	cancel()
	<-finished
	if err != nil {
		return fmt.Errorf("UI error: %w", err)
	}

	m, _ := final.(ui.Model)
	if m.Cancelled {
		app.console.Terminate("Render stopped before completion")
		return nil
	}
	if m.Err != nil {
		return m.Err
	}
	if m.OutputPath == "" {
		return fmt.Errorf("no frames processed")
	}
	app.console.Success("Done! Open %s to see your masterpiece!", m.OutputPath)
	return nil
}

// resolveVideo maps --video to a file under the assets directory, listing
// what is available when it cannot.
func (app *Application) resolveVideo() (string, error) {
	available := videoFiles(app.cfg.Assets.Videos)

	if app.args.Video == "" {
		return "", fmt.Errorf("%w: --video is required, available: %s", errUsage, strings.Join(available, ", "))
	}

	path := app.cfg.VideoPath(app.args.Video)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("couldn't find '%s' in %s (available: %s); check the name or configure assets_video",
			app.args.Video, app.cfg.Assets.Videos, strings.Join(available, ", "))
	}
	return path, nil
}

func videoFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() {
			files = append(files, strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))
		}
	}
	sort.Strings(files)
	return files
}
