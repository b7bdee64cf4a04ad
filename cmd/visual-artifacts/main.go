package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/alecthomas/kong"

	"visual-artifacts/internal/cli"
	"visual-artifacts/internal/config"
	"visual-artifacts/internal/logger"
)

const (
	AppName    = "visual-artifacts"
	AppTitle   = "Visual Artifacts"
	AppVersion = "1.0.0"
)

// CLI defines the command-line interface
type CLI struct {
	Mode      string            `short:"m" placeholder:"MODE" help:"Run mode: live, render or webcam."`
	Modules   []string          `placeholder:"NAME" help:"Effect modules to load; the first one is activated."`
	Effects   []string          `placeholder:"OP" help:"Explicit operations applied in order instead of automatic selection."`
	Video     string            `placeholder:"NAME" help:"Video asset to process, looked up in the configured videos directory."`
	Configure map[string]string `placeholder:"KEY=VALUE" help:"Update a configuration setting (e.g. --configure assets_video=assets/videos/)."`
	Init      bool              `help:"Write a default configuration file."`
	List      string            `placeholder:"WHAT" help:"List modules or effects."`
	Debug     bool              `help:"Draw the debug overlay on every frame."`
	Config    string            `short:"c" type:"path" default:"config.yaml" help:"Path to the YAML configuration file."`
	LogLevel  string            `default:"info" help:"Log level: debug, info, warn or error."`
	Seed      uint64            `help:"Seed for effect selection; 0 picks one from the clock."`
	Version   bool              `short:"v" help:"Show version information."`
}

func main() {
	cliArgs := &CLI{}
	ctx := kong.Parse(cliArgs,
		kong.Name(AppName),
		kong.Description("Adaptive psychedelic video effects driven by frame complexity"),
		kong.UsageOnError(),
		kong.Help(cli.StyledHelpPrinter(AppTitle, "Adaptive psychedelic video effects driven by frame complexity")),
	)

	if cliArgs.Version {
		fmt.Printf("%s %s\n", cli.TitleStyle.Render(AppTitle), cli.ValueStyle.Render(AppVersion))
		os.Exit(0)
	}

	level, err := logger.ParseLevel(cliArgs.LogLevel)
	if err != nil {
		cli.PrintError(err.Error())
		os.Exit(2)
	}
	log := logger.NewConsoleLogger(level)
	log.Debug("Main", "starting", map[string]interface{}{
		"version":    AppVersion,
		"go_version": runtime.Version(),
		"num_cpu":    runtime.NumCPU(),
	})

	app := &Application{args: cliArgs, console: cli.NewConsole(), log: log}
	if err := app.Run(context.Background()); err != nil {
		if errors.Is(err, errUsage) {
			ctx.PrintUsage(false)
		}
		app.console.Error("%v", err)
		os.Exit(1)
	}
}

var errUsage = errors.New("undefined argument")

// Application wires configuration, effects and the selected run mode.
type Application struct {
	args    *CLI
	console *cli.Console
	log     logger.Logger
	cfg     *config.Config
}

func (app *Application) Run(ctx context.Context) error {
	if app.args.Init {
		if _, err := config.Init(app.args.Config); err != nil {
			return err
		}
		app.console.Success("Created default configuration file: %s", app.args.Config)
		return nil
	}

	cfg, created, err := config.LoadOrInit(app.args.Config)
	if err != nil {
		return err
	}
	if created {
		app.console.Warn("Configuration file %s not found, wrote defaults", app.args.Config)
	}
	app.cfg = cfg

	if len(app.args.Configure) > 0 {
		return app.configure()
	}

	if app.args.List != "" {
		return app.list()
	}

	switch app.args.Mode {
	case "live", "webcam", "render":
		return app.runMode(ctx, app.args.Mode)
	case "":
		return fmt.Errorf("%w: choose --mode, --list, --configure or --init", errUsage)
	default:
		return fmt.Errorf("%w: unknown mode %q (live, render, webcam)", errUsage, app.args.Mode)
	}
}

func (app *Application) configure() error {
	for key, value := range app.args.Configure {
		if err := app.cfg.Set(key, value); err != nil {
			return err
		}
	}
	if err := app.cfg.Save(app.args.Config); err != nil {
		return err
	}
	app.console.Success("Configuration updated!")
	return nil
}
