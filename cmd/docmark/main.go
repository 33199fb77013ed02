package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"docmark/config"
	"docmark/edit"
	"docmark/misc"
	"docmark/serve"
	"docmark/state"
)

// initializeAppContext prepares application context before command execution but
// after command line has been parsed
func initializeAppContext(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	var err error

	if cmd.NArg() == 0 {
		// nothing to do, just return
		return ctx, nil
	}

	env := state.FromContext(ctx)

	configFile := cmd.String("config")
	if env.Cfg, err = config.LoadConfiguration(configFile); err != nil {
		return ctx, fmt.Errorf("unable to prepare configuration: %w", err)
	}
	if cmd.Bool("debug") {
		if env.Rpt, err = env.Cfg.Reporting.Prepare(); err != nil {
			return ctx, fmt.Errorf("unable to prepare debug reporter: %w", err)
		}
		// save complete processed configuration if external configuration was provided
		if len(configFile) > 0 {
			// secrets are masked by config.Dump
			if data, err := config.Dump(env.Cfg); err == nil {
				env.Rpt.StoreData(fmt.Sprintf("config/%s", filepath.Base(configFile)), data)
			}
		}
	}
	if env.Log, err = env.Cfg.Logging.Prepare(env.Rpt); err != nil {
		return ctx, fmt.Errorf("unable to prepare logs: %w", err)
	}
	env.RedirectStdLog()

	env.Log.Debug("Program started", zap.Strings("args", os.Args), zap.String("ver", misc.GetVersion()), zap.String("runtime", runtime.Version()), zap.String("hash", misc.GetGitHash()))

	if env.Rpt != nil {
		env.Log.Info("Creating debug report", zap.String("location", env.Rpt.Name()))
	}
	if len(configFile) == 0 && env.Log != nil {
		env.Log.Info("Using defaults (no configuration file)")
	}
	return ctx, nil
}

func destroyAppContext(ctx context.Context, cmd *cli.Command) (err error) {
	env := state.FromContext(ctx)

	if env.Log != nil {
		env.Log.Debug("Program ended", zap.Duration("elapsed", env.Uptime()), zap.Strings("parsed args", cmd.Args().Slice()))
	}

	env.RestoreStdLog()

	// log is synced now and could be put in the report, errors must go to
	// stderr directly from now on
	if env.Rpt != nil {
		if er := env.Rpt.Close(); er != nil {
			err = multierr.Append(err, fmt.Errorf("unable to close debug report: %w", er))
		}
	}
	// remove empty panic file if any
	if env.Cfg != nil && len(env.Cfg.Logging.FileLogger.Destination) > 0 {
		debug.SetCrashOutput(nil, debug.CrashOptions{})
		fname := filepath.Join(filepath.Dir(env.Cfg.Logging.FileLogger.Destination), misc.GetAppName()+"-panic.log")
		if fi, er := os.Stat(fname); er == nil && fi.Size() == 0 {
			if er := os.Remove(fname); er != nil {
				err = multierr.Append(err, fmt.Errorf("unable to remove empty panic log file '%s': %w", fname, er))
			}
		}
	}
	return
}

// Subcommands return regular errors, cli.Exit is not used.
var errWasHandled bool

// called before application context is destroyed, so error could be logged
func exitErrHandler(ctx context.Context, _ *cli.Command, err error) {
	env := state.FromContext(ctx)

	if env.Log != nil {
		env.Log.Error("Program ended with error", zap.Error(err))
		errWasHandled = true
	}
}

func usageErrorHandler(_ context.Context, _ *cli.Command, err error, _ bool) error {
	// error is reported either by exitErrHandler or on exit directly to stderr
	return err
}

func subcommandNotFoundHandler(ctx context.Context, _ *cli.Command, name string) {
	state.FromContext(ctx).Log.Warn("Unknown command, nothing to do", zap.String("command", name))
}

const destinationHelp = `
SOURCE:
    path to docx file to process

DESTINATION:
    path to resulting file or to existing directory to put file with SOURCE name in
    if absent - current working directory
    SOURCE is never modified, result is written only when all changes succeeded
`

// flags keep parsing state, every command needs its own
func markerFlag() cli.Flag {
	return &cli.StringFlag{Name: "marker", Aliases: []string{"m"}, Usage: "marker (bookmark) `NAME`"}
}

func main() {

	// serve runs until interrupted, edits are abandoned on interrupt
	ctx, stop := signal.NotifyContext(state.NewContext(context.Background()), os.Interrupt, syscall.SIGTERM)

	app := &cli.Command{
		Name:            misc.GetAppName(),
		Usage:           "edits bookmarked regions of Word (docx) documents",
		Version:         misc.GetVersion() + " (" + runtime.Version() + ") : " + misc.GetGitHash(),
		HideHelpCommand: true,
		Before:          initializeAppContext,
		After:           destroyAppContext,
		OnUsageError:    usageErrorHandler,
		ExitErrHandler:  exitErrHandler,
		CommandNotFound: subcommandNotFoundHandler,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, DefaultText: "", Usage: "load configuration from `FILE` (YAML)"},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "changes program behavior to help troubleshooting, produces report archive"},
		},
		Commands: []*cli.Command{
			{
				Name:         "insert",
				Usage:        "Inserts new empty marker before existing one, covering the same number of paragraphs",
				OnUsageError: usageErrorHandler,
				Action:       edit.Insert,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "before", Aliases: []string{"b"}, Usage: "existing marker `NAME`"},
					&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "new marker `NAME`"},
				},
				ArgsUsage:          "SOURCE [DESTINATION]",
				CustomHelpTemplate: cli.CommandHelpTemplate + destinationHelp,
			},
			{
				Name:         "copy",
				Usage:        "Replaces content of one marker with content of another",
				OnUsageError: usageErrorHandler,
				Action:       edit.Copy,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "from", Aliases: []string{"f"}, Usage: "source marker `NAME`"},
					&cli.StringFlag{Name: "to", Aliases: []string{"t"}, Usage: "destination marker `NAME`"},
					&cli.BoolFlag{Name: "keep-numerals", Aliases: []string{"kn"}, Usage: "do not drop leading \"N. \" from copied content"},
				},
				ArgsUsage:          "SOURCE [DESTINATION]",
				CustomHelpTemplate: cli.CommandHelpTemplate + destinationHelp,
			},
			{
				Name:         "replicate",
				Usage:        "Inserts copies of marker before it, each copy is a new marker",
				OnUsageError: usageErrorHandler,
				Action:       edit.Replicate,
				Flags: []cli.Flag{
					markerFlag(),
					&cli.IntFlag{Name: "count", Aliases: []string{"n"}, Value: 1, Usage: "number of copies"},
				},
				ArgsUsage:          "SOURCE [DESTINATION]",
				CustomHelpTemplate: cli.CommandHelpTemplate + destinationHelp,
			},
			{
				Name:         "show",
				Usage:        "Prints marker position, span, numbering and content",
				OnUsageError: usageErrorHandler,
				Action:       edit.Show,
				Flags:        []cli.Flag{markerFlag()},
				ArgsUsage:    "SOURCE",
			},
			{
				Name:         "list",
				Usage:        "Lists all markers of the document",
				OnUsageError: usageErrorHandler,
				Action:       edit.List,
				ArgsUsage:    "SOURCE",
			},
			{
				Name:         "compare",
				Usage:        "Checks if paragraphs of two markers are formatted the same way",
				OnUsageError: usageErrorHandler,
				Action:       edit.Compare,
				ArgsUsage:    "SOURCE MARKER MARKER",
			},
			{
				Name:         "dump",
				Usage:        "Prints document structure as seen by the program",
				OnUsageError: usageErrorHandler,
				Action:       edit.Dump,
				ArgsUsage:    "SOURCE",
			},
			{
				Name:         "sample",
				Usage:        "Creates small document with markers to experiment with",
				OnUsageError: usageErrorHandler,
				Action:       edit.MakeSample,
				ArgsUsage:    "[DESTINATION]",
			},
			{
				Name:         "serve",
				Usage:        "Serves read-only marker inspection of documents in a directory over HTTP",
				OnUsageError: usageErrorHandler,
				Action:       serve.Run,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "listen", Aliases: []string{"l"}, Usage: "`ADDRESS` to listen on, overrides configuration"},
				},
				ArgsUsage: "[DIRECTORY]",
				CustomHelpTemplate: fmt.Sprintf(`%s
DIRECTORY:
    directory with documents to serve, overrides configuration

ROUTES:
    GET /documents/{file}/markers
    GET /documents/{file}/markers/{name}
`, cli.CommandHelpTemplate),
			},
			{
				Name:  "dumpconfig",
				Usage: "Dumps either default or actual configuration (YAML)",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "default", Usage: "output default embedded configuration"},
				},
				OnUsageError: usageErrorHandler,
				Action:       outputConfiguration,
				ArgsUsage:    "DESTINATION",
				CustomHelpTemplate: fmt.Sprintf(`%s

DESTINATION:
    file name to write configuration to, if absent - STDOUT

Produces file with actual "active" configuration values which is composition of
default values and values specified in configuration file. To see default
configuration embedded into the program use --default flag.
`, cli.CommandHelpTemplate),
			},
		},
	}

	var err error
	// NOTE: os.Exit is called at the end of main to set exit code, make sure
	// there are no other deferred functions after that
	defer func() {
		stop()
		if err != nil {
			// log is either not set yet or already closed
			if !errWasHandled {
				fmt.Fprintf(os.Stderr, "Program ended with error: %v\n", err)
			}
			os.Exit(1)
		}
	}()
	err = app.Run(ctx, os.Args)
}

func outputConfiguration(ctx context.Context, cmd *cli.Command) error {

	env := state.FromContext(ctx)
	if cmd.Args().Len() > 1 {
		env.Log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	fname := cmd.Args().Get(0)

	var (
		err   error
		data  []byte
		state string
	)

	out := os.Stdout
	if len(fname) > 0 {
		out, err = os.Create(fname)
		if err != nil {
			return fmt.Errorf("unable to create destination file '%s': %w", fname, err)
		}
		defer out.Close()
	}

	if cmd.Bool("default") {
		state = "default"
		data, err = config.Prepare()
	} else {
		state = "actual"
		data, err = config.Dump(env.Cfg)
	}
	if err != nil {
		return fmt.Errorf("unable to get configuration: %w", err)
	}

	if len(fname) == 0 {
		fname = "STDOUT"
	}
	env.Log.Info("Outputting configuration", zap.String("state", state), zap.String("file", fname))

	if _, err = out.Write(data); err != nil {
		return fmt.Errorf("unable to write configuration: %w", err)
	}
	return nil
}
