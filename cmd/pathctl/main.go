// pathctl reads, writes and checks binary path files.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"

	"github.com/spf13/pflag"

	"github.com/danmuck/pathctl/internal/config"
	"github.com/danmuck/pathctl/internal/logging"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// errFailed reports a failure whose details were already printed.
var errFailed = errors.New("one or more files failed")

type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// env is what every subcommand runs against.
type env struct {
	cfg        config.Config
	configPath string
	stdout     io.Writer
	stderr     io.Writer
}

type command struct {
	summary string
	run     func(ctx context.Context, e *env, args []string) error
}

var commands = map[string]command{
	"decode":  {"dump a path file as yaml or cbor", runDecode},
	"encode":  {"build a path file from a yaml or cbor document", runEncode},
	"inspect": {"report paths, waypoints and sizes per file", runInspect},
	"verify":  {"check files survive a decode/encode round trip", runVerify},
	"config":  {"write or validate pathctl.toml", runConfig},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	flags := pflag.NewFlagSet("pathctl", pflag.ContinueOnError)
	flags.SetInterspersed(false)
	flags.SetOutput(stderr)
	configPath := flags.String("config", "", "path to pathctl.toml (defaults apply when unset)")
	logLevel := flags.String("log-level", "", "trace|debug|info|warn|error|off")
	flags.Usage = func() { printUsage(stderr, flags) }

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	rest := flags.Args()
	if len(rest) == 0 {
		printUsage(stderr, flags)
		return exitUsage
	}
	cmd, ok := commands[rest[0]]
	if !ok {
		fmt.Fprintf(stderr, "pathctl: unknown command %q\n", rest[0])
		printUsage(stderr, flags)
		return exitUsage
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(stderr, "pathctl: %v\n", err)
			return exitFailure
		}
		cfg = loaded
	}
	if err := setupLogging(cfg, *logLevel, stderr); err != nil {
		fmt.Fprintf(stderr, "pathctl: %v\n", err)
		return exitUsage
	}

	e := &env{cfg: cfg, configPath: *configPath, stdout: stdout, stderr: stderr}
	return exitCode(cmd.run(ctx, e, rest[1:]), stderr)
}

// setupLogging layers the config file level, then PATHCTL_LOG_* env vars,
// then --log-level over the runtime profile.
func setupLogging(cfg config.Config, flagLevel string, out io.Writer) error {
	lc := logging.DefaultConfig(logging.ProfileRuntime)
	lc.Out = out
	if lvl, ok := logging.ParseLevel(cfg.LogLevel); ok {
		lc.Level = lvl
	}
	logging.ApplyEnvOverrides(&lc)
	if flagLevel != "" {
		lvl, ok := logging.ParseLevel(flagLevel)
		if !ok {
			return fmt.Errorf("unknown --log-level %q", flagLevel)
		}
		lc.Level = lvl
	}
	logging.Setup(lc)
	return nil
}

func exitCode(err error, stderr io.Writer) int {
	var usage *usageError
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, pflag.ErrHelp):
		return exitOK
	case errors.As(err, &usage):
		fmt.Fprintf(stderr, "pathctl: %v\n", err)
		return exitUsage
	case errors.Is(err, errFailed):
		return exitFailure
	default:
		fmt.Fprintf(stderr, "pathctl: %v\n", err)
		return exitFailure
	}
}

func printUsage(w io.Writer, flags *pflag.FlagSet) {
	fmt.Fprintln(w, "Usage: pathctl [--config FILE] [--log-level LEVEL] <command> [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-8s %s\n", name, commands[name].summary)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprint(w, flags.FlagUsages())
}

// subFlags returns a flag set for one subcommand that reports errors
// through run instead of exiting.
func subFlags(e *env, name string) *pflag.FlagSet {
	flags := pflag.NewFlagSet("pathctl "+name, pflag.ContinueOnError)
	flags.SetOutput(e.stderr)
	return flags
}

// parseSub parses args, mapping flag errors to usage errors.
func parseSub(flags *pflag.FlagSet, args []string) error {
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return err
		}
		return &usageError{msg: err.Error()}
	}
	return nil
}
