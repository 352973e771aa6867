// Command coffeectl manages the objects kept by a coffee repository in a
// SQLite database, as described by a YAML configuration file.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	flag "github.com/spf13/pflag"

	"github.com/ciscoruiz/coffee-sub002"
	"github.com/ciscoruiz/coffee-sub002/config"
	"github.com/ciscoruiz/coffee-sub002/persistence"
)

// Exit codes.
const (
	ExitOK       = 0
	ExitFailure  = 1
	ExitUsage    = 2
	ExitConfig   = 3
	ExitNotFound = 4
	ExitDatabase = 5
)

type command struct {
	summary string
	run     func(a *app, args []string, out io.Writer) error
}

var commands = map[string]command{
	"migrate": {"create or update the schema of every storage", runMigrate},
	"get":     {"print one object", runGet},
	"put":     {"create or update one object", runPut},
	"delete":  {"erase one object", runDelete},
	"list":    {"print the keys of a storage", runList},
	"stats":   {"print schema version, rows and cache settings", runStats},
}

// errUsage reports a command line mistake; the command has printed its usage.
var errUsage = errors.New("usage")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("coffeectl", flag.ContinueOnError)
	fs.SetInterspersed(false)
	fs.SetOutput(stderr)
	configPath := fs.StringP("config", "c", "coffee.yaml", "configuration file")
	verbose := fs.BoolP("verbose", "v", false, "log at debug level")
	fs.Usage = func() { usage(stderr, fs) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitOK
		}
		return ExitUsage
	}
	if fs.NArg() == 0 {
		usage(stderr, fs)
		return ExitUsage
	}
	name := fs.Arg(0)
	cmd, found := commands[name]
	if !found {
		fmt.Fprintf(stderr, "Error: unknown command %q\n\n", name)
		usage(stderr, fs)
		return ExitUsage
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitConfig
	}
	logger, err := newLogger(stderr, cfg, *verbose)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitConfig
	}

	a, err := openApp(cfg, logger)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCode(err)
	}
	defer a.Close()

	if err := cmd.run(a, fs.Args()[1:], stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitOK
		}
		if errors.Is(err, errUsage) {
			return ExitUsage
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCode(err)
	}
	return ExitOK
}

func usage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintf(w, `Usage: coffeectl [options] <command> [arguments]

Commands:
`)
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-8s  %s\n", name, commands[name].summary)
	}
	fmt.Fprintf(w, "\nOptions:\n%s\nRun 'coffeectl <command> --help' for the arguments of a command.\n", fs.FlagUsages())
}

func newLogger(w io.Writer, cfg *config.Config, verbose bool) (*slog.Logger, error) {
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, coffee.ErrConfiguration):
		return ExitConfig
	case errors.Is(err, coffee.ErrInvalidData):
		return ExitUsage
	case errors.Is(err, persistence.ErrObjectNotFound), errors.Is(err, persistence.ErrStorageNotFound):
		return ExitNotFound
	case errors.Is(err, coffee.ErrGuardMisuse):
		return ExitFailure
	}
	return ExitDatabase
}
