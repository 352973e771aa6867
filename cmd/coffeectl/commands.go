package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	flag "github.com/spf13/pflag"

	"github.com/ciscoruiz/coffee-sub002"
	"github.com/ciscoruiz/coffee-sub002/persistence"
)

// newFlagSet returns a flag set for a command. Its usage goes to stderr.
func newFlagSet(name, synopsis, description string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: coffeectl %s %s\n\nDescription:\n  %s\n", name, synopsis, description)
		if fs.HasFlags() {
			fmt.Fprintf(os.Stderr, "\nOptions:\n%s", fs.FlagUsages())
		}
		fmt.Fprintln(os.Stderr)
	}
	return fs
}

// parseFlags reports any mistake other than a help request as errUsage; pflag
// has already printed it.
func parseFlags(fs *flag.FlagSet, args []string) error {
	err := fs.Parse(args)
	if err == nil || errors.Is(err, flag.ErrHelp) {
		return err
	}
	return errUsage
}

// storageArgs splits "<storage> <key...>".
func storageArgs(fs *flag.FlagSet) (string, []string, error) {
	if fs.NArg() < 1 {
		fs.Usage()
		return "", nil, errUsage
	}
	return fs.Arg(0), fs.Args()[1:], nil
}

func runMigrate(a *app, args []string, out io.Writer) error {
	fs := newFlagSet("migrate", "[options]", "Create or drop the tables of the configured storages.")
	to := fs.Int("to", -1, "target schema version (default: latest)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	m := a.migrator()
	version := *to
	if version < 0 {
		version = m.Len()
	}
	if err := m.MigrateToVersion(a.driver.DB(), version); err != nil {
		return err
	}
	fmt.Fprintf(out, "schema version %d\n", version)
	return nil
}

func runGet(a *app, args []string, out io.Writer) error {
	fs := newFlagSet("get", "<storage> <key...>", "Print the members of one object.")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	name, key, err := storageArgs(fs)
	if err != nil {
		return err
	}
	storage, table, err := a.storage(name)
	if err != nil {
		return err
	}
	loader, err := table.Loader()
	if err != nil {
		return err
	}
	if err := parseKey(loader.PrimaryKey(), key); err != nil {
		return err
	}
	obj, err := storage.Load(a.conn, loader)
	if err != nil {
		return err
	}
	printObject(out, obj)
	return nil
}

func runPut(a *app, args []string, out io.Writer) error {
	fs := newFlagSet("put", "<storage> <key...> [options]", "Create an object, or change the members of an existing one.")
	sets := fs.StringArrayP("set", "s", nil, "member=value to assign, repeatable")
	unsets := fs.StringArray("null", nil, "member to set null, repeatable")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	name, key, err := storageArgs(fs)
	if err != nil {
		return err
	}
	storage, table, err := a.storage(name)
	if err != nil {
		return err
	}
	loader, err := table.Loader()
	if err != nil {
		return err
	}
	if err := parseKey(loader.PrimaryKey(), key); err != nil {
		return err
	}

	var obj *persistence.Object
	current, err := storage.Load(a.conn, loader)
	switch {
	case err == nil:
		obj = current.Clone()
	case isNotFound(err):
		if obj, err = table.Class().NewObject(loader.PrimaryKey()); err != nil {
			return err
		}
	default:
		return err
	}

	for _, assignment := range *sets {
		member, value, ok := strings.Cut(assignment, "=")
		if !ok {
			return coffee.InvalidDataError("--set %q is not member=value", assignment)
		}
		cell, err := obj.Member(member)
		if err != nil {
			return err
		}
		if err := parseCell(cell, value); err != nil {
			return err
		}
	}
	for _, member := range *unsets {
		cell, err := obj.Member(member)
		if err != nil {
			return err
		}
		if err := cell.SetNull(true); err != nil {
			return err
		}
	}

	recorder, err := table.Recorder()
	if err != nil {
		return err
	}
	if err := recorder.SetObject(obj); err != nil {
		return err
	}
	if err := storage.Save(a.conn, recorder); err != nil {
		return err
	}
	printObject(out, obj)
	return nil
}

func runDelete(a *app, args []string, out io.Writer) error {
	fs := newFlagSet("delete", "<storage> <key...>", "Erase one object.")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	name, key, err := storageArgs(fs)
	if err != nil {
		return err
	}
	storage, table, err := a.storage(name)
	if err != nil {
		return err
	}
	eraser, err := table.Eraser()
	if err != nil {
		return err
	}
	if err := parseKey(eraser.PrimaryKey(), key); err != nil {
		return err
	}
	if err := storage.Erase(a.conn, eraser); err != nil {
		return err
	}
	fmt.Fprintf(out, "deleted %s %s\n", name, formatKey(eraser.PrimaryKey()))
	return nil
}

func runList(a *app, args []string, out io.Writer) error {
	fs := newFlagSet("list", "<storage> [options]", "Print the keys of a storage in key order.")
	offset := fs.Int("offset", 0, "keys to skip")
	limit := fs.Int("limit", 0, "maximum keys to print, 0 for all")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	name, rest, err := storageArgs(fs)
	if err != nil {
		return err
	}
	if len(rest) > 0 {
		fs.Usage()
		return errUsage
	}
	_, table, err := a.storage(name)
	if err != nil {
		return err
	}
	keys, err := table.ListKeys(a.conn, *offset, *limit)
	if err != nil {
		return err
	}
	for _, pk := range keys {
		fmt.Fprintln(out, formatKey(pk))
	}
	return nil
}

func runStats(a *app, args []string, out io.Writer) error {
	fs := newFlagSet("stats", "", "Print the schema version and, per storage, its rows and cache settings.")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	version, err := a.migrator().Version(a.driver.DB())
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "database %s, schema version %d\n\n", a.db.Name(), version)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STORAGE\tTABLE\tROWS\tCACHE\tHITS\tFAULTS\tEVICTIONS")
	for _, name := range a.repo.Storages() {
		storage, table, err := a.storage(name)
		if err != nil {
			return err
		}
		rows := "-"
		if version > 0 {
			keys, err := table.ListKeys(a.conn, 0, 0)
			if err != nil {
				return err
			}
			rows = fmt.Sprint(len(keys))
		}
		c := storage.Counters()
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d/%d\t%d\t%d\t%d\n",
			name, table.Name(), rows, storage.Size(), storage.MaxCacheSize(), c.Hits, c.Faults, c.Evictions)
	}
	return tw.Flush()
}

func printObject(out io.Writer, obj *persistence.Object) {
	tw := tabwriter.NewWriter(out, 0, 4, 1, ' ', 0)
	for _, c := range obj.PrimaryKey().Components() {
		fmt.Fprintf(tw, "%s:\t%s\n", c.Name(), formatCell(c))
	}
	for _, m := range obj.Members() {
		fmt.Fprintf(tw, "%s:\t%s\n", m.Name(), formatCell(m))
	}
	tw.Flush()
}

func isNotFound(err error) bool {
	return errors.Is(err, persistence.ErrObjectNotFound)
}
