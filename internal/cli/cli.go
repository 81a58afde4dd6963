// Package cli implements the dynschema command: a line-oriented script
// interpreter over an entity registry, with optional replay of the resulting
// schema onto PostgreSQL.
package cli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/Konsultn-Engineering/dynschema/config"
	"github.com/Konsultn-Engineering/dynschema/connector"
	"github.com/Konsultn-Engineering/dynschema/dialect"
	"github.com/Konsultn-Engineering/dynschema/migrate"
	"github.com/Konsultn-Engineering/dynschema/schema"
)

const usage = `usage: dynschema [flags] [script ...]

Reads commands from the given script files, or stdin when none are given:

  register <type>
  add-field <type> <field> <default>
  add-relationship <one-to-many|many-to-many> <owner> <target> <name> [<backref>]
  create <type> [field=value ...]
  link <instanceA-id> <relationship> <instanceB-id>
  traverse <instance-id> <relationship-or-backref>
  ddl
  dump

Flags:
`

// Version is reported by -version.
var Version = "dev"

// Run executes the command and returns the process exit status.
func Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("dynschema", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}
	configPath := fs.String("config", "", "path to a YAML config file")
	apply := fs.Bool("apply", false, "apply the recorded schema operations to the configured database")
	dropExisting := fs.Bool("drop-existing", false, "with -apply, drop every recorded table before recreating it")
	withData := fs.Bool("with-data", false, "with -apply, also insert every instance and link after the schema")
	showVersion := fs.Bool("version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}
	if *showVersion {
		fmt.Fprintln(stdout, "dynschema", Version)
		return 0
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(stderr, "dynschema:", err)
		return 1
	}
	if *apply && cfg.Database == nil {
		fmt.Fprintln(stderr, "dynschema: -apply requires a database section in the config")
		return 1
	}

	zl, err := cfg.NewLogger()
	if err != nil {
		fmt.Fprintln(stderr, "dynschema: logger:", err)
		return 1
	}
	defer func() { _ = zl.Sync() }()
	logger := zl.Sugar()

	opts, err := cfg.RegistryOptions()
	if err != nil {
		fmt.Fprintln(stderr, "dynschema:", err)
		return 1
	}
	d := dialect.NewPostgresDialect()
	journal := migrate.NewJournal(d)
	reg := schema.New(append(opts, schema.WithLogger(logger), schema.WithListener(journal))...)
	sess := &session{reg: reg, journal: journal, dialect: d, out: stdout}

	if err := runScripts(sess, fs.Args(), stdin); err != nil {
		fmt.Fprintln(stderr, "dynschema:", err)
		return 1
	}

	if *apply {
		ops := journal.Ops()
		if *dropExisting {
			ops = append(migrate.DropTables(journal.Tables()), ops...)
		}
		if *withData {
			ops = append(ops, migrate.Rows(reg)...)
		}
		if err := applyOps(ctx, *cfg.Database, ops, logger); err != nil {
			fmt.Fprintln(stderr, "dynschema:", err)
			return 1
		}
	}
	return 0
}

func runScripts(sess *session, paths []string, stdin io.Reader) error {
	if len(paths) == 0 {
		return runScript(sess, "stdin", stdin)
	}
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		err = runScript(sess, path, f)
		_ = f.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

// runScript executes r line by line and stops at the first failing command.
// Blank lines and lines starting with # are skipped.
func runScript(sess *session, name string, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		tokens, err := tokenize(line)
		if err != nil {
			return fmt.Errorf("%s:%d: %w", name, lineNo, err)
		}
		if err := sess.exec(tokens); err != nil {
			return fmt.Errorf("%s:%d: %w", name, lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func applyOps(ctx context.Context, dbCfg connector.Config, ops []migrate.Op, logger *zap.SugaredLogger) error {
	conn, err := connector.Connect(ctx, dbCfg, logger)
	if err != nil {
		return err
	}
	defer conn.Close()

	return migrate.NewApplier(conn.Database(), conn.Dialect(), logger).Apply(ctx, ops)
}
