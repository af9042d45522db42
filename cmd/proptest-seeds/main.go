package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/shipq/proptest/cli"
)

const usage = `proptest-seeds - Inspect and share persisted property test failures

Usage:
  proptest-seeds [--json] <command> [arguments]

Commands:
  list <file>                   Print the seeds stored in a persistence file
  check <file>                  Report malformed lines (exit 1 if any)
  export <file> <db-url> <test> Copy a file's seeds into a database
  import <db-url> <test> <file> Append a database's seeds to a file
  watch <file>                  Print seeds as test runs record them
  init [dir]                    Write a starter proptest.ini

Database URLs:
  sqlite:///path/to/seeds.db
  postgres://user@host:5432/dbname
  mysql://user@host:3306/dbname

Options:
  --json        Print records as JSON
  -h, --help    Show this help message
`

func main() {
	args := os.Args[1:]
	app := &app{out: cli.Std()}
	if len(args) > 0 && args[0] == "--json" {
		app.json = true
		args = args[1:]
	}

	if len(args) < 1 {
		fmt.Print(usage)
		os.Exit(0)
	}

	cmd, rest := args[0], args[1:]
	var err error

	switch cmd {
	case "-h", "--help", "help":
		fmt.Print(usage)
		os.Exit(0)

	case "list":
		requireArgs(cmd, rest, 1, "<file>")
		err = app.list(rest[0])

	case "check":
		requireArgs(cmd, rest, 1, "<file>")
		err = app.check(rest[0])

	case "export":
		requireArgs(cmd, rest, 3, "<file> <db-url> <test>")
		err = withInterrupt(func(ctx context.Context) error {
			return app.export(ctx, rest[0], rest[1], rest[2])
		})

	case "import":
		requireArgs(cmd, rest, 3, "<db-url> <test> <file>")
		err = withInterrupt(func(ctx context.Context) error {
			return app.importSeeds(ctx, rest[0], rest[1], rest[2])
		})

	case "watch":
		requireArgs(cmd, rest, 1, "<file>")
		err = withInterrupt(func(ctx context.Context) error {
			return app.watch(ctx, rest[0])
		})

	case "init":
		dir := "."
		if len(rest) > 0 {
			dir = rest[0]
		}
		err = app.init(dir)

	default:
		fmt.Fprintf(os.Stderr, "error: unknown command: %s\n", cmd)
		fmt.Fprintln(os.Stderr, "Run 'proptest-seeds --help' for usage.")
		os.Exit(1)
	}

	if err != nil {
		cli.FatalErr(cmd+" failed", err)
	}
}

func requireArgs(cmd string, args []string, n int, form string) {
	if len(args) < n {
		fmt.Fprintf(os.Stderr, "error: 'proptest-seeds %s' requires %s\n", cmd, form)
		fmt.Fprintln(os.Stderr, "Run 'proptest-seeds --help' for usage.")
		os.Exit(1)
	}
}

// withInterrupt runs fn with a context that is cancelled on Ctrl-C.
func withInterrupt(fn func(ctx context.Context) error) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return fn(ctx)
}
