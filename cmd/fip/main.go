// Command fip is the thin front end over the core interpreter: it maps
// `run`, `format`, and `lint` onto the core's EvaluateFile and AnalyzeFile
// entry points and adds nothing of its own to FIP's semantics.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/fippli/fip/internal/devserver"
	"github.com/fippli/fip/internal/diagnostics"
	"github.com/fippli/fip/internal/watch"
	"github.com/fippli/fip/pkg/format"
	"github.com/fippli/fip/pkg/interp"
	"github.com/fippli/fip/pkg/parser"
)

func main() {
	app := &cli.App{
		Name:                 "fip",
		Usage:                "run, format, and lint FIP programs",
		EnableBashCompletion: true,
		Commands: []*cli.Command{
			runCommand,
			formatCommand,
			lintCommand,
			serveCommand,
			docsCommand,
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(usageExitCode(err))
	}
}

// usageExitCode maps a top-level app error to the CLI convention: an error
// raised via cli.Exit keeps the code it carries (1 for runtime, lint and I/O
// failures, 2 for a missing <path.fip>); any other error maps to 2.
func usageExitCode(err error) int {
	if ec, ok := err.(cli.ExitCoder); ok {
		return ec.ExitCode()
	}
	return 2
}

var runCommand = &cli.Command{
	Name:      "run",
	Usage:     "evaluate a .fip file",
	ArgsUsage: "<path.fip>",
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "watch", Usage: "re-run on save (fsnotify)"},
	},
	Action: func(c *cli.Context) error {
		path := c.Args().First()
		if path == "" {
			return cli.Exit("fip run: missing <path.fip>", 2)
		}
		if c.Bool("watch") {
			return watch.Run(path, func() {
				runOnce(path)
			})
		}
		return runOnce(path)
	},
}

// runOnce evaluates path once and reports its outcome via the exit-code
// convention (0 success, 1 runtime error); it never itself calls os.Exit so
// --watch can call it repeatedly in the same process.
func runOnce(path string) error {
	v, err := interp.EvaluateFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return cli.Exit("", 1)
	}
	if v != nil {
		fmt.Println(v.Render())
	}
	return nil
}

var formatCommand = &cli.Command{
	Name:      "format",
	Usage:     "reformat a .fip file",
	ArgsUsage: "<path.fip>",
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "write", Aliases: []string{"w"}, Usage: "rewrite the file in place"},
	},
	Action: func(c *cli.Context) error {
		path := c.Args().First()
		if path == "" {
			return cli.Exit("fip format: missing <path.fip>", 2)
		}
		src, err := os.ReadFile(path)
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}
		p, err := parser.New()
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}
		prog, err := p.ParseBytes(path, src)
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}
		out := format.Format(prog)
		if c.Bool("write") {
			return os.WriteFile(path, []byte(out), 0o644)
		}
		fmt.Print(out)
		return nil
	},
}

var lintCommand = &cli.Command{
	Name:      "lint",
	Usage:     "run the purity/predicate suffix check over every function in a file",
	ArgsUsage: "<path.fip>",
	Action: func(c *cli.Context) error {
		path := c.Args().First()
		if path == "" {
			return cli.Exit("fip lint: missing <path.fip>", 2)
		}
		errs := interp.AnalyzeFile(path)
		for _, err := range errs {
			ie, ok := err.(*interp.Error)
			if !ok {
				fmt.Fprintln(os.Stderr, err)
				continue
			}
			d := diagnostics.Diagnostic{Pos: ie.Pos, Severity: diagnostics.Error, Message: fmt.Sprintf("%s: %s", ie.Kind, ie.Msg)}
			fmt.Println(d.String())
		}
		if len(errs) > 0 {
			return cli.Exit("", 1)
		}
		return nil
	},
}

var serveCommand = &cli.Command{
	Name:  "serve",
	Usage: "run the demo HTTP/websocket test server over a directory of .fip files",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "addr", Value: ":4170", Usage: "listen address"},
		&cli.StringFlag{Name: "dir", Value: ".", Usage: "directory of .fip files to serve"},
	},
	Action: func(c *cli.Context) error {
		srv := devserver.New(c.String("dir"))
		return srv.ListenAndServe(c.String("addr"))
	},
}

var docsCommand = &cli.Command{
	Name:  "docs",
	Usage: "documentation generators",
	Subcommands: []*cli.Command{
		{
			Name:  "man",
			Usage: "render the CLI's help text as a man page",
			Action: func(c *cli.Context) error {
				man, err := c.App.ToMan()
				if err != nil {
					return cli.Exit(err.Error(), 1)
				}
				fmt.Print(man)
				return nil
			},
		},
	},
}
