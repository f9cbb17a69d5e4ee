// Command invoicepdf renders, inspects and archives tax invoices from the
// command line.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func main() {
	_ = godotenv.Load()

	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "invoicepdf:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "invoicepdf",
		Usage: "render GST tax invoices",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "db-driver", Usage: "sqlite or postgres", EnvVars: []string{"DATABASE_DRIVER"}},
			&cli.StringFlag{Name: "dsn", Usage: "database DSN", EnvVars: []string{"DATABASE_DSN"}},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "log at debug level"},
		},
		Commands: []*cli.Command{
			renderCommand(),
			dumpCommand(),
			reprintCommand(),
			seedCommand(),
			hsnCommand(),
		},
	}
}
