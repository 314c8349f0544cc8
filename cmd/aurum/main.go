package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

const version = "0.1.0"

func main() {
	app := &cli.App{
		Name:    "aurum",
		Usage:   "chat preview server with per-visitor conversation state",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to folder with public.yaml and private.yaml",
				Value:   "config",
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			seedCommand(),
		},
		DefaultCommand: "serve",
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
