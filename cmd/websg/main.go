// Command websg runs WebSG guest modules on a host scene graph.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/websg-dev/websg-go/cmd/websg/export"
	"github.com/websg-dev/websg-go/cmd/websg/run"
	"github.com/websg-dev/websg-go/cmd/websg/schema"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var flags = []cli.Flag{
	&cli.StringFlag{
		Name:        "log-level",
		Usage:       "set logging `level` to debug, info, warn or error",
		EnvVars:     []string{"WEBSG_LOG_LEVEL"},
		DefaultText: "info",
	},
	&cli.StringFlag{
		Name:        "log-format",
		Usage:       "`format` logs as console or json",
		EnvVars:     []string{"WEBSG_LOG_FORMAT"},
		DefaultText: "console",
	},
}

var commands = []*cli.Command{
	run.Command(),
	export.Command(),
	schema.Command(),
}

func main() {
	app := &cli.App{
		Name:                 "websg",
		Usage:                "run WebSG scene scripts",
		UsageText:            "websg [global options] command [command options] [arguments...]",
		Version:              version,
		EnableBashCompletion: true,
		Flags:                flags,
		Commands:             commands,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "websg:", err)
		os.Exit(1)
	}
}
