// Package schema implements the "websg schema" command.
package schema

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/websg-dev/websg-go/application/config"
	appschema "github.com/websg-dev/websg-go/application/schema"
)

const schemaID = "https://websg.dev/schemas/websg-config.json"

func Command() *cli.Command {
	return &cli.Command{
		Name:   "schema",
		Usage:  "print the configuration file JSON schema",
		Action: schema,
	}
}

func schema(c *cli.Context) error {
	data, err := appschema.GenerateSchema(config.Config{},
		appschema.WithID(schemaID),
		appschema.WithTitle("websg configuration", "Host configuration for websg run and export."),
	)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, string(data))
	return err
}
