// Package export implements the "websg export" command.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/websg-dev/websg-go/internal/cmdutil"
	"github.com/websg-dev/websg-go/scene"
)

var flags = []cli.Flag{
	&cli.PathFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "load configuration from `FILE`",
		EnvVars: []string{"WEBSG_CONFIG"},
	},
	&cli.Uint64Flag{
		Name:    "ticks",
		Aliases: []string{"n"},
		Usage:   "run `N` updates before exporting",
	},
	&cli.BoolFlag{
		Name:  "binary",
		Usage: "write GLB instead of glTF JSON (implied by a .glb extension)",
	},
	&cli.PathFlag{
		Name:     "out",
		Aliases:  []string{"o"},
		Usage:    "write the scene to `FILE`",
		Required: true,
	},
}

func Command() *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "initialize a guest module and write its scene as glTF",
		ArgsUsage: "MODULE",
		Flags:     flags,
		Action:    export,
	}
}

func export(c *cli.Context) error {
	cfg, err := cmdutil.Config(c)
	if err != nil {
		return err
	}

	sess, err := cmdutil.Open(c.Context, cfg, c.Args().First())
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = sess.Close(closeCtx)
	}()

	if err := sess.Instance.Initialize(c.Context); err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	for i := uint64(0); i < cfg.Loop.MaxTicks; i++ {
		if err := sess.Instance.Update(c.Context); err != nil {
			return fmt.Errorf("update %d: %w", i+1, err)
		}
	}

	out := c.Path("out")
	binary := c.Bool("binary") || strings.EqualFold(filepath.Ext(out), ".glb")

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := scene.WriteGLTF(f, scene.ExportGLTF(sess.Graph()), binary); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", out, err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	sess.Logger.Info("scene exported",
		zap.String("path", out),
		zap.Bool("binary", binary),
		zap.Int("nodes", sess.Graph().Len()))
	return nil
}
