// Package run implements the "websg run" command.
package run

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/thejerf/suture/v4"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/websg-dev/websg-go/host"
	"github.com/websg-dev/websg-go/infrastructure/httpapi"
	"github.com/websg-dev/websg-go/internal/cmdutil"
)

const stopTimeout = 5 * time.Second

var flags = []cli.Flag{
	&cli.PathFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "load configuration from `FILE`",
		EnvVars: []string{"WEBSG_CONFIG"},
	},
	&cli.Uint64Flag{
		Name:        "ticks",
		Aliases:     []string{"n"},
		Usage:       "stop after `N` updates",
		DefaultText: "unlimited",
	},
	&cli.DurationFlag{
		Name:        "tick-interval",
		Usage:       "time between updates",
		DefaultText: "16.666ms",
	},
	&cli.StringFlag{
		Name:        "inspect",
		Usage:       "serve the inspect API on `host:port`",
		EnvVars:     []string{"WEBSG_INSPECT"},
		DefaultText: "disabled",
	},
}

func Command() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "initialize a guest module and drive its update loop",
		ArgsUsage: "MODULE",
		Flags:     flags,
		Action:    run,
	}
}

func run(c *cli.Context) error {
	cfg, err := cmdutil.Config(c)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sess, err := cmdutil.Open(ctx, cfg, c.Args().First())
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
		defer cancel()
		if err := sess.Close(closeCtx); err != nil {
			sess.Logger.Warn("close session", zap.Error(err))
		}
	}()
	logger := sess.Logger

	if err := sess.Instance.Initialize(ctx); err != nil {
		return fmt.Errorf("initialize: %w", err)
	}

	sup := suture.New("websg", suture.Spec{
		EventHook: func(ev suture.Event) {
			logger.Warn("supervisor event", zap.String("event", ev.String()))
		},
	})

	var server *httpapi.Server
	if cfg.Inspect.Addr != "" {
		server = httpapi.NewServer(cfg.Inspect.Addr, sess.Graph(),
			httpapi.WithStats(sess.Executor.Stats()),
			httpapi.WithTicks(sess.Instance.Ticks),
			httpapi.WithLogger(logger.Named("inspect")),
		)
		sup.Add(server)
	}

	loop := host.NewLoop(sess.Instance,
		host.WithInterval(cfg.Loop.TickInterval),
		host.WithMaxTicks(cfg.Loop.MaxTicks),
		host.WithLoopLogger(logger.Named("loop")),
		host.WithOnTick(func(_ context.Context, tick uint64) {
			if server == nil {
				return
			}
			if err := server.Publish(tick); err != nil {
				logger.Warn("publish snapshot", zap.Error(err))
			}
		}),
	)
	sup.Add(loop)

	supCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	supErr := sup.ServeBackground(supCtx)

	supDone := false
	select {
	case <-loop.Done():
	case <-ctx.Done():
		logger.Info("interrupted")
	case err := <-supErr:
		supDone = true
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("supervisor: %w", err)
		}
	}
	cancel()
	if !supDone {
		if err := cmdutil.WaitStopped(supErr, stopTimeout); err != nil {
			logger.Warn("supervisor shutdown", zap.Error(err))
		}
	}

	logger.Info("stopped", zap.Uint64("ticks", sess.Instance.Ticks()))
	cmdutil.PrintScene(c.App.Writer, sess.Graph())
	return loop.Err()
}
