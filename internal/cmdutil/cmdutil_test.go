package cmdutil_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/websg-dev/websg-go/application/config"
	sdkerrors "github.com/websg-dev/websg-go/domain/errors"
	"github.com/websg-dev/websg-go/internal/cmdutil"
	"github.com/websg-dev/websg-go/internal/wasmtest"
	"github.com/websg-dev/websg-go/scene"
)

// runApp runs a single "cmd" subcommand with the websg flag set and returns
// what action produced.
func runApp(t *testing.T, args []string, action func(*cli.Context) error) error {
	t.Helper()
	app := &cli.App{
		Name: "websg",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "log-level"},
			&cli.StringFlag{Name: "log-format"},
		},
		Commands: []*cli.Command{{
			Name: "cmd",
			Flags: []cli.Flag{
				&cli.PathFlag{Name: "config"},
				&cli.Uint64Flag{Name: "ticks"},
				&cli.DurationFlag{Name: "tick-interval"},
				&cli.StringFlag{Name: "inspect"},
			},
			Action: action,
		}},
	}
	return app.Run(append([]string{"websg"}, args...))
}

func TestConfig_Defaults(t *testing.T) {
	var got config.Config
	err := runApp(t, []string{"cmd"}, func(c *cli.Context) error {
		var err error
		got, err = cmdutil.Config(c)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, config.Default(), got)
}

func TestConfig_FlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "websg.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log:
  level: warn
loop:
  max_ticks: 5
runtime:
  max_nodes: 10
`), 0o600))

	var got config.Config
	err := runApp(t, []string{
		"--log-level", "debug", "--log-format", "json",
		"cmd", "--config", path, "--ticks", "3", "--tick-interval", "5ms", "--inspect", "127.0.0.1:8080",
	}, func(c *cli.Context) error {
		var err error
		got, err = cmdutil.Config(c)
		return err
	})
	require.NoError(t, err)

	assert.Equal(t, "debug", got.Log.Level)
	assert.Equal(t, "json", got.Log.Format)
	assert.Equal(t, uint64(3), got.Loop.MaxTicks)
	assert.Equal(t, 5*time.Millisecond, got.Loop.TickInterval)
	assert.Equal(t, "127.0.0.1:8080", got.Inspect.Addr)
	assert.Equal(t, 10, got.Runtime.MaxNodes)
}

func TestConfig_InvalidFlag(t *testing.T) {
	err := runApp(t, []string{"--log-level", "loud", "cmd"}, func(c *cli.Context) error {
		_, err := cmdutil.Config(c)
		return err
	})

	var cfgErr *sdkerrors.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "log.level", cfgErr.Field)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()
	cfg.Log.Level = "error"

	t.Run("missing argument", func(t *testing.T) {
		_, err := cmdutil.Open(ctx, cfg, "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing MODULE")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := cmdutil.Open(ctx, cfg, filepath.Join(t.TempDir(), "nope.wasm"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "read module")
	})

	t.Run("loads and initializes", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "guest.wasm")
		require.NoError(t, os.WriteFile(path, wasmtest.Guest(), 0o600))

		sess, err := cmdutil.Open(ctx, cfg, path)
		require.NoError(t, err)
		defer func() { assert.NoError(t, sess.Close(ctx)) }()

		require.NoError(t, sess.Instance.Initialize(ctx))
		assert.Equal(t, 1, sess.Graph().Len())
	})

	t.Run("rejects layout version", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "guest.wasm")
		require.NoError(t, os.WriteFile(path, wasmtest.Guest(wasmtest.WithLayoutVersion(2)), 0o600))

		_, err := cmdutil.Open(ctx, cfg, path)
		var lv *sdkerrors.LayoutVersionError
		require.ErrorAs(t, err, &lv)
	})
}

func TestPrintScene(t *testing.T) {
	g := scene.NewGraph()
	root, err := g.Create()
	require.NoError(t, err)
	child, err := g.Create()
	require.NoError(t, err)
	require.NoError(t, g.AddChild(root.ID, child.ID))
	child.Name = "camera"
	child.Position = mgl32.Vec3{0, 1.6, 0}
	require.NoError(t, g.Update(child))

	var buf bytes.Buffer
	cmdutil.PrintScene(&buf, g)

	assert.Equal(t, "scene: 2 node(s)\n"+
		"#1 - position=(0, 0, 0)\n"+
		"  #2 camera position=(0, 1.6, 0)\n", buf.String())
}

func TestWaitStopped(t *testing.T) {
	t.Run("cancelled", func(t *testing.T) {
		ch := make(chan error, 1)
		ch <- context.Canceled
		assert.NoError(t, cmdutil.WaitStopped(ch, time.Second))
	})

	t.Run("failure", func(t *testing.T) {
		boom := errors.New("boom")
		ch := make(chan error, 1)
		ch <- boom
		assert.ErrorIs(t, cmdutil.WaitStopped(ch, time.Second), boom)
	})

	t.Run("waits for late result", func(t *testing.T) {
		ch := make(chan error)
		go func() {
			time.Sleep(20 * time.Millisecond)
			ch <- context.Canceled
		}()
		assert.NoError(t, cmdutil.WaitStopped(ch, 5*time.Second))
	})

	t.Run("timeout", func(t *testing.T) {
		ch := make(chan error)
		assert.ErrorIs(t, cmdutil.WaitStopped(ch, 10*time.Millisecond), cmdutil.ErrStopTimeout)
	})
}
