package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, args ...string) (*CLI, *kong.Context) {
	t.Helper()
	var cli CLI
	parser, err := kong.New(&cli, kong.BindTo(context.Background(), (*context.Context)(nil)))
	require.NoError(t, err)
	kctx, err := parser.Parse(args)
	require.NoError(t, err)
	return &cli, kctx
}

func TestParse(t *testing.T) {
	cli, kctx := parse(t, "build", "--drafts", "--debug")
	require.Equal(t, "build", kctx.Command())
	require.True(t, cli.Build.Drafts)
	require.True(t, cli.Build.Debug)
	require.Equal(t, "blogsmith.yaml", filepath.Base(cli.Config))

	cli, kctx = parse(t, "serve")
	require.Equal(t, "serve", kctx.Command())
	require.Equal(t, 3000, cli.Serve.Port)

	cli, kctx = parse(t, "-c", "other.yaml", "deploy", "--dry-run")
	require.Equal(t, "deploy", kctx.Command())
	require.True(t, cli.Deploy.DryRun)
	require.Equal(t, "other.yaml", filepath.Base(cli.Config))
}

func TestParse_DefaultsToBuild(t *testing.T) {
	_, kctx := parse(t)
	require.Equal(t, "build", kctx.Command())
}

func TestParse_ConfigFromEnv(t *testing.T) {
	t.Setenv("BLOGSMITH_CONFIG", "/etc/blog.yaml")
	cli, _ := parse(t, "lint")
	require.Equal(t, "/etc/blog.yaml", cli.Config)
}

func TestLoad_MissingConfig(t *testing.T) {
	cli := &CLI{Config: filepath.Join(t.TempDir(), "nope.yaml")}
	_, err := cli.load()
	require.ErrorIs(t, err, os.ErrNotExist)
}
