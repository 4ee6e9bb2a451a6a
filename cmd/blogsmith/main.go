package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

var loadDotEnv = godotenv.Load

func main() {
	// A missing .env is fine.
	_ = loadDotEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("blogsmith"),
		kong.Description("Build, check, serve and deploy the blog."),
		kong.UsageOnError(),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)
	err := kctx.Run(&cli)
	stop()
	kctx.FatalIfErrorf(err)
}
