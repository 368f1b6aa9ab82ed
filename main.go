package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-colorable"

	"github.com/ytget/ytdown/internal/cli"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	cli.Version = version
	code := cli.Execute(ctx, os.Args[1:], colorable.NewColorableStdout(), colorable.NewColorableStderr())

	stop()
	os.Exit(code)
}
