package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/yurykabanov/s3duplicity-backup/internal/loggerfx"
)

func main() {
	logger := loggerfx.New(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, logger, os.Args[1:], streams{In: os.Stdin, Out: os.Stdout, Err: os.Stderr})
	stop()

	os.Exit(code)
}
