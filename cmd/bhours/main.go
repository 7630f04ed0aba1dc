package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"businesshours/cmd/commands"
	logx "businesshours/pkg/logx"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := commands.NewRootCommand().Run(ctx, os.Args); err != nil {
		logx.NewConsole("info").Error("fatal", logx.Err(err))
		os.Exit(1)
	}
}
