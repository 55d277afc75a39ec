package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"jobalert/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := cli.NewRootCommand().ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "jobalert:", err)
	}
	stop()
	os.Exit(cli.GetExitCode(err))
}
