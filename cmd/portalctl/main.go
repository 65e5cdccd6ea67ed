package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	_ "modernc.org/sqlite"

	"athleteportal/internal/cli"
	"athleteportal/internal/style"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", style.ErrorPrefix, err)
		stop()
		os.Exit(1)
	}
}
