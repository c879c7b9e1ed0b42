package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"finlight/cashflow-analyzer/cmd/analyze"
	"finlight/cashflow-analyzer/cmd/root"
)

func init() {
	root.Cmd.AddCommand(analyze.Cmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.Cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
