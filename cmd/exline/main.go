package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/doeshing/exline/internal/infrastructure/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	opts := cli.Options{Verbose: isVerbose()}

	root, container := cli.NewRootCmd(opts)
	err := root.ExecuteContext(ctx)
	if cerr := container.Close(); err == nil {
		err = cerr
	}
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func isVerbose() bool {
	return strings.EqualFold(os.Getenv("EXLINE_DEBUG"), "1") || strings.EqualFold(os.Getenv("EXLINE_DEBUG"), "true")
}
