package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	appErrors "cpv/internal/errors"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var code int
	cmd, err := newRootCmd(stdout, stderr, &code)
	if err != nil {
		exitWithError(stderr, err)
		return appErrors.ExitCode(err)
	}
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		exitWithError(stderr, err)
		return appErrors.ExitCode(err)
	}
	return code
}

func exitWithError(w io.Writer, err error) {
	fmt.Fprintln(w, appErrors.UserMessage(err))
}
