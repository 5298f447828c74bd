// CLI entry point for OrphaMine.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/turtacn/OrphaMine/internal/config"
	"github.com/turtacn/OrphaMine/internal/interfaces/cli"
	"github.com/turtacn/OrphaMine/pkg/errors"
)

// Build-time variables injected via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func init() {
	cli.Version = version
	cli.GitCommit = commit
	cli.BuildDate = buildDate
}

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(errors.ExitCode(err))
	}

	// The first interrupt cancels the run: the in-flight batch is dropped and
	// the dataset stays at its last committed chunk.  A second interrupt
	// falls through to the default handler and kills the process.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		stop()
	}()

	err := cli.Execute(ctx, nil)
	stop()
	os.Exit(errors.ExitCode(err))
}

//Personal.AI order the ending
