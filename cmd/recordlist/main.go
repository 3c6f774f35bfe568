// Command recordlist browses, lists, creates and serves a paginated record collection.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rshade/recordlist/internal/cli"
	"github.com/rshade/recordlist/internal/config"
	"github.com/rshade/recordlist/pkg/version"
)

// Exit codes.
const (
	exitOK          = 0
	exitError       = 1
	exitConfigError = 2
)

func run(ctx context.Context, args []string) error {
	root := cli.NewRootCmd(version.GetVersion())
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// exitCode maps a command error to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, config.ErrInvalidConfig):
		return exitConfigError
	default:
		return exitError
	}
}

func main() {
	err := run(context.Background(), os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(exitCode(err))
}
