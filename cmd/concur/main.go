package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aryankumar/concur/internal/cli"
	"github.com/aryankumar/concur/internal/util"
)

func main() {
	// First signal cancels running strategies, a second one exits unless
	// this process is a pool worker that still owes its response
	ctx := util.SetupSignalHandler(!cli.IsWorkerInvocation(os.Args[1:]))

	if err := cli.Execute(ctx); err != nil {
		slog.Error("command failed", "error", err)
		if hint := util.FriendlyError(err); hint != err.Error() {
			fmt.Fprintln(os.Stderr, hint)
		}
		os.Exit(1)
	}
}
