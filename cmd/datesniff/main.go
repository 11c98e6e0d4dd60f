// Command datesniff reports which text columns of tabular files and SQLite
// databases hold dates.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/nao1215/datesniff/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
