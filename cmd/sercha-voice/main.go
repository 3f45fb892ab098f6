// Command sercha-voice answers questions from a plain-text knowledge base.
package main

import (
	"context"
	"os"

	"github.com/custodia-labs/sercha-voice/internal/adapters/driving/cli"
	"github.com/custodia-labs/sercha-voice/internal/bootstrap"
)

var _ cli.Backend = (*bootstrap.Container)(nil)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli.SetVersion(version)
	cli.SetBackendFactory(func(opts cli.BackendOptions) (cli.Backend, error) {
		return bootstrap.New(bootstrap.Options{
			ConfigPath: opts.ConfigPath,
			SkipPing:   opts.SkipPing,
		})
	})

	if err := cli.Execute(context.Background()); err != nil {
		os.Exit(1)
	}
}
