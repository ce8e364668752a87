package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/ironsheep/image-preprocess-mcp/internal/server"
)

func newServeCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve MCP over stdin/stdout (default)",
		Long: `Start the Model Context Protocol server. Requests are read from stdin, one
JSON-RPC message per line, and responses are written to stdout.

MCP client configuration:
  {
    "mcpServers": {
      "image-preprocess": {
        "command": "/path/to/image-preprocess",
        "args": ["serve"]
      }
    }
  }`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, flags)
		},
	}
}

func runServe(cmd *cobra.Command, flags *rootFlags) error {
	a, err := newApp(cmd, flags)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	if a.apps != nil && a.cfg.Apps.Watch {
		go func() {
			if err := a.apps.Watch(ctx); err != nil {
				a.log.Warn("application directory watch stopped", "dir", a.apps.Dir(), "err", err)
			}
		}()
	}

	a.log.Info("serving MCP on stdio", "version", Version, "commit", GitCommit)
	srvCfg := server.Config{
		Registry: a.registry,
		Cache:    a.cache,
		Log:      a.log,
		Version:  Version,
	}
	// Assigning a nil *DirRegistry would yield a non-nil interface.
	if a.apps != nil {
		srvCfg.Apps = a.apps
	}
	srv := server.New(srvCfg)
	err = srv.Serve(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
