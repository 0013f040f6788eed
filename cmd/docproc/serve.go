package main

import (
	"github.com/spf13/cobra"

	"github.com/tsawler/docproc/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("addr") {
				a.cfg.Server.Addr = addr
			}
			return a.server().ListenAndServe(cmd.Context(), a.cfg.Server.Addr, server.Timeouts{
				Read:     a.cfg.Server.ReadTimeout,
				Write:    a.cfg.Server.WriteTimeout,
				Shutdown: a.cfg.Server.ShutdownTimeout,
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	return cmd
}

func newMCPCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the MCP tools on stdin and stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.server().ServeStdio(cmd.Context())
		},
	}
}
