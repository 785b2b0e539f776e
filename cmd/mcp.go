package cmd

import (
	"github.com/spf13/cobra"

	"runanalyzer/internal/mcpserver"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve run analysis to AI assistants over MCP",
	Long: `Start a Model Context Protocol server on stdin/stdout. Assistants can list
recent runs and request analyses with the list_recent_runs, analyze_activity and
analyze_latest_run tools.

Logs go to the log file only, since stdout carries the protocol.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := setup(ctx, cmd, setupOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		return mcpserver.New(a.svc, version, a.logger).Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
