package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/recall-labs/recall-cli/internal/adapters/driving/mcp"
)

var mcpPort int

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Model Context Protocol integration",
	Long:  `Expose the ask pipeline and the corpus to MCP hosts.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server",
	Long: `Serve the corpus to MCP clients.

Without flags the server speaks JSON-RPC on stdin/stdout, the transport
MCP hosts such as Claude Desktop expect. Pass --port to listen on HTTP
instead, which suits the MCP Inspector and access from other machines.

Examples:
  recall mcp serve              stdio transport
  recall mcp serve --port 8080  HTTP transport on port 8080

A Claude Desktop entry for the stdio transport looks like:
  {
    "mcpServers": {
      "recall": {
        "command": "/path/to/recall",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntVarP(&mcpPort, "port", "p", 0, "serve over HTTP on this port instead of stdio")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	if err := ensureAskServices(cmd.Context()); err != nil {
		return err
	}
	if err := ensureCorpusStore(); err != nil {
		return err
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Ask:    askService,
		Corpus: corpusStore,
	})
	if err != nil {
		return err
	}

	if mcpPort > 0 {
		addr := fmt.Sprintf(":%d", mcpPort)
		fmt.Fprintf(cmd.OutOrStdout(), "Serving MCP over HTTP on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}
	return server.Run(cmd.Context())
}
