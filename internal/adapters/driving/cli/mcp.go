package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-voice/internal/adapters/driving/mcp"
)

var mcpPort int

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Model Context Protocol server",
	Long:  `Expose knowledge base retrieval and grounded answers to MCP clients.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the MCP server. By default it speaks over stdio; with --port it
serves the streamable HTTP transport instead.

Example client configuration:
  {
    "mcpServers": {
      "sercha-voice": {
        "command": "sercha-voice",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntVar(&mcpPort, "port", 0, "serve over HTTP on this port instead of stdio")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	b, err := getBackend()
	if err != nil {
		return err
	}
	settings, err := b.AppSettings()
	if err != nil {
		return err
	}

	newConversation, err := b.Conversations(cmd.Context(), false)
	if err != nil {
		return err
	}
	corpus, err := b.Corpus(cmd.Context(), false)
	if err != nil {
		return err
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Retrieval:    corpus,
		Conversation: newConversation(),
		TopK:         settings.Conversation.TopK,
	})
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	if mcpPort > 0 {
		return server.RunHTTP(cmd.Context(), fmt.Sprintf(":%d", mcpPort))
	}
	return server.Run(cmd.Context())
}
