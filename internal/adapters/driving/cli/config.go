package cli

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-voice/internal/core/domain"
)

var configJSON bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View and change configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show stored configuration values",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Example: `  sercha-voice config set llm.provider openai
  sercha-voice config set conversation.top_k 5`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file location",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List settable keys",
	Args:  cobra.NoArgs,
	RunE:  runConfigKeys,
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate settings and ping the AI providers",
	Args:  cobra.NoArgs,
	RunE:  runConfigCheck,
}

func init() {
	configShowCmd.Flags().BoolVar(&configJSON, "json", false, "output as JSON")
	configCmd.AddCommand(configShowCmd, configSetCmd, configPathCmd, configKeysCmd, configCheckCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	b, err := getBackend()
	if err != nil {
		return err
	}
	values := b.Settings().Values()

	if configJSON {
		data, err := json.MarshalIndent(values, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(values) == 0 {
		cmd.Println("No configuration set. Defaults apply.")
		return nil
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		cmd.Printf("%s = %v\n", k, values[k])
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	b, err := getBackend()
	if err != nil {
		return err
	}
	if err := b.Settings().Set(args[0], args[1]); err != nil {
		return err
	}
	cmd.Printf("Set %s\n", args[0])
	return nil
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	b, err := getBackend()
	if err != nil {
		return err
	}
	cmd.Println(b.Settings().ConfigPath())
	return nil
}

func runConfigKeys(cmd *cobra.Command, _ []string) error {
	b, err := getBackend()
	if err != nil {
		return err
	}
	for _, k := range b.Settings().Keys() {
		cmd.Println(k)
	}
	return nil
}

func runConfigCheck(cmd *cobra.Command, _ []string) error {
	b, err := getBackend()
	if err != nil {
		return err
	}
	settings, err := b.AppSettings()
	if err != nil {
		return err
	}

	cmd.Printf("Knowledge base: %s\n", describeKnowledgeBase(settings.KnowledgeBase))
	cmd.Printf("Embedding:      %s (%s)\n", settings.Embedding.Provider.Description(), settings.Embedding.Model)
	cmd.Printf("Generation:     %s (%s)\n", settings.LLM.Provider.Description(), settings.LLM.Model)

	if err := b.CheckProviders(cmd.Context()); err != nil {
		return fmt.Errorf("provider check failed: %w", err)
	}
	cmd.Println("All providers reachable.")
	return nil
}

func describeKnowledgeBase(kb domain.KnowledgeBaseSettings) string {
	if kb.Kind == domain.KnowledgeBaseGitHub {
		name := kb.GitHub.Owner + "/" + kb.GitHub.Repo
		if kb.GitHub.Prefix != "" {
			name += "/" + kb.GitHub.Prefix
		}
		return "github " + name
	}
	return "directory " + kb.Path
}
