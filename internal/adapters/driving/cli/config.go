package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var configSetList bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Read and write raw configuration keys",
	Long: `Reads and writes keys in the TOML configuration file, for example
chunker.size, indexer.concurrency or vector.pgvector_dsn.

Use 'rostrum settings' for guided provider setup.`,
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Long: `Sets a configuration value. Integers, decimals and true/false are stored
as such; anything else is stored as a string. Use --list to store a
comma-separated list.`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configSetSecretCmd = &cobra.Command{
	Use:   "set-secret [key]",
	Short: "Set a secret value without echoing it",
	Long: `Prompts for a value and stores it without showing it on screen. Use it
for API keys and connection strings that carry passwords.`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigSetSecret,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

func init() {
	configSetCmd.Flags().BoolVar(&configSetList, "list", false, "store the value as a comma-separated list")

	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configSetSecretCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	key := args[0]
	value, ok := configStore.Get(key)
	if !ok {
		return fmt.Errorf("%s is not set", key)
	}

	if s, isString := value.(string); isString && isSecretKey(key) {
		cmd.Println(maskAPIKey(s))
		return nil
	}
	cmd.Println(formatValue(value))
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	key, raw := args[0], args[1]
	var value any
	if configSetList {
		value = splitList(raw)
	} else {
		value = parseValue(raw)
	}

	if err := configStore.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	cmd.Printf("%s = %s\n", key, formatValue(value))
	return nil
}

func runConfigSetSecret(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	key := args[0]
	cmd.Printf("Enter value for %s: ", key)
	value := readPassword(bufio.NewReader(stdin))
	cmd.Println()
	if value == "" {
		return errors.New("no value given")
	}

	if err := configStore.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	cmd.Printf("%s saved.\n", key)
	return nil
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}
	cmd.Println(configStore.Path())
	return nil
}

func parseValue(raw string) any {
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(raw); err == nil && (raw == "true" || raw == "false") {
		return b
	}
	return raw
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func formatValue(v any) string {
	switch val := v.(type) {
	case []string:
		return strings.Join(val, ",")
	case []any:
		parts := make([]string, len(val))
		for i, p := range val {
			parts[i] = fmt.Sprint(p)
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(v)
	}
}

func isSecretKey(key string) bool {
	k := strings.ToLower(key)
	return strings.HasSuffix(k, "api_key") || strings.Contains(k, "secret") ||
		strings.Contains(k, "password") || strings.Contains(k, "token")
}
