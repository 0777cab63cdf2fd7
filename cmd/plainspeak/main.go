// Command plainspeak serves and runs communication style translations.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/helixml/plainspeak/internal/config"
)

// Set via -ldflags "-X main.version=... -X main.commit=... -X main.date=...".
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := rootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "plainspeak:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "plainspeak",
		Short: "Rewrite phrases between neurotypical and neurodivergent communication styles",
		Long: `Plainspeak rewrites everyday social phrases into plain, literal language
and back, optionally explaining the implied meaning.

Run "plainspeak serve" for the HTTP API, "plainspeak stdio" for an MCP server
on stdin/stdout, or "plainspeak translate" for a one-off translation.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate(versionLine() + "\n")

	root.AddCommand(serveCmd(), stdioCmd(), translateCmd(), versionCmd())
	return root
}

func loadConfig(envFile string) (config.AppConfig, error) {
	cfg, err := config.LoadConfig(envFile)
	if err != nil {
		return config.AppConfig{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
