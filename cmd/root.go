package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the escribano application
var rootCmd = &cobra.Command{
	Use:   "escribano",
	Short: "MCP server for a notarial office voice assistant",
	Long: `escribano is the Model Context Protocol (MCP) backend for a notarial
office assistant. It saves dictated documents as versioned Google Docs in
per-user Drive folders and answers questions from the office calendar.

It can run over stdio for desktop AI clients or as a streamable HTTP
server behind Google OAuth.`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "escribano version %s\n" .Version}}`)

	// If no subcommand is provided, run the serve command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
}
