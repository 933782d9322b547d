package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "1.0.0"

	// Global flags
	verbose      bool
	apiKey       string
	llmBaseURL   string
	llmModel     string
	storageRoot  string
	publicPrefix string
)

var rootCmd = &cobra.Command{
	Use:   "docgen",
	Short: "Fill Vietnamese administrative document templates (DOCX)",
	Long: `Docgen fills DOCX templates for Vietnamese administrative documents.

It extracts placeholder tokens from a template, maps collected data onto
them, and writes a generated copy. Templates without placeholders are
handled too: an LLM can synthesize placeholders from the document text, or
a heuristic pass fills well-known labels and dotted blanks directly.

Examples:
  # List the placeholders a template declares
  docgen placeholders mau-bao-cao.docx

  # Fill a template from a JSON data file
  docgen fill mau-bao-cao.docx --data data.json -o bao-cao.docx

  # Fill with LLM assistance for templates without placeholders
  docgen fill mau-trong.docx --data data.json --api-key <openrouter-key>

  # Start the HTTP API
  docgen serve --address :8080`,
	Version: version,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "API key for LLM provider (env: LLM_API_KEY)")
	rootCmd.PersistentFlags().StringVar(&llmBaseURL, "llm-base-url", "", "LLM API base URL (env: LLM_BASE_URL)")
	rootCmd.PersistentFlags().StringVar(&llmModel, "llm-model", "", "LLM model for classification and content (env: LLM_MODEL)")
	rootCmd.PersistentFlags().StringVar(&storageRoot, "storage-root", "", "Root directory for templates and generated files (env: DOCGEN_STORAGE_ROOT)")
	rootCmd.PersistentFlags().StringVar(&publicPrefix, "public-prefix", "", "URL prefix reported for generated files (env: DOCGEN_PUBLIC_PREFIX)")

	// Load from environment variables if not set via flags
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	if apiKey == "" {
		apiKey = os.Getenv("LLM_API_KEY")
	}
	if llmBaseURL == "" {
		llmBaseURL = os.Getenv("LLM_BASE_URL")
	}
	if llmModel == "" {
		llmModel = os.Getenv("LLM_MODEL")
	}
	if storageRoot == "" {
		storageRoot = os.Getenv("DOCGEN_STORAGE_ROOT")
	}
	if storageRoot == "" {
		storageRoot = "."
	}
	if publicPrefix == "" {
		publicPrefix = os.Getenv("DOCGEN_PUBLIC_PREFIX")
	}
}

func printVerbose(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}
