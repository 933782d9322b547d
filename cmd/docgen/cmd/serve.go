package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rezonia/docgen/internal/server"
)

var (
	serverAddr   string
	serverDebug  bool
	readTimeout  time.Duration
	writeTimeout time.Duration
	fillTimeout  time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP API server for filling document templates.

The API provides endpoints for:
  - POST /api/v1/fill              - Fill an uploaded template
  - POST /api/v1/placeholders      - List an uploaded template's tokens
  - GET  /api/v1/documents/:name   - Download a generated document
  - GET  /health                   - Health check

Examples:
  # Start server on default port
  docgen serve

  # Start on custom port with LLM assistance
  docgen serve --address :8080 --api-key <key>

  # Start in debug mode
  docgen serve --debug`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverAddr, "address", ":8080", "Server listen address")
	serveCmd.Flags().BoolVar(&serverDebug, "debug", false, "Enable debug mode")
	serveCmd.Flags().DurationVar(&readTimeout, "read-timeout", 30*time.Second, "HTTP read timeout")
	serveCmd.Flags().DurationVar(&writeTimeout, "write-timeout", 5*time.Minute, "HTTP write timeout")
	serveCmd.Flags().DurationVar(&fillTimeout, "fill-timeout", 2*time.Minute, "Per-request fill timeout")
}

func runServe(cmd *cobra.Command, args []string) error {
	config := &server.Config{
		Address:      serverAddr,
		APIKey:       apiKey,
		LLMBaseURL:   llmBaseURL,
		LLMModel:     llmModel,
		StorageRoot:  storageRoot,
		PublicPrefix: publicPrefix,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		FillTimeout:  fillTimeout,
		Debug:        serverDebug,
	}

	srv := server.NewServer(config)

	// Handle graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		fmt.Println("\nShutting down server...")
		os.Exit(0)
	}()

	fmt.Printf("Starting server on %s\n", serverAddr)
	if apiKey != "" {
		fmt.Println("LLM assistance enabled")
	} else {
		fmt.Println("LLM assistance disabled (no API key)")
	}

	return srv.Run()
}
