package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rezonia/docgen/internal/filler"
	"github.com/rezonia/docgen/internal/llm"
	"github.com/rezonia/docgen/internal/model"
	"github.com/rezonia/docgen/internal/storage"
)

var (
	dataFile   string
	outputFile string
	timeout    time.Duration
)

var fillCmd = &cobra.Command{
	Use:   "fill <template.docx>",
	Short: "Fill a document template with collected data",
	Long: `Fill a DOCX template and write a generated copy.

The fill flow:
  1. Extract placeholder tokens (${key}, {{key}}, {key}, [[key]], [key])
  2. Map the data fields onto the tokens (exact, loose, bilingual, fuzzy)
  3. Substitute, preferring the formatting-preserving pass
  4. Templates without placeholders fall back to LLM synthesis or the
     heuristic label/dots pass

A document is always produced; fields that could not be resolved are
reported as warnings.

Examples:
  docgen fill mau-bao-cao.docx --data data.json
  docgen fill mau-bao-cao.docx --data data.json -o bao-cao-2026.docx
  docgen fill mau-trong.docx --data data.json --api-key <key>`,
	Args: cobra.ExactArgs(1),
	RunE: runFill,
}

func init() {
	rootCmd.AddCommand(fillCmd)

	fillCmd.Flags().StringVarP(&dataFile, "data", "d", "", "JSON file with collected data (field: value)")
	fillCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: generated under the storage root)")
	fillCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "Fill timeout")
}

func runFill(cmd *cobra.Command, args []string) error {
	data, err := loadData(dataFile)
	if err != nil {
		return err
	}
	printVerbose("Loaded %d data fields\n", len(data))

	f := newFiller()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	result, err := f.Fill(ctx, args[0], data)
	if err != nil {
		return err
	}

	outPath := result.OutputPath
	if outputFile != "" {
		if err := moveFile(result.OutputPath, outputFile); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		outPath = outputFile
	}

	fmt.Printf("Generated: %s\n", outPath)
	fmt.Printf("Method: %s, replaced: %d, failed: %d, skipped: %d\n",
		result.Method, result.Replaced, result.Failed, result.Skipped)
	for _, w := range result.Warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}

	return nil
}

func newFiller() *filler.Filler {
	var storeOpts []storage.Option
	if publicPrefix != "" {
		storeOpts = append(storeOpts, storage.WithPublicPrefix(publicPrefix))
	}
	store := storage.New(storageRoot, storeOpts...)

	var opts []filler.Option
	if apiKey != "" {
		var clientOpts []llm.ClientOption
		if llmBaseURL != "" {
			clientOpts = append(clientOpts, llm.WithBaseURL(llmBaseURL))
		}
		if llmModel != "" {
			clientOpts = append(clientOpts, llm.WithDefaultModel(llmModel))
		}
		opts = append(opts, filler.WithCompleter(llm.NewClient(apiKey, clientOpts...)))
		printVerbose("LLM assistance enabled (model: %s)\n", llmModel)
	}

	return filler.New(store, opts...)
}

func loadData(path string) (model.CollectedData, error) {
	data := model.CollectedData{}
	if path == "" {
		return data, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read data file: %w", err)
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("invalid data file %s: %w", path, err)
	}
	return data, nil
}

// moveFile renames when possible and copies across filesystems.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}
