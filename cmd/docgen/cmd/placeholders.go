package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var placeholdersJSON bool

var placeholdersCmd = &cobra.Command{
	Use:   "placeholders <template.docx>",
	Short: "List the placeholder tokens a template declares",
	Long: `List the placeholder tokens found in a DOCX template.

All five syntaxes are recognized: ${key}, {{key}}, {key}, [[key]] and
[key]. Tokens split across formatting runs are found too.

Examples:
  docgen placeholders mau-bao-cao.docx
  docgen placeholders mau-bao-cao.docx --json`,
	Args: cobra.ExactArgs(1),
	RunE: runPlaceholders,
}

func init() {
	rootCmd.AddCommand(placeholdersCmd)

	placeholdersCmd.Flags().BoolVar(&placeholdersJSON, "json", false, "Output as JSON")
}

func runPlaceholders(cmd *cobra.Command, args []string) error {
	f := newFiller()

	phs, err := f.ListPlaceholders(args[0])
	if err != nil {
		return err
	}

	if placeholdersJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(phs)
	}

	if len(phs) == 0 {
		fmt.Println("No placeholders found")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tTOKEN")
	fmt.Fprintln(tw, "---\t-----")
	for _, ph := range phs {
		fmt.Fprintf(tw, "%s\t%s\n", ph.Key, ph.Token)
	}
	return tw.Flush()
}
