package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/chartloom/chartloom/internal/charts"
	"github.com/spf13/cobra"
)

var trReplyPath string

var transformCmd = &cobra.Command{
	Use:   "transform <file>",
	Short: "Run the chart pipeline offline from a saved agent reply",
	Long: `Transform applies a previously captured agent reply to a dataset without
calling the agent: recovery of the embedded JSON, validation of the suggested
charts, and execution of their filter/aggregate/sort parameters. Use '-' as
the reply path to read from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset(args[0])
		if err != nil {
			return err
		}
		printDatasetWarnings(ds)

		var raw []byte
		if trReplyPath == "-" {
			raw, err = io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("read stdin: %w", err)
			}
		} else {
			raw, err = os.ReadFile(trReplyPath)
			if err != nil {
				return fmt.Errorf("read reply: %w", err)
			}
		}

		resp, err := charts.BuildResponse(string(raw), ds)
		if err != nil {
			return err
		}
		if !resp.Recovered {
			fmt.Fprintln(os.Stderr, "⚠ Could not recover JSON from the reply; passing raw text through")
		} else if debug {
			fmt.Fprintf(os.Stderr, "recovered reply via strategy %q\n", resp.Strategy)
		}
		return emitResponse(resp)
	},
}

func init() {
	rootCmd.AddCommand(transformCmd)
	transformCmd.Flags().StringVar(&trReplyPath, "reply", "-", "path to the saved agent reply text ('-' for stdin)")
	transformCmd.Flags().StringVarP(&ingOutputPath, "output", "o", "", "optional path to write the chart response JSON")
	transformCmd.Flags().StringVar(&ingDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab'")
	transformCmd.Flags().IntVar(&ingMaxRows, "max-rows", 0, "maximum rows to load (0 = config default)")
	transformCmd.Flags().StringVar(&ingSheetName, "sheet-name", "", "XLSX: sheet name to load")
	transformCmd.Flags().IntVar(&ingSheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
}
