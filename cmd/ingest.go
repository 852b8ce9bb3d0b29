package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/chartloom/chartloom/internal/agent"
	"github.com/chartloom/chartloom/internal/charts"
	"github.com/chartloom/chartloom/internal/dataset"
	"github.com/chartloom/chartloom/internal/profile"
	"github.com/spf13/cobra"
)

var (
	ingMessage     string
	ingOutputPath  string
	ingDelimiter   string
	ingMaxRows     int
	ingSheetName   string
	ingSheetIndex  int
	ingProfileOnly bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>",
	Short: "Analyze a CSV/XLSX file, consult the agent, and emit render-ready charts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset(args[0])
		if err != nil {
			return err
		}
		printDatasetWarnings(ds)

		prof := profile.Build(ds)
		sessionID := agent.NewSessionID()
		prompt := agent.BuildPrompt(ingMessage, prof)

		if ingProfileOnly {
			fmt.Println(prompt)
			return nil
		}

		if cfg == nil || cfg.AgentURL == "" {
			return fmt.Errorf("agent_url is not configured; run 'chartloom config set agent_url <url>' or use --profile-only")
		}
		client := agent.NewClient(
			cfg.AgentURL,
			cfg.AgentAPIKey,
			time.Duration(cfg.HTTPTimeoutSec)*time.Second,
			cfg.RetryMaxAttempts,
			time.Duration(cfg.RetryBaseDelayMs)*time.Millisecond,
			time.Duration(cfg.RetryMaxDelayMs)*time.Millisecond,
		)
		reply, err := client.Invoke(cmd.Context(), sessionID, prompt)
		if err != nil {
			return fmt.Errorf("invoke agent: %w", err)
		}
		if debug {
			fmt.Fprintf(os.Stderr, "agent reply (%d bytes, session %s)\n", len(reply), sessionID)
		}

		resp, err := charts.BuildResponse(reply, ds)
		if err != nil {
			return err
		}
		return emitResponse(resp)
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().StringVarP(&ingMessage, "message", "m", "", "context message sent to the agent alongside the profile")
	ingestCmd.Flags().StringVarP(&ingOutputPath, "output", "o", "", "optional path to write the chart response JSON")
	ingestCmd.Flags().StringVar(&ingDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab'")
	ingestCmd.Flags().IntVar(&ingMaxRows, "max-rows", 0, "maximum rows to load (0 = config default)")
	ingestCmd.Flags().StringVar(&ingSheetName, "sheet-name", "", "XLSX: sheet name to load")
	ingestCmd.Flags().IntVar(&ingSheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
	ingestCmd.Flags().BoolVar(&ingProfileOnly, "profile-only", false, "print the agent prompt (profile included) and exit without calling the agent")
}

// loadDataset reads the input file applying the shared loader flags.
func loadDataset(path string) (*dataset.Dataset, error) {
	opt := dataset.DefaultOptions()
	if cfg != nil && cfg.MaxRows > 0 {
		opt.MaxRows = cfg.MaxRows
	}
	if ingMaxRows > 0 {
		opt.MaxRows = ingMaxRows
	}
	switch ingDelimiter {
	case "":
	case ",":
		opt.Delimiter = ','
	case ";":
		opt.Delimiter = ';'
	case "\t", "tab":
		opt.Delimiter = '\t'
	default:
		return nil, fmt.Errorf("unsupported --delimiter: %s", ingDelimiter)
	}
	opt.SheetName = ingSheetName
	opt.SheetIndex = ingSheetIndex
	return dataset.Load(path, opt)
}

func printDatasetWarnings(ds *dataset.Dataset) {
	if !debug {
		return
	}
	for _, w := range ds.Warnings {
		fmt.Fprintf(os.Stderr, "⚠ %s\n", w)
	}
}

// emitResponse writes the chart response JSON to --output or stdout and
// reports skipped suggestions on stderr.
func emitResponse(resp *charts.Response) error {
	for _, r := range resp.Skipped {
		fmt.Fprintf(os.Stderr, "⚠ Skipped chart %q: %s\n", r.Title, r.Reason)
	}
	if debug {
		for _, w := range resp.Warnings {
			fmt.Fprintf(os.Stderr, "⚠ %s\n", w)
		}
	}
	b, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	if ingOutputPath != "" {
		if err := os.WriteFile(ingOutputPath, b, 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Printf("✓ Wrote %d chart(s) to %s\n", resp.TotalCharts, ingOutputPath)
		return nil
	}
	fmt.Println(string(b))
	return nil
}
