package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/KaramelBytes/fraudlens-cli/internal/analysis"
	"github.com/KaramelBytes/fraudlens-cli/internal/report"
	"github.com/spf13/cobra"
)

var (
	sumFormat     string
	sumTopRegions int
	sumCorr       bool
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print summary statistics of the detected anomalies",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		top := settings().TopRegions
		if cmd.Flags().Changed("top-regions") {
			if sumTopRegions <= 0 {
				return fmt.Errorf("--top-regions must be > 0")
			}
			top = sumTopRegions
		}
		format := strings.ToLower(strings.TrimSpace(sumFormat))
		if format != "text" && format != "markdown" && format != "md" {
			return fmt.Errorf("unsupported --format: %s (use text|markdown)", sumFormat)
		}

		in, err := loadInputs(ctx, cmd)
		if err != nil {
			return err
		}
		opt := report.Options{TopRegions: top}
		if sumCorr {
			opt.CorrFields = analysis.DefaultCorrelationFields
		}
		rep, err := report.Build(inTransactions+" + "+inAnomalies, in.Transactions, in.Anomalies, opt)
		if err != nil {
			return err
		}
		if format == "text" {
			return rep.WriteText(cmd.OutOrStdout())
		}
		_, err = io.WriteString(cmd.OutOrStdout(), rep.Markdown())
		return err
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)
	addInputFlags(summaryCmd)
	summaryCmd.Flags().StringVar(&sumFormat, "format", "text", "output format: text|markdown")
	summaryCmd.Flags().IntVar(&sumTopRegions, "top-regions", 0, "number of regions listed (overrides config top_regions)")
	summaryCmd.Flags().BoolVar(&sumCorr, "corr", false, "include feature correlations (markdown only)")
}
