package cmd

import (
	"errors"
	"fmt"

	"github.com/KaramelBytes/fraudlens-cli/internal/analysis"
	"github.com/KaramelBytes/fraudlens-cli/internal/dataset"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Check the two input tables for missing columns and row alignment",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		in, err := loadInputs(ctx, cmd)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		tx, an := in.Transactions, in.Anomalies

		fmt.Fprintf(w, "Transactions: %s (%d rows)\n", inTransactions, tx.Len())
		for _, f := range dataset.TransactionFields {
			fmt.Fprintf(w, "  %s %s\n", mark(tx.Has(f)), f)
		}
		fmt.Fprintf(w, "Anomalies: %s (%d rows, %d flagged)\n", inAnomalies, an.Len(), an.Flagged())
		for _, f := range dataset.AnomalyFields {
			fmt.Fprintf(w, "  %s %s\n", mark(an.Has(f)), f)
		}

		if err := analysis.Align(tx, an); err != nil {
			var lm *analysis.LengthMismatchError
			if errors.As(err, &lm) && lm.Misaligned {
				fmt.Fprintf(w, "✗ Row identifiers disagree at row %d\n", lm.Row)
			}
			return err
		}
		mode := "by position"
		if tx.HasIDs() && an.HasIDs() {
			mode = "by position, identifiers verified"
		}
		fmt.Fprintf(w, "✓ Tables aligned (%s)\n", mode)
		return nil
	},
}

func mark(ok bool) string {
	if ok {
		return "✓"
	}
	return "⚠"
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	addInputFlags(inspectCmd)
}
