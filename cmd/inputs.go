package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/KaramelBytes/fraudlens-cli/internal/dataset"
	"github.com/KaramelBytes/fraudlens-cli/internal/logger"
	"github.com/KaramelBytes/fraudlens-cli/internal/render"
	"github.com/spf13/cobra"
)

var (
	inTransactions string
	inAnomalies    string
	inDelimiter    string
	inSheet        string
	inDecimal      string
	inThousands    string
)

// addInputFlags registers the flags naming the two input tables.
func addInputFlags(c *cobra.Command) {
	c.Flags().StringVarP(&inTransactions, "transactions", "t", "", "transaction table (.csv, .tsv, .xlsx, .parquet)")
	c.Flags().StringVarP(&inAnomalies, "anomalies", "a", "", "anomaly results table (.csv, .tsv, .xlsx, .parquet)")
	c.Flags().StringVar(&inDelimiter, "delimiter", "", "CSV delimiter: ',', ';', 'tab' (auto if empty)")
	c.Flags().StringVar(&inSheet, "sheet", "", "XLSX sheet name or 1-based index (default first sheet)")
	c.Flags().StringVar(&inDecimal, "decimal", "", "decimal separator: '.' or 'comma' (auto if empty)")
	c.Flags().StringVar(&inThousands, "thousands", "", "thousands separator: ',', '.', 'space'")
	_ = c.MarkFlagRequired("transactions")
	_ = c.MarkFlagRequired("anomalies")
}

func inputOptions(cmd *cobra.Command) (dataset.Options, error) {
	opt := dataset.DefaultOptions()
	delim := settings().Delimiter
	if cmd.Flags().Changed("delimiter") {
		delim = inDelimiter
	}
	switch delim {
	case "":
	case ",":
		opt.Delimiter = ','
	case "\t", "tab":
		opt.Delimiter = '\t'
	case ";":
		opt.Delimiter = ';'
	case "|":
		opt.Delimiter = '|'
	default:
		return opt, fmt.Errorf("unsupported --delimiter: %s", delim)
	}
	switch strings.ToLower(strings.TrimSpace(inDecimal)) {
	case ",", "comma":
		opt.DecimalSeparator = ','
	case ".", "dot":
		opt.DecimalSeparator = '.'
	case "":
	default:
		return opt, fmt.Errorf("unsupported --decimal: %s (use '.'|'comma')", inDecimal)
	}
	switch strings.ToLower(strings.TrimSpace(inThousands)) {
	case ",":
		opt.ThousandsSeparator = ','
	case ".":
		opt.ThousandsSeparator = '.'
	case "space", " ":
		opt.ThousandsSeparator = ' '
	case "":
	default:
		return opt, fmt.Errorf("unsupported --thousands: %s (use ','|'.'|'space')", inThousands)
	}
	sheet := settings().Sheet
	if cmd.Flags().Changed("sheet") {
		sheet = inSheet
	}
	if sheet != "" {
		if idx, err := strconv.Atoi(sheet); err == nil && idx > 0 {
			opt.SheetIndex = idx
		} else {
			opt.SheetName = sheet
		}
	}
	return opt, nil
}

// loadInputs reads both tables named by the input flags.
func loadInputs(ctx context.Context, cmd *cobra.Command) (render.Input, error) {
	log := logger.FromContext(ctx)
	opt, err := inputOptions(cmd)
	if err != nil {
		return render.Input{}, err
	}
	tx, err := dataset.LoadTransactions(inTransactions, opt)
	if err != nil {
		return render.Input{}, fmt.Errorf("load transactions: %w", err)
	}
	log.Debug().Str("path", inTransactions).Int("rows", tx.Len()).Msg("loaded transactions")
	an, err := dataset.LoadAnomalies(inAnomalies, opt)
	if err != nil {
		return render.Input{}, fmt.Errorf("load anomalies: %w", err)
	}
	log.Debug().Str("path", inAnomalies).Int("rows", an.Len()).Int("flagged", an.Flagged()).Msg("loaded anomalies")
	return render.Input{Transactions: tx, Anomalies: an}, nil
}
