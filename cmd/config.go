package cmd

import (
	"fmt"
	"strconv"

	cfgpkg "github.com/KaramelBytes/fraudlens-cli/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set FraudLens configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		if cfg == nil {
			fmt.Fprintln(w, "No config loaded (using defaults)")
		}
		c := settings()
		fmt.Fprintf(w, "output_dir: %s\n", c.OutputDir)
		fmt.Fprintf(w, "threshold: %g\n", c.Threshold)
		fmt.Fprintf(w, "top_k: %d\n", c.TopK)
		fmt.Fprintf(w, "bucket_count: %d\n", c.BucketCount)
		fmt.Fprintf(w, "top_regions: %d\n", c.TopRegions)
		fmt.Fprintf(w, "top_categories: %d\n", c.TopCategories)
		fmt.Fprintf(w, "dpi: %d\n", c.DPI)
		fmt.Fprintf(w, "parallel: %t\n", c.Parallel)
		if c.Delimiter != "" {
			fmt.Fprintf(w, "delimiter: %q\n", c.Delimiter)
		}
		if c.Sheet != "" {
			fmt.Fprintf(w, "sheet: %s\n", c.Sheet)
		}
		if c.LogFile != "" {
			fmt.Fprintf(w, "log_file: %s\n", c.LogFile)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				c = cfgpkg.Defaults()
			}
			cfg = c
		}
		next := *cfg
		switch key {
		case "output_dir":
			next.OutputDir = val
		case "threshold":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return fmt.Errorf("invalid float for threshold: %w", err)
			}
			next.Threshold = f
		case "top_k", "bucket_count", "top_regions", "top_categories", "dpi":
			i, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid int for %s: %w", key, err)
			}
			switch key {
			case "top_k":
				next.TopK = i
			case "bucket_count":
				next.BucketCount = i
			case "top_regions":
				next.TopRegions = i
			case "top_categories":
				next.TopCategories = i
			case "dpi":
				next.DPI = i
			}
		case "parallel":
			b, err := strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("invalid bool for parallel: %w", err)
			}
			next.Parallel = b
		case "delimiter":
			if val == "tab" {
				val = "\t"
			}
			next.Delimiter = val
		case "sheet":
			next.Sheet = val
		case "log_file":
			next.LogFile = val
		default:
			return fmt.Errorf("unknown key: %s (known: %v)", key, cfgpkg.Keys)
		}
		if err := next.Validate(); err != nil {
			return err
		}
		if err := cfgpkg.Save(&next, cfgFile); err != nil {
			return err
		}
		*cfg = next
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
