package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dativo-io/masker/internal/config"
	"github.com/dativo-io/masker/internal/doctor"
)

var (
	doctorFormat    string
	doctorSkipBatch bool
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run preflight checks (properties dir, tenants, batch directories)",
	Long:  "Verifies every tenant directory loads, the default tenant exists, the input directory exists and the output directory is writable.",
	RunE:  runDoctor,
}

func init() {
	doctorCmd.Flags().StringVar(&doctorFormat, "format", "text", "output format (text, json)")
	doctorCmd.Flags().BoolVar(&doctorSkipBatch, "skip-batch", false, "skip input and output directory checks")
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	report := doctor.Run(ctx, cfg, doctor.Options{SkipBatch: doctorSkipBatch})

	out := cmd.OutOrStdout()
	if doctorFormat == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		for _, c := range report.Checks {
			mark := "✓"
			switch c.Status {
			case doctor.StatusWarn:
				mark = "⚠"
			case doctor.StatusFail:
				mark = "✗"
			}
			fmt.Fprintf(out, "%s %s: %s\n", mark, c.Name, c.Message)
			if c.Fix != "" && c.Status != doctor.StatusPass {
				fmt.Fprintf(out, "    fix: %s\n", c.Fix)
			}
		}
		fmt.Fprintf(out, "\n%d passed, %d warnings, %d failed\n", report.Summary.Pass, report.Summary.Warn, report.Summary.Fail)
	}

	if report.Status == doctor.StatusFail {
		return fmt.Errorf("doctor checks failed")
	}
	return nil
}
