package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dativo-io/masker/internal/config"
	"github.com/dativo-io/masker/internal/dialog"
	"github.com/dativo-io/masker/internal/service"
	"github.com/dativo-io/masker/internal/tenant"
)

var (
	maskTenant     string
	maskInput      string
	maskOutput     string
	maskExt        string
	maskMinDialogs int
)

var maskCmd = &cobra.Command{
	Use:   "mask",
	Short: "Mask a directory of dialog files",
	Long: `Masks every dialog file in the input directory and writes the results,
with masking statistics, to the output directory. Files with fewer dialogs
than --min-dialogs are not written. A blacklist.txt report of masked words
by frequency is written to the output directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, span := tracer.Start(cmd.Context(), "mask")
		defer span.End()

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		pcfg := dialog.Config{
			TenantID:   tenantOrDefault(maskTenant, cfg),
			InputDir:   cfg.InputDir,
			OutputDir:  cfg.OutputDir,
			Ext:        cfg.FileExt,
			MinDialogs: cfg.MinDialogs,
		}
		if maskInput != "" {
			pcfg.InputDir = maskInput
		}
		if maskOutput != "" {
			pcfg.OutputDir = maskOutput
		}
		if maskExt != "" {
			pcfg.Ext = maskExt
		}
		if cmd.Flags().Changed("min-dialogs") {
			if maskMinDialogs < 1 {
				return fmt.Errorf("--min-dialogs must be at least 1")
			}
			pcfg.MinDialogs = maskMinDialogs
		}

		svc := service.New(tenant.NewRegistry(cfg.PropertiesDir), nil)
		sum, err := dialog.NewProcessor(svc, pcfg).Run(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Processed %d files: %d written, %d dropped, %d skipped\n",
			sum.Files, sum.Written, sum.Dropped, sum.Skipped)
		fmt.Fprintf(cmd.OutOrStdout(), "Masked %d of %d words (%s) in %d dialogs\n",
			sum.Counts.Masked(), sum.Counts.Words, sum.Counts.Pct(), sum.Dialogs)
		return nil
	},
}

func init() {
	maskCmd.Flags().StringVarP(&maskTenant, "tenant", "t", "", "tenant id (default from default_tenant)")
	maskCmd.Flags().StringVar(&maskInput, "input", "", "input directory (default from input_dir)")
	maskCmd.Flags().StringVar(&maskOutput, "output", "", "output directory (default from output_dir)")
	maskCmd.Flags().StringVar(&maskExt, "ext", "", "input file extension (default from file_ext)")
	maskCmd.Flags().IntVar(&maskMinDialogs, "min-dialogs", config.DefaultMinDialogs, "minimum dialogs for a file to be written")
	rootCmd.AddCommand(maskCmd)
}
