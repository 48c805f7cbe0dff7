package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dativo-io/masker/internal/config"
	"github.com/dativo-io/masker/internal/tenant"
)

var validateCmd = &cobra.Command{
	Use:   "validate [tenant...]",
	Short: "Check tenant directories for missing resources and bad templates",
	Long: `Loads each named tenant, or every tenant under the properties directory
when none is named, and reports missing resources and templates that do not
compile.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, span := tracer.Start(cmd.Context(), "validate")
		defer span.End()

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		ids := args
		if len(ids) == 0 {
			if ids, err = tenant.NewRegistry(cfg.PropertiesDir).IDs(); err != nil {
				return err
			}
		}
		if len(ids) == 0 {
			return fmt.Errorf("no tenants found in %s", cfg.PropertiesDir)
		}

		out := cmd.OutOrStdout()
		failed := 0
		for _, id := range ids {
			if err := tenant.ValidateID(id); err != nil {
				fmt.Fprintf(out, "✗ %s: %v\n", id, err)
				failed++
				continue
			}
			t, patternErrs, err := tenant.Load(id, filepath.Join(cfg.PropertiesDir, id))
			if err != nil {
				fmt.Fprintf(out, "✗ %s: %v\n", id, err)
				failed++
				continue
			}
			if len(patternErrs) > 0 {
				fmt.Fprintf(out, "✗ %s: %d template errors\n", id, len(patternErrs))
				for _, pe := range patternErrs {
					fmt.Fprintf(out, "    %s\n", pe.Error())
				}
				failed++
				continue
			}
			templates, maskNumbers := t.Snapshot()
			fmt.Fprintf(out, "✓ %s: %d whitelisted words, %d templates, maskNumbers=%t\n",
				id, len(t.Lexicon.Whitelist), len(templates), maskNumbers)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d tenants failed validation", failed, len(ids))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
