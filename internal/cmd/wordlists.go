package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dativo-io/masker/internal/config"
	"github.com/dativo-io/masker/internal/wordlist"
)

var (
	wordlistsTenant string
	wordlistsSource string
)

var wordlistsCmd = &cobra.Command{
	Use:   "wordlists",
	Short: "Manage tenant word lists",
}

var wordlistsBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build a tenant's whitelist and reference sets from source lists",
	Long: `Reads the source word lists from --source (default <properties>/source)
and writes the whitelist, names, geolocations and profanities sets into the
tenant directory. Names, places and profanities are removed from the
whitelist; overrides are added back.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, span := tracer.Start(cmd.Context(), "wordlists.build")
		defer span.End()

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		src := wordlistsSource
		if src == "" {
			src = filepath.Join(cfg.PropertiesDir, "source")
		}
		res, err := wordlist.Build(ctx, src)
		if err != nil {
			return err
		}
		id := tenantOrDefault(wordlistsTenant, cfg)
		if err := res.Save(filepath.Join(cfg.PropertiesDir, id)); err != nil {
			return err
		}
		r := res.Report
		fmt.Fprintf(cmd.OutOrStdout(), "Tenant %s: %d whitelisted, %d names, %d geolocations, %d profanities\n",
			id, r.Whitelist, r.Names, r.Geolocations, r.Profanities)
		fmt.Fprintf(cmd.OutOrStdout(), "Removed from whitelist: %d names, %d geolocations, %d profanities; %d overrides, %d emojis\n",
			r.NamesRemoved, r.GeolocationsRemoved, r.ProfanitiesRemoved, r.Overrides, r.Emojis)
		return nil
	},
}

func init() {
	wordlistsBuildCmd.Flags().StringVarP(&wordlistsTenant, "tenant", "t", "", "tenant id (default from default_tenant)")
	wordlistsBuildCmd.Flags().StringVar(&wordlistsSource, "source", "", "directory holding the source word lists")
	wordlistsCmd.AddCommand(wordlistsBuildCmd)
	rootCmd.AddCommand(wordlistsCmd)
}
