package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dativo-io/masker/internal/config"
	"github.com/dativo-io/masker/internal/tenant"
	"github.com/dativo-io/masker/patterns"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init <tenant>",
	Short: "Create an empty tenant directory",
	Long: `Creates <properties>/<tenant>/ with empty word sets, commented URL lists
and the default template document. Populate the word sets with
'masker wordlists build'.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		id := args[0]
		if err := tenant.ValidateID(id); err != nil {
			return err
		}
		dir := filepath.Join(cfg.PropertiesDir, id)
		if _, err := os.Stat(dir); err == nil && !initForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", dir)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}

		files := map[string][]byte{
			tenant.WhitelistFile:           []byte("{}\n"),
			tenant.NamesFile:               []byte("{}\n"),
			tenant.GeolocationsFile:        []byte("{}\n"),
			tenant.ProfanitiesFile:         []byte("{}\n"),
			tenant.DomainPrefixesFile:      []byte("_ acceptable URL prefixes, one per line, e.g. https://www.example.com\n"),
			tenant.DomainSuffixesFile:      []byte("_ acceptable domain suffixes, one per line, e.g. example.com\n"),
			tenant.QueryStringContainsFile: []byte("_ URLs whose query string contains any of these are acceptable\n"),
			tenant.TemplatesYAMLFile:       patterns.TemplatesYAML(),
		}
		for name, data := range files {
			if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", name, err)
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created tenant %s in %s\n", id, dir)
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing tenant directory")
	rootCmd.AddCommand(initCmd)
}
