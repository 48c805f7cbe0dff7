package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dativo-io/masker/internal/config"
	"github.com/dativo-io/masker/internal/masker"
	"github.com/dativo-io/masker/internal/service"
	"github.com/dativo-io/masker/internal/tenant"
)

var (
	textTenant    string
	textNoNumbers bool
	textDiff      bool
)

var textCmd = &cobra.Command{
	Use:   "text [line...]",
	Short: "Mask lines given as arguments or read from stdin",
	Long: `Masks each argument as one line, or each stdin line when no arguments are
given. Masked lines are written to stdout. With --diff each line is printed
as JSON together with the placeholders and the text they replaced.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, span := tracer.Start(cmd.Context(), "text")
		defer span.End()

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		lines := args
		if len(lines) == 0 {
			if lines, err = readLines(cmd.InOrStdin()); err != nil {
				return err
			}
		}

		var maskNumbers *bool
		if textNoNumbers {
			off := false
			maskNumbers = &off
		}
		svc := service.New(tenant.NewRegistry(cfg.PropertiesDir), nil)
		tenantID := tenantOrDefault(textTenant, cfg)
		out := cmd.OutOrStdout()

		if textDiff {
			req := service.MessageRequest{TenantID: tenantID, MaskNumbers: maskNumbers}
			for _, l := range lines {
				req.Messages = append(req.Messages, service.Message{Utterance: l})
			}
			resp, err := svc.MaskMessageContent(ctx, req)
			if err != nil {
				return err
			}
			if err := reportErrors(cmd, resp.Errors); err != nil {
				return err
			}
			enc := json.NewEncoder(out)
			for i, m := range resp.MaskedMessages {
				if err := enc.Encode(struct {
					Masked string               `json:"masked"`
					Diff   []masker.MaskedToken `json:"diff"`
				}{m.Utterance, resp.Diffs[i]}); err != nil {
					return err
				}
			}
			return nil
		}

		resp, err := svc.MaskContent(ctx, service.MaskRequest{TenantID: tenantID, MaskNumbers: maskNumbers, Unmasked: lines})
		if err != nil {
			return err
		}
		if err := reportErrors(cmd, resp.Errors); err != nil {
			return err
		}
		for _, m := range resp.Masked {
			fmt.Fprintln(out, m)
		}
		return nil
	},
}

func init() {
	textCmd.Flags().StringVarP(&textTenant, "tenant", "t", "", "tenant id (default from default_tenant)")
	textCmd.Flags().BoolVar(&textNoNumbers, "no-numbers", false, "leave all-digit words unmasked")
	textCmd.Flags().BoolVar(&textDiff, "diff", false, "print each line as JSON with its placeholder diff")
	rootCmd.AddCommand(textCmd)
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16<<20)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines, sc.Err()
}

// reportErrors prints masking errors to stderr. Configuration errors mean
// nothing was masked and fail the command; pattern errors only warn.
func reportErrors(cmd *cobra.Command, errs []*masker.Error) error {
	var fatal []string
	for _, e := range errs {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", e.Code, e.Message)
		if e.Code == masker.CodeConfiguration {
			fatal = append(fatal, e.Message)
		}
	}
	if len(fatal) > 0 {
		return fmt.Errorf("configuration error: %s", strings.Join(fatal, "; "))
	}
	return nil
}
