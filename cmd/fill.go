// File: cmd/fill.go
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/autofill/internal/autofill"
	"github.com/xkilldash9x/autofill/internal/fill"
	"github.com/xkilldash9x/autofill/internal/observability"
)

// passFlags are shared by every command that runs an autofill pass.
type passFlags struct {
	rulesPath string
	category  string
	force     bool
	vars      []string
}

func (p *passFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&p.rulesPath, "rules", "r", "", "rule file (.json or .yaml)")
	cmd.Flags().StringVar(&p.category, "category", "", "only run rules in this category")
	cmd.Flags().BoolVar(&p.force, "force", false, "overwrite fields that already hold a value")
	cmd.Flags().StringArrayVar(&p.vars, "var", nil, "template variable as name=value (repeatable)")
}

func (p *passFlags) runOptions(cmd *cobra.Command, defaults autofill.RunOptions) autofill.RunOptions {
	opts := defaults
	if cmd.Flags().Changed("category") {
		opts.Category = p.category
	}
	if cmd.Flags().Changed("force") {
		opts.Force = p.force
	}
	return opts
}

func newFillCmd() *cobra.Command {
	var (
		pass                       passFlags
		htmlPath, pageURL, outPath string
		htmlOut                    string
	)

	cmd := &cobra.Command{
		Use:   "fill",
		Short: "Runs an autofill pass over an HTML document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFrom(cmd)
			if err != nil {
				return err
			}
			logger := observability.GetLogger()

			vars, err := parseVars(pass.vars)
			if err != nil {
				return err
			}
			rs, err := loadRules(pass.rulesPath, cfg)
			if err != nil {
				return err
			}
			doc, err := readDocument(cmd.InOrStdin(), htmlPath, pageURL, logger)
			if err != nil {
				return err
			}

			svc := newService(cfg, vars, fill.Sleep, logger)
			result := svc.Autofill(cmd.Context(), doc, rs, pass.runOptions(cmd, autofill.RunOptions{
				Category: cfg.Autofill().Category,
				Force:    cfg.Autofill().ForceOverwrite,
			}))

			if htmlOut != "" {
				if err := os.WriteFile(htmlOut, []byte(doc.String()), 0o644); err != nil {
					return fmt.Errorf("failed to write filled document: %w", err)
				}
				logger.Debug("Wrote filled document.", zap.String("path", htmlOut))
			}
			if err := writeJSON(cmd.OutOrStdout(), outPath, result); err != nil {
				return err
			}
			return cmd.Context().Err()
		},
	}

	pass.register(cmd)
	cmd.Flags().StringVar(&htmlPath, "html", "", "HTML document to fill, - for stdin")
	cmd.Flags().StringVar(&pageURL, "url", "", "URL the document was loaded from (used for site scopes)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write the result to a file instead of stdout")
	cmd.Flags().StringVar(&htmlOut, "html-out", "", "write the filled document to a file")
	return cmd
}
