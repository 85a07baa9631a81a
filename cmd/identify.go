// File: cmd/identify.go
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/xkilldash9x/autofill/internal/fill"
	"github.com/xkilldash9x/autofill/internal/observability"
)

func newIdentifyCmd() *cobra.Command {
	var htmlPath, pageURL, outPath string

	cmd := &cobra.Command{
		Use:   "identify",
		Short: "Lists the fillable fields of an HTML document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFrom(cmd)
			if err != nil {
				return err
			}
			logger := observability.GetLogger()

			doc, err := readDocument(cmd.InOrStdin(), htmlPath, pageURL, logger)
			if err != nil {
				return err
			}
			svc := newService(cfg, nil, fill.NoDelay, logger)
			return writeJSON(cmd.OutOrStdout(), outPath, svc.Report(doc))
		},
	}

	cmd.Flags().StringVar(&htmlPath, "html", "", "HTML document to inspect, - for stdin")
	cmd.Flags().StringVar(&pageURL, "url", "", "URL the document was loaded from")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write the report to a file instead of stdout")
	return cmd
}
