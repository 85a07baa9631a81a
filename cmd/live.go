// File: cmd/live.go
package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/autofill/internal/autofill"
	"github.com/xkilldash9x/autofill/internal/browser/dom"
	"github.com/xkilldash9x/autofill/internal/browser/live"
	"github.com/xkilldash9x/autofill/internal/fill"
	"github.com/xkilldash9x/autofill/internal/observability"
)

func newLiveCmd() *cobra.Command {
	var (
		pass     passFlags
		outPath  string
		headless bool
	)

	cmd := &cobra.Command{
		Use:   "live <url>",
		Short: "Opens a page in Chrome, fills it and leaves the changes in the page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFrom(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("headless") {
				cfg.SetBrowserHeadless(headless)
			}
			logger := observability.GetLogger()
			ctx := cmd.Context()

			vars, err := parseVars(pass.vars)
			if err != nil {
				return err
			}
			rs, err := loadRules(pass.rulesPath, cfg)
			if err != nil {
				return err
			}

			session, err := live.Open(ctx, cfg.Browser(), logger)
			if err != nil {
				return err
			}
			defer session.Close()

			if err := session.Navigate(ctx, args[0]); err != nil {
				return err
			}
			doc, err := session.Snapshot(ctx, dom.WithLogger(logger))
			if err != nil {
				return err
			}

			// Events are replayed in one batch, so the offline pass does not wait.
			svc := newService(cfg, vars, fill.NoDelay, logger)
			result := svc.Autofill(ctx, doc, rs, pass.runOptions(cmd, autofill.RunOptions{
				Category: cfg.Autofill().Category,
				Force:    cfg.Autofill().ForceOverwrite,
			}))

			applied, err := session.Apply(ctx, doc.Mutations())
			if err != nil && !errors.Is(err, live.ErrReplayIncomplete) {
				return err
			}
			if err != nil {
				result.AddError("", "", err)
			}
			logger.Info("Live page updated.", zap.Int("mutations", applied), zap.String("url", args[0]))

			if err := writeJSON(cmd.OutOrStdout(), outPath, result); err != nil {
				return fmt.Errorf("failed to report result: %w", err)
			}
			return nil
		},
	}

	pass.register(cmd)
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write the result to a file instead of stdout")
	cmd.Flags().BoolVar(&headless, "headless", true, "run Chrome without a window")
	return cmd
}
