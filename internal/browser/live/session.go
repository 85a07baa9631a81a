// internal/browser/live/session.go
package live

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/autofill/internal/browser/dom"
	"github.com/xkilldash9x/autofill/internal/config"
)

// Session drives a single Chrome tab. Pages are snapshotted into a dom.Document,
// processed offline, and the resulting mutation journal is replayed into the tab.
type Session struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	cfg         config.BrowserConfig
	logger      *zap.Logger
}

// ExecOptions translates the browser config into chromedp allocator options.
func ExecOptions(cfg config.BrowserConfig) []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if !cfg.Headless {
		opts = append(opts, chromedp.Flag("headless", false))
	}
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}
	return opts
}

// Open starts the browser and its first tab.
func Open(ctx context.Context, cfg config.BrowserConfig, logger *zap.Logger) (*Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("live")

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, ExecOptions(cfg)...)
	tabCtx, cancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(logger.Sugar().Debugf),
		chromedp.WithErrorf(logger.Sugar().Debugf))

	// An empty Run launches the browser process.
	if err := chromedp.Run(tabCtx); err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}
	logger.Debug("Browser session started.", zap.Bool("headless", cfg.Headless))
	return &Session{ctx: tabCtx, cancel: cancel, allocCancel: allocCancel, cfg: cfg, logger: logger}, nil
}

// Close shuts down the tab and the browser process.
func (s *Session) Close() {
	s.cancel()
	s.allocCancel()
}

// run executes actions in the tab, aborting when either ctx or the session ends.
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return fmt.Errorf("%w: %v", ctx.Err(), err)
	}
	return err
}

// Navigate loads url, waits for the body, then lets scripted widgets settle.
func (s *Session) Navigate(ctx context.Context, url string) error {
	navCtx, cancel := context.WithTimeout(ctx, s.cfg.NavigationTimeout)
	defer cancel()

	if err := s.run(navCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return settle(ctx, s.cfg.SettleTime)
}

func settle(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Snapshot captures the current page. Same-origin frame documents are captured too
// and attached to their frame elements; cross-origin frames stay unattached.
func (s *Session) Snapshot(ctx context.Context, opts ...dom.Option) (*dom.Document, error) {
	var (
		markup   string
		location string
		frames   []*string
	)
	if err := s.run(ctx,
		chromedp.OuterHTML("html", &markup, chromedp.ByQuery),
		chromedp.Location(&location),
		chromedp.Evaluate(frameSnapshotScript, &frames, returnByValue),
	); err != nil {
		return nil, fmt.Errorf("failed to snapshot page: %w", err)
	}

	doc, err := dom.ParseString(markup, location, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page snapshot: %w", err)
	}
	if err := attachFrames(doc, frames, opts...); err != nil {
		return nil, err
	}
	return doc, nil
}

// attachFrames pairs frame markup, captured in document order, with the frame
// elements of doc. A nil entry marks an inaccessible frame.
func attachFrames(doc *dom.Document, frames []*string, opts ...dom.Option) error {
	if len(frames) == 0 {
		return nil
	}
	els, err := doc.QueryAll("iframe, frame")
	if err != nil {
		return fmt.Errorf("failed to locate frames: %w", err)
	}
	order := doc.DocumentOrder()
	sort.SliceStable(els, func(i, j int) bool { return order[els[i].Node()] < order[els[j].Node()] })
	if len(els) != len(frames) {
		return fmt.Errorf("frame count changed during snapshot: %d in markup, %d captured", len(els), len(frames))
	}

	for i, markup := range frames {
		if markup == nil {
			continue
		}
		frameDoc, err := dom.ParseString(*markup, "", opts...)
		if err != nil {
			return fmt.Errorf("failed to parse frame %d: %w", i, err)
		}
		doc.AttachFrame(els[i], frameDoc)
	}
	return nil
}

// ErrReplayIncomplete is returned when some journaled mutations found no target.
var ErrReplayIncomplete = errors.New("mutation replay incomplete")

// Apply replays muts into the tab and returns how many were applied.
func (s *Session) Apply(ctx context.Context, muts []dom.Mutation) (int, error) {
	if len(muts) == 0 {
		return 0, nil
	}
	script, err := mutationScript(muts)
	if err != nil {
		return 0, err
	}

	var res replayResult
	if err := s.run(ctx, chromedp.Evaluate(script, &res, returnByValue)); err != nil {
		return 0, fmt.Errorf("failed to replay mutations: %w", err)
	}
	if len(res.Missing) > 0 {
		s.logger.Warn("Some mutations had no target in the live page.",
			zap.Int("applied", res.Applied),
			zap.Strings("missing", res.Missing))
		return res.Applied, fmt.Errorf("%w: %d of %d targets missing (%s)",
			ErrReplayIncomplete, len(res.Missing), len(muts), strings.Join(res.Missing, ", "))
	}
	s.logger.Debug("Replayed mutations.", zap.Int("applied", res.Applied))
	return res.Applied, nil
}

func returnByValue(p *runtime.EvaluateParams) *runtime.EvaluateParams {
	return p.WithReturnByValue(true).WithAwaitPromise(true)
}
