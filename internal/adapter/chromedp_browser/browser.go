package chromedp_browser

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/user/linkedin-connector/internal/repository"
)

const defaultUserAgent = `Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36`

// Options configures the browser process.
type Options struct {
	Headless       bool
	Timeout        time.Duration // bounds the browser start
	KeystrokeDelay time.Duration
	Identity       Identity
	Logger         *slog.Logger
}

// Browser owns one Chrome process and the single tab the connector drives.
// Close releases both and is safe to call more than once.
type Browser struct {
	allocCancel context.CancelFunc
	tabCtx      context.Context
	tabCancel   context.CancelFunc
	page        *PageImpl
	closeOnce   sync.Once
	logger      *slog.Logger
}

// Launch starts Chrome and opens a tab.
func Launch(ctx context.Context, o Options) (*Browser, error) {
	logger := o.Logger
	if logger == nil {
		logger = slog.Default()
	}
	id := o.Identity
	if id.UserAgent == "" {
		id.UserAgent = defaultUserAgent
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", o.Headless),
		chromedp.Flag("disable-gpu", o.Headless),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.UserAgent(id.UserAgent),
	)
	if id.Proxy != "" {
		opts = append(opts, chromedp.ProxyServer(id.Proxy))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)

	tabCtx, tabCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			logger.Debug(fmt.Sprintf(format, args...))
		}),
		chromedp.WithErrorf(func(format string, args ...any) {
			logger.Warn(fmt.Sprintf(format, args...))
		}),
	)

	b := &Browser{
		allocCancel: allocCancel,
		tabCtx:      tabCtx,
		tabCancel:   tabCancel,
		logger:      logger,
	}

	// The first Run allocates the browser under the context it is given, so it
	// must get tabCtx itself. The start timeout is enforced from outside.
	started := make(chan error, 1)
	go func() { started <- chromedp.Run(tabCtx) }()

	var timeout <-chan time.Time
	if o.Timeout > 0 {
		timer := time.NewTimer(o.Timeout)
		defer timer.Stop()
		timeout = timer.C
	}
	select {
	case err := <-started:
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("failed to launch browser: %w", err)
		}
	case <-timeout:
		b.Close()
		return nil, fmt.Errorf("failed to launch browser: %w", repository.ErrNavigationTimeout)
	}

	b.page = newPage(tabCtx, o.KeystrokeDelay)
	logger.Info("Browser launched", "headless", o.Headless, "proxy", id.Proxy != "")
	return b, nil
}

// Page returns the tab handle.
func (b *Browser) Page() *PageImpl {
	return b.page
}

// Close shuts the tab and the browser process down.
func (b *Browser) Close() {
	b.closeOnce.Do(func() {
		b.tabCancel()
		b.allocCancel()
		b.logger.Info("Browser closed")
	})
}
