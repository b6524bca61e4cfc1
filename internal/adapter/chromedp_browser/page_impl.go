package chromedp_browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/user/linkedin-connector/internal/entity"
	"github.com/user/linkedin-connector/internal/repository"
)

// PageImpl implements repository.Page on top of a chromedp tab.
type PageImpl struct {
	tabCtx         context.Context
	keystrokeDelay time.Duration
}

var _ repository.Page = (*PageImpl)(nil)

func newPage(tabCtx context.Context, keystrokeDelay time.Duration) *PageImpl {
	return &PageImpl{tabCtx: tabCtx, keystrokeDelay: keystrokeDelay}
}

// scope derives a chromedp-capable context from the tab that carries the
// caller's deadline and cancellation.
func (p *PageImpl) scope(ctx context.Context) (context.Context, context.CancelFunc) {
	runCtx, cancel := context.WithCancel(p.tabCtx)
	if deadline, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		runCtx, cancelDeadline = context.WithDeadline(runCtx, deadline)
		parent := cancel
		cancel = func() { cancelDeadline(); parent() }
	}
	stop := context.AfterFunc(ctx, cancel)
	return runCtx, func() {
		stop()
		cancel()
	}
}

func (p *PageImpl) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := p.scope(ctx)
	defer cancel()
	return chromedp.Run(runCtx, actions...)
}

// classify maps a timed out wait onto the given sentinel error.
func classify(err error, sentinel error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s", sentinel, what)
	}
	return fmt.Errorf("%s: %w", what, err)
}

func (p *PageImpl) Navigate(ctx context.Context, url string) error {
	err := p.run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	return classify(err, repository.ErrNavigationTimeout, "navigate to "+url)
}

func (p *PageImpl) Title(ctx context.Context) (string, error) {
	var title string
	if err := p.run(ctx, chromedp.Title(&title)); err != nil {
		return "", fmt.Errorf("read title: %w", err)
	}
	return title, nil
}

func (p *PageImpl) SetViewport(ctx context.Context, width, height int64) error {
	return p.run(ctx, chromedp.EmulateViewport(width, height))
}

func (p *PageImpl) Type(ctx context.Context, selector, text string) error {
	actions := []chromedp.Action{
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Focus(selector, chromedp.ByQuery),
	}
	for _, r := range text {
		actions = append(actions, chromedp.KeyEvent(string(r)))
		if p.keystrokeDelay > 0 {
			actions = append(actions, chromedp.Sleep(p.keystrokeDelay))
		}
	}
	return classify(p.run(ctx, actions...), repository.ErrElementNotFound, "type into "+selector)
}

func (p *PageImpl) WaitVisible(ctx context.Context, selector string) error {
	err := p.run(ctx, chromedp.WaitVisible(selector, chromedp.ByQuery))
	return classify(err, repository.ErrElementNotFound, selector)
}

func (p *PageImpl) Click(ctx context.Context, selector string) error {
	err := p.run(ctx, chromedp.Click(selector, chromedp.ByQuery))
	return classify(err, repository.ErrElementNotFound, "click "+selector)
}

func (p *PageImpl) ClickAndWaitNavigation(ctx context.Context, selector string) error {
	runCtx, cancel := p.scope(ctx)
	defer cancel()

	navigated := make(chan struct{}, 1)
	signal := func() {
		select {
		case navigated <- struct{}{}:
		default:
		}
	}
	listenCtx, stopListening := context.WithCancel(runCtx)
	defer stopListening()
	chromedp.ListenTarget(listenCtx, func(ev any) {
		switch e := ev.(type) {
		case *page.EventFrameNavigated:
			if e.Frame.ParentID == "" {
				signal()
			}
		case *page.EventNavigatedWithinDocument:
			signal()
		}
	})

	if err := chromedp.Run(runCtx, chromedp.Click(selector, chromedp.ByQuery)); err != nil {
		return classify(err, repository.ErrElementNotFound, "click "+selector)
	}

	select {
	case <-navigated:
	case <-runCtx.Done():
		return fmt.Errorf("%w: after clicking %s", repository.ErrNavigationTimeout, selector)
	}

	err := chromedp.Run(runCtx, chromedp.WaitReady("body", chromedp.ByQuery))
	return classify(err, repository.ErrNavigationTimeout, "wait for page after "+selector)
}

const scrollScript = `(async (step, interval, maxSteps) => {
	let total = 0;
	let steps = 0;
	while (steps < maxSteps) {
		const height = document.body.scrollHeight;
		window.scrollBy(0, step);
		total += step;
		steps++;
		if (total >= height) {
			break;
		}
		await new Promise((resolve) => setTimeout(resolve, interval));
	}
	return steps;
})(%d, %d, %d)`

func (p *PageImpl) ScrollToBottom(ctx context.Context, opts repository.ScrollOptions) (int, error) {
	var steps int
	expr := fmt.Sprintf(scrollScript, opts.StepPx, opts.IntervalMS, opts.MaxSteps)
	err := p.run(ctx, chromedp.Evaluate(expr, &steps, func(params *runtime.EvaluateParams) *runtime.EvaluateParams {
		return params.WithAwaitPromise(true)
	}))
	if err != nil {
		return 0, fmt.Errorf("scroll to bottom: %w", err)
	}
	return steps, nil
}

func (p *PageImpl) Cards(ctx context.Context, selector string) ([]repository.Card, error) {
	var nodes []*cdp.Node
	if err := p.run(ctx, chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0))); err != nil {
		return nil, fmt.Errorf("enumerate %s: %w", selector, err)
	}
	cards := make([]repository.Card, 0, len(nodes))
	for _, n := range nodes {
		cards = append(cards, &cardImpl{page: p, node: n})
	}
	return cards, nil
}

func (p *PageImpl) Cookies(ctx context.Context) (entity.Session, error) {
	var cookies []*network.Cookie
	err := p.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		cookies, err = network.GetCookies().Do(ctx)
		return err
	}))
	if err != nil {
		return nil, fmt.Errorf("read cookies: %w", err)
	}

	session := make(entity.Session, 0, len(cookies))
	for _, c := range cookies {
		session = append(session, entity.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  c.Expires,
			Size:     c.Size,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
			Session:  c.Session,
			SameSite: string(c.SameSite),
			Priority: string(c.Priority),
		})
	}
	return session, nil
}

func (p *PageImpl) SetCookies(ctx context.Context, session entity.Session) error {
	params := make([]*network.CookieParam, 0, len(session))
	for _, c := range session {
		param := &network.CookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HTTPOnly: c.HTTPOnly,
		}
		if !c.Session && c.Expires > 0 {
			sec := int64(c.Expires)
			nsec := int64((c.Expires - float64(sec)) * float64(time.Second))
			expires := cdp.TimeSinceEpoch(time.Unix(sec, nsec))
			param.Expires = &expires
		}
		if c.SameSite != "" {
			param.SameSite = network.CookieSameSite(c.SameSite)
		}
		if c.Priority != "" {
			param.Priority = network.CookiePriority(c.Priority)
		}
		params = append(params, param)
	}
	err := p.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		return network.SetCookies(params).Do(ctx)
	}))
	if err != nil {
		return fmt.Errorf("set cookies: %w", err)
	}
	return nil
}

// cardImpl scopes queries to one result entry.
type cardImpl struct {
	page *PageImpl
	node *cdp.Node
}

func (c *cardImpl) HTML(ctx context.Context) (string, error) {
	var html string
	err := c.page.run(ctx, chromedp.OuterHTML([]cdp.NodeID{c.node.NodeID}, &html, chromedp.ByNodeID))
	if err != nil {
		return "", fmt.Errorf("read card html: %w", err)
	}
	return html, nil
}

func (c *cardImpl) ControlLabel(ctx context.Context, selector string) (string, error) {
	var text string
	err := c.page.run(ctx,
		chromedp.WaitVisible(selector, chromedp.ByQuery, chromedp.FromNode(c.node)),
		chromedp.Text(selector, &text, chromedp.ByQuery, chromedp.FromNode(c.node)),
	)
	if err != nil {
		return "", classify(err, repository.ErrElementNotFound, selector)
	}
	return strings.TrimSpace(text), nil
}

func (c *cardImpl) ClickControl(ctx context.Context, selector string) error {
	err := c.page.run(ctx, chromedp.Click(selector, chromedp.ByQuery, chromedp.FromNode(c.node)))
	return classify(err, repository.ErrElementNotFound, "click "+selector)
}
