package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/user/linkedin-connector/internal/entity"
	"github.com/user/linkedin-connector/internal/repository"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func cardHTML(name, subtitle string) string {
	return fmt.Sprintf(`<li>
	<div class="entity-result__title-line--2-lines"><span><a href="/in/%s/"><span><span>%s</span><span>View profile</span></span></a></span></div>
	<div class="mb1"><div>2nd</div><div>%s</div></div>
</li>`, name, name, subtitle)
}

type fakeCard struct {
	html       string
	label      string // empty: the control never appears
	labelErr   error
	clickErr   error
	labelCalls int
	clicks     int
}

func newCard(name, label string) *fakeCard {
	return &fakeCard{html: cardHTML(name, name+" - Go developer"), label: label}
}

func (c *fakeCard) HTML(context.Context) (string, error) { return c.html, nil }

func (c *fakeCard) ControlLabel(_ context.Context, _ string) (string, error) {
	c.labelCalls++
	if c.labelErr != nil {
		return "", c.labelErr
	}
	if c.label == "" {
		return "", repository.ErrElementNotFound
	}
	return c.label, nil
}

func (c *fakeCard) ClickControl(context.Context, string) error {
	c.clicks++
	return c.clickErr
}

// fakePage scripts a result set of several pages.
type fakePage struct {
	sel       Selectors
	pages     [][]*fakeCard
	current   int
	cookies   entity.Session
	restored  bool
	noNext    bool
	navErr    error
	clickErrs map[string]error

	navigations []string
	clicks      []string
	typed       map[string]string
	nextWaits   int
	scrolls     int
}

func newFakePage(pages ...[]*fakeCard) *fakePage {
	return &fakePage{sel: DefaultSelectors(), pages: pages, typed: map[string]string{}, clickErrs: map[string]error{}}
}

func (p *fakePage) Navigate(_ context.Context, url string) error {
	p.navigations = append(p.navigations, url)
	return nil
}

func (p *fakePage) Title(context.Context) (string, error) {
	if len(p.cookies) > 0 {
		return "Feed | LinkedIn", nil
	}
	return "LinkedIn Login, Sign in | LinkedIn", nil
}

func (p *fakePage) SetViewport(context.Context, int64, int64) error { return nil }

func (p *fakePage) Type(_ context.Context, selector, text string) error {
	p.typed[selector] += text
	return nil
}

func (p *fakePage) WaitVisible(_ context.Context, selector string) error {
	switch selector {
	case p.sel.NextPage:
		p.nextWaits++
		if p.noNext || p.current+1 >= len(p.pages) {
			return fmt.Errorf("%w: %s", repository.ErrElementNotFound, selector)
		}
	case p.sel.ResultItem:
		if p.current >= len(p.pages) || len(p.pages[p.current]) == 0 {
			return fmt.Errorf("%w: %s", repository.ErrElementNotFound, selector)
		}
	}
	return nil
}

func (p *fakePage) Click(_ context.Context, selector string) error {
	p.clicks = append(p.clicks, selector)
	return p.clickErrs[selector]
}

func (p *fakePage) ClickAndWaitNavigation(_ context.Context, selector string) error {
	p.clicks = append(p.clicks, selector)
	switch selector {
	case p.sel.NextPage:
		if p.navErr != nil {
			return p.navErr
		}
		p.current++
	case p.sel.LoginSubmit:
		p.cookies = entity.Session{{Name: "li_at", Value: "fresh", Domain: ".linkedin.com", Path: "/"}}
	}
	return nil
}

func (p *fakePage) ScrollToBottom(_ context.Context, opts repository.ScrollOptions) (int, error) {
	p.scrolls++
	return min(3, opts.MaxSteps), nil
}

func (p *fakePage) Cards(context.Context, string) ([]repository.Card, error) {
	cards := make([]repository.Card, 0, len(p.pages[p.current]))
	for _, c := range p.pages[p.current] {
		cards = append(cards, c)
	}
	return cards, nil
}

func (p *fakePage) Cookies(context.Context) (entity.Session, error) {
	return p.cookies, nil
}

func (p *fakePage) SetCookies(_ context.Context, s entity.Session) error {
	p.cookies = s
	p.restored = true
	return nil
}

func (p *fakePage) clicked(selector string) int {
	n := 0
	for _, c := range p.clicks {
		if c == selector {
			n++
		}
	}
	return n
}

type memSessionRepo struct {
	session entity.Session
	loadErr error
	saves   int
}

func (r *memSessionRepo) Load(context.Context) (entity.Session, error) {
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	if r.session.Empty() {
		return nil, repository.ErrNoSession
	}
	return r.session, nil
}

func (r *memSessionRepo) Save(_ context.Context, s entity.Session) error {
	r.saves++
	r.session = s
	return nil
}

type memRunRepo struct {
	runs     []entity.RunRecord
	attempts []entity.ConnectionAttempt
	err      error
}

func (r *memRunRepo) SaveAttempt(_ context.Context, a *entity.ConnectionAttempt) error {
	r.attempts = append(r.attempts, *a)
	return r.err
}

func (r *memRunRepo) SaveRun(_ context.Context, run *entity.RunRecord) error {
	r.runs = append(r.runs, *run)
	return r.err
}

type fixedDelay time.Duration

func (d fixedDelay) Next() time.Duration { return time.Duration(d) }

type staticComposer struct{}

func (staticComposer) Compose(firstName string) string { return "Hi " + firstName + ", let's connect." }

var errBoom = errors.New("boom")
