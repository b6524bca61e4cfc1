package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/user/linkedin-connector/internal/entity"
	"github.com/user/linkedin-connector/internal/repository"
	"github.com/user/linkedin-connector/pkg/metrics"
)

const defaultTimeout = 30 * time.Second

// Delayer produces the pause applied between actions.
type Delayer interface {
	Next() time.Duration
}

// Composer renders the invitation note for a recipient.
type Composer interface {
	Compose(firstName string) string
}

// Options are the per-run parameters of the connector.
type Options struct {
	Login     string
	Password  string
	SearchURL string

	MaxPages   int
	MaxActions int
	AddNote    bool

	// Timeout bounds every single wait. There is no overall run deadline.
	Timeout        time.Duration
	KeystrokeDelay time.Duration
	Scroll         repository.ScrollOptions

	ViewportWidth  int64
	ViewportHeight int64
}

// Connector defines the interface for one connection-request run.
type Connector interface {
	// Run drives the browser until a ceiling is hit or pagination ends. The
	// returned error is non-nil only when ctx was cancelled.
	Run(ctx context.Context) (entity.RunResult, error)
}

type connectorUseCase struct {
	page      repository.Page
	sessions  *SessionKeeper
	delay     Delayer
	composer  Composer
	reporter  *Reporter
	logger    *slog.Logger
	opts      Options
	selectors Selectors
	site      Site
	sleep     func(context.Context, time.Duration) error
	now       func() time.Time
}

// ConnectorOption customizes a connector.
type ConnectorOption func(*connectorUseCase)

func WithSelectors(s Selectors) ConnectorOption {
	return func(uc *connectorUseCase) { uc.selectors = s }
}

func WithSite(s Site) ConnectorOption {
	return func(uc *connectorUseCase) { uc.site = s }
}

// WithSleep replaces the function used to wait out Delay Policy pauses.
func WithSleep(fn func(context.Context, time.Duration) error) ConnectorOption {
	return func(uc *connectorUseCase) { uc.sleep = fn }
}

// NewConnectorUseCase creates a new instance of the connector use case.
func NewConnectorUseCase(
	page repository.Page,
	sessions *SessionKeeper,
	delay Delayer,
	composer Composer,
	reporter *Reporter,
	opts Options,
	options ...ConnectorOption,
) Connector {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	uc := &connectorUseCase{
		page:      page,
		sessions:  sessions,
		delay:     delay,
		composer:  composer,
		reporter:  reporter,
		logger:    reporter.Logger(),
		opts:      opts,
		selectors: DefaultSelectors(),
		site:      DefaultSite(),
		sleep:     sleepContext,
		now:       time.Now,
	}
	for _, o := range options {
		o(uc)
	}
	return uc
}

func (uc *connectorUseCase) Run(ctx context.Context) (res entity.RunResult, err error) {
	res = entity.RunResult{RunID: uc.reporter.RunID(), StartedAt: uc.now()}
	uc.reporter.Start(ctx, res)
	defer func() {
		res.FinishedAt = uc.now()
		uc.reporter.Summary(ctx, res)
	}()

	if uc.opts.MaxPages <= 0 || uc.opts.MaxActions <= 0 {
		uc.logger.Warn("Page and profile ceilings must be positive, stopping",
			"max_pages", uc.opts.MaxPages, "max_clicked_profiles", uc.opts.MaxActions)
		res.Termination = entity.TerminationInvalidCeiling
		return res, nil
	}

	uc.open(ctx, res)

	uc.reporter.Transition(StateAuthenticating, 0, res)
	if !uc.isAuthenticated(ctx) {
		uc.authenticate(ctx)
	}
	uc.persistSession(ctx)

	for pageIndex := 0; ; pageIndex++ {
		if err := ctx.Err(); err != nil {
			res.Termination = entity.TerminationAborted
			break
		}
		if term := uc.browse(ctx, pageIndex, &res); term != "" {
			res.Termination = term
			break
		}
		if res.ActionsCompleted >= uc.opts.MaxActions {
			res.Termination = entity.TerminationQuotaReached
			break
		}
		if pageIndex+1 >= uc.opts.MaxPages {
			uc.logger.Info("Page limit reached, stopping", "max_pages", uc.opts.MaxPages)
			res.Termination = entity.TerminationPageLimitReached
			break
		}
		if term := uc.paginate(ctx, pageIndex, res); term != "" {
			res.Termination = term
			break
		}
	}

	if res.Termination == entity.TerminationAborted {
		return res, ctx.Err()
	}
	return res, nil
}

// open restores the session and opens the landing page.
func (uc *connectorUseCase) open(ctx context.Context, res entity.RunResult) {
	uc.reporter.Transition(StateInit, 0, res)

	_ = uc.withTimeout(ctx, 0, func(ctx context.Context) error {
		uc.sessions.Restore(ctx, uc.page)
		return nil
	})

	if uc.opts.ViewportWidth > 0 && uc.opts.ViewportHeight > 0 {
		err := uc.withTimeout(ctx, 0, func(ctx context.Context) error {
			return uc.page.SetViewport(ctx, uc.opts.ViewportWidth, uc.opts.ViewportHeight)
		})
		if err != nil {
			uc.logger.Warn("Could not set viewport", "error", err)
		}
	}

	uc.logger.Info("Navigating to LinkedIn feed")
	err := uc.withTimeout(ctx, 0, func(ctx context.Context) error {
		return uc.page.Navigate(ctx, uc.site.FeedURL)
	})
	if err != nil {
		uc.logger.Error("Error while opening the feed", "error", err)
	}
}

func (uc *connectorUseCase) isAuthenticated(ctx context.Context) bool {
	var title string
	err := uc.withTimeout(ctx, 0, func(ctx context.Context) error {
		var err error
		title, err = uc.page.Title(ctx)
		return err
	})
	if err != nil {
		uc.logger.Warn("Could not read page title", "error", err)
		return false
	}
	return strings.Contains(title, uc.site.AuthenticatedTitle)
}

// authenticate submits the credentials. A failed login is logged and the run
// carries on with whatever state the browser ends up in.
func (uc *connectorUseCase) authenticate(ctx context.Context) {
	defer observeStep("login", time.Now())

	uc.logger.Info("Opening LinkedIn login page")
	if err := uc.login(ctx); err != nil {
		uc.logger.Error("Error while logging in", "error", err)
		return
	}
	uc.logger.Info("Login successful")
}

func (uc *connectorUseCase) login(ctx context.Context) error {
	err := uc.withTimeout(ctx, 0, func(ctx context.Context) error {
		return uc.page.Navigate(ctx, uc.site.LoginURL)
	})
	if err != nil {
		return err
	}
	err = uc.withTimeout(ctx, uc.typingTime(uc.opts.Login), func(ctx context.Context) error {
		return uc.page.Type(ctx, uc.selectors.LoginUsername, uc.opts.Login)
	})
	if err != nil {
		return fmt.Errorf("type login: %w", err)
	}
	err = uc.withTimeout(ctx, uc.typingTime(uc.opts.Password), func(ctx context.Context) error {
		return uc.page.Type(ctx, uc.selectors.LoginPassword, uc.opts.Password)
	})
	if err != nil {
		return fmt.Errorf("type password: %w", err)
	}
	return uc.withTimeout(ctx, 0, func(ctx context.Context) error {
		return uc.page.ClickAndWaitNavigation(ctx, uc.selectors.LoginSubmit)
	})
}

func (uc *connectorUseCase) persistSession(ctx context.Context) {
	_ = uc.withTimeout(ctx, 0, func(ctx context.Context) error {
		uc.sessions.Persist(ctx, uc.page)
		return nil
	})
}

// browse processes one result page. It returns a non-empty termination when
// the run must stop.
func (uc *connectorUseCase) browse(ctx context.Context, pageIndex int, res *entity.RunResult) entity.Termination {
	defer observeStep("browse", time.Now())

	pageNumber := pageIndex + 1
	uc.reporter.Transition(StateBrowsing, pageNumber, *res)
	uc.logger.Info("Processing page", "page", pageNumber, "max_pages", uc.opts.MaxPages)

	if pageIndex == 0 {
		uc.logger.Info("Navigating to search page")
		err := uc.withTimeout(ctx, 0, func(ctx context.Context) error {
			return uc.page.Navigate(ctx, uc.opts.SearchURL)
		})
		if err != nil {
			uc.logger.Error("Error while opening the search page", "error", err)
		}
	}

	uc.scrollDown(ctx)

	var cards []repository.Card
	err := uc.withTimeout(ctx, 0, func(ctx context.Context) error {
		if err := uc.page.WaitVisible(ctx, uc.selectors.ResultItem); err != nil {
			return err
		}
		var err error
		cards, err = uc.page.Cards(ctx, uc.selectors.ResultItem)
		return err
	})
	if err != nil {
		if ctx.Err() != nil {
			return entity.TerminationAborted
		}
		uc.logger.Error("Error while connecting to people", "page", pageNumber, "error", err)
		if pageIndex == 0 {
			return entity.TerminationSearchUnavailable
		}
	}

	res.PagesVisited++
	res.ProfilesObserved += len(cards)
	uc.reporter.PageLoaded(ctx, pageNumber, uc.opts.MaxPages, len(cards))

	for i, card := range cards {
		if ctx.Err() != nil {
			return entity.TerminationAborted
		}
		uc.reporter.Transition(StateEvaluating, pageNumber, *res)

		candidate, outcome := uc.evaluate(ctx, pageNumber, i, card)
		switch outcome.Status {
		case entity.OutcomeConnected:
			res.ActionsCompleted++
		case entity.OutcomeFailed:
			res.Failures++
		}
		uc.reporter.Outcome(ctx, candidate, outcome)

		if res.ActionsCompleted >= uc.opts.MaxActions {
			uc.logger.Info("Max clicked profiles reached, stopping", "max_clicked_profiles", uc.opts.MaxActions)
			return entity.TerminationQuotaReached
		}
		if outcome.Status == entity.OutcomeConnected {
			if err := uc.pause(ctx); err != nil {
				return entity.TerminationAborted
			}
		}
	}
	return ""
}

// scrollDown forces lazy-loaded results to render. The wait is capped by
// Scroll.MaxSteps.
func (uc *connectorUseCase) scrollDown(ctx context.Context) {
	s := uc.opts.Scroll
	if s.MaxSteps <= 0 || s.StepPx <= 0 {
		return
	}
	budget := time.Duration(s.MaxSteps*s.IntervalMS) * time.Millisecond

	var steps int
	err := uc.withTimeout(ctx, budget, func(ctx context.Context) error {
		var err error
		steps, err = uc.page.ScrollToBottom(ctx, s)
		return err
	})
	if err != nil {
		uc.logger.Error("Error while scrolling down", "error", err)
		return
	}
	if steps >= s.MaxSteps {
		uc.logger.Warn("Scroll cap reached before the end of the page", "steps", steps)
	}
}

// evaluate checks one candidate and acts on it when eligible.
func (uc *connectorUseCase) evaluate(ctx context.Context, pageNumber, index int, card repository.Card) (entity.Candidate, entity.Outcome) {
	candidate := entity.Candidate{Page: pageNumber, Index: index}

	var html string
	err := uc.withTimeout(ctx, 0, func(ctx context.Context) error {
		var err error
		html, err = card.HTML(ctx)
		return err
	})
	if err != nil {
		uc.logger.Warn("Could not read profile card", "position", index, "error", err)
	} else if parsed, err := ExtractCandidate(html, uc.selectors, uc.site.BaseURL); err != nil {
		uc.logger.Warn("Could not parse profile card", "position", index, "error", err)
	} else {
		parsed.Page, parsed.Index = pageNumber, index
		candidate = parsed
	}

	var label string
	err = uc.withTimeout(ctx, 0, func(ctx context.Context) error {
		var err error
		label, err = card.ControlLabel(ctx, uc.selectors.ActionButton)
		return err
	})
	switch {
	case errors.Is(err, repository.ErrElementNotFound):
		uc.logger.Info("No connect button found", "profile", candidate.Subtitle, "error", err)
		return candidate, entity.Skipped(entity.SkipNoActionControl)
	case err != nil:
		return candidate, entity.Failed(failureReason(err), fmt.Errorf("read action control: %w", err))
	}
	candidate.ActionLabel = label
	uc.logger.Info("Button text", "text", label)

	if !candidate.Eligible() {
		return candidate, entity.Skipped(entity.SkipNotEligible)
	}

	uc.logger.Info("Connecting to profile", "profile", candidate.Subtitle)
	if err := uc.act(ctx, candidate, card); err != nil {
		return candidate, entity.Failed(failureReason(err), err)
	}
	return candidate, entity.Connected()
}

// failureReason classifies a browser error for the outcome record.
func failureReason(err error) entity.Reason {
	switch {
	case errors.Is(err, repository.ErrNavigationTimeout), errors.Is(err, context.DeadlineExceeded):
		return entity.FailTimeout
	case errors.Is(err, repository.ErrElementNotFound):
		return entity.FailElementNotFound
	default:
		return entity.FailUnknown
	}
}

// act sends the invitation. A failure part way through is not rolled back.
func (uc *connectorUseCase) act(ctx context.Context, candidate entity.Candidate, card repository.Card) error {
	uc.reporter.Enter(StateActing)
	defer observeStep("act", time.Now())

	err := uc.withTimeout(ctx, 0, func(ctx context.Context) error {
		return card.ClickControl(ctx, uc.selectors.ActionButton)
	})
	if err != nil {
		return fmt.Errorf("click connect: %w", err)
	}

	confirm := uc.selectors.SendButton
	if uc.opts.AddNote {
		uc.logger.Info("Adding message", "name", candidate.FirstName)
		err := uc.withTimeout(ctx, 0, func(ctx context.Context) error {
			return uc.page.Click(ctx, uc.selectors.AddNoteButton)
		})
		if err != nil {
			return fmt.Errorf("open note: %w", err)
		}

		note := uc.composer.Compose(candidate.FirstName)
		err = uc.withTimeout(ctx, uc.typingTime(note), func(ctx context.Context) error {
			return uc.page.Type(ctx, uc.selectors.NoteInput, note)
		})
		if err != nil {
			return fmt.Errorf("type note: %w", err)
		}
		confirm = uc.selectors.SendNoteButton
	}

	err = uc.withTimeout(ctx, 0, func(ctx context.Context) error {
		return uc.page.Click(ctx, confirm)
	})
	if err != nil {
		return fmt.Errorf("send invitation: %w", err)
	}
	return nil
}

// paginate moves to the next result page. A missing control and a failed
// navigation end the run with distinct terminations.
func (uc *connectorUseCase) paginate(ctx context.Context, pageIndex int, res entity.RunResult) entity.Termination {
	defer observeStep("paginate", time.Now())

	uc.reporter.Transition(StatePaginating, pageIndex+1, res)
	uc.logger.Info("Moving to the next page")

	err := uc.nextPage(ctx)
	switch {
	case err == nil:
	case ctx.Err() != nil:
		return entity.TerminationAborted
	case errors.Is(err, repository.ErrNoNextPage):
		uc.logger.Warn("Next page control not found, stopping", "page", pageIndex+1, "error", err)
		return entity.TerminationNoNextPage
	default:
		uc.logger.Error("Error while going to the next page", "error", err)
		return entity.TerminationPaginationFailed
	}

	if err := uc.pause(ctx); err != nil {
		return entity.TerminationAborted
	}
	uc.logger.Info("Moved to the next page")
	return ""
}

func (uc *connectorUseCase) nextPage(ctx context.Context) error {
	err := uc.withTimeout(ctx, 0, func(ctx context.Context) error {
		return uc.page.WaitVisible(ctx, uc.selectors.NextPage)
	})
	if err != nil {
		return fmt.Errorf("%w: %w", repository.ErrNoNextPage, err)
	}
	return uc.withTimeout(ctx, 0, func(ctx context.Context) error {
		return uc.page.ClickAndWaitNavigation(ctx, uc.selectors.NextPage)
	})
}

// withTimeout runs fn under the per-operation timeout, extended by extra for
// operations whose duration grows with their input.
func (uc *connectorUseCase) withTimeout(ctx context.Context, extra time.Duration, fn func(context.Context) error) error {
	opCtx, cancel := context.WithTimeout(ctx, uc.opts.Timeout+extra)
	defer cancel()
	return fn(opCtx)
}

func (uc *connectorUseCase) typingTime(text string) time.Duration {
	return time.Duration(utf8.RuneCountInString(text)) * uc.opts.KeystrokeDelay
}

func (uc *connectorUseCase) pause(ctx context.Context) error {
	return uc.sleep(ctx, uc.delay.Next())
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func observeStep(step string, start time.Time) {
	metrics.StepDuration.WithLabelValues(step).Observe(time.Since(start).Seconds())
}
