package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/linkedin-connector/internal/entity"
	"github.com/user/linkedin-connector/internal/repository"
)

type harness struct {
	page     *fakePage
	sessions *memSessionRepo
	runs     *memRunRepo
	sleeps   []time.Duration
	opts     Options
}

func newHarness(page *fakePage) *harness {
	return &harness{
		page:     page,
		sessions: &memSessionRepo{session: entity.Session{{Name: "li_at", Value: "saved", Domain: ".linkedin.com", Path: "/"}}},
		runs:     &memRunRepo{},
		opts: Options{
			Login:      "me@example.com",
			Password:   "secret",
			SearchURL:  "https://www.linkedin.com/search/results/people/?keywords=golang",
			MaxPages:   300,
			MaxActions: 15,
			Timeout:    time.Second,
			Scroll:     repository.ScrollOptions{StepPx: 100, IntervalMS: 1, MaxSteps: 10},
		},
	}
}

func (h *harness) run(t *testing.T, ctx context.Context) (entity.RunResult, error) {
	t.Helper()
	logger := discardLogger()
	reporter := NewReporter("run-1", h.opts.SearchURL, logger, h.runs)
	uc := NewConnectorUseCase(
		h.page,
		NewSessionKeeper(h.sessions, logger),
		fixedDelay(2*time.Second),
		staticComposer{},
		reporter,
		h.opts,
		WithSleep(func(ctx context.Context, d time.Duration) error {
			h.sleeps = append(h.sleeps, d)
			return ctx.Err()
		}),
	)
	return uc.Run(ctx)
}

func TestRunSingleEligibleCandidate(t *testing.T) {
	cards := []*fakeCard{newCard("Ann", "Message"), newCard("Bob", "Connect"), newCard("Cid", "Pending")}
	h := newHarness(newFakePage(cards))
	h.opts.MaxPages = 1

	res, err := h.run(t, context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, res.ProfilesObserved)
	assert.Equal(t, 1, res.ActionsCompleted)
	assert.Equal(t, 1, res.PagesVisited)
	assert.Equal(t, entity.TerminationPageLimitReached, res.Termination)

	assert.Equal(t, 0, cards[0].clicks)
	assert.Equal(t, 1, cards[1].clicks)
	assert.Equal(t, 0, cards[2].clicks)
	assert.Equal(t, 1, h.page.clicked(DefaultSelectors().SendButton))
	assert.Zero(t, h.page.clicked(DefaultSelectors().AddNoteButton))
	assert.Zero(t, h.page.nextWaits, "pagination must not be attempted past the page ceiling")
	assert.Equal(t, []time.Duration{2 * time.Second}, h.sleeps)
}

func TestRunStopsAtActionCeiling(t *testing.T) {
	first := []*fakeCard{
		newCard("A", "Connect"), newCard("B", "Connect"), newCard("C", "Connect"),
		newCard("D", "Connect"), newCard("E", "Connect"),
	}
	h := newHarness(newFakePage(first, []*fakeCard{newCard("F", "Connect")}))
	h.opts.MaxActions = 1

	res, err := h.run(t, context.Background())
	require.NoError(t, err)

	assert.Equal(t, entity.TerminationQuotaReached, res.Termination)
	assert.Equal(t, 1, res.ActionsCompleted)
	assert.Equal(t, 5, res.ProfilesObserved)
	assert.Equal(t, 1, first[0].labelCalls)
	for _, c := range first[1:] {
		assert.Zero(t, c.labelCalls, "candidates after the ceiling must not be evaluated")
		assert.Zero(t, c.clicks)
	}
	assert.Zero(t, h.page.nextWaits, "pagination must not be attempted")
}

func TestRunActionCeilingIsNeverExceeded(t *testing.T) {
	page := func() [][]*fakeCard {
		var pages [][]*fakeCard
		for p := 0; p < 3; p++ {
			pages = append(pages, []*fakeCard{
				newCard(fmt.Sprintf("p%da", p), "Connect"),
				newCard(fmt.Sprintf("p%db", p), "Connect"),
				newCard(fmt.Sprintf("p%dc", p), "Connect"),
			})
		}
		return pages
	}

	for ceiling := 1; ceiling <= 11; ceiling++ {
		t.Run(fmt.Sprintf("ceiling %d", ceiling), func(t *testing.T) {
			h := newHarness(newFakePage(page()...))
			h.opts.MaxActions = ceiling

			res, err := h.run(t, context.Background())
			require.NoError(t, err)

			assert.LessOrEqual(t, res.ActionsCompleted, ceiling)
			assert.LessOrEqual(t, res.ActionsCompleted, res.ProfilesObserved)
			assert.Equal(t, min(ceiling, 9), res.ActionsCompleted)
		})
	}
}

func TestRunPageCeiling(t *testing.T) {
	var pages [][]*fakeCard
	for p := 0; p < 6; p++ {
		pages = append(pages, []*fakeCard{newCard("x", "Pending"), newCard("y", "Follow")})
	}

	for _, ceiling := range []int{1, 2, 5} {
		t.Run(fmt.Sprintf("ceiling %d", ceiling), func(t *testing.T) {
			h := newHarness(newFakePage(pages...))
			h.opts.MaxPages = ceiling

			res, err := h.run(t, context.Background())
			require.NoError(t, err)

			assert.Equal(t, ceiling, res.PagesVisited)
			assert.Equal(t, 2*ceiling, res.ProfilesObserved)
			assert.Equal(t, ceiling-1, h.page.nextWaits)
			assert.Equal(t, entity.TerminationPageLimitReached, res.Termination)
		})
	}
}

func TestRunNonPositiveCeilings(t *testing.T) {
	tests := []struct {
		name       string
		maxPages   int
		maxActions int
	}{
		{"no actions", 300, 0},
		{"no pages", 0, 15},
		{"negative", -1, -5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card := newCard("A", "Connect")
			h := newHarness(newFakePage([]*fakeCard{card}))
			h.opts.MaxPages = tt.maxPages
			h.opts.MaxActions = tt.maxActions

			res, err := h.run(t, context.Background())
			require.NoError(t, err)

			assert.Equal(t, entity.TerminationInvalidCeiling, res.Termination)
			assert.Zero(t, res.ProfilesObserved)
			assert.Zero(t, res.ActionsCompleted)
			assert.Zero(t, card.labelCalls)
			assert.Empty(t, h.page.navigations)
		})
	}
}

func TestRunWithoutSessionAuthenticates(t *testing.T) {
	h := newHarness(newFakePage([]*fakeCard{newCard("A", "Pending")}))
	h.sessions.session = nil
	h.opts.MaxPages = 1

	_, err := h.run(t, context.Background())
	require.NoError(t, err)

	sel := DefaultSelectors()
	assert.False(t, h.page.restored)
	assert.Equal(t, "me@example.com", h.page.typed[sel.LoginUsername])
	assert.Equal(t, "secret", h.page.typed[sel.LoginPassword])
	assert.Equal(t, 1, h.page.clicked(sel.LoginSubmit))
	assert.Contains(t, h.page.navigations, DefaultSite().LoginURL)

	require.Equal(t, 1, h.sessions.saves)
	require.Len(t, h.sessions.session, 1)
	assert.Equal(t, "fresh", h.sessions.session[0].Value)
}

func TestRunWithSessionSkipsLogin(t *testing.T) {
	h := newHarness(newFakePage([]*fakeCard{newCard("A", "Pending")}))
	h.opts.MaxPages = 1

	_, err := h.run(t, context.Background())
	require.NoError(t, err)

	assert.True(t, h.page.restored)
	assert.NotContains(t, h.page.navigations, DefaultSite().LoginURL)
	assert.Empty(t, h.page.typed)
	assert.Equal(t, 1, h.sessions.saves, "cookies are refreshed after the authentication check")
	assert.Equal(t, []string{DefaultSite().FeedURL, h.opts.SearchURL}, h.page.navigations)
}

func TestRunNoNextPage(t *testing.T) {
	h := newHarness(newFakePage([]*fakeCard{newCard("A", "Connect"), newCard("B", "Message")}))

	res, err := h.run(t, context.Background())
	require.NoError(t, err)

	assert.Equal(t, entity.TerminationNoNextPage, res.Termination)
	assert.Equal(t, 2, res.ProfilesObserved)
	assert.Equal(t, 1, res.ActionsCompleted)
	assert.Equal(t, 1, h.page.nextWaits)
}

func TestRunPaginationFailure(t *testing.T) {
	page := newFakePage([]*fakeCard{newCard("A", "Message")}, []*fakeCard{newCard("B", "Connect")})
	page.navErr = fmt.Errorf("%w: after clicking next", repository.ErrNavigationTimeout)
	h := newHarness(page)

	res, err := h.run(t, context.Background())
	require.NoError(t, err)

	assert.Equal(t, entity.TerminationPaginationFailed, res.Termination)
	assert.Equal(t, 1, res.PagesVisited)
	assert.Equal(t, 1, res.ProfilesObserved)
}

func TestRunPaginatesAcrossPages(t *testing.T) {
	h := newHarness(newFakePage(
		[]*fakeCard{newCard("A", "Connect"), newCard("B", "Message")},
		[]*fakeCard{newCard("C", "Connect"), newCard("D", "Connect"), newCard("E", "Pending")},
	))

	res, err := h.run(t, context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, res.PagesVisited)
	assert.Equal(t, 5, res.ProfilesObserved)
	assert.Equal(t, 3, res.ActionsCompleted)
	assert.Equal(t, entity.TerminationNoNextPage, res.Termination)
	assert.Equal(t, 2, h.page.scrolls)
	// one pause per action and one after the successful pagination
	assert.Len(t, h.sleeps, 4)
}

func TestRunWithNote(t *testing.T) {
	h := newHarness(newFakePage([]*fakeCard{newCard("Jane", "Connect")}))
	h.opts.MaxPages = 1
	h.opts.AddNote = true

	res, err := h.run(t, context.Background())
	require.NoError(t, err)

	sel := DefaultSelectors()
	assert.Equal(t, 1, res.ActionsCompleted)
	assert.Equal(t, 1, h.page.clicked(sel.AddNoteButton))
	assert.Equal(t, "Hi Jane, let's connect.", h.page.typed[sel.NoteInput])
	assert.Equal(t, 1, h.page.clicked(sel.SendNoteButton))
	assert.Zero(t, h.page.clicked(sel.SendButton))
}

func TestRunActionFailureSkipsCandidate(t *testing.T) {
	broken := newCard("A", "Connect")
	broken.clickErr = errBoom
	h := newHarness(newFakePage([]*fakeCard{broken, newCard("B", "Connect")}))
	h.opts.MaxPages = 1

	res, err := h.run(t, context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, res.ProfilesObserved)
	assert.Equal(t, 1, res.ActionsCompleted)
	assert.Equal(t, 1, res.Failures)
	require.Len(t, h.runs.attempts, 2)
	assert.Equal(t, entity.OutcomeFailed, h.runs.attempts[0].Status)
	assert.Equal(t, string(entity.FailUnknown), h.runs.attempts[0].Reason)
	assert.Equal(t, "click connect: boom", h.runs.attempts[0].Error)
	assert.Equal(t, entity.OutcomeConnected, h.runs.attempts[1].Status)
}

func TestRunConfirmationFailureIsNotCounted(t *testing.T) {
	page := newFakePage([]*fakeCard{newCard("A", "Connect")})
	page.clickErrs[DefaultSelectors().SendButton] = repository.ErrElementNotFound
	h := newHarness(page)
	h.opts.MaxPages = 1

	res, err := h.run(t, context.Background())
	require.NoError(t, err)

	assert.Zero(t, res.ActionsCompleted)
	assert.Equal(t, 1, res.Failures)
}

func TestRunMissingActionControlIsSkip(t *testing.T) {
	h := newHarness(newFakePage([]*fakeCard{newCard("A", ""), newCard("B", "Connect")}))
	h.opts.MaxPages = 1

	res, err := h.run(t, context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, res.ActionsCompleted)
	assert.Zero(t, res.Failures)
	require.Len(t, h.runs.attempts, 2)
	assert.Equal(t, entity.OutcomeSkipped, h.runs.attempts[0].Status)
	assert.Equal(t, string(entity.SkipNoActionControl), h.runs.attempts[0].Reason)
}

func TestRunSearchUnavailable(t *testing.T) {
	h := newHarness(newFakePage([]*fakeCard{}))

	res, err := h.run(t, context.Background())
	require.NoError(t, err)

	assert.Equal(t, entity.TerminationSearchUnavailable, res.Termination)
	assert.Zero(t, res.PagesVisited)
	assert.Zero(t, res.ProfilesObserved)
}

func TestRunEmptyLaterPageStillPaginates(t *testing.T) {
	h := newHarness(newFakePage(
		[]*fakeCard{newCard("A", "Message")},
		[]*fakeCard{},
		[]*fakeCard{newCard("B", "Connect")},
	))

	res, err := h.run(t, context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, res.PagesVisited)
	assert.Equal(t, 2, res.ProfilesObserved)
	assert.Equal(t, 1, res.ActionsCompleted)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	h := newHarness(newFakePage([]*fakeCard{newCard("A", "Connect")}))

	res, err := h.run(t, ctx)
	require.ErrorIs(t, err, context.Canceled)

	assert.Equal(t, entity.TerminationAborted, res.Termination)
	assert.Zero(t, res.ActionsCompleted)
	assert.False(t, res.FinishedAt.IsZero())
}

func TestRunRecordsHistory(t *testing.T) {
	h := newHarness(newFakePage([]*fakeCard{newCard("Ann", "Message"), newCard("Bob", "Connect"), newCard("Cid", "Pending")}))
	h.opts.MaxPages = 1

	res, err := h.run(t, context.Background())
	require.NoError(t, err)

	require.Len(t, h.runs.runs, 2, "a row at start and the summary at the end")
	final := h.runs.runs[1]
	assert.Equal(t, "run-1", final.ID)
	assert.Equal(t, res.ProfilesObserved, final.ProfilesObserved)
	assert.Equal(t, res.ActionsCompleted, final.ActionsCompleted)
	assert.Equal(t, string(entity.TerminationPageLimitReached), final.Termination)
	assert.False(t, final.FinishedAt.IsZero())

	require.Len(t, h.runs.attempts, 3)
	assert.Equal(t, "Bob", h.runs.attempts[1].FirstName)
	assert.Equal(t, "https://www.linkedin.com/in/Bob/", h.runs.attempts[1].ProfileURL)
	assert.Equal(t, 1, h.runs.attempts[1].Position)
	assert.Equal(t, 1, h.runs.attempts[1].Page)
}

func TestRunHistoryFailuresAreSwallowed(t *testing.T) {
	h := newHarness(newFakePage([]*fakeCard{newCard("Bob", "Connect")}))
	h.runs.err = errBoom
	h.opts.MaxPages = 1

	res, err := h.run(t, context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.ActionsCompleted)
}

func TestRunClassifiesActionFailures(t *testing.T) {
	tests := []struct {
		name     string
		clickErr error
		sendErr  error
		want     entity.Reason
	}{
		{
			name:     "control vanished",
			clickErr: fmt.Errorf("%w: click div button", repository.ErrElementNotFound),
			want:     entity.FailElementNotFound,
		},
		{
			name:    "confirmation timed out",
			sendErr: fmt.Errorf("%w: after clicking send", repository.ErrNavigationTimeout),
			want:    entity.FailTimeout,
		},
		{
			name:     "deadline",
			clickErr: context.DeadlineExceeded,
			want:     entity.FailTimeout,
		},
		{
			name:     "anything else",
			clickErr: errBoom,
			want:     entity.FailUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card := newCard("Ann", "Connect")
			card.clickErr = tt.clickErr
			page := newFakePage([]*fakeCard{card})
			if tt.sendErr != nil {
				page.clickErrs[DefaultSelectors().SendButton] = tt.sendErr
			}
			h := newHarness(page)
			h.opts.MaxPages = 1

			res, err := h.run(t, context.Background())
			require.NoError(t, err)

			assert.Equal(t, 1, res.Failures)
			require.Len(t, h.runs.attempts, 1)
			assert.Equal(t, entity.OutcomeFailed, h.runs.attempts[0].Status)
			assert.Equal(t, string(tt.want), h.runs.attempts[0].Reason)
			assert.NotEmpty(t, h.runs.attempts[0].Error)
		})
	}
}

func TestRunActionControlErrorIsFailure(t *testing.T) {
	page := newFakePage([]*fakeCard{newCard("Ann", "Connect")})
	h := newHarness(page)
	h.opts.MaxPages = 1
	page.pages[0][0].labelErr = fmt.Errorf("%w: read control", repository.ErrNavigationTimeout)

	res, err := h.run(t, context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, res.Failures)
	assert.Zero(t, res.ActionsCompleted)
	require.Len(t, h.runs.attempts, 1)
	assert.Equal(t, string(entity.FailTimeout), h.runs.attempts[0].Reason)
}
