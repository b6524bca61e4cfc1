package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/user/linkedin-connector/internal/entity"
	"github.com/user/linkedin-connector/internal/repository"
	"github.com/user/linkedin-connector/pkg/metrics"
)

// Reporter emits progress and result records of a run: log lines, prometheus
// counters, the live progress snapshot and, when configured, run history rows.
// Nothing it does can fail the run.
type Reporter struct {
	runID     string
	searchURL string
	logger    *slog.Logger
	runs      repository.RunRepository // nil disables history
	progress  *Progress
}

// NewReporter creates a reporter for one run. runs may be nil.
func NewReporter(runID, searchURL string, logger *slog.Logger, runs repository.RunRepository) *Reporter {
	metrics.Init()
	return &Reporter{
		runID:     runID,
		searchURL: searchURL,
		logger:    logger.With("run_id", runID),
		runs:      runs,
		progress:  NewProgress(runID),
	}
}

func (r *Reporter) RunID() string { return r.runID }

func (r *Reporter) Progress() *Progress { return r.progress }

// Logger returns the run-scoped logger.
func (r *Reporter) Logger() *slog.Logger { return r.logger }

// Transition records a driver state change.
func (r *Reporter) Transition(state string, page int, res entity.RunResult) {
	r.progress.update(state, page, res)
	r.logger.Debug("State changed", "state", state, "page", page)
}

// Enter records a state change that does not touch the counters.
func (r *Reporter) Enter(state string) {
	r.progress.setState(state)
}

// Start records the beginning of the run.
func (r *Reporter) Start(ctx context.Context, res entity.RunResult) {
	r.logger.Info("Starting LinkedIn bot", "search_url", r.searchURL)
	r.progress.update(StateInit, 0, res)
	r.saveRun(ctx, res)
}

// PageLoaded records the candidates enumerated on a page.
func (r *Reporter) PageLoaded(ctx context.Context, page, maxPages, candidates int) {
	metrics.PagesVisited.Inc()
	metrics.ProfilesObserved.Add(float64(candidates))
	r.logger.InfoContext(ctx, "Found profiles", "page", page, "max_pages", maxPages, "count", candidates)
}

// Outcome records the result of one candidate evaluation.
func (r *Reporter) Outcome(ctx context.Context, c entity.Candidate, o entity.Outcome) {
	metrics.ActionsTotal.WithLabelValues(string(o.Status), string(o.Reason)).Inc()

	switch o.Status {
	case entity.OutcomeConnected:
		r.logger.InfoContext(ctx, "Connection request sent", "profile", c.Subtitle, "name", c.FullName, "url", c.ProfileURL)
	case entity.OutcomeSkipped:
		r.logger.InfoContext(ctx, "Skipping profile", "profile", c.Subtitle, "reason", string(o.Reason), "button", c.ActionLabel, "url", c.ProfileURL)
	case entity.OutcomeFailed:
		r.logger.ErrorContext(ctx, "Error while connecting to a person", "profile", c.Subtitle, "reason", string(o.Reason), "url", c.ProfileURL, "error", o.Err)
	}

	if r.runs == nil {
		return
	}
	attempt := &entity.ConnectionAttempt{
		RunID:       r.runID,
		Page:        c.Page,
		Position:    c.Index,
		Subtitle:    c.Subtitle,
		FirstName:   c.FirstName,
		ProfileURL:  c.ProfileURL,
		Status:      o.Status,
		Reason:      string(o.Reason),
		AttemptedAt: time.Now(),
	}
	if o.Err != nil {
		attempt.Error = o.Err.Error()
	}
	if err := r.runs.SaveAttempt(context.WithoutCancel(ctx), attempt); err != nil {
		r.logger.Warn("Failed to record connection attempt", "error", err)
	}
}

// Summary records the final counters. It is called exactly once per run.
func (r *Reporter) Summary(ctx context.Context, res entity.RunResult) {
	metrics.RunsTotal.WithLabelValues(string(res.Termination)).Inc()
	r.progress.update(StateTerminated, res.PagesVisited, res)

	r.logger.Info("Finishing script execution",
		"termination", string(res.Termination),
		"pages_visited", res.PagesVisited,
		"duration", res.FinishedAt.Sub(res.StartedAt).Round(time.Second),
	)
	r.logger.Info("Profiles viewed", "count", res.ProfilesObserved)
	r.logger.Info("Profiles connected", "count", res.ActionsCompleted)

	r.saveRun(ctx, res)
}

func (r *Reporter) saveRun(ctx context.Context, res entity.RunResult) {
	if r.runs == nil {
		return
	}
	record := &entity.RunRecord{
		ID:               r.runID,
		SearchURL:        r.searchURL,
		ProfilesObserved: res.ProfilesObserved,
		ActionsCompleted: res.ActionsCompleted,
		PagesVisited:     res.PagesVisited,
		Failures:         res.Failures,
		Termination:      string(res.Termination),
		StartedAt:        res.StartedAt,
		FinishedAt:       res.FinishedAt,
	}
	if err := r.runs.SaveRun(context.WithoutCancel(ctx), record); err != nil {
		r.logger.Warn("Failed to record run", "error", err)
	}
}
