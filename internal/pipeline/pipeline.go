// Package pipeline runs the candidate processing state machine. Each stage
// advances records monotonically and is safe to re-run: already-advanced or
// failed records are skipped, never regressed.
package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/obrienhr/cv-triage/internal/candidate"
	"github.com/obrienhr/cv-triage/internal/notify"
	"github.com/obrienhr/cv-triage/internal/screening"
	"github.com/obrienhr/cv-triage/internal/scoring"
	"github.com/obrienhr/cv-triage/internal/survey"
)

// Stage is a single processing step applied to the whole batch.
type Stage interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Apply(ctx context.Context, deps Deps, cs *candidate.Candidates) (Step, error)
}

// Deps aggregates dependencies shared across all stages.
type Deps struct {
	Logger     *zap.Logger
	Screener   *screening.Screener
	Simulator  *survey.Simulator
	Weights    *scoring.Weights
	Thresholds scoring.Thresholds
	Notifier   *notify.Notifier
}

// Step describes the result of executing one stage over the batch.
type Step struct {
	Total     int
	Processed int
	Skipped   int
	Errored   int
}

// Run executes the supplied stages sequentially. A stage error is a batch
// configuration problem and aborts the run; per-candidate failures are
// recorded on the records and counted, never fatal.
func Run(ctx context.Context, deps Deps, stages []Stage, cs *candidate.Candidates) error {
	for _, stage := range stages {
		if !stage.IsEnabled() {
			deps.Logger.Info("stage disabled", zap.String("name", stage.Name()))
			continue
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		step, err := stage.Apply(ctx, deps, cs)
		if err != nil {
			return fmt.Errorf("%s: %w", stage.Name(), err)
		}

		deps.Logger.Info("stage completed",
			zap.String("name", stage.Name()),
			zap.Int("total", step.Total),
			zap.Int("processed", step.Processed),
			zap.Int("skipped", step.Skipped),
			zap.Int("errored", step.Errored),
		)
	}

	return nil
}

// DisableByName marks a stage with the provided name as disabled while
// keeping it in the list.
func DisableByName(stages []Stage, name, reason string) {
	for _, stage := range stages {
		if stage.Name() == name {
			stage.Disable(reason)
		}
	}
}

// base carries the enable/disable bookkeeping shared by all stages.
type base struct {
	disabled bool
	reason   string
}

func (b *base) Disable(reason string) {
	b.disabled = true
	b.reason = reason
}

func (b *base) IsEnabled() bool { return !b.disabled }
