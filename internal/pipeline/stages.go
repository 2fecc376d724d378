package pipeline

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/obrienhr/cv-triage/internal/candidate"
	"github.com/obrienhr/cv-triage/internal/extract"
	"github.com/obrienhr/cv-triage/internal/logger"
	"github.com/obrienhr/cv-triage/internal/notify"
	"github.com/obrienhr/cv-triage/internal/scoring"
)

const rawTextLogLimit = 120

type extractStage struct{ base }

// NewExtract creates the stage turning raw text into structured fields.
// Records that failed ingestion stay at the ingested stage and are skipped.
func NewExtract() Stage { return &extractStage{} }

func (s *extractStage) Name() string { return "extract" }

func (s *extractStage) Apply(_ context.Context, deps Deps, cs *candidate.Candidates) (Step, error) {
	step := Step{Total: cs.Len()}

	for _, c := range cs.Items {
		if c.Failed() || c.Stage >= candidate.StageExtracted {
			step.Skipped++
			continue
		}

		c.Fields = extract.Extract(c.RawText)
		c.Advance(candidate.StageExtracted)
		step.Processed++

		deps.Logger.Debug("extracted fields",
			zap.String("candidate_id", c.ID),
			zap.String("name", c.Fields.Name),
			zap.String("email", c.Fields.Email),
			zap.String("text", logger.TruncateForLog(c.RawText, rawTextLogLimit)),
		)
	}

	return step, nil
}

type screenStage struct{ base }

// NewScreen creates the keyword gate stage.
func NewScreen() Stage { return &screenStage{} }

func (s *screenStage) Name() string { return "screen" }

func (s *screenStage) Apply(_ context.Context, deps Deps, cs *candidate.Candidates) (Step, error) {
	step := Step{Total: cs.Len()}

	for _, c := range cs.Items {
		if c.Stage < candidate.StageExtracted || c.Stage >= candidate.StageScreened {
			step.Skipped++
			continue
		}

		res := deps.Screener.Screen(c.RawText)
		c.KeywordHits = res.Hits
		c.FoundKeywords = res.Found
		c.ScreeningPassed = res.Passed
		c.Advance(candidate.StageScreened)
		step.Processed++

		deps.Logger.Debug("screened candidate",
			zap.String("candidate_id", c.ID),
			zap.Int("hits", res.Hits),
			zap.Bool("passed", res.Passed),
		)
	}

	return step, nil
}

type surveyInviteStage struct{ base }

// NewSurveyInvite creates the stage sending survey invitations to screened
// candidates. Failures are recorded per record and never abort the stage.
func NewSurveyInvite() Stage { return &surveyInviteStage{} }

func (s *surveyInviteStage) Name() string { return "survey_invite" }

func (s *surveyInviteStage) Apply(ctx context.Context, deps Deps, cs *candidate.Candidates) (Step, error) {
	step := Step{Total: cs.Len()}

	for _, c := range cs.Items {
		if !c.ScreeningPassed || c.SurveySent || c.Stage >= candidate.StageSurveyed {
			step.Skipped++
			continue
		}

		if err := deps.Notifier.Notify(ctx, c, notify.KindSurvey); err != nil {
			recordNotifyFailure(deps.Logger, c, err, &step)
			continue
		}

		c.SurveySent = true
		step.Processed++
	}

	return step, nil
}

type surveyCollectStage struct{ base }

// NewSurveyCollect creates the stage attaching survey responses to screened
// candidates. Non-responders advance with no response and are scored from
// resume hints only.
func NewSurveyCollect() Stage { return &surveyCollectStage{} }

func (s *surveyCollectStage) Name() string { return "survey_collect" }

func (s *surveyCollectStage) Apply(_ context.Context, deps Deps, cs *candidate.Candidates) (Step, error) {
	step := Step{Total: cs.Len()}

	for _, c := range cs.Items {
		if !c.ScreeningPassed || c.Stage >= candidate.StageSurveyed {
			step.Skipped++
			continue
		}

		resp, ok := deps.Simulator.Simulate(c)
		if ok {
			c.Survey = resp
		}
		c.Advance(candidate.StageSurveyed)
		step.Processed++

		deps.Logger.Debug("survey collected",
			zap.String("candidate_id", c.ID),
			zap.Bool("responded", ok),
		)
	}

	return step, nil
}

type classifyStage struct{ base }

// NewClassify creates the scoring and classification stage. Classification
// is terminal: already-classified records are never recomputed, and records
// that failed screening are always Unscreened regardless of partial score.
func NewClassify() Stage { return &classifyStage{} }

func (s *classifyStage) Name() string { return "classify" }

func (s *classifyStage) Apply(_ context.Context, deps Deps, cs *candidate.Candidates) (Step, error) {
	step := Step{Total: cs.Len()}

	for _, c := range cs.Items {
		if c.Stage < candidate.StageScreened || c.Stage >= candidate.StageClassified {
			step.Skipped++
			continue
		}

		c.Score = deps.Weights.Score(c.Fields, c.Survey, c.KeywordHits, c.ScreeningPassed)
		c.Priority = scoring.Classify(c.Score, c.ScreeningPassed, deps.Thresholds)
		c.Advance(candidate.StageClassified)
		step.Processed++

		deps.Logger.Info("candidate classified",
			zap.String("candidate_id", c.ID),
			zap.Int("score", c.Score),
			zap.String("priority", string(c.Priority)),
		)
	}

	return step, nil
}

type interviewInviteStage struct{ base }

// NewInterviewInvite creates the stage inviting High and Medium priority
// candidates to an interview. Low and Unscreened candidates are never
// invited.
func NewInterviewInvite() Stage { return &interviewInviteStage{} }

func (s *interviewInviteStage) Name() string { return "interview_invite" }

func (s *interviewInviteStage) Apply(ctx context.Context, deps Deps, cs *candidate.Candidates) (Step, error) {
	step := Step{Total: cs.Len()}

	for _, c := range cs.Items {
		if c.Stage != candidate.StageClassified || c.InterviewSent {
			step.Skipped++
			continue
		}
		if c.Priority != candidate.PriorityHigh && c.Priority != candidate.PriorityMedium {
			step.Skipped++
			continue
		}

		if err := deps.Notifier.Notify(ctx, c, notify.KindInterview); err != nil {
			recordNotifyFailure(deps.Logger, c, err, &step)
			// The attempt was made and recorded; it still completes the
			// record's journey through the pipeline.
			c.Advance(candidate.StageNotified)
			continue
		}

		c.InterviewSent = true
		c.Advance(candidate.StageNotified)
		step.Processed++
	}

	return step, nil
}

// recordNotifyFailure annotates the candidate without failing the batch. A
// missing email is an expected gap, a transport failure an attempted send.
func recordNotifyFailure(log *zap.Logger, c *candidate.Candidate, err error, step *Step) {
	step.Errored++

	switch {
	case errors.Is(err, notify.ErrNoRecipient):
		log.Warn("no email for candidate", zap.String("candidate_id", c.ID))
	default:
		log.Warn("notification failed",
			zap.String("candidate_id", c.ID),
			zap.Error(err),
		)
	}

	if c.Err == "" {
		c.Err = err.Error()
	}
}
