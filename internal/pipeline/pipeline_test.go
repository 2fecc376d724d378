package pipeline

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/obrienhr/cv-triage/internal/candidate"
	"github.com/obrienhr/cv-triage/internal/notify"
	"github.com/obrienhr/cv-triage/internal/screening"
	"github.com/obrienhr/cv-triage/internal/scoring"
	"github.com/obrienhr/cv-triage/internal/survey"
)

type recordingTransport struct {
	sent []notify.Message
}

func (r *recordingTransport) Send(_ context.Context, msg notify.Message) error {
	r.sent = append(r.sent, msg)
	return nil
}

const strongResume = `Jane Byrne
jane@example.com
086 555 1234

EXPERIENCE
Fast food crew member, customer service and cashier duties.
Full availability. Irish citizen. HACCP certified.
`

const weakResume = `Bob Smith
bob@example.com

EXPERIENCE
Warehouse operative, forklift certified.
`

func testDeps(t *testing.T, transport notify.Transport) Deps {
	t.Helper()

	templates, err := notify.ParseTemplates(notify.Overrides{})
	if err != nil {
		t.Fatalf("parsing templates: %v", err)
	}

	return Deps{
		Logger:     zap.NewNop(),
		Screener:   screening.New([]string{"customer service", "fast food", "cashier"}, 2),
		Simulator:  survey.New(1, survey.WithResponseRate(0)),
		Weights:    scoring.DefaultWeights(),
		Thresholds: scoring.DefaultThresholds(),
		Notifier: notify.New(transport, templates, notify.Details{
			InterviewDate: "01/09/2026",
			InterviewTime: "10:00 AM",
			Location:      "123 Main Street",
			SurveyURL:     "https://forms.example.com/survey",
		}, zap.NewNop(), notify.WithBackoff(time.Millisecond)),
	}
}

func allStages() []Stage {
	return []Stage{
		NewExtract(),
		NewScreen(),
		NewSurveyInvite(),
		NewSurveyCollect(),
		NewClassify(),
		NewInterviewInvite(),
	}
}

func ingested(id, raw string) *candidate.Candidate {
	c := candidate.New(id, id+".txt")
	c.RawText = raw
	return c
}

func TestFullPipelineRun(t *testing.T) {
	transport := &recordingTransport{}
	deps := testDeps(t, transport)

	cs := &candidate.Candidates{}
	cs.Add(ingested("jane_cv", strongResume))
	cs.Add(ingested("bob_cv", weakResume))

	if err := Run(context.Background(), deps, allStages(), cs); err != nil {
		t.Fatalf("pipeline run failed: %v", err)
	}

	jane := cs.FindByID("jane_cv")
	if !jane.ScreeningPassed {
		t.Fatalf("expected jane to pass screening, hits=%d", jane.KeywordHits)
	}
	// relevance 2 + hits 3 + full availability 4 + irish 4 + haccp 3 = 16
	if jane.Score != 16 {
		t.Fatalf("expected jane score 16, got %d", jane.Score)
	}
	if jane.Priority != candidate.PriorityHigh {
		t.Fatalf("expected High priority, got %s", jane.Priority)
	}
	if jane.Stage != candidate.StageNotified {
		t.Fatalf("expected jane notified, got %s", jane.Stage)
	}
	if !jane.SurveySent || !jane.InterviewSent {
		t.Fatalf("expected both notifications for jane: survey=%v interview=%v", jane.SurveySent, jane.InterviewSent)
	}

	bob := cs.FindByID("bob_cv")
	if bob.ScreeningPassed {
		t.Fatalf("expected bob to fail screening")
	}
	if bob.Priority != candidate.PriorityUnscreened {
		t.Fatalf("expected Unscreened for bob, got %s", bob.Priority)
	}
	if bob.Stage != candidate.StageClassified {
		t.Fatalf("expected bob to end classified, got %s", bob.Stage)
	}
	if bob.SurveySent || bob.InterviewSent {
		t.Fatalf("unscreened candidate must never be notified")
	}

	// jane: survey + interview, bob: nothing.
	if len(transport.sent) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(transport.sent))
	}
}

func TestPipelineRerunIsIdempotent(t *testing.T) {
	transport := &recordingTransport{}
	deps := testDeps(t, transport)

	cs := &candidate.Candidates{}
	cs.Add(ingested("jane_cv", strongResume))

	if err := Run(context.Background(), deps, allStages(), cs); err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	jane := cs.FindByID("jane_cv")
	scoreAfterFirst := jane.Score
	sentAfterFirst := len(transport.sent)

	if err := Run(context.Background(), deps, allStages(), cs); err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	if jane.Score != scoreAfterFirst {
		t.Fatalf("score changed on rerun: %d vs %d", jane.Score, scoreAfterFirst)
	}
	if jane.Stage != candidate.StageNotified {
		t.Fatalf("stage regressed on rerun: %s", jane.Stage)
	}
	if len(transport.sent) != sentAfterFirst {
		t.Fatalf("rerun sent duplicate notifications: %d vs %d", len(transport.sent), sentAfterFirst)
	}
}

func TestIngestionFailureStaysIngestedAndUnscreened(t *testing.T) {
	transport := &recordingTransport{}
	deps := testDeps(t, transport)

	failed := candidate.New("corrupt_cv", "corrupt_cv.pdf")
	failed.Err = "text extraction unavailable: corrupt document"

	cs := &candidate.Candidates{}
	cs.Add(failed)
	cs.Add(ingested("jane_cv", strongResume))

	if err := Run(context.Background(), deps, allStages(), cs); err != nil {
		t.Fatalf("pipeline run failed: %v", err)
	}

	if failed.Stage != candidate.StageIngested {
		t.Fatalf("failed record must stay ingested, got %s", failed.Stage)
	}
	if failed.Priority != candidate.PriorityUnscreened {
		t.Fatalf("failed record must stay unscreened, got %s", failed.Priority)
	}

	// The failure never blocks the rest of the batch.
	if cs.FindByID("jane_cv").Stage != candidate.StageNotified {
		t.Fatalf("healthy record blocked by failed one")
	}
}

func TestDisabledStageIsSkipped(t *testing.T) {
	transport := &recordingTransport{}
	deps := testDeps(t, transport)

	stages := allStages()
	DisableByName(stages, "survey_invite", "declined by operator")
	DisableByName(stages, "interview_invite", "declined by operator")

	cs := &candidate.Candidates{}
	cs.Add(ingested("jane_cv", strongResume))

	if err := Run(context.Background(), deps, stages, cs); err != nil {
		t.Fatalf("pipeline run failed: %v", err)
	}

	if len(transport.sent) != 0 {
		t.Fatalf("disabled notification stages still sent %d messages", len(transport.sent))
	}

	jane := cs.FindByID("jane_cv")
	if jane.Priority != candidate.PriorityHigh {
		t.Fatalf("classification must still run, got %s", jane.Priority)
	}
	if jane.Stage != candidate.StageClassified {
		t.Fatalf("expected classified stage, got %s", jane.Stage)
	}
}

func TestNonResponderStillClassified(t *testing.T) {
	transport := &recordingTransport{}
	deps := testDeps(t, transport) // response rate 0: nobody responds

	cs := &candidate.Candidates{}
	cs.Add(ingested("jane_cv", strongResume))

	if err := Run(context.Background(), deps, allStages(), cs); err != nil {
		t.Fatalf("pipeline run failed: %v", err)
	}

	jane := cs.FindByID("jane_cv")
	if jane.Survey != nil {
		t.Fatalf("expected absent survey for non-responder")
	}
	if jane.Priority == candidate.PriorityUnscreened {
		t.Fatalf("non-responder must still be classified")
	}
}
