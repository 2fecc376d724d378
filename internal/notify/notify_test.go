package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/obrienhr/cv-triage/internal/candidate"
)

type stubTransport struct {
	failures int
	calls    int
	last     Message
}

func (s *stubTransport) Send(_ context.Context, msg Message) error {
	s.calls++
	s.last = msg
	if s.calls <= s.failures {
		return errors.New("connection refused")
	}
	return nil
}

func newNotifier(t *testing.T, transport Transport, opts ...Option) *Notifier {
	t.Helper()

	templates, err := ParseTemplates(Overrides{})
	if err != nil {
		t.Fatalf("parsing templates: %v", err)
	}

	details := Details{
		InterviewDate: "01/09/2026",
		InterviewTime: "10:00 AM",
		Location:      "123 Main Street",
		SurveyURL:     "https://forms.example.com/survey",
	}

	opts = append([]Option{WithBackoff(time.Millisecond), WithTimeout(time.Second)}, opts...)
	return New(transport, templates, details, zap.NewNop(), opts...)
}

func screenedCandidate() *candidate.Candidate {
	c := candidate.New("jane_cv", "jane_cv.pdf")
	c.Fields.Name = "Jane Byrne"
	c.Fields.Email = "jane@example.com"
	c.ScreeningPassed = true
	c.Priority = candidate.PriorityHigh
	return c
}

func TestNotifySurveyRendersTemplate(t *testing.T) {
	transport := &stubTransport{}
	n := newNotifier(t, transport)

	if err := n.Notify(context.Background(), screenedCandidate(), KindSurvey); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if transport.last.To != "jane@example.com" {
		t.Fatalf("unexpected recipient: %q", transport.last.To)
	}
	if !strings.Contains(transport.last.Body, "Jane Byrne") {
		t.Fatalf("body does not greet candidate: %q", transport.last.Body)
	}
	if !strings.Contains(transport.last.Body, "https://forms.example.com/survey") {
		t.Fatalf("body does not carry survey link: %q", transport.last.Body)
	}
}

func TestNotifyInterviewIncludesDetails(t *testing.T) {
	transport := &stubTransport{}
	n := newNotifier(t, transport)

	if err := n.Notify(context.Background(), screenedCandidate(), KindInterview); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	body := transport.last.Body
	for _, want := range []string{"01/09/2026", "10:00 AM", "123 Main Street", "High"} {
		if !strings.Contains(body, want) {
			t.Fatalf("interview body missing %q: %q", want, body)
		}
	}
}

func TestNotifyRetriesThenSucceeds(t *testing.T) {
	transport := &stubTransport{failures: 2}
	n := newNotifier(t, transport, WithRetries(2))

	if err := n.Notify(context.Background(), screenedCandidate(), KindSurvey); err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if transport.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", transport.calls)
	}
}

func TestNotifyBoundedRetriesThenTransportError(t *testing.T) {
	transport := &stubTransport{failures: 10}
	n := newNotifier(t, transport, WithRetries(1))

	err := n.Notify(context.Background(), screenedCandidate(), KindSurvey)
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
	if transport.calls != 2 {
		t.Fatalf("expected 2 attempts, got %d", transport.calls)
	}
}

func TestNotifyPreconditions(t *testing.T) {
	n := newNotifier(t, &stubTransport{})

	unscreened := screenedCandidate()
	unscreened.ScreeningPassed = false
	if err := n.Notify(context.Background(), unscreened, KindSurvey); !errors.Is(err, ErrPrecondition) {
		t.Fatalf("expected precondition error for unscreened survey, got %v", err)
	}

	low := screenedCandidate()
	low.Priority = candidate.PriorityLow
	if err := n.Notify(context.Background(), low, KindInterview); !errors.Is(err, ErrPrecondition) {
		t.Fatalf("expected precondition error for Low interview, got %v", err)
	}
}

func TestNotifyMissingEmail(t *testing.T) {
	transport := &stubTransport{}
	n := newNotifier(t, transport)

	c := screenedCandidate()
	c.Fields.Email = ""

	if err := n.Notify(context.Background(), c, KindSurvey); !errors.Is(err, ErrNoRecipient) {
		t.Fatalf("expected ErrNoRecipient, got %v", err)
	}
	if transport.calls != 0 {
		t.Fatalf("transport must not be called without a recipient")
	}
}

func TestNotifyFallsBackToIDWhenNameUnknown(t *testing.T) {
	transport := &stubTransport{}
	n := newNotifier(t, transport)

	c := screenedCandidate()
	c.Fields.Name = candidate.Unknown

	if err := n.Notify(context.Background(), c, KindSurvey); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(transport.last.Body, "jane_cv") {
		t.Fatalf("expected id fallback in greeting: %q", transport.last.Body)
	}
}

func TestParseTemplatesRejectsMalformedOverride(t *testing.T) {
	if _, err := ParseTemplates(Overrides{SurveyBody: "{{.Name"}); err == nil {
		t.Fatalf("expected parse error for malformed template")
	}
}
