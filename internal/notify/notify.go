// Package notify drives the staged notification workflow: survey invitations
// for screened candidates and interview invitations for prioritized ones.
// Delivery is delegated to a Transport and treated as at-least-once.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/obrienhr/cv-triage/internal/candidate"
	"github.com/obrienhr/cv-triage/internal/utils"
)

// Kind selects the notification template.
type Kind string

const (
	KindSurvey    Kind = "survey"
	KindInterview Kind = "interview"
)

var (
	// ErrTransport marks a delivery failure after all retries. The attempt
	// is recorded against the candidate; the stage is never rolled back.
	ErrTransport = errors.New("notification transport failed")
	// ErrNoRecipient marks a candidate without an extracted email address.
	ErrNoRecipient = errors.New("candidate has no email address")
	// ErrPrecondition marks a notification whose stage preconditions do
	// not hold. Callers filter candidates first, so hitting this is a bug.
	ErrPrecondition = errors.New("notification precondition not met")
)

// Message is one outbound notification.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Transport delivers messages. Implementations must honor the context
// deadline.
type Transport interface {
	Send(ctx context.Context, msg Message) error
}

const (
	defaultMaxRetries = 2
	defaultBackoff    = 2 * time.Second
	defaultTimeout    = 10 * time.Second
)

// Notifier builds and dispatches notifications with bounded retries.
type Notifier struct {
	transport  Transport
	templates  *TemplateSet
	logger     *zap.Logger
	maxRetries int
	backoff    time.Duration
	timeout    time.Duration
	details    Details
}

// Details carries the campaign values rendered into notification bodies.
type Details struct {
	InterviewDate string
	InterviewTime string
	Location      string
	SurveyURL     string
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithRetries bounds the number of retries after the first attempt.
func WithRetries(n int) Option {
	return func(nt *Notifier) {
		if n >= 0 {
			nt.maxRetries = n
		}
	}
}

// WithBackoff sets the base delay between attempts.
func WithBackoff(d time.Duration) Option {
	return func(nt *Notifier) {
		if d > 0 {
			nt.backoff = d
		}
	}
}

// WithTimeout sets the per-attempt delivery timeout.
func WithTimeout(d time.Duration) Option {
	return func(nt *Notifier) {
		if d > 0 {
			nt.timeout = d
		}
	}
}

// New builds a Notifier around the given transport and templates.
func New(transport Transport, templates *TemplateSet, details Details, logger *zap.Logger, opts ...Option) *Notifier {
	n := &Notifier{
		transport:  transport,
		templates:  templates,
		logger:     logger,
		maxRetries: defaultMaxRetries,
		backoff:    defaultBackoff,
		timeout:    defaultTimeout,
		details:    details,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Notify sends one notification of the given kind to the candidate. Survey
// notifications require passed screening; interview notifications require a
// High or Medium priority. Transport failures are retried a bounded number of
// times with backoff and then reported as ErrTransport.
func (n *Notifier) Notify(ctx context.Context, c *candidate.Candidate, kind Kind) error {
	if err := checkPreconditions(c, kind); err != nil {
		return err
	}

	to := strings.TrimSpace(c.Fields.Email)
	if to == "" {
		return fmt.Errorf("%w: %s", ErrNoRecipient, c.ID)
	}

	msg, err := n.templates.Render(kind, TemplateData{
		Name:          displayName(c),
		Priority:      string(c.Priority),
		InterviewDate: n.details.InterviewDate,
		InterviewTime: n.details.InterviewTime,
		Location:      n.details.Location,
		SurveyURL:     n.details.SurveyURL,
	})
	if err != nil {
		return fmt.Errorf("rendering %s notification for %s: %w", kind, c.ID, err)
	}
	msg.To = to

	var lastErr error
	for attempt := 1; attempt <= n.maxRetries+1; attempt++ {
		sendCtx, cancel := context.WithTimeout(ctx, n.timeout)
		lastErr = n.transport.Send(sendCtx, msg)
		cancel()

		if lastErr == nil {
			n.logger.Info("notification sent",
				zap.String("kind", string(kind)),
				zap.String("candidate_id", c.ID),
				zap.String("to", to),
				zap.Int("attempt", attempt),
			)
			return nil
		}

		n.logger.Warn("notification attempt failed",
			zap.String("kind", string(kind)),
			zap.String("candidate_id", c.ID),
			zap.Int("attempt", attempt),
			zap.Error(lastErr),
		)

		if attempt <= n.maxRetries {
			if err := utils.WaitFor(ctx, utils.Backoff(n.backoff, attempt)); err != nil {
				return fmt.Errorf("%w: %v", ErrTransport, err)
			}
		}
	}

	return fmt.Errorf("%w: %v", ErrTransport, lastErr)
}

func checkPreconditions(c *candidate.Candidate, kind Kind) error {
	switch kind {
	case KindSurvey:
		if !c.ScreeningPassed {
			return fmt.Errorf("%w: survey requires passed screening (%s)", ErrPrecondition, c.ID)
		}
	case KindInterview:
		if c.Priority != candidate.PriorityHigh && c.Priority != candidate.PriorityMedium {
			return fmt.Errorf("%w: interview requires High or Medium priority (%s is %s)", ErrPrecondition, c.ID, c.Priority)
		}
	default:
		return fmt.Errorf("%w: unknown notification kind %q", ErrPrecondition, kind)
	}
	return nil
}

func displayName(c *candidate.Candidate) string {
	if c.Fields.Name != "" && c.Fields.Name != candidate.Unknown {
		return c.Fields.Name
	}
	return c.ID
}

// Simulated is the default transport: it records delivery in the log without
// touching the network, mirroring the dry-run behavior of the campaign.
type Simulated struct {
	logger *zap.Logger
}

func NewSimulated(logger *zap.Logger) *Simulated {
	return &Simulated{logger: logger}
}

func (s *Simulated) Send(_ context.Context, msg Message) error {
	s.logger.Info("[simulation] email sent",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
	)
	return nil
}
