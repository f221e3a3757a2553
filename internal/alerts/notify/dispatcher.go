package notify

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	alerts "github.com/G-OrdiaD/GreenhouseSolution/internal/alerts/domain"
	"github.com/G-OrdiaD/GreenhouseSolution/internal/observability/metrics"
	operators "github.com/G-OrdiaD/GreenhouseSolution/internal/operators/domain"
)

// ReasonTimeout marks a recipient send abandoned after the per-send timeout.
const ReasonTimeout = "timeout"

// RecipientReader resolves the current notification recipients.
type RecipientReader interface {
	ListResponsible(ctx context.Context) ([]operators.Recipient, error)
}

// Outcome is the delivery result for one recipient.
type Outcome struct {
	Recipient operators.Recipient `json:"recipient"`
	Delivered bool                `json:"delivered"`
	Reason    string              `json:"reason,omitempty"`
}

// Dispatcher fans an alert out to every responsible-party operator through
// the messaging gateway. Delivery failures are strictly local: they are
// logged and reported in the outcome set, never returned to the ingest path.
type Dispatcher struct {
	recipients  RecipientReader
	channel     Channel
	template    *Template
	logger      *log.Logger
	maxInFlight int
	sendTimeout time.Duration
}

// Option configures the dispatcher.
type Option func(*Dispatcher)

// WithMaxInFlight bounds concurrent sends to the gateway.
func WithMaxInFlight(limit int) Option {
	return func(d *Dispatcher) {
		if limit > 0 {
			d.maxInFlight = limit
		}
	}
}

// WithSendTimeout sets the per-recipient send timeout.
func WithSendTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.sendTimeout = timeout
		}
	}
}

// NewDispatcher constructs a dispatcher. A nil channel is allowed and makes
// every dispatch a no-op returning no outcomes: an unconfigured messaging
// gateway must not fail the pipeline.
func NewDispatcher(recipients RecipientReader, channel Channel, template *Template, logger *log.Logger, opts ...Option) (*Dispatcher, error) {
	if recipients == nil {
		return nil, errors.New("alert dispatcher: nil recipient reader")
	}
	if template == nil {
		defaultTemplate, err := NewTemplate("")
		if err != nil {
			return nil, err
		}
		template = defaultTemplate
	}
	if logger == nil {
		logger = log.Default()
	}
	d := &Dispatcher{
		recipients:  recipients,
		channel:     channel,
		template:    template,
		logger:      logger,
		maxInFlight: 4,
		sendTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Dispatch sends one message per recipient, independently. One recipient's
// failure never blocks the others. The outcome slice preserves recipient
// order.
func (d *Dispatcher) Dispatch(ctx context.Context, alert alerts.Alert) []Outcome {
	if d == nil || d.channel == nil {
		return nil
	}
	recipients, err := d.recipients.ListResponsible(ctx)
	if err != nil {
		d.logger.Printf("alert dispatch: list recipients: %v", err)
		metrics.IncNotifyResult("recipient_lookup_error")
		return nil
	}
	if len(recipients) == 0 {
		return nil
	}

	content, err := d.template.Render(templateData(alert))
	if err != nil {
		d.logger.Printf("alert dispatch: render template: %v", err)
		metrics.IncNotifyResult("template_error")
		return nil
	}

	outcomes := make([]Outcome, len(recipients))
	sem := make(chan struct{}, d.maxInFlight)
	var wg sync.WaitGroup
	for i, recipient := range recipients {
		wg.Add(1)
		go func(i int, recipient operators.Recipient) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			outcomes[i] = d.send(ctx, recipient, content)
		}(i, recipient)
	}
	wg.Wait()

	for _, outcome := range outcomes {
		if outcome.Delivered {
			metrics.IncNotifyResult("delivered")
			continue
		}
		metrics.IncNotifyResult("failed")
		d.logger.Printf("alert dispatch: alert=%s recipient=%s failed: %s", alert.ID, outcome.Recipient.ID, outcome.Reason)
	}
	return outcomes
}

// Notify implements the ingest service's AlertNotifier. Outcomes are logged
// and counted; nothing propagates to the caller.
func (d *Dispatcher) Notify(ctx context.Context, alert alerts.Alert) {
	d.Dispatch(ctx, alert)
}

func (d *Dispatcher) send(ctx context.Context, recipient operators.Recipient, content string) Outcome {
	outcome := Outcome{Recipient: recipient}
	if recipient.Contact == "" {
		outcome.Reason = "no contact address"
		return outcome
	}
	sendCtx := ctx
	if d.sendTimeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, d.sendTimeout)
		defer cancel()
	}
	if err := d.channel.Send(sendCtx, recipient.Contact, content); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(sendCtx.Err(), context.DeadlineExceeded) {
			outcome.Reason = ReasonTimeout
		} else {
			outcome.Reason = err.Error()
		}
		return outcome
	}
	outcome.Delivered = true
	return outcome
}

func templateData(alert alerts.Alert) TemplateData {
	bound := fmt.Sprintf("%s %v", alert.BoundKind, alert.BoundValue)
	return TemplateData{
		Parameter:     alert.Parameter,
		ObservedValue: fmt.Sprintf("%v", alert.ObservedValue),
		Bound:         bound,
		Message:       alert.Message,
		ReadingAt:     alert.ReadingAt.UTC().Format(time.RFC3339),
		Status:        alert.Status,
		Zone:          alert.ReadingZone,
	}
}
