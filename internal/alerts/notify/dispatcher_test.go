package notify

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"testing"
	"time"

	alerts "github.com/G-OrdiaD/GreenhouseSolution/internal/alerts/domain"
	operators "github.com/G-OrdiaD/GreenhouseSolution/internal/operators/domain"
)

type stubRecipients struct {
	list []operators.Recipient
	err  error
}

func (s stubRecipients) ListResponsible(ctx context.Context) ([]operators.Recipient, error) {
	return s.list, s.err
}

type recordingChannel struct {
	mu    sync.Mutex
	sent  []string
	fails map[string]error
	delay time.Duration
}

func (c *recordingChannel) Send(ctx context.Context, to, content string) error {
	if c.delay > 0 {
		select {
		case <-time.After(c.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err, ok := c.fails[to]; ok {
		return err
	}
	c.mu.Lock()
	c.sent = append(c.sent, to)
	c.mu.Unlock()
	return nil
}

func testAlert() alerts.Alert {
	return alerts.Alert{
		ID:            "a-1",
		Parameter:     "temperature",
		ObservedValue: 12.5,
		BoundKind:     "min",
		BoundValue:    18,
		Message:       "temperature too low (12.5 < 18)",
		ReadingAt:     time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Status:        alerts.StatusOpen,
	}
}

func testLogger(t *testing.T) *log.Logger {
	t.Helper()
	return log.New(&testWriter{t: t}, "", 0)
}

type testWriter struct{ t *testing.T }

func (w *testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

func TestDispatchDeliversToEveryRecipient(t *testing.T) {
	recipients := stubRecipients{list: []operators.Recipient{
		{ID: "u1", Name: "alice", Contact: "+441111"},
		{ID: "u2", Name: "bob", Contact: "+442222"},
		{ID: "u3", Name: "carol", Contact: "+443333"},
	}}
	channel := &recordingChannel{}
	d, err := NewDispatcher(recipients, channel, nil, testLogger(t))
	if err != nil {
		t.Fatalf("new dispatcher: %v", err)
	}

	outcomes := d.Dispatch(context.Background(), testAlert())
	if len(outcomes) != 3 {
		t.Fatalf("expected 3 outcomes, got %d", len(outcomes))
	}
	for i, outcome := range outcomes {
		if !outcome.Delivered {
			t.Errorf("outcome %d not delivered: %s", i, outcome.Reason)
		}
		if outcome.Recipient.ID != recipients.list[i].ID {
			t.Errorf("outcome %d out of order: got %s", i, outcome.Recipient.ID)
		}
	}
	if len(channel.sent) != 3 {
		t.Fatalf("expected 3 sends, got %d", len(channel.sent))
	}
}

func TestDispatchIsolatesFailures(t *testing.T) {
	recipients := stubRecipients{list: []operators.Recipient{
		{ID: "u1", Contact: "+441111"},
		{ID: "u2", Contact: "+442222"},
		{ID: "u3", Contact: "+443333"},
	}}
	channel := &recordingChannel{fails: map[string]error{"+442222": errors.New("gateway rejected")}}
	d, err := NewDispatcher(recipients, channel, nil, testLogger(t))
	if err != nil {
		t.Fatalf("new dispatcher: %v", err)
	}

	outcomes := d.Dispatch(context.Background(), testAlert())
	if len(outcomes) != 3 {
		t.Fatalf("expected 3 outcomes, got %d", len(outcomes))
	}
	if !outcomes[0].Delivered || !outcomes[2].Delivered {
		t.Fatalf("healthy recipients must still be delivered: %+v", outcomes)
	}
	if outcomes[1].Delivered {
		t.Fatal("failing recipient reported as delivered")
	}
	if outcomes[1].Reason != "gateway rejected" {
		t.Fatalf("unexpected failure reason: %q", outcomes[1].Reason)
	}
}

func TestDispatchTimesOutSlowSends(t *testing.T) {
	recipients := stubRecipients{list: []operators.Recipient{{ID: "u1", Contact: "+441111"}}}
	channel := &recordingChannel{delay: 200 * time.Millisecond}
	d, err := NewDispatcher(recipients, channel, nil, testLogger(t),
		WithSendTimeout(20*time.Millisecond))
	if err != nil {
		t.Fatalf("new dispatcher: %v", err)
	}

	outcomes := d.Dispatch(context.Background(), testAlert())
	if len(outcomes) != 1 {
		t.Fatalf("expected 1 outcome, got %d", len(outcomes))
	}
	if outcomes[0].Delivered {
		t.Fatal("slow send reported as delivered")
	}
	if outcomes[0].Reason != ReasonTimeout {
		t.Fatalf("expected timeout reason, got %q", outcomes[0].Reason)
	}
}

func TestDispatchSkipsRecipientsWithoutContact(t *testing.T) {
	recipients := stubRecipients{list: []operators.Recipient{
		{ID: "u1", Contact: ""},
		{ID: "u2", Contact: "+442222"},
	}}
	channel := &recordingChannel{}
	d, err := NewDispatcher(recipients, channel, nil, testLogger(t))
	if err != nil {
		t.Fatalf("new dispatcher: %v", err)
	}

	outcomes := d.Dispatch(context.Background(), testAlert())
	if outcomes[0].Delivered || outcomes[0].Reason != "no contact address" {
		t.Fatalf("unexpected outcome for missing contact: %+v", outcomes[0])
	}
	if !outcomes[1].Delivered {
		t.Fatalf("contactable recipient not delivered: %+v", outcomes[1])
	}
}

func TestDispatchNilChannelIsNoOp(t *testing.T) {
	recipients := stubRecipients{list: []operators.Recipient{{ID: "u1", Contact: "+441111"}}}
	d, err := NewDispatcher(recipients, nil, nil, testLogger(t))
	if err != nil {
		t.Fatalf("new dispatcher: %v", err)
	}
	if outcomes := d.Dispatch(context.Background(), testAlert()); outcomes != nil {
		t.Fatalf("expected nil outcomes, got %+v", outcomes)
	}
}

func TestDispatchSwallowsRecipientLookupErrors(t *testing.T) {
	d, err := NewDispatcher(stubRecipients{err: errors.New("db down")}, &recordingChannel{}, nil, testLogger(t))
	if err != nil {
		t.Fatalf("new dispatcher: %v", err)
	}
	if outcomes := d.Dispatch(context.Background(), testAlert()); outcomes != nil {
		t.Fatalf("expected nil outcomes, got %+v", outcomes)
	}
}

func TestDefaultTemplateRendersAlertFields(t *testing.T) {
	tpl, err := NewTemplate("")
	if err != nil {
		t.Fatalf("new template: %v", err)
	}
	content, err := tpl.Render(templateData(testAlert()))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{"temperature", "12.5", "min 18", "temperature too low (12.5 < 18)", alerts.StatusOpen} {
		if !strings.Contains(content, want) {
			t.Errorf("rendered message missing %q:\n%s", want, content)
		}
	}
}
