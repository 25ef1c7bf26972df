package forward_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/ferrygo/wcfhttp/internal/forward"
	"github.com/ferrygo/wcfhttp/internal/wcf"
)

// fakeSource yields a scripted sequence of polls, then reports inactive.
// A nil entry simulates an empty poll, a poisoned entry a polling fault.
type fakeSource struct {
	mu     sync.Mutex
	script []sourceStep
}

type sourceStep struct {
	msg *wcf.Message
	err error
}

func (s *fakeSource) Receiving() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.script) > 0
}

func (s *fakeSource) Next(timeout time.Duration) (*wcf.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.script) == 0 {
		return nil, wcf.ErrNoMessage
	}
	step := s.script[0]
	s.script = s.script[1:]
	if step.err != nil {
		return nil, step.err
	}
	if step.msg == nil {
		return nil, wcf.ErrNoMessage
	}
	return step.msg, nil
}

func (s *fakeSource) EnableReceiving(pyq bool) error { return nil }

// recordSink captures delivered payloads; fail makes every attempt error.
type recordSink struct {
	mu        sync.Mutex
	delivered []forward.Payload
	fail      error
}

func (r *recordSink) Deliver(ctx context.Context, p forward.Payload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	r.delivered = append(r.delivered, p)
	return nil
}

func (r *recordSink) payloads() []forward.Payload {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]forward.Payload, len(r.delivered))
	copy(out, r.delivered)
	return out
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func msg(id uint64, sender string) *wcf.Message {
	return &wcf.Message{Id: id, Sender: sender, Content: "m"}
}

func runToCompletion(t *testing.T, f *forward.Forwarder) {
	t.Helper()
	f.Start(context.Background())
	select {
	case <-f.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("forwarder did not finish")
	}
}

func TestForwarderPreservesOrder(t *testing.T) {
	src := &fakeSource{script: []sourceStep{
		{msg: msg(1, "bob")},
		{msg: nil}, // empty poll in between is not a failure
		{msg: msg(2, "bob")},
		{msg: msg(3, "carol")},
	}}
	sink := &recordSink{}
	f := forward.New(src, forward.NewNormalizer("alice", wcf.MentionsUser), sink, time.Millisecond, discardLogger())

	runToCompletion(t, f)

	got := sink.payloads()
	if len(got) != 3 {
		t.Fatalf("delivered %d payloads, want 3", len(got))
	}
	for i, want := range []uint64{1, 2, 3} {
		if got[i].Id != want {
			t.Errorf("payload %d has id %d, want %d", i, got[i].Id, want)
		}
	}
}

func TestForwarderSurvivesPollingFault(t *testing.T) {
	src := &fakeSource{script: []sourceStep{
		{msg: msg(1, "bob")},
		{err: errors.New("decode failure")},
		{msg: msg(2, "bob")},
	}}
	sink := &recordSink{}
	f := forward.New(src, forward.NewNormalizer("alice", wcf.MentionsUser), sink, time.Millisecond, discardLogger())

	runToCompletion(t, f)

	got := sink.payloads()
	if len(got) != 2 {
		t.Fatalf("delivered %d payloads, want 2", len(got))
	}
	if got[0].Id != 1 || got[1].Id != 2 {
		t.Errorf("wrong payloads after fault: %+v", got)
	}
}

func TestForwarderSurvivesDeliveryFailure(t *testing.T) {
	src := &fakeSource{script: []sourceStep{
		{msg: msg(1, "bob")},
		{msg: msg(2, "bob")},
	}}
	sink := &recordSink{fail: errors.New("connection refused")}
	f := forward.New(src, forward.NewNormalizer("alice", wcf.MentionsUser), sink, time.Millisecond, discardLogger())

	// Both deliveries fail; the loop must still drain the source and exit.
	runToCompletion(t, f)

	if n := len(sink.payloads()); n != 0 {
		t.Errorf("recorded %d deliveries, want 0", n)
	}
}

func TestForwarderWithoutSinkMakesNoDeliveries(t *testing.T) {
	src := &fakeSource{script: []sourceStep{
		{msg: msg(1, "bob")},
		{msg: msg(2, "bob")},
	}}
	f := forward.New(src, forward.NewNormalizer("alice", wcf.MentionsUser), nil, time.Millisecond, discardLogger())

	runToCompletion(t, f)
	// Nothing to assert on a sink: with none configured the messages are
	// only logged. Reaching Done without panicking is the contract.
}

// idleSource never yields and never goes inactive, so only cancellation
// can stop the loop.
type idleSource struct{}

func (idleSource) Receiving() bool { return true }
func (idleSource) Next(timeout time.Duration) (*wcf.Message, error) {
	time.Sleep(timeout)
	return nil, wcf.ErrNoMessage
}
func (idleSource) EnableReceiving(pyq bool) error { return nil }

func TestForwarderStopsOnCancel(t *testing.T) {
	f := forward.New(idleSource{}, forward.NewNormalizer("alice", wcf.MentionsUser), &recordSink{}, 10*time.Millisecond, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	f.Start(ctx)
	cancel()

	select {
	case <-f.Done():
	case <-time.After(time.Second):
		t.Fatal("forwarder ignored cancellation")
	}
}
