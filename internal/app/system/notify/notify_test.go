package notify

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// captureSender records delivered events.
type captureSender struct {
	mu     sync.Mutex
	events []Event
	fail   bool
}

func (s *captureSender) Send(_ context.Context, ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("delivery refused")
	}
	s.events = append(s.events, ev)
	return nil
}

func (s *captureSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met within deadline")
}

func TestDispatcher_Delivers(t *testing.T) {
	sender := &captureSender{}
	d := NewDispatcher(sender, zap.NewNop(), 8)
	d.Start()
	defer d.Stop()

	target := primitive.NewObjectID()
	d.Dispatch(target, EventMemberAdded, map[string]string{"member_name": "Amina"})

	waitFor(t, func() bool { return sender.count() == 1 })

	sender.mu.Lock()
	ev := sender.events[0]
	sender.mu.Unlock()

	if ev.Kind != EventMemberAdded {
		t.Errorf("kind: got %q, want %q", ev.Kind, EventMemberAdded)
	}
	if ev.TargetPrincipalID != target {
		t.Errorf("target: got %v, want %v", ev.TargetPrincipalID, target)
	}
	if ev.ID == "" {
		t.Error("expected event ID to be assigned")
	}
	if ev.Fields["member_name"] != "Amina" {
		t.Errorf("fields not carried: %v", ev.Fields)
	}
}

func TestDispatcher_NeverBlocksWhenFull(t *testing.T) {
	// A sender that blocks forever, so the queue backs up.
	blocked := make(chan struct{})
	d := NewDispatcher(senderFunc(func(ctx context.Context, ev Event) error {
		<-blocked
		return nil
	}), zap.NewNop(), 1)
	d.Start()
	defer func() {
		close(blocked)
		d.Stop()
	}()

	target := primitive.NewObjectID()
	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			d.Dispatch(target, EventMemberUpdated, nil)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Dispatch blocked the caller")
	}

	if d.Dropped() == 0 {
		t.Error("expected some events to be dropped with a full queue")
	}
}

func TestDispatcher_DeliveryFailureIsSwallowed(t *testing.T) {
	sender := &captureSender{fail: true}
	d := NewDispatcher(sender, zap.NewNop(), 8)
	d.Start()
	defer d.Stop()

	// Must not panic or surface anywhere; just log.
	d.Dispatch(primitive.NewObjectID(), EventFamiliesLinked, nil)
	time.Sleep(50 * time.Millisecond)
}

// senderFunc adapts a function to the Sender interface.
type senderFunc func(ctx context.Context, ev Event) error

func (f senderFunc) Send(ctx context.Context, ev Event) error { return f(ctx, ev) }

func TestComposeEmail(t *testing.T) {
	ev := Event{
		Kind: EventFamiliesLinked,
		Fields: map[string]string{
			FieldFamilyName:       "Yusuf Family",
			FieldLinkedFamilyName: "Bello Family",
		},
	}
	subject, body := composeEmail(ev)
	if want := "Yusuf Family is now linked with Bello Family"; subject != want {
		t.Errorf("subject: got %q, want %q", subject, want)
	}
	// The counterpart name must survive into the body, not just the subject.
	if !strings.Contains(body, "Bello Family") {
		t.Errorf("body %q should mention the linked family", body)
	}
}
