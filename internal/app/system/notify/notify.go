// internal/app/system/notify/notify.go
//
// Package notify is the outbound-notification collaborator. The core
// calls Dispatch after successful mutations and never waits on or
// inspects the result: delivery failures are logged, not propagated.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Event kinds dispatched by the core.
const (
	EventMemberAdded    = "member_added"
	EventMemberUpdated  = "member_updated"
	EventMemberDeleted  = "member_deleted"
	EventFamiliesLinked = "families_linked"
)

// Field keys shared between event producers and the senders. Producers
// and composeEmail must use the same names, so they live here.
const (
	FieldEmail            = "email"
	FieldFamilyName       = "family_name"
	FieldMemberName       = "member_name"
	FieldMemberRole       = "member_role"
	FieldStep             = "step"
	FieldLinkedFamilyName = "linked_family_name"
)

// Event is one notification to one principal.
type Event struct {
	ID                string
	TargetPrincipalID primitive.ObjectID
	Kind              string
	Fields            map[string]string
	OccurredAt        time.Time
}

// Sender delivers a single event. Implementations must be safe for
// concurrent use.
type Sender interface {
	Send(ctx context.Context, ev Event) error
}

// Dispatcher queues events and delivers them on a background goroutine.
// Dispatch never blocks the calling mutation: when the queue is full the
// event is dropped and counted, which is acceptable for advisory
// notifications.
type Dispatcher struct {
	sender  Sender
	log     *zap.Logger
	ch      chan Event
	stopCh  chan struct{}
	wg      sync.WaitGroup
	timeout time.Duration

	mu      sync.Mutex
	dropped int64
}

// NewDispatcher creates a dispatcher with the given queue depth.
func NewDispatcher(sender Sender, logger *zap.Logger, buffer int) *Dispatcher {
	if buffer <= 0 {
		buffer = 256
	}
	return &Dispatcher{
		sender:  sender,
		log:     logger,
		ch:      make(chan Event, buffer),
		stopCh:  make(chan struct{}),
		timeout: 10 * time.Second,
	}
}

// Start begins the delivery loop.
func (d *Dispatcher) Start() {
	d.wg.Add(1)
	go d.run()
	d.log.Info("notification dispatcher started", zap.Int("queue", cap(d.ch)))
}

// Stop drains nothing further; queued events already picked up finish
// delivery, the rest are abandoned.
func (d *Dispatcher) Stop() {
	close(d.stopCh)
	d.wg.Wait()
	d.log.Info("notification dispatcher stopped", zap.Int64("dropped", d.Dropped()))
}

// Dispatch enqueues an event without blocking.
func (d *Dispatcher) Dispatch(target primitive.ObjectID, kind string, fields map[string]string) {
	ev := Event{
		ID:                uuid.NewString(),
		TargetPrincipalID: target,
		Kind:              kind,
		Fields:            fields,
		OccurredAt:        time.Now().UTC(),
	}
	select {
	case d.ch <- ev:
	default:
		d.mu.Lock()
		d.dropped++
		d.mu.Unlock()
		d.log.Warn("notification queue full, event dropped",
			zap.String("kind", kind),
			zap.String("target", target.Hex()))
	}
}

// Dropped returns how many events were discarded due to a full queue.
func (d *Dispatcher) Dropped() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dropped
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for {
		select {
		case <-d.stopCh:
			return
		case ev := <-d.ch:
			ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
			if err := d.sender.Send(ctx, ev); err != nil {
				d.log.Warn("notification delivery failed",
					zap.String("event_id", ev.ID),
					zap.String("kind", ev.Kind),
					zap.Error(err))
			}
			cancel()
		}
	}
}

// LogSender writes events to the application log. It is the default
// backend in development.
type LogSender struct {
	Log *zap.Logger
}

func (s *LogSender) Send(_ context.Context, ev Event) error {
	s.Log.Info("notification",
		zap.String("event_id", ev.ID),
		zap.String("kind", ev.Kind),
		zap.String("target", ev.TargetPrincipalID.Hex()),
		zap.Any("fields", ev.Fields))
	return nil
}
