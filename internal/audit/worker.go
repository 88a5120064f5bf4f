package audit

import (
	"context"
	"log/slog"
)

// Worker consumes audit events from a channel and hands them to a publisher.
// It decouples request latency from the sink: services write into the inbox
// and move on, the worker absorbs slow sinks.
type Worker struct {
	publisher Publisher
	inbox     <-chan Event
	logger    *slog.Logger
}

func NewWorker(publisher Publisher, inbox <-chan Event, logger *slog.Logger) *Worker {
	return &Worker{publisher: publisher, inbox: inbox, logger: logger}
}

// Run drains the inbox until ctx is cancelled. Publish failures are logged
// and dropped; the audit trail is best-effort by policy, losing an event
// must never wedge the pipeline behind it.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case event := <-w.inbox:
			if err := w.publisher.Emit(ctx, event); err != nil {
				w.logger.ErrorContext(ctx, "failed to publish audit event",
					"action", event.Action,
					"voucher_id", event.VoucherID,
					"error", err,
				)
			}
		}
	}
}

// ChannelPublisher exposes an inbox channel as a Publisher. Emit never
// blocks: when the inbox is full the event is dropped and counted against
// the logger, keeping command latency independent of sink health.
type ChannelPublisher struct {
	inbox  chan<- Event
	logger *slog.Logger
}

func NewChannelPublisher(inbox chan<- Event, logger *slog.Logger) *ChannelPublisher {
	return &ChannelPublisher{inbox: inbox, logger: logger}
}

func (p *ChannelPublisher) Emit(ctx context.Context, event Event) error {
	select {
	case p.inbox <- event:
		return nil
	default:
		p.logger.WarnContext(ctx, "audit inbox full, dropping event",
			"action", event.Action,
			"voucher_id", event.VoucherID,
		)
		return nil
	}
}
