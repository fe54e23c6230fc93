package store

import (
	"context"

	"github.com/muhammadolammi/interviewmate/internal/auth"
	"github.com/muhammadolammi/interviewmate/internal/events"
	"github.com/muhammadolammi/interviewmate/internal/interview"
	"github.com/muhammadolammi/interviewmate/internal/logger"
)

// Archiver mirrors record attachments into object storage.
type Archiver interface {
	Sync(ctx context.Context, rec interview.Record) error
	Delete(ctx context.Context, recordID string) error
}

// Notifying wraps a Store, publishing an update and syncing the resume
// archive after every successful write. Side-effect failures are logged
// and never fail the write.
type Notifying struct {
	Store
	pub     events.Publisher
	archive Archiver
	log     *logger.Logger
}

// NewNotifying wraps next. A nil archive disables archiving.
func NewNotifying(next Store, pub events.Publisher, archive Archiver, log *logger.Logger) *Notifying {
	if pub == nil {
		pub = events.NopPublisher{}
	}
	return &Notifying{Store: next, pub: pub, archive: archive, log: log.With("component", "store_events")}
}

func (n *Notifying) publish(ctx context.Context, p auth.Principal, id, event string) {
	err := n.pub.Publish(ctx, events.Update{RecordID: id, Event: event, UserID: p.UserID})
	if err != nil {
		n.log.Warn("failed to publish update", "record_id", id, "event", event, "error", err)
	}
}

func (n *Notifying) Save(ctx context.Context, p auth.Principal, rec interview.Record) error {
	if err := n.Store.Save(ctx, p, rec); err != nil {
		return err
	}
	if n.archive != nil {
		if err := n.archive.Sync(ctx, rec); err != nil {
			n.log.Warn("failed to archive resume", "record_id", rec.ID, "error", err)
		}
	}
	n.publish(ctx, p, rec.ID, events.EventSaved)
	return nil
}

func (n *Notifying) Delete(ctx context.Context, p auth.Principal, id string) error {
	if err := n.Store.Delete(ctx, p, id); err != nil {
		return err
	}
	if n.archive != nil {
		if err := n.archive.Delete(ctx, id); err != nil {
			n.log.Warn("failed to delete archived resume", "record_id", id, "error", err)
		}
	}
	n.publish(ctx, p, id, events.EventDeleted)
	return nil
}

func (n *Notifying) SetSummary(ctx context.Context, p auth.Principal, id, summary string) error {
	if err := n.Store.SetSummary(ctx, p, id, summary); err != nil {
		return err
	}
	n.publish(ctx, p, id, events.EventAnalyzed)
	return nil
}
