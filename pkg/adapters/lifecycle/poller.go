// Package lifecycle runs periodic filesystem syncs under the lifecycle
// supervisor and republishes their outcome as events.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/mirror/pkg/core"
)

// Syncer is the part of core.Service the poller drives.
type Syncer interface {
	Sync(ctx context.Context) (*core.SyncReport, error)
}

// Poller calls Sync on a fixed interval. It is a lifecycle.Source: every
// created, modified or deleted document becomes a core.Event.
type Poller struct {
	syncer   Syncer
	interval time.Duration
	logger   *slog.Logger
	onReport func(*core.SyncReport)
	out      chan lifecycle.Event
}

// PollerOption configures a Poller.
type PollerOption func(*Poller)

// WithLogger sets the logger for sync failures.
func WithLogger(l *slog.Logger) PollerOption {
	return func(p *Poller) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithReportHandler is called after every successful sync.
func WithReportHandler(fn func(*core.SyncReport)) PollerOption {
	return func(p *Poller) { p.onReport = fn }
}

// NewPoller creates a poller. Events are buffered; when nobody drains them
// they are dropped rather than stalling the sync loop.
func NewPoller(s Syncer, interval time.Duration, opts ...PollerOption) *Poller {
	p := &Poller{
		syncer:   s,
		interval: interval,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		out:      make(chan lifecycle.Event, 64),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Poller) Events() <-chan lifecycle.Event {
	return p.out
}

// Start launches the sync loop and returns immediately.
// The loop ends, closing Events, when ctx is cancelled.
func (p *Poller) Start(ctx context.Context) error {
	if p.interval <= 0 {
		return errors.New("poll interval must be positive")
	}

	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(p.out)
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				p.tick(ctx)
			}
		}
	}, lifecycle.WithErrorHandler(func(err error) {
		p.logger.Error("sync poller panic", "error", fmt.Errorf("poller: %w", err))
	}))
	return nil
}

func (p *Poller) tick(ctx context.Context) {
	report, err := p.syncer.Sync(ctx)
	if err != nil {
		if ctx.Err() == nil {
			p.logger.Error("periodic sync failed", "error", err)
		}
		return
	}
	if p.onReport != nil {
		p.onReport(report)
	}

	now := time.Now().Unix()
	for _, e := range report.Entries {
		var typ core.EventType
		switch e.Kind {
		case core.ChangeCreated:
			typ = core.EventCreate
		case core.ChangeModified:
			typ = core.EventModify
		case core.ChangeDeleted:
			typ = core.EventDelete
		default:
			continue
		}
		select {
		case p.out <- core.Event{Type: typ, ID: e.DocumentID, Timestamp: now}:
		default:
			p.logger.Debug("event dropped, no consumer", "id", e.DocumentID)
		}
	}
}

var _ lifecycle.Source = (*Poller)(nil)
