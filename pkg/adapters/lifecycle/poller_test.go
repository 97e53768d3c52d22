package lifecycle

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/mirror/pkg/core"
)

type fakeSyncer struct {
	mu      sync.Mutex
	calls   int
	reports []*core.SyncReport
	err     error
}

func (f *fakeSyncer) Sync(context.Context) (*core.SyncReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if len(f.reports) == 0 {
		return &core.SyncReport{}, nil
	}
	r := f.reports[0]
	f.reports = f.reports[1:]
	return r, nil
}

func TestPoller_EmitsEvents(t *testing.T) {
	report := &core.SyncReport{}
	report.Record("a", "/w/a.md", core.ChangeCreated, nil)
	report.Record("", "/w/bad.md", core.ChangeFailed, errors.New("bad"))
	report.Record("b", "/w/b.md", core.ChangeModified, nil)
	report.Record("c", "/w/c.md", core.ChangeDeleted, nil)

	syncer := &fakeSyncer{reports: []*core.SyncReport{report}}
	reports := make(chan *core.SyncReport, 8)
	p := NewPoller(syncer, 5*time.Millisecond, WithReportHandler(func(r *core.SyncReport) { reports <- r }))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, p.Start(ctx))

	var got []core.Event
	timeout := time.After(2 * time.Second)
	for len(got) < 3 {
		select {
		case e := <-p.Events():
			got = append(got, e.(core.Event))
		case <-timeout:
			t.Fatalf("timed out, got %v", got)
		}
	}

	assert.Equal(t, core.EventCreate, got[0].Type)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, core.EventModify, got[1].Type)
	assert.Equal(t, core.EventDelete, got[2].Type)
	assert.Same(t, report, <-reports)

	cancel()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-p.Events():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("events channel not closed after cancel")
		}
	}
}

func TestPoller_KeepsRunningAfterFailure(t *testing.T) {
	syncer := &fakeSyncer{err: errors.New("scan failed")}
	p := NewPoller(syncer, 2*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, p.Start(ctx))

	assert.Eventually(t, func() bool {
		syncer.mu.Lock()
		defer syncer.mu.Unlock()
		return syncer.calls >= 3
	}, 2*time.Second, 5*time.Millisecond)
}

func TestPoller_RejectsBadInterval(t *testing.T) {
	assert.Error(t, NewPoller(&fakeSyncer{}, 0).Start(context.Background()))
}
