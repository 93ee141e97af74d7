package markov

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"
)

// How long TriggerUpdate waits for the rebuild permit before dropping the
// request.
const acquireTimeout = 100 * time.Millisecond

// CorpusSource supplies a point-in-time read of the full corpus.
type CorpusSource interface {
	ReadAllTexts(ctx context.Context) ([]string, error)
}

// Coordinator owns the live model snapshot and serializes rebuilds behind a
// capacity-1 permit. Readers never block: Snapshot always returns the
// currently installed pair, stale or not, and a failed rebuild leaves the
// previous pair untouched.
type Coordinator struct {
	source CorpusSource
	permit chan struct{}
	live   atomic.Pointer[Snapshot]
}

// NewCoordinator starts with an empty cold snapshot installed.
func NewCoordinator(source CorpusSource) *Coordinator {
	c := &Coordinator{
		source: source,
		permit: make(chan struct{}, 1),
	}
	c.live.Store(&Snapshot{Table: TransitionTable{}})
	return c
}

// Snapshot returns the live model pair. Never nil, never blocks.
func (c *Coordinator) Snapshot() *Snapshot {
	return c.live.Load()
}

// TriggerUpdate rebuilds the model from the full corpus. When another rebuild
// holds the permit the call is dropped rather than queued: under bursty
// ingestion freshness is sacrificed for responsiveness, and the in-flight
// rebuild covers the skipped one.
func (c *Coordinator) TriggerUpdate(ctx context.Context) {
	timer := time.NewTimer(acquireTimeout)
	defer timer.Stop()
	select {
	case c.permit <- struct{}{}:
	case <-timer.C:
		log.Printf("[markov] model update skipped, another update is in progress")
		return
	case <-ctx.Done():
		return
	}
	defer func() { <-c.permit }()

	if err := c.rebuild(ctx); err != nil {
		log.Printf("[markov] model update failed: %v", err)
	}
}

// ForceUpdate waits for the permit instead of skipping and reports the
// rebuild outcome. Bulk ingestion and bot startup use it so that seeding
// always ends with a fresh model.
func (c *Coordinator) ForceUpdate(ctx context.Context) error {
	select {
	case c.permit <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-c.permit }()

	return c.rebuild(ctx)
}

func (c *Coordinator) rebuild(ctx context.Context) error {
	started := time.Now()
	lines, err := c.source.ReadAllTexts(ctx)
	if err != nil {
		return fmt.Errorf("read corpus: %w", err)
	}
	if len(lines) == 0 {
		log.Printf("[markov] corpus is empty, keeping previous model")
		return nil
	}

	snap := BuildSnapshot(lines)
	c.live.Store(snap)
	log.Printf("[markov] model updated from %d lines in %s (keys=%d ngram=%t)",
		len(lines), time.Since(started).Round(time.Millisecond), len(snap.Table), snap.Ngram != nil)
	return nil
}
