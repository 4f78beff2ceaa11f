package telemetry

import (
	"context"
	"fmt"
	"sync"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/roast/internal/core/domain"
)

var _ sdktrace.SpanProcessor = (*Summary)(nil)

// Summary implements sdktrace.SpanProcessor and counts job outcomes recorded
// on ended spans. Watch mode uses it for the totals of a whole session.
type Summary struct {
	mu     sync.Mutex
	counts map[domain.JobOutcome]int
}

// NewSummary returns an empty Summary.
func NewSummary() *Summary {
	return &Summary{counts: make(map[domain.JobOutcome]int)}
}

// OnStart is called when a span starts.
func (s *Summary) OnStart(_ context.Context, _ sdktrace.ReadWriteSpan) {}

// OnEnd is called when a span ends.
func (s *Summary) OnEnd(span sdktrace.ReadOnlySpan) {
	for _, attr := range span.Attributes() {
		if string(attr.Key) != domain.AttrOutcome {
			continue
		}
		outcome := domain.JobOutcome(attr.Value.AsString())
		if !outcome.IsTerminal() {
			return
		}
		s.mu.Lock()
		s.counts[outcome]++
		s.mu.Unlock()
		return
	}
}

// Count returns how many jobs ended with outcome since the last Reset.
func (s *Summary) Count(outcome domain.JobOutcome) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[outcome]
}

// Reset clears all counts.
func (s *Summary) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.counts)
}

// String renders the totals counted since the last Reset.
func (s *Summary) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fmt.Sprintf("compiled %d, up-to-date %d, failed %d",
		s.counts[domain.OutcomeCompiled], s.counts[domain.OutcomeSkipped], s.counts[domain.OutcomeFailed])
}

// ForceFlush does nothing.
func (s *Summary) ForceFlush(_ context.Context) error {
	return nil
}

// Shutdown does nothing.
func (s *Summary) Shutdown(_ context.Context) error {
	return nil
}
