package spies

import (
	"context"
	"maps"
	"sync"

	"github.com/AntonStoeckl/library-circulation/eventstore"
)

// SpanRecord is one started span; Status and EndAttributes are set once it is finished.
type SpanRecord struct {
	Name            string
	StartAttributes map[string]string
	Status          string
	EndAttributes   map[string]string
	Finished        bool
}

// TracingCollectorSpy records started and finished spans.
type TracingCollectorSpy struct {
	spans []*SpanRecord
	mu    sync.Mutex
}

func NewTracingCollectorSpy() *TracingCollectorSpy {
	return &TracingCollectorSpy{}
}

type spySpan struct {
	spy    *TracingCollectorSpy
	record *SpanRecord
}

func (s spySpan) SetStatus(status string) {
	s.spy.mu.Lock()
	defer s.spy.mu.Unlock()

	s.record.Status = status
}

func (s spySpan) AddAttribute(key, value string) {
	s.spy.mu.Lock()
	defer s.spy.mu.Unlock()

	s.record.EndAttributes[key] = value
}

func (s *TracingCollectorSpy) StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, eventstore.SpanContext) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := &SpanRecord{Name: name, StartAttributes: maps.Clone(attrs), EndAttributes: map[string]string{}}
	s.spans = append(s.spans, record)

	return ctx, spySpan{spy: s, record: record}
}

func (s *TracingCollectorSpy) FinishSpan(spanCtx eventstore.SpanContext, status string, attrs map[string]string) {
	span, ok := spanCtx.(spySpan)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	span.record.Status = status
	span.record.Finished = true
	maps.Copy(span.record.EndAttributes, attrs)
}

// Spans returns copies of the spans named name, in start order.
func (s *TracingCollectorSpy) Spans(name string) []SpanRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	spans := make([]SpanRecord, 0)
	for _, span := range s.spans {
		if span.Name == name {
			spans = append(spans, *span)
		}
	}

	return spans
}
