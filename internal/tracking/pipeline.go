package tracking

import (
	"context"
	"sync"

	"beacon/internal/constants"
	"beacon/internal/dispatch"
	"beacon/internal/logger"
)

// Pipeline ties one request's queue and duplicate guard to the shared
// assembly service and delivery transport. Each request gets its own
// pipeline; firings accumulate in the queue and leave at teardown.
type Pipeline struct {
	service   Service
	transport *dispatch.Transport
	queue     *Queue
	processed *ProcessedSet
	inflight  *sync.WaitGroup
	logger    logger.Logger
}

// PipelineFactory builds request-scoped pipelines over the shared service and
// transport. It tracks background flushes so shutdown can wait for deliveries
// still in flight.
type PipelineFactory struct {
	service   Service
	transport *dispatch.Transport
	inflight  sync.WaitGroup
	logger    logger.Logger
}

func NewPipelineFactory(service Service, transport *dispatch.Transport, log logger.Logger) *PipelineFactory {
	return &PipelineFactory{
		service:   service,
		transport: transport,
		logger:    log,
	}
}

func (f *PipelineFactory) New() *Pipeline {
	return &Pipeline{
		service:   f.service,
		transport: f.transport,
		queue:     NewQueue(),
		processed: NewProcessedSet(),
		inflight:  &f.inflight,
		logger:    f.logger,
	}
}

// Wait blocks until every background flush has finished or the context
// expires.
func (f *PipelineFactory) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		f.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Fire assembles the events for one trigger firing and queues them. A firing
// with a key this pipeline has already processed is dropped silently; errors
// from assembly surface to the caller with nothing queued.
func (p *Pipeline) Fire(ctx context.Context, req FireRequest) error {
	if !p.processed.MarkProcessed(req.FireKey()) {
		p.logger.DebugwCtx(ctx, "Duplicate firing dropped",
			"trigger", req.TriggerID,
			"fire_key", req.FireKey(),
		)
		return nil
	}

	events, err := p.service.Assemble(ctx, req)
	if err != nil {
		return err
	}

	p.queue.Push(events...)
	return nil
}

// Queued reports how many events await delivery.
func (p *Pipeline) Queued() int {
	return p.queue.Len()
}

// Flush drains the queue and delivers everything in order.
func (p *Pipeline) Flush(ctx context.Context) []dispatch.DeliveryResult {
	events := p.queue.Drain()
	if len(events) == 0 {
		return nil
	}
	return p.transport.Flush(ctx, events)
}

// FlushAsync delivers the queued events on a fresh goroutine, detached from
// the request context so teardown does not wait on the collector. The flush
// is bounded by the configured flush timeout.
func (p *Pipeline) FlushAsync() {
	events := p.queue.Drain()
	if len(events) == 0 {
		return
	}

	p.inflight.Add(1)
	go func() {
		defer p.inflight.Done()

		ctx, cancel := context.WithTimeout(context.Background(), constants.FlushTimeout)
		defer cancel()

		p.transport.Flush(ctx, events)
	}()
}
