// Package audit publishes billing audit records to a Redis channel from a
// background worker, keeping counters for every outcome.
package audit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wekeepgrowing/salon-billing/internal/domain/entity"
	"github.com/wekeepgrowing/salon-billing/pkg/messaging"
	"go.uber.org/zap"
)

const DefaultChannel = "billing.audit"

// ErrQueueFull is reported on Failures when a record is dropped.
var ErrQueueFull = errors.New("audit queue full")

type Options struct {
	Channel        string        `yaml:"channel"`
	BufferSize     int           `yaml:"buffer_size"`
	PublishTimeout time.Duration `yaml:"publish_timeout"`
}

// Stats are monotonically increasing counters.
type Stats struct {
	Queued    uint64 `json:"queued"`
	Published uint64 `json:"published"`
	Failed    uint64 `json:"failed"`
	Dropped   uint64 `json:"dropped"`
}

// Publisher never blocks its callers. A nil client writes records to the log.
type Publisher struct {
	client   messaging.RedisClient
	logger   *zap.Logger
	opts     Options
	queue    chan entity.AuditRecord
	failures chan error

	queued    atomic.Uint64
	published atomic.Uint64
	failed    atomic.Uint64
	dropped   atomic.Uint64

	mu      sync.RWMutex
	closed  bool
	started bool
	done    chan struct{}
}

func NewPublisher(client messaging.RedisClient, logger *zap.Logger, opts Options) *Publisher {
	if opts.Channel == "" {
		opts.Channel = DefaultChannel
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = 256
	}
	if opts.PublishTimeout <= 0 {
		opts.PublishTimeout = 2 * time.Second
	}
	return &Publisher{
		client:   client,
		logger:   logger,
		opts:     opts,
		queue:    make(chan entity.AuditRecord, opts.BufferSize),
		failures: make(chan error, 16),
		done:     make(chan struct{}),
	}
}

// Start launches the worker. Calling it twice is a no-op.
func (p *Publisher) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started || p.closed {
		return
	}
	p.started = true
	go p.run()
}

// Record enqueues rec and reports whether it was accepted.
func (p *Publisher) Record(rec entity.AuditRecord) bool {
	if rec.OccurredAt.IsZero() {
		rec.OccurredAt = time.Now().UTC()
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		p.drop(rec)
		return false
	}

	select {
	case p.queue <- rec:
		p.queued.Add(1)
		return true
	default:
		p.drop(rec)
		return false
	}
}

func (p *Publisher) drop(rec entity.AuditRecord) {
	p.dropped.Add(1)
	p.logger.Warn("Audit record dropped",
		zap.String("action", string(rec.Action)),
		zap.String("subject", rec.Subject))
	p.report(fmt.Errorf("%w: %s %s", ErrQueueFull, rec.Action, rec.Subject))
}

func (p *Publisher) Stats() Stats {
	return Stats{
		Queued:    p.queued.Load(),
		Published: p.published.Load(),
		Failed:    p.failed.Load(),
		Dropped:   p.dropped.Load(),
	}
}

// Failures streams publish and drop errors. Reports are discarded when nobody reads.
func (p *Publisher) Failures() <-chan error {
	return p.failures
}

// Close stops accepting records and drains the queue, bounded by ctx.
func (p *Publisher) Close(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	started := p.started
	close(p.queue)
	p.mu.Unlock()

	if !started {
		go p.run()
	}

	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("audit drain interrupted: %w", ctx.Err())
	}
}

func (p *Publisher) run() {
	defer close(p.done)
	for rec := range p.queue {
		p.publish(rec)
	}
}

func (p *Publisher) publish(rec entity.AuditRecord) {
	if p.client == nil {
		p.logger.Info("Audit record",
			zap.String("action", string(rec.Action)),
			zap.String("subject", rec.Subject),
			zap.String("event_id", rec.EventID),
			zap.Any("details", rec.Details))
		p.published.Add(1)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.opts.PublishTimeout)
	defer cancel()

	if err := p.client.Publish(ctx, p.opts.Channel, rec); err != nil {
		p.failed.Add(1)
		p.logger.Error("Failed to publish audit record",
			zap.String("channel", p.opts.Channel),
			zap.String("action", string(rec.Action)),
			zap.String("subject", rec.Subject),
			zap.Error(err))
		p.report(err)
		return
	}
	p.published.Add(1)
}

func (p *Publisher) report(err error) {
	select {
	case p.failures <- err:
	default:
	}
}
