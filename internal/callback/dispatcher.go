package callback

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/wolfman30/scam-honeypot/internal/observability/metrics"
	"github.com/wolfman30/scam-honeypot/pkg/logging"
)

const (
	defaultWorkerCount   = 2
	defaultWaitSeconds   = 2
	defaultBatchSize     = 5
	maxWaitSeconds       = 20
	maxReceiveBatchSize  = 10
	deleteTimeoutSeconds = 5
	enqueueTimeout       = 5 * time.Second
)

// Dispatcher hands reports to a queue and delivers them from a worker pool.
// Delivery is at-most-once: each entry is deleted before the send is attempted.
type Dispatcher struct {
	queue   Queue
	sender  Sender
	logger  *logging.Logger
	metrics *metrics.HoneypotMetrics
	cfg     dispatcherConfig

	wg      sync.WaitGroup
	pending sync.WaitGroup
}

type dispatcherConfig struct {
	workers          int
	receiveWaitSecs  int
	receiveBatchSize int
}

// DispatcherOption customizes dispatcher behavior.
type DispatcherOption func(*Dispatcher)

// WithWorkerCount sets the number of concurrent delivery goroutines.
func WithWorkerCount(count int) DispatcherOption {
	return func(d *Dispatcher) {
		if count > 0 {
			d.cfg.workers = count
		}
	}
}

// WithReceiveWaitSeconds sets the queue long-poll wait duration.
func WithReceiveWaitSeconds(seconds int) DispatcherOption {
	return func(d *Dispatcher) {
		if seconds < 0 {
			seconds = 0
		}
		if seconds > maxWaitSeconds {
			seconds = maxWaitSeconds
		}
		d.cfg.receiveWaitSecs = seconds
	}
}

// WithReceiveBatchSize sets how many entries to fetch per poll.
func WithReceiveBatchSize(size int) DispatcherOption {
	return func(d *Dispatcher) {
		if size <= 0 {
			return
		}
		if size > maxReceiveBatchSize {
			size = maxReceiveBatchSize
		}
		d.cfg.receiveBatchSize = size
	}
}

// WithMetrics records delivery outcomes.
func WithMetrics(m *metrics.HoneypotMetrics) DispatcherOption {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

// NewDispatcher wires a queue to a sender.
func NewDispatcher(queue Queue, sender Sender, logger *logging.Logger, opts ...DispatcherOption) *Dispatcher {
	if queue == nil {
		panic("callback: queue cannot be nil")
	}
	if sender == nil {
		panic("callback: sender cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	d := &Dispatcher{
		queue:  queue,
		sender: sender,
		logger: logger,
		cfg: dispatcherConfig{
			workers:          defaultWorkerCount,
			receiveWaitSecs:  defaultWaitSeconds,
			receiveBatchSize: defaultBatchSize,
		},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Submit schedules report for delivery and returns immediately. The enqueue
// runs detached from ctx cancellation so a finished request cannot drop it.
func (d *Dispatcher) Submit(ctx context.Context, report Report) {
	if ctx == nil {
		ctx = context.Background()
	}
	detached := context.WithoutCancel(ctx)

	d.pending.Add(1)
	go func() {
		defer d.pending.Done()

		body, err := encodeReport(report)
		if err != nil {
			d.logger.WithSession(report.SessionID).Error("failed to encode callback report", "error", err)
			d.metrics.ObserveCallback("enqueue_failed", 0)
			return
		}

		sendCtx, cancel := context.WithTimeout(detached, enqueueTimeout)
		defer cancel()
		if err := d.queue.Send(sendCtx, body); err != nil {
			d.logger.WithSession(report.SessionID).Error("failed to enqueue callback report", "error", err)
			d.metrics.ObserveCallback("enqueue_failed", 0)
			return
		}
		d.logger.WithSession(report.SessionID).Debug("callback report enqueued")
	}()
}

// Start launches worker goroutines until ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i := 0; i < d.cfg.workers; i++ {
		d.wg.Add(1)
		go d.run(ctx, i+1)
	}
}

// Wait blocks until pending enqueues finish and all worker goroutines exit.
func (d *Dispatcher) Wait() {
	d.pending.Wait()
	d.wg.Wait()
}

func (d *Dispatcher) run(ctx context.Context, workerID int) {
	defer d.wg.Done()
	d.logger.Debug("callback worker started", "worker_id", workerID)

	backoff := time.Second

	for {
		select {
		case <-ctx.Done():
			d.logger.Debug("callback worker stopping", "worker_id", workerID)
			return
		default:
		}

		messages, err := d.queue.Receive(ctx, d.cfg.receiveBatchSize, d.cfg.receiveWaitSecs)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return
			}
			d.logger.Error("failed to receive callback reports", "error", err, "worker_id", workerID)
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if backoff < 5*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		for _, msg := range messages {
			d.handleMessage(ctx, msg)
		}
	}
}

func (d *Dispatcher) handleMessage(ctx context.Context, msg QueueMessage) {
	d.deleteMessage(context.Background(), msg.ReceiptHandle)

	report, err := decodeReport(msg.Body)
	if err != nil {
		d.logger.Error("failed to decode callback report", "error", err, "msg_id", msg.ID)
		d.metrics.ObserveCallback("failed", 0)
		return
	}

	start := time.Now()
	delivered := d.sender.Deliver(context.WithoutCancel(ctx), report)
	status := "delivered"
	if !delivered {
		status = "failed"
	}
	d.metrics.ObserveCallback(status, time.Since(start).Seconds())
}

func (d *Dispatcher) deleteMessage(ctx context.Context, receiptHandle string) {
	if receiptHandle == "" {
		return
	}

	deleteCtx, cancel := context.WithTimeout(ctx, deleteTimeoutSeconds*time.Second)
	defer cancel()

	if err := d.queue.Delete(deleteCtx, receiptHandle); err != nil {
		d.logger.Error("failed to delete callback report", "error", err)
	}
}
