package signals

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/AntonStoeckl/library-circulation/circulation/core"
	"github.com/AntonStoeckl/library-circulation/eventstore"
)

const (
	// DefaultBufferSize is the number of signals which may wait for delivery before Emit drops new ones.
	DefaultBufferSize = 1024

	// DefaultDeliveryTimeout bounds a single Deliver call.
	DefaultDeliveryTimeout = 5 * time.Second
)

const (
	MetricSignalsDelivered = "signals_delivered_total"
	MetricSignalsDropped   = "signals_dropped_total"

	StatusDelivered = "delivered"
	StatusFailed    = "failed"

	logMsgDeliveryFailed = "signal delivery failed"
	logMsgSignalDropped  = "signal dropped"
	logAttrKind          = "kind"
	logAttrItemID        = "item_id"
	logAttrStatus        = "status"
	logAttrError         = "error"
)

var (
	// ErrInvalidBufferSize is returned for a negative buffer size.
	ErrInvalidBufferSize = errors.New("buffer size must not be negative")

	// ErrInvalidDeliveryTimeout is returned for a non-positive delivery timeout.
	ErrInvalidDeliveryTimeout = errors.New("delivery timeout must be positive")
)

type queuedSignal struct {
	ctx    context.Context
	signal Signal
}

// Dispatcher fans signals out to its subscribers on a background goroutine.
// Emit never blocks: when the buffer is full or the dispatcher is closed the
// signal is dropped and logged. Delivery errors are logged and counted but
// never reported back to the emitting transition.
type Dispatcher struct {
	subscribers      []Subscriber
	queue            chan queuedSignal
	done             chan struct{}
	mu               sync.RWMutex
	closed           bool
	bufferSize       int
	deliveryTimeout  time.Duration
	logger           eventstore.Logger
	metricsCollector eventstore.MetricsCollector
}

// Option configures a Dispatcher.
type Option func(*Dispatcher) error

// WithBufferSize sets how many signals may wait for delivery.
func WithBufferSize(size int) Option {
	return func(d *Dispatcher) error {
		if size < 0 {
			return ErrInvalidBufferSize
		}

		d.bufferSize = size

		return nil
	}
}

// WithDeliveryTimeout bounds each Deliver call.
func WithDeliveryTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) error {
		if timeout <= 0 {
			return ErrInvalidDeliveryTimeout
		}

		d.deliveryTimeout = timeout

		return nil
	}
}

// WithLogger sets the logger for dropped signals and failed deliveries.
func WithLogger(logger eventstore.Logger) Option {
	return func(d *Dispatcher) error {
		d.logger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for delivered and dropped signals.
func WithMetrics(collector eventstore.MetricsCollector) Option {
	return func(d *Dispatcher) error {
		d.metricsCollector = collector
		return nil
	}
}

// NewDispatcher starts a dispatcher delivering to subscribers in the given order.
func NewDispatcher(subscribers []Subscriber, options ...Option) (*Dispatcher, error) {
	d := &Dispatcher{
		subscribers:     subscribers,
		bufferSize:      DefaultBufferSize,
		deliveryTimeout: DefaultDeliveryTimeout,
		done:            make(chan struct{}),
	}

	for _, option := range options {
		if err := option(d); err != nil {
			return nil, err
		}
	}

	d.queue = make(chan queuedSignal, d.bufferSize)

	go d.run()

	return d, nil
}

// Emit queues the signals raised by a committed transition.
func (d *Dispatcher) Emit(ctx context.Context, outcome core.Outcome) {
	for _, signal := range FromOutcome(outcome) {
		d.Publish(ctx, signal)
	}
}

// Publish queues one signal. The queued signal keeps the values of ctx but not its cancellation.
func (d *Dispatcher) Publish(ctx context.Context, signal Signal) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.dropped(signal)
		return
	}

	select {
	case d.queue <- queuedSignal{ctx: context.WithoutCancel(ctx), signal: signal}:
	default:
		d.dropped(signal)
	}
}

// Close stops accepting signals and waits until the queued ones are delivered or ctx ends.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)

	for queued := range d.queue {
		for _, subscriber := range d.subscribers {
			d.deliver(queued.ctx, subscriber, queued.signal)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, subscriber Subscriber, signal Signal) {
	ctx, cancel := context.WithTimeout(ctx, d.deliveryTimeout)
	defer cancel()

	err := subscriber.Deliver(ctx, signal)
	if err == nil {
		d.incrementCounter(MetricSignalsDelivered, signal.Kind, StatusDelivered)
		return
	}

	d.incrementCounter(MetricSignalsDelivered, signal.Kind, StatusFailed)

	if d.logger != nil {
		d.logger.Warn(logMsgDeliveryFailed,
			logAttrKind, string(signal.Kind),
			logAttrItemID, signal.ItemID(),
			logAttrError, err.Error(),
		)
	}
}

func (d *Dispatcher) dropped(signal Signal) {
	if d.metricsCollector != nil {
		d.metricsCollector.IncrementCounter(MetricSignalsDropped, map[string]string{logAttrKind: string(signal.Kind)})
	}

	if d.logger != nil {
		d.logger.Warn(logMsgSignalDropped, logAttrKind, string(signal.Kind), logAttrItemID, signal.ItemID())
	}
}

func (d *Dispatcher) incrementCounter(metric string, kind Kind, status string) {
	if d.metricsCollector == nil {
		return
	}

	d.metricsCollector.IncrementCounter(metric, map[string]string{
		logAttrKind:   string(kind),
		logAttrStatus: status,
	})
}
