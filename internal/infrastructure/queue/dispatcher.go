package queue

import (
	"context"
	"errors"
	"hash/fnv"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tiu-access/visit-access/internal/api/metrics"
	"github.com/tiu-access/visit-access/internal/core/domain"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

var (
	// ErrQueueFull is returned when the target worker's buffer is full.
	ErrQueueFull = errors.New("notification queue full")
	// ErrClosed is returned after Shutdown.
	ErrClosed = errors.New("notification queue closed")
)

// Dispatcher routes notifications to a fixed set of workers using consistent
// hashing on the address, so messages to one recipient go out in order.
type Dispatcher struct {
	workers   []chan domain.Notification
	deliverer *Deliverer
	log       zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, deliverer *Deliverer, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:   make([]chan domain.Notification, numWorkers),
		deliverer: deliverer,
		log:       log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.Notification, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers exit when their channel is
// drained after Shutdown, or when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands n to the worker responsible for its address. It never
// blocks: a full buffer yields ErrQueueFull.
func (d *Dispatcher) Enqueue(_ context.Context, n domain.Notification) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrClosed
	}

	idx := d.shardIndex(n.Address)
	select {
	case d.workers[idx] <- n:
		metrics.NotificationQueueDepth.WithLabelValues(strconv.Itoa(idx)).Inc()
		return nil
	default:
		return ErrQueueFull
	}
}

// Shutdown stops accepting notifications and waits for the workers to drain
// what is already queued, or for ctx to expire.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, ch := range d.workers {
			close(ch)
		}
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// shardIndex maps an address deterministically to a worker index.
func (d *Dispatcher) shardIndex(address string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(address)))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.Notification) {
	defer d.wg.Done()
	gauge := metrics.NotificationQueueDepth.WithLabelValues(strconv.Itoa(id))
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-ch:
			if !ok {
				return
			}
			gauge.Dec()
			if err := d.deliverer.Deliver(ctx, n); err != nil {
				d.log.Error().Err(err).
					Str("kind", string(n.Kind)).
					Str("request_id", n.RequestID).
					Int("worker_id", id).
					Msg("notification dropped")
			}
		}
	}
}
